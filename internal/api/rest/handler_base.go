package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// APIVersion is reported in every response envelope.
const APIVersion = "v1"

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// RequestMeta contains metadata about the current request
type RequestMeta struct {
	RequestID string
	UserID    uuid.UUID
	TraceID   string
	ClientIP  string
	StartTime time.Time
}

// ResponseEnvelope wraps all API responses
type ResponseEnvelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
	Meta    ResponseMeta   `json:"meta"`
}

// ResponseMeta contains response metadata
type ResponseMeta struct {
	RequestID    string    `json:"request_id"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
	ResponseTime string    `json:"response_time,omitempty"`
}

// ErrorResponse provides detailed error information
type ErrorResponse struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Details   string              `json:"details,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
	TraceID   string              `json:"trace_id,omitempty"`
	Retryable bool                `json:"retryable,omitempty"`
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	validator    *validator.Validate
	tracer       trace.Tracer
	errorHandler ErrorHandler
	logger       *slog.Logger
}

// NewBaseHandler creates a base handler; a nil logger uses slog.Default.
func NewBaseHandler(logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		validator:    validator.New(),
		tracer:       otel.Tracer("api.rest"),
		errorHandler: NewErrorHandler(),
		logger:       logger,
	}
}

// WrapHandler adapts a typed handler to http.HandlerFunc: it opens a span,
// validates the result struct and writes the response envelope.
func (h *BaseHandler) WrapHandler(
	method, pattern string,
	handler func(context.Context, *http.Request) (any, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), method+" "+pattern,
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", pattern),
			),
		)
		defer span.End()
		r = r.WithContext(ctx)

		res, err := handler(ctx, r)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "handler failed")
			h.handleError(w, r, err)
			return
		}

		if res != nil {
			if err := h.validator.Struct(res); err != nil {
				span.RecordError(err)
				h.logger.ErrorContext(ctx, "response validation failed", "route", pattern, "error", err)
				h.writeError(w, r, http.StatusInternalServerError, &ErrorResponse{
					Code:    "RESPONSE_VALIDATION_FAILED",
					Message: "Internal validation error",
				})
				return
			}
		}

		h.writeSuccess(w, r, http.StatusOK, res)
	}
}

// DecodeJSON reads an optional JSON body into v and validates it. An empty
// body leaves v untouched.
func (h *BaseHandler) DecodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &ValidationError{Message: fmt.Sprintf("Request body too large (max %d bytes)", maxBodySize)}
		}
		return &ValidationError{Message: "Failed to read request body"}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return &ValidationError{Message: "Content-Type must be application/json"}
	}

	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &ValidationError{Message: "Invalid JSON", Details: err.Error()}
	}

	if err := h.validator.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &ValidationError{Message: "Validation error", Details: err.Error()}
	}

	fields := make(map[string][]string)
	for _, fe := range validationErrors {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "This field is required"
		case "min", "gte":
			msg = fmt.Sprintf("Minimum value is %s", fe.Param())
		case "max", "lte":
			msg = fmt.Sprintf("Maximum value is %s", fe.Param())
		case "oneof":
			msg = fmt.Sprintf("Must be one of: %s", fe.Param())
		default:
			msg = fmt.Sprintf("Failed %s validation", fe.Tag())
		}
		fields[fe.Field()] = append(fields[fe.Field()], msg)
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

func (h *BaseHandler) writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.writeJSON(w, status, ResponseEnvelope{
		Success: true,
		Data:    data,
		Meta:    responseMeta(r.Context()),
	})
}

func (h *BaseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, errResp *ErrorResponse) {
	meta := requestMetaFrom(r.Context())
	if errResp.TraceID == "" {
		errResp.TraceID = meta.TraceID
	}
	if status == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", "60")
	}
	h.writeJSON(w, status, ResponseEnvelope{
		Success: false,
		Error:   errResp,
		Meta:    responseMeta(r.Context()),
	})
}

func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *BaseHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := h.errorHandler.HandleError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "code", resp.Code, "error", err)
	}
	h.writeError(w, r, status, resp)
}

func responseMeta(ctx context.Context) ResponseMeta {
	meta := requestMetaFrom(ctx)
	rm := ResponseMeta{
		RequestID: meta.RequestID,
		Timestamp: time.Now().UTC(),
		Version:   APIVersion,
	}
	if !meta.StartTime.IsZero() {
		rm.ResponseTime = time.Since(meta.StartTime).String()
	}
	return rm
}

// Context keys
type contextKey string

const (
	contextKeyRequestMeta contextKey = "request_meta"
	contextKeyUserID      contextKey = "user_id"
)

func requestMetaFrom(ctx context.Context) *RequestMeta {
	if meta, ok := ctx.Value(contextKeyRequestMeta).(*RequestMeta); ok {
		return meta
	}
	meta := &RequestMeta{RequestID: uuid.NewString()}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		meta.TraceID = sc.TraceID().String()
	}
	return meta
}

// UserIDFromContext returns the authenticated user, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// ValidationError represents a malformed request
type ValidationError struct {
	Message string
	Details string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}
