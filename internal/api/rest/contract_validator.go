package rest

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the embedded API contract.
func OpenAPISpec() []byte {
	return openAPISpec
}

// ContractValidator validates HTTP requests and responses against the
// embedded OpenAPI document.
type ContractValidator struct {
	doc    *openapi3.T
	router routers.Router
	opts   *openapi3filter.Options
}

// NewContractValidator loads and validates the embedded document.
func NewContractValidator() (*ContractValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}

	// Servers are not declared, so gorillamux matches on path alone.
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	return &ContractValidator{
		doc:    doc,
		router: router,
		// Bearer tokens are checked by AuthMiddleware.
		opts: &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
	}, nil
}

// ValidateRequest checks the request line, headers and body. The body is
// restored so downstream handlers can read it again.
func (cv *ContractValidator) ValidateRequest(req *http.Request) error {
	route, pathParams, err := cv.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("no matching route found: %w", err)
	}

	var body []byte
	if req.Body != nil {
		body, err = io.ReadAll(io.LimitReader(req.Body, maxBodySize+1))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	// An empty body is allowed by the contract but the filter still expects
	// a JSON content type when one is sent.
	if len(bytes.TrimSpace(body)) == 0 {
		clone := req.Clone(req.Context())
		clone.Body = http.NoBody
		clone.ContentLength = 0
		clone.Header.Del("Content-Type")
		req = clone
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options:    cv.opts,
	}
	if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
		return fmt.Errorf("request validation failed: %w", err)
	}

	if len(body) > 0 {
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	return nil
}

// ValidateResponse checks a recorded response for req.
func (cv *ContractValidator) ValidateResponse(req *http.Request, status int, header http.Header, body []byte) error {
	route, pathParams, err := cv.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("no matching route found: %w", err)
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
			Options:    cv.opts,
		},
		Status:  status,
		Header:  header,
		Options: cv.opts,
	}
	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(req.Context(), input); err != nil {
		return fmt.Errorf("response validation failed: %w", err)
	}
	return nil
}

// ValidateSchema validates a decoded JSON value against a named component
// schema.
func (cv *ContractValidator) ValidateSchema(schemaName string, data any) error {
	ref := cv.doc.Components.Schemas[schemaName]
	if ref == nil || ref.Value == nil {
		return fmt.Errorf("schema %s not found", schemaName)
	}
	if err := ref.Value.VisitJSON(data); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// contractMiddleware rejects requests that violate the contract with 400.
func contractMiddleware(cv *ContractValidator, base *BaseHandler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := cv.ValidateRequest(r); err != nil {
				base.logger.InfoContext(r.Context(), "contract violation",
					"path", r.URL.Path, "error", err)
				base.handleError(w, r, &ValidationError{
					Message: "Request does not match API contract",
					Details: err.Error(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
