package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/flarecast/flarecast-backend/internal/domain/errors"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret []byte
	Issuer    string
	Audience  string
	Leeway    time.Duration
}

// AuthMiddleware validates HS256 bearer tokens. The user id is taken only
// from the token subject; request bodies never select the user.
type AuthMiddleware struct {
	config *AuthConfig
	tracer trace.Tracer
	base   *BaseHandler
	parser *jwt.Parser
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(config *AuthConfig, base *BaseHandler) *AuthMiddleware {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(config.Leeway),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &AuthMiddleware{
		config: config,
		tracer: otel.Tracer("api.rest.auth"),
		base:   base,
		parser: jwt.NewParser(opts...),
	}
}

// Middleware returns the authentication middleware function
func (a *AuthMiddleware) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := a.tracer.Start(r.Context(), "auth.middleware")
			defer span.End()

			token, err := extractBearer(r)
			if err != nil {
				span.RecordError(err)
				a.base.handleError(w, r, domainErrors.NewUnauthorizedError("Invalid authorization header"))
				return
			}

			userID, err := a.validateToken(token)
			if err != nil {
				span.RecordError(err)
				a.base.handleError(w, r, domainErrors.NewUnauthorizedError("Invalid or expired token"))
				return
			}

			span.SetAttributes(attribute.String("user.id", userID.String()))
			if meta, ok := ctx.Value(contextKeyRequestMeta).(*RequestMeta); ok {
				meta.UserID = userID
			}
			ctx = withUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *AuthMiddleware) validateToken(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.config.JWTSecret, nil
	}); err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errors.New("token subject is not a user id")
	}
	return userID, nil
}

func extractBearer(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimSpace(token), nil
}
