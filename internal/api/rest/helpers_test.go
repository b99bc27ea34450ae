package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flarecast/flarecast-backend/internal/domain/risk"
	"github.com/flarecast/flarecast-backend/internal/infrastructure/cache"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

var testSecret = []byte("test-secret-key-with-enough-entropy")

type mockForecastService struct{ mock.Mock }

func (m *mockForecastService) Forecast(ctx context.Context, userID uuid.UUID, req *forecast.Request) (*forecast.Forecast, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forecast.Forecast), args.Error(1)
}

type mockAPIMetrics struct{ mock.Mock }

func (m *mockAPIMetrics) RecordAPIRequest(ctx context.Context, duration time.Duration, method, route string, statusCode int) {
	m.Called(ctx, duration, method, route, statusCode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleForecast() *forecast.Forecast {
	lr := 2.4
	return &forecast.Forecast{
		RiskScore:  62,
		RiskLevel:  risk.LevelHigh,
		Confidence: 0.7,
		Factors: []forecast.RiskFactor{
			{
				Label:           "Short sleep",
				Impact:          21.9,
				Confidence:      0.8,
				Evidence:        "5.1h vs your usual 7.4h",
				Category:        forecast.CategorySleep,
				LikelihoodRatio: &lr,
				Source:          risk.SourceEmpirical,
			},
		},
		Prediction:        "Elevated flare risk over the next 24 hours.",
		Recommendations:   []string{"Protect tonight's sleep window"},
		ProtectiveFactors: []string{},
		Timeframe:         "next 24 hours",
		ModelVersion:      "test",
		Evidence:          forecast.EvidenceTally{Empirical: 1},
		GeneratedAt:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

type testAPI struct {
	handler http.Handler
	service *mockForecastService
	auth    *AuthConfig
}

func newTestAPI(t *testing.T, mutate func(*RouterConfig)) *testAPI {
	t.Helper()

	svc := &mockForecastService{}
	auth := &AuthConfig{JWTSecret: testSecret, Issuer: "flarecast-test"}
	cfg := RouterConfig{
		Service:          svc,
		Auth:             auth,
		RateLimiter:      cache.NewLocalRateLimiter(10),
		RateLimit:        RateLimitConfig{Requests: 100, Window: time.Minute},
		Logger:           discardLogger(),
		ValidateContract: true,
		MetricsHandler:   http.NotFoundHandler(),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	h, err := NewRouter(cfg)
	require.NoError(t, err)

	return &testAPI{
		handler: h,
		service: svc,
		auth:    auth,
	}
}

func (a *testAPI) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	return signToken(t, a.auth, userID.String(), time.Hour)
}

// signToken issues an HS256 token the way the identity provider does.
func signToken(t *testing.T, cfg *AuthConfig, subject string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    cfg.Issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.JWTSecret)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func forecastRequest(body, token string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecast", r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
