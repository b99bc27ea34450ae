package rest

import (
	"context"
	"net/http"

	domainErrors "github.com/flarecast/flarecast-backend/internal/domain/errors"
	"github.com/flarecast/flarecast-backend/internal/service/forecast"
)

// ForecastHandler serves flare-risk forecasts for the authenticated user.
type ForecastHandler struct {
	*BaseHandler
	service forecast.Service
}

// NewForecastHandler creates a forecast handler
func NewForecastHandler(base *BaseHandler, svc forecast.Service) *ForecastHandler {
	return &ForecastHandler{BaseHandler: base, service: svc}
}

// CreateForecast handles POST /api/v1/forecast.
func (h *ForecastHandler) CreateForecast() http.HandlerFunc {
	return h.WrapHandler(http.MethodPost, "/api/v1/forecast", func(ctx context.Context, r *http.Request) (any, error) {
		userID, ok := UserIDFromContext(ctx)
		if !ok {
			return nil, domainErrors.NewUnauthorizedError("Authentication required")
		}

		var req forecast.Request
		if err := h.DecodeJSON(r, &req); err != nil {
			return nil, err
		}

		return h.service.Forecast(ctx, userID, &req)
	})
}
