package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	pingDB     func(ctx context.Context) error
	prediction interface{ Available() bool }
	version    string
}

func NewHealthHandler(pingDB func(ctx context.Context) error, prediction interface{ Available() bool }, version string) *HealthHandler {
	return &HealthHandler{
		pingDB:     pingDB,
		prediction: prediction,
		version:    version,
	}
}

// Health reports 503 only when the database is unreachable. Missing models
// degrade predictions but leave the rest of the API usable.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	database := "ok"
	if err := h.pingDB(ctx); err != nil {
		status = http.StatusServiceUnavailable
		database = "unreachable"
		logger.Error("Health check database ping failed", err)
	}

	predictions := "available"
	if !h.prediction.Available() {
		predictions = "unavailable"
	}

	return c.JSON(status, map[string]interface{}{
		"status":      http.StatusText(status),
		"version":     h.version,
		"database":    database,
		"predictions": predictions,
	})
}
