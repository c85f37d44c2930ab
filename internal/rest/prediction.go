package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type PredictionService interface {
	PredictPrice(ctx context.Context, commodity, targetDate string, userID *uint) (domain.PredictionResult, error)
	ListPredictions(ctx context.Context, productName string, limit int) ([]domain.PredictionRecord, error)
	Commodities() []string
	Available() bool
}

type PredictionHandler struct {
	predictionService PredictionService
	validator         *validator.Validate
	timeout           time.Duration
}

func NewPredictionHandler(predictionService PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		validator:         validator.New(),
		timeout:           10 * time.Second,
	}
}

type PredictPriceRequest struct {
	Commodity  string `json:"commodity" validate:"required"`
	TargetDate string `json:"target_date" validate:"required"`
}

func (h *PredictionHandler) PredictPrice(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.PredictionLatency.Observe(time.Since(start).Seconds())
	}()

	var req PredictPriceRequest
	if err := c.Bind(&req); err != nil {
		metrics.PredictionRequests.WithLabelValues("client_error").Inc()
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		metrics.PredictionRequests.WithLabelValues("client_error").Inc()
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var userID *uint
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.predictionService.PredictPrice(ctx, req.Commodity, req.TargetDate, userID)
	if err != nil {
		status := predictionErrorStatus(err)
		if status == http.StatusServiceUnavailable {
			metrics.PredictionRequests.WithLabelValues("unavailable").Inc()
		} else {
			metrics.PredictionRequests.WithLabelValues("client_error").Inc()
		}
		if status == http.StatusInternalServerError {
			logger.Error("Failed to predict price", err)
		}
		return c.JSON(status, ResponseError{Message: err.Error()})
	}

	metrics.PredictionRequests.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, PredictPriceResponse{
		Message:          "Prediction successful",
		PredictionResult: result,
	})
}

// PredictPriceResponse keeps predicted_price at the top level of the body.
type PredictPriceResponse struct {
	Message string `json:"message"`
	domain.PredictionResult
}

func predictionErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrPredictionUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownCommodity):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrPastDate),
		errors.Is(err, domain.ErrMissingPrice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ListPredictions handles GET /predictions?product=&limit=
func (h *PredictionHandler) ListPredictions(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	records, err := h.predictionService.ListPredictions(ctx, c.QueryParam("product"), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(records))
}

func (h *PredictionHandler) Commodities(c echo.Context) error {
	if !h.predictionService.Available() {
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: domain.ErrPredictionUnavailable.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "successfully get commodities",
		"commodities": h.predictionService.Commodities(),
	})
}
