package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"

	"github.com/labstack/echo/v4"
)

type TrendService interface {
	ListProducts(ctx context.Context) ([]string, error)
	GetTrend(ctx context.Context, productName, from, to string) ([]domain.TrendPoint, error)
}

type TrendHandler struct {
	trendService TrendService
	timeout      time.Duration
}

func NewTrendHandler(trendService TrendService) *TrendHandler {
	return &TrendHandler{
		trendService: trendService,
		timeout:      10 * time.Second,
	}
}

func (h *TrendHandler) ListProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.trendService.ListProducts(ctx)
	if err != nil {
		logger.Error("Failed to list products", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get all products",
		"products": products,
	})
}

// GetTrend handles GET /trends?product=&from=&to=
func (h *TrendHandler) GetTrend(c echo.Context) error {
	product := c.QueryParam("product")
	from := c.QueryParam("from")
	to := c.QueryParam("to")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	points, err := h.trendService.GetTrend(ctx, product, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) || err.Error() == "product is required" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get price trend",
		"product": product,
		"from":    from,
		"to":      to,
		"points":  points,
	})
}
