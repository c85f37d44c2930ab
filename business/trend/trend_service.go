package trend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
)

const DateLayout = "2006-01-02"

// HistoricalPriceRepository contract interface
type HistoricalPriceRepository interface {
	DistinctProducts(ctx context.Context) ([]string, error)
	FindRange(ctx context.Context, productName string, from, to time.Time) ([]domain.HistoricalPrice, error)
}

type trendService struct {
	priceRepo HistoricalPriceRepository
}

func NewTrendService(priceRepo HistoricalPriceRepository) *trendService {
	return &trendService{
		priceRepo: priceRepo,
	}
}

func (s *trendService) ListProducts(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when list products")
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.priceRepo.DistinctProducts(ctx)
	if err != nil {
		logger.Error("Failed to find products", err)
		return nil, err
	}

	return products, nil
}

// GetTrend returns the product's prices between from and to inclusive,
// oldest first. Both bounds are YYYY-MM-DD.
func (s *trendService) GetTrend(ctx context.Context, productName, from, to string) ([]domain.TrendPoint, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get trend")
		return nil, fmt.Errorf("context error: %w", err)
	}

	productName = strings.TrimSpace(productName)
	if productName == "" {
		logger.Error("Invalid trend request: product is required")
		return nil, errors.New("product is required")
	}

	fromDate, err := time.Parse(DateLayout, strings.TrimSpace(from))
	if err != nil {
		logger.Error("Invalid trend start date", err)
		return nil, fmt.Errorf("%w: from %q is not YYYY-MM-DD", domain.ErrInvalidDate, from)
	}

	toDate, err := time.Parse(DateLayout, strings.TrimSpace(to))
	if err != nil {
		logger.Error("Invalid trend end date", err)
		return nil, fmt.Errorf("%w: to %q is not YYYY-MM-DD", domain.ErrInvalidDate, to)
	}

	if fromDate.After(toDate) {
		return nil, fmt.Errorf("%w: from %s is after to %s", domain.ErrInvalidDate, fromDate.Format(DateLayout), toDate.Format(DateLayout))
	}

	rows, err := s.priceRepo.FindRange(ctx, productName, fromDate, toDate)
	if err != nil {
		logger.Error("Failed to find price history", err)
		return nil, err
	}

	points := make([]domain.TrendPoint, 0, len(rows))
	for _, row := range rows {
		point := domain.TrendPoint{Date: row.Date.Format(DateLayout)}
		if row.Price.Valid {
			price := row.Price.Float64
			point.Price = &price
		}
		points = append(points, point)
	}

	return points, nil
}
