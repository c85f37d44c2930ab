package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"

	"gorm.io/gorm"
)

// HistoricalPriceRepository reads the price history table. Rows are loaded
// by an external import, the application never writes them.
type HistoricalPriceRepository struct {
	DB *gorm.DB
}

func NewHistoricalPriceRepository(db *gorm.DB) *HistoricalPriceRepository {
	return &HistoricalPriceRepository{
		DB: db,
	}
}

func (r *HistoricalPriceRepository) DistinctProducts(ctx context.Context) ([]string, error) {
	var products []string

	err := r.DB.WithContext(ctx).Model(&domain.HistoricalPrice{}).
		Distinct("product_name").
		Order("product_name").
		Pluck("product_name", &products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

func (r *HistoricalPriceRepository) FindRange(ctx context.Context, productName string, from, to time.Time) ([]domain.HistoricalPrice, error) {
	var prices []domain.HistoricalPrice

	err := r.DB.WithContext(ctx).
		Where("product_name = ? AND date >= ? AND date <= ?", productName, from, to).
		Order("date asc").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find price history: %w", err)
	}

	return prices, nil
}
