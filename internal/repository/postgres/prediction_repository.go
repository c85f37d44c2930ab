package postgres

import (
	"context"
	"fmt"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"

	"gorm.io/gorm"
)

type PredictionRepository struct {
	DB *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{
		DB: db,
	}
}

// Create appends one row to the prediction log. Rows are never updated.
func (r *PredictionRepository) Create(ctx context.Context, record *domain.PredictionRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("%w: failed to record prediction: %v", domain.ErrPersistence, err)
	}

	return nil
}

// FindRecent returns the newest predictions first. An empty productName
// matches every product.
func (r *PredictionRepository) FindRecent(ctx context.Context, productName string, limit int) ([]domain.PredictionRecord, error) {
	var records []domain.PredictionRecord

	query := r.DB.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit)
	if productName != "" {
		query = query.Where("product_name = ?", productName)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find predictions: %w", err)
	}

	return records, nil
}
