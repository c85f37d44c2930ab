package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository struct {
	DB *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{
		DB: db,
	}
}

// Upsert inserts the alert or, when the user already watches the product,
// replaces its price. alert is reloaded so ID and timestamps are current.
func (r *AlertRepository) Upsert(ctx context.Context, alert *domain.PriceAlert) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"alert_price", "updated_at"}),
	}).Create(alert).Error
	if err != nil {
		return fmt.Errorf("failed to upsert alert: %w", err)
	}

	err = r.DB.WithContext(ctx).
		Where("user_id = ? AND product_name = ?", alert.UserID, alert.ProductName).
		First(alert).Error
	if err != nil {
		return fmt.Errorf("failed to reload alert: %w", err)
	}

	return nil
}

func (r *AlertRepository) FindByUser(ctx context.Context, userID uint) ([]domain.PriceAlert, error) {
	var alerts []domain.PriceAlert

	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("product_name").Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find alerts: %w", err)
	}

	return alerts, nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id uint) (domain.PriceAlert, error) {
	var alert domain.PriceAlert

	err := r.DB.WithContext(ctx).First(&alert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PriceAlert{}, fmt.Errorf("alert %w", domain.ErrNotFound)
		}
		return domain.PriceAlert{}, fmt.Errorf("failed to find alert: %w", err)
	}

	return alert, nil
}

func (r *AlertRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&domain.PriceAlert{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete alert: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("alert %w", domain.ErrNotFound)
	}

	return nil
}
