package alert

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
)

// AlertRepository contract interface
type AlertRepository interface {
	Upsert(ctx context.Context, alert *domain.PriceAlert) error
	FindByUser(ctx context.Context, userID uint) ([]domain.PriceAlert, error)
	FindByID(ctx context.Context, id uint) (domain.PriceAlert, error)
	Delete(ctx context.Context, id uint) error
}

type alertService struct {
	alertRepo AlertRepository
}

func NewAlertService(alertRepo AlertRepository) *alertService {
	return &alertService{
		alertRepo: alertRepo,
	}
}

// SetAlert creates the user's alert for a product, or moves its threshold
// when one already exists.
func (s *alertService) SetAlert(ctx context.Context, userID uint, productName string, alertPrice float64) (domain.PriceAlert, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when set alert")
		return domain.PriceAlert{}, fmt.Errorf("context error: %w", err)
	}

	if userID == 0 {
		logger.Error("Invalid user id when setting alert")
		return domain.PriceAlert{}, errors.New("invalid user id")
	}

	productName = strings.TrimSpace(productName)
	if productName == "" {
		logger.Error("Invalid alert data: product name is required")
		return domain.PriceAlert{}, errors.New("product name is required")
	}

	if alertPrice <= 0 || math.IsNaN(alertPrice) || math.IsInf(alertPrice, 0) {
		logger.Error("Invalid alert data: alert price must be positive", "alert_price", alertPrice)
		return domain.PriceAlert{}, errors.New("invalid alert price")
	}

	alert := domain.PriceAlert{
		UserID:      userID,
		ProductName: productName,
		AlertPrice:  alertPrice,
	}

	if err := s.alertRepo.Upsert(ctx, &alert); err != nil {
		logger.Error("failed to save price alert", err)
		return domain.PriceAlert{}, fmt.Errorf("failed to save alert: %w", err)
	}

	logger.Info("price alert saved", "user_id", userID, "product", productName)

	return alert, nil
}

func (s *alertService) ListAlerts(ctx context.Context, userID uint) ([]domain.PriceAlert, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when list alerts")
		return nil, fmt.Errorf("context error: %w", err)
	}

	alerts, err := s.alertRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to find alerts", err)
		return nil, err
	}

	return alerts, nil
}

// DeleteAlert removes an alert owned by userID. Someone else's alert is
// reported as not found.
func (s *alertService) DeleteAlert(ctx context.Context, id, userID uint) error {
	if id == 0 {
		logger.Error("Invalid alert id when deleting alert")
		return errors.New("invalid alert id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting alert")
		return fmt.Errorf("context error: %w", err)
	}

	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find alert", err)
		return err
	}

	if alert.UserID != userID {
		logger.Warn("alert belongs to another user", "alert_id", id, "user_id", userID)
		return fmt.Errorf("alert %w", domain.ErrNotFound)
	}

	if err := s.alertRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete alert", err)
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	logger.Info("price alert deleted", "alert_id", id)

	return nil
}
