package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/orrisdesk/internal/domain/payment"
	vo "github.com/orris-inc/orrisdesk/internal/domain/payment/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return p.SetID(model.ID)
}

func (r *PaymentRepository) GetLatestPendingByTicket(ctx context.Context, ticketID uint) (*payment.Payment, error) {
	var model models.PaymentModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("ticket_id = ? AND status = ?", ticketID, vo.PaymentStatusPending.String()).
		Order("id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending payment: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) ListByTicket(ctx context.Context, ticketID uint) ([]*payment.Payment, error) {
	var paymentModels []*models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("ticket_id = ?", ticketID).
		Order("id ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	payments := make([]*payment.Payment, 0, len(paymentModels))
	for _, m := range paymentModels {
		p, err := mappers.PaymentToDomain(m)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (r *PaymentRepository) Confirm(ctx context.Context, id uint, staffID string, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", id, vo.PaymentStatusPending.String()).
		Updates(map[string]any{
			"status":       vo.PaymentStatusConfirmed.String(),
			"confirmed_by": staffID,
			"confirmed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to confirm payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
