package payment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	// GetLatestPendingByTicket returns nil, nil when no pending claim exists.
	GetLatestPendingByTicket(ctx context.Context, ticketID uint) (*Payment, error)
	ListByTicket(ctx context.Context, ticketID uint) ([]*Payment, error)
	// Confirm only matches a pending payment.
	Confirm(ctx context.Context, id uint, staffID string, at time.Time) (bool, error)
}
