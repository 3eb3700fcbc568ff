package usecases

import (
	"context"
	"time"

	appcatalog "github.com/orris-inc/orrisdesk/internal/application/catalog"
	subusecases "github.com/orris-inc/orrisdesk/internal/application/subscription/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
)

// CatalogReader is the catalog store as the workflow sees it.
type CatalogReader interface {
	Panel(ctx context.Context, id uint) (*catalog.Panel, error)
	Plan(ctx context.Context, id uint) (*catalog.Plan, error)
	PaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error)
	EnabledPlans(ctx context.Context, guildID string) ([]*catalog.Plan, error)
	EnabledMethods(ctx context.Context, plan *catalog.Plan) ([]appcatalog.MethodOption, error)
	ResolvePrice(ctx context.Context, plan *catalog.Plan, methodID uint) (money.Money, error)
}

// Cooldown grants a key for ttl. Acquire returns false while the key is held.
type Cooldown interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ChannelCleanup deletes a closed ticket's channel and row after delay.
type ChannelCleanup interface {
	ScheduleDeletion(ctx context.Context, ticketID uint, channelID string, delay time.Duration) error
}

type SubscriptionMaterializer interface {
	Execute(ctx context.Context, cmd subusecases.MaterializeSubscriptionCommand) (*subusecases.MaterializeSubscriptionResult, error)
}

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Receipt is the purchase confirmation mailed to the collected address.
type Receipt struct {
	To              string
	GuildID         string
	SubscriptionSID string
	PlanName        string
	Price           string
	StartDate       time.Time
	EndDate         time.Time
}

type ReceiptSender interface {
	SendReceipt(ctx context.Context, r Receipt) error
}
