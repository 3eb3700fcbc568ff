package catalog

import "context"

// Repository reads and maintains catalog rows. Getters return nil, nil when
// the row does not exist.
type Repository interface {
	GetPanel(ctx context.Context, id uint) (*Panel, error)
	GetPlan(ctx context.Context, id uint) (*Plan, error)
	GetPaymentMethod(ctx context.Context, id uint) (*PaymentMethod, error)
	GetOverride(ctx context.Context, planID, methodID uint) (*PriceOverride, error)

	ListPlans(ctx context.Context, guildID string) ([]*Plan, error)
	ListPaymentMethods(ctx context.Context, guildID string) ([]*PaymentMethod, error)
	ListOverrides(ctx context.Context, planID uint) ([]*PriceOverride, error)

	SavePanel(ctx context.Context, p *Panel) error
	SavePlan(ctx context.Context, p *Plan) error
	SavePaymentMethod(ctx context.Context, m *PaymentMethod) error
	SaveOverride(ctx context.Context, o *PriceOverride) error
}
