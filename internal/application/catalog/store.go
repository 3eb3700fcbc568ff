// Package catalog is the single read path over plans, payment methods and
// price overrides. Both the plan and the method selection steps resolve
// prices through Store.ResolvePrice.
package catalog

import (
	"context"
	"fmt"
	"sort"

	domain "github.com/orris-inc/orrisdesk/internal/domain/catalog"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
)

// MethodOption is a payment method with the price it resolves to for a plan.
type MethodOption struct {
	Method *domain.PaymentMethod
	Price  money.Money
}

type Store struct {
	repo domain.Repository
}

func NewStore(repo domain.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) Panel(ctx context.Context, id uint) (*domain.Panel, error) {
	p, err := s.repo.GetPanel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get panel %d: %w", id, err)
	}
	if p == nil {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonPanelNotFound, "panel not found")
	}
	return p, nil
}

func (s *Store) Plan(ctx context.Context, id uint) (*domain.Plan, error) {
	p, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plan %d: %w", id, err)
	}
	if p == nil {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonPlanNotFound, "plan not found")
	}
	return p, nil
}

func (s *Store) PaymentMethod(ctx context.Context, id uint) (*domain.PaymentMethod, error) {
	m, err := s.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment method %d: %w", id, err)
	}
	if m == nil {
		return nil, errors.NewNotFoundErrorWithReason(errors.ReasonMethodNotFound, "payment method not found")
	}
	return m, nil
}

// EnabledPlans lists a guild's enabled plans by sort order.
func (s *Store) EnabledPlans(ctx context.Context, guildID string) ([]*domain.Plan, error) {
	plans, err := s.repo.ListPlans(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	out := make([]*domain.Plan, 0, len(plans))
	for _, p := range plans {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder() < out[j].SortOrder() })
	return out, nil
}

// EnabledMethods lists a guild's enabled payment methods priced for plan.
// Recommended methods sort first.
func (s *Store) EnabledMethods(ctx context.Context, plan *domain.Plan) ([]MethodOption, error) {
	methods, err := s.repo.ListPaymentMethods(ctx, plan.GuildID())
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	overrides, err := s.repo.ListOverrides(ctx, plan.ID())
	if err != nil {
		return nil, fmt.Errorf("list price overrides: %w", err)
	}
	byMethod := make(map[uint]*domain.PriceOverride, len(overrides))
	for _, o := range overrides {
		byMethod[o.MethodID()] = o
	}

	out := make([]MethodOption, 0, len(methods))
	for _, m := range methods {
		if !m.IsEnabled() {
			continue
		}
		out = append(out, MethodOption{Method: m, Price: domain.ResolvePrice(plan, byMethod[m.ID()])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Method.IsRecommended() != out[j].Method.IsRecommended() {
			return out[i].Method.IsRecommended()
		}
		return out[i].Method.SortOrder() < out[j].Method.SortOrder()
	})
	return out, nil
}

// ResolvePrice is the per-(plan, method) override when present, else the
// plan's discounted base price.
func (s *Store) ResolvePrice(ctx context.Context, plan *domain.Plan, methodID uint) (money.Money, error) {
	o, err := s.repo.GetOverride(ctx, plan.ID(), methodID)
	if err != nil {
		return money.Money{}, fmt.Errorf("get price override: %w", err)
	}
	return domain.ResolvePrice(plan, o), nil
}
