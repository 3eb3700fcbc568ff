package catalog

import (
	"fmt"

	vo "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
)

// PriceOverride replaces a plan's base price when paid with one method.
type PriceOverride struct {
	planID   uint
	methodID uint
	price    vo.Money
}

func NewPriceOverride(planID, methodID uint, price vo.Money) (*PriceOverride, error) {
	if planID == 0 || methodID == 0 {
		return nil, fmt.Errorf("plan and method IDs are required")
	}
	return &PriceOverride{planID: planID, methodID: methodID, price: price}, nil
}

func (o *PriceOverride) PlanID() uint    { return o.planID }
func (o *PriceOverride) MethodID() uint  { return o.methodID }
func (o *PriceOverride) Price() vo.Money { return o.price }

// ResolvePrice returns the override price when one exists for the plan,
// otherwise the plan's discounted base price.
func ResolvePrice(plan *Plan, override *PriceOverride) vo.Money {
	if override != nil && override.planID == plan.id {
		return override.price
	}
	return plan.BasePrice()
}
