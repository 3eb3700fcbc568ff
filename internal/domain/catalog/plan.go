package catalog

import (
	"fmt"

	vo "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
)

// Plan is a purchasable duration/price unit.
type Plan struct {
	id              uint
	guildID         string
	name            string
	description     string
	durationDays    int
	price           vo.Money
	discountPercent int
	enabled         bool
	sortOrder       int
}

type PlanParams struct {
	ID              uint
	GuildID         string
	Name            string
	Description     string
	DurationDays    int
	Price           vo.Money
	DiscountPercent int
	Enabled         bool
	SortOrder       int
}

func NewPlan(p PlanParams) (*Plan, error) {
	if p.GuildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}
	if p.Name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if p.DurationDays <= 0 {
		return nil, fmt.Errorf("plan duration must be positive, got %d", p.DurationDays)
	}
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		return nil, fmt.Errorf("discount must be between 0 and 100, got %d", p.DiscountPercent)
	}
	return &Plan{
		id:              p.ID,
		guildID:         p.GuildID,
		name:            p.Name,
		description:     p.Description,
		durationDays:    p.DurationDays,
		price:           p.Price,
		discountPercent: p.DiscountPercent,
		enabled:         p.Enabled,
		sortOrder:       p.SortOrder,
	}, nil
}

func (p *Plan) ID() uint             { return p.id }
func (p *Plan) GuildID() string      { return p.guildID }
func (p *Plan) Name() string         { return p.name }
func (p *Plan) Description() string  { return p.description }
func (p *Plan) DurationDays() int    { return p.durationDays }
func (p *Plan) ListPrice() vo.Money  { return p.price }
func (p *Plan) DiscountPercent() int { return p.discountPercent }
func (p *Plan) IsEnabled() bool      { return p.enabled }
func (p *Plan) SortOrder() int       { return p.sortOrder }
func (p *Plan) SetID(id uint)        { p.id = id }

// BasePrice is the list price after the plan discount.
func (p *Plan) BasePrice() vo.Money {
	return p.price.Discounted(p.discountPercent)
}
