package mappers

import (
	"fmt"
	"time"

	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
)

func PanelToModel(p *catalog.Panel) *models.PanelModel {
	return &models.PanelModel{
		ID:                p.ID(),
		GuildID:           p.GuildID(),
		Name:              p.Name(),
		CategoryID:        p.CategoryID(),
		StaffRoleID:       p.StaffRoleID(),
		LogChannelID:      p.LogChannelID(),
		MaxTicketsPerUser: p.MaxTicketsPerUser(),
		CooldownSeconds:   int(p.Cooldown() / time.Second),
		Enabled:           p.IsEnabled(),
	}
}

func PanelToDomain(m *models.PanelModel) (*catalog.Panel, error) {
	return catalog.NewPanel(catalog.PanelParams{
		ID:                m.ID,
		GuildID:           m.GuildID,
		Name:              m.Name,
		CategoryID:        m.CategoryID,
		StaffRoleID:       m.StaffRoleID,
		LogChannelID:      m.LogChannelID,
		MaxTicketsPerUser: m.MaxTicketsPerUser,
		Cooldown:          time.Duration(m.CooldownSeconds) * time.Second,
		Enabled:           m.Enabled,
	})
}

func PlanToModel(p *catalog.Plan) *models.PlanModel {
	return &models.PlanModel{
		ID:              p.ID(),
		GuildID:         p.GuildID(),
		Name:            p.Name(),
		Description:     p.Description(),
		DurationDays:    p.DurationDays(),
		Price:           p.ListPrice().Amount(),
		Currency:        p.ListPrice().Currency(),
		DiscountPercent: p.DiscountPercent(),
		Enabled:         p.IsEnabled(),
		SortOrder:       p.SortOrder(),
	}
}

func PlanToDomain(m *models.PlanModel) (*catalog.Plan, error) {
	price, err := money.NewMoney(m.Price, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", m.ID, err)
	}
	return catalog.NewPlan(catalog.PlanParams{
		ID:              m.ID,
		GuildID:         m.GuildID,
		Name:            m.Name,
		Description:     m.Description,
		DurationDays:    m.DurationDays,
		Price:           price,
		DiscountPercent: m.DiscountPercent,
		Enabled:         m.Enabled,
		SortOrder:       m.SortOrder,
	})
}

func PaymentMethodToModel(pm *catalog.PaymentMethod) *models.PaymentMethodModel {
	return &models.PaymentMethodModel{
		ID:           pm.ID(),
		GuildID:      pm.GuildID(),
		Label:        pm.Label(),
		Instructions: pm.Instructions(),
		Recommended:  pm.IsRecommended(),
		Enabled:      pm.IsEnabled(),
		SortOrder:    pm.SortOrder(),
	}
}

func PaymentMethodToDomain(m *models.PaymentMethodModel) (*catalog.PaymentMethod, error) {
	return catalog.NewPaymentMethod(catalog.PaymentMethodParams{
		ID:           m.ID,
		GuildID:      m.GuildID,
		Label:        m.Label,
		Instructions: m.Instructions,
		Recommended:  m.Recommended,
		Enabled:      m.Enabled,
		SortOrder:    m.SortOrder,
	})
}

func PriceOverrideToModel(o *catalog.PriceOverride) *models.PlanPricingModel {
	return &models.PlanPricingModel{
		PlanID:   o.PlanID(),
		MethodID: o.MethodID(),
		Price:    o.Price().Amount(),
		Currency: o.Price().Currency(),
	}
}

func PriceOverrideToDomain(m *models.PlanPricingModel) (*catalog.PriceOverride, error) {
	price, err := money.NewMoney(m.Price, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("price override %d: %w", m.ID, err)
	}
	return catalog.NewPriceOverride(m.PlanID, m.MethodID, price)
}
