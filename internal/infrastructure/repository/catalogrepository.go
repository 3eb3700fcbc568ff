package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
)

// CatalogRepository stores panels, plans, payment methods and per-method
// price overrides.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.Repository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetPanel(ctx context.Context, id uint) (*catalog.Panel, error) {
	var model models.PanelModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get panel: %w", err)
	}
	return mappers.PanelToDomain(&model)
}

func (r *CatalogRepository) GetPlan(ctx context.Context, id uint) (*catalog.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mappers.PlanToDomain(&model)
}

func (r *CatalogRepository) GetPaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return mappers.PaymentMethodToDomain(&model)
}

func (r *CatalogRepository) GetOverride(ctx context.Context, planID, methodID uint) (*catalog.PriceOverride, error) {
	var model models.PlanPricingModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("plan_id = ? AND method_id = ?", planID, methodID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get price override: %w", err)
	}
	return mappers.PriceOverrideToDomain(&model)
}

func (r *CatalogRepository) ListPlans(ctx context.Context, guildID string) ([]*catalog.Plan, error) {
	var planModels []*models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("guild_id = ?", guildID).
		Order("sort_order ASC, id ASC").
		Find(&planModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	plans := make([]*catalog.Plan, 0, len(planModels))
	for _, m := range planModels {
		p, err := mappers.PlanToDomain(m)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (r *CatalogRepository) ListPaymentMethods(ctx context.Context, guildID string) ([]*catalog.PaymentMethod, error) {
	var methodModels []*models.PaymentMethodModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("guild_id = ?", guildID).
		Order("sort_order ASC, id ASC").
		Find(&methodModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	methods := make([]*catalog.PaymentMethod, 0, len(methodModels))
	for _, m := range methodModels {
		pm, err := mappers.PaymentMethodToDomain(m)
		if err != nil {
			return nil, err
		}
		methods = append(methods, pm)
	}
	return methods, nil
}

func (r *CatalogRepository) ListOverrides(ctx context.Context, planID uint) ([]*catalog.PriceOverride, error) {
	var overrideModels []*models.PlanPricingModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("plan_id = ?", planID).
		Order("method_id ASC").
		Find(&overrideModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list price overrides: %w", err)
	}
	overrides := make([]*catalog.PriceOverride, 0, len(overrideModels))
	for _, m := range overrideModels {
		o, err := mappers.PriceOverrideToDomain(m)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

// SavePanel inserts a panel without an ID and updates it otherwise.
func (r *CatalogRepository) SavePanel(ctx context.Context, p *catalog.Panel) error {
	model := mappers.PanelToModel(p)
	if err := saveRow(db.GetTxFromContext(ctx, r.db), model, model.ID); err != nil {
		return fmt.Errorf("failed to save panel: %w", err)
	}
	p.SetID(model.ID)
	return nil
}

func (r *CatalogRepository) SavePlan(ctx context.Context, p *catalog.Plan) error {
	model := mappers.PlanToModel(p)
	if err := saveRow(db.GetTxFromContext(ctx, r.db), model, model.ID); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	p.SetID(model.ID)
	return nil
}

func (r *CatalogRepository) SavePaymentMethod(ctx context.Context, m *catalog.PaymentMethod) error {
	model := mappers.PaymentMethodToModel(m)
	if err := saveRow(db.GetTxFromContext(ctx, r.db), model, model.ID); err != nil {
		return fmt.Errorf("failed to save payment method: %w", err)
	}
	m.SetID(model.ID)
	return nil
}

func (r *CatalogRepository) SaveOverride(ctx context.Context, o *catalog.PriceOverride) error {
	model := mappers.PriceOverrideToModel(o)
	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}, {Name: "method_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "currency", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save price override: %w", err)
	}
	return nil
}

// saveRow inserts when id is zero and otherwise overwrites every column but
// the key and creation time.
func saveRow(tx *gorm.DB, model any, id uint) error {
	if id == 0 {
		return tx.Create(model).Error
	}
	return tx.Model(model).Select("*").Omit("id", "created_at").Updates(model).Error
}
