package catalog

import (
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	domain "github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/domain/guild"
	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

// ImportFile is the YAML document accepted by `orrisdesk catalog import`.
type ImportFile struct {
	Guilds []GuildSpec `yaml:"guilds" json:"guilds" validate:"required,min=1,dive"`
}

type GuildSpec struct {
	ID             string       `yaml:"id" json:"id" validate:"required,numeric"`
	ReminderDays   []int        `yaml:"reminder_days" json:"reminder_days" validate:"omitempty,dive,gt=0"`
	StaffRoleIDs   []string     `yaml:"staff_role_ids" json:"staff_role_ids" validate:"omitempty,dive,numeric"`
	LogChannelID   string       `yaml:"log_channel_id" json:"log_channel_id" validate:"omitempty,numeric"`
	Currency       string       `yaml:"currency" json:"currency" validate:"omitempty,len=3"`
	Locale         string       `yaml:"locale" json:"locale"`
	Panels         []PanelSpec  `yaml:"panels" json:"panels" validate:"dive"`
	Plans          []PlanSpec   `yaml:"plans" json:"plans" validate:"dive"`
	PaymentMethods []MethodSpec `yaml:"payment_methods" json:"payment_methods" validate:"dive"`
}

type PanelSpec struct {
	ID                uint   `yaml:"id" json:"id"`
	Name              string `yaml:"name" json:"name" validate:"required,max=100"`
	CategoryID        string `yaml:"category_id" json:"category_id" validate:"omitempty,numeric"`
	StaffRoleID       string `yaml:"staff_role_id" json:"staff_role_id" validate:"omitempty,numeric"`
	LogChannelID      string `yaml:"log_channel_id" json:"log_channel_id" validate:"omitempty,numeric"`
	MaxTicketsPerUser int    `yaml:"max_tickets_per_user" json:"max_tickets_per_user" validate:"gte=0"`
	CooldownSeconds   int    `yaml:"cooldown_seconds" json:"cooldown_seconds" validate:"gte=0"`
	Enabled           *bool  `yaml:"enabled" json:"enabled"`
}

type PlanSpec struct {
	ID              uint           `yaml:"id" json:"id"`
	Name            string         `yaml:"name" json:"name" validate:"required,max=100"`
	Description     string         `yaml:"description" json:"description" validate:"max=1000"`
	DurationDays    int            `yaml:"duration_days" json:"duration_days" validate:"required,gt=0"`
	Price           string         `yaml:"price" json:"price" validate:"required"`
	Currency        string         `yaml:"currency" json:"currency" validate:"omitempty,len=3"`
	DiscountPercent int            `yaml:"discount_percent" json:"discount_percent" validate:"gte=0,lte=100"`
	SortOrder       int            `yaml:"sort_order" json:"sort_order"`
	Enabled         *bool          `yaml:"enabled" json:"enabled"`
	Overrides       []OverrideSpec `yaml:"overrides" json:"overrides" validate:"dive"`
}

// OverrideSpec prices a plan for one payment method, named by its label.
type OverrideSpec struct {
	Method string `yaml:"method" json:"method" validate:"required"`
	Price  string `yaml:"price" json:"price" validate:"required"`
}

type MethodSpec struct {
	ID           uint   `yaml:"id" json:"id"`
	Label        string `yaml:"label" json:"label" validate:"required,max=80"`
	Instructions string `yaml:"instructions" json:"instructions" validate:"max=2000"`
	Recommended  bool   `yaml:"recommended" json:"recommended"`
	SortOrder    int    `yaml:"sort_order" json:"sort_order"`
	Enabled      *bool  `yaml:"enabled" json:"enabled"`
}

// ImportResult counts the rows written.
type ImportResult struct {
	Guilds         int
	Panels         int
	Plans          int
	PaymentMethods int
	Overrides      int
}

type transactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type textSanitizer interface {
	PlainText(text string) string
}

// Importer seeds the catalog and guild settings from an ImportFile.
type Importer struct {
	repo      domain.Repository
	settings  guild.Repository
	tx        transactionRunner
	sanitizer textSanitizer
	logger    logger.Interface
}

func NewImporter(repo domain.Repository, settings guild.Repository, tx transactionRunner, sanitizer textSanitizer, log logger.Interface) *Importer {
	return &Importer{
		repo:      repo,
		settings:  settings,
		tx:        tx,
		sanitizer: sanitizer,
		logger:    log,
	}
}

// ParseImportFile decodes and validates a catalog document. Unknown keys are
// rejected so typos do not silently drop settings.
func ParseImportFile(r io.Reader) (*ImportFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f ImportFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, errors.NewValidationError("catalog file is empty")
		}
		return nil, errors.NewValidationError("invalid catalog file", err.Error())
	}
	if err := utils.ValidateStruct(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Import writes every guild of f in one transaction. Entries with an ID
// overwrite the existing row; entries without one are inserted.
func (i *Importer) Import(ctx context.Context, f *ImportFile) (*ImportResult, error) {
	res := &ImportResult{}
	err := i.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, g := range f.Guilds {
			if err := i.importGuild(ctx, g, res); err != nil {
				return fmt.Errorf("guild %s: %w", g.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		i.logger.Errorw("catalog import failed", "error", err)
		return nil, err
	}

	i.logger.Infow("catalog imported",
		"guilds", res.Guilds,
		"panels", res.Panels,
		"plans", res.Plans,
		"payment_methods", res.PaymentMethods,
		"overrides", res.Overrides,
	)
	return res, nil
}

func (i *Importer) importGuild(ctx context.Context, g GuildSpec, res *ImportResult) error {
	settings, err := guild.ReconstructSettings(g.ID, g.ReminderDays, g.StaffRoleIDs, g.LogChannelID, g.Currency, g.Locale)
	if err != nil {
		return errors.NewValidationError("invalid guild settings", err.Error())
	}
	if err := i.settings.Upsert(ctx, settings); err != nil {
		return err
	}
	res.Guilds++

	for _, p := range g.Panels {
		panel, err := domain.NewPanel(domain.PanelParams{
			ID:                p.ID,
			GuildID:           g.ID,
			Name:              i.clean(p.Name),
			CategoryID:        p.CategoryID,
			StaffRoleID:       p.StaffRoleID,
			LogChannelID:      p.LogChannelID,
			MaxTicketsPerUser: p.MaxTicketsPerUser,
			Cooldown:          time.Duration(p.CooldownSeconds) * time.Second,
			Enabled:           enabled(p.Enabled),
		})
		if err != nil {
			return errors.NewValidationError("invalid panel "+p.Name, err.Error())
		}
		if err := i.repo.SavePanel(ctx, panel); err != nil {
			return err
		}
		res.Panels++
	}

	methodIDs := make(map[string]uint, len(g.PaymentMethods))
	for _, m := range g.PaymentMethods {
		method, err := domain.NewPaymentMethod(domain.PaymentMethodParams{
			ID:           m.ID,
			GuildID:      g.ID,
			Label:        i.clean(m.Label),
			Instructions: m.Instructions,
			Recommended:  m.Recommended,
			Enabled:      enabled(m.Enabled),
			SortOrder:    m.SortOrder,
		})
		if err != nil {
			return errors.NewValidationError("invalid payment method "+m.Label, err.Error())
		}
		if err := i.repo.SavePaymentMethod(ctx, method); err != nil {
			return err
		}
		methodIDs[m.Label] = method.ID()
		res.PaymentMethods++
	}

	for _, p := range g.Plans {
		currency := p.Currency
		if currency == "" {
			currency = settings.Currency()
		}
		price, err := parseMoney(p.Price, currency)
		if err != nil {
			return errors.NewValidationError("invalid price for plan "+p.Name, err.Error())
		}
		plan, err := domain.NewPlan(domain.PlanParams{
			ID:              p.ID,
			GuildID:         g.ID,
			Name:            i.clean(p.Name),
			Description:     i.clean(p.Description),
			DurationDays:    p.DurationDays,
			Price:           price,
			DiscountPercent: p.DiscountPercent,
			Enabled:         enabled(p.Enabled),
			SortOrder:       p.SortOrder,
		})
		if err != nil {
			return errors.NewValidationError("invalid plan "+p.Name, err.Error())
		}
		if err := i.repo.SavePlan(ctx, plan); err != nil {
			return err
		}
		res.Plans++

		for _, o := range p.Overrides {
			methodID, ok := methodIDs[o.Method]
			if !ok {
				return errors.NewValidationError(fmt.Sprintf("plan %s overrides unknown payment method %q", p.Name, o.Method))
			}
			overridePrice, err := parseMoney(o.Price, currency)
			if err != nil {
				return errors.NewValidationError("invalid override price for plan "+p.Name, err.Error())
			}
			override, err := domain.NewPriceOverride(plan.ID(), methodID, overridePrice)
			if err != nil {
				return errors.NewValidationError("invalid override for plan "+p.Name, err.Error())
			}
			if err := i.repo.SaveOverride(ctx, override); err != nil {
				return err
			}
			res.Overrides++
		}
	}
	return nil
}

// clean strips markup from text shown in embeds and select menus. Chat
// clients do not decode entities, so the sanitizer's escaping is undone.
func (i *Importer) clean(s string) string {
	if i.sanitizer == nil {
		return s
	}
	return html.UnescapeString(i.sanitizer.PlainText(s))
}

func parseMoney(amount, currency string) (money.Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return money.Money{}, err
	}
	return money.NewMoney(d, currency)
}

func enabled(b *bool) bool {
	return b == nil || *b
}
