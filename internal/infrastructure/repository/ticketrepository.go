package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/orrisdesk/internal/domain/ticket"
	vo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/db"
)

// TicketRepository applies every workflow step as a conditional single-row
// update, so concurrent interactions on one ticket cannot both win.
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) ticket.Repository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	model := mappers.TicketToModel(t)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return t.SetID(model.ID)
}

func (r *TicketRepository) GetByID(ctx context.Context, id uint) (*ticket.Ticket, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *TicketRepository) GetByChannel(ctx context.Context, channelID string) (*ticket.Ticket, error) {
	return r.first(ctx, "channel_id = ?", channelID)
}

func (r *TicketRepository) first(ctx context.Context, query string, arg any) (*ticket.Ticket, error) {
	var model models.TicketModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return mappers.TicketToDomain(&model)
}

func (r *TicketRepository) ListOpenByUser(ctx context.Context, guildID, userID string) ([]*ticket.Ticket, error) {
	var ticketModels []*models.TicketModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("guild_id = ? AND opener_id = ? AND status = ?", guildID, userID, vo.StatusOpen.String()).
		Order("created_at ASC").
		Find(&ticketModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	return toTickets(ticketModels)
}

func (r *TicketRepository) ListClosed(ctx context.Context) ([]*ticket.Ticket, error) {
	var ticketModels []*models.TicketModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", vo.StatusClosed.String()).
		Order("closed_at ASC").
		Find(&ticketModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list closed tickets: %w", err)
	}
	return toTickets(ticketModels)
}

func toTickets(ticketModels []*models.TicketModel) ([]*ticket.Ticket, error) {
	tickets := make([]*ticket.Ticket, 0, len(ticketModels))
	for _, m := range ticketModels {
		t, err := mappers.TicketToDomain(m)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (r *TicketRepository) CountOpenByUserPanel(ctx context.Context, userID string, panelID uint) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("opener_id = ? AND panel_id = ? AND status = ?", userID, panelID, vo.StatusOpen.String()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count open tickets: %w", err)
	}
	return count, nil
}

// openUnconfirmed scopes an update to an open ticket whose payment has not
// been confirmed.
func (r *TicketRepository) openUnconfirmed(ctx context.Context, id uint) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("id = ? AND status = ? AND payment_confirmed = ?", id, vo.StatusOpen.String(), false)
}

func (r *TicketRepository) SetPlan(ctx context.Context, id uint, planID uint) (bool, error) {
	result := r.openUnconfirmed(ctx, id).Updates(map[string]any{
		"plan_id":           planID,
		"payment_method_id": nil,
		"updated_at":        biztime.NowUTC(),
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to set ticket plan: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *TicketRepository) SetPaymentMethod(ctx context.Context, id uint, methodID uint) (bool, error) {
	result := r.openUnconfirmed(ctx, id).
		Where("plan_id IS NOT NULL").
		Updates(map[string]any{
			"payment_method_id": methodID,
			"updated_at":        biztime.NowUTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to set ticket payment method: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *TicketRepository) ConfirmPayment(ctx context.Context, id uint, staffID string, at time.Time) (bool, error) {
	result := r.openUnconfirmed(ctx, id).Updates(map[string]any{
		"payment_confirmed":    true,
		"payment_confirmed_by": staffID,
		"payment_confirmed_at": at,
		"updated_at":           at,
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to confirm ticket payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SetEmail only fills an empty email; the first stored address wins.
func (r *TicketRepository) SetEmail(ctx context.Context, id uint, email string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("id = ? AND email IS NULL", id).
		Updates(map[string]any{
			"email":      email,
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set ticket email: %w", result.Error)
	}
	return nil
}

func (r *TicketRepository) Close(ctx context.Context, id uint, actorID string, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("id = ? AND status = ?", id, vo.StatusOpen.String()).
		Updates(map[string]any{
			"status":     vo.StatusClosed.String(),
			"closed_by":  actorID,
			"closed_at":  at,
			"updated_at": at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to close ticket: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *TicketRepository) Claim(ctx context.Context, id uint, staffID string) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Where("id = ? AND status = ? AND claimed_by IS NULL", id, vo.StatusOpen.String()).
		Updates(map[string]any{
			"claimed_by": staffID,
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim ticket: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Delete is idempotent; deleting a missing ticket is not an error.
func (r *TicketRepository) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.TicketModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) StatusCounts(ctx context.Context, guildID string) (map[vo.TicketStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TicketModel{}).
		Select("status, COUNT(*) AS count").
		Where("guild_id = ?", guildID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tickets by status: %w", err)
	}
	counts := map[vo.TicketStatus]int64{vo.StatusOpen: 0, vo.StatusClosed: 0}
	for _, row := range rows {
		counts[vo.TicketStatus(row.Status)] = row.Count
	}
	return counts, nil
}
