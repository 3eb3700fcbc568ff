package dto

import (
	"time"

	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
)

type SubscriptionDTO struct {
	ID                 uint       `json:"id"`
	SID                string     `json:"sid"`
	GuildID            string     `json:"guild_id"`
	UserID             string     `json:"user_id"`
	TicketID           uint       `json:"ticket_id"`
	PlanID             uint       `json:"plan_id"`
	PlanName           string     `json:"plan_name"`
	Email              string     `json:"email"`
	Price              string     `json:"price"`
	Currency           string     `json:"currency"`
	PaymentMethodLabel string     `json:"payment_method_label"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            time.Time  `json:"end_date"`
	Status             string     `json:"status"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt          *time.Time `json:"expired_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type ReminderDTO struct {
	ID             uint       `json:"id"`
	SubscriptionID uint       `json:"subscription_id"`
	UserID         string     `json:"user_id"`
	ReminderDate   string     `json:"reminder_date"`
	DaysBefore     int        `json:"days_before"`
	Sent           bool       `json:"sent"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	LastError      *string    `json:"last_error,omitempty"`
}

type StatsDTO struct {
	GuildID       string            `json:"guild_id"`
	Active        int64             `json:"active"`
	Expired       int64             `json:"expired"`
	Cancelled     int64             `json:"cancelled"`
	ActiveRevenue map[string]string `json:"active_revenue"`
}

func ToSubscriptionDTO(s *subscription.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                 s.ID(),
		SID:                s.SID(),
		GuildID:            s.GuildID(),
		UserID:             s.UserID(),
		TicketID:           s.TicketID(),
		PlanID:             s.PlanID(),
		PlanName:           s.PlanName(),
		Email:              s.Email(),
		Price:              s.Price().Amount().StringFixed(2),
		Currency:           s.Price().Currency(),
		PaymentMethodLabel: s.PaymentMethodLabel(),
		StartDate:          s.StartDate(),
		EndDate:            s.EndDate(),
		Status:             s.Status().String(),
		CancelledAt:        s.CancelledAt(),
		ExpiredAt:          s.ExpiredAt(),
		CreatedAt:          s.CreatedAt(),
	}
}

func ToSubscriptionDTOs(subs []*subscription.Subscription) []*SubscriptionDTO {
	out := make([]*SubscriptionDTO, 0, len(subs))
	for _, s := range subs {
		out = append(out, ToSubscriptionDTO(s))
	}
	return out
}

func ToReminderDTO(r *subscription.Reminder) *ReminderDTO {
	return &ReminderDTO{
		ID:             r.ID(),
		SubscriptionID: r.SubscriptionID(),
		UserID:         r.UserID(),
		ReminderDate:   r.ReminderDate(),
		DaysBefore:     r.DaysBefore(),
		Sent:           r.IsSent(),
		SentAt:         r.SentAt(),
		LastError:      r.LastError(),
	}
}

func ToStatsDTO(guildID string, s *subscription.Stats) *StatsDTO {
	revenue := make(map[string]string, len(s.ActiveRevenue))
	for currency, amount := range s.ActiveRevenue {
		revenue[currency] = amount.StringFixed(2)
	}
	return &StatsDTO{
		GuildID:       guildID,
		Active:        s.Active,
		Expired:       s.Expired,
		Cancelled:     s.Cancelled,
		ActiveRevenue: revenue,
	}
}
