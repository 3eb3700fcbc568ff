package mappers

import (
	"fmt"

	money "github.com/orris-inc/orrisdesk/internal/domain/shared/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	vo "github.com/orris-inc/orrisdesk/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/infrastructure/persistence/models"
)

func SubscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                 s.ID(),
		SID:                s.SID(),
		GuildID:            s.GuildID(),
		UserID:             s.UserID(),
		TicketID:           s.TicketID(),
		PlanID:             s.PlanID(),
		Email:              s.Email(),
		PlanName:           s.PlanName(),
		Price:              s.Price().Amount(),
		Currency:           s.Price().Currency(),
		PaymentMethodLabel: s.PaymentMethodLabel(),
		StartDate:          s.StartDate(),
		EndDate:            s.EndDate(),
		Status:             s.Status().String(),
		CancelledAt:        s.CancelledAt(),
		ExpiredAt:          s.ExpiredAt(),
		CreatedAt:          s.CreatedAt(),
		UpdatedAt:          s.UpdatedAt(),
	}
}

func SubscriptionToDomain(m *models.SubscriptionModel) (*subscription.Subscription, error) {
	status, err := vo.NewSubscriptionStatus(m.Status)
	if err != nil {
		return nil, err
	}
	price, err := money.NewMoney(m.Price, m.Currency)
	if err != nil {
		return nil, fmt.Errorf("subscription %d: %w", m.ID, err)
	}
	return subscription.ReconstructSubscription(subscription.SubscriptionState{
		ID:                 m.ID,
		SID:                m.SID,
		GuildID:            m.GuildID,
		UserID:             m.UserID,
		TicketID:           m.TicketID,
		PlanID:             m.PlanID,
		Email:              m.Email,
		PlanName:           m.PlanName,
		Price:              price,
		PaymentMethodLabel: m.PaymentMethodLabel,
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
		Status:             status,
		CancelledAt:        m.CancelledAt,
		ExpiredAt:          m.ExpiredAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	})
}

func SubscriptionsToDomain(ms []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	out := make([]*subscription.Subscription, 0, len(ms))
	for _, m := range ms {
		s, err := SubscriptionToDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func ReminderToModel(r *subscription.Reminder) *models.ReminderModel {
	return &models.ReminderModel{
		ID:             r.ID(),
		SubscriptionID: r.SubscriptionID(),
		UserID:         r.UserID(),
		GuildID:        r.GuildID(),
		ReminderDate:   r.ReminderDate(),
		DaysBefore:     r.DaysBefore(),
		Sent:           r.IsSent(),
		SentAt:         r.SentAt(),
		LastError:      r.LastError(),
		ErroredAt:      r.ErroredAt(),
		CreatedAt:      r.CreatedAt(),
	}
}

func ReminderToDomain(m *models.ReminderModel) (*subscription.Reminder, error) {
	return subscription.ReconstructReminder(subscription.ReminderState{
		ID:             m.ID,
		SubscriptionID: m.SubscriptionID,
		UserID:         m.UserID,
		GuildID:        m.GuildID,
		ReminderDate:   m.ReminderDate,
		DaysBefore:     m.DaysBefore,
		Sent:           m.Sent,
		SentAt:         m.SentAt,
		LastError:      m.LastError,
		ErroredAt:      m.ErroredAt,
		CreatedAt:      m.CreatedAt,
	})
}

func RemindersToDomain(ms []*models.ReminderModel) ([]*subscription.Reminder, error) {
	out := make([]*subscription.Reminder, 0, len(ms))
	for _, m := range ms {
		r, err := ReminderToDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
