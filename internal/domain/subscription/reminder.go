package subscription

import (
	"fmt"
	"slices"
	"time"

	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
)

// Reminder is a one-time expiry notice. Only sent, sentAt and the error
// fields change after creation, and only through the scheduler.
type Reminder struct {
	id             uint
	subscriptionID uint
	userID         string
	guildID        string
	reminderDate   string
	daysBefore     int
	sent           bool
	sentAt         *time.Time
	lastError      *string
	erroredAt      *time.Time
	createdAt      time.Time
}

type ReminderState struct {
	ID             uint
	SubscriptionID uint
	UserID         string
	GuildID        string
	ReminderDate   string
	DaysBefore     int
	Sent           bool
	SentAt         *time.Time
	LastError      *string
	ErroredAt      *time.Time
	CreatedAt      time.Time
}

func ReconstructReminder(s ReminderState) (*Reminder, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("reminder ID cannot be zero")
	}
	return &Reminder{
		id:             s.ID,
		subscriptionID: s.SubscriptionID,
		userID:         s.UserID,
		guildID:        s.GuildID,
		reminderDate:   s.ReminderDate,
		daysBefore:     s.DaysBefore,
		sent:           s.Sent,
		sentAt:         s.SentAt,
		lastError:      s.LastError,
		erroredAt:      s.ErroredAt,
		createdAt:      s.CreatedAt,
	}, nil
}

func (r *Reminder) ID() uint              { return r.id }
func (r *Reminder) SubscriptionID() uint  { return r.subscriptionID }
func (r *Reminder) UserID() string        { return r.userID }
func (r *Reminder) GuildID() string       { return r.guildID }
func (r *Reminder) ReminderDate() string  { return r.reminderDate }
func (r *Reminder) DaysBefore() int       { return r.daysBefore }
func (r *Reminder) IsSent() bool          { return r.sent }
func (r *Reminder) SentAt() *time.Time    { return r.sentAt }
func (r *Reminder) LastError() *string    { return r.lastError }
func (r *Reminder) ErroredAt() *time.Time { return r.erroredAt }
func (r *Reminder) CreatedAt() time.Time  { return r.createdAt }
func (r *Reminder) SetID(id uint)         { r.id = id }

// IsUrgent selects the stronger renewal wording.
func (r *Reminder) IsUrgent() bool {
	return r.daysBefore <= 1
}

// PlanReminders derives one reminder per offset from the subscription's end
// date. Dates are business-timezone calendar dates and only dates strictly
// after today are kept. Offsets are deduplicated.
func PlanReminders(sub *Subscription, offsets []int, now time.Time) []*Reminder {
	today := biztime.DateOf(now)
	seen := make([]string, 0, len(offsets))
	out := make([]*Reminder, 0, len(offsets))

	for _, d := range offsets {
		if d <= 0 {
			continue
		}
		date := biztime.DateOf(sub.endDate.Add(-time.Duration(d) * day))
		if date <= today || slices.Contains(seen, date) {
			continue
		}
		seen = append(seen, date)
		out = append(out, &Reminder{
			subscriptionID: sub.id,
			userID:         sub.userID,
			guildID:        sub.guildID,
			reminderDate:   date,
			daysBefore:     d,
			createdAt:      now,
		})
	}
	return out
}
