package usecases

import (
	"fmt"
	"math"
	"time"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/domain/subscription"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
)

// daysRemaining rounds up so 23 hours left still reads as one day.
func daysRemaining(end, now time.Time) int {
	days := int(math.Ceil(end.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func reminderNotice(sub *subscription.Subscription, r *subscription.Reminder, now time.Time, locale string) messaging.Message {
	days := daysRemaining(sub.EndDate(), now)
	expires := biztime.FormatInBizTimezone(sub.EndDate(), "02 Jan 2006")

	msg := messaging.Message{
		Title: "Subscription expiring soon",
		Body: fmt.Sprintf("Your **%s** subscription expires on %s (%s).",
			sub.PlanName(), expires, dayCount(days)),
		Tone: messaging.ToneWarning,
		Fields: []messaging.Field{
			{Name: "Subscription", Value: sub.SID(), Inline: true},
			{Name: "Plan", Value: sub.PlanName(), Inline: true},
			{Name: "Price", Value: sub.Price().Format(locale), Inline: true},
		},
	}
	if r.IsUrgent() {
		msg.Title = "Renew now"
		msg.Body += "\nRenew now to avoid losing access. Open a new ticket to renew."
		msg.Tone = messaging.ToneDanger
	} else {
		msg.Body += "\nOpen a new ticket whenever you are ready to renew."
	}
	return msg
}

func dayCount(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
