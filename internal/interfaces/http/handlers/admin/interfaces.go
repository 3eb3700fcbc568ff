// Package admin provides the HTTP handlers behind /api/admin.
package admin

import (
	"context"

	"github.com/gin-gonic/gin"

	reminderusecases "github.com/orris-inc/orrisdesk/internal/application/reminder/usecases"
	subdto "github.com/orris-inc/orrisdesk/internal/application/subscription/dto"
	subusecases "github.com/orris-inc/orrisdesk/internal/application/subscription/usecases"
	ticketdto "github.com/orris-inc/orrisdesk/internal/application/ticket/dto"
	ticketusecases "github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
	"github.com/orris-inc/orrisdesk/internal/interfaces/http/middleware"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
)

type subscriptionService interface {
	Get(ctx context.Context, id uint) (*subusecases.GetSubscriptionResult, error)
	Extend(ctx context.Context, cmd subusecases.ExtendSubscriptionCommand) (*subusecases.ExtendSubscriptionResult, error)
	Cancel(ctx context.Context, cmd subusecases.CancelSubscriptionCommand) error
	List(ctx context.Context, query subusecases.ListSubscriptionsQuery) (*subusecases.ListSubscriptionsResult, error)
	ListExpiring(ctx context.Context, query subusecases.ListExpiringQuery) ([]*subdto.SubscriptionDTO, error)
	Stats(ctx context.Context, guildID string) (*subdto.StatsDTO, error)
}

type reminderDispatcher interface {
	DispatchReminder(ctx context.Context, cmd reminderusecases.DispatchReminderCommand) (*reminderusecases.DispatchReminderResult, error)
}

type ticketService interface {
	Get(ctx context.Context, query ticketusecases.GetTicketQuery) (*ticketdto.TicketDTO, error)
	Stats(ctx context.Context, guildID string) (*ticketdto.TicketStatsDTO, error)
}

type paymentMethodReader interface {
	PaymentMethod(ctx context.Context, id uint) (*catalog.PaymentMethod, error)
}

type markdownRenderer interface {
	ToHTMLSanitized(markdown string) (string, error)
	PlainText(text string) string
}

// operator returns the authenticated admin's name for audit entries.
func operator(c *gin.Context) string {
	if claims, ok := middleware.AdminClaims(c); ok {
		return claims.Operator
	}
	return ""
}

// requireGuild rejects a request for a guild outside the token's scope.
func requireGuild(c *gin.Context, guildID string) error {
	claims, ok := middleware.AdminClaims(c)
	if !ok {
		return errors.NewUnauthorizedError("admin token required")
	}
	if !claims.CanAccessGuild(guildID) {
		return errors.NewForbiddenError("token is not scoped to this guild")
	}
	return nil
}

// requireUnscoped rejects tokens limited to specific guilds.
func requireUnscoped(c *gin.Context) error {
	claims, ok := middleware.AdminClaims(c)
	if !ok {
		return errors.NewUnauthorizedError("admin token required")
	}
	if len(claims.GuildIDs) > 0 {
		return errors.NewForbiddenError("this operation requires an unscoped token")
	}
	return nil
}
