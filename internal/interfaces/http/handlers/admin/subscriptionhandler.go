package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	subusecases "github.com/orris-inc/orrisdesk/internal/application/subscription/usecases"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

// SubscriptionHandler serves subscription lookups, extension and cancellation.
type SubscriptionHandler struct {
	service subscriptionService
	logger  logger.Interface
}

func NewSubscriptionHandler(service subscriptionService, logger logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, logger: logger}
}

type ExtendSubscriptionRequest struct {
	Days int `json:"days" binding:"required,gt=0,lte=3650"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type ExtendSubscriptionResponse struct {
	SubscriptionID uint      `json:"subscription_id"`
	PreviousEnd    time.Time `json:"previous_end"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`
	RemindersAdded int       `json:"reminders_added"`
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	id, err := parseID(c, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.loadScoped(c, id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) Extend(c *gin.Context) {
	id, err := parseID(c, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ExtendSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for extend subscription", "subscription_id", id, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("days must be between 1 and 3650"))
		return
	}

	if _, err := h.loadScoped(c, id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.service.Extend(c.Request.Context(), subusecases.ExtendSubscriptionCommand{
		SubscriptionID: id,
		Days:           req.Days,
		ActorID:        operator(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription extended successfully", ExtendSubscriptionResponse{
		SubscriptionID: result.SubscriptionID,
		PreviousEnd:    result.PreviousEnd,
		EndDate:        result.EndDate,
		Status:         result.Status,
		RemindersAdded: result.RemindersAdded,
	})
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	id, err := parseID(c, "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	// The body is optional.
	var req CancelSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warnw("invalid request body for cancel subscription", "subscription_id", id, "error", err)
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body"))
			return
		}
	}

	if _, err := h.loadScoped(c, id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.service.Cancel(c.Request.Context(), subusecases.CancelSubscriptionCommand{
		SubscriptionID: id,
		ActorID:        operator(c),
		Reason:         req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription cancelled successfully", nil)
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	guildID := c.Query("guild_id")
	if err := requireGuild(c, guildID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	p := utils.ParsePagination(c)
	result, err := h.service.List(c.Request.Context(), subusecases.ListSubscriptionsQuery{
		GuildID:  guildID,
		UserID:   c.Query("user_id"),
		Status:   c.Query("status"),
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Subscriptions, result.Total, result.Page, result.PageSize)
}

func (h *SubscriptionHandler) ListExpiring(c *gin.Context) {
	guildID := c.Query("guild_id")
	if err := requireGuild(c, guildID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid days parameter"))
			return
		}
		days = n
	}

	subs, err := h.service.ListExpiring(c.Request.Context(), subusecases.ListExpiringQuery{GuildID: guildID, Days: days})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subs)
}

func (h *SubscriptionHandler) Stats(c *gin.Context) {
	guildID := c.Query("guild_id")
	if err := requireGuild(c, guildID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), guildID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}

// loadScoped fetches the subscription and checks the token may act on its guild.
func (h *SubscriptionHandler) loadScoped(c *gin.Context, id uint) (*subusecases.GetSubscriptionResult, error) {
	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := requireGuild(c, result.Subscription.GuildID); err != nil {
		h.logger.Warnw("admin request outside token scope",
			"operator", operator(c),
			"subscription_id", id,
			"guild_id", result.Subscription.GuildID,
		)
		return nil, err
	}
	return result, nil
}

func parseID(c *gin.Context, entity string) (uint, error) {
	idStr := c.Param("id")
	if idStr == "" {
		return 0, errors.NewValidationError(entity + " ID is required")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errors.NewValidationError("Invalid " + entity + " ID format")
	}

	if id == 0 {
		return 0, errors.NewValidationError(entity + " ID cannot be zero")
	}

	return uint(id), nil
}
