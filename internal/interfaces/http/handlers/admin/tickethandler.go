package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ticketusecases "github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

type TicketHandler struct {
	tickets ticketService
}

func NewTicketHandler(tickets ticketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

func (h *TicketHandler) Get(c *gin.Context) {
	id, err := parseID(c, "ticket")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.lookup(c, ticketusecases.GetTicketQuery{TicketID: id})
}

// ByChannel resolves the ticket bound to a Discord channel.
func (h *TicketHandler) ByChannel(c *gin.Context) {
	channelID := c.Query("channel_id")
	if channelID == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("channel_id is required"))
		return
	}
	h.lookup(c, ticketusecases.GetTicketQuery{ChannelID: channelID})
}

func (h *TicketHandler) lookup(c *gin.Context, query ticketusecases.GetTicketQuery) {
	t, err := h.tickets.Get(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := requireGuild(c, t.GuildID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", t)
}

func (h *TicketHandler) Stats(c *gin.Context) {
	guildID := c.Query("guild_id")
	if err := requireGuild(c, guildID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	stats, err := h.tickets.Stats(c.Request.Context(), guildID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", stats)
}
