package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reminderusecases "github.com/orris-inc/orrisdesk/internal/application/reminder/usecases"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

type ReminderHandler struct {
	dispatcher reminderDispatcher
	logger     logger.Interface
}

func NewReminderHandler(dispatcher reminderDispatcher, logger logger.Interface) *ReminderHandler {
	return &ReminderHandler{dispatcher: dispatcher, logger: logger}
}

// Dispatch sends one reminder now. Reminders are not addressable by guild
// before they are loaded, so guild-scoped tokens are refused.
func (h *ReminderHandler) Dispatch(c *gin.Context) {
	if err := requireUnscoped(c); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	id, err := parseID(c, "reminder")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.dispatcher.DispatchReminder(c.Request.Context(), reminderusecases.DispatchReminderCommand{
		ReminderID: id,
		ActorID:    operator(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("reminder dispatched from admin API", "reminder_id", id, "outcome", result.Outcome, "operator", operator(c))
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
