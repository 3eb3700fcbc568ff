package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/orrisdesk/internal/shared/logger"
	"github.com/orris-inc/orrisdesk/internal/shared/utils"
)

// CatalogHandler previews administrator-authored catalog text.
type CatalogHandler struct {
	methods  paymentMethodReader
	markdown markdownRenderer
	logger   logger.Interface
}

func NewCatalogHandler(methods paymentMethodReader, markdown markdownRenderer, logger logger.Interface) *CatalogHandler {
	return &CatalogHandler{methods: methods, markdown: markdown, logger: logger}
}

// InstructionsPreview is what a payment method's instructions look like as
// sanitized HTML and as the plain text posted in the ticket channel.
type InstructionsPreview struct {
	MethodID uint   `json:"method_id"`
	Label    string `json:"label"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
}

func (h *CatalogHandler) PreviewPaymentMethod(c *gin.Context) {
	id, err := parseID(c, "payment method")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	method, err := h.methods.PaymentMethod(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := requireGuild(c, method.GuildID()); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	html, err := h.markdown.ToHTMLSanitized(method.Instructions())
	if err != nil {
		h.logger.Errorw("failed to render payment instructions", "method_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", InstructionsPreview{
		MethodID: method.ID(),
		Label:    method.Label(),
		HTML:     html,
		Text:     h.markdown.PlainText(method.Instructions()),
	})
}
