package discord

import (
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
)

var rejectionTexts = map[errors.Reason]string{
	errors.ReasonNotStaff:                "Only staff can do that.",
	errors.ReasonNotOwner:                "Only the member who opened this ticket can do that.",
	errors.ReasonAlreadyClaimed:          "This ticket has already been claimed by another staff member.",
	errors.ReasonLimitReached:            "You already have the maximum number of open tickets. Close one before opening another.",
	errors.ReasonCooldownActive:          "You opened a ticket a moment ago. Please wait before opening another.",
	errors.ReasonTicketClosed:            "This ticket is closed.",
	errors.ReasonPlanRequired:            "Choose a plan first.",
	errors.ReasonMethodRequired:          "Choose a payment method first.",
	errors.ReasonPaymentNotClaimed:       "The member has not marked the payment as sent yet.",
	errors.ReasonPaymentNotConfirmed:     "Staff have not confirmed your payment yet.",
	errors.ReasonPaymentAlreadyConfirmed: "This payment has already been confirmed.",
	errors.ReasonPanelDisabled:           "This panel is not accepting new tickets right now.",
	errors.ReasonRateLimited:             "You're doing that too often. Please slow down.",
	errors.ReasonTicketNotFound:          "This ticket no longer exists.",
	errors.ReasonPanelNotFound:           "This panel no longer exists.",
	errors.ReasonPlanNotFound:            "That plan no longer exists.",
	errors.ReasonMethodNotFound:          "That payment method no longer exists.",
}

// RejectionText is the member-facing explanation of a failed action.
// Unexpected failures get a generic message so internals do not leak.
func RejectionText(err error) string {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		return "Something went wrong. Please try again in a moment."
	}
	if text, ok := rejectionTexts[appErr.Reason]; ok {
		return text
	}

	switch appErr.Type {
	case errors.ErrorTypeUnavailable:
		return "Discord did not respond in time. Please try again."
	case errors.ErrorTypeInternal:
		return "Something went wrong. Please try again in a moment."
	}
	return appErr.Message
}
