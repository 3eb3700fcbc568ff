package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
)

// notFoundCodes are Discord JSON error codes for entities that no longer exist.
var notFoundCodes = map[int]struct{}{
	discordgo.ErrCodeUnknownChannel: {},
	discordgo.ErrCodeUnknownGuild:   {},
	discordgo.ErrCodeUnknownMember:  {},
	discordgo.ErrCodeUnknownUser:    {},
	discordgo.ErrCodeUnknownMessage: {},
}

// classify wraps a discordgo error in messaging.ErrNotFound or
// messaging.ErrUnreachable so callers can branch without importing discordgo.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("%s: %w: %v", op, messaging.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %v", op, messaging.ErrUnreachable, err)
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		if _, ok := notFoundCodes[restErr.Message.Code]; ok {
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// IsDMClosed reports whether the member does not accept direct messages.
func IsDMClosed(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser
	}
	return false
}
