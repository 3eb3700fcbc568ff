package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPreconditionError(t *testing.T) {
	err := NewPreconditionError(ReasonNotOwner, "only the ticket opener can do this")

	assert.Equal(t, ErrorTypePreconditionFailed, err.Type)
	assert.Equal(t, ReasonNotOwner, err.Reason)
	assert.Equal(t, http.StatusPreconditionFailed, err.Code)
	assert.True(t, IsPreconditionError(err))
	assert.False(t, IsNotFoundError(err))
}

func TestReasonOf_Wrapped(t *testing.T) {
	base := NewNotFoundErrorWithReason(ReasonTicketNotFound, "ticket not found")
	wrapped := fmt.Errorf("select plan: %w", base)

	assert.Equal(t, ReasonTicketNotFound, ReasonOf(wrapped))
	assert.True(t, IsNotFoundError(wrapped))
	assert.Equal(t, Reason(""), ReasonOf(fmt.Errorf("plain")))
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"mysql", fmt.Errorf("Error 1062: Duplicate entry '1-2025-01-01' for key 'uk_reminder'"), true},
		{"sqlite", fmt.Errorf("UNIQUE constraint failed: reminders.subscription_id, reminders.reminder_date"), true},
		{"other", fmt.Errorf("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateError(tt.err))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "unavailable: discord down (timeout)", NewUnavailableError("discord down", "timeout").Error())
	assert.Equal(t, "not_found: missing", NewNotFoundError("missing").Error())
}
