package guild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings("g1")
	assert.Equal(t, []int{3, 2, 1}, s.ReminderDays())
	assert.Equal(t, "INR", s.Currency())
	assert.False(t, s.HasStaffRole([]string{"r1"}))
}

func TestSetReminderDays(t *testing.T) {
	s := DefaultSettings("g1")

	require.NoError(t, s.SetReminderDays([]int{1, 7, 3, 7}))
	assert.Equal(t, []int{7, 3, 1}, s.ReminderDays())

	assert.Error(t, s.SetReminderDays([]int{2, 0}))
	assert.Equal(t, []int{7, 3, 1}, s.ReminderDays())
}

func TestReconstructSettings(t *testing.T) {
	s, err := ReconstructSettings("g1", nil, []string{"staff", "mods"}, "log", "usd", "")
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2, 1}, s.ReminderDays())
	assert.Equal(t, "USD", s.Currency())
	assert.Equal(t, "en-IN", s.Locale())
	assert.True(t, s.HasStaffRole([]string{"member", "mods"}))

	_, err = ReconstructSettings("", nil, nil, "", "", "")
	assert.Error(t, err)
}
