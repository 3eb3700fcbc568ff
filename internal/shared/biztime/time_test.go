package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_UsesBusinessTimezone(t *testing.T) {
	require.NoError(t, Init("Asia/Kolkata"))

	// 20:00 UTC is 01:30 next day in IST.
	utc := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", DateOf(utc))
}

func TestStartOfDayUTC(t *testing.T) {
	require.NoError(t, Init("Asia/Kolkata"))

	utc := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)
	start := StartOfDayUTC(utc)
	assert.Equal(t, time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC), start)
}

func TestParseDateInBizTimezone(t *testing.T) {
	require.NoError(t, Init("UTC"))
	defer func() { _ = Init("") }()

	got, err := ParseDateInBizTimezone("2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateInBizTimezone("31/01/2025")
	assert.Error(t, err)
}

func TestInit_InvalidTimezone(t *testing.T) {
	assert.Error(t, Init("Mars/Olympus"))
}

func TestHumanDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                    "0 seconds",
		time.Second:                          "1 second",
		10 * time.Second:                     "10 seconds",
		90 * time.Second:                     "1 minute 30 seconds",
		5 * time.Minute:                      "5 minutes",
		time.Hour:                            "1 hour",
		time.Hour + 30*time.Minute:           "1 hour 30 minutes",
		26*time.Hour + 1500*time.Millisecond: "26 hours 2 seconds",
	}
	for d, want := range cases {
		assert.Equal(t, want, HumanDuration(d), d.String())
	}
}
