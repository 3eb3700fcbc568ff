// Package biztime provides utilities for business timezone calculations.
// Storage uses UTC. The business timezone decides what "today" means for
// reminder dates and how dates are shown to members.
package biztime

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "Asia/Kolkata"

	// DateLayout is the layout of date-only values such as reminder dates.
	DateLayout = "2006-01-02"
)

var (
	mu          sync.RWMutex
	bizLocation *time.Location
)

// Init sets the business timezone. An empty tz selects DefaultTimezone.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", tz, err)
	}
	mu.Lock()
	bizLocation = loc
	mu.Unlock()
	return nil
}

// Location returns the business timezone, initializing the default on first use.
func Location() *time.Location {
	mu.RLock()
	loc := bizLocation
	mu.RUnlock()
	if loc != nil {
		return loc
	}
	if err := Init(""); err != nil {
		panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
	}
	return Location()
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns the start of t's business day, converted to UTC.
func StartOfDayUTC(t time.Time) time.Time {
	bizTime := t.In(Location())
	startOfDay := time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day(), 0, 0, 0, 0, Location())
	return startOfDay.UTC()
}

// DateOf returns the business calendar date of t as YYYY-MM-DD.
func DateOf(t time.Time) string {
	return t.In(Location()).Format(DateLayout)
}

// ParseDateInBizTimezone parses a date string (YYYY-MM-DD) as business timezone midnight,
// then returns the UTC equivalent.
func ParseDateInBizTimezone(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", dateStr, err)
	}
	return t.UTC(), nil
}

// FormatInBizTimezone formats a UTC time as a string in business timezone.
func FormatInBizTimezone(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// HumanDuration spells d out for members, e.g. "1 hour 30 minutes".
// Sub-second remainders are rounded away.
func HumanDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0 seconds"
	}
	units := []struct {
		size time.Duration
		name string
	}{
		{time.Hour, "hour"},
		{time.Minute, "minute"},
		{time.Second, "second"},
	}
	var parts []string
	for _, u := range units {
		n := int64(d / u.size)
		if n == 0 {
			continue
		}
		d -= time.Duration(n) * u.size
		if n == 1 {
			parts = append(parts, "1 "+u.name)
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}
	return strings.Join(parts, " ")
}
