// Package valueobjects holds the ticket lifecycle values.
package valueobjects

import "fmt"

// TicketStatus is the stored lifecycle state. A ticket row is deleted
// together with its channel, so closed is terminal.
type TicketStatus string

const (
	StatusOpen   TicketStatus = "open"
	StatusClosed TicketStatus = "closed"
)

func (ts TicketStatus) String() string { return string(ts) }
func (ts TicketStatus) IsOpen() bool   { return ts == StatusOpen }
func (ts TicketStatus) IsClosed() bool { return ts == StatusClosed }

func (ts TicketStatus) IsValid() bool {
	switch ts {
	case StatusOpen, StatusClosed:
		return true
	}
	return false
}

// NewTicketStatus parses a persisted status.
func NewTicketStatus(s string) (TicketStatus, error) {
	if ts := TicketStatus(s); ts.IsValid() {
		return ts, nil
	}
	return "", fmt.Errorf("unknown ticket status %q", s)
}

// Stage is the position of an open ticket in the purchase flow. It is derived
// from which ticket fields are set and never stored.
type Stage string

const (
	StageAwaitingPlan    Stage = "awaiting_plan"
	StageAwaitingMethod  Stage = "awaiting_method"
	StageAwaitingPayment Stage = "awaiting_payment"
	StageAwaitingEmail   Stage = "awaiting_email"
	StageCompleted       Stage = "completed"
	StageClosed          Stage = "closed"
)

func (s Stage) String() string { return string(s) }
