package valueobjects

import "fmt"

type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusExpired   SubscriptionStatus = "expired"
	StatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

func (s SubscriptionStatus) IsActive() bool {
	return s == StatusActive
}

// CanExtend reports whether an extension may move the end date. An expired
// subscription is reactivated by extension; a cancelled one is final.
func (s SubscriptionStatus) CanExtend() bool {
	return s == StatusActive || s == StatusExpired
}

func NewSubscriptionStatus(s string) (SubscriptionStatus, error) {
	st := SubscriptionStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid subscription status: %s", s)
	}
	return st, nil
}
