package valueobjects

import "fmt"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusConfirmed
}

func NewPaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return st, nil
}
