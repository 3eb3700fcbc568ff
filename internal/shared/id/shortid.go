// Package id generates Stripe-style public identifiers such as "tkt_4fP9qL2mXa0B".
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12
)

const (
	PrefixTicket       = "tkt"
	PrefixSubscription = "sub"
	PrefixPayment      = "pay"
)

// Generate creates a cryptographically random Base62 string.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))
	for i := range result {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}
	return string(result), nil
}

// GenerateWithPrefix returns "prefix_<random>".
func GenerateWithPrefix(prefix string) (string, error) {
	s, err := Generate(DefaultLength)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

func NewTicketSID() (string, error)       { return GenerateWithPrefix(PrefixTicket) }
func NewSubscriptionSID() (string, error) { return GenerateWithPrefix(PrefixSubscription) }
func NewPaymentSID() (string, error)      { return GenerateWithPrefix(PrefixPayment) }

// ValidatePrefix checks that prefixedID has the expected prefix and a non-empty body.
func ValidatePrefix(prefixedID, expectedPrefix string) error {
	prefix, body, ok := strings.Cut(prefixedID, "_")
	if !ok || body == "" {
		return fmt.Errorf("invalid prefixed ID format: %s", prefixedID)
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	return nil
}
