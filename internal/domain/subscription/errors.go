package subscription

import "github.com/orris-inc/orrisdesk/internal/shared/errors"

func errNotActive(status string) error {
	return errors.NewPreconditionError(errors.ReasonSubscriptionNotActive,
		"subscription is "+status)
}
