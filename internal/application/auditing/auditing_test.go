package auditing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type recorderFunc func(ctx context.Context, e *audit.Entry) error

func (f recorderFunc) Record(ctx context.Context, e *audit.Entry) error { return f(ctx, e) }

func TestRecord_StampsCreatedAt(t *testing.T) {
	var got *audit.Entry
	rec := recorderFunc(func(_ context.Context, e *audit.Entry) error {
		got = e
		return nil
	})

	Record(context.Background(), rec, logger.NewNopLogger(), &audit.Entry{Action: audit.ActionTicketOpened})

	if assert.NotNil(t, got) {
		assert.False(t, got.CreatedAt.IsZero())
	}
}

func TestRecord_SwallowsFailure(t *testing.T) {
	rec := recorderFunc(func(context.Context, *audit.Entry) error { return errors.New("disk full") })

	assert.NotPanics(t, func() {
		Record(context.Background(), rec, logger.NewNopLogger(), &audit.Entry{Action: audit.ActionTicketClosed})
	})
}

func TestRecord_NilRecorder(t *testing.T) {
	assert.NotPanics(t, func() {
		Record(context.Background(), nil, logger.NewNopLogger(), &audit.Entry{})
	})
}
