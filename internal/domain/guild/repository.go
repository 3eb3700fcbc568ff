package guild

import "context"

type Repository interface {
	// Get returns nil, nil when the guild has no stored settings.
	Get(ctx context.Context, guildID string) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
}
