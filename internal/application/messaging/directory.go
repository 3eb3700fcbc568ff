// Package messaging defines the chat-platform collaborator the workflow and
// the scheduler talk to, and the platform-neutral messages they send.
package messaging

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a channel, user or member does not exist
	// or cannot be resolved.
	ErrNotFound = errors.New("directory: not found")
	// ErrUnreachable is returned when the platform rejects or fails a call,
	// for example a member who does not accept direct messages.
	ErrUnreachable = errors.New("directory: unreachable")
)

// ChannelSpec describes a private ticket channel. Only MemberID and the staff
// roles can see it.
type ChannelSpec struct {
	GuildID      string
	ParentID     string
	Name         string
	Topic        string
	MemberID     string
	StaffRoleIDs []string
}

// Member is a guild member as seen by permission checks.
type Member struct {
	UserID  string
	RoleIDs []string
	IsAdmin bool
}

// Directory is the chat platform. Every call may block on network I/O and
// reports failures as errors wrapping ErrNotFound or ErrUnreachable.
type Directory interface {
	CreatePrivateChannel(ctx context.Context, spec ChannelSpec) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	SendToChannel(ctx context.Context, channelID string, msg Message) error
	SendToUser(ctx context.Context, userID string, msg Message) error
	GetMember(ctx context.Context, guildID, userID string) (*Member, error)
	// UserExists reports whether the platform still knows the user.
	UserExists(ctx context.Context, userID string) (bool, error)
}
