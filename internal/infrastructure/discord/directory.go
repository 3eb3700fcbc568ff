// Package discord adapts a discordgo session to the messaging.Directory the
// workflow and the reminder sweep use.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// Session is the subset of *discordgo.Session the directory calls.
type Session interface {
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

var _ Session = (*discordgo.Session)(nil)

// ticketChannelPerms is what the opener and staff roles may do in a ticket.
const ticketChannelPerms = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionEmbedLinks

// Directory implements messaging.Directory over the Discord REST API.
type Directory struct {
	session Session
	logger  logger.Interface
}

var _ messaging.Directory = (*Directory)(nil)

func NewDirectory(session Session, log logger.Interface) *Directory {
	return &Directory{session: session, logger: log}
}

// CreatePrivateChannel creates a text channel hidden from @everyone and
// visible to the member and the staff roles.
func (d *Directory) CreatePrivateChannel(ctx context.Context, spec messaging.ChannelSpec) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		// The @everyone role shares the guild's ID.
		{ID: spec.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: spec.MemberID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketChannelPerms},
	}
	for _, roleID := range spec.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: ticketChannelPerms,
		})
	}

	ch, err := d.session.GuildChannelCreateComplex(spec.GuildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                spec.Topic,
		ParentID:             spec.ParentID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify("create channel", err)
	}

	d.logger.Debugw("created private channel", "guild_id", spec.GuildID, "channel_id", ch.ID, "member_id", spec.MemberID)
	return ch.ID, nil
}

func (d *Directory) DeleteChannel(ctx context.Context, channelID string) error {
	if _, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx)); err != nil {
		return classify("delete channel", err)
	}
	return nil
}

func (d *Directory) SendToChannel(ctx context.Context, channelID string, msg messaging.Message) error {
	if _, err := d.session.ChannelMessageSendComplex(channelID, RenderMessage(msg), discordgo.WithContext(ctx)); err != nil {
		return classify("send to channel", err)
	}
	return nil
}

// SendToUser delivers msg as a direct message. Components are dropped since
// they reference guild tickets.
func (d *Directory) SendToUser(ctx context.Context, userID string, msg messaging.Message) error {
	dm, err := d.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return classify("open direct message", err)
	}

	send := RenderMessage(msg)
	send.Components = nil
	if _, err := d.session.ChannelMessageSendComplex(dm.ID, send, discordgo.WithContext(ctx)); err != nil {
		if IsDMClosed(err) {
			d.logger.Debugw("member does not accept direct messages", "user_id", userID)
		}
		return classify("send direct message", err)
	}
	return nil
}

// GetMember resolves a member's roles. IsAdmin is true for the guild owner
// and for members holding a role with the Administrator permission.
func (d *Directory) GetMember(ctx context.Context, guildID, userID string) (*messaging.Member, error) {
	m, err := d.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("get member", err)
	}
	g, err := d.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("get guild", err)
	}

	return &messaging.Member{
		UserID:  userID,
		RoleIDs: m.Roles,
		IsAdmin: g.OwnerID == userID || hasAdminRole(g.Roles, m.Roles),
	}, nil
}

func hasAdminRole(guildRoles []*discordgo.Role, memberRoles []string) bool {
	held := make(map[string]struct{}, len(memberRoles))
	for _, id := range memberRoles {
		held[id] = struct{}{}
	}
	for _, r := range guildRoles {
		if _, ok := held[r.ID]; !ok {
			continue
		}
		if r.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func (d *Directory) UserExists(ctx context.Context, userID string) (bool, error) {
	if _, err := d.session.User(userID, discordgo.WithContext(ctx)); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, classify("get user", err)
	}
	return true, nil
}

// NewSession builds a bot session with the intents the interaction
// front-end needs. Call Open on the result to connect.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return s, nil
}
