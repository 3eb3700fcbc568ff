package discord

import (
	"context"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

type fakeSession struct {
	created   discordgo.GuildChannelCreateData
	sent      map[string]*discordgo.MessageSend
	deleted   []string
	member    *discordgo.Member
	guild     *discordgo.Guild
	err       error
	dmErr     error
	userErr   error
	memberErr error
}

func newFakeSession() *fakeSession {
	return &fakeSession{sent: map[string]*discordgo.MessageSend{}}
}

func (f *fakeSession) GuildChannelCreateComplex(_ string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = data
	return &discordgo.Channel{ID: "chan-1"}, nil
}

func (f *fakeSession) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.dmErr != nil && channelID == "dm-1" {
		return nil, f.dmErr
	}
	f.sent[channelID] = data
	return &discordgo.Message{ID: "msg-1"}, nil
}

func (f *fakeSession) UserChannelCreate(_ string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-1"}, nil
}

func (f *fakeSession) GuildMember(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return f.member, nil
}

func (f *fakeSession) Guild(_ string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return f.guild, nil
}

func (f *fakeSession) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &discordgo.User{ID: userID}, nil
}

func restError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "error"},
	}
}

func TestDirectory_CreatePrivateChannel(t *testing.T) {
	s := newFakeSession()
	d := NewDirectory(s, logger.NewNopLogger())

	id, err := d.CreatePrivateChannel(context.Background(), messaging.ChannelSpec{
		GuildID:      "g1",
		ParentID:     "cat-1",
		Name:         "ticket-alice",
		MemberID:     "u1",
		StaffRoleIDs: []string{"staff"},
	})
	require.NoError(t, err)
	assert.Equal(t, "chan-1", id)
	assert.Equal(t, "cat-1", s.created.ParentID)
	assert.Equal(t, discordgo.ChannelTypeGuildText, s.created.Type)

	require.Len(t, s.created.PermissionOverwrites, 3)
	everyone := s.created.PermissionOverwrites[0]
	assert.Equal(t, "g1", everyone.ID)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), everyone.Deny)
	member := s.created.PermissionOverwrites[1]
	assert.Equal(t, discordgo.PermissionOverwriteTypeMember, member.Type)
	assert.NotZero(t, member.Allow&discordgo.PermissionViewChannel)
	assert.Equal(t, "staff", s.created.PermissionOverwrites[2].ID)
}

func TestDirectory_ErrorsAreClassified(t *testing.T) {
	s := newFakeSession()
	d := NewDirectory(s, logger.NewNopLogger())

	s.err = restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)
	err := d.DeleteChannel(context.Background(), "gone")
	assert.ErrorIs(t, err, messaging.ErrNotFound)

	s.err = restError(http.StatusForbidden, discordgo.ErrCodeMissingPermissions)
	_, err = d.CreatePrivateChannel(context.Background(), messaging.ChannelSpec{GuildID: "g1", MemberID: "u1"})
	assert.ErrorIs(t, err, messaging.ErrUnreachable)
}

func TestDirectory_SendToUserDropsComponents(t *testing.T) {
	s := newFakeSession()
	d := NewDirectory(s, logger.NewNopLogger())

	err := d.SendToUser(context.Background(), "u1", messaging.Message{
		Title:   "Renewal",
		Buttons: []messaging.Button{{Kind: messaging.ActionClose, TargetID: 1, Label: "Close"}},
	})
	require.NoError(t, err)
	assert.Nil(t, s.sent["dm-1"].Components)

	s.dmErr = restError(http.StatusForbidden, discordgo.ErrCodeCannotSendMessagesToThisUser)
	err = d.SendToUser(context.Background(), "u1", messaging.Message{Title: "Renewal"})
	assert.ErrorIs(t, err, messaging.ErrUnreachable)
	assert.True(t, IsDMClosed(s.dmErr))
}

func TestDirectory_GetMember(t *testing.T) {
	s := newFakeSession()
	d := NewDirectory(s, logger.NewNopLogger())
	s.member = &discordgo.Member{Roles: []string{"mods", "admins"}}
	s.guild = &discordgo.Guild{
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "mods", Permissions: discordgo.PermissionManageMessages},
			{ID: "admins", Permissions: discordgo.PermissionAdministrator},
		},
	}

	m, err := d.GetMember(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.True(t, m.IsAdmin)
	assert.Equal(t, []string{"mods", "admins"}, m.RoleIDs)

	s.member = &discordgo.Member{Roles: []string{"mods"}}
	m, err = d.GetMember(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.False(t, m.IsAdmin)

	m, err = d.GetMember(context.Background(), "g1", "owner")
	require.NoError(t, err)
	assert.True(t, m.IsAdmin)

	s.memberErr = restError(http.StatusNotFound, discordgo.ErrCodeUnknownMember)
	_, err = d.GetMember(context.Background(), "g1", "left")
	assert.ErrorIs(t, err, messaging.ErrNotFound)
}

func TestDirectory_UserExists(t *testing.T) {
	s := newFakeSession()
	d := NewDirectory(s, logger.NewNopLogger())

	ok, err := d.UserExists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	s.userErr = restError(http.StatusNotFound, discordgo.ErrCodeUnknownUser)
	ok, err = d.UserExists(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	s.userErr = restError(http.StatusInternalServerError, 0)
	_, err = d.UserExists(context.Background(), "u1")
	assert.ErrorIs(t, err, messaging.ErrUnreachable)
}
