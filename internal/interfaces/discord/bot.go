package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	discordinfra "github.com/orris-inc/orrisdesk/internal/infrastructure/discord"
	"github.com/orris-inc/orrisdesk/internal/shared/goroutine"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

const (
	interactionTimeout = 30 * time.Second
	panelCommandName   = "panel"
)

// Session is the subset of *discordgo.Session the bot drives.
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

var _ Session = (*discordgo.Session)(nil)

// Bot connects the gateway to the Dispatcher.
type Bot struct {
	session       Session
	dispatcher    *Dispatcher
	applicationID string
	logger        logger.Interface
	removeHandler func()
}

func NewBot(session Session, dispatcher *Dispatcher, applicationID string, log logger.Interface) *Bot {
	return &Bot{
		session:       session,
		dispatcher:    dispatcher,
		applicationID: applicationID,
		logger:        log,
	}
}

// Start registers the interaction handler, opens the gateway and publishes
// the slash commands.
func (b *Bot) Start() error {
	b.removeHandler = b.session.AddHandler(b.handleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if b.applicationID == "" {
		b.logger.Warnw("discord application_id not set, slash commands not registered")
		return nil
	}
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.applicationID, "", commandDefinitions()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Infow("discord bot started", "application_id", b.applicationID)
	return nil
}

func (b *Bot) Stop() error {
	if b.removeHandler != nil {
		b.removeHandler()
	}
	return b.session.Close()
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	adminOnly := int64(discordgo.PermissionAdministrator)
	dmAllowed := false
	return []*discordgo.ApplicationCommand{
		{
			Name:                     panelCommandName,
			Description:              "Post a ticket panel in this channel",
			DefaultMemberPermissions: &adminOnly,
			DMPermission:             &dmAllowed,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "panel_id",
					Description: "ID of the panel to post",
					Required:    true,
					MinValue:    ptrFloat(1),
				},
			},
		},
	}
}

func (b *Bot) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	defer goroutine.Recover(b.logger, "discord-interaction")

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, i.Interaction)
	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		b.handleComponent(ctx, i.Interaction)
	}
}

func (b *Bot) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	if data.Name != panelCommandName || len(data.Options) == 0 {
		return
	}
	if !b.acknowledge(i) {
		return
	}
	panelID := uint(data.Options[0].IntValue())
	b.edit(i, b.dispatcher.PostPanel(ctx, i.GuildID, i.ChannelID, panelID))
}

func (b *Bot) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	in := ToInteraction(i)

	// The form has to be the first response to the press.
	if IsModalRequest(in.CustomID) {
		reply := b.dispatcher.Handle(ctx, in)
		if err := b.session.InteractionRespond(i, ModalResponse(reply.Modal)); err != nil {
			b.logger.Errorw("failed to open email form", "custom_id", in.CustomID, "error", err)
		}
		return
	}

	// Workflow calls may create channels, which can exceed the three second
	// response window.
	if !b.acknowledge(i) {
		return
	}
	b.edit(i, b.dispatcher.Handle(ctx, in))
}

func (b *Bot) acknowledge(i *discordgo.Interaction) bool {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Errorw("failed to acknowledge interaction", "interaction_id", i.ID, "error", err)
		return false
	}
	return true
}

func (b *Bot) edit(i *discordgo.Interaction, reply Reply) {
	if _, err := b.session.InteractionResponseEdit(i, ReplyEdit(reply)); err != nil {
		b.logger.Errorw("failed to send interaction reply", "interaction_id", i.ID, "error", err)
	}
}

// ToInteraction extracts what the dispatcher needs from a component or
// modal interaction.
func ToInteraction(i *discordgo.Interaction) Interaction {
	in := Interaction{GuildID: i.GuildID, ChannelID: i.ChannelID}

	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user != nil {
		in.UserID = user.ID
		in.UserName = user.Username
		if user.GlobalName != "" {
			in.UserName = user.GlobalName
		}
	}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		in.CustomID = data.CustomID
		in.Values = data.Values
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		in.CustomID = data.CustomID
		in.ModalSubmit = true
		in.Fields = modalFields(data.Components)
	}
	return in
}

func modalFields(components []discordgo.MessageComponent) map[string]string {
	fields := make(map[string]string)
	for _, c := range components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				fields[input.CustomID] = input.Value
			}
		}
	}
	return fields
}

// ModalResponse builds the single-field email form.
func ModalResponse(m *EmailModal) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: m.CustomID,
			Title:    m.Title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    emailFieldID,
						Label:       m.Label,
						Style:       discordgo.TextInputShort,
						Placeholder: "you@example.com",
						Required:    true,
						MinLength:   3,
						MaxLength:   254,
					},
				}},
			},
		},
	}
}

// ReplyEdit renders a reply into the deferred ephemeral response.
func ReplyEdit(reply Reply) *discordgo.WebhookEdit {
	content := reply.Content
	edit := &discordgo.WebhookEdit{
		Content:         &content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if reply.Message != nil {
		send := discordinfra.RenderMessage(*reply.Message)
		edit.Embeds = &send.Embeds
		edit.Components = &send.Components
	}
	return edit
}

func ptrFloat(v float64) *float64 {
	return &v
}
