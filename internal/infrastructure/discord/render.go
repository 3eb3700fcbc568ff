package discord

import (
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
)

// Discord API limits, counted in characters.
const (
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
	maxFieldName        = 256
	maxFieldValue       = 1024
	maxEmbedFields      = 25
	maxButtonLabel      = 80
	maxSelectOptions    = 25
	maxOptionText       = 100
	maxButtonsPerRow    = 5
)

var toneColors = map[messaging.Tone]int{
	messaging.ToneInfo:    0x5865F2,
	messaging.ToneSuccess: 0x57F287,
	messaging.ToneWarning: 0xFEE75C,
	messaging.ToneDanger:  0xED4245,
}

var buttonStyles = map[messaging.ButtonStyle]discordgo.ButtonStyle{
	messaging.ButtonPrimary:   discordgo.PrimaryButton,
	messaging.ButtonSecondary: discordgo.SecondaryButton,
	messaging.ButtonSuccess:   discordgo.SuccessButton,
	messaging.ButtonDanger:    discordgo.DangerButton,
}

// RenderMessage converts a platform-neutral message into a Discord message
// with one embed and its components. Only the listed users and roles are
// pinged.
func RenderMessage(msg messaging.Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{renderEmbed(msg)},
		Components: RenderComponents(msg),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: msg.Mentions,
			Roles: msg.RoleMentions,
		},
	}

	var pings []string
	for _, id := range msg.Mentions {
		pings = append(pings, "<@"+id+">")
	}
	for _, id := range msg.RoleMentions {
		pings = append(pings, "<@&"+id+">")
	}
	send.Content = strings.Join(pings, " ")
	return send
}

func renderEmbed(msg messaging.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       truncate(msg.Title, maxEmbedTitle),
		Description: truncate(msg.Body, maxEmbedDescription),
		Color:       toneColors[msg.Tone],
	}
	if embed.Color == 0 {
		embed.Color = toneColors[messaging.ToneInfo]
	}
	for i, f := range msg.Fields {
		if i == maxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   truncate(f.Name, maxFieldName),
			Value:  truncate(orDash(f.Value), maxFieldValue),
			Inline: f.Inline,
		})
	}
	return embed
}

// RenderComponents lays out the select menu on its own row followed by
// buttons in rows of five.
func RenderComponents(msg messaging.Message) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent

	if sel := msg.Select; sel != nil && len(sel.Options) > 0 {
		opts := make([]discordgo.SelectMenuOption, 0, len(sel.Options))
		for i, o := range sel.Options {
			if i == maxSelectOptions {
				break
			}
			opts = append(opts, discordgo.SelectMenuOption{
				Label:       truncate(o.Label, maxOptionText),
				Value:       o.Value,
				Description: truncate(o.Description, maxOptionText),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    messaging.CustomID(sel.Kind, sel.TargetID),
				Placeholder: truncate(sel.Placeholder, maxOptionText),
				Options:     opts,
			},
		}})
	}

	var row []discordgo.MessageComponent
	for _, b := range msg.Buttons {
		style, ok := buttonStyles[b.Style]
		if !ok {
			style = discordgo.SecondaryButton
		}
		row = append(row, discordgo.Button{
			Label:    truncate(b.Label, maxButtonLabel),
			Style:    style,
			CustomID: messaging.CustomID(b.Kind, b.TargetID),
		})
		if len(row) == maxButtonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return s[:runeByteOffset(s, limit-1)] + "…"
}

// runeByteOffset returns the byte offset of the n-th rune in s.
// If s has fewer than n runes, returns len(s).
func runeByteOffset(s string, n int) int {
	offset := 0
	for i := 0; i < n && offset < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[offset:])
		offset += size
	}
	return offset
}
