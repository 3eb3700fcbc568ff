// Package catalog holds the administrator-maintained reference data the
// ticket workflow reads: panels, plans, payment methods and price overrides.
package catalog

import (
	"fmt"
	"time"
)

// Panel is an entry point that opens tickets into a category.
type Panel struct {
	id                uint
	guildID           string
	name              string
	categoryID        string
	staffRoleID       string
	logChannelID      string
	maxTicketsPerUser int
	cooldown          time.Duration
	enabled           bool
}

type PanelParams struct {
	ID                uint
	GuildID           string
	Name              string
	CategoryID        string
	StaffRoleID       string
	LogChannelID      string
	MaxTicketsPerUser int
	Cooldown          time.Duration
	Enabled           bool
}

func NewPanel(p PanelParams) (*Panel, error) {
	if p.GuildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}
	if p.Name == "" {
		return nil, fmt.Errorf("panel name is required")
	}
	if p.MaxTicketsPerUser <= 0 {
		p.MaxTicketsPerUser = 1
	}
	if p.Cooldown < 0 {
		return nil, fmt.Errorf("cooldown cannot be negative")
	}
	return &Panel{
		id:                p.ID,
		guildID:           p.GuildID,
		name:              p.Name,
		categoryID:        p.CategoryID,
		staffRoleID:       p.StaffRoleID,
		logChannelID:      p.LogChannelID,
		maxTicketsPerUser: p.MaxTicketsPerUser,
		cooldown:          p.Cooldown,
		enabled:           p.Enabled,
	}, nil
}

func (p *Panel) ID() uint                { return p.id }
func (p *Panel) GuildID() string         { return p.guildID }
func (p *Panel) Name() string            { return p.name }
func (p *Panel) CategoryID() string      { return p.categoryID }
func (p *Panel) StaffRoleID() string     { return p.staffRoleID }
func (p *Panel) LogChannelID() string    { return p.logChannelID }
func (p *Panel) MaxTicketsPerUser() int  { return p.maxTicketsPerUser }
func (p *Panel) Cooldown() time.Duration { return p.cooldown }
func (p *Panel) IsEnabled() bool         { return p.enabled }
func (p *Panel) SetID(id uint)           { p.id = id }
