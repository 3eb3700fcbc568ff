package catalog

import "fmt"

type PaymentMethod struct {
	id           uint
	guildID      string
	label        string
	instructions string
	recommended  bool
	enabled      bool
	sortOrder    int
}

type PaymentMethodParams struct {
	ID           uint
	GuildID      string
	Label        string
	Instructions string
	Recommended  bool
	Enabled      bool
	SortOrder    int
}

func NewPaymentMethod(p PaymentMethodParams) (*PaymentMethod, error) {
	if p.GuildID == "" {
		return nil, fmt.Errorf("guild ID is required")
	}
	if p.Label == "" {
		return nil, fmt.Errorf("payment method label is required")
	}
	return &PaymentMethod{
		id:           p.ID,
		guildID:      p.GuildID,
		label:        p.Label,
		instructions: p.Instructions,
		recommended:  p.Recommended,
		enabled:      p.Enabled,
		sortOrder:    p.SortOrder,
	}, nil
}

func (m *PaymentMethod) ID() uint             { return m.id }
func (m *PaymentMethod) GuildID() string      { return m.guildID }
func (m *PaymentMethod) Label() string        { return m.label }
func (m *PaymentMethod) Instructions() string { return m.instructions }
func (m *PaymentMethod) IsRecommended() bool  { return m.recommended }
func (m *PaymentMethod) IsEnabled() bool      { return m.enabled }
func (m *PaymentMethod) SortOrder() int       { return m.sortOrder }
func (m *PaymentMethod) SetID(id uint)        { m.id = id }
