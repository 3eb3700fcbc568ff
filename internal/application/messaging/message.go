package messaging

// Tone selects the accent color of a rendered message.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

type ButtonStyle string

const (
	ButtonPrimary   ButtonStyle = "primary"
	ButtonSecondary ButtonStyle = "secondary"
	ButtonSuccess   ButtonStyle = "success"
	ButtonDanger    ButtonStyle = "danger"
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Button triggers Kind on the entity TargetID when pressed.
type Button struct {
	Kind     ActionKind
	TargetID uint
	Label    string
	Style    ButtonStyle
}

type Option struct {
	Value       string
	Label       string
	Description string
}

// Select offers a single choice; the chosen Option.Value is the payload.
type Select struct {
	Kind        ActionKind
	TargetID    uint
	Placeholder string
	Options     []Option
}

// Message is a platform-neutral notice. Mentions are user IDs to ping.
type Message struct {
	Title        string
	Body         string
	Fields       []Field
	Tone         Tone
	Mentions     []string
	RoleMentions []string
	Buttons      []Button
	Select       *Select
}
