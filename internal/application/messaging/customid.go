package messaging

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind names a workflow action a member can trigger from a component.
type ActionKind string

const (
	ActionOpen         ActionKind = "open"
	ActionSelectPlan   ActionKind = "plan"
	ActionSelectMethod ActionKind = "method"
	ActionClaimPaid    ActionKind = "paid"
	ActionConfirm      ActionKind = "confirm"
	ActionDeny         ActionKind = "deny"
	ActionRequestEmail ActionKind = "email"
	ActionSubmitEmail  ActionKind = "emailsubmit"
	ActionClose        ActionKind = "close"
	ActionClaim        ActionKind = "claim"
)

const customIDPrefix = "orrisdesk"

var knownActions = map[ActionKind]struct{}{
	ActionOpen: {}, ActionSelectPlan: {}, ActionSelectMethod: {}, ActionClaimPaid: {},
	ActionConfirm: {}, ActionDeny: {}, ActionRequestEmail: {}, ActionSubmitEmail: {},
	ActionClose: {}, ActionClaim: {},
}

// CustomID encodes an action as "orrisdesk:<kind>:<id>". The target is a
// panel ID for ActionOpen and a ticket ID otherwise.
func CustomID(kind ActionKind, targetID uint) string {
	return fmt.Sprintf("%s:%s:%d", customIDPrefix, kind, targetID)
}

// ParseCustomID decodes a value produced by CustomID.
func ParseCustomID(s string) (ActionKind, uint, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return "", 0, fmt.Errorf("not an orrisdesk component: %q", s)
	}
	kind := ActionKind(parts[1])
	if _, ok := knownActions[kind]; !ok {
		return "", 0, fmt.Errorf("unknown action %q", parts[1])
	}
	id, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || id == 0 {
		return "", 0, fmt.Errorf("invalid target in %q", s)
	}
	return kind, uint(id), nil
}
