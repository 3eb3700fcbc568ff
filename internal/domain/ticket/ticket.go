package ticket

import (
	"fmt"
	"time"

	vo "github.com/orris-inc/orrisdesk/internal/domain/ticket/valueobjects"
	"github.com/orris-inc/orrisdesk/internal/shared/errors"
)

// Ticket is one member's passage through the purchase workflow, bound to a
// private channel. Guard methods check a transition without mutating the
// ticket; repositories apply the matching field patch.
type Ticket struct {
	id                 uint
	sid                string
	guildID            string
	panelID            uint
	openerID           string
	channelID          string
	planID             *uint
	paymentMethodID    *uint
	status             vo.TicketStatus
	claimedBy          *string
	paymentConfirmed   bool
	paymentConfirmedBy *string
	paymentConfirmedAt *time.Time
	email              *string
	closedBy           *string
	closedAt           *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

// NewTicket creates an open ticket for a freshly created channel.
func NewTicket(sid, guildID string, panelID uint, openerID, channelID string, now time.Time) (*Ticket, error) {
	if sid == "" {
		return nil, fmt.Errorf("ticket SID is required")
	}
	if guildID == "" || openerID == "" || channelID == "" {
		return nil, fmt.Errorf("guild, opener and channel are required")
	}
	if panelID == 0 {
		return nil, fmt.Errorf("panel ID is required")
	}
	return &Ticket{
		sid:       sid,
		guildID:   guildID,
		panelID:   panelID,
		openerID:  openerID,
		channelID: channelID,
		status:    vo.StatusOpen,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// TicketState carries persisted fields into ReconstructTicket.
type TicketState struct {
	ID                 uint
	SID                string
	GuildID            string
	PanelID            uint
	OpenerID           string
	ChannelID          string
	PlanID             *uint
	PaymentMethodID    *uint
	Status             vo.TicketStatus
	ClaimedBy          *string
	PaymentConfirmed   bool
	PaymentConfirmedBy *string
	PaymentConfirmedAt *time.Time
	Email              *string
	ClosedBy           *string
	ClosedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ReconstructTicket(s TicketState) (*Ticket, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid ticket status: %s", s.Status)
	}
	return &Ticket{
		id:                 s.ID,
		sid:                s.SID,
		guildID:            s.GuildID,
		panelID:            s.PanelID,
		openerID:           s.OpenerID,
		channelID:          s.ChannelID,
		planID:             s.PlanID,
		paymentMethodID:    s.PaymentMethodID,
		status:             s.Status,
		claimedBy:          s.ClaimedBy,
		paymentConfirmed:   s.PaymentConfirmed,
		paymentConfirmedBy: s.PaymentConfirmedBy,
		paymentConfirmedAt: s.PaymentConfirmedAt,
		email:              s.Email,
		closedBy:           s.ClosedBy,
		closedAt:           s.ClosedAt,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
	}, nil
}

func (t *Ticket) ID() uint                       { return t.id }
func (t *Ticket) SID() string                    { return t.sid }
func (t *Ticket) GuildID() string                { return t.guildID }
func (t *Ticket) PanelID() uint                  { return t.panelID }
func (t *Ticket) OpenerID() string               { return t.openerID }
func (t *Ticket) ChannelID() string              { return t.channelID }
func (t *Ticket) PlanID() *uint                  { return t.planID }
func (t *Ticket) PaymentMethodID() *uint         { return t.paymentMethodID }
func (t *Ticket) Status() vo.TicketStatus        { return t.status }
func (t *Ticket) ClaimedBy() *string             { return t.claimedBy }
func (t *Ticket) IsPaymentConfirmed() bool       { return t.paymentConfirmed }
func (t *Ticket) PaymentConfirmedBy() *string    { return t.paymentConfirmedBy }
func (t *Ticket) PaymentConfirmedAt() *time.Time { return t.paymentConfirmedAt }
func (t *Ticket) Email() *string                 { return t.email }
func (t *Ticket) ClosedBy() *string              { return t.closedBy }
func (t *Ticket) ClosedAt() *time.Time           { return t.closedAt }
func (t *Ticket) CreatedAt() time.Time           { return t.createdAt }
func (t *Ticket) UpdatedAt() time.Time           { return t.updatedAt }

func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

func (t *Ticket) IsOpener(userID string) bool {
	return t.openerID == userID
}

// Stage derives the workflow position from the fields that are set.
func (t *Ticket) Stage() vo.Stage {
	switch {
	case t.status.IsClosed():
		return vo.StageClosed
	case t.planID == nil:
		return vo.StageAwaitingPlan
	case t.paymentMethodID == nil:
		return vo.StageAwaitingMethod
	case !t.paymentConfirmed:
		return vo.StageAwaitingPayment
	case t.email == nil:
		return vo.StageAwaitingEmail
	default:
		return vo.StageCompleted
	}
}

func (t *Ticket) ensureOpen() error {
	if t.status.IsClosed() {
		return errors.NewPreconditionError(errors.ReasonTicketClosed, "this ticket is closed")
	}
	return nil
}

func (t *Ticket) ensureOpener(userID string) error {
	if !t.IsOpener(userID) {
		return errors.NewPreconditionError(errors.ReasonNotOwner, "only the member who opened this ticket can do that")
	}
	return nil
}

func (t *Ticket) ensureNotConfirmed() error {
	if t.paymentConfirmed {
		return errors.NewPreconditionError(errors.ReasonPaymentAlreadyConfirmed, "payment for this ticket is already confirmed")
	}
	return nil
}

// CanSelectPlan checks the opener may pick a plan. Changing the plan is
// allowed until payment is confirmed.
func (t *Ticket) CanSelectPlan(userID string) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if err := t.ensureOpener(userID); err != nil {
		return err
	}
	return t.ensureNotConfirmed()
}

// CanSelectPaymentMethod requires a selected plan.
func (t *Ticket) CanSelectPaymentMethod(userID string) error {
	if err := t.CanSelectPlan(userID); err != nil {
		return err
	}
	if t.planID == nil {
		return errors.NewPreconditionError(errors.ReasonPlanRequired, "select a plan first")
	}
	return nil
}

// CanClaimPaid requires a selected payment method.
func (t *Ticket) CanClaimPaid(userID string) error {
	if err := t.CanSelectPlan(userID); err != nil {
		return err
	}
	if t.planID == nil {
		return errors.NewPreconditionError(errors.ReasonPlanRequired, "select a plan first")
	}
	if t.paymentMethodID == nil {
		return errors.NewPreconditionError(errors.ReasonMethodRequired, "select a payment method first")
	}
	return nil
}

// CanReviewPayment checks a confirm or deny by staff. Staff membership is
// decided by the caller.
func (t *Ticket) CanReviewPayment() error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if t.paymentMethodID == nil {
		return errors.NewPreconditionError(errors.ReasonPaymentNotClaimed, "the member has not claimed a payment yet")
	}
	return t.ensureNotConfirmed()
}

// CanCollectEmail requires confirmed payment. Re-entry after the email was
// stored is allowed so the caller can finish idempotently.
func (t *Ticket) CanCollectEmail(userID string) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if err := t.ensureOpener(userID); err != nil {
		return err
	}
	if !t.paymentConfirmed {
		return errors.NewPreconditionError(errors.ReasonPaymentNotConfirmed, "payment has not been confirmed by staff yet")
	}
	return nil
}

// CanClose allows the opener or staff.
func (t *Ticket) CanClose(userID string, isStaff bool) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if !isStaff && !t.IsOpener(userID) {
		return errors.NewPreconditionError(errors.ReasonNotOwner, "only the ticket opener or staff can close this ticket")
	}
	return nil
}

// CanClaim checks the advisory staff assignment.
func (t *Ticket) CanClaim() error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	if t.claimedBy != nil {
		return errors.NewPreconditionError(errors.ReasonAlreadyClaimed, fmt.Sprintf("this ticket is already claimed by <@%s>", *t.claimedBy))
	}
	return nil
}
