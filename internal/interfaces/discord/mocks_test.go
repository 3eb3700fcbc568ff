package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/orris-inc/orrisdesk/internal/application/messaging"
	"github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/domain/catalog"
)

type mockWorkflow struct {
	OpenFunc         func(ctx context.Context, cmd usecases.OpenTicketCommand) (*usecases.OpenTicketResult, error)
	SelectPlanFunc   func(ctx context.Context, cmd usecases.SelectPlanCommand) (*usecases.SelectPlanResult, error)
	SelectMethodFunc func(ctx context.Context, cmd usecases.SelectPaymentMethodCommand) (*usecases.SelectPaymentMethodResult, error)
	ClaimPaidFunc    func(ctx context.Context, cmd usecases.ClaimPaidCommand) (*usecases.ClaimPaidResult, error)
	ConfirmFunc      func(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.ConfirmPaymentResult, error)
	DenyFunc         func(ctx context.Context, cmd usecases.DenyPaymentCommand) (*usecases.DenyPaymentResult, error)
	CollectEmailFunc func(ctx context.Context, cmd usecases.CollectEmailCommand) (*usecases.CollectEmailResult, error)
	CloseFunc        func(ctx context.Context, cmd usecases.CloseTicketCommand) (*usecases.CloseTicketResult, error)
	ClaimFunc        func(ctx context.Context, cmd usecases.ClaimTicketCommand) (*usecases.ClaimTicketResult, error)
}

func (m *mockWorkflow) Open(ctx context.Context, cmd usecases.OpenTicketCommand) (*usecases.OpenTicketResult, error) {
	return m.OpenFunc(ctx, cmd)
}

func (m *mockWorkflow) SelectPlan(ctx context.Context, cmd usecases.SelectPlanCommand) (*usecases.SelectPlanResult, error) {
	return m.SelectPlanFunc(ctx, cmd)
}

func (m *mockWorkflow) SelectPaymentMethod(ctx context.Context, cmd usecases.SelectPaymentMethodCommand) (*usecases.SelectPaymentMethodResult, error) {
	return m.SelectMethodFunc(ctx, cmd)
}

func (m *mockWorkflow) ClaimPaid(ctx context.Context, cmd usecases.ClaimPaidCommand) (*usecases.ClaimPaidResult, error) {
	return m.ClaimPaidFunc(ctx, cmd)
}

func (m *mockWorkflow) ConfirmPayment(ctx context.Context, cmd usecases.ConfirmPaymentCommand) (*usecases.ConfirmPaymentResult, error) {
	return m.ConfirmFunc(ctx, cmd)
}

func (m *mockWorkflow) DenyPayment(ctx context.Context, cmd usecases.DenyPaymentCommand) (*usecases.DenyPaymentResult, error) {
	return m.DenyFunc(ctx, cmd)
}

func (m *mockWorkflow) CollectEmail(ctx context.Context, cmd usecases.CollectEmailCommand) (*usecases.CollectEmailResult, error) {
	return m.CollectEmailFunc(ctx, cmd)
}

func (m *mockWorkflow) Close(ctx context.Context, cmd usecases.CloseTicketCommand) (*usecases.CloseTicketResult, error) {
	return m.CloseFunc(ctx, cmd)
}

func (m *mockWorkflow) Claim(ctx context.Context, cmd usecases.ClaimTicketCommand) (*usecases.ClaimTicketResult, error) {
	return m.ClaimFunc(ctx, cmd)
}

type observation struct {
	action string
	err    error
}

type recordingObserver struct {
	seen []observation
}

func (o *recordingObserver) ObserveInteraction(action string, err error) {
	o.seen = append(o.seen, observation{action: action, err: err})
}

type stubPanels struct {
	panel *catalog.Panel
	err   error
}

func (s *stubPanels) Panel(ctx context.Context, id uint) (*catalog.Panel, error) {
	return s.panel, s.err
}

type recordingPoster struct {
	channelID string
	msg       *messaging.Message
	err       error
}

func (p *recordingPoster) SendToChannel(ctx context.Context, channelID string, msg messaging.Message) error {
	p.channelID = channelID
	p.msg = &msg
	return p.err
}

type fakeSession struct {
	mu        sync.Mutex
	handler   interface{}
	opened    bool
	closed    bool
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	commands  []*discordgo.ApplicationCommand
}

func (s *fakeSession) AddHandler(handler interface{}) func() {
	s.handler = handler
	return func() { s.handler = nil }
}

func (s *fakeSession) Open() error {
	s.opened = true
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, resp)
	return nil
}

func (s *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, edit)
	return &discordgo.Message{}, nil
}

func (s *fakeSession) ApplicationCommandBulkOverwrite(_ string, _ string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	s.commands = commands
	return commands, nil
}
