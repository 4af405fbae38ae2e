package unit

import (
	"context"
	"sync"
	"testing"

	chatservice "veilian/contexts/community-experience/chat-service"
	socialservice "veilian/contexts/community-experience/social-service"
	accesscontrol "veilian/contexts/identity-access/access-control"
	accountservice "veilian/contexts/identity-access/account-service"
	"veilian/internal/shared/events"
)

// capturePublisher records broker publishes for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.Envelope
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) published() ([]string, []events.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...), append([]events.Envelope(nil), p.events...)
}

type stack struct {
	accounts  accountservice.Module
	access    accesscontrol.Module
	chat      chatservice.Module
	social    socialservice.Module
	publisher *capturePublisher
}

func newStack() *stack {
	publisher := &capturePublisher{}
	accounts := accountservice.NewInMemoryModule(nil)
	access := accesscontrol.NewInMemoryModule(nil, accounts.Directory)
	chat := chatservice.NewInMemoryModule(nil, access.Service, publisher)
	social := socialservice.NewInMemoryModule(nil, access.Service, publisher)
	return &stack{
		accounts:  accounts,
		access:    access,
		chat:      chat,
		social:    social,
		publisher: publisher,
	}
}

func (s *stack) signup(t *testing.T, handle string) {
	t.Helper()
	if _, err := s.accounts.Service.Signup(context.Background(), handle, "hunter2-"+handle); err != nil {
		t.Fatalf("signup %s: %v", handle, err)
	}
}

// seedSupreme creates the account and runs the explicit supreme bootstrap,
// the same sequence the composition root performs at deploy time.
func (s *stack) seedSupreme(t *testing.T, handle string) {
	t.Helper()
	s.signup(t, handle)
	if err := s.accounts.Service.SeedSupreme(context.Background(), handle); err != nil {
		t.Fatalf("seed supreme %s: %v", handle, err)
	}
}

func (s *stack) promote(t *testing.T, key string, actor string, target string) {
	t.Helper()
	if _, err := s.access.Service.PromoteModerator(context.Background(), key, actor, target); err != nil {
		t.Fatalf("promote %s by %s: %v", target, actor, err)
	}
}

func (s *stack) ban(t *testing.T, key string, actor string, target string) {
	t.Helper()
	if _, err := s.access.Service.Ban(context.Background(), key, actor, target, "test"); err != nil {
		t.Fatalf("ban %s by %s: %v", target, actor, err)
	}
}
