package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"veilian/contexts/community-experience/chat-service/ports"
)

// Store keeps per-channel message logs and the outbox in process. Sequence
// numbers are assigned per channel under the write lock, so readers polling
// with after_sequence never observe gaps for committed rows.
type Store struct {
	mu sync.RWMutex

	messages    map[string][]ports.Message
	outbox      []ports.OutboxRecord
	idempotency map[string]ports.IdempotencyRecord
	nextID      int64
}

func NewStore() *Store {
	return &Store{
		messages:    map[string][]ports.Message{},
		idempotency: map[string]ports.IdempotencyRecord{},
	}
}

func (s *Store) AppendMessage(ctx context.Context, input ports.CreateMessageInput, now time.Time) (ports.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	message := ports.Message{
		MessageID:      fmt.Sprintf("msg-%d", s.nextID),
		ChannelKey:     input.ChannelKey,
		Author:         input.Author,
		Content:        input.Content,
		SequenceNumber: int64(len(s.messages[input.ChannelKey])) + 1,
		CreatedAt:      now.UTC(),
	}
	s.messages[input.ChannelKey] = append(s.messages[input.ChannelKey], message)
	return message, nil
}

func (s *Store) ListMessages(ctx context.Context, input ports.ListMessagesInput) ([]ports.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.Message, 0)
	for _, message := range s.messages[input.ChannelKey] {
		if message.SequenceNumber <= input.AfterSequence {
			continue
		}
		out = append(out, message)
		if input.Limit > 0 && len(out) >= input.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) EnqueueOutbox(ctx context.Context, record ports.OutboxRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, record)
	return nil
}

func (s *Store) PendingOutbox(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.OutboxRecord, 0)
	for _, record := range s.outbox {
		if record.Status != "pending" {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkOutboxPublished(ctx context.Context, outboxID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			s.outbox[i].Status = "published"
			return nil
		}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.idempotency[key]
	if !ok || now.After(record.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
