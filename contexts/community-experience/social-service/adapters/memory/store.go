package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"veilian/contexts/community-experience/social-service/ports"
)

// Store keeps the feed in process, newest post first.
type Store struct {
	mu sync.RWMutex

	posts       []ports.Post
	idempotency map[string]ports.IdempotencyRecord
	nextID      int64
}

func NewStore() *Store {
	return &Store{
		idempotency: map[string]ports.IdempotencyRecord{},
	}
}

func (s *Store) CreatePost(ctx context.Context, post ports.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]ports.Post{post}, s.posts...)
	return nil
}

func (s *Store) ListFeed(ctx context.Context, input ports.ListFeedInput) ([]ports.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit := input.Limit
	if limit <= 0 || limit > len(s.posts) {
		limit = len(s.posts)
	}
	out := make([]ports.Post, limit)
	copy(out, s.posts[:limit])
	return out, nil
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
	return fmt.Sprintf("post-%d", s.nextID), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
