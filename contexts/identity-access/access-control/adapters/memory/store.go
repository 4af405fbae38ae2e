package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domainerrors "veilian/contexts/identity-access/access-control/domain/errors"
	"veilian/contexts/identity-access/access-control/ports"
)

// Store backs the session coordinator and the private-channel index. Grants
// live here in every deployment because they are recomputed per connection;
// the account directory itself is a separate collaborator.
type Store struct {
	mu sync.RWMutex

	pairs       map[string][2]string
	grants      map[string]ports.SubscriptionGrant
	idempotency map[string]ports.IdempotencyRecord
	sequence    uint64
}

func NewStore() *Store {
	return &Store{
		pairs:       map[string][2]string{},
		grants:      map[string]ports.SubscriptionGrant{},
		idempotency: map[string]ports.IdempotencyRecord{},
	}
}

func (s *Store) RegisterPair(ctx context.Context, channelKey string, a string, b string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pairs[channelKey]; ok {
		return nil
	}
	s.pairs[channelKey] = [2]string{a, b}
	return nil
}

func (s *Store) ListPeers(ctx context.Context, handle string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	peers := make([]string, 0)
	for _, pair := range s.pairs {
		switch handle {
		case pair[0]:
			peers = append(peers, pair[1])
		case pair[1]:
			peers = append(peers, pair[0])
		}
	}
	return peers, nil
}

func (s *Store) Save(ctx context.Context, grant ports.SubscriptionGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.Token] = grant
	return nil
}

func (s *Store) Find(ctx context.Context, token string, now time.Time) (ports.SubscriptionGrant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[token]
	if !ok {
		return ports.SubscriptionGrant{}, false, nil
	}
	if !grant.ExpiresAt.IsZero() && now.UTC().After(grant.ExpiresAt.UTC()) {
		delete(s.grants, token)
		return ports.SubscriptionGrant{}, false, nil
	}
	return grant, true, nil
}

func (s *Store) DeleteByHandle(ctx context.Context, handle string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for token, grant := range s.grants {
		if grant.Handle == handle {
			delete(s.grants, token)
			dropped++
		}
	}
	return dropped, nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for token, grant := range s.grants {
		if !grant.ExpiresAt.IsZero() && now.UTC().After(grant.ExpiresAt.UTC()) {
			delete(s.grants, token)
			dropped++
		}
	}
	return dropped, nil
}

func (s *Store) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.idempotency[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("grant-%d", n), nil
}

var _ ports.PrivateChannelIndex = (*Store)(nil)
var _ ports.GrantStore = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
