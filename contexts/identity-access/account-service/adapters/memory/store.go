package memory

import (
	"context"
	"sync"
	"time"

	domainerrors "veilian/contexts/identity-access/account-service/domain/errors"
	"veilian/contexts/identity-access/account-service/ports"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]ports.Account
}

func NewStore() *Store {
	return &Store{accounts: map[string]ports.Account{}}
}

func (s *Store) Create(ctx context.Context, account ports.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Handle]; ok {
		return domainerrors.ErrHandleTaken
	}
	s.accounts[account.Handle] = account
	return nil
}

func (s *Store) Find(ctx context.Context, handle string) (ports.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[handle]
	return account, ok, nil
}

func (s *Store) UpdateRole(ctx context.Context, handle string, role string, now time.Time) error {
	return s.mutate(handle, func(account *ports.Account) {
		account.Role = role
		account.UpdatedAt = now.UTC()
	})
}

func (s *Store) UpdateBan(ctx context.Context, handle string, banned bool, now time.Time) error {
	return s.mutate(handle, func(account *ports.Account) {
		account.Banned = banned
		account.UpdatedAt = now.UTC()
	})
}

func (s *Store) UpdateBio(ctx context.Context, handle string, bio string, now time.Time) error {
	return s.mutate(handle, func(account *ports.Account) {
		account.Bio = bio
		account.UpdatedAt = now.UTC()
	})
}

func (s *Store) UpdateAvatar(ctx context.Context, handle string, avatarURL string, now time.Time) error {
	return s.mutate(handle, func(account *ports.Account) {
		account.Avatar = avatarURL
		account.UpdatedAt = now.UTC()
	})
}

func (s *Store) mutate(handle string, apply func(*ports.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[handle]
	if !ok {
		return domainerrors.ErrNotFound
	}
	apply(&account)
	s.accounts[handle] = account
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
