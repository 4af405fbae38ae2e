package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainerrors "veilian/contexts/identity-access/account-service/domain/errors"
	"veilian/contexts/identity-access/account-service/ports"
)

const (
	defaultAvatar = "/uploads/profile-pics/default.png"
	defaultBio    = "New to Veilian"
)

type Service struct {
	Repo   ports.Repository
	Hasher ports.PasswordHasher
	Clock  ports.Clock
	Logger *slog.Logger

	// SupremeSeedHandle defers the supreme bootstrap on a fresh database:
	// when the configured handle signs up before SeedSupreme could find it,
	// the signup itself completes the promotion.
	SupremeSeedHandle string
}

// Signup registers a new member account. Handles are unique; new accounts
// always start as non-banned members.
func (s Service) Signup(ctx context.Context, handle string, password string) (ports.Profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.Contains(handle, ":") || password == "" {
		return ports.Profile{}, domainerrors.ErrInvalidRequest
	}
	if _, found, err := s.Repo.Find(ctx, handle); err != nil {
		return ports.Profile{}, err
	} else if found {
		return ports.Profile{}, domainerrors.ErrHandleTaken
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return ports.Profile{}, err
	}
	now := s.now()
	account := ports.Account{
		Handle:       handle,
		PasswordHash: hash,
		Role:         ports.RoleMember,
		Avatar:       defaultAvatar,
		Bio:          defaultBio,
		JoinedAt:     now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, account); err != nil {
		return ports.Profile{}, err
	}
	resolveLogger(s.Logger).Info("account created",
		"event", "account_created",
		"module", "identity-access/account-service",
		"layer", "application",
		"handle", handle,
	)
	if handle == strings.TrimSpace(s.SupremeSeedHandle) {
		if err := s.SeedSupreme(ctx, handle); err != nil {
			return ports.Profile{}, err
		}
		account.Role = ports.RoleSupreme
	}
	return toProfile(account), nil
}

// Login verifies credentials, then ban state. Unknown handle and wrong
// password produce the same error so login cannot probe for handles.
func (s Service) Login(ctx context.Context, handle string, password string) (ports.Profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || password == "" {
		return ports.Profile{}, domainerrors.ErrInvalidRequest
	}
	account, found, err := s.Repo.Find(ctx, handle)
	if err != nil {
		return ports.Profile{}, err
	}
	if !found {
		return ports.Profile{}, domainerrors.ErrAuthenticationRequired
	}
	if err := s.Hasher.Compare(account.PasswordHash, password); err != nil {
		return ports.Profile{}, domainerrors.ErrAuthenticationRequired
	}
	if account.Banned {
		return ports.Profile{}, domainerrors.ErrForbidden
	}
	return toProfile(account), nil
}

// Profile returns the public view of an account.
func (s Service) Profile(ctx context.Context, handle string) (ports.Profile, error) {
	account, found, err := s.Repo.Find(ctx, strings.TrimSpace(handle))
	if err != nil {
		return ports.Profile{}, err
	}
	if !found {
		return ports.Profile{}, domainerrors.ErrNotFound
	}
	return toProfile(account), nil
}

func (s Service) UpdateBio(ctx context.Context, handle string, bio string) (ports.Profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ports.Profile{}, domainerrors.ErrInvalidRequest
	}
	if _, err := s.Profile(ctx, handle); err != nil {
		return ports.Profile{}, err
	}
	if err := s.Repo.UpdateBio(ctx, handle, strings.TrimSpace(bio), s.now()); err != nil {
		return ports.Profile{}, err
	}
	return s.Profile(ctx, handle)
}

// UpdateAvatar records an avatar reference. The upload itself is handled at
// the HTTP edge; this service only owns the pointer.
func (s Service) UpdateAvatar(ctx context.Context, handle string, avatarURL string) (ports.Profile, error) {
	handle = strings.TrimSpace(handle)
	avatarURL = strings.TrimSpace(avatarURL)
	if handle == "" || avatarURL == "" {
		return ports.Profile{}, domainerrors.ErrInvalidRequest
	}
	if _, err := s.Profile(ctx, handle); err != nil {
		return ports.Profile{}, err
	}
	if err := s.Repo.UpdateAvatar(ctx, handle, avatarURL, s.now()); err != nil {
		return ports.Profile{}, err
	}
	return s.Profile(ctx, handle)
}

// SeedSupreme is the explicit deployment-time bootstrap that replaces the
// old hidden handle comparison. It promotes an existing account to supreme
// and is idempotent. ErrNotFound signals the account has not signed up yet;
// on a fresh database Signup finishes the promotion for the configured
// handle, so callers can treat not-found as deferral rather than failure.
func (s Service) SeedSupreme(ctx context.Context, handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return domainerrors.ErrInvalidRequest
	}
	account, found, err := s.Repo.Find(ctx, handle)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrNotFound
	}
	if account.Role == ports.RoleSupreme {
		return nil
	}
	if err := s.Repo.UpdateRole(ctx, handle, ports.RoleSupreme, s.now()); err != nil {
		return err
	}
	resolveLogger(s.Logger).Info("supreme account seeded",
		"event", "account_supreme_seeded",
		"module", "identity-access/account-service",
		"layer", "application",
		"handle", handle,
	)
	return nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func toProfile(account ports.Account) ports.Profile {
	return ports.Profile{
		Handle:   account.Handle,
		Role:     account.Role,
		Banned:   account.Banned,
		Avatar:   account.Avatar,
		Bio:      account.Bio,
		JoinedAt: account.JoinedAt,
	}
}
