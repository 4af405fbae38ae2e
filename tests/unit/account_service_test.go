package unit

import (
	"context"
	"errors"
	"testing"

	accountservice "veilian/contexts/identity-access/account-service"
	accountcrypto "veilian/contexts/identity-access/account-service/adapters/crypto"
	accountmemory "veilian/contexts/identity-access/account-service/adapters/memory"
	accounterrors "veilian/contexts/identity-access/account-service/domain/errors"
)

func TestSignupDefaultsAndDuplicateHandle(t *testing.T) {
	s := newStack()
	ctx := context.Background()

	profile, err := s.accounts.Service.Signup(ctx, "mira", "correct horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if profile.Role != "member" {
		t.Fatalf("new account role = %s", profile.Role)
	}
	if profile.Avatar == "" || profile.Bio == "" {
		t.Fatalf("defaults missing: avatar=%q bio=%q", profile.Avatar, profile.Bio)
	}
	if profile.JoinedAt.IsZero() {
		t.Fatal("join date not recorded")
	}

	if _, err := s.accounts.Service.Signup(ctx, "mira", "another"); !errors.Is(err, accounterrors.ErrHandleTaken) {
		t.Fatalf("expected handle taken, got %v", err)
	}
}

func TestSignupRejectsReservedCharacters(t *testing.T) {
	s := newStack()
	// Colons would collide with the private channel key scheme.
	if _, err := s.accounts.Service.Signup(context.Background(), "mi:ra", "pw"); !errors.Is(err, accounterrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for colon handle, got %v", err)
	}
}

func TestLoginDoesNotDistinguishUnknownFromWrongPassword(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "mira")

	_, errWrong := s.accounts.Service.Login(ctx, "mira", "not the password")
	_, errUnknown := s.accounts.Service.Login(ctx, "ghost", "whatever")
	if !errors.Is(errWrong, accounterrors.ErrAuthenticationRequired) || !errors.Is(errUnknown, accounterrors.ErrAuthenticationRequired) {
		t.Fatalf("expected identical authentication errors, got %v and %v", errWrong, errUnknown)
	}
}

func TestLoginRejectsBannedAfterCredentialCheck(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "theo")
	s.ban(t, "idem-ban-1", "nova", "theo")

	if _, err := s.accounts.Service.Login(ctx, "theo", "hunter2-theo"); !errors.Is(err, accounterrors.ErrForbidden) {
		t.Fatalf("expected forbidden for banned login, got %v", err)
	}
	// Wrong password on a banned account still reads as a credential failure.
	if _, err := s.accounts.Service.Login(ctx, "theo", "wrong"); !errors.Is(err, accounterrors.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}
}

func TestProfileUpdates(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "mira")

	updated, err := s.accounts.Service.UpdateBio(ctx, "mira", "ships things")
	if err != nil {
		t.Fatalf("update bio: %v", err)
	}
	if updated.Bio != "ships things" {
		t.Fatalf("bio = %q", updated.Bio)
	}

	updated, err = s.accounts.Service.UpdateAvatar(ctx, "mira", "/uploads/profile-pics/mira.png")
	if err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	if updated.Avatar != "/uploads/profile-pics/mira.png" {
		t.Fatalf("avatar = %q", updated.Avatar)
	}

	if _, err := s.accounts.Service.Profile(ctx, "ghost"); !errors.Is(err, accounterrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSeedSupremeIsExplicitAndIdempotent(t *testing.T) {
	s := newStack()
	ctx := context.Background()

	if err := s.accounts.Service.SeedSupreme(ctx, "nova"); !errors.Is(err, accounterrors.ErrNotFound) {
		t.Fatalf("expected not found before signup, got %v", err)
	}

	s.signup(t, "nova")
	if err := s.accounts.Service.SeedSupreme(ctx, "nova"); err != nil {
		t.Fatalf("seed supreme: %v", err)
	}
	if err := s.accounts.Service.SeedSupreme(ctx, "nova"); err != nil {
		t.Fatalf("repeated seed supreme: %v", err)
	}

	role, err := s.access.Service.Role(ctx, "nova")
	if err != nil {
		t.Fatalf("role lookup: %v", err)
	}
	if string(role) != "supreme" {
		t.Fatalf("seeded role = %s", role)
	}
}

func TestSupremeSeedDeferredToSignup(t *testing.T) {
	// Fresh database: the boot-time seed finds nothing, and the configured
	// handle can only sign up through the running API. Signup completes the
	// promotion instead of the boot aborting.
	store := accountmemory.NewStore()
	accounts := accountservice.NewModule(accountservice.Dependencies{
		Repository:        store,
		Hasher:            accountcrypto.BcryptHasher{Cost: 4},
		Clock:             store,
		SupremeSeedHandle: "nova",
	})
	ctx := context.Background()

	if err := accounts.Service.SeedSupreme(ctx, "nova"); !errors.Is(err, accounterrors.ErrNotFound) {
		t.Fatalf("expected not found on fresh store, got %v", err)
	}

	profile, err := accounts.Service.Signup(ctx, "nova", "correct horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if profile.Role != "supreme" {
		t.Fatalf("configured handle signed up as %s", profile.Role)
	}

	// Anyone else still signs up as a plain member.
	other, err := accounts.Service.Signup(ctx, "mira", "pw")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if other.Role != "member" {
		t.Fatalf("unrelated signup role = %s", other.Role)
	}
}
