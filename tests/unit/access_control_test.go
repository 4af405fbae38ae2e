package unit

import (
	"context"
	"errors"
	"testing"

	accesserrors "veilian/contexts/identity-access/access-control/domain/errors"
)

func TestPromoteRequiresSupreme(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "mira")
	s.signup(t, "theo")
	s.promote(t, "idem-promote-1", "nova", "mira")

	// A freshly promoted moderator still cannot mint moderators.
	_, err := s.access.Service.PromoteModerator(ctx, "idem-promote-2", "mira", "theo")
	if !errors.Is(err, accesserrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for moderator actor, got %v", err)
	}
	role, err := s.access.Service.Role(ctx, "theo")
	if err != nil {
		t.Fatalf("role lookup: %v", err)
	}
	if string(role) != "member" {
		t.Fatalf("denied promotion changed target role to %s", role)
	}

	_, err = s.access.Service.PromoteModerator(ctx, "idem-promote-3", "theo", "mira")
	if !errors.Is(err, accesserrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for member actor, got %v", err)
	}
}

func TestPromoteExistingModeratorIsNoOp(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "mira")
	s.promote(t, "idem-promote-1", "nova", "mira")

	result, err := s.access.Service.PromoteModerator(ctx, "idem-promote-repeat", "nova", "mira")
	if err != nil {
		t.Fatalf("re-promote failed: %v", err)
	}
	if !result.NoOp {
		t.Fatal("expected re-promotion to be a no-op")
	}
}

func TestBanRequiresModerationRole(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "mira")
	s.signup(t, "theo")

	_, err := s.access.Service.Ban(ctx, "idem-ban-1", "mira", "theo", "spam")
	if !errors.Is(err, accesserrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	banned, err := s.access.Service.Banned(ctx, "theo")
	if err != nil {
		t.Fatalf("banned lookup: %v", err)
	}
	if banned {
		t.Fatal("denied ban still flagged the target")
	}
}

func TestUnprivilegedDenialDoesNotRevealTargetExistence(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "mira")

	_, errKnown := s.access.Service.Ban(ctx, "idem-leak-1", "mira", "mira", "x")
	_, errUnknown := s.access.Service.Ban(ctx, "idem-leak-2", "mira", "ghost", "x")
	if !errors.Is(errKnown, accesserrors.ErrPermissionDenied) || !errors.Is(errUnknown, accesserrors.ErrPermissionDenied) {
		t.Fatalf("expected identical permission denials, got %v and %v", errKnown, errUnknown)
	}
}

func TestBanIsIdempotent(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "theo")
	s.ban(t, "idem-ban-1", "nova", "theo")

	result, err := s.access.Service.Ban(ctx, "idem-ban-2", "nova", "theo", "again")
	if err != nil {
		t.Fatalf("second ban failed: %v", err)
	}
	if !result.NoOp {
		t.Fatal("expected second ban to be a no-op")
	}
	banned, err := s.access.Service.Banned(ctx, "theo")
	if err != nil {
		t.Fatalf("banned lookup: %v", err)
	}
	if !banned {
		t.Fatal("target not banned after idempotent re-ban")
	}
}

func TestBanUnbanRestoresChannelSet(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "theo")

	before, err := s.access.Service.PermittedChannels(ctx, "theo")
	if err != nil {
		t.Fatalf("permitted channels before: %v", err)
	}

	s.ban(t, "idem-ban-1", "nova", "theo")
	during, err := s.access.Service.PermittedChannels(ctx, "theo")
	if err != nil {
		t.Fatalf("permitted channels during ban: %v", err)
	}
	if len(during) != 0 {
		t.Fatalf("banned account still holds channels %v", during)
	}

	if _, err := s.access.Service.Unban(ctx, "idem-unban-1", "nova", "theo"); err != nil {
		t.Fatalf("unban: %v", err)
	}
	after, err := s.access.Service.PermittedChannels(ctx, "theo")
	if err != nil {
		t.Fatalf("permitted channels after unban: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("channel set not restored: before %v after %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("channel set not restored: before %v after %v", before, after)
		}
	}
}

func TestModerationIdempotencyReplayAndConflict(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "theo")

	first, err := s.access.Service.Ban(ctx, "idem-shared", "nova", "theo", "spam")
	if err != nil {
		t.Fatalf("first ban: %v", err)
	}
	replay, err := s.access.Service.Ban(ctx, "idem-shared", "nova", "theo", "spam")
	if err != nil {
		t.Fatalf("replayed ban: %v", err)
	}
	if replay.AppliedAt != first.AppliedAt || replay.NoOp != first.NoOp {
		t.Fatal("replay did not return the recorded result")
	}

	_, err = s.access.Service.Ban(ctx, "idem-shared", "nova", "theo", "different reason")
	if !errors.Is(err, accesserrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestModeratorGainsOversightChannels(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "mira")
	s.promote(t, "idem-promote-1", "nova", "mira")

	allowed, err := s.access.Service.CanSubscribe(ctx, "mira", "moderator")
	if err != nil {
		t.Fatalf("can subscribe: %v", err)
	}
	if !allowed {
		t.Fatal("moderator denied the moderator channel")
	}

	member, err := s.access.Service.CanSubscribe(ctx, "nova", "moderator")
	if err != nil {
		t.Fatalf("can subscribe supreme: %v", err)
	}
	if !member {
		t.Fatal("supreme denied the moderator channel")
	}
}

func TestBanOverridesModeratorRole(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "mira")
	s.promote(t, "idem-promote-1", "nova", "mira")
	s.ban(t, "idem-ban-1", "nova", "mira")

	// A banned moderator keeps the role but loses every channel.
	role, err := s.access.Service.Role(ctx, "mira")
	if err != nil {
		t.Fatalf("role: %v", err)
	}
	if string(role) != "moderator" {
		t.Fatalf("role after ban = %s", role)
	}
	for _, channel := range []string{"main", "social", "moderator"} {
		allowed, err := s.access.Service.CanSubscribe(ctx, "mira", channel)
		if err != nil {
			t.Fatalf("can subscribe %s: %v", channel, err)
		}
		if allowed {
			t.Fatalf("banned moderator allowed on %s", channel)
		}
	}
}
