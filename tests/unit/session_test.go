package unit

import (
	"context"
	"errors"
	"testing"

	accesserrors "veilian/contexts/identity-access/access-control/domain/errors"
)

func containsChannel(channels []string, key string) bool {
	for _, channel := range channels {
		if channel == key {
			return true
		}
	}
	return false
}

func TestOpenSessionChannelSet(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "mira")
	s.signup(t, "theo")

	grant, err := s.access.Service.OpenSession(ctx, "theo")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if !containsChannel(grant.Channels, "main") || !containsChannel(grant.Channels, "social") {
		t.Fatalf("member grant missing shared channels: %v", grant.Channels)
	}
	if containsChannel(grant.Channels, "moderator") {
		t.Fatalf("member grant includes moderator channel: %v", grant.Channels)
	}

	supreme, err := s.access.Service.OpenSession(ctx, "nova")
	if err != nil {
		t.Fatalf("open supreme session: %v", err)
	}
	if !containsChannel(supreme.Channels, "moderator") {
		t.Fatalf("supreme grant missing moderator channel: %v", supreme.Channels)
	}
}

func TestOpenSessionIncludesExistingPrivatePairs(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "mira")
	s.signup(t, "theo")

	key, err := s.access.Service.RegisterPrivatePair(ctx, "theo", "mira")
	if err != nil {
		t.Fatalf("register pair: %v", err)
	}
	if key != "private:mira:theo" {
		t.Fatalf("unexpected pair key %s", key)
	}

	for _, handle := range []string{"mira", "theo"} {
		grant, err := s.access.Service.OpenSession(ctx, handle)
		if err != nil {
			t.Fatalf("open session %s: %v", handle, err)
		}
		if !containsChannel(grant.Channels, key) {
			t.Fatalf("grant for %s missing pair channel: %v", handle, grant.Channels)
		}
	}
}

func TestOpenSessionRejectsUnknownAndBanned(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "theo")
	s.ban(t, "idem-ban-1", "nova", "theo")

	if _, err := s.access.Service.OpenSession(ctx, "ghost"); !errors.Is(err, accesserrors.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required for unknown handle, got %v", err)
	}
	if _, err := s.access.Service.OpenSession(ctx, "theo"); !errors.Is(err, accesserrors.ErrForbidden) {
		t.Fatalf("expected forbidden for banned handle, got %v", err)
	}
}

func TestBanRevokesLiveGrantsBeforeAcknowledging(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "theo")

	grant, err := s.access.Service.OpenSession(ctx, "theo")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	s.ban(t, "idem-ban-1", "nova", "theo")

	if _, err := s.access.Service.ValidateGrant(ctx, grant.Token, "main"); !errors.Is(err, accesserrors.ErrGrantNotFound) {
		t.Fatalf("expected grant gone after ban, got %v", err)
	}
	if _, err := s.access.Service.RefreshSession(ctx, grant.Token); !errors.Is(err, accesserrors.ErrGrantNotFound) {
		t.Fatalf("expected refresh to fail after ban, got %v", err)
	}
}

func TestRefreshReflectsRoleChanges(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.seedSupreme(t, "nova")
	s.signup(t, "mira")

	grant, err := s.access.Service.OpenSession(ctx, "mira")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if containsChannel(grant.Channels, "moderator") {
		t.Fatal("member grant already includes moderator channel")
	}

	s.promote(t, "idem-promote-1", "nova", "mira")
	refreshed, err := s.access.Service.RefreshSession(ctx, grant.Token)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !containsChannel(refreshed.Channels, "moderator") {
		t.Fatalf("refreshed grant missing moderator channel: %v", refreshed.Channels)
	}
}

func TestValidateGrantScopesChannels(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "theo")

	grant, err := s.access.Service.OpenSession(ctx, "theo")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if _, err := s.access.Service.ValidateGrant(ctx, grant.Token, "main"); err != nil {
		t.Fatalf("validate in-scope channel: %v", err)
	}
	if _, err := s.access.Service.ValidateGrant(ctx, grant.Token, "moderator"); !errors.Is(err, accesserrors.ErrForbidden) {
		t.Fatalf("expected forbidden for out-of-scope channel, got %v", err)
	}
}

func TestRealtimeAuthReturnsPresencePayload(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "theo")

	auth, err := s.access.Service.AuthorizeRealtime(ctx, "socket-1", "main", "theo")
	if err != nil {
		t.Fatalf("realtime auth: %v", err)
	}
	if auth.PresenceRaw["user_id"] != "theo" {
		t.Fatalf("presence user_id = %v", auth.PresenceRaw["user_id"])
	}
	info, ok := auth.PresenceRaw["user_info"].(map[string]any)
	if !ok {
		t.Fatalf("presence user_info missing: %v", auth.PresenceRaw)
	}
	if info["username"] != "theo" || info["avatar"] == "" {
		t.Fatalf("presence info incomplete: %v", info)
	}
}

func TestRealtimeAuthDeniesOutsiderOnPrivatePair(t *testing.T) {
	s := newStack()
	ctx := context.Background()
	s.signup(t, "mira")
	s.signup(t, "theo")
	s.signup(t, "carol")
	if _, err := s.access.Service.RegisterPrivatePair(ctx, "mira", "theo"); err != nil {
		t.Fatalf("register pair: %v", err)
	}

	if _, err := s.access.Service.AuthorizeRealtime(ctx, "socket-1", "private:mira:theo", "carol"); !errors.Is(err, accesserrors.ErrForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
	if _, err := s.access.Service.AuthorizeRealtime(ctx, "socket-2", "private:mira:theo", "mira"); err != nil {
		t.Fatalf("participant denied realtime auth: %v", err)
	}
}
