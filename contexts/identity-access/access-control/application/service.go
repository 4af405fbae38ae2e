package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"veilian/contexts/identity-access/access-control/domain/entities"
	domainerrors "veilian/contexts/identity-access/access-control/domain/errors"
	"veilian/contexts/identity-access/access-control/domain/services"
	"veilian/contexts/identity-access/access-control/domain/valueobjects"
	"veilian/contexts/identity-access/access-control/ports"
)

const (
	actionBan     = "ban"
	actionUnban   = "unban"
	actionPromote = "promote_moderator"
)

type Service struct {
	Directory      ports.AccountDirectory
	Channels       ports.PrivateChannelIndex
	Grants         ports.GrantStore
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Presence       ports.PresenceNotifier
	GrantTTL       time.Duration
	IdempotencyTTL time.Duration
	Logger         *slog.Logger

	locks *handleLocks
}

// New finalizes a Service literal with its per-handle lock table.
func New(s Service) Service {
	s.locks = newHandleLocks()
	return s
}

// Role resolves the role of a known account.
func (s Service) Role(ctx context.Context, handle string) (entities.Role, error) {
	record, found, err := s.Directory.Find(ctx, strings.TrimSpace(handle))
	if err != nil {
		return "", err
	}
	if !found {
		return "", domainerrors.ErrNotFound
	}
	return record.Role, nil
}

// Banned resolves the ban flag of a known account.
func (s Service) Banned(ctx context.Context, handle string) (bool, error) {
	record, found, err := s.Directory.Find(ctx, strings.TrimSpace(handle))
	if err != nil {
		return false, err
	}
	if !found {
		return false, domainerrors.ErrNotFound
	}
	return record.Banned, nil
}

// Ban marks the target as banned and synchronously revokes every live
// subscription grant before acknowledging. Banning an already-banned target
// is a no-op success. Self-ban and moderator-on-moderator bans are permitted
// on purpose; the audit log carries both roles so policy can be reviewed.
func (s Service) Ban(
	ctx context.Context,
	idempotencyKey string,
	actorHandle string,
	targetHandle string,
	reason string,
) (ports.ModerationResult, error) {
	return s.runModeration(ctx, idempotencyKey, actorHandle, targetHandle, actionBan, reason,
		func(actor ports.AccountRecord) error {
			if !actor.Role.Moderates() {
				return domainerrors.ErrPermissionDenied
			}
			return nil
		},
		func(target ports.AccountRecord, now time.Time) (ports.ModerationResult, error) {
			result := ports.ModerationResult{
				Target:     target.Handle,
				Action:     actionBan,
				TargetRole: target.Role,
				Banned:     true,
				AppliedAt:  now,
			}
			if target.Banned {
				result.NoOp = true
				return result, nil
			}
			if err := s.Directory.UpdateBan(ctx, target.Handle, true, now); err != nil {
				return ports.ModerationResult{}, err
			}
			// Revocation happens before the ban reports success so live
			// connections lose channel access immediately, not eventually.
			if err := s.revokeLocked(ctx, target.Handle, "banned"); err != nil {
				return ports.ModerationResult{}, err
			}
			return result, nil
		},
	)
}

// Unban clears the ban flag. Unbanning an active account is a no-op success,
// mirroring ban idempotence.
func (s Service) Unban(
	ctx context.Context,
	idempotencyKey string,
	actorHandle string,
	targetHandle string,
) (ports.ModerationResult, error) {
	return s.runModeration(ctx, idempotencyKey, actorHandle, targetHandle, actionUnban, "",
		func(actor ports.AccountRecord) error {
			if !actor.Role.Moderates() {
				return domainerrors.ErrPermissionDenied
			}
			return nil
		},
		func(target ports.AccountRecord, now time.Time) (ports.ModerationResult, error) {
			result := ports.ModerationResult{
				Target:     target.Handle,
				Action:     actionUnban,
				TargetRole: target.Role,
				Banned:     false,
				AppliedAt:  now,
			}
			if !target.Banned {
				result.NoOp = true
				return result, nil
			}
			if err := s.Directory.UpdateBan(ctx, target.Handle, false, now); err != nil {
				return ports.ModerationResult{}, err
			}
			return result, nil
		},
	)
}

// PromoteModerator grants moderator status. Only a supreme actor may call it.
// Promoting an existing moderator is a no-op success; a supreme target is
// left untouched because demotion is not supported.
func (s Service) PromoteModerator(
	ctx context.Context,
	idempotencyKey string,
	actorHandle string,
	targetHandle string,
) (ports.ModerationResult, error) {
	return s.runModeration(ctx, idempotencyKey, actorHandle, targetHandle, actionPromote, "",
		func(actor ports.AccountRecord) error {
			if actor.Role != entities.RoleSupreme {
				return domainerrors.ErrPermissionDenied
			}
			return nil
		},
		func(target ports.AccountRecord, now time.Time) (ports.ModerationResult, error) {
			result := ports.ModerationResult{
				Target:     target.Handle,
				Action:     actionPromote,
				TargetRole: entities.RoleModerator,
				Banned:     target.Banned,
				AppliedAt:  now,
			}
			switch target.Role {
			case entities.RoleModerator, entities.RoleSupreme:
				result.TargetRole = target.Role
				result.NoOp = true
				return result, nil
			}
			if err := s.Directory.UpdateRole(ctx, target.Handle, entities.RoleModerator, now); err != nil {
				return ports.ModerationResult{}, err
			}
			return result, nil
		},
	)
}

// runModeration applies the shared moderation flow: resolve the actor, check
// the actor's permission before looking at the target so denials never leak
// whether the target handle exists, then run the mutation under the target's
// lock inside the idempotency envelope.
func (s Service) runModeration(
	ctx context.Context,
	idempotencyKey string,
	actorHandle string,
	targetHandle string,
	action string,
	reason string,
	permitted func(actor ports.AccountRecord) error,
	apply func(target ports.AccountRecord, now time.Time) (ports.ModerationResult, error),
) (ports.ModerationResult, error) {
	actorHandle = strings.TrimSpace(actorHandle)
	targetHandle = strings.TrimSpace(targetHandle)
	if actorHandle == "" || targetHandle == "" {
		return ports.ModerationResult{}, domainerrors.ErrInvalidRequest
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return ports.ModerationResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	actor, found, err := s.Directory.Find(ctx, actorHandle)
	if err != nil {
		return ports.ModerationResult{}, err
	}
	if !found {
		return ports.ModerationResult{}, s.logDenial(domainerrors.ErrAuthenticationRequired, action, actorHandle, targetHandle, "")
	}
	if actor.Banned {
		return ports.ModerationResult{}, s.logDenial(domainerrors.ErrForbidden, action, actorHandle, targetHandle, "")
	}
	if err := permitted(actor); err != nil {
		return ports.ModerationResult{}, s.logDenial(err, action, actorHandle, targetHandle, "")
	}

	requestHash := hashStrings(action, actorHandle, targetHandle, reason)
	var out ports.ModerationResult
	err = s.runIdempotent(
		ctx,
		idempotencyKey,
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			unlock := s.locks.lock(targetHandle)
			defer unlock()

			target, found, err := s.Directory.Find(ctx, targetHandle)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, s.logDenial(domainerrors.ErrNotFound, action, actorHandle, targetHandle, "")
			}
			result, err := apply(target, s.now())
			if err != nil {
				return nil, err
			}
			result.Actor = actorHandle
			result.ActorRole = actor.Role
			resolveLogger(s.Logger).Info("moderation action applied",
				"event", "access_control_moderation_applied",
				"module", "identity-access/access-control",
				"layer", "application",
				"action", action,
				"actor", actorHandle,
				"actor_role", string(actor.Role),
				"target", targetHandle,
				"target_role", string(result.TargetRole),
				"no_op", result.NoOp,
			)
			return json.Marshal(result)
		},
	)
	return out, err
}

// CanSubscribe evaluates the gate for read access.
func (s Service) CanSubscribe(ctx context.Context, handle string, channelName string) (bool, error) {
	record, channel, err := s.resolve(ctx, handle, channelName)
	if err != nil {
		return false, err
	}
	return services.CanSubscribe(record.Role, record.Banned, record.Handle, channel), nil
}

// CanPublish evaluates the gate for write access.
func (s Service) CanPublish(ctx context.Context, handle string, channelName string) (bool, error) {
	record, channel, err := s.resolve(ctx, handle, channelName)
	if err != nil {
		return false, err
	}
	return services.CanPublish(record.Role, record.Banned, record.Handle, channel), nil
}

// AuthorizeSubscribe is the request-authorization check chat/social handlers
// call before proceeding. Denials map onto the error taxonomy.
func (s Service) AuthorizeSubscribe(ctx context.Context, handle string, channelName string) error {
	allowed, err := s.CanSubscribe(ctx, handle, channelName)
	if err != nil {
		return err
	}
	if !allowed {
		return s.logDenial(domainerrors.ErrForbidden, "subscribe", handle, "", channelName)
	}
	return nil
}

// AuthorizePublish gates the write side of every chat/social mutation.
func (s Service) AuthorizePublish(ctx context.Context, handle string, channelName string) error {
	allowed, err := s.CanPublish(ctx, handle, channelName)
	if err != nil {
		return err
	}
	if !allowed {
		return s.logDenial(domainerrors.ErrForbidden, "publish", handle, "", channelName)
	}
	return nil
}

// ResolvePrivatePair computes the canonical key for a pair without recording
// anything, so callers can gate-check a prospective channel before minting it.
func (s Service) ResolvePrivatePair(ctx context.Context, a string, b string) (string, error) {
	channel, err := valueobjects.Private(a, b)
	if err != nil {
		return "", domainerrors.ErrInvalidChannel
	}
	return channel.Key(), nil
}

// RegisterPrivatePair records a private channel at first message exchange and
// returns its canonical key. Both participants must exist in the directory.
// Registration is idempotent; the pair never widens afterwards because the
// key is derived from the two handles.
func (s Service) RegisterPrivatePair(ctx context.Context, a string, b string) (string, error) {
	channel, err := valueobjects.Private(a, b)
	if err != nil {
		return "", domainerrors.ErrInvalidChannel
	}
	for _, participant := range channel.Participants {
		_, found, err := s.Directory.Find(ctx, participant)
		if err != nil {
			return "", err
		}
		if !found {
			return "", s.logDenial(domainerrors.ErrNotFound, "register_pair", a, participant, channel.Key())
		}
	}
	if err := s.Channels.RegisterPair(ctx, channel.Key(), channel.Participants[0], channel.Participants[1], s.now()); err != nil {
		return "", err
	}
	return channel.Key(), nil
}

// OpenSession issues a subscription grant scoped to exactly the channels the
// gate allows right now.
func (s Service) OpenSession(ctx context.Context, handle string) (ports.SubscriptionGrant, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ports.SubscriptionGrant{}, domainerrors.ErrInvalidRequest
	}
	record, found, err := s.Directory.Find(ctx, handle)
	if err != nil {
		return ports.SubscriptionGrant{}, err
	}
	if !found {
		return ports.SubscriptionGrant{}, s.logDenial(domainerrors.ErrAuthenticationRequired, "open_session", handle, "", "")
	}
	if record.Banned {
		return ports.SubscriptionGrant{}, s.logDenial(domainerrors.ErrForbidden, "open_session", handle, "", "")
	}

	channels, err := s.permittedChannels(ctx, record)
	if err != nil {
		return ports.SubscriptionGrant{}, err
	}
	token, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return ports.SubscriptionGrant{}, err
	}
	now := s.now()
	grant := ports.SubscriptionGrant{
		Token:     token,
		Handle:    record.Handle,
		Role:      record.Role,
		Channels:  channels,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.grantTTL()),
	}
	if err := s.Grants.Save(ctx, grant); err != nil {
		return ports.SubscriptionGrant{}, err
	}
	return grant, nil
}

// RefreshSession recomputes an existing grant's channel set and extends its
// expiry. Ban state is re-read so a refresh never resurrects revoked access.
func (s Service) RefreshSession(ctx context.Context, token string) (ports.SubscriptionGrant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ports.SubscriptionGrant{}, domainerrors.ErrInvalidRequest
	}
	now := s.now()
	grant, found, err := s.Grants.Find(ctx, token, now)
	if err != nil {
		return ports.SubscriptionGrant{}, err
	}
	if !found {
		return ports.SubscriptionGrant{}, domainerrors.ErrGrantNotFound
	}
	record, found, err := s.Directory.Find(ctx, grant.Handle)
	if err != nil {
		return ports.SubscriptionGrant{}, err
	}
	if !found {
		return ports.SubscriptionGrant{}, domainerrors.ErrAuthenticationRequired
	}
	if record.Banned {
		if _, err := s.Grants.DeleteByHandle(ctx, grant.Handle); err != nil {
			return ports.SubscriptionGrant{}, err
		}
		return ports.SubscriptionGrant{}, s.logDenial(domainerrors.ErrForbidden, "refresh_session", grant.Handle, "", "")
	}

	channels, err := s.permittedChannels(ctx, record)
	if err != nil {
		return ports.SubscriptionGrant{}, err
	}
	grant.Role = record.Role
	grant.Channels = channels
	grant.ExpiresAt = now.Add(s.grantTTL())
	if err := s.Grants.Save(ctx, grant); err != nil {
		return ports.SubscriptionGrant{}, err
	}
	return grant, nil
}

// Revoke drops every grant for the handle and disconnects live sessions.
func (s Service) Revoke(ctx context.Context, handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return domainerrors.ErrInvalidRequest
	}
	return s.revokeLocked(ctx, handle, "revoked")
}

// ValidateGrant resolves a live grant token and checks the channel is still
// inside its scope. The realtime gateway calls this per subscribe attempt.
func (s Service) ValidateGrant(ctx context.Context, token string, channelKey string) (ports.SubscriptionGrant, error) {
	grant, found, err := s.Grants.Find(ctx, strings.TrimSpace(token), s.now())
	if err != nil {
		return ports.SubscriptionGrant{}, err
	}
	if !found {
		return ports.SubscriptionGrant{}, domainerrors.ErrGrantNotFound
	}
	for _, key := range grant.Channels {
		if key == channelKey {
			return grant, nil
		}
	}
	return ports.SubscriptionGrant{}, s.logDenial(domainerrors.ErrForbidden, "grant_channel", grant.Handle, "", channelKey)
}

// AuthorizeRealtime is the pub/sub authorization callback: per subscribe
// attempt the transport presents connection id, channel name and handle, and
// gets back a channel-scoped grant with presence metadata, or a denial.
func (s Service) AuthorizeRealtime(
	ctx context.Context,
	socketID string,
	channelName string,
	handle string,
) (ports.RealtimeAuth, error) {
	socketID = strings.TrimSpace(socketID)
	handle = strings.TrimSpace(handle)
	if socketID == "" || handle == "" {
		return ports.RealtimeAuth{}, domainerrors.ErrInvalidRequest
	}
	record, channel, err := s.resolve(ctx, handle, channelName)
	if err != nil {
		return ports.RealtimeAuth{}, err
	}
	if !services.CanSubscribe(record.Role, record.Banned, record.Handle, channel) {
		return ports.RealtimeAuth{}, s.logDenial(domainerrors.ErrForbidden, "realtime_auth", handle, "", channel.Key())
	}
	grantID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return ports.RealtimeAuth{}, err
	}
	return ports.RealtimeAuth{
		SocketID:   socketID,
		ChannelKey: channel.Key(),
		GrantID:    grantID,
		PresenceID: record.Handle,
		PresenceRaw: map[string]any{
			"user_id": record.Handle,
			"user_info": map[string]any{
				"username": record.Handle,
				"avatar":   record.Avatar,
			},
		},
	}, nil
}

// PermittedChannels lists the channel keys currently relevant to the handle.
func (s Service) PermittedChannels(ctx context.Context, handle string) ([]string, error) {
	record, found, err := s.Directory.Find(ctx, strings.TrimSpace(handle))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrAuthenticationRequired
	}
	return s.permittedChannels(ctx, record)
}

func (s Service) permittedChannels(ctx context.Context, record ports.AccountRecord) ([]string, error) {
	if record.Banned {
		return []string{}, nil
	}
	channels := []string{valueobjects.Main().Key(), valueobjects.Social().Key()}
	if record.Role.Moderates() {
		channels = append(channels, valueobjects.Moderator().Key())
	}
	peers, err := s.Channels.ListPeers(ctx, record.Handle)
	if err != nil {
		return nil, err
	}
	privates := make([]string, 0, len(peers))
	for _, peer := range peers {
		channel, err := valueobjects.Private(record.Handle, peer)
		if err != nil {
			continue
		}
		privates = append(privates, channel.Key())
	}
	sort.Strings(privates)
	return append(channels, privates...), nil
}

func (s Service) revokeLocked(ctx context.Context, handle string, reason string) error {
	dropped, err := s.Grants.DeleteByHandle(ctx, handle)
	if err != nil {
		return err
	}
	if s.Presence != nil {
		s.Presence.DisconnectUser(ctx, handle, reason)
	}
	if dropped > 0 {
		resolveLogger(s.Logger).Info("subscription grants revoked",
			"event", "access_control_grants_revoked",
			"module", "identity-access/access-control",
			"layer", "application",
			"handle", handle,
			"reason", reason,
			"grants_dropped", dropped,
		)
	}
	return nil
}

func (s Service) resolve(ctx context.Context, handle string, channelName string) (ports.AccountRecord, valueobjects.Channel, error) {
	channel, err := valueobjects.Parse(channelName)
	if err != nil {
		return ports.AccountRecord{}, valueobjects.Channel{}, domainerrors.ErrInvalidChannel
	}
	record, found, err := s.Directory.Find(ctx, strings.TrimSpace(handle))
	if err != nil {
		return ports.AccountRecord{}, valueobjects.Channel{}, err
	}
	if !found {
		return ports.AccountRecord{}, valueobjects.Channel{}, s.logDenial(domainerrors.ErrAuthenticationRequired, "resolve", handle, "", channel.Key())
	}
	return record, channel, nil
}

// logDenial records every denial with its taxonomy kind so audit logs can
// answer who attempted what against whom.
func (s Service) logDenial(kind error, action string, actor string, target string, channel string) error {
	resolveLogger(s.Logger).Warn("access denied",
		"event", "access_control_denied",
		"module", "identity-access/access-control",
		"layer", "application",
		"kind", kind.Error(),
		"action", action,
		"actor", actor,
		"target", target,
		"channel", channel,
	)
	return kind
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) grantTTL() time.Duration {
	if s.GrantTTL <= 0 {
		return 12 * time.Hour
	}
	return s.GrantTTL
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()
	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}
	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}
	return decode(payload)
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}

