package ports

import (
	"context"
	"time"

	"veilian/contexts/identity-access/access-control/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// AccountRecord is the slice of an account this context reads. Role and ban
// flag are the only fields it ever mutates; profile fields ride along for
// presence metadata.
type AccountRecord struct {
	Handle string
	Role   entities.Role
	Banned bool
	Avatar string
	Bio    string
}

// AccountDirectory is the durable account store collaborator. Mutations must
// be acknowledged by the directory before the registry reports success.
type AccountDirectory interface {
	Find(ctx context.Context, handle string) (AccountRecord, bool, error)
	UpdateRole(ctx context.Context, handle string, role entities.Role, now time.Time) error
	UpdateBan(ctx context.Context, handle string, banned bool, now time.Time) error
}

// PrivateChannelIndex tracks which private pairs exist. Pairs appear lazily
// at first message exchange and are never widened afterwards.
type PrivateChannelIndex interface {
	RegisterPair(ctx context.Context, channelKey string, a string, b string, now time.Time) error
	ListPeers(ctx context.Context, handle string) ([]string, error)
}

// SubscriptionGrant scopes one connection to the channels the gate allows.
// Grants are recomputed per connection and never persisted durably.
type SubscriptionGrant struct {
	Token     string
	Handle    string
	Role      entities.Role
	Channels  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type GrantStore interface {
	Save(ctx context.Context, grant SubscriptionGrant) error
	Find(ctx context.Context, token string, now time.Time) (SubscriptionGrant, bool, error)
	DeleteByHandle(ctx context.Context, handle string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// PresenceNotifier lets the registry force live connections down as part of
// a ban, before the ban acknowledges. Optional; nil means no live transport.
type PresenceNotifier interface {
	DisconnectUser(ctx context.Context, handle string, reason string)
}

// ModerationResult is the outcome of a role or ban mutation.
type ModerationResult struct {
	Actor      string
	ActorRole  entities.Role
	Target     string
	Action     string
	TargetRole entities.Role
	Banned     bool
	AppliedAt  time.Time
	NoOp       bool
}

// RealtimeAuth is the transport authorization callback response shape.
type RealtimeAuth struct {
	SocketID    string
	ChannelKey  string
	GrantID     string
	PresenceID  string
	PresenceRaw map[string]any
}
