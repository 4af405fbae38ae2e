package ports

import (
	"context"
	"time"

	"veilian/internal/shared/events"
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

// ChannelAuthorizer is the access-control core as seen from this context.
// Every mutation re-checks publish access; every read re-checks subscribe
// access. Private pairs register lazily at first message.
type ChannelAuthorizer interface {
	AuthorizeSubscribe(ctx context.Context, handle string, channel string) error
	AuthorizePublish(ctx context.Context, handle string, channel string) error
	ResolvePrivatePair(ctx context.Context, a string, b string) (string, error)
	RegisterPrivatePair(ctx context.Context, a string, b string) (string, error)
}

// Message is one entry of a per-channel append-only log. ChannelKey uses the
// same canonical scheme the authorization gate computes.
type Message struct {
	MessageID      string
	ChannelKey     string
	Author         string
	Content        string
	SequenceNumber int64
	CreatedAt      time.Time
}

type CreateMessageInput struct {
	ChannelKey string
	Author     string
	Content    string
}

type ListMessagesInput struct {
	ChannelKey    string
	AfterSequence int64
	Limit         int
}

type OutboxRecord struct {
	OutboxID  string
	Topic     string
	Payload   []byte
	Status    string // pending, published
	CreatedAt time.Time
}

type Repository interface {
	AppendMessage(ctx context.Context, input CreateMessageInput, now time.Time) (Message, error)
	ListMessages(ctx context.Context, input ListMessagesInput) ([]Message, error)
	EnqueueOutbox(ctx context.Context, record OutboxRecord) error
	PendingOutbox(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, now time.Time) error
}

// Publisher is the broker seam the outbox relay publishes through.
type Publisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
