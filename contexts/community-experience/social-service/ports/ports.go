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
// Feed reads and writes both ride the shared social channel, so a ban shuts
// the whole surface off without any role logic living here.
type ChannelAuthorizer interface {
	AuthorizeSubscribe(ctx context.Context, handle string, channel string) error
	AuthorizePublish(ctx context.Context, handle string, channel string) error
}

type Post struct {
	PostID    string
	Author    string
	Caption   string
	VideoURL  string
	CreatedAt time.Time
}

type CreatePostInput struct {
	Author   string
	Caption  string
	VideoURL string
}

type ListFeedInput struct {
	Limit int
}

type Repository interface {
	CreatePost(ctx context.Context, post Post) error
	ListFeed(ctx context.Context, input ListFeedInput) ([]Post, error)
}

// Publisher fans a new post out on the broker social topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
