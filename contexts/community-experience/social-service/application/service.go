package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	domainerrors "veilian/contexts/community-experience/social-service/domain/errors"
	"veilian/contexts/community-experience/social-service/ports"
	"veilian/internal/shared/events"
)

// SocialChannel is the shared feed channel key. Ban state gates this surface
// the same way it gates chat, through the access-control core.
const SocialChannel = "social"

type Service struct {
	Repo           ports.Repository
	Authorizer     ports.ChannelAuthorizer
	Idempotency    ports.IdempotencyStore
	IDGenerator    ports.IDGenerator
	Clock          ports.Clock
	Publisher      ports.Publisher
	Logger         *slog.Logger
	IdempotencyTTL time.Duration
}

// CreatePost records a feed entry and fans it out on the social topic. The
// broker publish happens after the durable write; a dropped fan-out loses a
// live notification, never the post itself.
func (s Service) CreatePost(ctx context.Context, idempotencyKey string, input ports.CreatePostInput) (ports.Post, error) {
	var out ports.Post
	input.Author = strings.TrimSpace(input.Author)
	input.Caption = strings.TrimSpace(input.Caption)
	input.VideoURL = strings.TrimSpace(input.VideoURL)
	if input.Author == "" || input.VideoURL == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return out, domainerrors.ErrIdempotencyKeyRequired
	}
	if err := s.Authorizer.AuthorizePublish(ctx, input.Author, SocialChannel); err != nil {
		return out, err
	}

	requestHash := hashStrings("create_post", input.Author, input.Caption, input.VideoURL)
	err := s.runIdempotent(
		ctx,
		idempotencyKey,
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			postID, err := s.IDGenerator.NewID(ctx)
			if err != nil {
				return nil, err
			}
			post := ports.Post{
				PostID:    postID,
				Author:    input.Author,
				Caption:   input.Caption,
				VideoURL:  input.VideoURL,
				CreatedAt: s.now(),
			}
			if err := s.Repo.CreatePost(ctx, post); err != nil {
				return nil, err
			}
			s.fanOut(ctx, post)
			return json.Marshal(post)
		},
	)
	return out, err
}

// ListFeed returns newest-first posts for a viewer the gate clears on the
// social channel.
func (s Service) ListFeed(ctx context.Context, viewer string, input ports.ListFeedInput) ([]ports.Post, error) {
	viewer = strings.TrimSpace(viewer)
	if viewer == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	if err := s.Authorizer.AuthorizeSubscribe(ctx, viewer, SocialChannel); err != nil {
		return nil, err
	}
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 200 {
		input.Limit = 200
	}
	return s.Repo.ListFeed(ctx, input)
}

func (s Service) fanOut(ctx context.Context, post ports.Post) {
	if s.Publisher == nil {
		return
	}
	envelope := events.Envelope{
		EventID:        post.PostID,
		EventType:      "social.post.created",
		SourceService:  "community-experience/social-service",
		OccurredAtUTC:  post.CreatedAt,
		EntityType:     "post",
		EntityID:       post.PostID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"post_id":    post.PostID,
			"author":     post.Author,
			"caption":    post.Caption,
			"video_url":  post.VideoURL,
			"created_at": post.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
	if err := s.Publisher.Publish(ctx, SocialChannel, envelope); err != nil {
		resolveLogger(s.Logger).Error("social fan-out publish failed",
			"event", "social_fan_out_failed",
			"module", "community-experience/social-service",
			"layer", "application",
			"post_id", post.PostID,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
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
