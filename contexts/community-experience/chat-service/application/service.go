package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	domainerrors "veilian/contexts/community-experience/chat-service/domain/errors"
	"veilian/contexts/community-experience/chat-service/ports"
	"veilian/internal/shared/events"
)

const sourceService = "community-experience/chat-service"

type Service struct {
	Repo           ports.Repository
	Authorizer     ports.ChannelAuthorizer
	Idempotency    ports.IdempotencyStore
	IDGenerator    ports.IDGenerator
	Clock          ports.Clock
	Logger         *slog.Logger
	IdempotencyTTL time.Duration
}

// PostMessage appends to a named channel after the gate clears the author
// for publish. The outbox row is enqueued in the same execution so fan-out
// never precedes the durable write.
func (s Service) PostMessage(
	ctx context.Context,
	idempotencyKey string,
	input ports.CreateMessageInput,
) (ports.Message, error) {
	var out ports.Message
	input.ChannelKey = strings.TrimSpace(input.ChannelKey)
	input.Author = strings.TrimSpace(input.Author)
	input.Content = strings.TrimSpace(input.Content)
	if input.ChannelKey == "" || input.Author == "" || input.Content == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}
	if err := s.Authorizer.AuthorizePublish(ctx, input.Author, input.ChannelKey); err != nil {
		return out, err
	}

	payload, _ := json.Marshal(input)
	requestHash := hashStrings("post_message", string(payload))
	err := s.runIdempotent(
		ctx,
		idempotencyKey,
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			message, err := s.Repo.AppendMessage(ctx, input, s.now())
			if err != nil {
				return nil, err
			}
			if err := s.enqueueFanOut(ctx, message); err != nil {
				return nil, err
			}
			return json.Marshal(message)
		},
	)
	return out, err
}

// PostPrivateMessage resolves the canonical pair channel, gate-checks the
// author, then registers the pair on first exchange and posts through the
// regular path.
func (s Service) PostPrivateMessage(
	ctx context.Context,
	idempotencyKey string,
	author string,
	counterpart string,
	content string,
) (ports.Message, error) {
	author = strings.TrimSpace(author)
	counterpart = strings.TrimSpace(counterpart)
	if author == "" || counterpart == "" {
		return ports.Message{}, domainerrors.ErrInvalidRequest
	}
	channelKey, err := s.Authorizer.ResolvePrivatePair(ctx, author, counterpart)
	if err != nil {
		return ports.Message{}, err
	}
	// Gate before minting the pair. A denied post must leave no durable
	// trace, or the counterpart's channel set would grow from a rejected
	// message.
	if err := s.Authorizer.AuthorizePublish(ctx, author, channelKey); err != nil {
		return ports.Message{}, err
	}
	if _, err := s.Authorizer.RegisterPrivatePair(ctx, author, counterpart); err != nil {
		return ports.Message{}, err
	}
	return s.PostMessage(ctx, idempotencyKey, ports.CreateMessageInput{
		ChannelKey: channelKey,
		Author:     author,
		Content:    content,
	})
}

// ListMessages reads a channel log after the gate clears the viewer for
// subscribe. Moderators therefore can read private pairs they are not part
// of, but PostMessage still refuses their writes there.
func (s Service) ListMessages(ctx context.Context, viewer string, input ports.ListMessagesInput) ([]ports.Message, error) {
	input.ChannelKey = strings.TrimSpace(input.ChannelKey)
	viewer = strings.TrimSpace(viewer)
	if input.ChannelKey == "" || viewer == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	if err := s.Authorizer.AuthorizeSubscribe(ctx, viewer, input.ChannelKey); err != nil {
		return nil, err
	}
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 200 {
		input.Limit = 200
	}
	return s.Repo.ListMessages(ctx, input)
}

func (s Service) enqueueFanOut(ctx context.Context, message ports.Message) error {
	outboxID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return err
	}
	envelope := events.Envelope{
		EventID:        outboxID,
		EventType:      "chat.message.posted",
		SourceService:  sourceService,
		OccurredAtUTC:  message.CreatedAt,
		EntityType:     "message",
		EntityID:       message.MessageID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"message_id": message.MessageID,
			"channel":    message.ChannelKey,
			"author":     message.Author,
			"content":    message.Content,
			"sequence":   message.SequenceNumber,
			"created_at": message.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return s.Repo.EnqueueOutbox(ctx, ports.OutboxRecord{
		OutboxID:  outboxID,
		Topic:     message.ChannelKey,
		Payload:   raw,
		Status:    "pending",
		CreatedAt: message.CreatedAt,
	})
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

func (s Service) requireIdempotency(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
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

	ResolveLogger(s.Logger).Debug("chat idempotent operation committed",
		"event", "chat_idempotent_operation_committed",
		"module", "community-experience/chat-service",
		"layer", "application",
		"idempotency_key", key,
	)
	return decode(payload)
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
