package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "veilian/contexts/community-experience/chat-service/domain/errors"
	"veilian/contexts/community-experience/chat-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists channel logs, the fan-out outbox, and idempotency
// records. Sequence numbers are allocated inside one transaction per append,
// so a unique (channel_key, sequence_number) index is enough to keep the log
// gap-free under concurrent writers.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) AppendMessage(ctx context.Context, input ports.CreateMessageInput, now time.Time) (ports.Message, error) {
	row := messageModel{
		MessageID:  uuid.NewString(),
		ChannelKey: strings.TrimSpace(input.ChannelKey),
		Author:     strings.TrimSpace(input.Author),
		Content:    input.Content,
		CreatedAt:  now.UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&messageModel{}).
			Where("channel_key = ?", row.ChannelKey).
			Select("COALESCE(MAX(sequence_number), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		row.SequenceNumber = last + 1
		return tx.Create(&row).Error
	})
	if err != nil {
		return ports.Message{}, r.logError("chat_repo_append_message_failed", err, "channel_key", row.ChannelKey)
	}
	return row.toPort(), nil
}

func (r *Repository) ListMessages(ctx context.Context, input ports.ListMessagesInput) ([]ports.Message, error) {
	var rows []messageModel
	query := r.db.WithContext(ctx).
		Where("channel_key = ?", strings.TrimSpace(input.ChannelKey)).
		Where("sequence_number > ?", input.AfterSequence).
		Order("sequence_number ASC")
	if input.Limit > 0 {
		query = query.Limit(input.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("chat_repo_list_messages_failed", err, "channel_key", input.ChannelKey)
	}
	out := make([]ports.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toPort())
	}
	return out, nil
}

func (r *Repository) EnqueueOutbox(ctx context.Context, record ports.OutboxRecord) error {
	row := outboxModel{
		OutboxID:  record.OutboxID,
		Topic:     record.Topic,
		Payload:   record.Payload,
		Status:    record.Status,
		CreatedAt: record.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("chat_repo_enqueue_outbox_failed", err, "outbox_id", record.OutboxID)
	}
	return nil
}

func (r *Repository) PendingOutbox(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	var rows []outboxModel
	query := r.db.WithContext(ctx).
		Where("status = ?", "pending").
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("chat_repo_pending_outbox_failed", err)
	}
	out := make([]ports.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.OutboxRecord{
			OutboxID:  row.OutboxID,
			Topic:     row.Topic,
			Payload:   row.Payload,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, now time.Time) error {
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       "published",
			"published_at": now.UTC(),
		})
	if update.Error != nil {
		return r.logError("chat_repo_mark_outbox_published_failed", update.Error, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).Where("key = ?", strings.TrimSpace(key)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("chat_repo_idempotency_get_failed", err, "key", key)
	}
	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     row.Payload,
		ExpiresAt:   row.ExpiresAt,
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Payload:     record.Payload,
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			var existing idempotencyModel
			if lookupErr := r.db.WithContext(ctx).Where("key = ?", record.Key).First(&existing).Error; lookupErr == nil {
				if existing.RequestHash != record.RequestHash {
					return domainerrors.ErrIdempotencyConflict
				}
				return nil
			}
		}
		return r.logError("chat_repo_idempotency_put_failed", err, "key", record.Key)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"module", "community-experience/chat-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("chat repository operation failed", fields...)
	return err
}

type messageModel struct {
	MessageID      string    `gorm:"column:message_id;primaryKey"`
	ChannelKey     string    `gorm:"column:channel_key"`
	Author         string    `gorm:"column:author"`
	Content        string    `gorm:"column:content"`
	SequenceNumber int64     `gorm:"column:sequence_number"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (messageModel) TableName() string {
	return "messages"
}

func (m messageModel) toPort() ports.Message {
	return ports.Message{
		MessageID:      m.MessageID,
		ChannelKey:     m.ChannelKey,
		Author:         m.Author,
		Content:        m.Content,
		SequenceNumber: m.SequenceNumber,
		CreatedAt:      m.CreatedAt,
	}
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	Topic       string     `gorm:"column:topic"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "chat_outbox"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "chat_idempotency"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
