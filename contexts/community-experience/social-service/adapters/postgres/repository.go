package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "veilian/contexts/community-experience/social-service/domain/errors"
	"veilian/contexts/community-experience/social-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists feed posts and idempotency records.
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

func (r *Repository) CreatePost(ctx context.Context, post ports.Post) error {
	row := postModel{
		PostID:    post.PostID,
		Author:    post.Author,
		Caption:   post.Caption,
		VideoURL:  post.VideoURL,
		CreatedAt: post.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("social_repo_create_post_failed", err, "post_id", post.PostID)
	}
	return nil
}

func (r *Repository) ListFeed(ctx context.Context, input ports.ListFeedInput) ([]ports.Post, error) {
	var rows []postModel
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if input.Limit > 0 {
		query = query.Limit(input.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.logError("social_repo_list_feed_failed", err)
	}
	out := make([]ports.Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.Post{
			PostID:    row.PostID,
			Author:    row.Author,
			Caption:   row.Caption,
			VideoURL:  row.VideoURL,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).Where("key = ?", strings.TrimSpace(key)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("social_repo_idempotency_get_failed", err, "key", key)
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
		return r.logError("social_repo_idempotency_put_failed", err, "key", record.Key)
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
		"module", "community-experience/social-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("social repository operation failed", fields...)
	return err
}

type postModel struct {
	PostID    string    `gorm:"column:post_id;primaryKey"`
	Author    string    `gorm:"column:author"`
	Caption   string    `gorm:"column:caption"`
	VideoURL  string    `gorm:"column:video_url"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (postModel) TableName() string {
	return "social_posts"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "social_idempotency"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
