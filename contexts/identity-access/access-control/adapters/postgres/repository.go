package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "veilian/contexts/identity-access/access-control/domain/errors"
	"veilian/contexts/identity-access/access-control/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the private-channel index and idempotency records.
// Subscription grants stay in memory by design: they are recomputed per
// connection and must never outlive a revoke.
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

func (r *Repository) RegisterPair(ctx context.Context, channelKey string, a string, b string, now time.Time) error {
	row := privatePairModel{
		ChannelKey:   strings.TrimSpace(channelKey),
		ParticipantA: strings.TrimSpace(a),
		ParticipantB: strings.TrimSpace(b),
		CreatedAt:    now.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("access_repo_register_pair_failed", create.Error, "channel_key", row.ChannelKey)
	}
	return nil
}

func (r *Repository) ListPeers(ctx context.Context, handle string) ([]string, error) {
	handle = strings.TrimSpace(handle)
	var rows []privatePairModel
	if err := r.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", handle, handle).
		Order("channel_key ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("access_repo_list_peers_failed", err, "handle", handle)
	}
	peers := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ParticipantA == handle {
			peers = append(peers, row.ParticipantB)
		} else {
			peers = append(peers, row.ParticipantA)
		}
	}
	return peers, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).Where("key = ?", strings.TrimSpace(key)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("access_repo_idempotency_get_failed", err, "key", key)
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
		return r.logError("access_repo_idempotency_put_failed", err, "key", record.Key)
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
		"module", "identity-access/access-control",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("access control repository operation failed", fields...)
	return err
}

type privatePairModel struct {
	ChannelKey   string    `gorm:"column:channel_key;primaryKey"`
	ParticipantA string    `gorm:"column:participant_a"`
	ParticipantB string    `gorm:"column:participant_b"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (privatePairModel) TableName() string {
	return "private_channels"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "access_control_idempotency"
}

var _ ports.PrivateChannelIndex = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
