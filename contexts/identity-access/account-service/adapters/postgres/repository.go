package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "veilian/contexts/identity-access/account-service/domain/errors"
	"veilian/contexts/identity-access/account-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

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

func (r *Repository) Create(ctx context.Context, account ports.Account) error {
	row := accountModelFromPort(account)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrHandleTaken
		}
		return r.logError("account_repo_create_failed", err, "handle", account.Handle)
	}
	return nil
}

func (r *Repository) Find(ctx context.Context, handle string) (ports.Account, bool, error) {
	var row accountModel
	err := r.db.WithContext(ctx).Where("handle = ?", strings.TrimSpace(handle)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Account{}, false, nil
		}
		return ports.Account{}, false, r.logError("account_repo_find_failed", err, "handle", handle)
	}
	return row.toPort(), true, nil
}

func (r *Repository) UpdateRole(ctx context.Context, handle string, role string, now time.Time) error {
	return r.update(ctx, handle, map[string]any{"role": role, "updated_at": now.UTC()}, "account_repo_update_role_failed")
}

func (r *Repository) UpdateBan(ctx context.Context, handle string, banned bool, now time.Time) error {
	return r.update(ctx, handle, map[string]any{"banned": banned, "updated_at": now.UTC()}, "account_repo_update_ban_failed")
}

func (r *Repository) UpdateBio(ctx context.Context, handle string, bio string, now time.Time) error {
	return r.update(ctx, handle, map[string]any{"bio": bio, "updated_at": now.UTC()}, "account_repo_update_bio_failed")
}

func (r *Repository) UpdateAvatar(ctx context.Context, handle string, avatarURL string, now time.Time) error {
	return r.update(ctx, handle, map[string]any{"avatar": avatarURL, "updated_at": now.UTC()}, "account_repo_update_avatar_failed")
}

func (r *Repository) update(ctx context.Context, handle string, values map[string]any, event string) error {
	tx := r.db.WithContext(ctx).Model(&accountModel{}).
		Where("handle = ?", strings.TrimSpace(handle)).
		Updates(values)
	if tx.Error != nil {
		return r.logError(event, tx.Error, "handle", handle)
	}
	if tx.RowsAffected == 0 {
		return domainerrors.ErrNotFound
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
		"module", "identity-access/account-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("account repository operation failed", fields...)
	return err
}

type accountModel struct {
	Handle       string    `gorm:"column:handle;primaryKey"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	Banned       bool      `gorm:"column:banned"`
	Avatar       string    `gorm:"column:avatar"`
	Bio          string    `gorm:"column:bio"`
	JoinedAt     time.Time `gorm:"column:joined_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string {
	return "accounts"
}

func accountModelFromPort(account ports.Account) accountModel {
	return accountModel{
		Handle:       strings.TrimSpace(account.Handle),
		PasswordHash: account.PasswordHash,
		Role:         account.Role,
		Banned:       account.Banned,
		Avatar:       account.Avatar,
		Bio:          account.Bio,
		JoinedAt:     account.JoinedAt.UTC(),
		UpdatedAt:    account.UpdatedAt.UTC(),
	}
}

func (m accountModel) toPort() ports.Account {
	return ports.Account{
		Handle:       m.Handle,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		Banned:       m.Banned,
		Avatar:       m.Avatar,
		Bio:          m.Bio,
		JoinedAt:     m.JoinedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

var _ ports.Repository = (*Repository)(nil)
