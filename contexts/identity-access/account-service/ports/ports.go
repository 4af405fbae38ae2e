package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleSupreme   = "supreme"
)

// Account is the durable user record. PasswordHash never leaves this context.
type Account struct {
	Handle       string
	PasswordHash string
	Role         string
	Banned       bool
	Avatar       string
	Bio          string
	JoinedAt     time.Time
	UpdatedAt    time.Time
}

// Repository is the durable account store keyed by handle.
type Repository interface {
	Create(ctx context.Context, account Account) error
	Find(ctx context.Context, handle string) (Account, bool, error)
	UpdateRole(ctx context.Context, handle string, role string, now time.Time) error
	UpdateBan(ctx context.Context, handle string, banned bool, now time.Time) error
	UpdateBio(ctx context.Context, handle string, bio string, now time.Time) error
	UpdateAvatar(ctx context.Context, handle string, avatarURL string, now time.Time) error
}

// PasswordHasher keeps the credential scheme opaque to the application layer.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash string, plain string) error
}

// Profile is the public view of an account; no credential material.
type Profile struct {
	Handle   string
	Role     string
	Banned   bool
	Avatar   string
	Bio      string
	JoinedAt time.Time
}
