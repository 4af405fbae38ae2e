package directory

import (
	"context"
	"time"

	accountports "veilian/contexts/identity-access/account-service/ports"
	"veilian/contexts/identity-access/access-control/domain/entities"
	accessports "veilian/contexts/identity-access/access-control/ports"
)

// Adapter exposes the account repository as the access-control account
// directory. It is the one sanctioned bridge between the two identity
// contexts; access-control never sees credential material through it.
type Adapter struct {
	Repo accountports.Repository
}

func (a Adapter) Find(ctx context.Context, handle string) (accessports.AccountRecord, bool, error) {
	account, found, err := a.Repo.Find(ctx, handle)
	if err != nil || !found {
		return accessports.AccountRecord{}, found, err
	}
	role := entities.Role(account.Role)
	if !role.Valid() {
		role = entities.RoleMember
	}
	return accessports.AccountRecord{
		Handle: account.Handle,
		Role:   role,
		Banned: account.Banned,
		Avatar: account.Avatar,
		Bio:    account.Bio,
	}, true, nil
}

func (a Adapter) UpdateRole(ctx context.Context, handle string, role entities.Role, now time.Time) error {
	return a.Repo.UpdateRole(ctx, handle, string(role), now)
}

func (a Adapter) UpdateBan(ctx context.Context, handle string, banned bool, now time.Time) error {
	return a.Repo.UpdateBan(ctx, handle, banned, now)
}

var _ accessports.AccountDirectory = Adapter{}
