package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator issues random identifiers for production wiring.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}
