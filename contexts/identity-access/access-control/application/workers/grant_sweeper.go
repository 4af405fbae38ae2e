package workers

import (
	"context"
	"log/slog"

	"veilian/contexts/identity-access/access-control/ports"
)

// GrantSweeper drops expired subscription grants. Grants are not durable, so
// the sweep only keeps the in-memory store from accumulating dead tokens.
type GrantSweeper struct {
	Grants ports.GrantStore
	Clock  ports.Clock
	Logger *slog.Logger
}

func (g GrantSweeper) RunOnce(ctx context.Context) error {
	dropped, err := g.Grants.DeleteExpired(ctx, g.Clock.Now().UTC())
	if err != nil {
		return err
	}
	if dropped > 0 && g.Logger != nil {
		g.Logger.Info("expired grants swept",
			"event", "access_control_grants_swept",
			"module", "identity-access/access-control",
			"layer", "application",
			"grants_dropped", dropped,
		)
	}
	return nil
}
