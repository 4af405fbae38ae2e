package accesscontrol

import (
	"log/slog"
	"time"

	httpadapter "veilian/contexts/identity-access/access-control/adapters/http"
	"veilian/contexts/identity-access/access-control/adapters/memory"
	"veilian/contexts/identity-access/access-control/application"
	"veilian/contexts/identity-access/access-control/ports"
)

// Module is the access-control composition root exposed to runtime wiring.
// Service is exported because chat/social modules consume it as their
// channel authorizer port.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Directory      ports.AccountDirectory
	Channels       ports.PrivateChannelIndex
	Grants         ports.GrantStore
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Presence       ports.PresenceNotifier
	GrantTTL       time.Duration
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.New(application.Service{
		Directory:      deps.Directory,
		Channels:       deps.Channels,
		Grants:         deps.Grants,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDGenerator:    deps.IDGenerator,
		Presence:       deps.Presence,
		GrantTTL:       deps.GrantTTL,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	})
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The account directory is a collaborator owned by the accounts
// context, so it is injected rather than constructed here.
func NewInMemoryModule(logger *slog.Logger, directory ports.AccountDirectory) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Directory:      directory,
		Channels:       store,
		Grants:         store,
		Idempotency:    store,
		Clock:          store,
		IDGenerator:    store,
		GrantTTL:       12 * time.Hour,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
