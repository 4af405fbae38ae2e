package chatservice

import (
	"log/slog"
	"time"

	httpadapter "veilian/contexts/community-experience/chat-service/adapters/http"
	"veilian/contexts/community-experience/chat-service/adapters/memory"
	"veilian/contexts/community-experience/chat-service/application"
	"veilian/contexts/community-experience/chat-service/application/workers"
	"veilian/contexts/community-experience/chat-service/ports"
)

// Module is the chat composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repo           ports.Repository
	Authorizer     ports.ChannelAuthorizer
	Idempotency    ports.IdempotencyStore
	IDGenerator    ports.IDGenerator
	Clock          ports.Clock
	Publisher      ports.Publisher
	RelayBatchSize int
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:           deps.Repo,
		Authorizer:     deps.Authorizer,
		Idempotency:    deps.Idempotency,
		IDGenerator:    deps.IDGenerator,
		Clock:          deps.Clock,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
		Relay: workers.OutboxRelay{
			Repo:      deps.Repo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.RelayBatchSize,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The channel authorizer is the access-control core, so it is
// injected rather than constructed here.
func NewInMemoryModule(logger *slog.Logger, authorizer ports.ChannelAuthorizer, publisher ports.Publisher) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:           store,
		Authorizer:     authorizer,
		Idempotency:    store,
		IDGenerator:    store,
		Clock:          store,
		Publisher:      publisher,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
