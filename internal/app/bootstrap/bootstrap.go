// Package bootstrap is the composition root. Keep construction and wiring
// here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	chatservice "veilian/contexts/community-experience/chat-service"
	chatpostgres "veilian/contexts/community-experience/chat-service/adapters/postgres"
	chatworkers "veilian/contexts/community-experience/chat-service/application/workers"
	socialservice "veilian/contexts/community-experience/social-service"
	socialpostgres "veilian/contexts/community-experience/social-service/adapters/postgres"
	accesscontrol "veilian/contexts/identity-access/access-control"
	accessmemory "veilian/contexts/identity-access/access-control/adapters/memory"
	accesspostgres "veilian/contexts/identity-access/access-control/adapters/postgres"
	accessapplication "veilian/contexts/identity-access/access-control/application"
	accessworkers "veilian/contexts/identity-access/access-control/application/workers"
	accountservice "veilian/contexts/identity-access/account-service"
	accountcrypto "veilian/contexts/identity-access/account-service/adapters/crypto"
	accountpostgres "veilian/contexts/identity-access/account-service/adapters/postgres"
	accounterrors "veilian/contexts/identity-access/account-service/domain/errors"
	"veilian/internal/platform/config"
	"veilian/internal/platform/db"
	"veilian/internal/platform/httpserver"
	"veilian/internal/platform/messaging"
	"veilian/internal/platform/realtime"
)

type APIApp struct {
	server       *httpserver.Server
	postgres     *db.Postgres
	grantSweeper accessworkers.GrantSweeper
	sweepEnabled bool
	chatRelay    chatworkers.OutboxRelay
	relayEnabled bool
	logger       *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	chatRelay    chatworkers.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	accountRepo := accountpostgres.NewRepository(pg.DB, logger)
	accounts := accountservice.NewModule(accountservice.Dependencies{
		Repository:        accountRepo,
		Hasher:            accountcrypto.BcryptHasher{},
		Clock:             accesspostgres.SystemClock{},
		Logger:            logger,
		SupremeSeedHandle: cfg.SupremeHandle,
	})

	broker := messaging.NewBroker(logger)

	// The gateway and the access module reference each other: grants are
	// revoked through the gateway, and the gateway validates tokens against
	// the access service. Build the gateway first and close the loop below.
	gateway := realtime.NewGateway(accessapplication.Service{}, broker, logger)

	accessRepo := accesspostgres.NewRepository(pg.DB, logger)
	grantStore := accessmemory.NewStore()
	access := accesscontrol.NewModule(accesscontrol.Dependencies{
		Directory:      accounts.Directory,
		Channels:       accessRepo,
		Grants:         grantStore,
		Idempotency:    accessRepo,
		Clock:          accesspostgres.SystemClock{},
		IDGenerator:    accesspostgres.UUIDGenerator{},
		Presence:       gateway,
		GrantTTL:       cfg.GrantTTL,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	gateway.Access = access.Service

	chatRepo := chatpostgres.NewRepository(pg.DB, logger)
	chat := chatservice.NewModule(chatservice.Dependencies{
		Repo:           chatRepo,
		Authorizer:     access.Service,
		Idempotency:    chatRepo,
		IDGenerator:    chatpostgres.UUIDGenerator{},
		Clock:          chatpostgres.SystemClock{},
		Publisher:      broker,
		RelayBatchSize: 100,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	socialRepo := socialpostgres.NewRepository(pg.DB, logger)
	social := socialservice.NewModule(socialservice.Dependencies{
		Repo:           socialRepo,
		Authorizer:     access.Service,
		Idempotency:    socialRepo,
		IDGenerator:    chatpostgres.UUIDGenerator{},
		Clock:          chatpostgres.SystemClock{},
		Publisher:      broker,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	if cfg.SupremeHandle != "" {
		err := accounts.Service.SeedSupreme(context.Background(), cfg.SupremeHandle)
		switch {
		case errors.Is(err, accounterrors.ErrNotFound):
			// Fresh database: the handle signs up through this API, and the
			// signup path finishes the promotion. Aborting here would
			// deadlock the bootstrap.
			logger.Warn("supreme seed deferred until signup",
				"event", "bootstrap_supreme_seed_deferred",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"handle", cfg.SupremeHandle,
			)
		case err != nil:
			return nil, err
		}
	}

	server := httpserver.New(accounts, access, chat, social, logger, normalizeAddr(cfg.HTTPPort))
	server.RegisterRealtime(gateway.Handler)

	return &APIApp{
		server:   server,
		postgres: pg,
		grantSweeper: accessworkers.GrantSweeper{
			Grants: grantStore,
			Clock:  accesspostgres.SystemClock{},
			Logger: logger,
		},
		sweepEnabled: cfg.EnableGrantSweeper,
		// The broker is in-process, so its subscribers (the realtime
		// gateway) live here. The relay must drain the outbox into this
		// broker instance for fan-out to reach sockets.
		chatRelay:    chat.Relay,
		relayEnabled: cfg.EnableChatOutboxRelay,
		logger:       logger,
	}, nil
}

// BuildWorker assembles the standalone relay process. It only pays off once
// the broker seam points at a hosted transport; with the in-process broker
// the relay must run inside the API (see EnableChatOutboxRelay in BuildAPI),
// because a separate process would drain the outbox into a bus nobody
// subscribes to.
func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	broker := messaging.NewBroker(logger)
	chatRepo := chatpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		chatRelay: chatworkers.OutboxRelay{
			Repo:      chatRepo,
			Publisher: broker,
			Clock:     chatpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableChatOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	if a.sweepEnabled {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_ = a.grantSweeper.RunOnce(ctx)
				}
			}
		}()
	}

	if a.relayEnabled {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_ = a.chatRelay.RunOnce(ctx)
				}
			}
		}()
	}

	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.relayEnabled {
			if err := w.chatRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
