package accountservice

import (
	"log/slog"

	"veilian/contexts/identity-access/account-service/adapters/crypto"
	"veilian/contexts/identity-access/account-service/adapters/directory"
	httpadapter "veilian/contexts/identity-access/account-service/adapters/http"
	"veilian/contexts/identity-access/account-service/adapters/memory"
	"veilian/contexts/identity-access/account-service/application"
	"veilian/contexts/identity-access/account-service/ports"
)

// Module is the account-service composition root. Directory is the adapter
// the access-control module consumes as its account store collaborator.
type Module struct {
	Handler   httpadapter.Handler
	Service   application.Service
	Directory directory.Adapter
	Store     *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Hasher     ports.PasswordHasher
	Clock      ports.Clock
	Logger     *slog.Logger

	// SupremeSeedHandle is the deploy-time supreme handle; signup completes
	// the promotion when the boot-time seed ran before the account existed.
	SupremeSeedHandle string
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:              deps.Repository,
		Hasher:            deps.Hasher,
		Clock:             deps.Clock,
		Logger:            deps.Logger,
		SupremeSeedHandle: deps.SupremeSeedHandle,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service:   service,
		Directory: directory.Adapter{Repo: deps.Repository},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters and a low bcrypt cost to keep tests fast.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Hasher:     crypto.BcryptHasher{Cost: 4},
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
