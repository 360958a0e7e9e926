package powerledger

import (
	"log/slog"

	httpadapter "quorum/contexts/governance/power-ledger/adapters/http"
	"quorum/contexts/governance/power-ledger/adapters/memory"
	"quorum/contexts/governance/power-ledger/application/commands"
	"quorum/contexts/governance/power-ledger/application/queries"
	"quorum/contexts/governance/power-ledger/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Commands commands.PowerUseCase
	Queries  queries.PowerQueries
	Store    *memory.Store
}

type Dependencies struct {
	Powers ports.PowerRepository
	Oracle ports.BalanceOracle
	Outbox ports.OutboxWriter
	Epochs ports.EpochSource
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	powerUseCase := commands.PowerUseCase{
		Powers: deps.Powers,
		Oracle: deps.Oracle,
		Outbox: deps.Outbox,
		Epochs: deps.Epochs,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	powerQueries := queries.PowerQueries{
		Powers: deps.Powers,
	}
	return Module{
		Handler: httpadapter.Handler{
			Powers:  powerUseCase,
			Queries: powerQueries,
			Logger:  deps.Logger,
		},
		Commands: powerUseCase,
		Queries:  powerQueries,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Powers: store,
		Oracle: store,
		Outbox: store,
		Epochs: store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
