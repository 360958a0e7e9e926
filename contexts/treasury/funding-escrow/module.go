package fundingescrow

import (
	"log/slog"

	httpadapter "quorum/contexts/treasury/funding-escrow/adapters/http"
	"quorum/contexts/treasury/funding-escrow/adapters/memory"
	"quorum/contexts/treasury/funding-escrow/application/commands"
	"quorum/contexts/treasury/funding-escrow/application/queries"
	"quorum/contexts/treasury/funding-escrow/ports"
	"quorum/internal/platform/assets"
)

type Module struct {
	Handler  httpadapter.Handler
	Commands commands.EscrowUseCase
	Queries  queries.EscrowQueries
	Store    *memory.Store
	Ledger   *assets.Ledger
}

type Dependencies struct {
	Fundings ports.FundingRepository
	Assets   ports.AssetGateway
	Outbox   ports.OutboxWriter
	Epochs   ports.EpochSource
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	escrowUseCase := commands.EscrowUseCase{
		Fundings: deps.Fundings,
		Assets:   deps.Assets,
		Outbox:   deps.Outbox,
		Epochs:   deps.Epochs,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	escrowQueries := queries.EscrowQueries{
		Fundings: deps.Fundings,
	}
	return Module{
		Handler: httpadapter.Handler{
			Escrow:  escrowUseCase,
			Queries: escrowQueries,
			Logger:  deps.Logger,
		},
		Commands: escrowUseCase,
		Queries:  escrowQueries,
	}
}

// NewInMemoryModule wires the memory store with the in-process asset ledger,
// which stands in for the external asset service.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	ledger := assets.NewLedger()
	module := NewModule(Dependencies{
		Fundings: store,
		Assets:   ledger,
		Outbox:   store,
		Epochs:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	module.Ledger = ledger
	return module
}
