package proposalservice

import (
	"log/slog"

	httpadapter "quorum/contexts/governance/proposal-service/adapters/http"
	"quorum/contexts/governance/proposal-service/adapters/memory"
	"quorum/contexts/governance/proposal-service/application/commands"
	"quorum/contexts/governance/proposal-service/application/queries"
	"quorum/contexts/governance/proposal-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Commands commands.ProposalUseCase
	Queries  queries.ProposalQueries
	Store    *memory.Store
}

type Dependencies struct {
	Proposals ports.ProposalRepository
	Power     ports.PowerSource
	Orgs      ports.OrganizationDirectory
	Outbox    ports.OutboxWriter
	Epochs    ports.EpochSource
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	proposalUseCase := commands.ProposalUseCase{
		Proposals: deps.Proposals,
		Power:     deps.Power,
		Orgs:      deps.Orgs,
		Outbox:    deps.Outbox,
		Epochs:    deps.Epochs,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	proposalQueries := queries.ProposalQueries{
		Proposals: deps.Proposals,
	}
	return Module{
		Handler: httpadapter.Handler{
			Proposals: proposalUseCase,
			Queries:   proposalQueries,
			Logger:    deps.Logger,
		},
		Commands: proposalUseCase,
		Queries:  proposalQueries,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Proposals: store,
		Power:     store,
		Orgs:      store,
		Outbox:    store,
		Epochs:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
