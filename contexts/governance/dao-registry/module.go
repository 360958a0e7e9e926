package daoregistry

import (
	"context"
	"errors"
	"log/slog"

	httpadapter "quorum/contexts/governance/dao-registry/adapters/http"
	"quorum/contexts/governance/dao-registry/adapters/memory"
	"quorum/contexts/governance/dao-registry/application/commands"
	"quorum/contexts/governance/dao-registry/application/queries"
	domainerrors "quorum/contexts/governance/dao-registry/domain/errors"
	"quorum/contexts/governance/dao-registry/ports"
	proposalerrors "quorum/contexts/governance/proposal-service/domain/errors"
	proposalports "quorum/contexts/governance/proposal-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Commands commands.RegistryUseCase
	Queries  queries.RegistryQueries
	Store    *memory.Store
}

type Dependencies struct {
	Orgs   ports.OrganizationRepository
	Outbox ports.OutboxWriter
	Epochs ports.EpochSource
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registryUseCase := commands.RegistryUseCase{
		Orgs:   deps.Orgs,
		Outbox: deps.Outbox,
		Epochs: deps.Epochs,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	registryQueries := queries.RegistryQueries{
		Orgs: deps.Orgs,
	}
	return Module{
		Handler: httpadapter.Handler{
			Registry: registryUseCase,
			Queries:  registryQueries,
			Logger:   deps.Logger,
		},
		Commands: registryUseCase,
		Queries:  registryQueries,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Orgs:   store,
		Outbox: store,
		Epochs: store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}

// Directory projects the registry onto the proposal module's organization
// boundary.
func (m Module) Directory() proposalports.OrganizationDirectory {
	return directory{queries: m.Queries}
}

type directory struct {
	queries queries.RegistryQueries
}

func (d directory) Organization(ctx context.Context, orgID string) (proposalports.OrgProjection, error) {
	org, err := d.queries.GetOrganization(ctx, orgID)
	if err != nil {
		// Consumers branch on their own sentinel for a missing organization.
		if errors.Is(err, domainerrors.ErrOrganizationNotFound) {
			return proposalports.OrgProjection{}, proposalerrors.ErrOrganizationNotFound
		}
		return proposalports.OrgProjection{}, err
	}
	return proposalports.OrgProjection{
		OrgID:  org.OrgID,
		Owner:  org.Owner,
		Active: org.Active,
	}, nil
}
