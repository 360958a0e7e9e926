package queries

import (
	"context"
	"strings"

	"quorum/contexts/governance/dao-registry/domain/entities"
	domainerrors "quorum/contexts/governance/dao-registry/domain/errors"
	"quorum/contexts/governance/dao-registry/ports"
)

type RegistryQueries struct {
	Orgs ports.OrganizationRepository
}

func (q RegistryQueries) GetOrganization(ctx context.Context, orgID string) (entities.Organization, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return entities.Organization{}, domainerrors.ErrInvalidOrgInput
	}
	return q.Orgs.GetOrganization(ctx, orgID)
}

func (q RegistryQueries) ListOrganizations(ctx context.Context) ([]entities.Organization, error) {
	return q.Orgs.ListOrganizations(ctx)
}
