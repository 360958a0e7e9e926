package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/governance/dao-registry/application"
	"quorum/contexts/governance/dao-registry/domain/entities"
	domainerrors "quorum/contexts/governance/dao-registry/domain/errors"
	"quorum/contexts/governance/dao-registry/ports"
)

type RegisterCommand struct {
	OrgID       string // optional opaque handle; generated when empty
	Owner       string
	Name        string
	Description string
	URL         string
}

type UpdateMetadataCommand struct {
	OrgID       string
	Caller      string
	Name        string
	Description string
	URL         string
}

// RegistryUseCase mutates the organization directory. Metadata changes and
// deactivation are owner-only.
type RegistryUseCase struct {
	Orgs   ports.OrganizationRepository
	Outbox ports.OutboxWriter
	Epochs ports.EpochSource
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc RegistryUseCase) Register(ctx context.Context, cmd RegisterCommand) (entities.Organization, error) {
	logger := application.ResolveLogger(uc.Logger)
	owner := strings.TrimSpace(cmd.Owner)
	name := strings.TrimSpace(cmd.Name)
	if owner == "" || name == "" {
		return entities.Organization{}, domainerrors.ErrInvalidOrgInput
	}

	orgID := strings.TrimSpace(cmd.OrgID)
	if orgID == "" {
		var err error
		orgID, err = uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Organization{}, err
		}
	}

	now := uc.now()
	org := entities.Organization{
		OrgID:             orgID,
		Name:              name,
		Description:       strings.TrimSpace(cmd.Description),
		URL:               strings.TrimSpace(cmd.URL),
		Owner:             owner,
		Active:            true,
		RegisteredAtEpoch: uc.Epochs.Epoch(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.Orgs.CreateOrganization(ctx, org); err != nil {
		return entities.Organization{}, err
	}
	if err := uc.appendOrgEvent(ctx, "registry.organization_registered", org); err != nil {
		return entities.Organization{}, err
	}
	logger.Info("organization registered",
		"event", "registry_organization_registered",
		"module", "governance/dao-registry",
		"layer", "application",
		"org_id", org.OrgID,
		"owner", org.Owner,
	)
	return org, nil
}

func (uc RegistryUseCase) UpdateMetadata(ctx context.Context, cmd UpdateMetadataCommand) (entities.Organization, error) {
	logger := application.ResolveLogger(uc.Logger)
	org, err := uc.getOwned(ctx, cmd.OrgID, cmd.Caller)
	if err != nil {
		return entities.Organization{}, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Organization{}, domainerrors.ErrInvalidOrgInput
	}

	org.Name = name
	org.Description = strings.TrimSpace(cmd.Description)
	org.URL = strings.TrimSpace(cmd.URL)
	org.UpdatedAt = uc.now()
	if err := uc.Orgs.SaveOrganization(ctx, org); err != nil {
		return entities.Organization{}, err
	}
	if err := uc.appendOrgEvent(ctx, "registry.organization_updated", org); err != nil {
		return entities.Organization{}, err
	}
	logger.Info("organization metadata updated",
		"event", "registry_organization_updated",
		"module", "governance/dao-registry",
		"layer", "application",
		"org_id", org.OrgID,
	)
	return org, nil
}

func (uc RegistryUseCase) Deactivate(ctx context.Context, orgID, caller string) (entities.Organization, error) {
	logger := application.ResolveLogger(uc.Logger)
	org, err := uc.getOwned(ctx, orgID, caller)
	if err != nil {
		return entities.Organization{}, err
	}
	if !org.Active {
		return entities.Organization{}, domainerrors.ErrAlreadyDeactivated
	}

	org.Active = false
	org.UpdatedAt = uc.now()
	if err := uc.Orgs.SaveOrganization(ctx, org); err != nil {
		return entities.Organization{}, err
	}
	if err := uc.appendOrgEvent(ctx, "registry.organization_deactivated", org); err != nil {
		return entities.Organization{}, err
	}
	logger.Info("organization deactivated",
		"event", "registry_organization_deactivated",
		"module", "governance/dao-registry",
		"layer", "application",
		"org_id", org.OrgID,
	)
	return org, nil
}

func (uc RegistryUseCase) getOwned(ctx context.Context, orgID, caller string) (entities.Organization, error) {
	org, err := uc.Orgs.GetOrganization(ctx, strings.TrimSpace(orgID))
	if err != nil {
		return entities.Organization{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(caller), org.Owner) {
		return entities.Organization{}, domainerrors.ErrUnauthorized
	}
	return org, nil
}

func (uc RegistryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
