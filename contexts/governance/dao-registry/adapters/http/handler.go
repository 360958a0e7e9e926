package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/governance/dao-registry/application/commands"
	"quorum/contexts/governance/dao-registry/application/queries"
	"quorum/contexts/governance/dao-registry/domain/entities"
	httptransport "quorum/contexts/governance/dao-registry/transport/http"
)

type Handler struct {
	Registry commands.RegistryUseCase
	Queries  queries.RegistryQueries
	Logger   *slog.Logger
}

func (h Handler) RegisterHandler(
	ctx context.Context,
	owner string,
	req httptransport.RegisterOrganizationRequest,
) (httptransport.OrganizationResponse, error) {
	org, err := h.Registry.Register(ctx, commands.RegisterCommand{
		OrgID:       req.OrgID,
		Owner:       owner,
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		return httptransport.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

func (h Handler) GetOrganizationHandler(ctx context.Context, orgID string) (httptransport.OrganizationResponse, error) {
	org, err := h.Queries.GetOrganization(ctx, orgID)
	if err != nil {
		return httptransport.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

func (h Handler) ListOrganizationsHandler(ctx context.Context) (httptransport.OrganizationListResponse, error) {
	orgs, err := h.Queries.ListOrganizations(ctx)
	if err != nil {
		return httptransport.OrganizationListResponse{}, err
	}
	items := make([]httptransport.OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		items = append(items, toOrganizationResponse(org))
	}
	return httptransport.OrganizationListResponse{Items: items}, nil
}

func (h Handler) UpdateMetadataHandler(
	ctx context.Context,
	orgID, caller string,
	req httptransport.UpdateOrganizationRequest,
) (httptransport.OrganizationResponse, error) {
	org, err := h.Registry.UpdateMetadata(ctx, commands.UpdateMetadataCommand{
		OrgID:       orgID,
		Caller:      caller,
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
	})
	if err != nil {
		return httptransport.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

func (h Handler) DeactivateHandler(ctx context.Context, orgID, caller string) (httptransport.OrganizationResponse, error) {
	org, err := h.Registry.Deactivate(ctx, orgID, caller)
	if err != nil {
		return httptransport.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

func toOrganizationResponse(org entities.Organization) httptransport.OrganizationResponse {
	return httptransport.OrganizationResponse{
		OrgID:             org.OrgID,
		Name:              org.Name,
		Description:       org.Description,
		URL:               org.URL,
		Owner:             org.Owner,
		Active:            org.Active,
		RegisteredAtEpoch: org.RegisteredAtEpoch,
	}
}
