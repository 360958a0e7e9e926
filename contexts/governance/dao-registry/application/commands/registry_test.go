package commands_test

import (
	"context"
	"errors"
	"testing"

	daoregistry "quorum/contexts/governance/dao-registry"
	"quorum/contexts/governance/dao-registry/application/commands"
	domainerrors "quorum/contexts/governance/dao-registry/domain/errors"
)

func TestRegisterAndLookup(t *testing.T) {
	module := daoregistry.NewInMemoryModule(nil)
	ctx := context.Background()

	if _, err := module.Commands.Register(ctx, commands.RegisterCommand{Owner: "", Name: "x"}); !errors.Is(err, domainerrors.ErrInvalidOrgInput) {
		t.Fatalf("expected invalid input for missing owner, got %v", err)
	}

	org, err := module.Commands.Register(ctx, commands.RegisterCommand{
		OrgID: "org-1", Owner: "dana", Name: "Node Collective", URL: "https://nodes.example",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !org.Active {
		t.Fatalf("new organization must start active")
	}
	if _, err := module.Commands.Register(ctx, commands.RegisterCommand{
		OrgID: "org-1", Owner: "eve", Name: "Squatter",
	}); !errors.Is(err, domainerrors.ErrOrganizationExists) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}

	fetched, err := module.Queries.GetOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("get organization failed: %v", err)
	}
	if fetched.Owner != "dana" || fetched.Name != "Node Collective" {
		t.Fatalf("unexpected organization: %+v", fetched)
	}
}

func TestOwnerOnlyMutations(t *testing.T) {
	module := daoregistry.NewInMemoryModule(nil)
	ctx := context.Background()
	if _, err := module.Commands.Register(ctx, commands.RegisterCommand{
		OrgID: "org-1", Owner: "dana", Name: "Node Collective",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := module.Commands.UpdateMetadata(ctx, commands.UpdateMetadataCommand{
		OrgID: "org-1", Caller: "mallory", Name: "Hijacked",
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized update, got %v", err)
	}
	updated, err := module.Commands.UpdateMetadata(ctx, commands.UpdateMetadataCommand{
		OrgID: "org-1", Caller: "dana", Name: "Node Collective v2",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Node Collective v2" {
		t.Fatalf("unexpected name: %s", updated.Name)
	}

	if _, err := module.Commands.Deactivate(ctx, "org-1", "mallory"); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized deactivate, got %v", err)
	}
	org, err := module.Commands.Deactivate(ctx, "org-1", "dana")
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if org.Active {
		t.Fatalf("organization still active after deactivation")
	}
	if _, err := module.Commands.Deactivate(ctx, "org-1", "dana"); !errors.Is(err, domainerrors.ErrAlreadyDeactivated) {
		t.Fatalf("expected already-deactivated error, got %v", err)
	}
}

func TestDirectoryProjection(t *testing.T) {
	module := daoregistry.NewInMemoryModule(nil)
	ctx := context.Background()
	if _, err := module.Commands.Register(ctx, commands.RegisterCommand{
		OrgID: "org-1", Owner: "dana", Name: "Node Collective",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	directory := module.Directory()
	projection, err := directory.Organization(ctx, "org-1")
	if err != nil {
		t.Fatalf("directory lookup failed: %v", err)
	}
	if projection.Owner != "dana" || !projection.Active {
		t.Fatalf("unexpected projection: %+v", projection)
	}
	if _, err := directory.Organization(ctx, "org-missing"); err == nil {
		t.Fatalf("expected error for missing organization")
	}
}
