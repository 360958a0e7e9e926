package bootstrap

import (
	"context"
	"log/slog"
	"time"

	daoregistry "quorum/contexts/governance/dao-registry"
	registrypostgres "quorum/contexts/governance/dao-registry/adapters/postgres"
	registryworkers "quorum/contexts/governance/dao-registry/application/workers"
	powerledger "quorum/contexts/governance/power-ledger"
	powerpostgres "quorum/contexts/governance/power-ledger/adapters/postgres"
	powerworkers "quorum/contexts/governance/power-ledger/application/workers"
	proposalservice "quorum/contexts/governance/proposal-service"
	proposalpostgres "quorum/contexts/governance/proposal-service/adapters/postgres"
	proposalworkers "quorum/contexts/governance/proposal-service/application/workers"
	fundingescrow "quorum/contexts/treasury/funding-escrow"
	escrowpostgres "quorum/contexts/treasury/funding-escrow/adapters/postgres"
	escrowworkers "quorum/contexts/treasury/funding-escrow/application/workers"
	"quorum/internal/platform/assets"
	"quorum/internal/platform/chainclock"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
	"quorum/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server *httpserver.Server
	handle *db.Handle
	logger *slog.Logger
}

type WorkerApp struct {
	handle       *db.Handle
	relays       []relay
	pollInterval time.Duration
	logger       *slog.Logger
}

type relay interface {
	RunOnce(ctx context.Context) error
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	handle, clock, modules, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		modules.registry,
		modules.powers,
		modules.proposals,
		modules.escrow,
		clock,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server: server,
		handle: handle,
		logger: logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	handle, _, modules, err := buildModules(cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	return &WorkerApp{
		handle: handle,
		relays: []relay{
			registryworkers.OutboxRelay{
				Outbox:    modules.registryRepo,
				Publisher: bus,
				Clock:     registrypostgres.SystemClock{},
				BatchSize: cfg.OutboxBatchSize,
				Logger:    logger,
			},
			powerworkers.OutboxRelay{
				Outbox:    modules.powersRepo,
				Publisher: bus,
				Clock:     powerpostgres.SystemClock{},
				BatchSize: cfg.OutboxBatchSize,
				Logger:    logger,
			},
			proposalworkers.OutboxRelay{
				Outbox:    modules.proposalsRepo,
				Publisher: bus,
				Clock:     proposalpostgres.SystemClock{},
				BatchSize: cfg.OutboxBatchSize,
				Logger:    logger,
			},
			escrowworkers.OutboxRelay{
				Outbox:    modules.escrowRepo,
				Publisher: bus,
				Clock:     escrowpostgres.SystemClock{},
				BatchSize: cfg.OutboxBatchSize,
				Logger:    logger,
			},
		},
		pollInterval: time.Duration(cfg.OutboxPollIntervalS) * time.Second,
		logger:       logger,
	}, nil
}

type builtModules struct {
	registry      daoregistry.Module
	powers        powerledger.Module
	proposals     proposalservice.Module
	escrow        fundingescrow.Module
	registryRepo  *registrypostgres.Repository
	powersRepo    *powerpostgres.Repository
	proposalsRepo *proposalpostgres.Repository
	escrowRepo    *escrowpostgres.Repository
}

func buildModules(cfg config.Config, logger *slog.Logger) (*db.Handle, *chainclock.Counter, builtModules, error) {
	handle, err := db.Connect(cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		return nil, nil, builtModules{}, err
	}

	registryRepo := registrypostgres.NewRepository(handle.DB, logger)
	powersRepo := powerpostgres.NewRepository(handle.DB, logger)
	proposalsRepo := proposalpostgres.NewRepository(handle.DB, logger)
	escrowRepo := escrowpostgres.NewRepository(handle.DB, logger)
	for _, migrate := range []func() error{
		registryRepo.AutoMigrate,
		powersRepo.AutoMigrate,
		proposalsRepo.AutoMigrate,
		escrowRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			_ = handle.Close()
			return nil, nil, builtModules{}, err
		}
	}

	clock := chainclock.New(cfg.StartEpoch)
	ledger := assets.NewLedger()

	registryModule := daoregistry.NewModule(daoregistry.Dependencies{
		Orgs:   registryRepo,
		Outbox: registryRepo,
		Epochs: clock,
		Clock:  registrypostgres.SystemClock{},
		IDGen:  registrypostgres.UUIDGenerator{},
		Logger: logger,
	})

	powerModule := powerledger.NewModule(powerledger.Dependencies{
		Powers: powersRepo,
		Oracle: nativeOracle{ledger: ledger, asset: cfg.NativeAssetID},
		Outbox: powersRepo,
		Epochs: clock,
		Clock:  powerpostgres.SystemClock{},
		IDGen:  powerpostgres.UUIDGenerator{},
		Logger: logger,
	})

	proposalModule := proposalservice.NewModule(proposalservice.Dependencies{
		Proposals: proposalsRepo,
		Power:     powerModule.Commands,
		Orgs:      registryModule.Directory(),
		Outbox:    proposalsRepo,
		Epochs:    clock,
		Clock:     proposalpostgres.SystemClock{},
		IDGen:     proposalpostgres.UUIDGenerator{},
		Logger:    logger,
	})

	escrowModule := fundingescrow.NewModule(fundingescrow.Dependencies{
		Fundings: escrowRepo,
		Assets:   ledger,
		Outbox:   escrowRepo,
		Epochs:   clock,
		Clock:    escrowpostgres.SystemClock{},
		IDGen:    escrowpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	return handle, clock, builtModules{
		registry:      registryModule,
		powers:        powerModule,
		proposals:     proposalModule,
		escrow:        escrowModule,
		registryRepo:  registryRepo,
		powersRepo:    powersRepo,
		proposalsRepo: proposalsRepo,
		escrowRepo:    escrowRepo,
	}, nil
}

// nativeOracle narrows the asset gateway to the delegator-side native balance
// read the power ledger needs.
type nativeOracle struct {
	ledger *assets.Ledger
	asset  string
}

func (o nativeOracle) NativeBalance(ctx context.Context, account string) (uint64, error) {
	return o.ledger.BalanceOf(ctx, o.asset, account)
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.handle != nil {
		return a.handle.Close()
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
		for _, r := range w.relays {
			if err := r.RunOnce(ctx); err != nil {
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
	if w.handle != nil {
		return w.handle.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
