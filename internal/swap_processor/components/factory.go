package components

import (
	"log/slog"

	"github.com/currency-swap-engine/internal/cache"
	"github.com/currency-swap-engine/internal/config"
	"github.com/currency-swap-engine/internal/domain/ledger"
	"github.com/currency-swap-engine/internal/domain/reconciliation"
	"github.com/currency-swap-engine/internal/domain/user"
	"github.com/currency-swap-engine/internal/platform/persistence"
	"github.com/currency-swap-engine/internal/swap_processor/service"
)

// CreateSwapService creates a new SwapService with all its dependencies.
func CreateSwapService(
	mongoDB *persistence.MongoDB,
	userRepo user.Repository,
	ledgerRepo ledger.Repository,
	reconRepo reconciliation.Repository,
	balanceCache cache.BalanceCache,
	logger *slog.Logger,
	cfg *config.Config,
) service.SwapService {
	detector := NewCapabilityDetector(NewMongoTopologyInspector(mongoDB.Client()), logger)
	recorder := NewLedgerRecorder(ledgerRepo, cfg.Swap.LedgerSource, logger)
	compensator := NewCompensationManager(userRepo, balanceCache, reconRepo, logger)

	baseService := service.NewSwapExecutor(
		mongoDB,
		userRepo,
		recorder,
		compensator,
		detector,
		balanceCache,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolSwapService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool swap service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
