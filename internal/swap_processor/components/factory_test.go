package components

import (
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"

	"github.com/currency-swap-engine/internal/config"
	"github.com/currency-swap-engine/internal/platform/persistence"
	"github.com/currency-swap-engine/internal/swap_processor/service"
)

// Reusing mocks from the other test files in this package:
// MockUserRepository from compensation_manager_test.go
// MockLedgerRepository from ledger_recorder_test.go
// MockReconciliationRepository from compensation_manager_test.go
// MockBalanceCache from compensation_manager_test.go

func TestCreateSwapService(t *testing.T) {
	mockMongoDB := &persistence.MongoDB{}
	mockUserRepo := &MockUserRepository{}
	mockLedgerRepo := &MockLedgerRepository{}
	mockReconRepo := &MockReconciliationRepository{}
	mockCache := &MockBalanceCache{}
	logger := slog.Default()

	t.Run("creates worker pool service with valid config", func(t *testing.T) {
		cfg := &config.Config{
			Swap: config.SwapConfig{
				LedgerSource: "swap_engine",
			},
			WorkerPool: config.WorkerPoolConfig{
				Size: 5,
			},
		}

		swapService := CreateSwapService(
			mockMongoDB,
			mockUserRepo,
			mockLedgerRepo,
			mockReconRepo,
			mockCache,
			logger,
			cfg,
		)

		assert.NotNil(t, swapService)

		poolService, ok := swapService.(*service.WorkerPoolSwapService)
		assert.True(t, ok)
		if ok {
			assert.Equal(t, 5, poolService.Capacity())
			poolService.Shutdown()
		}
	})

	t.Run("still returns a usable service with zero pool size", func(t *testing.T) {
		cfg := &config.Config{
			Swap: config.SwapConfig{
				LedgerSource: "swap_engine",
			},
			WorkerPool: config.WorkerPoolConfig{
				Size: 0,
			},
		}

		swapService := CreateSwapService(
			mockMongoDB,
			mockUserRepo,
			mockLedgerRepo,
			mockReconRepo,
			mockCache,
			logger,
			cfg,
		)

		assert.NotNil(t, swapService)

		// Whether the pool accepted the size or the factory fell back, the
		// returned value must satisfy the service contract
		_, ok := swapService.(service.SwapService)
		assert.True(t, ok)
	})
}
