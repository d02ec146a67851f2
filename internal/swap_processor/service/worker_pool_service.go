package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
)

// WorkerPoolSwapService implements the SwapService interface on top of a
// bounded worker pool, capping how many swaps mutate balances concurrently.
type WorkerPoolSwapService struct {
	baseService SwapService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan swapOutcome
}

type swapOutcome struct {
	result *swap.Result
	err    error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolSwapService(
	baseService SwapService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSwapService, error) {
	// Create a new worker pool with the specified size
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSwapService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan swapOutcome),
	}, nil
}

// ExecuteSwap submits a swap to the worker pool and waits for its outcome.
func (s *WorkerPoolSwapService) ExecuteSwap(ctx context.Context, request *shared.SwapRequest) (*swap.Result, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Submitting swap to worker pool",
		"user_id", request.UserID.String(),
		"source", string(request.SourceCurrency),
		"target", string(request.TargetCurrency),
	)

	// Create a channel to receive the outcome of the swap execution
	resultChan := make(chan swapOutcome, 1)

	// Key the outcome channel by correlation ID; generated per request by the
	// handler, so collisions only happen if a caller reuses one deliberately.
	key := request.CorrelationID
	s.mu.Lock()
	s.results[key] = resultChan
	s.mu.Unlock()

	// Create a copy of the request to avoid data races
	requestCopy := *request

	// Submit the task to the worker pool
	err := s.pool.Submit(func() {
		// Execute the swap using the base service
		result, err := s.baseService.ExecuteSwap(ctx, &requestCopy)

		// Send the outcome to the channel
		resultChan <- swapOutcome{result: result, err: err}

		// Remove the outcome channel from the map
		s.mu.Lock()
		delete(s.results, key)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the channel
		s.mu.Lock()
		delete(s.results, key)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit swap to worker pool",
			"user_id", request.UserID.String(),
			"error", err,
		)
		return nil, err
	}

	// Wait for the outcome from the worker
	outcome := <-resultChan
	return outcome.result, outcome.err
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolSwapService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolSwapService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolSwapService) Capacity() int {
	return s.pool.Cap()
}
