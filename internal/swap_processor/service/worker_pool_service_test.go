package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
)

// MockSwapService mocks the SwapService interface
type MockSwapService struct {
	mock.Mock
}

func (m *MockSwapService) ExecuteSwap(ctx context.Context, request *shared.SwapRequest) (*swap.Result, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*swap.Result), args.Error(1)
}

func poolRequest(correlationID string) *shared.SwapRequest {
	return &shared.SwapRequest{
		UserID:         uuid.New(),
		SourceCurrency: shared.CurrencyBTC,
		TargetCurrency: shared.CurrencyNGNZ,
		Amount:         decimal.RequireFromString("0.1"),
		AmountReceived: decimal.RequireFromString("9000000"),
		Flow:           shared.SwapFlowOfframp,
		Type:           shared.SwapTypeSell,
		CorrelationID:  correlationID,
	}
}

func TestWorkerPoolSwapService_ExecuteSwap(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name          string
		setupMocks    func(m *MockSwapService, request *shared.SwapRequest)
		expectedError error
	}{
		{
			name: "successful execution",
			setupMocks: func(m *MockSwapService, request *shared.SwapRequest) {
				m.On("ExecuteSwap", mock.Anything, request).Return(&swap.Result{
					Success:       true,
					Reference:     "SWAP_1_abc",
					CorrelationID: request.CorrelationID,
				}, nil).Once()
			},
		},
		{
			name: "execution error",
			setupMocks: func(m *MockSwapService, request *shared.SwapRequest) {
				m.On("ExecuteSwap", mock.Anything, request).Return(nil, errors.New("execution error")).Once()
			},
			expectedError: errors.New("execution error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBaseService := &MockSwapService{}
			request := poolRequest(uuid.NewString())

			workerPoolService, err := NewWorkerPoolSwapService(
				mockBaseService,
				WorkerPoolConfig{
					Size: 2,
				},
				logger,
			)
			assert.NoError(t, err)
			defer workerPoolService.Shutdown()

			tt.setupMocks(mockBaseService, request)

			result, err := workerPoolService.ExecuteSwap(context.Background(), request)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, result)
				assert.Equal(t, "SWAP_1_abc", result.Reference)
			}

			mockBaseService.AssertExpectations(t)
		})
	}
}

func TestWorkerPoolSwapService_Concurrency(t *testing.T) {
	mockBaseService := &MockSwapService{}
	logger := slog.Default()

	workerPoolService, err := NewWorkerPoolSwapService(
		mockBaseService,
		WorkerPoolConfig{
			Size: 3,
		},
		logger,
	)
	assert.NoError(t, err)
	defer workerPoolService.Shutdown()

	assert.Equal(t, 3, workerPoolService.Capacity())

	const numRequests = 10
	mockBaseService.On("ExecuteSwap", mock.Anything, mock.Anything).
		Return(&swap.Result{Success: true, Reference: "SWAP_1_abc"}, nil).
		Times(numRequests).
		Run(func(args mock.Arguments) {
			time.Sleep(10 * time.Millisecond) // Keep workers busy so the pool actually queues
		})

	var wg sync.WaitGroup
	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := workerPoolService.ExecuteSwap(context.Background(), poolRequest(uuid.NewString()))
			assert.NoError(t, err)
			assert.NotNil(t, result)
		}()
	}
	wg.Wait()

	mockBaseService.AssertExpectations(t)
}
