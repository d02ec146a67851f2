package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/currency-swap-engine/internal/cache"
	"github.com/currency-swap-engine/internal/config"
	datamongo "github.com/currency-swap-engine/internal/data/mongo"
	datapostgres "github.com/currency-swap-engine/internal/data/postgres"
	"github.com/currency-swap-engine/internal/logger"
	"github.com/currency-swap-engine/internal/platform/messaging/consumers"
	"github.com/currency-swap-engine/internal/platform/messaging/producers"
	"github.com/currency-swap-engine/internal/platform/persistence"
	"github.com/currency-swap-engine/internal/swap_processor/components"
	"github.com/currency-swap-engine/internal/swap_processor/consumer"
	"github.com/currency-swap-engine/internal/swap_processor/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("swap_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Swap Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := datamongo.NewUserRepository(log, mongoDB.Database())
	ledgerRepo := datamongo.NewLedgerRepository(log, mongoDB.Database())
	reconRepo := datapostgres.NewReconciliationRepository(log, postgresDB)

	// Balance views are cached per user and invalidated on every mutation
	balanceCache := cache.NewMemoryBalanceCache(cfg.Cache.TTL)

	// Initialize the swap service with its worker pool
	swapService := components.CreateSwapService(
		mongoDB,
		userRepo,
		ledgerRepo,
		reconRepo,
		balanceCache,
		log,
		cfg,
	)

	// Initialize Kafka producers
	resultProducer, err := producers.NewSwapResultProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize swap result producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka consumer and handler
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
	handler := consumer.NewSwapEventHandler(log, swapService, resultProducer, dlqProducer, &cfg.Swap)

	if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.SwapRequestTopic, cfg.Kafka.ConsumerGroup, handler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to swap request topic", "error", err)
		os.Exit(1)
	}

	log.Info("Swap Processor started",
		"topic", cfg.Kafka.SwapRequestTopic,
		"group", cfg.Kafka.ConsumerGroup,
		"worker_pool_size", cfg.WorkerPool.Size,
	)

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Received shutdown signal", "signal", sig.String())

	// Stop accepting new messages, then drain in-flight work
	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Failed to close Kafka consumer", "error", err)
	}
	if pool, ok := swapService.(*service.WorkerPoolSwapService); ok {
		pool.Shutdown()
	}
	if err := resultProducer.Close(); err != nil {
		log.Error("Failed to close swap result producer", "error", err)
	}
	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Failed to close DLQ producer", "error", err)
		}
	}
	postgresDB.Close()
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Failed to close MongoDB connection", "error", err)
	}

	log.Info("Swap Processor stopped")
}
