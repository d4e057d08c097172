package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"payflow-backend/internal/domains/payment/job"
	"payflow-backend/pkg/container"
	"payflow-backend/pkg/logger"
)

// Run builds the container and supervises the worker pool and the reaper
// until SIGINT/SIGTERM.
func Run() {
	// ========================================
	// 1. BUILD DI CONTAINER
	// ========================================
	appContainer, err := container.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Cleanup()

	cfg := appContainer.Config
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	// ========================================
	// 2. START WORKERS AND REAPER
	// ========================================
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	for i := 0; i < cfg.Worker.Concurrency; i++ {
		w := job.NewWorker(
			appContainer.JobRepo,
			appContainer.Provider,
			appContainer.PipelineService,
			cfg.Worker.PollInterval,
			cfg.Worker.BatchSize,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	reaper := job.NewReaper(appContainer.JobRepo, cfg.Worker.ReaperInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		reaper.Run(ctx)
	}()

	log.Printf("Worker pool started: %d workers, batch size %d", cfg.Worker.Concurrency, cfg.Worker.BatchSize)

	// ========================================
	// 3. WAIT FOR SHUTDOWN SIGNAL
	// ========================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down workers...")
	cancel()
	wg.Wait()
	log.Println("Workers exited gracefully")
}
