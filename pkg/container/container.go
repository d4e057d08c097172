package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"payflow-backend/internal/config"
	"payflow-backend/internal/domains/payment/gateway"
	stripegw "payflow-backend/internal/domains/payment/gateway/stripe"
	"payflow-backend/internal/domains/payment/handler"
	"payflow-backend/internal/domains/payment/repository"
	"payflow-backend/internal/domains/payment/service"
	"payflow-backend/internal/infrastructure/database"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Both binaries build one and
// pull what they need: the API server takes the handler, the worker binary
// takes the repositories, provider, and pipeline.
type Container struct {
	// Infrastructure. Singleton for the process lifetime.
	Config *config.Config
	DB     *database.PostgresDB

	// Repositories. Stateless over the shared pool.
	PaymentRepo  repository.PaymentRepository
	EventLogRepo repository.EventLogRepository
	AuditRepo    repository.AuditRepository
	JobRepo      repository.JobRepository

	// Provider integration.
	Provider gateway.PaymentProvider
	Verifier gateway.WebhookVerifier

	// Services.
	PipelineService service.PipelineService
	WebhookService  service.WebhookService

	// Handlers.
	WebhookHandler *handler.WebhookHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the graph in dependency order: config, then
// database, then repositories, services, and handlers. A failure at any
// step aborts startup.
func NewContainer() (*Container, error) {
	log.Println("[CONTAINER] Initializing...")

	c := &Container{}

	// Config depends on nothing; load it first. Missing required settings
	// (database URL, Stripe credentials) are fatal here, not at first use.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("[CONTAINER] Config loaded (environment: %s)", cfg.App.Environment)

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("[CONTAINER] Database connected")

	c.initRepositories()
	c.initGateway()
	c.initServices()
	c.initHandlers()

	log.Println("[CONTAINER] Initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.PaymentRepo = repository.NewPaymentRepository(pool)
	c.EventLogRepo = repository.NewEventLogRepository()
	c.AuditRepo = repository.NewAuditRepository()
	c.JobRepo = repository.NewJobRepository(pool)
}

func (c *Container) initGateway() {
	c.Provider = stripegw.NewClient(c.Config.Stripe.APIKey)
	c.Verifier = stripegw.NewVerifier(c.Config.Stripe.WebhookSecret)
}

func (c *Container) initServices() {
	c.PipelineService = service.NewPipelineService(
		c.DB.Pool,
		c.PaymentRepo,
		c.EventLogRepo,
		c.AuditRepo,
	)

	c.WebhookService = service.NewWebhookService(
		c.Verifier,
		c.Provider,
		c.PipelineService,
		c.JobRepo,
		c.Config.Webhook.Mode == config.WebhookModeInline,
		c.Config.Worker.JobMaxAttempts,
	)
}

func (c *Container) initHandlers() {
	c.WebhookHandler = handler.NewWebhookHandler(c.WebhookService)
}

// ========================================
// HELPER METHODS
// ========================================

// Cleanup releases shared resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("[CONTAINER] Cleaning up...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("[CONTAINER] Failed to close database: %v", err)
		} else {
			log.Println("[CONTAINER] Database connections closed")
		}
	}

	log.Println("[CONTAINER] Cleanup completed")
}
