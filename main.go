package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/shopspring/decimal"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Storage ---
	productRepo, healthCheck, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize product store: %v", err)
	}

	// --- Catalog events ---
	var (
		publisher services.EventPublisher
		mqClient  *rabbitmq.Client
	)
	if cfg.RabbitMQEnabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		publisher = mqClient

		go func() {
			log.Printf("Starting RabbitMQ consumer on queue %s...", cfg.RabbitMQQueue)
			if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	}

	// --- HTTP ---
	productService := services.NewProductService(productRepo, publisher)
	app := handlers.NewApp(handlers.AppConfig{
		BearerToken: cfg.BearerToken,
		Service:     productService,
		HealthCheck: healthCheck,
	})

	go func() {
		log.Printf("Starting server on %s (driver: %s)", cfg.AppPort, cfg.DBDriver)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// The server drains before the broker and the store are released.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"catalog": func(ctx context.Context) error {
				log.Println("Shutting down server...")
				var errs []error
				if err := app.ShutdownWithContext(ctx); err != nil {
					errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
				}
				if mqClient != nil {
					if err := mqClient.Close(); err != nil {
						errs = append(errs, fmt.Errorf("rabbitmq close: %w", err))
					}
				}
				if err := closeStore(); err != nil {
					errs = append(errs, fmt.Errorf("product store close: %w", err))
				}
				return errors.Join(errs...)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Server stopped with code: %d", exitCode)
	os.Exit(exitCode)
}

// openStore builds the product repository selected by cfg.DBDriver along
// with its health check and release function.
func openStore(cfg *config.Config) (repositories.ProductRepository, func(context.Context) error, func() error, error) {
	if cfg.DBDriver == config.DriverMemory {
		repo := repositories.NewMemoryProductRepository()
		if cfg.SeedDemoData {
			seedProducts(repo)
		}
		return repo, nil, func() error { return nil }, nil
	}

	db, err := repositories.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := repositories.Migrate(db); err != nil {
			_ = repositories.Close(db)
			return nil, nil, nil, err
		}
	}

	healthCheck := func(ctx context.Context) error {
		return repositories.Ping(ctx, db)
	}
	return repositories.NewGORMProductRepository(db), healthCheck, func() error { return repositories.Close(db) }, nil
}

// seedProducts populates the product repository with some initial data.
func seedProducts(repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Laptop", Description: models.StringPtr("High performance laptop"), Brand: "Lenovo", Category: "Computers", Price: decimal.RequireFromString("1200.00")},
		{Name: "Keyboard", Description: models.StringPtr("Mechanical keyboard"), Brand: "Keychron", Category: "Accessories", Price: decimal.RequireFromString("75.00")},
		{Name: "Mouse", Brand: "Logitech", Category: "Accessories", Price: decimal.RequireFromString("25.00")},
	}

	for i := range products {
		id, err := repo.Create(context.Background(), &products[i])
		if err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %d)", products[i].Name, id)
	}
}
