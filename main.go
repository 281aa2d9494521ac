package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/views"
	"catalog/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Initialize Repository ---
	productRepo, closeStore, err := newProductRepository(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize product store: %v", err)
	}
	defer closeStore()

	// --- Initialize RabbitMQ Client (optional) ---
	var publisher services.ProductEventPublisher
	if cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeProductEvents(rabbitmq.LogProductEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RabbitMQ is disabled. Product events will not be published.")
	}

	app := newApp(productRepo, publisher)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// newApp wires the product service and pages into a Fiber app.
func newApp(productRepo repositories.ProductRepository, publisher services.ProductEventPublisher) *fiber.App {
	productService := services.NewProductService(productRepo, publisher)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New(fiber.Config{
		Views: views.NewEngine(),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.MethodOverride())

	productHandler.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": publisher != nil,
		})
	})

	return app
}

// newProductRepository picks the product store for the configured driver.
// The returned func releases it.
func newProductRepository(cfg config.DatabaseConfig) (repositories.ProductRepository, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Println("Using in-memory product store; data is lost on restart.")
		return repositories.NewMemoryProductRepository(), func() {}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Connected to %s product store", cfg.Driver)

	return repositories.NewGORMProductRepository(db), func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}, nil
}
