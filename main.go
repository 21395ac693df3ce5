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
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"movelaria/internal/handlers"
	"movelaria/internal/middleware"
	"movelaria/internal/models"
	"movelaria/internal/repositories"
	"movelaria/internal/services"
	"movelaria/pkg/clock"
	"movelaria/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("STORAGE_DRIVER", "memory") // memory | sqlite | postgres
	viper.SetDefault("DATABASE_DSN", "movelaria.db")
	viper.SetDefault("MAX_PRODUCTS", repositories.DefaultMaxProducts)
	viper.SetDefault("RABBITMQ_URL", "") // empty disables catalog events
	viper.SetDefault("CLIENT_KEY", "")   // empty leaves mutating routes open
	viper.SetDefault("SEED_DATA", false)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	storageDriver := viper.GetString("STORAGE_DRIVER")
	maxProducts := viper.GetInt("MAX_PRODUCTS")

	// --- Initialize Repository ---
	repo, err := newProductRepository(storageDriver, viper.GetString("DATABASE_DSN"), maxProducts)
	if err != nil {
		log.Fatalf("Failed to initialize %s product repository: %v", storageDriver, err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, catalog events disabled")
	}

	// --- Initialize Service and Handler ---
	catalogService := services.NewCatalogService(repo, mqClient, clock.New())
	productHandler := handlers.NewProductHandler(catalogService)

	if viper.GetBool("SEED_DATA") {
		seedProducts(catalogService)
	}

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New())
	app.Use(recover.New())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	guard := middleware.ClientKeyRequired(viper.GetString("CLIENT_KEY"))
	productHandler.RegisterRoutes(apiV1, guard)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		count, _ := repo.Count()
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"storage":  storageDriver,
			"products": count,
		})
	})

	// --- Start Catalog Event Consumer ---
	// None of the current consumers do more than log; downstream systems
	// (search indexing, cache invalidation) would hook in here.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for catalog events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received catalog event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeCatalogEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// newProductRepository builds the storage backend selected by the
// STORAGE_DRIVER setting. The in-memory store is the default; sqlite and
// postgres use GORM behind the same interface.
func newProductRepository(driver, dsn string, maxProducts int) (repositories.ProductRepository, error) {
	switch driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return nil, err
		}
		return repositories.NewGORMProductRepository(db, maxProducts), nil
	case "postgres":
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&models.Product{}); err != nil {
			return nil, err
		}
		return repositories.NewGORMProductRepository(db, maxProducts), nil
	default:
		return repositories.NewMemoryProductRepository(maxProducts), nil
	}
}

// seedProducts loads a few furniture items so a fresh instance has
// something to browse.
func seedProducts(service *services.CatalogService) {
	price := func(v float64) *float64 { return &v }
	text := func(v string) *string { return &v }
	flag := func(v bool) *bool { return &v }

	payloads := []models.ProductCreate{
		{
			Name:       "Sofá Retrátil 3 Lugares",
			MainImage:  "https://images.movelaria.dev/sofa-retratil.jpg",
			Price:      price(2499.90),
			Category:   models.CategoryLivingRoom,
			Dimensions: text("220x105x90 cm"),
			Featured:   flag(true),
		},
		{
			Name:             "Mesa de Jantar Rústica",
			MainImage:        "https://images.movelaria.dev/mesa-jantar.jpg",
			Price:            price(1899.00),
			Category:         models.CategoryKitchen,
			ShortDescription: text("Madeira de demolição, 6 lugares"),
		},
		{
			Name:      "Cama Queen Estofada",
			MainImage: "https://images.movelaria.dev/cama-queen.jpg",
			Price:     price(3199.50),
			Category:  models.CategoryBedroom,
			OnSale:    flag(true),
		},
		{
			Name:      "Escrivaninha Compacta",
			MainImage: "https://images.movelaria.dev/escrivaninha.jpg",
			Price:     price(749.90),
			Category:  models.CategoryOffice,
		},
		{
			Name:      "Conjunto de Área Externa Vime",
			MainImage: "https://images.movelaria.dev/conjunto-vime.jpg",
			Price:     nil, // price on request
			Category:  models.CategoryOutdoor,
			Featured:  flag(true),
		},
	}

	for _, payload := range payloads {
		product, err := service.CreateProduct(payload)
		if err != nil {
			log.Printf("Error seeding product %s: %v", payload.Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %d)", product.Name, product.ID)
		}
	}
}
