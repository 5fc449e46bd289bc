package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/junedipasaribu/ecommerce-sub000/internal/address"
	"github.com/junedipasaribu/ecommerce-sub000/internal/cart"
	"github.com/junedipasaribu/ecommerce-sub000/internal/catalog"
	"github.com/junedipasaribu/ecommerce-sub000/internal/checkout"
	internalhttp "github.com/junedipasaribu/ecommerce-sub000/internal/http"
	"github.com/junedipasaribu/ecommerce-sub000/internal/order"
	"github.com/junedipasaribu/ecommerce-sub000/internal/payment"
	"github.com/junedipasaribu/ecommerce-sub000/internal/publisher"
	"github.com/junedipasaribu/ecommerce-sub000/internal/shipment"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDB         string
	RedisAddr       string
	KafkaBrokers    []string
	AdminToken      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DBCreds *order.Credentials
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "ecommerce"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		AdminToken:      getEnv("ADMIN_TOKEN", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DBCreds: &order.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "ecommerce"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("order engine starting...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := loadConfig()
	var wg sync.WaitGroup

	// Postgres: orders, payment attempts, shipments, outbox, addresses
	repo, err := order.NewRepository(cfg.DBCreds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.DBCreds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// MongoDB: carts
	mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer mongoCancel()
	mongoDB, err := cart.ConnectMongoDB(mongoCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}
	cartRepo := cart.NewMongoRepository(mongoDB)

	// Redis: cart cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	cartCache := cart.NewRedisCache(redisClient)

	// In-memory catalog, seeded for local development
	store := catalog.NewMemoryStore()
	seedCatalog(store)

	// Payment credentials, seeded for local development
	credentials := payment.NewMemoryCredentialStore()
	seedCredentials(credentials)

	// Services
	cartService := cart.NewCartService(cartRepo, cartCache, store)
	addressService := address.NewAddressService(address.NewPostgresRepository(repo.DB()))
	orderService := order.NewOrderService(repo, store)
	checkoutService := checkout.NewCheckoutService(cartService, addressService, store, repo)
	authorizer := payment.NewAuthorizer(repo, orderService, credentials)
	shipmentService := shipment.NewShipmentService(repo, orderService)

	// Background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())

	poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(workerCtx)
	}()

	sweeper := order.NewExpirySweeper(orderService)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(workerCtx)
	}()

	// HTTP server
	router := internalhttp.NewRouter(internalhttp.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		AdminToken:     cfg.AdminToken,
	}, internalhttp.Handlers{
		Cart:     internalhttp.NewCartHandler(cartService),
		Checkout: internalhttp.NewCheckoutHandler(checkoutService),
		Order:    internalhttp.NewOrderHandler(orderService, authorizer),
		Address:  internalhttp.NewAddressHandler(addressService),
		Shipment: internalhttp.NewShipmentHandler(shipmentService),
		Admin:    internalhttp.NewAdminHandler(orderService, shipmentService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	workerCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("Workers stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("Workers didn't stop in time")
	}

	log.Println("order engine stopped")
}

func seedCatalog(store *catalog.MemoryStore) {
	store.SetProduct(catalog.Product{ID: 1, Name: "Paracetamol 500mg", Price: 12000, Stock: 200})
	store.SetProduct(catalog.Product{ID: 2, Name: "Vitamin C 1000mg", Price: 35000, Stock: 150})
	store.SetProduct(catalog.Product{ID: 3, Name: "Amoxicillin 500mg", Price: 28000, Stock: 80})
	store.SetProduct(catalog.Product{ID: 4, Name: "OBH Combi 100ml", Price: 18500, Stock: 120})
}

func seedCredentials(credentials *payment.MemoryCredentialStore) {
	// Demo customer PIN; real deployments resolve hashes from the
	// account service.
	if err := credentials.SetPIN("cust-demo", "123456"); err != nil {
		log.Fatalf("Failed to seed payment credentials: %v", err)
	}
}
