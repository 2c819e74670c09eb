package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product_importer/internal/api"
	"product_importer/internal/assets"
	"product_importer/internal/config"
	"product_importer/internal/fetcher"
	"product_importer/internal/importer"
	"product_importer/internal/metrics"
	"product_importer/internal/repository"
	"product_importer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	logger.OpenLog()
	logger.Info("Starting product import server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	registry, err := config.LoadVendors(cfg.VendorConfigPath)
	if err != nil {
		log.Fatal("Failed to load vendor config: ", err)
	}

	var productStore repository.ProductStore
	var assetStore repository.AssetStore

	switch cfg.StoreType {
	case "mongo":
		db, err := config.InitMongo(cfg)
		if err != nil {
			log.Fatal("Failed to initialize MongoDB: ", err)
		}
		defer db.Close()
		store := repository.NewMongoStore(db)
		productStore, assetStore = store, store
		fmt.Println("✓ Connected to MongoDB")
	case "memory":
		store := repository.NewMemoryStore()
		productStore, assetStore = store, store
		fmt.Println("✓ Using in-memory store (dry-run mode)")
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled() {
		influx, err := config.InitInflux(cfg)
		if err != nil {
			log.Fatal("Failed to initialize InfluxDB: ", err)
		}
		defer influx.Close()
		recorder = metrics.NewRecorder(influx)
		fmt.Println("✓ Run metrics enabled (InfluxDB)")
	}

	svc := importer.NewService(
		registry,
		fetcher.New(time.Duration(cfg.HTTPTimeout)*time.Second),
		productStore,
		assets.NewResolver(assetStore),
		recorder,
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	api.SetupRoutes(r, svc, cfg.DataDir)

	printStartupInfo(cfg, registry.Keys())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited gracefully")
	fmt.Println("✓ Server exited gracefully")
}

func printStartupInfo(cfg *config.Config, vendors []string) {
	fmt.Println("\n📦 Universal Product Feed Importer")
	fmt.Println("===================================")
	fmt.Printf("Server: http://localhost:%d\n", cfg.ServerPort)
	fmt.Printf("Vendors: %v\n", vendors)
	fmt.Println("\n📊 APIs:")
	fmt.Println("   GET  /api/vendors       - Configured vendors")
	fmt.Println("   POST /api/import/run    - Run an import batch")
	fmt.Println("   POST /api/import/test   - Dry-run one product by identity")
	fmt.Println("   POST /api/csv/preview   - Preview an uploaded CSV")
	fmt.Println("   POST /api/csv/process   - Process one CSV batch (poll with offset)")
	fmt.Println("\n💡 Press Ctrl+C to shutdown gracefully")
}
