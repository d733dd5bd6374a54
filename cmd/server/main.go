package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/splitkaro/billscan/internal/config"
	"github.com/splitkaro/billscan/internal/database"
	"github.com/splitkaro/billscan/internal/extract"
	"github.com/splitkaro/billscan/internal/handlers"
	"github.com/splitkaro/billscan/internal/middleware"
	"github.com/splitkaro/billscan/internal/ocr"
	"github.com/splitkaro/billscan/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize storage for receipt images
	storage, err := services.NewStorageService(
		cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL,
	)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storage.EnsureBucket(context.Background()); err != nil {
		log.Printf("Warning: Failed to ensure bucket exists: %v", err)
	}

	// Build the OCR extraction pipeline
	vocab := extract.DefaultVocabulary()
	selector := ocr.NewSelector(
		ocr.NewBlockEngine(cfg.OCRLanguage),
		ocr.NewSparseEngine(cfg.OCRLanguage),
		vocab,
		cfg.OCRTimeout,
	)
	extractor := extract.NewExtractor(vocab)
	scanner := services.NewScannerService(selector, extractor)
	splitter := services.NewSplitterService()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Create handlers with dependencies
	h := handlers.New(db, cfg)
	receiptHandler := handlers.NewReceiptHandler(db, cfg, storage, scanner)
	splitHandler := handlers.NewSplitHandler(db, cfg, splitter)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", middleware.AuthRequired(cfg), h.GetCurrentUser)

	// Receipt routes (authenticated)
	receipts := api.Group("/receipts", middleware.AuthRequired(cfg))
	receipts.Post("/scan", receiptHandler.ScanReceipt)
	receipts.Get("/", receiptHandler.ListReceipts)
	receipts.Get("/:id", receiptHandler.GetReceipt)
	receipts.Get("/:id/image", receiptHandler.GetReceiptImage)
	receipts.Delete("/:id", receiptHandler.DeleteReceipt)
	receipts.Post("/:id/split", splitHandler.SplitReceipt)
	receipts.Get("/:id/splits", splitHandler.ListSplits)

	// Public share route (no auth required)
	api.Get("/share/:token", splitHandler.GetSharedSplit)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
