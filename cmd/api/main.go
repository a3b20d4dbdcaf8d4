package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/handlers"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	candidateRepo := repositories.NewCandidateRepository(db)
	roleRepo := repositories.NewJobRoleRepository(db)
	cvRepo := repositories.NewCvDocumentRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize vector store
	vectorStore, err := services.NewVectorStoreService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		geminiService,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := vectorStore.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize evaluator and orchestrator
	evaluator := services.NewEvaluatorService(geminiService, cfg.Interview.RetryMaxAttempts)
	interviewService := services.NewInterviewService(
		candidateRepo,
		roleRepo,
		cvRepo,
		interviewRepo,
		vectorStore,
		geminiService,
		evaluator,
		cfg.Interview.GenerateTimeout,
		cfg.Interview.RetryMaxAttempts,
	)
	log.Println("✅ Interview service initialized")

	// Initialize CV index worker
	indexWorker := services.NewIndexWorker(
		cvRepo,
		vectorStore,
		geminiService,
		cfg.Worker.Concurrency,
		cfg.Interview.GenerateTimeout,
		cfg.Interview.RetryMaxAttempts,
	)

	ctx := context.Background()
	indexWorker.Start(ctx)
	log.Println("✅ Index worker started successfully")

	// Initialize handlers
	userHandler := handlers.NewUserHandler(candidateRepo)
	roleHandler := handlers.NewRoleHandler(roleRepo)
	uploadHandler := handlers.NewUploadHandler(
		candidateRepo,
		cvRepo,
		storageService,
		pdfParser,
		indexWorker,
		cfg.Storage.MaxFileSize,
	)
	interviewHandler := handlers.NewInterviewHandler(interviewService)
	sessionHandler := handlers.NewSessionHandler(interviewRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Mock Interview API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/users/register", userHandler.HandleRegister)
	api.Get("/pipeline/job-roles", roleHandler.HandleListRoles)
	api.Post("/pipeline/upload-cv/:candidateId", uploadHandler.HandleUploadCv)
	api.Get("/pipeline/cv-history/:candidateId", uploadHandler.HandleCvHistory)
	api.Post("/interview/start", interviewHandler.HandleStart)
	api.Post("/interview/answer", interviewHandler.HandleAnswer)
	api.Get("/interview/sessions/:candidateId", sessionHandler.HandleSessionHistory)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Mock Interview API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/users/register",
				"GET /api/v1/pipeline/job-roles",
				"POST /api/v1/pipeline/upload-cv/:candidateId",
				"GET /api/v1/pipeline/cv-history/:candidateId",
				"POST /api/v1/interview/start",
				"POST /api/v1/interview/answer",
				"GET /api/v1/interview/sessions/:candidateId",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		indexWorker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
