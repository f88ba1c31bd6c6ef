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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/time/rate"

	"alfredoptarigan/talent-matcher/internal/config"
	"alfredoptarigan/talent-matcher/internal/handlers"
	"alfredoptarigan/talent-matcher/internal/matching"
	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
	"alfredoptarigan/talent-matcher/internal/services"
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
	ruleRepo := repositories.NewRuleSetRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	matchRepo := repositories.NewMatchRecordRepository(db)
	bulkRepo := repositories.NewBulkRunRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize the matching engine
	policy := matching.Policy{
		ConfidenceStep:        cfg.Matching.ConfidenceStep,
		MinFallbackConfidence: cfg.Matching.MinFallbackConfidence,
		PenaltyPerWeight:      cfg.Matching.PenaltyPerWeight,
		MaxPenalty:            cfg.Matching.MaxPenalty,
		FuzzyThreshold:        cfg.Matching.KeywordFuzzyThreshold,
	}
	scorer := matching.NewScorer(policy, similarityBackends(cfg))
	engine := matching.NewEngine(scorer, matching.NewKeywordMatcher(policy.FuzzyThreshold))
	bulkMatcher := matching.NewBulkMatcher(engine, cfg.Matching.BulkConcurrency, cfg.Matching.CandidateTimeout)
	log.Println("✅ Matching engine initialized")

	// Initialize services
	matchService := services.NewMatchService(
		ruleRepo,
		profileRepo,
		matchRepo,
		bulkRepo,
		engine,
		bulkMatcher,
	)
	exportService := services.NewExportService()
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	worker := services.NewWorker(
		bulkRepo,
		matchService,
		cfg.Worker.Concurrency,
		cfg.Worker.QueueSize,
		cfg.Worker.PollInterval,
	)

	ctx := context.Background()
	worker.Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Talent Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Organization-ID",
	}))

	// Routes
	handlers.Register(app.Group("/api/v1"), handlers.Handlers{
		Rules:    handlers.NewRuleHandler(ruleRepo),
		Profiles: handlers.NewProfileHandler(profileRepo),
		Matches:  handlers.NewMatchHandler(matchService, exportService, cfg.Matching.SearchLimit),
		Bulk:     handlers.NewBulkHandler(bulkRepo, ruleRepo, worker),
	})
	log.Println("✅ Handlers initialized")

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Talent Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"PUT /api/v1/jd/rule/:jobId",
				"GET /api/v1/jd/rule/:jobId",
				"POST /api/v1/profiles",
				"GET /api/v1/profiles/:id",
				"POST /api/v1/match",
				"POST /api/v1/match/keywords",
				"GET /api/v1/match/:id",
				"GET /api/v1/match/search",
				"GET /api/v1/match/search/export",
				"POST /api/v1/match/bulk",
				"GET /api/v1/match/bulk/:id",
				"POST /api/v1/match/bulk/:id/cancel",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
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

// similarityBackends registers the Gemini backed DESCRIPTIVE methods when an
// API key is configured. The Qdrant cache is optional.
func similarityBackends(cfg *config.Config) map[models.SimilarityMethod]matching.Similarity {
	if !cfg.Gemini.Enabled() {
		log.Println("⚠️  GEMINI_API_KEY not set, vector and llm similarity are disabled")
		return nil
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini, cfg.Worker.RetryInitialDelay)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}

	var cache services.EmbeddingCache
	if cfg.Qdrant.URL != "" {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant)
		if err == nil {
			err = qdrantService.InitCollection(context.Background())
		}
		if err != nil {
			log.Printf("⚠️  Qdrant unavailable, embeddings will not be cached: %v\n", err)
		} else {
			cache = qdrantService
			log.Println("✅ Qdrant embedding cache initialized")
		}
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Matching.SimilarityRPS), cfg.Matching.SimilarityBurst)

	return map[models.SimilarityMethod]matching.Similarity{
		models.MethodVector: services.NewEmbeddingSimilarity(
			geminiService,
			cache,
			services.NewTextChunker(),
			limiter,
			cfg.Matching.ChunkSize,
			cfg.Matching.ChunkOverlap,
		),
		models.MethodLLM: services.NewLLMSimilarity(geminiService, limiter, cfg.Worker.RetryMaxAttempts),
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
