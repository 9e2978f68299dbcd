package main

import (
	"context"
	"log"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"compliance-coursegen/internal/adapter"
	"compliance-coursegen/internal/adapter/extractor"
	"compliance-coursegen/internal/adapter/generator"
	"compliance-coursegen/internal/cache"
	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"
	"compliance-coursegen/internal/handler"
	"compliance-coursegen/internal/logger"
	"compliance-coursegen/internal/middleware"
	"compliance-coursegen/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	textGenerator, closeGenerator, err := generator.New(ctx, cfg.LLM, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create text generator", zap.Error(err))
	}
	defer closeGenerator()
	appLogger.Info("Text generator initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)

	textExtractor, closeExtractor := buildExtractor(ctx, cfg, appLogger)
	defer closeExtractor()

	draftLock, closeDraftLock := buildDraftLock(ctx, cfg, appLogger)
	defer closeDraftLock()

	courseGenerator := service.NewCourseGenerator(textGenerator, textExtractor, cfg, appLogger)
	metadataAnalyzer := service.NewMetadataAnalyzer(textGenerator, textExtractor, cfg, appLogger)

	courseHandler := handler.NewCourseHandler(courseGenerator, metadataAnalyzer, draftLock, cfg.Generation.DraftLockTTL)
	healthHandler := handler.NewHealthHandler(cfg.LLM)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	serveCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Use(middleware.RequestLogger())
	app.Use(middleware.RequestContext(serveCtx, cfg.Server.WriteTimeout))
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	handler.RegisterRoutes(app, courseHandler, healthHandler)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-serveCtx.Done()
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

// buildExtractor always serves text/* uploads and adds Document AI when a processor is configured.
func buildExtractor(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (domain.TextExtractor, func() error) {
	var documents domain.TextExtractor
	closeFn := func() error { return nil }

	if cfg.Extraction.DocumentAIProcessorID != "" {
		docAI, err := extractor.NewDocumentAI(ctx, cfg.Extraction, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create Document AI extractor", zap.Error(err))
		}
		documents = docAI
		closeFn = docAI.Close
	} else {
		appLogger.Warn("Document AI processor is not configured; only plain text uploads can be extracted")
	}

	return extractor.NewRouter(extractor.NewPlainText(), documents, appLogger, routerOptions(cfg.Extraction)...), closeFn
}

func routerOptions(cfg config.ExtractionConfig) []extractor.RouterOption {
	if cfg.DocumentAILayoutParser {
		return []extractor.RouterOption{extractor.WithDOCX()}
	}
	return nil
}

// buildDraftLock uses Redis when an address is configured and falls back to a process-local lock.
func buildDraftLock(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (domain.DraftLock, func() error) {
	if cfg.Redis.Address == "" {
		appLogger.Warn("Redis is not configured; draft locks are local to this process")
		return adapter.NewMemoryDraftLock(), func() error { return nil }
	}
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	return adapter.NewRedisDraftLock(redisClient, appLogger), redisClient.Close
}
