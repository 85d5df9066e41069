package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jurissearch-backend/config"
	"jurissearch-backend/handlers"
	"jurissearch-backend/llm"
	"jurissearch-backend/repository"
	"jurissearch-backend/service"
	"jurissearch-backend/storage"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	config.LogLoaded(logger, cfg)

	ctx := context.Background()

	// Initialize session store
	sessions, closeStore, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()
	logger.Info("Session store initialized", zap.String("driver", cfg.Store.Driver))

	// Initialize briefing storage
	briefingStorage, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	logger.Info("Storage initialized", zap.String("type", cfg.Storage.Type))

	// Initialize the model provider
	generator, err := llm.NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model provider", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	}
	defer func() {
		if err := llm.Close(generator); err != nil {
			logger.Warn("Failed to close model provider", zap.Error(err))
		}
	}()
	logger.Info("Model provider initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)

	// Initialize services
	reporter := service.NewLogFailureReporter(logger)
	researchService := service.NewResearchService(
		service.ResearchWithStore(sessions),
		service.ResearchWithGenerator(generator, service.ClientOptionsFromConfig(cfg, reporter)...),
		service.ResearchWithBriefings(service.NewBriefingArchive(briefingStorage)),
		service.ResearchWithLogger(logger),
	)

	// Initialize handlers
	researchHandler := handlers.NewResearchHandler(researchService, logger)

	gin.SetMode(cfg.Server.GinMode)
	r := handlers.SetupRouter(researchHandler, logger)

	logger.Info("Server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
