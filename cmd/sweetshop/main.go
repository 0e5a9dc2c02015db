package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/ferrisbakery/sweetshop/internal/auth"
	"github.com/ferrisbakery/sweetshop/internal/config"
	"github.com/ferrisbakery/sweetshop/internal/db"
	"github.com/ferrisbakery/sweetshop/internal/imagestore/local"
	"github.com/ferrisbakery/sweetshop/internal/inventory"
	"github.com/ferrisbakery/sweetshop/internal/logging"
	"github.com/ferrisbakery/sweetshop/internal/service"
	"github.com/ferrisbakery/sweetshop/internal/store"
	"github.com/ferrisbakery/sweetshop/internal/vision"
	claudevision "github.com/ferrisbakery/sweetshop/internal/vision/claude"
	ollamavision "github.com/ferrisbakery/sweetshop/internal/vision/ollama"
	"github.com/ferrisbakery/sweetshop/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		return
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.Seed {
		if err := db.Seed(context.Background(), database, logger); err != nil {
			logger.Error("failed to seed database", "error", err)
			return
		}
	}

	images, err := local.NewLocalImageStore(cfg.ImagePath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	ledger := inventory.NewLedger(database, logger)

	accounts := service.NewAccountService(
		store.NewUserStore(database),
		store.NewOrderStore(database),
		tokens,
		logger,
	)
	shop := service.NewShopService(
		store.NewItemStore(database),
		ledger,
		store.NewSettingsStore(database),
		images,
		newVisionAnalyzer(cfg, logger),
		logger,
	)

	server := web.NewServer(accounts, shop, tokens, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newVisionAnalyzer picks the photo suggestion backend. A nil analyzer is
// valid; the suggest endpoint reports it as unavailable.
func newVisionAnalyzer(cfg *config.Config, logger *slog.Logger) vision.Analyzer {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
			return nil
		}
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaAnalyzer(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("photo suggestions disabled")
		return nil
	}
}
