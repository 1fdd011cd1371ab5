package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/vbonduro/wardrobe/internal/config"
	"github.com/vbonduro/wardrobe/internal/db"
	"github.com/vbonduro/wardrobe/internal/logging"
	"github.com/vbonduro/wardrobe/internal/photostore/local"
	"github.com/vbonduro/wardrobe/internal/service"
	"github.com/vbonduro/wardrobe/internal/store"
	"github.com/vbonduro/wardrobe/internal/vision"
	claudevision "github.com/vbonduro/wardrobe/internal/vision/claude"
	ollamavision "github.com/vbonduro/wardrobe/internal/vision/ollama"
	"github.com/vbonduro/wardrobe/internal/watch"
	"github.com/vbonduro/wardrobe/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("wardrobe stopped", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := photoStg.Close(); err != nil {
			logger.Error("failed to close photo store", "error", err)
		}
	}()

	hub := watch.NewHub(logger)
	clothingStore := store.NewClothingStore(database, hub)
	tagStore := store.NewTagStore(database, hub)
	outfitStore := store.NewOutfitStore(database, hub)
	wearStore := store.NewWearStore(database, hub)

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.SuggestRatePerMinute)), cfg.SuggestRatePerMinute)
	clothingService := service.NewClothingService(clothingStore, tagStore, photoStg, newSuggester(cfg, logger), limiter, hub, logger)

	server := web.NewServer(web.Services{
		Clothes:  clothingService,
		Outfits:  service.NewOutfitService(outfitStore, wearStore, clothingStore, hub, time.Now, logger),
		Tags:     service.NewTagService(tagStore, hub, logger),
		Filters:  service.NewSavedFilterService(store.NewSavedFilterStore(database, hub), tagStore, clothingService, hub, logger),
		Insights: service.NewInsightsService(store.NewInsightsStore(database), hub, time.Now, service.InsightsOptions{
			RecentDays:     cfg.Insights.RecentDays,
			StaleDays:      cfg.Insights.StaleDays,
			TopOutfits:     cfg.Insights.TopOutfits,
			ClothesPerList: cfg.Insights.ClothesPerList,
		}),
	}, web.Options{CORSOrigins: cfg.CORSOrigins}, logger)

	return server.ListenAndServe(ctx, cfg.ListenAddr)
}

// newSuggester returns nil when suggestions are switched off; the interface
// must stay untyped nil for the service to notice.
func newSuggester(cfg *config.Config, logger *slog.Logger) vision.Suggester {
	switch cfg.VisionBackend {
	case "claude":
		logger.Info("using Claude vision backend", "model", cfg.ClaudeModel)
		return claudevision.NewClaudeSuggester(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.ClaudeBaseURL)
	case "ollama":
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaSuggester(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("photo suggestions disabled")
		return nil
	}
}
