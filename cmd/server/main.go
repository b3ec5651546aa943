package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skinlens/backend/config"
	httpDelivery "github.com/skinlens/backend/internal/delivery/http"
	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/infrastructure/cache"
	"github.com/skinlens/backend/internal/infrastructure/catalog"
	"github.com/skinlens/backend/internal/infrastructure/inventory"
	"github.com/skinlens/backend/internal/pkg/logger"
	"github.com/skinlens/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting SkinLens backend",
		"version", "1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache_type", cfg.Cache.Type,
		"sensitivity_policy", cfg.Safety.SensitivityPolicy,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	normalizer := usecase.NewTextNormalizer()
	parser := catalog.NewParser(catalog.ParserConfig{Normalize: normalizer.Normalize})

	var source domain.CatalogSource
	if cfg.Catalog.URL != "" {
		source = inventory.NewClient(inventory.Config{
			URL:             cfg.Catalog.URL,
			RequestsPerHour: cfg.RateLimit.Inventory,
			Timeout:         cfg.Catalog.FetchTimeout,
			BreakerFailures: cfg.Catalog.BreakerFailures,
			BreakerTimeout:  cfg.Catalog.BreakerTimeout,
		}, log)
	} else {
		source = catalog.NewFileSource(cfg.Catalog.Path)
	}

	store := catalog.NewStore(parser, source, log)
	report, err := store.Reload(ctx)
	if err != nil {
		log.Fatal("failed to load catalog", "source", source.Describe(), "error", err)
	}
	log.Info("catalog ready",
		"source", report.Source,
		"version", report.Version,
		"products", report.RowsLoaded,
		"skipped", report.RowsSkipped,
	)

	searchCache, err := cache.New(ctx, cfg.Cache.Type, cfg.Cache.RedisURL)
	if err != nil {
		log.Fatal("failed to initialize cache", "type", cfg.Cache.Type, "error", err)
	}
	defer searchCache.Close()

	// Initialize usecase layer
	builderConfig, err := routineBuilderConfig(cfg)
	if err != nil {
		log.Fatal("invalid matching configuration", "error", err)
	}

	recommendationService := usecase.NewRecommendationService(
		store,
		usecase.RecommendationServiceConfig{
			Builder:              builderConfig,
			Seed:                 cfg.Matching.Seed,
			MaxSensitiveConcerns: cfg.Matching.MaxSensitiveConcerns,
		},
		log,
	)
	catalogService := usecase.NewCatalogService(
		store,
		searchCache,
		usecase.CatalogServiceConfig{CacheTTL: cfg.Cache.TTL},
		log,
	)
	progressService := usecase.NewProgressService()

	log.Info("matching configured",
		"include_notes", cfg.Matching.IncludeNotes,
		"seeded", cfg.Matching.Seed != 0,
		"debug", cfg.Matching.EnableDebugLogging,
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		recommendationService,
		catalogService,
		progressService,
		httpDelivery.HandlerConfig{MaxUploadBytes: cfg.Server.MaxUploadBytes},
		log,
	)

	limiter := httpDelivery.NewIPRateLimiter(cfg.RateLimit.PerIP)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, limiter, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Catalog.Watch && cfg.Catalog.URL == "" {
		watcher := catalog.NewWatcher(cfg.Catalog.Path, func(ctx context.Context) error {
			_, err := store.Reload(ctx)
			return err
		}, 0, log)
		g.Go(func() error {
			// A broken watcher disables hot reload but keeps serving
			if err := watcher.Run(gctx); err != nil {
				log.Error("catalog watcher stopped", "error", err)
			}
			return nil
		})
	}

	if limiter != nil {
		g.Go(func() error {
			limiter.RunPruner(5*time.Minute, time.Hour, gctx.Done())
			return nil
		})
	}

	g.Go(func() error {
		log.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server stopped with error", "error", err)
	}
	log.Info("server stopped")
}

// routineBuilderConfig translates the matching and safety sections into
// builder configuration. Viper lowercases map keys, so step and concern
// names are matched case-insensitively.
func routineBuilderConfig(cfg *config.Config) (usecase.RoutineBuilderConfig, error) {
	policy, err := usecase.ParseSensitivityPolicy(cfg.Safety.SensitivityPolicy)
	if err != nil {
		return usecase.RoutineBuilderConfig{}, err
	}

	labels, err := stepTable(cfg.Matching.StepLabels)
	if err != nil {
		return usecase.RoutineBuilderConfig{}, err
	}
	keywords, err := stepTable(cfg.Matching.StepKeywords)
	if err != nil {
		return usecase.RoutineBuilderConfig{}, err
	}

	var concernKeywords map[domain.Concern][]string
	for name, words := range cfg.Matching.ConcernKeywords {
		concern, ok := domain.ParseConcern(name)
		if !ok {
			continue
		}
		if concernKeywords == nil {
			concernKeywords = make(map[domain.Concern][]string)
		}
		concernKeywords[concern] = words
	}

	return usecase.RoutineBuilderConfig{
		SensitivityPolicy: policy,
		Matcher: usecase.ConcernMatcherConfig{
			Keywords:     concernKeywords,
			IncludeNotes: cfg.Matching.IncludeNotes,
		},
		Steps: usecase.StepSelectorConfig{
			Labels:   labels,
			Keywords: keywords,
		},
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	}, nil
}

func stepTable(raw map[string][]string) (map[domain.Step][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[domain.Step][]string, len(raw))
	for name, words := range raw {
		step, ok := domain.ParseStep(name)
		if !ok {
			return nil, fmt.Errorf("unknown routine step: %s", name)
		}
		out[step] = words
	}
	return out, nil
}
