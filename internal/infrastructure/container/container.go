// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aiapp "github.com/recipebox/recipebox/internal/application/ai"
	recipeapp "github.com/recipebox/recipebox/internal/application/recipe"
	aiinfra "github.com/recipebox/recipebox/internal/infrastructure/ai"
	"github.com/recipebox/recipebox/internal/infrastructure/config"
	"github.com/recipebox/recipebox/internal/infrastructure/extraction"
	"github.com/recipebox/recipebox/internal/infrastructure/extraction/video"
	"github.com/recipebox/recipebox/internal/infrastructure/extraction/web"
	"github.com/recipebox/recipebox/internal/infrastructure/http/handlers"
	"github.com/recipebox/recipebox/internal/infrastructure/http/middleware"
	"github.com/recipebox/recipebox/internal/infrastructure/http/server"
	"github.com/recipebox/recipebox/internal/infrastructure/monitoring"
	persistence "github.com/recipebox/recipebox/internal/infrastructure/persistence/gorm"
	"github.com/recipebox/recipebox/internal/infrastructure/security"
	"github.com/recipebox/recipebox/internal/infrastructure/telemetry"
	"github.com/recipebox/recipebox/internal/ports/inbound"
	"github.com/recipebox/recipebox/internal/ports/outbound"
	"github.com/recipebox/recipebox/pkg/healthcheck"
	"github.com/recipebox/recipebox/pkg/logger"
)

// ConfigPath is the config file to load; empty searches the default locations
type ConfigPath string

// CoreModule is everything the parse pipeline and the recipe store need.
// The CLI runs on this alone.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	MonitoringModule,
	TelemetryModule,
	AIModule,
	ExtractionModule,
	ServiceModule,
)

// Module provides the full API server
var Module = fx.Options(
	CoreModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) *config.Loader {
		return config.NewLoader(string(path))
	},
	func(loader *config.Loader) (*config.Config, error) {
		return loader.Load()
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the gorm connection
var DatabaseModule = fx.Provide(
	NewDatabase,
	fx.Annotate(
		persistence.NewRecipeRepository,
		fx.As(new(outbound.RecipeRepository)),
	),
	persistence.NewAttemptRepository,
)

// MonitoringModule provides metrics, tracing and the health registry.
// Tracing is invoked so the global provider is installed before any span.
var MonitoringModule = fx.Options(
	fx.Provide(
		monitoring.NewMetricsCollector,
		NewTracing,
		NewHealthCheck,
	),
	fx.Invoke(func(*monitoring.TracingProvider) {}),
)

// TelemetryModule provides the model attempt dispatcher
var TelemetryModule = fx.Provide(
	NewTelemetryStream,
	NewTelemetryDispatcher,
	func(d *telemetry.Dispatcher) outbound.AttemptRecorder { return d },
)

// AIModule provides the model backend and the normalization engine
var AIModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.TextGenerator, error) {
		return aiinfra.NewTextGenerator(cfg.AI, log)
	},
	func(cfg *config.Config, gen outbound.TextGenerator, log *zap.Logger) *aiinfra.HealthChecker {
		return aiinfra.NewHealthChecker(cfg.AI, gen, log)
	},
	func(cfg *config.Config, gen outbound.TextGenerator, recorder outbound.AttemptRecorder, log *zap.Logger) *aiapp.Normalizer {
		return aiapp.NewNormalizer(gen, recorder, cfg.AI.Models, log)
	},
)

// ExtractionModule provides the page fetcher and both extractors
var ExtractionModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.PageFetcher {
		return extraction.NewFetcher(extraction.FetcherConfig{
			Timeout:      cfg.Extraction.FetchTimeout,
			MaxBodyBytes: cfg.Extraction.MaxBodyBytes,
		}, log)
	},
	func(cfg *config.Config, fetcher outbound.PageFetcher, log *zap.Logger) outbound.WebExtractor {
		return web.NewExtractor(fetcher, web.Config{
			MaxContent: cfg.Extraction.MaxWebContent,
			MinContent: cfg.Extraction.MinContent,
			UserAgent:  cfg.Extraction.UserAgent,
		}, log)
	},
	func(cfg *config.Config, fetcher outbound.PageFetcher, log *zap.Logger) outbound.TranscriptService {
		return video.NewTranscriptClient(fetcher, cfg.Extraction.VideoBaseURL, cfg.Extraction.UserAgent, "en", log)
	},
	func(cfg *config.Config, fetcher outbound.PageFetcher, transcripts outbound.TranscriptService, log *zap.Logger) outbound.VideoExtractor {
		return video.NewExtractor(fetcher, transcripts, video.Config{
			BaseURL:   cfg.Extraction.VideoBaseURL,
			UserAgent: cfg.Extraction.UserAgent,
		}, log)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	recipeapp.NewRecipeService,
	func(
		videoExtractor outbound.VideoExtractor,
		webExtractor outbound.WebExtractor,
		normalizer *aiapp.Normalizer,
		aiHealth *aiinfra.HealthChecker,
		log *zap.Logger,
	) *recipeapp.ParseService {
		return recipeapp.NewParseService(videoExtractor, webExtractor, normalizer, aiHealth.Ready, log)
	},
	func(s *recipeapp.ParseService) inbound.RecipeParser { return s },
	func(s *recipeapp.ParseService) inbound.ContentExtractor { return s },
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *security.AuthService {
		return security.NewAuthService(cfg.Auth, log)
	},
	func(auth *security.AuthService) middleware.TokenValidator { return auth },
	func(parser inbound.RecipeParser, metrics *monitoring.MetricsCollector, log *zap.Logger) *handlers.ParseAPIHandlers {
		return handlers.NewParseAPIHandlers(parser, metrics, log)
	},
	func(service inbound.RecipeService, metrics *monitoring.MetricsCollector, log *zap.Logger) *handlers.RecipeAPIHandlers {
		return handlers.NewRecipeAPIHandlers(service, metrics, log)
	},
	server.NewServer,
)

// LifecycleModule starts the server and the config watcher
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
	WatchConfig,
)

// NewDatabase opens the configured database and closes it on stop
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := persistence.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

// NewTracing installs the tracer provider and flushes it on stop
func NewTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tracing, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{OnStop: tracing.Shutdown})
	return tracing, nil
}

// telemetryBacklogLimit is the number of in-flight sink writes above which
// the telemetry check reports degraded
const telemetryBacklogLimit = 500

// NewHealthCheck registers the database, model backend and telemetry checks.
// stream is nil unless the redis sink is configured.
func NewHealthCheck(
	cfg *config.Config,
	db *gorm.DB,
	aiHealth *aiinfra.HealthChecker,
	dispatcher *telemetry.Dispatcher,
	stream redis.UniversalClient,
	log *zap.Logger,
) (*healthcheck.HealthCheck, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	health := healthcheck.New(cfg.App.Version, log)
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))
	health.Register("ai", aiHealth)
	health.Register("telemetry", healthcheck.NewCustomChecker("telemetry", func(context.Context) (healthcheck.Status, string, interface{}) {
		pending := dispatcher.Pending()
		metadata := map[string]int64{"pending_writes": pending}
		if pending >= telemetryBacklogLimit {
			return healthcheck.StatusDegraded, "Telemetry writes are backing up", metadata
		}
		return healthcheck.StatusHealthy, "Telemetry dispatcher is keeping up", metadata
	}))
	if stream != nil {
		health.Register("redis", healthcheck.NewRedisChecker(stream))
	}
	return health, nil
}

// NewTelemetryStream connects to Redis when the redis sink is configured and
// returns nil otherwise
func NewTelemetryStream(lc fx.Lifecycle, cfg *config.Config) redis.UniversalClient {
	for _, name := range cfg.Telemetry.Sinks {
		if name != "redis" {
			continue
		}
		client := telemetry.NewRedisClient(cfg.Redis)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		return client
	}
	return nil
}

// NewTelemetryDispatcher builds the configured sinks. The metrics sink is
// always present; "none" or an empty list disables the others.
func NewTelemetryDispatcher(
	lc fx.Lifecycle,
	cfg *config.Config,
	attempts *persistence.AttemptRepository,
	stream redis.UniversalClient,
	metrics *monitoring.MetricsCollector,
	log *zap.Logger,
) (*telemetry.Dispatcher, error) {
	sinks := []outbound.AttemptSink{telemetry.NewMetricsSink(metrics)}

	for _, name := range cfg.Telemetry.Sinks {
		switch name {
		case "database":
			sinks = append(sinks, attempts)
		case "log":
			sinks = append(sinks, telemetry.NewLogSink(log))
		case "redis":
			sinks = append(sinks, telemetry.NewRedisSink(stream, cfg.Telemetry.Stream, cfg.Telemetry.StreamMaxLen))
		case "none", "metrics":
		default:
			return nil, fmt.Errorf("unknown telemetry sink %q", name)
		}
	}

	dispatcher := telemetry.NewDispatcher(sinks, cfg.Telemetry.WriteTimeout, metrics.TelemetryWriteFailed, log)
	lc.Append(fx.Hook{OnStop: dispatcher.Close})
	return dispatcher, nil
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting recipebox",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("ai_provider", cfg.AI.Provider),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down recipebox")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}

// WatchConfig hot-swaps the candidate model list when the config file changes
func WatchConfig(loader *config.Loader, normalizer *aiapp.Normalizer, log *zap.Logger) {
	watching := loader.Watch(
		func(cfg *config.Config, event fsnotify.Event) {
			log.Info("Configuration changed", zap.String("file", event.Name))
			normalizer.SetModels(cfg.AI.Models)
		},
		func(err error) {
			log.Warn("Ignoring invalid configuration change", zap.Error(err))
		},
	)
	if !watching {
		log.Debug("No config file in use; model list is fixed")
	}
}
