package di

import (
	"context"
	"fmt"
	"io"

	"campusqa/application/ports"
	"campusqa/application/services"
	"campusqa/infrastructure/config"
	"campusqa/infrastructure/persistence"
	"campusqa/infrastructure/persistence/abstractions"
	"campusqa/infrastructure/persistence/blobstore"
	"campusqa/interfaces/http/rest"
	"campusqa/interfaces/http/rest/handlers"
	"campusqa/interfaces/http/rest/views"
	"campusqa/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MetricsNamespace prefixes every exported metric
const MetricsNamespace = "campusqa"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideMetrics creates the metrics collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(MetricsNamespace)
}

// ProvideBlobStore opens the configured storage backend.
// Remote backends are guarded by a circuit breaker; every backend is instrumented.
func ProvideBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) (abstractions.BlobStore, func(), error) {
	var store abstractions.BlobStore

	switch cfg.StorageBackend {
	case config.BackendMemory:
		store = blobstore.NewMemoryStore()
	case config.BackendFile:
		fileStore, err := blobstore.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		store = fileStore
	case config.BackendRedis:
		redisStore, err := blobstore.NewRedisStore(ctx, blobstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			Timeout:  cfg.RedisTimeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		store = redisStore
	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}
		dynamoStore, err := blobstore.NewDynamoDBStore(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger)
		if err != nil {
			return nil, nil, err
		}
		store = dynamoStore
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.IsRemoteStorage() && cfg.BreakerEnabled {
		breakerCfg := blobstore.DefaultBreakerConfig(cfg.StorageBackend)
		breakerCfg.Timeout = cfg.BreakerTimeout
		breakerCfg.FailureThreshold = cfg.BreakerFailureThreshold
		breakerCfg.MinRequests = cfg.BreakerMinRequests
		store = blobstore.NewBreakerStore(store, breakerCfg, logger)
	}
	store = blobstore.NewInstrumentedStore(store, cfg.StorageBackend, metrics)

	logger.Info("Storage backend ready",
		zap.String("backend", cfg.StorageBackend),
		zap.String("key", cfg.StateKey),
	)

	cleanup := func() {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close storage backend", zap.Error(err))
			}
		}
	}
	return store, cleanup, nil
}

// ProvideStateRepository creates the forum state repository
func ProvideStateRepository(store abstractions.BlobStore, cfg *config.Config, logger *zap.Logger) ports.StateRepository {
	return persistence.NewStateRepository(store, cfg.StateKey, logger)
}

// ProvideForumService loads the stored forum
func ProvideForumService(ctx context.Context, repo ports.StateRepository, logger *zap.Logger, metrics *observability.Collector) (*services.ForumService, error) {
	return services.NewForumService(ctx, repo, logger, services.WithObserver(metrics))
}

// ProvideRenderer creates the view renderer
func ProvideRenderer(cfg *config.Config) (*views.Renderer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return views.NewRenderer(loc, cfg.TimeLayout), nil
}

// ProvideForumHandler creates the forum HTTP handler
func ProvideForumHandler(service *services.ForumService, renderer *views.Renderer, logger *zap.Logger) *handlers.ForumHandler {
	return handlers.NewForumHandler(service, renderer, logger)
}

// ProvideReadinessCheck probes the storage backend with a read of the state key
func ProvideReadinessCheck(store abstractions.BlobStore, cfg *config.Config) rest.ReadinessCheck {
	return func(ctx context.Context) error {
		_, _, err := store.Get(ctx, cfg.StateKey)
		return err
	}
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	forum *handlers.ForumHandler,
	metrics *observability.Collector,
	readiness rest.ReadinessCheck,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(forum, metrics, readiness, rest.RouterOptions{
		EnableCORS:    cfg.EnableCORS,
		CORSOrigins:   cfg.CORSOrigins,
		EnableMetrics: cfg.EnableMetrics,
	}, logger)
}
