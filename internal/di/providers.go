package di

import (
    "fmt"
    "time"

    "EdgeFinder/internal/domain/models"
    "EdgeFinder/internal/domain/repository"
    domsvc "EdgeFinder/internal/domain/service"
    "EdgeFinder/internal/handler/api"
    "EdgeFinder/internal/infra"
    internalrepo "EdgeFinder/internal/repository"
    "EdgeFinder/internal/service/ratelimit"
    "EdgeFinder/internal/services/scoring"
    "EdgeFinder/internal/usecase"
    "EdgeFinder/pkg/cache"
    "EdgeFinder/pkg/config"
    xhttp "EdgeFinder/pkg/http"
    pkgkafka "EdgeFinder/pkg/kafka"
    applogger "EdgeFinder/pkg/logger"
    "EdgeFinder/pkg/metrics"
    "EdgeFinder/pkg/server"
)

// ProvideKafkaProducer creates the producer behind the log collector. It is nil
// when log shipping is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.LogCollector.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideLogger builds the application logger and attaches the Kafka log
// collector when a producer is available.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.LogCollector.Interval,
			CountThreshold: cfg.LogCollector.Threshold,
			Topic:          cfg.LogCollector.Topic,
			Publisher:      producer,
		})
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideWeightTable uses the configured presets when present, else the built-in table.
func ProvideWeightTable(cfg *config.Config) (repository.WeightTable, error) {
	if len(cfg.Weights.Presets) == 0 {
		return internalrepo.NewDefaultWeightTable(), nil
	}
	presets := make([]models.TimeframeWeights, 0, len(cfg.Weights.Presets))
	for _, p := range cfg.Weights.Presets {
		if p.Macro == nil || p.Options == nil || p.Geo == nil {
			return nil, fmt.Errorf("weights preset %s: macro, options and geo are required", p.Timeframe)
		}
		presets = append(presets, models.TimeframeWeights{
			Timeframe: models.Timeframe(p.Timeframe),
			Weights:   models.WeightTriple{Macro: *p.Macro, Options: *p.Options, Geo: *p.Geo},
		})
	}
	table, err := internalrepo.NewPresetWeightTable(presets, cfg.Weights.Total)
	if err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}
	return table, nil
}

func ProvideAssetUniverse() repository.AssetUniverse {
	return internalrepo.NewFixedUniverse()
}

func ProvideScorer() domsvc.Scorer {
	return scoring.NewDailyHashScorer()
}

// ProvideCacheService returns nil when caching is off. With Redis enabled the
// in-process cache sits in front of it; an unreachable Redis degrades to
// memory only.
func ProvideCacheService(cfg *config.Config, l *applogger.Logger) cache.Service {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err == nil {
			l.Info("evaluation cache: redis", applogger.String("addr", cfg.Cache.Redis.Addr))
			return cache.NewLayeredCache(rc,
				cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
				cache.WithLayeredMemoryTTL(time.Minute),
			)
		}
		l.Warn("redis unavailable, using memory cache", applogger.Error(err))
	}
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
}

func ProvideEvaluationCache(svc cache.Service) repository.EvaluationCache {
	if svc == nil {
		return nil
	}
	return internalrepo.NewCachedEvaluations(svc)
}

func ProvideSentimentEvaluator(
	cfg *config.Config,
	weights repository.WeightTable,
	assets repository.AssetUniverse,
	scorer domsvc.Scorer,
	evalCache repository.EvaluationCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SentimentEvaluator {
	opts := []usecase.EvaluatorOption{usecase.WithMetrics(m), usecase.WithLogger(l)}
	if evalCache != nil {
		opts = append(opts, usecase.WithEvaluationCache(evalCache, cfg.Cache.TTL))
	}
	return usecase.NewSentimentEvaluator(weights, assets, scorer, opts...)
}

func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

func ProvideSentimentHandler(
	cfg *config.Config,
	l *applogger.Logger,
	eval *usecase.SentimentEvaluator,
	weights repository.WeightTable,
	assets repository.AssetUniverse,
	limiter *ratelimit.Limiter,
) (*api.SentimentEchoHandler, error) {
	var opts []api.HandlerOption
	if cfg.RateLimit.Enabled {
		opts = append(opts, api.WithRateLimit(limiter, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec))
	}
	return api.NewSentimentEchoHandler(l, eval, weights, assets, opts...)
}

// ProvideScheduler is nil when housekeeping is disabled.
func ProvideScheduler(cfg *config.Config, eval *usecase.SentimentEvaluator, limiter *ratelimit.Limiter, l *applogger.Logger) *infra.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	return infra.NewScheduler(eval, limiter, cfg.Scheduler.RolloverCron, l)
}

func ProvideHTTPServer(cfg *config.Config, h *api.SentimentEchoHandler, l *applogger.Logger) (*xhttp.Server, error) {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	proxies, err := xhttp.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithTrustedProxies(proxies),
		xhttp.WithLogger(l),
	), nil
}

// ProvideApp creates the application server.
func ProvideApp(
    httpServer *xhttp.Server,
    scheduler *infra.Scheduler,
    producer *pkgkafka.Producer,
    cacheSvc cache.Service,
    l *applogger.Logger,
) *server.App {
    return server.New(httpServer, scheduler, producer, cacheSvc, l)
}
