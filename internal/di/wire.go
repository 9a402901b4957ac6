//go:build wireinject
// +build wireinject

package di

import (
	"EdgeFinder/pkg/config"
	"EdgeFinder/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
    wire.Build(
        // Infrastructure clients
        ProvideKafkaProducer,
        ProvideLogger,
        ProvideMetrics,
        ProvideCacheService,

		// Repositories
		ProvideWeightTable,
		ProvideAssetUniverse,
		ProvideEvaluationCache,

        // Use cases
        ProvideScorer,
        ProvideSentimentEvaluator,

		// Transport and housekeeping
		ProvideRateLimiter,
		ProvideSentimentHandler,
		ProvideScheduler,
		ProvideHTTPServer,

        // Application server
        ProvideApp,
    )
    return &server.App{}, nil
}
