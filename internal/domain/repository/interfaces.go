package repository

import (
	"context"
	"time"

	"EdgeFinder/internal/domain/models"
)

// WeightTable maps each timeframe to its weight preset. Implementations are
// immutable after construction.
type WeightTable interface {
	WeightsFor(tf models.Timeframe) (models.WeightTriple, error)
	Presets() []models.TimeframeWeights
}

// AssetUniverse is the ordered list of symbols the dashboard scores.
type AssetUniverse interface {
	Symbols() []string
	Contains(symbol string) bool
}

// EvaluationCache stores finished evaluation cycles for the current day.
type EvaluationCache interface {
	Get(ctx context.Context, key string) (*models.Evaluation, bool, error)
	Set(ctx context.Context, key string, ev *models.Evaluation, ttl time.Duration) error
	Purge(ctx context.Context) error
}

type Metrics interface {
	RecordEvaluation(timeframe string, seconds float64)
	RecordSentiment(timeframe, sentiment string)
	RecordCacheResult(result string)
	RecordError(kind string)
}
