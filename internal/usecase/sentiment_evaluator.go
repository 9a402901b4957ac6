package usecase

import (
	"context"
	"fmt"
	"time"

	"EdgeFinder/internal/domain/models"
	domrepo "EdgeFinder/internal/domain/repository"
	domsvc "EdgeFinder/internal/domain/service"
	"EdgeFinder/internal/repository"
	applogger "EdgeFinder/pkg/logger"
	"EdgeFinder/pkg/util"
)

// SentimentEvaluator runs evaluation cycles: one weight lookup, then every
// symbol of the asset list scored in order against a single reading of the clock.
type SentimentEvaluator struct {
	weights  domrepo.WeightTable
	assets   domrepo.AssetUniverse
	scorer   domsvc.Scorer
	metrics  domrepo.Metrics
	cache    domrepo.EvaluationCache
	cacheTTL time.Duration
	logger   *applogger.Logger
	now      func() time.Time
}

type EvaluatorOption func(*SentimentEvaluator)

// WithEvaluationCache enables caching of finished cycles for at most ttl.
func WithEvaluationCache(c domrepo.EvaluationCache, ttl time.Duration) EvaluatorOption {
	return func(e *SentimentEvaluator) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

func WithMetrics(m domrepo.Metrics) EvaluatorOption {
	return func(e *SentimentEvaluator) { e.metrics = m }
}

func WithLogger(l *applogger.Logger) EvaluatorOption {
	return func(e *SentimentEvaluator) { e.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EvaluatorOption {
	return func(e *SentimentEvaluator) { e.now = now }
}

func NewSentimentEvaluator(weights domrepo.WeightTable, assets domrepo.AssetUniverse, scorer domsvc.Scorer, opts ...EvaluatorOption) *SentimentEvaluator {
	e := &SentimentEvaluator{
		weights: weights,
		assets:  assets,
		scorer:  scorer,
		logger:  applogger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type EvaluateParams struct {
	Timeframe models.Timeframe
	Inputs    models.SignalInputs
	// Date pins the evaluation day. Zero means today.
	Date   time.Time
	SortBy string
	Order  string
}

// Evaluate runs one cycle. Rows come back in asset order unless SortBy is set.
func (uc *SentimentEvaluator) Evaluate(ctx context.Context, p EvaluateParams) (*models.Evaluation, error) {
	w, err := uc.weights.WeightsFor(p.Timeframe)
	if err != nil {
		uc.recordError("unknown_timeframe")
		return nil, err
	}

	now := uc.now()
	date := p.Date
	if date.IsZero() {
		date = now
	}
	key := repository.EvaluationKey(p.Timeframe, p.Inputs, util.DateOrdinal(date))

	ev, hit := uc.lookup(ctx, key)
	if hit {
		// rows are reused, the timestamp belongs to this request
		ev.EvaluatedAt = now.UTC()
	} else {
		ev = uc.compute(p.Timeframe, w, p.Inputs, date, now)
		uc.store(ctx, key, ev, uc.ttlFor(p.Date, date))
	}

	if uc.metrics != nil {
		for _, r := range ev.Rows {
			uc.metrics.RecordSentiment(string(p.Timeframe), string(r.Sentiment))
		}
	}

	if p.SortBy != "" {
		ev.Rows = SortRows(ev.Rows, p.SortBy, p.Order)
	}
	return ev, nil
}

// ScoreSymbol scores a single member of the asset list.
func (uc *SentimentEvaluator) ScoreSymbol(_ context.Context, symbol string, tf models.Timeframe, in models.SignalInputs, date time.Time) (*models.SymbolScore, error) {
	if !uc.assets.Contains(symbol) {
		uc.recordError("unknown_symbol")
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownSymbol, symbol)
	}
	w, err := uc.weights.WeightsFor(tf)
	if err != nil {
		uc.recordError("unknown_timeframe")
		return nil, err
	}
	if date.IsZero() {
		date = uc.now()
	}

	res := uc.scorer.Score(symbol, in, w, date)
	return &models.SymbolScore{
		Symbol:    symbol,
		Timeframe: tf,
		Weights:   w,
		Inputs:    in,
		Date:      date.Format(time.DateOnly),
		Score:     res.Score,
		Sentiment: res.Sentiment,
	}, nil
}

// Rollover forgets cached cycles so the next request picks up the new day's bases.
func (uc *SentimentEvaluator) Rollover(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	if err := uc.cache.Purge(ctx); err != nil {
		uc.recordError("cache_purge")
		return fmt.Errorf("purge evaluations: %w", err)
	}
	return nil
}

func (uc *SentimentEvaluator) compute(tf models.Timeframe, w models.WeightTriple, in models.SignalInputs, date, now time.Time) *models.Evaluation {
	start := time.Now()
	symbols := uc.assets.Symbols()
	rows := make([]models.ScoreRow, 0, len(symbols))
	for _, sym := range symbols {
		res := uc.scorer.Score(sym, in, w, date)
		rows = append(rows, models.ScoreRow{Symbol: sym, Score: res.Score, Sentiment: res.Sentiment})
	}

	if uc.metrics != nil {
		uc.metrics.RecordEvaluation(string(tf), time.Since(start).Seconds())
	}
	return &models.Evaluation{
		Timeframe:   tf,
		Weights:     w,
		Inputs:      in,
		Date:        date.Format(time.DateOnly),
		Caption:     Caption(tf, w),
		Rows:        rows,
		EvaluatedAt: now.UTC(),
	}
}

func (uc *SentimentEvaluator) lookup(ctx context.Context, key string) (*models.Evaluation, bool) {
	if uc.cache == nil {
		return nil, false
	}
	ev, ok, err := uc.cache.Get(ctx, key)
	switch {
	case err != nil:
		uc.recordCache("error")
		uc.logger.Warn("evaluation cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	case !ok:
		uc.recordCache("miss")
		return nil, false
	default:
		uc.recordCache("hit")
		return ev, true
	}
}

func (uc *SentimentEvaluator) store(ctx context.Context, key string, ev *models.Evaluation, ttl time.Duration) {
	if uc.cache == nil || ttl <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, key, ev, ttl); err != nil {
		uc.recordError("cache_set")
		uc.logger.Warn("evaluation cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// ttlFor keeps today's cycles from outliving the day they were computed for.
func (uc *SentimentEvaluator) ttlFor(pinned, date time.Time) time.Duration {
	ttl := uc.cacheTTL
	if pinned.IsZero() {
		if left := util.UntilMidnight(date); left < ttl {
			ttl = left
		}
	}
	return ttl
}

func (uc *SentimentEvaluator) recordCache(result string) {
	if uc.metrics != nil {
		uc.metrics.RecordCacheResult(result)
	}
}

func (uc *SentimentEvaluator) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}
