package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EdgeFinder/internal/domain/models"
	"EdgeFinder/internal/repository"
	"EdgeFinder/internal/services/scoring"
)

type countingScorer struct {
	inner *scoring.DailyHashScorer
	mu    sync.Mutex
	calls int
}

func (s *countingScorer) Score(symbol string, in models.SignalInputs, w models.WeightTriple, date time.Time) models.ScoreResult {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.Score(symbol, in, w, date)
}

type mapCache struct {
	entries map[string]models.Evaluation
	ttls    map[string]time.Duration
	getErr  error
	purged  int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]models.Evaluation{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(_ context.Context, key string) (*models.Evaluation, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	ev, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &ev, true, nil
}

func (c *mapCache) Set(_ context.Context, key string, ev *models.Evaluation, ttl time.Duration) error {
	c.entries[key] = *ev
	c.ttls[key] = ttl
	return nil
}

func (c *mapCache) Purge(context.Context) error {
	c.purged++
	c.entries = map[string]models.Evaluation{}
	return nil
}

type recordingMetrics struct {
	cache      map[string]int
	errors     map[string]int
	sentiments int
	evals      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{cache: map[string]int{}, errors: map[string]int{}}
}

func (m *recordingMetrics) RecordEvaluation(string, float64) { m.evals++ }
func (m *recordingMetrics) RecordSentiment(string, string) { m.sentiments++ }
func (m *recordingMetrics) RecordCacheResult(result string) { m.cache[result]++ }
func (m *recordingMetrics) RecordError(kind string) { m.errors[kind]++ }

var fixedNow = time.Date(2024, 10, 10, 22, 0, 0, 0, time.UTC)

func newEvaluator(opts ...EvaluatorOption) (*SentimentEvaluator, *countingScorer) {
	sc := &countingScorer{inner: scoring.NewDailyHashScorer()}
	opts = append([]EvaluatorOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewSentimentEvaluator(repository.NewDefaultWeightTable(), repository.NewFixedUniverse(), sc, opts...), sc
}

func TestEvaluateReturnsAllAssetsInOrder(t *testing.T) {
	uc, _ := newEvaluator()
	ev, err := uc.Evaluate(context.Background(), EvaluateParams{Timeframe: models.TFDaily, Inputs: models.DefaultSignalInputs()})
	require.NoError(t, err)

	symbols := repository.NewFixedUniverse().Symbols()
	require.Len(t, ev.Rows, 20)
	for i, r := range ev.Rows {
		assert.Equal(t, symbols[i], r.Symbol)
	}
	assert.Equal(t, models.TFDaily, ev.Timeframe)
	assert.Equal(t, "2024-10-10", ev.Date)
	assert.Equal(t, fixedNow, ev.EvaluatedAt)
	assert.Equal(t, "Bias calculated using weights for Daily: Macro 60%, Options 20%, Geopolitics 20%", ev.Caption)
}

func TestEvaluateDailyScenario(t *testing.T) {
	uc, _ := newEvaluator()
	ev, err := uc.Evaluate(context.Background(), EvaluateParams{Timeframe: models.TFDaily, Inputs: models.DefaultSignalInputs()})
	require.NoError(t, err)

	sc := scoring.NewDailyHashScorer()
	for _, r := range ev.Rows {
		base := sc.Base(r.Symbol, fixedNow)
		assert.InDelta(t, float64(base)*0.6, r.Score, 1e-9, r.Symbol)
		assert.Equal(t, scoring.Classify(r.Score), r.Sentiment, r.Symbol)
	}
}

func TestEvaluateUnknownTimeframe(t *testing.T) {
	m := newRecordingMetrics()
	uc, sc := newEvaluator(WithMetrics(m))

	_, err := uc.Evaluate(context.Background(), EvaluateParams{Timeframe: "W1"})
	assert.ErrorIs(t, err, models.ErrUnknownTimeframe)
	assert.Equal(t, 0, sc.calls)
	assert.Equal(t, 1, m.errors["unknown_timeframe"])
}

func TestEvaluateUsesCache(t *testing.T) {
	c := newMapCache()
	m := newRecordingMetrics()
	uc, sc := newEvaluator(WithEvaluationCache(c, 6*time.Hour), WithMetrics(m))
	p := EvaluateParams{Timeframe: models.TFM5, Inputs: models.DefaultSignalInputs()}

	first, err := uc.Evaluate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 20, sc.calls)

	second, err := uc.Evaluate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 20, sc.calls, "second cycle must be served from cache")
	assert.Equal(t, first.Rows, second.Rows)

	assert.Equal(t, 1, m.cache["miss"])
	assert.Equal(t, 1, m.cache["hit"])
	assert.Equal(t, 1, m.evals)
	assert.Equal(t, 40, m.sentiments)

	// 22:00 leaves two hours of the day, shorter than the configured ttl.
	for _, ttl := range c.ttls {
		assert.Equal(t, 2*time.Hour, ttl)
	}
}

func TestEvaluateCacheHitStampsRequestTime(t *testing.T) {
	c := newMapCache()
	now := fixedNow.Add(-time.Hour)
	uc, sc := newEvaluator(WithEvaluationCache(c, 6*time.Hour), WithClock(func() time.Time { return now }))
	p := EvaluateParams{Timeframe: models.TF4H, Inputs: models.DefaultSignalInputs()}

	first, err := uc.Evaluate(context.Background(), p)
	require.NoError(t, err)

	now = now.Add(90 * time.Second)
	second, err := uc.Evaluate(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 20, sc.calls)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, fixedNow.Add(-time.Hour), first.EvaluatedAt)
	assert.Equal(t, now, second.EvaluatedAt)
}

func TestEvaluatePinnedDateKeepsConfiguredTTL(t *testing.T) {
	c := newMapCache()
	uc, _ := newEvaluator(WithEvaluationCache(c, 6*time.Hour))

	_, err := uc.Evaluate(context.Background(), EvaluateParams{
		Timeframe: models.TF1H,
		Date:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	for _, ttl := range c.ttls {
		assert.Equal(t, 6*time.Hour, ttl)
	}
}

func TestEvaluateCacheErrorFallsBackToCompute(t *testing.T) {
	c := newMapCache()
	c.getErr = errors.New("redis down")
	m := newRecordingMetrics()
	uc, sc := newEvaluator(WithEvaluationCache(c, time.Hour), WithMetrics(m))

	ev, err := uc.Evaluate(context.Background(), EvaluateParams{Timeframe: models.TFM1})
	require.NoError(t, err)
	assert.Len(t, ev.Rows, 20)
	assert.Equal(t, 20, sc.calls)
	assert.Equal(t, 1, m.cache["error"])
}

func TestEvaluateDifferentDaysDiffer(t *testing.T) {
	uc, _ := newEvaluator()
	in := models.DefaultSignalInputs()

	today, err := uc.Evaluate(context.Background(), EvaluateParams{Timeframe: models.TFDaily, Inputs: in})
	require.NoError(t, err)
	tomorrow, err := uc.Evaluate(context.Background(), EvaluateParams{Timeframe: models.TFDaily, Inputs: in, Date: fixedNow.AddDate(0, 0, 1)})
	require.NoError(t, err)

	assert.NotEqual(t, today.Rows, tomorrow.Rows)
	assert.Equal(t, "2024-10-11", tomorrow.Date)
}

func TestEvaluateSortsWithoutTouchingCache(t *testing.T) {
	c := newMapCache()
	uc, _ := newEvaluator(WithEvaluationCache(c, time.Hour))
	p := EvaluateParams{Timeframe: models.TFDaily, Inputs: models.DefaultSignalInputs(), SortBy: SortByScore, Order: OrderDesc}

	ev, err := uc.Evaluate(context.Background(), p)
	require.NoError(t, err)
	for i := 1; i < len(ev.Rows); i++ {
		assert.GreaterOrEqual(t, ev.Rows[i-1].Score, ev.Rows[i].Score)
	}

	for _, cached := range c.entries {
		assert.Equal(t, "NVDA", cached.Rows[0].Symbol)
	}
}

func TestScoreSymbol(t *testing.T) {
	uc, _ := newEvaluator()

	got, err := uc.ScoreSymbol(context.Background(), "GOLD", models.TF4H, models.DefaultSignalInputs(), time.Time{})
	require.NoError(t, err)
	want := scoring.NewDailyHashScorer().Score("GOLD", models.DefaultSignalInputs(), models.WeightTriple{Macro: 0.4, Options: 0.3, Geo: 0.3}, fixedNow)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.Sentiment, got.Sentiment)
	assert.Equal(t, "2024-10-10", got.Date)

	_, err = uc.ScoreSymbol(context.Background(), "XAUUSD", models.TF4H, models.SignalInputs{}, time.Time{})
	assert.ErrorIs(t, err, models.ErrUnknownSymbol)

	_, err = uc.ScoreSymbol(context.Background(), "GOLD", "Weekly", models.SignalInputs{}, time.Time{})
	assert.ErrorIs(t, err, models.ErrUnknownTimeframe)
}

func TestRollover(t *testing.T) {
	c := newMapCache()
	uc, sc := newEvaluator(WithEvaluationCache(c, time.Hour))
	p := EvaluateParams{Timeframe: models.TFDaily}

	_, err := uc.Evaluate(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, uc.Rollover(context.Background()))
	assert.Equal(t, 1, c.purged)

	_, err = uc.Evaluate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 40, sc.calls)

	noCache, _ := newEvaluator()
	assert.NoError(t, noCache.Rollover(context.Background()))
}
