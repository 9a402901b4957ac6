package repository

import (
	"context"
	"errors"
	"time"

	"EdgeFinder/internal/domain/models"
	"EdgeFinder/internal/domain/repository"
	"EdgeFinder/pkg/cache"
)

// EvaluationKeyPrefix namespaces cached evaluation cycles.
const EvaluationKeyPrefix = "eval"

// CachedEvaluations stores evaluation cycles in a cache.Service.
type CachedEvaluations struct {
	svc cache.Service
}

func NewCachedEvaluations(svc cache.Service) repository.EvaluationCache {
	return &CachedEvaluations{svc: svc}
}

// EvaluationKey identifies one cycle: the same timeframe, inputs and calendar
// day always produce the same rows.
func EvaluationKey(tf models.Timeframe, in models.SignalInputs, ordinal int) string {
	return cache.GenerateKeyWithParams(EvaluationKeyPrefix, tf,
		in.MacroUS, in.MacroEU, in.MacroAsia, in.OptionsBias, in.GeoRisk, ordinal)
}

func (c *CachedEvaluations) Get(ctx context.Context, key string) (*models.Evaluation, bool, error) {
	var ev models.Evaluation
	if err := c.svc.Get(ctx, key, &ev); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &ev, true, nil
}

func (c *CachedEvaluations) Set(ctx context.Context, key string, ev *models.Evaluation, ttl time.Duration) error {
	return c.svc.Set(ctx, key, ev, ttl)
}

// Purge drops every cached cycle, typically when the calendar day rolls over.
func (c *CachedEvaluations) Purge(ctx context.Context) error {
	return c.svc.DeleteByPattern(ctx, cache.BuildPattern(EvaluationKeyPrefix+":"))
}
