package repository

import (
	"errors"
	"fmt"
	"math"

	"EdgeFinder/internal/domain/models"
	"EdgeFinder/internal/domain/repository"
)

// totalTolerance absorbs float noise when a preset is checked against the configured total.
const totalTolerance = 1e-6

var ErrInvalidWeightTable = errors.New("invalid weight table")

// DefaultPresets is the built-in weight table. Short timeframes lean on
// options flow and headline risk, longer ones on macro.
func DefaultPresets() []models.TimeframeWeights {
	return []models.TimeframeWeights{
		{Timeframe: models.TFM1, Weights: models.WeightTriple{Macro: 0.10, Options: 0.50, Geo: 0.40}},
		{Timeframe: models.TFM5, Weights: models.WeightTriple{Macro: 0.15, Options: 0.50, Geo: 0.35}},
		{Timeframe: models.TFM15, Weights: models.WeightTriple{Macro: 0.20, Options: 0.40, Geo: 0.40}},
		{Timeframe: models.TF1H, Weights: models.WeightTriple{Macro: 0.30, Options: 0.35, Geo: 0.35}},
		{Timeframe: models.TF4H, Weights: models.WeightTriple{Macro: 0.40, Options: 0.30, Geo: 0.30}},
		{Timeframe: models.TFDaily, Weights: models.WeightTriple{Macro: 0.60, Options: 0.20, Geo: 0.20}},
	}
}

// PresetWeightTable is an immutable timeframe to weights lookup.
type PresetWeightTable struct {
	presets []models.TimeframeWeights
	byTF    map[models.Timeframe]models.WeightTriple
}

// NewDefaultWeightTable returns the built-in table.
func NewDefaultWeightTable() repository.WeightTable {
	t, err := NewPresetWeightTable(DefaultPresets(), 1.0)
	if err != nil {
		panic(err) // built-in table is static
	}
	return t
}

// NewPresetWeightTable validates presets and builds a table. Every supported
// timeframe must appear exactly once with finite, non-negative components.
// When total is positive each triple must also sum to it.
func NewPresetWeightTable(presets []models.TimeframeWeights, total float64) (repository.WeightTable, error) {
	byTF := make(map[models.Timeframe]models.WeightTriple, len(presets))
	for _, p := range presets {
		if !models.IsValidTimeframe(p.Timeframe) {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidWeightTable, models.ErrUnknownTimeframe, p.Timeframe)
		}
		if _, dup := byTF[p.Timeframe]; dup {
			return nil, fmt.Errorf("%w: duplicate timeframe %s", ErrInvalidWeightTable, p.Timeframe)
		}
		if err := validateTriple(p.Weights); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWeightTable, p.Timeframe, err)
		}
		if total > 0 && math.Abs(p.Weights.Total()-total) > totalTolerance {
			return nil, fmt.Errorf("%w: %s weights sum to %g, want %g", ErrInvalidWeightTable, p.Timeframe, p.Weights.Total(), total)
		}
		byTF[p.Timeframe] = p.Weights
	}

	ordered := make([]models.TimeframeWeights, 0, len(byTF))
	for _, tf := range models.Timeframes() {
		w, ok := byTF[tf]
		if !ok {
			return nil, fmt.Errorf("%w: missing timeframe %s", ErrInvalidWeightTable, tf)
		}
		ordered = append(ordered, models.TimeframeWeights{Timeframe: tf, Weights: w})
	}

	return &PresetWeightTable{presets: ordered, byTF: byTF}, nil
}

func validateTriple(w models.WeightTriple) error {
	for name, v := range map[string]float64{"macro": w.Macro, "options": w.Options, "geo": w.Geo} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s weight is not finite", name)
		}
		if v < 0 {
			return fmt.Errorf("%s weight %g is negative", name, v)
		}
	}
	return nil
}

func (t *PresetWeightTable) WeightsFor(tf models.Timeframe) (models.WeightTriple, error) {
	w, ok := t.byTF[tf]
	if !ok {
		return models.WeightTriple{}, fmt.Errorf("%w: %q", models.ErrUnknownTimeframe, tf)
	}
	return w, nil
}

// Presets returns a copy of the table in timeframe order.
func (t *PresetWeightTable) Presets() []models.TimeframeWeights {
	out := make([]models.TimeframeWeights, len(t.presets))
	copy(out, t.presets)
	return out
}
