package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EdgeFinder/internal/domain/models"
)

func TestDefaultWeightTableContents(t *testing.T) {
	table := NewDefaultWeightTable()

	want := map[models.Timeframe]models.WeightTriple{
		models.TFM1:    {Macro: 0.10, Options: 0.50, Geo: 0.40},
		models.TFM5:    {Macro: 0.15, Options: 0.50, Geo: 0.35},
		models.TFM15:   {Macro: 0.20, Options: 0.40, Geo: 0.40},
		models.TF1H:    {Macro: 0.30, Options: 0.35, Geo: 0.35},
		models.TF4H:    {Macro: 0.40, Options: 0.30, Geo: 0.30},
		models.TFDaily: {Macro: 0.60, Options: 0.20, Geo: 0.20},
	}
	for tf, w := range want {
		got, err := table.WeightsFor(tf)
		require.NoError(t, err, tf)
		assert.Equal(t, w, got, tf)
		assert.InDelta(t, 1.0, got.Total(), 1e-9, tf)
	}

	presets := table.Presets()
	require.Len(t, presets, 6)
	for i, tf := range models.Timeframes() {
		assert.Equal(t, tf, presets[i].Timeframe)
	}
}

func TestWeightsForUnknownTimeframe(t *testing.T) {
	table := NewDefaultWeightTable()
	for _, raw := range []string{"", "W1", "daily", "1h"} {
		_, err := table.WeightsFor(models.Timeframe(raw))
		assert.ErrorIs(t, err, models.ErrUnknownTimeframe, raw)
	}
}

func TestPresetsReturnsCopy(t *testing.T) {
	table := NewDefaultWeightTable()
	p := table.Presets()
	p[0].Weights.Macro = 99

	w, err := table.WeightsFor(models.TFM1)
	require.NoError(t, err)
	assert.Equal(t, 0.10, w.Macro)
}

func TestNewPresetWeightTableValidation(t *testing.T) {
	withChange := func(change func(p []models.TimeframeWeights) []models.TimeframeWeights) []models.TimeframeWeights {
		return change(DefaultPresets())
	}

	tests := []struct {
		name    string
		presets []models.TimeframeWeights
		total   float64
		wantErr string
	}{
		{"missing timeframe", withChange(func(p []models.TimeframeWeights) []models.TimeframeWeights { return p[1:] }), 1, "missing timeframe M1"},
		{"negative weight", withChange(func(p []models.TimeframeWeights) []models.TimeframeWeights {
			p[2].Weights.Geo = -0.1
			return p
		}), 0, "geo weight -0.1 is negative"},
		{"not finite", withChange(func(p []models.TimeframeWeights) []models.TimeframeWeights {
			p[3].Weights.Macro = math.Inf(1)
			return p
		}), 0, "macro weight is not finite"},
		{"unknown label", withChange(func(p []models.TimeframeWeights) []models.TimeframeWeights {
			return append(p, models.TimeframeWeights{Timeframe: "W1"})
		}), 0, "unknown timeframe"},
		{"duplicate", withChange(func(p []models.TimeframeWeights) []models.TimeframeWeights {
			return append(p, p[0])
		}), 0, "duplicate timeframe M1"},
		{"wrong total", DefaultPresets(), 2, "want 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPresetWeightTable(tt.presets, tt.total)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidWeightTable)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewPresetWeightTableAcceptsCustomTotal(t *testing.T) {
	presets := DefaultPresets()
	for i := range presets {
		presets[i].Weights = models.WeightTriple{Macro: 1, Options: 0.5, Geo: 0.5}
	}
	table, err := NewPresetWeightTable(presets, 2)
	require.NoError(t, err)

	w, err := table.WeightsFor(models.TF4H)
	require.NoError(t, err)
	assert.Equal(t, 2.0, w.Total())
}
