package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"EdgeFinder/internal/domain/models"
	"EdgeFinder/internal/repository"
)

func TestCaptionForEveryPreset(t *testing.T) {
	want := map[models.Timeframe]string{
		models.TFM1:    "Bias calculated using weights for M1: Macro 10%, Options 50%, Geopolitics 40%",
		models.TFM5:    "Bias calculated using weights for M5: Macro 15%, Options 50%, Geopolitics 35%",
		models.TFM15:   "Bias calculated using weights for M15: Macro 20%, Options 40%, Geopolitics 40%",
		models.TF1H:    "Bias calculated using weights for 1H: Macro 30%, Options 35%, Geopolitics 35%",
		models.TF4H:    "Bias calculated using weights for 4H: Macro 40%, Options 30%, Geopolitics 30%",
		models.TFDaily: "Bias calculated using weights for Daily: Macro 60%, Options 20%, Geopolitics 20%",
	}
	for _, p := range repository.DefaultPresets() {
		assert.Equal(t, want[p.Timeframe], Caption(p.Timeframe, p.Weights))
	}
}

func TestSortRows(t *testing.T) {
	rows := []models.ScoreRow{
		{Symbol: "NVDA", Score: 1.2, Sentiment: models.Bullish},
		{Symbol: "AAPL", Score: -1.8, Sentiment: models.Bearish},
		{Symbol: "MSFT", Score: 0.6, Sentiment: models.Neutral},
		{Symbol: "GOLD", Score: 1.2, Sentiment: models.Bullish},
	}
	symbols := func(rs []models.ScoreRow) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.Symbol
		}
		return out
	}

	assert.Equal(t, []string{"AAPL", "GOLD", "MSFT", "NVDA"}, symbols(SortRows(rows, SortBySymbol, OrderAsc)))
	assert.Equal(t, []string{"NVDA", "MSFT", "GOLD", "AAPL"}, symbols(SortRows(rows, SortBySymbol, OrderDesc)))
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA", "GOLD"}, symbols(SortRows(rows, SortByScore, OrderAsc)))
	assert.Equal(t, []string{"NVDA", "GOLD", "MSFT", "AAPL"}, symbols(SortRows(rows, SortByScore, OrderDesc)))
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA", "GOLD"}, symbols(SortRows(rows, SortBySentiment, "")))
	assert.Equal(t, []string{"NVDA", "AAPL", "MSFT", "GOLD"}, symbols(SortRows(rows, "volume", OrderAsc)))

	// input untouched
	assert.Equal(t, "NVDA", rows[0].Symbol)
}
