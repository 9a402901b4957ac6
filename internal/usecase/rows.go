package usecase

import (
	"fmt"
	"sort"
	"strings"

	"EdgeFinder/internal/domain/models"
)

const (
	SortBySymbol    = "symbol"
	SortByScore     = "score"
	SortBySentiment = "sentiment"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Caption describes the weights behind a table, percentages rounded to whole numbers.
func Caption(tf models.Timeframe, w models.WeightTriple) string {
	return fmt.Sprintf("Bias calculated using weights for %s: Macro %.0f%%, Options %.0f%%, Geopolitics %.0f%%",
		tf, w.Macro*100, w.Options*100, w.Geo*100)
}

// SortRows returns a sorted copy of rows. Ties keep their incoming order and an
// unknown column leaves the order untouched.
func SortRows(rows []models.ScoreRow, by, order string) []models.ScoreRow {
	out := make([]models.ScoreRow, len(rows))
	copy(out, rows)

	var less func(a, b models.ScoreRow) bool
	switch by {
	case SortBySymbol:
		less = func(a, b models.ScoreRow) bool { return strings.Compare(a.Symbol, b.Symbol) < 0 }
	case SortByScore:
		less = func(a, b models.ScoreRow) bool { return a.Score < b.Score }
	case SortBySentiment:
		less = func(a, b models.ScoreRow) bool { return a.Sentiment.Rank() < b.Sentiment.Rank() }
	default:
		return out
	}

	desc := order == OrderDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
