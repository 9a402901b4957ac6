package scoring

import (
    "time"

    "github.com/cespare/xxhash/v2"
    "github.com/shopspring/decimal"

    domsvc "EdgeFinder/internal/domain/service"
    "EdgeFinder/internal/domain/models"
    "EdgeFinder/pkg/util"
)

const (
    // base is drawn from baseSpan consecutive integers centred on zero: [-4, 4].
    baseSpan   = 9
    baseOffset = 4

    scorePlaces = 2

    BullishThreshold = 1.0
    BearishThreshold = -1.0
)

// macroScale turns the summed regional macro inputs into points.
var macroScale = decimal.New(1, -2)

// DailyHashScorer derives a per-symbol, per-day base from a stable string hash
// and combines it with the user inputs. The base changes once a day and never
// within one.
type DailyHashScorer struct {
    hash func(string) uint64
}

func NewDailyHashScorer() *DailyHashScorer {
    return &DailyHashScorer{hash: xxhash.Sum64String}
}

// Base returns the synthetic daily bias of symbol on date, in [-4, 4].
func (s *DailyHashScorer) Base(symbol string, date time.Time) int {
    ord := uint64(util.DateOrdinal(date))
    return int((s.hash(symbol)+ord)%baseSpan) - baseOffset
}

func (s *DailyHashScorer) Score(symbol string, in models.SignalInputs, w models.WeightTriple, date time.Time) models.ScoreResult {
    return Combine(s.Base(symbol, date), in, w)
}

// Combine applies the weighted blend to an already drawn base. The result is
// rounded half away from zero to two places and classified after rounding, so
// a score shown as 1.00 is always Neutral.
func Combine(base int, in models.SignalInputs, w models.WeightTriple) models.ScoreResult {
    macroSum := decimal.NewFromInt(int64(in.MacroUS) + int64(in.MacroEU) + int64(in.MacroAsia))
    macro := decimal.NewFromInt(int64(base)).Mul(macroSum).Mul(macroScale)

    score := macro.Mul(decimal.NewFromFloat(w.Macro)).
        Add(decimal.NewFromInt(int64(in.OptionsBias)).Mul(decimal.NewFromFloat(w.Options))).
        Add(decimal.NewFromInt(int64(in.GeoRisk)).Mul(decimal.NewFromFloat(w.Geo))).
        Round(scorePlaces)

    v := score.InexactFloat64()
    return models.ScoreResult{Score: v, Sentiment: Classify(v)}
}

// Classify labels a rounded score. Both thresholds are exclusive.
func Classify(score float64) models.Sentiment {
    switch {
    case score > BullishThreshold:
        return models.Bullish
    case score < BearishThreshold:
        return models.Bearish
    default:
        return models.Neutral
    }
}

var _ domsvc.Scorer = (*DailyHashScorer)(nil)
