package models

import (
	"errors"
	"time"
)

// ErrUnknownSymbol is returned when a symbol is not part of the asset list.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Sentiment is the directional label attached to a score.
type Sentiment string

const (
	Bullish Sentiment = "Bullish"
	Bearish Sentiment = "Bearish"
	Neutral Sentiment = "Neutral"
)

// Badge returns the label decorated the way the dashboard shows it.
func (s Sentiment) Badge() string {
	switch s {
	case Bullish:
		return "🟢 Bullish"
	case Bearish:
		return "🔴 Bearish"
	default:
		return "🟡 Neutral"
	}
}

// Rank orders sentiments from most bearish to most bullish.
func (s Sentiment) Rank() int {
	switch s {
	case Bearish:
		return -1
	case Bullish:
		return 1
	default:
		return 0
	}
}

// WeightTriple holds the share of each signal family in the final score.
type WeightTriple struct {
	Macro   float64 `json:"macro"`
	Options float64 `json:"options"`
	Geo     float64 `json:"geo"`
}

// Total is the sum of the three components.
func (w WeightTriple) Total() float64 { return w.Macro + w.Options + w.Geo }

// TimeframeWeights pairs a timeframe with its preset.
type TimeframeWeights struct {
	Timeframe Timeframe    `json:"timeframe"`
	Weights   WeightTriple `json:"weights"`
}

// SignalInputs are the five user-adjustable values of one evaluation.
// Values outside the recommended ranges (0..100 macro, -3..3 others) are
// scored as given.
type SignalInputs struct {
	MacroUS     int `json:"macro_us"`
	MacroEU     int `json:"macro_eu"`
	MacroAsia   int `json:"macro_asia"`
	OptionsBias int `json:"options_bias"`
	GeoRisk     int `json:"geo_risk"`
}

// DefaultSignalInputs returns the slider positions of a fresh dashboard.
func DefaultSignalInputs() SignalInputs {
	return SignalInputs{MacroUS: 40, MacroEU: 30, MacroAsia: 30}
}

// ScoreResult is the outcome of scoring one symbol.
type ScoreResult struct {
	Score     float64
	Sentiment Sentiment
}

// ScoreRow is one line of the dashboard table.
type ScoreRow struct {
	Symbol    string    `json:"symbol"`
	Score     float64   `json:"score"`
	Sentiment Sentiment `json:"sentiment"`
}

// Evaluation is the result of one evaluation cycle over the whole asset list.
type Evaluation struct {
	Timeframe   Timeframe    `json:"timeframe"`
	Weights     WeightTriple `json:"weights"`
	Inputs      SignalInputs `json:"inputs"`
	Date        string       `json:"date"`
	Caption     string       `json:"caption"`
	Rows        []ScoreRow   `json:"rows"`
	EvaluatedAt time.Time    `json:"evaluated_at"`
}

// SymbolScore is the score of a single symbol with the context it was computed in.
type SymbolScore struct {
	Symbol    string       `json:"symbol"`
	Timeframe Timeframe    `json:"timeframe"`
	Weights   WeightTriple `json:"weights"`
	Inputs    SignalInputs `json:"inputs"`
	Date      string       `json:"date"`
	Score     float64      `json:"score"`
	Sentiment Sentiment    `json:"sentiment"`
}
