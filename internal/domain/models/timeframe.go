package models

import (
	"errors"
	"fmt"
)

// Timeframe is the chart resolution a weight preset is tuned for.
type Timeframe string

const (
	TFM1    Timeframe = "M1"
	TFM5    Timeframe = "M5"
	TFM15   Timeframe = "M15"
	TF1H    Timeframe = "1H"
	TF4H    Timeframe = "4H"
	TFDaily Timeframe = "Daily"
)

// ErrUnknownTimeframe is returned for any label outside the supported set.
var ErrUnknownTimeframe = errors.New("unknown timeframe")

// Timeframes returns the supported timeframes in display order.
func Timeframes() []Timeframe {
	return []Timeframe{TFM1, TFM5, TFM15, TF1H, TF4H, TFDaily}
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TFM1, TFM5, TFM15, TF1H, TF4H, TFDaily:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the timeframe selected when the dashboard first loads.
func DefaultTimeframe() Timeframe { return TFDaily }

// ParseTimeframe converts a raw label. Unlike a lookup with fallback it never
// substitutes a default for an unknown label.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !IsValidTimeframe(tf) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
	}
	return tf, nil
}
