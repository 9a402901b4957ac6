package service

import (
	"time"

	"EdgeFinder/internal/domain/models"
)

// Scorer turns one symbol's inputs into a rounded score and its label.
// Implementations must be pure: the same arguments always give the same result.
type Scorer interface {
	Score(symbol string, in models.SignalInputs, w models.WeightTriple, date time.Time) models.ScoreResult
}
