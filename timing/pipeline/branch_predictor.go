package pipeline

import (
	"fmt"
	"strings"
)

// PredictMode is the fixed direction a static predictor assumes.
type PredictMode int

const (
	// PredictNotTaken assumes every branch falls through.
	PredictNotTaken PredictMode = iota
	// PredictTaken assumes every branch is taken.
	PredictTaken
)

// String returns the flag spelling of the mode.
func (m PredictMode) String() string {
	switch m {
	case PredictNotTaken:
		return "not-taken"
	case PredictTaken:
		return "taken"
	default:
		return fmt.Sprintf("PredictMode(%d)", int(m))
	}
}

// ParsePredictMode accepts "taken"/"1" and "not-taken"/"nottaken"/"0".
func ParsePredictMode(s string) (PredictMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "taken", "t":
		return PredictTaken, nil
	case "0", "not-taken", "nottaken", "not_taken", "nt":
		return PredictNotTaken, nil
	default:
		return PredictNotTaken, fmt.Errorf("unknown branch prediction mode %q", s)
	}
}

// BranchPredictorStats holds statistics for the branch predictor.
type BranchPredictorStats struct {
	// Predictions is the total number of branches resolved.
	Predictions uint64
	// Correct is the number of correct predictions.
	Correct uint64
	// Mispredictions is the number of incorrect predictions.
	Mispredictions uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// StaticPredictor predicts the same direction for every branch.
type StaticPredictor struct {
	mode  PredictMode
	stats BranchPredictorStats
}

// NewStaticPredictor creates a predictor with a fixed direction.
func NewStaticPredictor(mode PredictMode) *StaticPredictor {
	return &StaticPredictor{mode: mode}
}

// Mode returns the predicted direction.
func (bp *StaticPredictor) Mode() PredictMode {
	return bp.mode
}

// Predict returns whether branches are predicted taken.
func (bp *StaticPredictor) Predict() bool {
	return bp.mode == PredictTaken
}

// Resolve records the actual outcome of a branch and reports whether the
// prediction was correct.
func (bp *StaticPredictor) Resolve(taken bool) bool {
	bp.stats.Predictions++

	if bp.Predict() == taken {
		bp.stats.Correct++
		return true
	}

	bp.stats.Mispredictions++
	return false
}

// Stats returns the branch predictor statistics.
func (bp *StaticPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset clears the statistics. The mode is kept.
func (bp *StaticPredictor) Reset() {
	bp.stats = BranchPredictorStats{}
}
