// Package evaluation resolves recommendations whose horizon has elapsed
// into outcomes and feeds them back into analyst track records.
package evaluation

import (
	"math"
	"sort"
	"time"

	"github.com/ternarybob/veritas/internal/eodhd"
	"github.com/ternarybob/veritas/internal/models"
)

// Default outcome thresholds (percent)
const (
	// DefaultNoiseThresholdPct is the band around zero inside which a price
	// move counts as noise: a HOLD is correct within it, BUY/SELL must
	// clear it.
	DefaultNoiseThresholdPct = 2.0

	// DefaultTargetTolerancePct is the band around a price target inside
	// which the target counts as hit.
	DefaultTargetTolerancePct = 10.0

	// DefaultEPSTolerancePct is the band around a predicted EPS inside
	// which the estimate counts as accurate.
	DefaultEPSTolerancePct = 10.0
)

// EvaluateRating resolves a directional BUY/HOLD/SELL call against the
// realized price move over the horizon.
//
// BUY is correct if the move exceeds +noiseThresholdPct, SELL if it exceeds
// -noiseThresholdPct downward, HOLD if the move stays inside the band.
// Unusable prices resolve NEUTRAL rather than penalizing the analyst.
func EvaluateRating(action models.Action, startPrice, endPrice, noiseThresholdPct float64) models.Outcome {
	if startPrice <= 0 || endPrice <= 0 {
		return models.OutcomeNeutral
	}

	changePct := (endPrice - startPrice) / startPrice * 100

	var correct bool
	switch action {
	case models.ActionBuy:
		correct = changePct > noiseThresholdPct
	case models.ActionSell:
		correct = changePct < -noiseThresholdPct
	case models.ActionHold:
		correct = math.Abs(changePct) <= noiseThresholdPct
	default:
		return models.OutcomeNeutral
	}

	if correct {
		return models.OutcomeCorrect
	}
	return models.OutcomeIncorrect
}

// EvaluatePriceTarget resolves a price-target call: correct when the actual
// price lands within tolerancePct of the predicted target.
func EvaluatePriceTarget(target, actual, tolerancePct float64) models.Outcome {
	if target <= 0 || actual <= 0 {
		return models.OutcomeNeutral
	}

	diffPct := math.Abs(actual-target) / target * 100
	if diffPct <= tolerancePct {
		return models.OutcomeCorrect
	}
	return models.OutcomeIncorrect
}

// EvaluateEPS resolves an EPS estimate: correct when the reported EPS lands
// within tolerancePct of the prediction. A zero prediction cannot anchor a
// relative band and resolves NEUTRAL.
func EvaluateEPS(predicted, actual, tolerancePct float64) models.Outcome {
	if predicted == 0 {
		return models.OutcomeNeutral
	}

	diffPct := math.Abs(actual-predicted) / math.Abs(predicted) * 100
	if diffPct <= tolerancePct {
		return models.OutcomeCorrect
	}
	return models.OutcomeIncorrect
}

// PriceAtDate finds the closing price at or nearest before a date.
// Returns 0 if no bar qualifies.
func PriceAtDate(bars []eodhd.EODBar, date time.Time) float64 {
	if len(bars) == 0 {
		return 0
	}

	sorted := make([]eodhd.EODBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := len(sorted) - 1; i >= 0; i-- {
		if !sorted[i].Date.After(date) {
			return sorted[i].Close
		}
	}
	return 0
}
