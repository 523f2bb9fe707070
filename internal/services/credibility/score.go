// Package credibility computes the normalized [0,1] credibility score and
// tier for an analyst from their track record. All functions are pure; the
// weight multiplier is applied at consensus-aggregation time, never here.
package credibility

import (
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/models"
)

// NeutralScore is the prior for an analyst with no resolved predictions.
const NeutralScore = 0.5

// Recency blend weights (lifetime / last 90 days / last 30 days)
const (
	DefaultLifetimeWeight = 0.5
	DefaultQuarterWeight  = 0.3
	DefaultMonthWeight    = 0.2
)

// Tier thresholds
const (
	DefaultTopTierThreshold  = 0.80
	DefaultRisingThreshold   = 0.65
	DefaultStandardThreshold = 0.50
)

// Weights holds the recency blend weights. They must sum to 1.0.
type Weights struct {
	Lifetime float64
	Quarter  float64
	Month    float64
}

// Thresholds holds the monotone tier cut points.
type Thresholds struct {
	TopTier  float64
	Rising   float64
	Standard float64
}

// DefaultWeights returns the standard recency blend.
func DefaultWeights() Weights {
	return Weights{
		Lifetime: DefaultLifetimeWeight,
		Quarter:  DefaultQuarterWeight,
		Month:    DefaultMonthWeight,
	}
}

// DefaultThresholds returns the standard tier cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TopTier:  DefaultTopTierThreshold,
		Rising:   DefaultRisingThreshold,
		Standard: DefaultStandardThreshold,
	}
}

// WeightsFromConfig builds Weights from application config.
func WeightsFromConfig(cfg *common.CredibilityConfig) Weights {
	return Weights{
		Lifetime: cfg.LifetimeWeight,
		Quarter:  cfg.Quarter90Weight,
		Month:    cfg.Month30Weight,
	}
}

// ThresholdsFromConfig builds Thresholds from application config.
func ThresholdsFromConfig(cfg *common.CredibilityConfig) Thresholds {
	return Thresholds{
		TopTier:  cfg.TopTierThreshold,
		Rising:   cfg.RisingThreshold,
		Standard: cfg.StandardThreshold,
	}
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Score computes the recency-weighted credibility score.
//
// Base is the lifetime accuracy rate (0.5 prior when no predictions exist),
// blended with the 90-day and 30-day windows so a recent slump or hot streak
// moves the score faster than the full history would:
//
//	score = clamp(lifetime*0.5 + last90*0.3 + last30*0.2, 0, 1)
//
// Always returns a valid float; absent data defaults to neutral.
func Score(analyst *models.Analyst, w Weights) float64 {
	if analyst == nil {
		return NeutralScore
	}

	// No resolved predictions means no rolling-window data either; the
	// score is the neutral prior exactly, not a blend of priors.
	if analyst.TrackRecord.TotalPredictions == 0 {
		return NeutralScore
	}

	blended := analyst.TrackRecord.AccuracyRate*w.Lifetime +
		analyst.RecentPerformance.Last90Days*w.Quarter +
		analyst.RecentPerformance.Last30Days*w.Month

	return Clamp(blended, 0, 1)
}

// ScoreForType computes the credibility score for one prediction type,
// substituting the matching per-category accuracy for the blended base.
// A type with no resolved predictions scores neutral.
func ScoreForType(analyst *models.Analyst, predType models.PredictionType) float64 {
	if analyst == nil {
		return NeutralScore
	}

	var accuracy float64
	var count int
	switch predType {
	case models.PredictionRating:
		accuracy = analyst.HistoricalPerformance.Rating
		count = analyst.CategoryCounts.Rating
	case models.PredictionPriceTarget:
		accuracy = analyst.HistoricalPerformance.PriceTarget
		count = analyst.CategoryCounts.PriceTarget
	case models.PredictionTiming:
		accuracy = analyst.HistoricalPerformance.Timing
		count = analyst.CategoryCounts.Timing
	case models.PredictionEPS:
		accuracy = analyst.HistoricalPerformance.EPS
		count = analyst.CategoryCounts.EPS
	default:
		return NeutralScore
	}

	if count == 0 {
		return NeutralScore
	}
	return Clamp(accuracy, 0, 1)
}

// TierFor maps a score to its tier via a monotone step function.
func TierFor(score float64, th Thresholds) models.Tier {
	if score >= th.TopTier {
		return models.TierTopTier
	}
	if score >= th.Rising {
		return models.TierRising
	}
	if score >= th.Standard {
		return models.TierStandard
	}
	return models.TierNew
}
