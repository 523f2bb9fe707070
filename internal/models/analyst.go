// Package models defines the core data structures for analyst tracking,
// recommendations, consensus results, and batch updates.
package models

import "time"

// Tier is the coarse credibility banding used for display and ranking.
// It is a pure function of the credibility score and is stored only as a
// cache; the [0,1] score is authoritative.
type Tier string

const (
	TierTopTier  Tier = "TOP_TIER"
	TierRising   Tier = "RISING"
	TierStandard Tier = "STANDARD"
	TierNew      Tier = "NEW"
)

// TrackRecord holds an analyst's cumulative lifetime prediction statistics.
type TrackRecord struct {
	TotalPredictions    int       `json:"total_predictions"`
	AccuratePredictions int       `json:"accurate_predictions"`
	AccuracyRate        float64   `json:"accuracy_rate"` // accurate/total, 0.5 when total=0
	LastUpdated         time.Time `json:"last_updated"`
}

// CategoryPerformance holds per-prediction-type accuracy, each in [0,1].
type CategoryPerformance struct {
	Rating      float64 `json:"rating"`
	PriceTarget float64 `json:"price_target"`
	Timing      float64 `json:"timing"`
	EPS         float64 `json:"eps"`
}

// CategoryCounts holds per-prediction-type resolved counts, used to keep the
// incremental running averages in CategoryPerformance exact.
type CategoryCounts struct {
	Rating      int `json:"rating"`
	PriceTarget int `json:"price_target"`
	Timing      int `json:"timing"`
	EPS         int `json:"eps"`
}

// RecentPerformance holds accuracy over rolling windows, each in [0,1].
type RecentPerformance struct {
	Last30Days float64 `json:"last_30_days"`
	Last90Days float64 `json:"last_90_days"`
	LastYear   float64 `json:"last_year"`
}

// Analyst is the persisted analyst record. CredibilityScore and the
// performance fields are mutated only by the evaluation cycle.
type Analyst struct {
	ID                    string              `json:"id" badgerhold:"key"`
	Name                  string              `json:"name"`
	Firm                  string              `json:"firm"`
	CredibilityScore      float64             `json:"credibility_score"` // [0,1]
	TrackRecord           TrackRecord         `json:"track_record"`
	Specializations       []string            `json:"specializations"`
	HistoricalPerformance CategoryPerformance `json:"historical_performance"`
	CategoryCounts        CategoryCounts      `json:"category_counts"`
	RecentPerformance     RecentPerformance   `json:"recent_performance"`
	WeightMultiplier      float64             `json:"weight_multiplier"` // >0, applied at aggregation time only
	Tier                  Tier                `json:"tier"`              // Derived cache, recomputed with the score
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// NewAnalyst returns an analyst initialized with the neutral 0.5 defaults.
// A brand-new analyst is trusted exactly as much as a coin flip.
func NewAnalyst(id, name, firm string) *Analyst {
	now := time.Now().UTC()
	return &Analyst{
		ID:               id,
		Name:             name,
		Firm:             firm,
		CredibilityScore: 0.5,
		TrackRecord: TrackRecord{
			AccuracyRate: 0.5,
			LastUpdated:  now,
		},
		HistoricalPerformance: CategoryPerformance{
			Rating:      0.5,
			PriceTarget: 0.5,
			Timing:      0.5,
			EPS:         0.5,
		},
		RecentPerformance: RecentPerformance{
			Last30Days: 0.5,
			Last90Days: 0.5,
			LastYear:   0.5,
		},
		WeightMultiplier: 1.0,
		Tier:             TierNew,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// DisplayScore converts the canonical [0,1] credibility score to the 0-100
// presentation scale.
func (a *Analyst) DisplayScore() float64 {
	return a.CredibilityScore * 100
}

// DisplayRank maps the 0-100 display score to its presentation band.
func DisplayRank(displayScore float64) string {
	switch {
	case displayScore >= 90:
		return "Elite"
	case displayScore >= 75:
		return "Expert"
	case displayScore >= 60:
		return "Senior"
	case displayScore >= 45:
		return "Analyst"
	default:
		return "Rookie"
	}
}
