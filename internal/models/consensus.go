package models

import "time"

// Rating is one analyst's current rating input to consensus aggregation.
type Rating struct {
	AnalystID   string   `json:"analyst_id"`
	Action      Action   `json:"action"`
	Confidence  float64  `json:"confidence"`
	TargetPrice *float64 `json:"target_price,omitempty"`
}

// AnalystWeight records one analyst's contribution to a consensus, kept for
// auditability.
type AnalystWeight struct {
	AnalystID        string  `json:"analyst_id"`
	CredibilityScore float64 `json:"credibility_score"`
	WeightMultiplier float64 `json:"weight_multiplier"`
	Confidence       float64 `json:"confidence"`
	Weight           float64 `json:"weight"` // score * multiplier * confidence
	Action           Action  `json:"action"`
}

// ConsensusResult is the weighted consensus for one ticker. It is a
// recomputed-on-demand snapshot, never authoritative state.
type ConsensusResult struct {
	Ticker              string             `json:"ticker" badgerhold:"key"`
	Action              Action             `json:"action"`
	Distribution        map[Action]float64 `json:"distribution"` // summed weight per action
	WeightedTargetPrice *float64           `json:"weighted_target_price,omitempty"`
	Contributors        []AnalystWeight    `json:"contributors"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

// TotalWeight returns the summed weight across all action buckets.
func (c *ConsensusResult) TotalWeight() float64 {
	total := 0.0
	for _, w := range c.Distribution {
		total += w
	}
	return total
}
