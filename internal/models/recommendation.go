package models

import "time"

// Action is the rating direction an analyst assigns to a security.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionHold Action = "HOLD"
	ActionSell Action = "SELL"
	// ActionNone is the consensus result for an empty rating set. It is
	// never a valid recommendation action.
	ActionNone Action = "NONE"
)

// Valid reports whether the action is a recordable recommendation action.
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionHold || a == ActionSell
}

// PredictionType categorizes what the recommendation predicts, which selects
// both the outcome rule and the historical-performance bucket it updates.
type PredictionType string

const (
	PredictionRating      PredictionType = "rating"
	PredictionPriceTarget PredictionType = "price_target"
	PredictionTiming      PredictionType = "timing"
	PredictionEPS         PredictionType = "eps"
)

// Outcome is the resolved result of a recommendation.
type Outcome string

const (
	OutcomeCorrect   Outcome = "CORRECT"
	OutcomeIncorrect Outcome = "INCORRECT"
	OutcomeNeutral   Outcome = "NEUTRAL"
)

// Recommendation is an immutable input fact: one analyst's call on one
// ticker. The Outcome fields start empty and are written exactly once when
// the horizon elapses; resolved recommendations are excluded from further
// evaluation scans.
type Recommendation struct {
	ID             string         `json:"id" badgerhold:"key"`
	AnalystID      string         `json:"analyst_id" validate:"required"`
	Ticker         string         `json:"ticker" validate:"required"`
	Action         Action         `json:"action" validate:"required,oneof=BUY HOLD SELL"`
	Confidence     float64        `json:"confidence" validate:"required,gt=0,lte=1"`
	HorizonDays    int            `json:"horizon_days" validate:"required,gt=0"`
	PredictionType PredictionType `json:"prediction_type" validate:"omitempty,oneof=rating price_target timing eps"`
	TargetPrice    *float64       `json:"target_price,omitempty" validate:"omitempty,gt=0"`
	PredictedEPS   *float64       `json:"predicted_eps,omitempty"`
	Note           string         `json:"note,omitempty"`
	Sector         string         `json:"sector,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	// Resolution fields, written once by the evaluation cycle.
	Outcome     Outcome    `json:"outcome,omitempty"`
	ActualValue *float64   `json:"actual_value,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Resolved reports whether this recommendation already has an outcome.
func (r *Recommendation) Resolved() bool {
	return r.Outcome != ""
}

// DueAt returns the earliest time the recommendation can be evaluated.
func (r *Recommendation) DueAt() time.Time {
	return r.CreatedAt.AddDate(0, 0, r.HorizonDays)
}

// Due reports whether the horizon has elapsed as of the given time.
func (r *Recommendation) Due(asOf time.Time) bool {
	return !asOf.Before(r.DueAt())
}
