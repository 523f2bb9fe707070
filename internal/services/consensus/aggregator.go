// Package consensus combines multiple analysts' current ratings for one
// ticker into a single weighted consensus signal.
package consensus

import (
	"sort"

	"github.com/ternarybob/veritas/internal/models"
	"github.com/ternarybob/veritas/internal/services/credibility"
)

// actionPrecedence is the fixed tie-break order: when summed weights are
// equal, BUY beats HOLD beats SELL beats no-rating. Ties are rare but must
// resolve deterministically.
var actionPrecedence = map[models.Action]int{
	models.ActionBuy:  3,
	models.ActionHold: 2,
	models.ActionSell: 1,
	models.ActionNone: 0,
}

// Aggregate computes the weighted consensus for a ticker from a set of
// ratings. Each rating's weight is:
//
//	credibility score * analyst weight multiplier * rating confidence
//
// Unknown analysts default to the neutral 0.5 score with multiplier 1.
// An empty rating set yields a no-rating result; Aggregate never fails.
func Aggregate(ticker string, ratings []models.Rating, analysts map[string]*models.Analyst) *models.ConsensusResult {
	result := &models.ConsensusResult{
		Ticker:       ticker,
		Action:       models.ActionNone,
		Distribution: make(map[models.Action]float64),
	}

	if len(ratings) == 0 {
		return result
	}

	var targetWeightSum, weightedTargetSum float64

	for _, rating := range ratings {
		score := credibility.NeutralScore
		multiplier := 1.0
		if analyst, ok := analysts[rating.AnalystID]; ok && analyst != nil {
			score = analyst.CredibilityScore
			if analyst.WeightMultiplier > 0 {
				multiplier = analyst.WeightMultiplier
			}
		}

		weight := score * multiplier * rating.Confidence
		result.Distribution[rating.Action] += weight
		result.Contributors = append(result.Contributors, models.AnalystWeight{
			AnalystID:        rating.AnalystID,
			CredibilityScore: score,
			WeightMultiplier: multiplier,
			Confidence:       rating.Confidence,
			Weight:           weight,
			Action:           rating.Action,
		})

		if rating.TargetPrice != nil {
			targetWeightSum += weight
			weightedTargetSum += weight * *rating.TargetPrice
		}
	}

	result.Action = winningAction(result.Distribution)

	if targetWeightSum > 0 {
		weighted := weightedTargetSum / targetWeightSum
		result.WeightedTargetPrice = &weighted
	}

	return result
}

// winningAction picks the bucket with the highest summed weight, breaking
// ties by the fixed action precedence.
func winningAction(distribution map[models.Action]float64) models.Action {
	actions := make([]models.Action, 0, len(distribution))
	for action := range distribution {
		actions = append(actions, action)
	}
	// Iterate in descending precedence so an equal-weight bucket earlier in
	// precedence wins.
	sort.Slice(actions, func(i, j int) bool {
		return actionPrecedence[actions[i]] > actionPrecedence[actions[j]]
	})

	winner := models.ActionNone
	best := 0.0
	for _, action := range actions {
		if distribution[action] > best {
			winner = action
			best = distribution[action]
		}
	}
	return winner
}
