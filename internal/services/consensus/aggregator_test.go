package consensus

import (
	"math"
	"testing"

	"github.com/ternarybob/veritas/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestAggregateEmptyInput(t *testing.T) {
	result := Aggregate("AAPL", nil, nil)

	if result.Action != models.ActionNone {
		t.Errorf("Expected NONE for empty input, got %s", result.Action)
	}
	if result.WeightedTargetPrice != nil {
		t.Error("Expected no target price for empty input")
	}
	if len(result.Contributors) != 0 {
		t.Error("Expected no contributors for empty input")
	}
}

func TestAggregateSingleRating(t *testing.T) {
	// A single rating wins regardless of weight
	ratings := []models.Rating{
		{AnalystID: "an_1", Action: models.ActionSell, Confidence: 0.01},
	}

	result := Aggregate("AAPL", ratings, nil)
	if result.Action != models.ActionSell {
		t.Errorf("Expected SELL, got %s", result.Action)
	}
	if len(result.Contributors) != 1 {
		t.Fatalf("Expected 1 contributor, got %d", len(result.Contributors))
	}
	// Unknown analyst defaults to neutral score with unit multiplier
	c := result.Contributors[0]
	if c.CredibilityScore != 0.5 || c.WeightMultiplier != 1.0 {
		t.Errorf("Expected neutral defaults, got score=%f multiplier=%f", c.CredibilityScore, c.WeightMultiplier)
	}
	if math.Abs(c.Weight-0.5*1.0*0.01) > 1e-12 {
		t.Errorf("Weight = %f, want %f", c.Weight, 0.5*0.01)
	}
}

func TestAggregateWeighting(t *testing.T) {
	analysts := map[string]*models.Analyst{
		"an_strong": {ID: "an_strong", CredibilityScore: 0.9, WeightMultiplier: 2.0},
		"an_weak":   {ID: "an_weak", CredibilityScore: 0.3, WeightMultiplier: 1.0},
	}
	ratings := []models.Rating{
		{AnalystID: "an_strong", Action: models.ActionBuy, Confidence: 1.0},
		{AnalystID: "an_weak", Action: models.ActionSell, Confidence: 1.0},
	}

	result := Aggregate("AAPL", ratings, analysts)

	// strong: 0.9*2.0*1.0 = 1.8, weak: 0.3*1.0*1.0 = 0.3
	if result.Action != models.ActionBuy {
		t.Errorf("Expected BUY to win on weight, got %s", result.Action)
	}
	if math.Abs(result.Distribution[models.ActionBuy]-1.8) > 1e-12 {
		t.Errorf("BUY weight = %f, want 1.8", result.Distribution[models.ActionBuy])
	}
	if math.Abs(result.Distribution[models.ActionSell]-0.3) > 1e-12 {
		t.Errorf("SELL weight = %f, want 0.3", result.Distribution[models.ActionSell])
	}
}

func TestAggregateTieBreak(t *testing.T) {
	// BUY and SELL carry equal weight; HOLD trails. The fixed precedence
	// must select BUY deterministically.
	analysts := map[string]*models.Analyst{
		"an_buy":  {ID: "an_buy", CredibilityScore: 1.0, WeightMultiplier: 10.0},
		"an_sell": {ID: "an_sell", CredibilityScore: 1.0, WeightMultiplier: 10.0},
		"an_hold": {ID: "an_hold", CredibilityScore: 1.0, WeightMultiplier: 1.0},
	}
	ratings := []models.Rating{
		{AnalystID: "an_sell", Action: models.ActionSell, Confidence: 1.0},
		{AnalystID: "an_hold", Action: models.ActionHold, Confidence: 1.0},
		{AnalystID: "an_buy", Action: models.ActionBuy, Confidence: 1.0},
	}

	for i := 0; i < 50; i++ {
		result := Aggregate("AAPL", ratings, analysts)
		if result.Action != models.ActionBuy {
			t.Fatalf("Tie-break must select BUY deterministically, got %s on run %d", result.Action, i)
		}
	}
}

func TestAggregateHoldBeatsSellOnTie(t *testing.T) {
	ratings := []models.Rating{
		{AnalystID: "an_1", Action: models.ActionSell, Confidence: 1.0},
		{AnalystID: "an_2", Action: models.ActionHold, Confidence: 1.0},
	}

	result := Aggregate("AAPL", ratings, nil)
	if result.Action != models.ActionHold {
		t.Errorf("Expected HOLD to beat SELL on equal weight, got %s", result.Action)
	}
}

func TestAggregateWeightedTargetPrice(t *testing.T) {
	analysts := map[string]*models.Analyst{
		"an_a": {ID: "an_a", CredibilityScore: 1.0, WeightMultiplier: 1.0},
		"an_b": {ID: "an_b", CredibilityScore: 0.5, WeightMultiplier: 1.0},
	}
	ratings := []models.Rating{
		{AnalystID: "an_a", Action: models.ActionBuy, Confidence: 1.0, TargetPrice: ptr(100)},
		{AnalystID: "an_b", Action: models.ActionBuy, Confidence: 1.0, TargetPrice: ptr(200)},
		// No target: contributes to action weight but not the target average
		{AnalystID: "an_c", Action: models.ActionBuy, Confidence: 1.0},
	}

	result := Aggregate("AAPL", ratings, analysts)
	if result.WeightedTargetPrice == nil {
		t.Fatal("Expected a weighted target price")
	}
	// (1.0*100 + 0.5*200) / 1.5 = 133.33
	want := (1.0*100 + 0.5*200) / 1.5
	if math.Abs(*result.WeightedTargetPrice-want) > 1e-9 {
		t.Errorf("WeightedTargetPrice = %f, want %f", *result.WeightedTargetPrice, want)
	}
}

func TestAggregateNoTargetsOmitsPrice(t *testing.T) {
	ratings := []models.Rating{
		{AnalystID: "an_1", Action: models.ActionBuy, Confidence: 0.5},
	}

	result := Aggregate("AAPL", ratings, nil)
	if result.WeightedTargetPrice != nil {
		t.Error("Expected no target price when no rating supplies one")
	}
}
