package evaluation

import (
	"testing"
	"time"

	"github.com/ternarybob/veritas/internal/eodhd"
	"github.com/ternarybob/veritas/internal/models"
)

func TestEvaluateRating(t *testing.T) {
	tests := []struct {
		name   string
		action models.Action
		start  float64
		end    float64
		want   models.Outcome
	}{
		{"buy with clear rally", models.ActionBuy, 100, 110, models.OutcomeCorrect},
		{"buy with flat price", models.ActionBuy, 100, 101, models.OutcomeIncorrect},
		{"buy with move inside noise band", models.ActionBuy, 100, 102, models.OutcomeIncorrect},
		{"buy with drop", models.ActionBuy, 100, 90, models.OutcomeIncorrect},
		{"sell with clear drop", models.ActionSell, 100, 90, models.OutcomeCorrect},
		{"sell with rally", models.ActionSell, 100, 110, models.OutcomeIncorrect},
		{"sell with move inside noise band", models.ActionSell, 100, 98.5, models.OutcomeIncorrect},
		{"hold inside noise band", models.ActionHold, 100, 101, models.OutcomeCorrect},
		{"hold at band boundary", models.ActionHold, 100, 102, models.OutcomeCorrect},
		{"hold with rally", models.ActionHold, 100, 108, models.OutcomeIncorrect},
		{"hold with drop", models.ActionHold, 100, 92, models.OutcomeIncorrect},
		{"missing start price", models.ActionBuy, 0, 110, models.OutcomeNeutral},
		{"missing end price", models.ActionBuy, 100, 0, models.OutcomeNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateRating(tt.action, tt.start, tt.end, DefaultNoiseThresholdPct)
			if got != tt.want {
				t.Errorf("EvaluateRating(%s, %f -> %f) = %s, want %s",
					tt.action, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestEvaluatePriceTarget(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		actual float64
		want   models.Outcome
	}{
		{"exact hit", 100, 100, models.OutcomeCorrect},
		{"inside tolerance high", 100, 109, models.OutcomeCorrect},
		{"inside tolerance low", 100, 91, models.OutcomeCorrect},
		{"at tolerance boundary", 100, 110, models.OutcomeCorrect},
		{"beyond tolerance high", 100, 111, models.OutcomeIncorrect},
		{"beyond tolerance low", 100, 85, models.OutcomeIncorrect},
		{"unusable target", 0, 100, models.OutcomeNeutral},
		{"unusable actual", 100, 0, models.OutcomeNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluatePriceTarget(tt.target, tt.actual, DefaultTargetTolerancePct)
			if got != tt.want {
				t.Errorf("EvaluatePriceTarget(%f, %f) = %s, want %s",
					tt.target, tt.actual, got, tt.want)
			}
		})
	}
}

func TestEvaluateEPS(t *testing.T) {
	tests := []struct {
		name      string
		predicted float64
		actual    float64
		want      models.Outcome
	}{
		{"exact hit", 2.50, 2.50, models.OutcomeCorrect},
		{"inside tolerance", 2.50, 2.70, models.OutcomeCorrect},
		{"beyond tolerance", 2.50, 3.00, models.OutcomeIncorrect},
		{"negative prediction hit", -1.00, -1.05, models.OutcomeCorrect},
		{"negative prediction miss", -1.00, -2.00, models.OutcomeIncorrect},
		{"zero prediction", 0, 1.00, models.OutcomeNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateEPS(tt.predicted, tt.actual, DefaultEPSTolerancePct)
			if got != tt.want {
				t.Errorf("EvaluateEPS(%f, %f) = %s, want %s",
					tt.predicted, tt.actual, got, tt.want)
			}
		})
	}
}

func TestPriceAtDate(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
	}
	bars := []eodhd.EODBar{
		{Date: day(5), Close: 105},
		{Date: day(2), Close: 102}, // Out of order on purpose
		{Date: day(9), Close: 109},
	}

	if got := PriceAtDate(bars, day(5)); got != 105 {
		t.Errorf("PriceAtDate(exact) = %f, want 105", got)
	}
	// Weekend/holiday gap falls back to nearest prior bar
	if got := PriceAtDate(bars, day(7)); got != 105 {
		t.Errorf("PriceAtDate(gap) = %f, want 105", got)
	}
	if got := PriceAtDate(bars, day(1)); got != 0 {
		t.Errorf("PriceAtDate(before all bars) = %f, want 0", got)
	}
	if got := PriceAtDate(nil, day(1)); got != 0 {
		t.Errorf("PriceAtDate(empty) = %f, want 0", got)
	}
}
