package common

import (
	"github.com/google/uuid"
)

// NewAnalystID generates a unique analyst ID with the "an_" prefix
func NewAnalystID() string {
	return "an_" + uuid.New().String()
}

// NewRecommendationID generates a unique recommendation ID with the "rec_" prefix
func NewRecommendationID() string {
	return "rec_" + uuid.New().String()
}
