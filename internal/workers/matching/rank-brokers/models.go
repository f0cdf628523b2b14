// internal/workers/matching/rank-brokers/models.go
package rankbrokers

import (
	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/models"
)

type Input struct {
	UserID string `json:"userId"`
	TopN   int    `json:"topN,omitempty"`
	// Persist records the ranking as pending introductions.
	Persist bool `json:"persist,omitempty"`
	// Notify announces the ranking on the match topic.
	Notify bool `json:"notify,omitempty"`
}

type Output struct {
	UserID         string               `json:"userId"`
	Matches        []models.MatchResult `json:"matches"`
	Count          int                  `json:"count"`
	Persisted      int                  `json:"persisted"`
	NotificationID string               `json:"notificationId,omitempty"`
}

func GetInputSchema() map[string]interface{} {
	return validation.Object(map[string]interface{}{
		"userId":  validation.NonEmptyString(),
		"topN":    map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 100},
		"persist": map[string]interface{}{"type": "boolean"},
		"notify":  map[string]interface{}{"type": "boolean"},
	}, "userId")
}
