// internal/workers/quiz/generate-quiz-insights/models.go
package generatequizinsights

import (
	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/quiz"
)

type Input struct {
	SessionID string `json:"sessionId"`
}

type Output = quiz.InsightReport

func GetInputSchema() map[string]interface{} {
	return validation.Object(map[string]interface{}{
		"sessionId": validation.NonEmptyString(),
	}, "sessionId")
}
