// internal/workers/quiz/start-quiz-session/models.go
package startquizsession

import (
	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/workers"
)

type Input struct {
	UserID string `json:"userId"`
}

type Output = workers.StepOutput

func GetInputSchema() map[string]interface{} {
	return validation.Object(map[string]interface{}{
		"userId": validation.NonEmptyString(),
	}, "userId")
}
