// internal/workers/quiz/submit-quiz-response/models.go
package submitquizresponse

import (
	"broker-match-workers/internal/common/validation"
	"broker-match-workers/internal/workers"
)

// Input carries the raw answer as the form posted it: a string, a number,
// a boolean or a list of option values.
type Input struct {
	SessionID string      `json:"sessionId"`
	Answer    interface{} `json:"answer"`
}

type Output = workers.StepOutput

func GetInputSchema() map[string]interface{} {
	return validation.Object(map[string]interface{}{
		"sessionId": validation.NonEmptyString(),
		"answer": map[string]interface{}{
			"type": []string{"string", "number", "boolean", "array"},
		},
	}, "sessionId", "answer")
}
