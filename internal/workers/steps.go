// internal/workers/steps.go
package workers

import (
	"broker-match-workers/internal/models"
	"broker-match-workers/internal/quiz"
)

// StepOutput is the job result of every quiz state transition.
type StepOutput struct {
	SessionID  string           `json:"sessionId"`
	UserID     string           `json:"userId"`
	Status     string           `json:"status"`
	Question   *models.Question `json:"question,omitempty"`
	Progress   models.Progress  `json:"progress"`
	Insights   []models.Insight `json:"insights,omitempty"`
	Completed  bool             `json:"completed"`
	Completion *quiz.Completion `json:"completion,omitempty"`
}

func NewStepOutput(step *quiz.Step) *StepOutput {
	out := &StepOutput{
		Question:   step.Question,
		Progress:   step.Progress,
		Insights:   step.Insights,
		Completion: step.Completion,
	}
	if step.Session != nil {
		out.SessionID = step.Session.ID
		out.UserID = step.Session.UserID
		out.Status = string(step.Session.Status)
		out.Completed = step.Session.IsCompleted()
	}
	return out
}
