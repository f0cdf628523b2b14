// internal/common/genai/prompts.go
package genai

import (
	"fmt"
	"strings"

	"broker-match-workers/internal/models"
)

func questionPrompt(req models.QuestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write question %d of a %d-question investor profiling quiz.\n", req.Slot.Order, models.TotalSlots)
	fmt.Fprintf(&b, "Topic: %s. Category: %s. Format: %s.\n", req.Slot.Topic, req.Slot.Category, req.Slot.Format)

	if len(req.FocusAreas) > 0 {
		fmt.Fprintf(&b, "Lean towards these focus areas: %s.\n", strings.Join(req.FocusAreas, ", "))
	}
	if len(req.AvoidTexts) > 0 {
		b.WriteString("Do not repeat any of these questions:\n")
		for _, t := range req.AvoidTexts {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}

	switch req.Slot.Format {
	case models.FormatText:
		b.WriteString(`Respond with JSON only: {"text": "..."}`)
	case models.FormatScale:
		b.WriteString(`Respond with JSON only: {"text": "...", "scale": {"min": 1, "max": 5, "minLabel": "...", "maxLabel": "..."}}`)
	case models.FormatBoolean:
		b.WriteString(`Respond with JSON only: {"text": "..."} phrased as a yes/no question.`)
	default:
		b.WriteString(`Respond with JSON only: {"text": "...", "options": [{"value": "snake_case", "label": "..."}]} with 3 to 6 options.`)
	}
	return b.String()
}

func insightPrompt(responses []models.ResponseRecord) string {
	var b strings.Builder
	b.WriteString("An investor answered a profiling quiz:\n")
	for _, r := range responses {
		fmt.Fprintf(&b, "%d. %s -> %s\n", r.Order, r.QuestionText, r.Answer.String())
	}
	b.WriteString("Give exactly three insights about their investing psychology, one per line, ")
	b.WriteString("formatted as **Title**: one or two sentences.")
	return b.String()
}
