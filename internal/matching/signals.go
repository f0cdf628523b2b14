package matching

import (
	"strings"

	"broker-match-workers/internal/models"
	"broker-match-workers/internal/quiz"
)

const (
	NoPreference         = "no_preference"
	CredentialPreference = "credentials_required"
)

// Signals are the answers the criteria read. Empty fields mean unanswered.
type Signals struct {
	Goal           string   `json:"goal,omitempty"`
	Risk           string   `json:"risk,omitempty"`
	Experience     string   `json:"experience,omitempty"`
	Services       []string `json:"services,omitempty"`
	Amount         string   `json:"amount,omitempty"`
	Sectors        []string `json:"sectors,omitempty"`
	Communication  string   `json:"communication,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
}

// Answered counts the signals that carry a value.
func (s Signals) Answered() int {
	n := 0
	for _, v := range []bool{
		s.Goal != "", s.Risk != "", s.Experience != "", len(s.Services) > 0,
		s.Amount != "", len(s.Sectors) > 0, s.Communication != "", len(s.Certifications) > 0,
	} {
		if v {
			n++
		}
	}
	return n
}

type signalField int

const (
	fieldNone signalField = iota
	fieldGoal
	fieldRisk
	fieldExperience
	fieldServices
	fieldAmount
	fieldSectors
	fieldCommunication
	fieldCertifications
)

var topicFields = map[string]signalField{
	quiz.TopicGoals:         fieldGoal,
	quiz.TopicRisk:          fieldRisk,
	quiz.TopicExperience:    fieldExperience,
	quiz.TopicCommunication: fieldCommunication,
	quiz.TopicAuthority:     fieldCertifications,
	quiz.TopicRetirement:    fieldServices,
	quiz.TopicTax:           fieldServices,
	quiz.TopicEstate:        fieldServices,
	quiz.TopicSectors:       fieldSectors,
}

// legacyQuestionFields keys the questions of the static questionnaire by text.
var legacyQuestionFields = map[string]signalField{
	"what is your primary investment goal?":                     fieldGoal,
	"what is your risk tolerance level?":                        fieldRisk,
	"how would you describe your investment experience?":        fieldExperience,
	"which services are most important to you?":                 fieldServices,
	"what is your approximate investment amount?":               fieldAmount,
	"which sectors are you most interested in investing?":       fieldSectors,
	"how would you prefer to communicate with your broker?":     fieldCommunication,
	"do you have any specific broker certification preferences?": fieldCertifications,
}

var riskScale = []string{"conservative", "moderate_conservative", "moderate", "moderate_aggressive", "aggressive"}

func fieldFor(r models.ResponseRecord) signalField {
	if f, ok := topicFields[r.Topic]; ok {
		return f
	}
	return legacyQuestionFields[strings.ToLower(strings.TrimSpace(r.QuestionText))]
}

// ExtractSignals folds a response history into matching signals. Later
// answers to the same signal replace earlier ones; services accumulate.
func ExtractSignals(responses []models.ResponseRecord) Signals {
	var s Signals
	for _, r := range responses {
		if r.Answer.IsZero() {
			continue
		}
		switch fieldFor(r) {
		case fieldGoal:
			s.Goal = r.Answer.Primary()
		case fieldRisk:
			s.Risk = riskSignal(r.Answer)
		case fieldExperience:
			s.Experience = r.Answer.Primary()
		case fieldServices:
			s.Services = appendUnique(s.Services, r.Answer.Values()...)
		case fieldAmount:
			s.Amount = r.Answer.Primary()
		case fieldSectors:
			s.Sectors = appendUnique(nil, r.Answer.Values()...)
		case fieldCommunication:
			s.Communication = r.Answer.Primary()
		case fieldCertifications:
			s.Certifications = certificationSignal(r.Answer)
		}
	}
	return s
}

// riskSignal maps a 1-5 scale onto the five risk styles.
func riskSignal(a models.Answer) string {
	if a.Kind != models.AnswerScale {
		return a.Primary()
	}
	idx := a.Scale - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(riskScale) {
		idx = len(riskScale) - 1
	}
	return riskScale[idx]
}

func certificationSignal(a models.Answer) []string {
	switch a.Kind {
	case models.AnswerScale:
		if a.Scale <= 2 {
			return []string{NoPreference}
		}
		return []string{CredentialPreference}
	case models.AnswerBoolean:
		if !a.Bool {
			return []string{NoPreference}
		}
		return []string{CredentialPreference}
	}
	return appendUnique(nil, a.Values()...)
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
