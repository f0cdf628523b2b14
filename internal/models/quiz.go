// internal/models/quiz.go
package models

import "time"

const (
	// TotalSlots is the fixed length of every quiz.
	TotalSlots = 10
	// MaxTextSlots caps free-text questions per quiz.
	MaxTextSlots = 2
)

type Category string

const (
	CategoryFinancialGoals Category = "FINANCIAL_GOALS"
	CategoryRiskTolerance  Category = "RISK_TOLERANCE"
	CategoryExperience     Category = "EXPERIENCE"
	CategoryPreferences    Category = "PREFERENCES"
	CategoryPsychology     Category = "PSYCHOLOGY"
)

type QuestionFormat string

const (
	FormatSingleChoice   QuestionFormat = "single_choice"
	FormatMultipleChoice QuestionFormat = "multiple_choice"
	FormatMultipleSelect QuestionFormat = "multiple_select"
	FormatScale          QuestionFormat = "scale"
	FormatText           QuestionFormat = "text"
	FormatBoolean        QuestionFormat = "boolean"
)

// IsSelection reports whether the format is answered by picking rather than writing.
func (f QuestionFormat) IsSelection() bool {
	return f != FormatText
}

func (f QuestionFormat) Valid() bool {
	switch f {
	case FormatSingleChoice, FormatMultipleChoice, FormatMultipleSelect, FormatScale, FormatText, FormatBoolean:
		return true
	}
	return false
}

// QuestionSlot is one immutable entry of a quiz plan.
type QuestionSlot struct {
	Order    int            `json:"order"`
	Topic    string         `json:"topic"`
	Category Category       `json:"category"`
	Format   QuestionFormat `json:"format"`
}

type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type ScaleOptions struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	MinLabel string `json:"minLabel"`
	MaxLabel string `json:"maxLabel"`
}

type AdaptiveContext struct {
	FocusArea           string  `json:"focusArea"`
	Reasoning           string  `json:"reasoning"`
	Importance          float64 `json:"importance"`
	PsychologyPrinciple string  `json:"psychologyPrinciple,omitempty"`
	MatchingValue       string  `json:"matchingValue,omitempty"`
}

// Question is a slot rendered into something a client can display.
type Question struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Format      QuestionFormat   `json:"format"`
	Options     []QuestionOption `json:"options,omitempty"`
	Scale       *ScaleOptions    `json:"scale,omitempty"`
	Order       int              `json:"order"`
	Topic       string           `json:"topic"`
	Category    Category         `json:"category"`
	Weight      int              `json:"weight"`
	AIGenerated bool             `json:"aiGenerated"`
	Context     *AdaptiveContext `json:"adaptiveContext,omitempty"`
}

// HasOption reports whether value is one of the question's option values.
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// QuestionRequest is what a question generator receives for one slot.
type QuestionRequest struct {
	Slot       QuestionSlot `json:"slot"`
	AvoidTexts []string     `json:"avoidTexts,omitempty"`
	FocusAreas []string     `json:"focusAreas,omitempty"`
}

type ResponseRecord struct {
	SessionID    string         `json:"sessionId"`
	Order        int            `json:"order"`
	Topic        string         `json:"topic"`
	Format       QuestionFormat `json:"format"`
	Answer       Answer         `json:"answer"`
	QuestionText string         `json:"questionText"`
	Timestamp    time.Time      `json:"timestamp"`
}

type InsightSource string

const (
	SourcePatternAnalysis InsightSource = "pattern_analysis"
	SourceAIEnhanced      InsightSource = "ai_enhanced_analysis"
)

type Insight struct {
	Type       string        `json:"type"`
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Source     InsightSource `json:"source"`
	Actionable bool          `json:"isActionable"`
	Principle  string        `json:"principle,omitempty"`
}

type SessionStatus string

const (
	StatusStarted    SessionStatus = "started"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

type Progress struct {
	Current              int     `json:"current"`
	Total                int     `json:"total"`
	CompletionPercentage float64 `json:"completionPercentage"`
}

type QuizSession struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"userId"`
	Status             SessionStatus    `json:"status"`
	CurrentSlot        int              `json:"currentSlot"`
	Plan               []QuestionSlot   `json:"plan"`
	Responses          []ResponseRecord `json:"responses"`
	Insights           []Insight        `json:"insights"`
	FocusAreas         []string         `json:"focusAreas"`
	TextSlotsUsed      int              `json:"textSlotsUsed"`
	SelectionSlotsUsed int              `json:"selectionSlotsUsed"`
	CurrentQuestion    *Question        `json:"currentQuestion,omitempty"`
	StartedAt          time.Time        `json:"startedAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
}

func (s *QuizSession) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// AddFocusArea appends area unless it is already present.
func (s *QuizSession) AddFocusArea(area string) bool {
	if s.HasFocusArea(area) {
		return false
	}
	s.FocusAreas = append(s.FocusAreas, area)
	return true
}

func (s *QuizSession) HasFocusArea(area string) bool {
	for _, a := range s.FocusAreas {
		if a == area {
			return true
		}
	}
	return false
}

// ServedQuestionTexts lists every question text shown so far, oldest first.
func (s *QuizSession) ServedQuestionTexts() []string {
	texts := make([]string, 0, len(s.Responses)+1)
	seen := make(map[string]bool, len(s.Responses)+1)
	for _, r := range s.Responses {
		if r.QuestionText != "" && !seen[r.QuestionText] {
			seen[r.QuestionText] = true
			texts = append(texts, r.QuestionText)
		}
	}
	if s.CurrentQuestion != nil && s.CurrentQuestion.Text != "" && !seen[s.CurrentQuestion.Text] {
		texts = append(texts, s.CurrentQuestion.Text)
	}
	return texts
}

func (s *QuizSession) Progress() Progress {
	current := s.CurrentSlot
	if s.IsCompleted() {
		current = TotalSlots
	}
	return Progress{
		Current:              current,
		Total:                TotalSlots,
		CompletionPercentage: float64(current*100) / float64(TotalSlots),
	}
}
