package quiz

import (
	"fmt"

	"broker-match-workers/internal/models"
)

const (
	FocusInvestmentGoals    = "investment_goals"
	FocusRiskAssessment     = "risk_assessment"
	FocusPsychologyAnalysis = "psychology_analysis"

	FocusRetirement = "retirement_planning"
	FocusTax        = "tax_optimization"
	FocusEstate     = "estate_planning"
)

// InitialFocusAreas seeds every new session.
func InitialFocusAreas() []string {
	return []string{FocusInvestmentGoals, FocusRiskAssessment, FocusPsychologyAnalysis}
}

const (
	TopicGoals         = "Investment goals and timeline"
	TopicRisk          = "Risk tolerance and emotional response"
	TopicExperience    = "Investment experience and knowledge"
	TopicDecision      = "Decision-making psychology and style"
	TopicSocial        = "Social influence and peer behavior"
	TopicCommunication = "Communication preferences and learning style"
	TopicAuthority     = "Authority and expertise preferences"
	TopicAnxiety       = "Financial anxiety and loss aversion"
	TopicPast          = "Past financial experiences and lessons"
	TopicFuture        = "Future financial vision and aspirations"

	TopicRetirement    = "Retirement planning specifics"
	TopicTax           = "Tax planning considerations"
	TopicEstate        = "Estate planning needs"
	TopicSectors       = "Specific investment sectors of interest"
	TopicInternational = "International investment exposure"
	TopicAlternative   = "Alternative investment interest"
)

var basePlan = [models.TotalSlots]models.QuestionSlot{
	{Order: 1, Topic: TopicGoals, Category: models.CategoryFinancialGoals, Format: models.FormatSingleChoice},
	{Order: 2, Topic: TopicRisk, Category: models.CategoryRiskTolerance, Format: models.FormatScale},
	{Order: 3, Topic: TopicExperience, Category: models.CategoryExperience, Format: models.FormatMultipleChoice},
	{Order: 4, Topic: TopicDecision, Category: models.CategoryPsychology, Format: models.FormatSingleChoice},
	{Order: 5, Topic: TopicSocial, Category: models.CategoryPsychology, Format: models.FormatMultipleChoice},
	{Order: 6, Topic: TopicCommunication, Category: models.CategoryPreferences, Format: models.FormatSingleChoice},
	{Order: 7, Topic: TopicAuthority, Category: models.CategoryPsychology, Format: models.FormatScale},
	{Order: 8, Topic: TopicAnxiety, Category: models.CategoryPsychology, Format: models.FormatSingleChoice},
	{Order: 9, Topic: TopicPast, Category: models.CategoryExperience, Format: models.FormatText},
	{Order: 10, Topic: TopicFuture, Category: models.CategoryFinancialGoals, Format: models.FormatText},
}

// BuildPlan returns the deterministic ten-slot base plan.
func BuildPlan() []models.QuestionSlot {
	plan := make([]models.QuestionSlot, len(basePlan))
	copy(plan, basePlan[:])
	return plan
}

// ValidatePlan checks slot count and order, and that free text is limited to
// the last two positions.
func ValidatePlan(plan []models.QuestionSlot) error {
	if len(plan) != models.TotalSlots {
		return fmt.Errorf("plan has %d slots, want %d", len(plan), models.TotalSlots)
	}
	text := 0
	for i, slot := range plan {
		if slot.Order != i+1 {
			return fmt.Errorf("slot %d has order %d", i+1, slot.Order)
		}
		if !slot.Format.Valid() {
			return fmt.Errorf("slot %d has unknown format %q", slot.Order, slot.Format)
		}
		if slot.Format == models.FormatText {
			text++
		}
	}
	if text > models.MaxTextSlots {
		return fmt.Errorf("plan has %d text slots, max %d", text, models.MaxTextSlots)
	}
	for _, slot := range plan[models.TotalSlots-models.MaxTextSlots:] {
		if slot.Format != models.FormatText {
			return fmt.Errorf("slot %d must be text, got %s", slot.Order, slot.Format)
		}
	}
	return nil
}

type adaptiveTopic struct {
	FocusArea string
	Topic     string
	Category  models.Category
}

var adaptiveTopics = []adaptiveTopic{
	{FocusArea: FocusRetirement, Topic: TopicRetirement, Category: models.CategoryFinancialGoals},
	{FocusArea: FocusTax, Topic: TopicTax, Category: models.CategoryFinancialGoals},
	{FocusArea: FocusEstate, Topic: TopicEstate, Category: models.CategoryFinancialGoals},
}

// adaptiveSlots are the positions that may trade their topic, in the order
// they are given up.
var adaptiveSlots = []int{5, 8, 7}

// AdaptPlan substitutes focus-area topics into adaptive positions at or after
// fromOrder. Formats never change, so a valid plan stays valid.
func AdaptPlan(plan []models.QuestionSlot, focusAreas []string, fromOrder int) []models.QuestionSlot {
	adapted := make([]models.QuestionSlot, len(plan))
	copy(adapted, plan)

	inPlan := make(map[string]bool, len(adapted))
	for _, slot := range adapted {
		inPlan[slot.Topic] = true
	}
	areas := make(map[string]bool, len(focusAreas))
	for _, a := range focusAreas {
		areas[a] = true
	}

	for _, at := range adaptiveTopics {
		if !areas[at.FocusArea] || inPlan[at.Topic] {
			continue
		}
		for _, order := range adaptiveSlots {
			if order < fromOrder || order > len(adapted) {
				continue
			}
			idx := order - 1
			if adapted[idx].Topic != basePlan[idx].Topic {
				continue
			}
			adapted[idx].Topic = at.Topic
			adapted[idx].Category = at.Category
			inPlan[at.Topic] = true
			break
		}
	}
	return adapted
}

var selectionQuotas = []struct {
	Format models.QuestionFormat
	Quota  int
}{
	{Format: models.FormatSingleChoice, Quota: 4},
	{Format: models.FormatMultipleChoice, Quota: 3},
	{Format: models.FormatScale, Quota: 2},
}

// FormatTracker counts the formats already served in a session.
type FormatTracker struct {
	counts    map[models.QuestionFormat]int
	text      int
	selection int
}

func NewFormatTracker(responses []models.ResponseRecord) *FormatTracker {
	t := &FormatTracker{counts: make(map[models.QuestionFormat]int)}
	for _, r := range responses {
		t.Add(r.Format)
	}
	return t
}

func (t *FormatTracker) Add(format models.QuestionFormat) {
	if format == "" {
		return
	}
	t.counts[format]++
	if format == models.FormatText {
		t.text++
	} else {
		t.selection++
	}
}

// ChooseSelectionFormat picks the first selection format still under quota.
func (t *FormatTracker) ChooseSelectionFormat() models.QuestionFormat {
	for _, q := range selectionQuotas {
		if t.counts[q.Format] < q.Quota {
			return q.Format
		}
	}
	return models.FormatSingleChoice
}

// ChooseFormat decides the format of the slot at order.
func (t *FormatTracker) ChooseFormat(order int) models.QuestionFormat {
	switch {
	case order >= models.TotalSlots-models.MaxTextSlots+1 && t.text < models.MaxTextSlots:
		return models.FormatText
	case t.text >= models.MaxTextSlots:
		return t.ChooseSelectionFormat()
	case t.selection >= models.TotalSlots-models.MaxTextSlots:
		return models.FormatText
	default:
		return t.ChooseSelectionFormat()
	}
}

var coreTopics = []struct {
	Topic    string
	Category models.Category
}{
	{Topic: TopicGoals, Category: models.CategoryFinancialGoals},
	{Topic: TopicRisk, Category: models.CategoryRiskTolerance},
	{Topic: TopicExperience, Category: models.CategoryExperience},
	{Topic: TopicDecision, Category: models.CategoryPsychology},
}

var advancedTopics = []struct {
	Topic    string
	Category models.Category
}{
	{Topic: TopicSectors, Category: models.CategoryPreferences},
	{Topic: TopicTax, Category: models.CategoryFinancialGoals},
	{Topic: TopicEstate, Category: models.CategoryFinancialGoals},
	{Topic: TopicInternational, Category: models.CategoryPreferences},
	{Topic: TopicAlternative, Category: models.CategoryExperience},
	{Topic: TopicRetirement, Category: models.CategoryFinancialGoals},
}

// Planner picks the slot to serve next for a session.
type Planner struct{}

// SlotFor returns the slot for session.CurrentSlot. Sessions carrying a plan
// get it adapted to their focus areas; sessions without one get the slot
// recomputed from their history.
func (Planner) SlotFor(session *models.QuizSession) models.QuestionSlot {
	order := session.CurrentSlot
	if len(session.Plan) == models.TotalSlots && ValidatePlan(session.Plan) == nil {
		session.Plan = AdaptPlan(session.Plan, session.FocusAreas, order)
		return session.Plan[order-1]
	}
	return Recompute(session)
}

// Recompute derives the slot at session.CurrentSlot from focus areas and the
// formats already served.
func Recompute(session *models.QuizSession) models.QuestionSlot {
	order := session.CurrentSlot
	tracker := NewFormatTracker(session.Responses)
	slot := models.QuestionSlot{Order: order, Format: tracker.ChooseFormat(order)}

	if order <= len(coreTopics) {
		slot.Topic = coreTopics[order-1].Topic
		slot.Category = coreTopics[order-1].Category
		return slot
	}

	asked := make(map[string]bool, len(session.Responses))
	for _, r := range session.Responses {
		asked[r.Topic] = true
	}
	for _, at := range adaptiveTopics {
		if session.HasFocusArea(at.FocusArea) && !asked[at.Topic] {
			slot.Topic = at.Topic
			slot.Category = at.Category
			return slot
		}
	}

	next := advancedTopics[(order-5)%len(advancedTopics)]
	slot.Topic = next.Topic
	slot.Category = next.Category
	return slot
}
