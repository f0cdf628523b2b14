package quiz

import (
	"strings"

	"broker-match-workers/internal/models"
)

const (
	TraitDecisionStyle      = "decision_style"
	TraitRiskLevel          = "risk_level"
	TraitCommunicationStyle = "communication_style"
)

const (
	DecisionBalanced   = "balanced"
	DecisionSocial     = "social"
	DecisionAnalytical = "analytical"
	DecisionIntuitive  = "intuitive"

	RiskModerate     = "moderate"
	RiskConservative = "conservative"
	RiskAggressive   = "aggressive"

	CommunicationMixed    = "mixed"
	CommunicationVisual   = "visual"
	CommunicationPersonal = "personal"
)

// Traits is the categorical reading of one or more responses.
type Traits struct {
	DecisionStyle      string `json:"decisionStyle"`
	RiskLevel          string `json:"riskLevel"`
	CommunicationStyle string `json:"communicationStyle"`
}

func DefaultTraits() Traits {
	return Traits{
		DecisionStyle:      DecisionBalanced,
		RiskLevel:          RiskModerate,
		CommunicationStyle: CommunicationMixed,
	}
}

// TraitRule maps a keyword set to a trait value. Rules of the same trait are
// evaluated in table order and the first hit wins.
type TraitRule struct {
	Trait    string
	Value    string
	Keywords []string
}

var TraitRules = []TraitRule{
	{Trait: TraitDecisionStyle, Value: DecisionSocial, Keywords: []string{"friends", "family", "others", "social"}},
	{Trait: TraitDecisionStyle, Value: DecisionAnalytical, Keywords: []string{"research", "analyze", "data", "study"}},
	{Trait: TraitDecisionStyle, Value: DecisionIntuitive, Keywords: []string{"gut", "feeling", "intuition", "instinct"}},

	{Trait: TraitRiskLevel, Value: RiskConservative, Keywords: []string{"safe", "secure", "conservative", "protect", "worried"}},
	{Trait: TraitRiskLevel, Value: RiskAggressive, Keywords: []string{"aggressive", "growth", "risk", "opportunity", "high"}},

	{Trait: TraitCommunicationStyle, Value: CommunicationVisual, Keywords: []string{"charts", "graphs", "visual", "reports"}},
	{Trait: TraitCommunicationStyle, Value: CommunicationPersonal, Keywords: []string{"meeting", "discussion", "talk", "conversation"}},
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// matchTraits returns the trait values one text sets, keyed by trait.
func matchTraits(text string) map[string]string {
	lower := strings.ToLower(text)
	found := make(map[string]string, 3)
	for _, rule := range TraitRules {
		if _, ok := found[rule.Trait]; ok {
			continue
		}
		if containsAny(lower, rule.Keywords) {
			found[rule.Trait] = rule.Value
		}
	}
	return found
}

func (t *Traits) set(trait, value string) {
	switch trait {
	case TraitDecisionStyle:
		t.DecisionStyle = value
	case TraitRiskLevel:
		t.RiskLevel = value
	case TraitCommunicationStyle:
		t.CommunicationStyle = value
	}
}

// Analyze classifies a single answer text.
func Analyze(text string) Traits {
	traits := DefaultTraits()
	for trait, value := range matchTraits(text) {
		traits.set(trait, value)
	}
	return traits
}

// AnalyzeAll classifies a response history. Texts are scanned oldest first and
// the first text that sets a trait fixes it.
func AnalyzeAll(texts []string) Traits {
	traits := DefaultTraits()
	fixed := make(map[string]bool, 3)
	for _, text := range texts {
		for trait, value := range matchTraits(text) {
			if fixed[trait] {
				continue
			}
			fixed[trait] = true
			traits.set(trait, value)
		}
		if len(fixed) == 3 {
			break
		}
	}
	return traits
}

// AnalyzeResponses is AnalyzeAll over the answers of recorded responses.
func AnalyzeResponses(responses []models.ResponseRecord) Traits {
	return AnalyzeAll(answerTexts(responses))
}

func answerTexts(responses []models.ResponseRecord) []string {
	texts := make([]string, 0, len(responses))
	for _, r := range responses {
		texts = append(texts, r.Answer.String())
	}
	return texts
}

// InsightRule turns a keyword hit into an in-session observation. Only the
// first matching rule of each group fires for a response.
type InsightRule struct {
	Group      string
	Type       string
	Keywords   []string
	Text       string
	Confidence float64
	Principle  string
}

var ResponseInsightRules = []InsightRule{
	{
		Group: "risk", Type: "risk_profile",
		Keywords:   []string{"conservative", "safe", "low risk"},
		Text:       "User shows preference for conservative investment approaches",
		Confidence: 0.8, Principle: "Loss aversion",
	},
	{
		Group: "risk", Type: "risk_profile",
		Keywords:   []string{"aggressive", "high risk", "growth"},
		Text:       "User appears comfortable with higher-risk investments",
		Confidence: 0.8, Principle: "Growth mindset",
	},
	{
		Group: "capacity", Type: "investment_capacity",
		Keywords:   []string{"100k", "500k", "million"},
		Text:       "User indicates significant investment capacity",
		Confidence: 0.9,
	},
	{
		Group: "decision", Type: "decision_style",
		Keywords:   []string{"quickly", "immediate", "urgent"},
		Text:       "**Quick Decider**: Prefers fast decisions - benefits from brokers who respond promptly",
		Confidence: 0.85, Principle: "Present bias",
	},
	{
		Group: "decision", Type: "decision_style",
		Keywords:   []string{"research", "analyze", "study", "careful"},
		Text:       "**Thorough Researcher**: Weighs options carefully - values detailed analysis",
		Confidence: 0.9, Principle: "Analytical processing",
	},
	{
		Group: "social", Type: "social_influence",
		Keywords:   []string{"friends", "family", "others", "popular", "trending"},
		Text:       "**Social Learner**: Looks to others when deciding - testimonials carry weight",
		Confidence: 0.75, Principle: "Social proof",
	},
	{
		Group: "authority", Type: "authority_preference",
		Keywords:   []string{"expert", "professional", "certified", "credentials"},
		Text:       "**Expert Guidance**: Trusts credentials - look for certified professionals",
		Confidence: 0.85, Principle: "Authority trust",
	},
}

// ResponseInsights applies the in-session insight rules to one answer text.
func ResponseInsights(text string) []models.Insight {
	lower := strings.ToLower(text)
	fired := make(map[string]bool)
	var insights []models.Insight
	for _, rule := range ResponseInsightRules {
		if fired[rule.Group] || !containsAny(lower, rule.Keywords) {
			continue
		}
		fired[rule.Group] = true
		insights = append(insights, models.Insight{
			Type:       rule.Type,
			Text:       rule.Text,
			Confidence: rule.Confidence,
			Source:     models.SourcePatternAnalysis,
			Principle:  rule.Principle,
		})
	}
	return insights
}

// focusAreaRules map answer keywords onto focus areas that steer later topics.
var focusAreaRules = []struct {
	Keyword   string
	FocusArea string
}{
	{Keyword: "retirement", FocusArea: FocusRetirement},
	{Keyword: "tax", FocusArea: FocusTax},
	{Keyword: "estate", FocusArea: FocusEstate},
}

// FocusAreasFor lists the focus areas an answer text points at, in rule order.
func FocusAreasFor(text string) []string {
	lower := strings.ToLower(text)
	var areas []string
	for _, rule := range focusAreaRules {
		if strings.Contains(lower, rule.Keyword) {
			areas = append(areas, rule.FocusArea)
		}
	}
	return areas
}
