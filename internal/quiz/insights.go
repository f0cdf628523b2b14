package quiz

import (
	"context"
	"fmt"
	"math"
	"strings"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/metrics"
	"broker-match-workers/internal/models"
)

const (
	MaxFinalInsights   = 4
	MaxRecommendations = 4
	narrativeMaxLength = 200
	notAssessed        = "Not assessed"

	// A report on a finished quiz is trusted at maxReportConfidence; each
	// missing answer lowers that linearly towards minReportConfidence.
	minReportConfidence = 0.5
	maxReportConfidence = 0.9
)

// ReportConfidence is the confidence of an insight report built from n answers.
func ReportConfidence(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n > models.TotalSlots {
		n = models.TotalSlots
	}
	c := minReportConfidence + (maxReportConfidence-minReportConfidence)*float64(n)/float64(models.TotalSlots)
	return math.Round(c*100) / 100
}

// Profile is the investment profile inferred from all answers.
type Profile struct {
	InvestmentHorizon string `json:"investmentHorizon"`
	RiskTolerance     string `json:"riskTolerance"`
	PreferredFocus    string `json:"preferredFocus"`
}

func NotAssessedProfile() Profile {
	return Profile{InvestmentHorizon: notAssessed, RiskTolerance: notAssessed, PreferredFocus: notAssessed}
}

type keywordFamily struct {
	Keywords []string
	Label    string
}

var horizonFamilies = []keywordFamily{
	{Keywords: []string{"retirement", "long", "future", "years"}, Label: "Long-term (7+ years)"},
	{Keywords: []string{"short", "soon", "immediate", "quick"}, Label: "Short-term (1-3 years)"},
}

var riskFamilies = []keywordFamily{
	{Keywords: []string{"safe", "conservative", "stable", "secure"}, Label: "Conservative"},
	{Keywords: []string{"aggressive", "risky", "growth", "high"}, Label: "Aggressive"},
}

var focusFamilies = []keywordFamily{
	{Keywords: []string{"income", "dividends", "steady"}, Label: "Income Generation"},
	{Keywords: []string{"growth", "capital", "appreciate"}, Label: "Capital Growth"},
	{Keywords: []string{"research", "analysis", "study"}, Label: "Research-Based"},
}

func firstFamily(text string, families []keywordFamily, fallback string) string {
	for _, f := range families {
		if containsAny(text, f.Keywords) {
			return f.Label
		}
	}
	return fallback
}

// GenerateProfile reads the profile off the concatenated answer texts.
func GenerateProfile(responses []models.ResponseRecord) Profile {
	if len(responses) == 0 {
		return NotAssessedProfile()
	}
	all := strings.ToLower(strings.Join(answerTexts(responses), " "))
	return Profile{
		InvestmentHorizon: firstFamily(all, horizonFamilies, "Medium-term (3-7 years)"),
		RiskTolerance:     firstFamily(all, riskFamilies, "Moderate"),
		PreferredFocus:    firstFamily(all, focusFamilies, "Balanced Growth"),
	}
}

// GenerateRecommendations returns one recommendation per dimension: decision
// style, risk, communication, then the best match.
func GenerateRecommendations(traits Traits, matches []models.MatchResult) []string {
	recs := make([]string, 0, MaxRecommendations)

	switch traits.DecisionStyle {
	case DecisionSocial:
		recs = append(recs, "✓ Find brokers with excellent client testimonials")
	case DecisionAnalytical:
		recs = append(recs, "✓ Choose data-driven brokers with detailed reports")
	case DecisionIntuitive:
		recs = append(recs, "✓ Look for brokers who explain the big picture clearly")
	default:
		recs = append(recs, "✓ Pick brokers who adapt to your communication style")
	}

	switch traits.RiskLevel {
	case RiskConservative:
		recs = append(recs, "✓ Focus on income-generating, stable investments")
	case RiskAggressive:
		recs = append(recs, "✓ Seek growth-focused, high-return strategies")
	default:
		recs = append(recs, "✓ Target balanced portfolios with moderate risk")
	}

	switch traits.CommunicationStyle {
	case CommunicationVisual:
		recs = append(recs, "✓ Prioritize brokers with excellent charts and visuals")
	case CommunicationPersonal:
		recs = append(recs, "✓ Choose brokers who offer regular personal meetings")
	default:
		recs = append(recs, "✓ Find brokers who use your preferred communication methods")
	}

	if len(matches) > 0 {
		top := matches[0]
		recs = append(recs, fmt.Sprintf("✓ Best match: %s (%.0f%% compatible)", top.BrokerName, top.Score*100))
	} else {
		recs = append(recs, "✓ We'll find brokers perfect for your profile")
	}

	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}

// FallbackInsights builds the four rule-based closing insights.
func FallbackInsights(traits Traits) []models.Insight {
	insight := func(text string, confidence float64) models.Insight {
		return models.Insight{
			Type:       "personalized_insight",
			Text:       text,
			Confidence: confidence,
			Source:     models.SourcePatternAnalysis,
			Actionable: true,
		}
	}

	out := make([]models.Insight, 0, MaxFinalInsights)
	switch traits.DecisionStyle {
	case DecisionAnalytical:
		out = append(out, insight("**Data Driven**: You love details and research - seek brokers with comprehensive reports.", 0.85))
	case DecisionSocial:
		out = append(out, insight("**Trust Builder**: You value referrals and testimonials - find well-reviewed brokers.", 0.85))
	default:
		out = append(out, insight("**Balanced Approach**: You consider multiple factors - seek experienced, well-rounded brokers.", 0.80))
	}

	switch traits.RiskLevel {
	case RiskConservative:
		out = append(out, insight("**Safety First**: You prioritize security - choose brokers specializing in stable investments.", 0.85))
	case RiskAggressive:
		out = append(out, insight("**Growth Focused**: You're comfortable with risk - find brokers with strong growth strategies.", 0.85))
	default:
		out = append(out, insight("**Balanced Investor**: You want growth with protection - seek diversification experts.", 0.80))
	}

	if traits.CommunicationStyle == CommunicationVisual {
		out = append(out, insight("**Visual Learner**: You prefer charts and graphs - find brokers with great presentations.", 0.80))
	} else {
		out = append(out, insight("**Clear Communication**: You value straightforward advice - choose transparent brokers.", 0.80))
	}

	out = append(out, insight("**Long-term Thinker**: You're building wealth over time - find brokers who share your vision.", 0.80))
	return out
}

// ParseNarrative keeps the "**Title**: text" lines of a narrated reply.
func ParseNarrative(text string) []models.Insight {
	var out []models.Insight
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "**") || !strings.Contains(line, ":") || len(line) >= narrativeMaxLength {
			continue
		}
		out = append(out, models.Insight{
			Type:       "personalized_insight",
			Text:       line,
			Confidence: 0.90,
			Source:     models.SourceAIEnhanced,
			Actionable: true,
		})
		if len(out) == MaxFinalInsights {
			break
		}
	}
	return out
}

// InsightGenerator produces the closing insights, narrated when possible.
type InsightGenerator struct {
	narrator InsightNarrator
	logger   logger.Logger
}

func NewInsightGenerator(narrator InsightNarrator, log logger.Logger) *InsightGenerator {
	if narrator == nil {
		narrator = NoNarrator{}
	}
	return &InsightGenerator{narrator: narrator, logger: log}
}

// FinalInsights never returns an empty list for a non-empty history.
func (g *InsightGenerator) FinalInsights(ctx context.Context, responses []models.ResponseRecord) []models.Insight {
	if len(responses) == 0 {
		return []models.Insight{}
	}

	var insights []models.Insight
	text, err := g.narrator.NarrateInsights(ctx, responses)
	if err != nil {
		g.logger.Warn("insight narration failed, using rule-based insights", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		insights = ParseNarrative(text)
	}

	if len(insights) < MaxFinalInsights {
		if len(insights) == 0 {
			metrics.QuizInsightFallbacks.Inc()
		}
		for _, fb := range FallbackInsights(AnalyzeResponses(responses)) {
			if len(insights) == MaxFinalInsights {
				break
			}
			insights = append(insights, fb)
		}
	}
	return insights
}
