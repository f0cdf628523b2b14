package quiz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"broker-match-workers/internal/common/logger"
	"broker-match-workers/internal/common/metrics"
	"broker-match-workers/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	CompletionReason         = "max_questions_reached"
	defaultCompletionMatches = 5
)

type Config struct {
	// CompletionMatches is how many ranked brokers the completion payload carries.
	CompletionMatches int
}

// Dependencies are the collaborators of the session state machine. Generator
// and Narrator are optional; the static fallbacks stand in for them.
type Dependencies struct {
	Store     SessionStore
	Responses ResponseStore
	Users     UserDirectory
	Matcher   Matcher
	Generator QuestionGenerator
	Narrator  InsightNarrator
	Logger    logger.Logger
}

// Step is what every state transition returns to the caller.
type Step struct {
	Session    *models.QuizSession `json:"session"`
	Question   *models.Question    `json:"question,omitempty"`
	Progress   models.Progress     `json:"progress"`
	Insights   []models.Insight    `json:"insights,omitempty"`
	Completion *Completion         `json:"completion,omitempty"`
}

type Completion struct {
	Completed       bool                 `json:"completed"`
	Reason          string               `json:"reason"`
	Insights        []models.Insight     `json:"insights"`
	Matches         []models.MatchResult `json:"matches"`
	Recommendations []string             `json:"recommendations"`
	Profile         Profile              `json:"profile"`
	Traits          Traits               `json:"traits"`
	CompletedAt     time.Time            `json:"completedAt"`
}

// InsightReport is the on-demand reading of a session.
type InsightReport struct {
	SessionID        string           `json:"sessionId"`
	UserID           string           `json:"userId,omitempty"`
	Profile          Profile          `json:"investmentProfile"`
	Traits           Traits           `json:"traits"`
	TotalResponses   int              `json:"totalResponses"`
	CompletionStatus string           `json:"completionStatus"`
	ConfidenceScore  float64          `json:"confidenceScore"`
	Insights         []models.Insight `json:"insights"`
	Recommendations  []string         `json:"recommendations"`
}

type Service struct {
	config    *Config
	store     SessionStore
	responses ResponseStore
	users     UserDirectory
	matcher   Matcher
	generator QuestionGenerator
	insights  *InsightGenerator
	planner   Planner
	logger    logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

func NewService(config *Config, deps Dependencies) *Service {
	if config == nil {
		config = &Config{}
	}
	if config.CompletionMatches <= 0 {
		config.CompletionMatches = defaultCompletionMatches
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	generator := deps.Generator
	if generator == nil {
		generator = FallbackGenerator{}
	}
	return &Service{
		config:    config,
		store:     deps.Store,
		responses: deps.Responses,
		users:     deps.Users,
		matcher:   deps.Matcher,
		generator: generator,
		insights:  NewInsightGenerator(deps.Narrator, log),
		logger:    log.WithFields(map[string]interface{}{"component": "quiz"}),
		tracer:    otel.Tracer("broker-match-workers/quiz"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// Start returns the user's active session, resumes one from persisted
// answers, or creates a fresh one.
func (s *Service) Start(ctx context.Context, userID string) (step *Step, err error) {
	ctx, span := s.tracer.Start(ctx, "quiz.Start", trace.WithAttributes(attribute.String("user.id", userID)))
	defer func() { endSpan(span, err) }()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	if session := s.activeSession(ctx, userID); session != nil {
		metrics.QuizSessionsStarted.WithLabelValues("existing").Inc()
		return s.step(session), nil
	}

	records, err := s.responses.ListResponses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list responses: %w", ErrPersistenceFailed, err)
	}
	if len(records) > 0 {
		return s.resume(ctx, userID, records)
	}
	return s.startFresh(ctx, userID)
}

// Resume rebuilds a session from the user's persisted answers.
func (s *Service) Resume(ctx context.Context, userID string) (step *Step, err error) {
	ctx, span := s.tracer.Start(ctx, "quiz.Resume", trace.WithAttributes(attribute.String("user.id", userID)))
	defer func() { endSpan(span, err) }()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	records, err := s.responses.ListResponses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list responses: %w", ErrPersistenceFailed, err)
	}
	if len(records) == 0 {
		return s.startFresh(ctx, userID)
	}
	return s.resume(ctx, userID, records)
}

// Restart clears the user's history and starts over. Safe to repeat.
func (s *Service) Restart(ctx context.Context, userID string) (step *Step, err error) {
	ctx, span := s.tracer.Start(ctx, "quiz.Restart", trace.WithAttributes(attribute.String("user.id", userID)))
	defer func() { endSpan(span, err) }()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	deleted, err := s.responses.DeleteResponses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: delete responses: %w", ErrPersistenceFailed, err)
	}

	activeID, err := s.store.ActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup active session: %w", ErrPersistenceFailed, err)
	}
	if activeID != "" {
		if err := s.store.Delete(ctx, activeID); err != nil {
			return nil, fmt.Errorf("%w: delete session: %w", ErrPersistenceFailed, err)
		}
		if err := s.store.ClearActive(ctx, userID); err != nil {
			return nil, fmt.Errorf("%w: clear active session: %w", ErrPersistenceFailed, err)
		}
	}

	s.logger.Info("quiz restarted", map[string]interface{}{
		"userId":           userID,
		"deletedResponses": deleted,
		"previousSession":  activeID,
	})
	return s.startFresh(ctx, userID)
}

// Submit records an answer to the question currently served by the session
// and either serves the next question or completes the quiz.
func (s *Service) Submit(ctx context.Context, sessionID string, raw interface{}) (step *Step, err error) {
	ctx, span := s.tracer.Start(ctx, "quiz.Submit", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer func() { endSpan(span, err) }()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %w", ErrPersistenceFailed, err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if session.IsCompleted() {
		return nil, fmt.Errorf("%w: %s", ErrSessionCompleted, sessionID)
	}
	span.SetAttributes(attribute.Int("quiz.slot", session.CurrentSlot))

	question := session.CurrentQuestion
	answer, err := ParseAnswer(question, raw)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := models.ResponseRecord{
		SessionID:    session.ID,
		Order:        session.CurrentSlot,
		Topic:        question.Topic,
		Format:       question.Format,
		Answer:       answer,
		QuestionText: question.Text,
		Timestamp:    now,
	}
	session.Responses = append(session.Responses, record)

	text := answer.String()
	fresh := ResponseInsights(text)
	session.Insights = append(session.Insights, fresh...)
	for _, area := range FocusAreasFor(text) {
		session.AddFocusArea(area)
	}
	session.UpdatedAt = now

	if len(session.Responses) >= models.TotalSlots {
		step, err := s.finish(ctx, session)
		if err != nil {
			return nil, err
		}
		metrics.QuizResponsesSubmitted.WithLabelValues(string(question.Format)).Inc()
		return step, nil
	}

	if err := s.responses.SaveResponse(ctx, session.UserID, record); err != nil {
		return nil, fmt.Errorf("%w: save response: %w", ErrPersistenceFailed, err)
	}

	session.CurrentSlot++
	session.Status = models.StatusInProgress
	s.serveQuestion(ctx, session)

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: save session: %w", ErrPersistenceFailed, err)
	}
	metrics.QuizResponsesSubmitted.WithLabelValues(string(question.Format)).Inc()

	step = s.step(session)
	step.Insights = fresh
	return step, nil
}

// Insights reports on a session without changing it.
func (s *Service) Insights(ctx context.Context, sessionID string) (*InsightReport, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %w", ErrPersistenceFailed, err)
	}
	if session == nil {
		return &InsightReport{
			SessionID:        sessionID,
			Profile:          NotAssessedProfile(),
			Traits:           DefaultTraits(),
			CompletionStatus: "no_data",
			Insights:         []models.Insight{},
			Recommendations:  []string{},
		}, nil
	}

	status := string(models.StatusInProgress)
	if session.IsCompleted() {
		status = string(models.StatusCompleted)
	}
	traits := AnalyzeResponses(session.Responses)
	return &InsightReport{
		SessionID:        session.ID,
		UserID:           session.UserID,
		Profile:          GenerateProfile(session.Responses),
		Traits:           traits,
		TotalResponses:   len(session.Responses),
		CompletionStatus: status,
		ConfidenceScore:  ReportConfidence(len(session.Responses)),
		Insights:         s.insights.FinalInsights(ctx, session.Responses),
		Recommendations:  GenerateRecommendations(traits, nil),
	}, nil
}

func (s *Service) startFresh(ctx context.Context, userID string) (*Step, error) {
	now := s.now()
	session := &models.QuizSession{
		ID:          s.newID(),
		UserID:      userID,
		Status:      models.StatusStarted,
		CurrentSlot: 1,
		Plan:        BuildPlan(),
		Responses:   []models.ResponseRecord{},
		Insights:    []models.Insight{},
		FocusAreas:  InitialFocusAreas(),
		StartedAt:   now,
		UpdatedAt:   now,
	}
	s.serveQuestion(ctx, session)

	if err := s.persistSession(ctx, session); err != nil {
		return nil, err
	}
	metrics.QuizSessionsStarted.WithLabelValues("fresh").Inc()
	s.logger.Info("quiz session started", map[string]interface{}{
		"userId":    userID,
		"sessionId": session.ID,
	})
	return s.step(session), nil
}

// resume rebuilds the session at slot N+1. Focus areas are re-derived from the
// last answer only.
func (s *Service) resume(ctx context.Context, userID string, records []models.ResponseRecord) (*Step, error) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Order < records[j].Order })
	last := records[len(records)-1]

	sessionID := last.SessionID
	if sessionID == "" {
		sessionID = s.newID()
	}
	now := s.now()
	session := &models.QuizSession{
		ID:         sessionID,
		UserID:     userID,
		Status:     models.StatusInProgress,
		Plan:       BuildPlan(),
		Responses:  records,
		Insights:   []models.Insight{},
		FocusAreas: InitialFocusAreas(),
		StartedAt:  records[0].Timestamp,
		UpdatedAt:  now,
	}
	for _, area := range FocusAreasFor(last.Answer.String()) {
		session.AddFocusArea(area)
	}
	for _, r := range records {
		session.Insights = append(session.Insights, ResponseInsights(r.Answer.String())...)
		if r.Format == models.FormatText {
			session.TextSlotsUsed++
		} else if r.Format != "" {
			session.SelectionSlotsUsed++
		}
	}

	if len(records) >= models.TotalSlots {
		return s.resumeCompleted(ctx, session)
	}

	session.CurrentSlot = len(records) + 1
	s.serveQuestion(ctx, session)
	if err := s.persistSession(ctx, session); err != nil {
		return nil, err
	}

	metrics.QuizSessionsStarted.WithLabelValues("resumed").Inc()
	s.logger.Info("quiz session resumed", map[string]interface{}{
		"userId":    userID,
		"sessionId": session.ID,
		"slot":      session.CurrentSlot,
	})
	return s.step(session), nil
}

func (s *Service) resumeCompleted(ctx context.Context, session *models.QuizSession) (*Step, error) {
	completedAt := session.Responses[len(session.Responses)-1].Timestamp
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	session.Status = models.StatusCompleted
	session.CurrentSlot = models.TotalSlots
	session.CompletedAt = &completedAt

	completion, err := s.complete(ctx, session, false)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: save session: %w", ErrPersistenceFailed, err)
	}
	return &Step{Session: session, Progress: session.Progress(), Completion: completion}, nil
}

func (s *Service) finish(ctx context.Context, session *models.QuizSession) (*Step, error) {
	now := s.now()
	session.Status = models.StatusCompleted
	session.CompletedAt = &now
	session.CurrentQuestion = nil

	completion, err := s.complete(ctx, session, true)
	if err != nil {
		return nil, err
	}

	var errs []error
	if err := s.store.Save(ctx, session); err != nil {
		errs = append(errs, fmt.Errorf("save session: %w", err))
	}
	if err := s.store.ClearActive(ctx, session.UserID); err != nil {
		errs = append(errs, fmt.Errorf("clear active session: %w", err))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, errors.Join(errs...))
	}

	metrics.QuizSessionsCompleted.Inc()
	s.logger.Info("quiz session completed", map[string]interface{}{
		"userId":    session.UserID,
		"sessionId": session.ID,
		"matches":   len(completion.Matches),
	})
	return &Step{Session: session, Progress: session.Progress(), Completion: completion}, nil
}

// complete runs the completion cascade. Write and ranking failures are
// reported together; insight problems only degrade to the fallbacks.
func (s *Service) complete(ctx context.Context, session *models.QuizSession, persist bool) (*Completion, error) {
	insights := s.insights.FinalInsights(ctx, session.Responses)

	var errs []error
	if persist {
		if err := s.responses.SaveResponses(ctx, session.UserID, session.Responses); err != nil {
			errs = append(errs, fmt.Errorf("save responses: %w", err))
		}
	}

	matches := []models.MatchResult{}
	if s.matcher != nil {
		ranked, err := s.matcher.Rank(ctx, session.UserID, s.config.CompletionMatches)
		if err != nil {
			errs = append(errs, fmt.Errorf("rank brokers: %w", err))
		} else if ranked != nil {
			matches = ranked
		}
	}

	if len(errs) > 0 {
		s.logger.Error("quiz completion failed", map[string]interface{}{
			"userId":    session.UserID,
			"sessionId": session.ID,
			"error":     errors.Join(errs...).Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, errors.Join(errs...))
	}

	traits := AnalyzeResponses(session.Responses)
	return &Completion{
		Completed:       true,
		Reason:          CompletionReason,
		Insights:        insights,
		Matches:         matches,
		Recommendations: GenerateRecommendations(traits, matches),
		Profile:         GenerateProfile(session.Responses),
		Traits:          traits,
		CompletedAt:     *session.CompletedAt,
	}, nil
}

// serveQuestion renders the session's current slot, falling back to the
// static table whenever the generator fails or returns something unusable.
func (s *Service) serveQuestion(ctx context.Context, session *models.QuizSession) {
	slot := s.planner.SlotFor(session)
	req := models.QuestionRequest{
		Slot:       slot,
		AvoidTexts: session.ServedQuestionTexts(),
		FocusAreas: append([]string(nil), session.FocusAreas...),
	}

	question, err := s.generator.GenerateQuestion(ctx, req)
	reason := ""
	switch {
	case err != nil:
		reason = "generation_error"
	case !usableQuestion(question, slot, req.AvoidTexts):
		reason = "unusable_question"
	}
	if reason != "" {
		fields := map[string]interface{}{"slot": slot.Order, "topic": slot.Topic, "reason": reason}
		if err != nil {
			fields["error"] = err.Error()
		}
		s.logger.Warn("question generation fell back to static table", fields)
		metrics.QuizQuestionFallbacks.WithLabelValues(reason).Inc()
		question = FallbackQuestion(slot)
	}

	question.ID = s.newID()
	question.Order = slot.Order
	question.Topic = slot.Topic
	question.Category = slot.Category
	question.Format = slot.Format
	if question.Weight == 0 {
		question.Weight = 1
	}
	if slot.Format == models.FormatScale && question.Scale == nil {
		scale := DefaultScale
		question.Scale = &scale
	}
	question.Context = adaptiveContext(slot, session.FocusAreas)

	if slot.Format == models.FormatText {
		session.TextSlotsUsed++
	} else {
		session.SelectionSlotsUsed++
	}
	session.CurrentQuestion = question
}

func usableQuestion(q *models.Question, slot models.QuestionSlot, avoid []string) bool {
	if q == nil || strings.TrimSpace(q.Text) == "" {
		return false
	}
	if q.Format != "" && q.Format != slot.Format {
		return false
	}
	switch slot.Format {
	case models.FormatSingleChoice, models.FormatMultipleChoice, models.FormatMultipleSelect:
		if len(q.Options) < 2 || !distinctOptions(q.Options) {
			return false
		}
	case models.FormatScale:
		if q.Scale != nil && !usableScale(*q.Scale) {
			return false
		}
	}
	for _, served := range avoid {
		if strings.EqualFold(strings.TrimSpace(served), strings.TrimSpace(q.Text)) {
			return false
		}
	}
	return true
}

// usableScale accepts ranges starting at 1 or above with at least two points.
func usableScale(scale models.ScaleOptions) bool {
	return scale.Min >= 1 && scale.Max > scale.Min
}

func distinctOptions(options []models.QuestionOption) bool {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		value := strings.ToLower(strings.TrimSpace(o.Value))
		if value == "" || seen[value] {
			return false
		}
		seen[value] = true
	}
	return true
}

func (s *Service) activeSession(ctx context.Context, userID string) *models.QuizSession {
	id, err := s.store.ActiveSession(ctx, userID)
	if err != nil || id == "" {
		if err != nil {
			s.logger.Warn("active session lookup failed", map[string]interface{}{"userId": userID, "error": err.Error()})
		}
		return nil
	}
	session, err := s.store.Get(ctx, id)
	if err != nil || session == nil || session.IsCompleted() || session.CurrentQuestion == nil {
		return nil
	}
	return session
}

func (s *Service) persistSession(ctx context.Context, session *models.QuizSession) error {
	if err := s.store.Save(ctx, session); err != nil {
		return fmt.Errorf("%w: save session: %w", ErrPersistenceFailed, err)
	}
	if err := s.store.SetActive(ctx, session.UserID, session.ID); err != nil {
		return fmt.Errorf("%w: mark session active: %w", ErrPersistenceFailed, err)
	}
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: empty user id", ErrUserNotFound)
	}
	if s.users == nil {
		return nil
	}
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: lookup user: %w", ErrPersistenceFailed, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return nil
}

func (s *Service) step(session *models.QuizSession) *Step {
	return &Step{
		Session:  session,
		Question: session.CurrentQuestion,
		Progress: session.Progress(),
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
