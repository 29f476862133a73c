package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/data/db"
	"github.com/yungbote/mindcheck-backend/internal/data/repos"
	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
	"github.com/yungbote/mindcheck-backend/internal/engine"
	"github.com/yungbote/mindcheck-backend/internal/observability"
	"github.com/yungbote/mindcheck-backend/internal/platform/apierr"
	"github.com/yungbote/mindcheck-backend/internal/platform/ctxutil"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

const defaultHistoryLimit = 50

type NextQuestionResult struct {
	ConsultationID uuid.UUID                `json:"consultation_id"`
	Status         types.ConsultationStatus `json:"status"`
	Progress       int                      `json:"progress"`
	Question       *engine.Question         `json:"question,omitempty"`
	// Exhausted means no question was left and the consultation was finalized.
	Exhausted bool                 `json:"exhausted"`
	Diagnosis *types.UserDiagnosis `json:"diagnosis,omitempty"`
}

type AnswerResult struct {
	ConsultationID   uuid.UUID                 `json:"consultation_id"`
	Answer           *types.ConsultationAnswer `json:"answer"`
	CurrentSymptoms  []string                  `json:"current_symptoms"`
	Progress         int                       `json:"progress"`
	Status           types.ConsultationStatus  `json:"status"`
	NextQuestion     *engine.Question          `json:"next_question,omitempty"`
	Completed        bool                      `json:"completed"`
	CompletionReason string                    `json:"completion_reason,omitempty"`
	Diagnosis        *types.UserDiagnosis      `json:"diagnosis,omitempty"`
}

type AbandonResult struct {
	ConsultationID uuid.UUID                `json:"consultation_id"`
	Status         types.ConsultationStatus `json:"status"`
	// Noop is set when the consultation had already finished.
	Noop bool `json:"noop"`
}

type Summary struct {
	ConsultationID   uuid.UUID                   `json:"consultation_id"`
	Status           types.ConsultationStatus    `json:"status"`
	FinalDiagnosis   *types.UserDiagnosis        `json:"final_diagnosis,omitempty"`
	ReportedSymptoms []string                    `json:"reported_symptoms"`
	SymptomsDetails  []types.SymptomDetail       `json:"symptoms_details"`
	TotalQuestions   int                         `json:"total_questions"`
	Progress         int                         `json:"progress"`
	Recommendations  []string                    `json:"recommendations"`
	Candidates       []types.CandidateSnapshot   `json:"candidates,omitempty"`
	Answers          []*types.ConsultationAnswer `json:"answers"`
	StartedAt        time.Time                   `json:"started_at"`
	CompletedAt      *time.Time                  `json:"completed_at,omitempty"`
	AbandonedAt      *time.Time                  `json:"abandoned_at,omitempty"`
}

// ConsultationService runs consultations for the caller found in the context.
type ConsultationService interface {
	Start(ctx context.Context) (*types.Consultation, error)
	List(ctx context.Context, limit int) ([]*types.Consultation, error)
	NextQuestion(ctx context.Context, id uuid.UUID) (*NextQuestionResult, error)
	SubmitAnswer(ctx context.Context, id uuid.UUID, symptomCode, severity string) (*AnswerResult, error)
	Abandon(ctx context.Context, id uuid.UUID) (*AbandonResult, error)
	Summary(ctx context.Context, id uuid.UUID) (*Summary, error)
	ListDiagnoses(ctx context.Context, limit int) ([]*types.UserDiagnosis, error)
}

type consultationService struct {
	db               *gorm.DB
	log              *logger.Logger
	engine           *engine.Engine
	cache            KnowledgeBaseCache
	locker           SessionLocker
	lockWait         time.Duration
	consultationRepo repos.ConsultationRepo
	answerRepo       repos.AnswerRepo
	diagnosisRepo    repos.DiagnosisRepo
	symptomRepo      repos.SymptomRepo
	now              func() time.Time
}

func NewConsultationService(
	db *gorm.DB,
	log *logger.Logger,
	eng *engine.Engine,
	cache KnowledgeBaseCache,
	locker SessionLocker,
	lockWait time.Duration,
	consultationRepo repos.ConsultationRepo,
	answerRepo repos.AnswerRepo,
	diagnosisRepo repos.DiagnosisRepo,
	symptomRepo repos.SymptomRepo,
) ConsultationService {
	if lockWait <= 0 {
		lockWait = 10 * time.Second
	}
	return &consultationService{
		db:               db,
		log:              log.With("service", "ConsultationService"),
		engine:           eng,
		cache:            cache,
		locker:           locker,
		lockWait:         lockWait,
		consultationRepo: consultationRepo,
		answerRepo:       answerRepo,
		diagnosisRepo:    diagnosisRepo,
		symptomRepo:      symptomRepo,
		now:              time.Now,
	}
}

func (s *consultationService) Start(ctx context.Context) (_ *types.Consultation, err error) {
	ctx, span := observability.Tracer().Start(ctx, "consultation.Start")
	defer func() { endSpan(span, err) }()

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	// A consultation over a broken knowledge base could never finish.
	if _, err := s.snapshot(ctx); err != nil {
		return nil, err
	}
	c := &types.Consultation{
		UserID:          userID,
		Status:          types.StatusInProgress,
		CurrentSymptoms: datatypes.JSONSlice[string]{},
		StartedAt:       s.now().UTC(),
	}
	if err := s.consultationRepo.Create(dbctx.Context{Ctx: ctx}, c); err != nil {
		s.log.Error("create consultation failed", "error", err)
		return nil, fmt.Errorf("create consultation: %w", err)
	}
	span.SetAttributes(attribute.String("consultation.id", c.ID.String()))
	s.log.Info("consultation started", "consultation_id", c.ID, "user_id", userID)
	return c, nil
}

func (s *consultationService) List(ctx context.Context, limit int) ([]*types.Consultation, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.consultationRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, historyLimit(limit))
}

func (s *consultationService) ListDiagnoses(ctx context.Context, limit int) ([]*types.UserDiagnosis, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.diagnosisRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, historyLimit(limit))
}

// NextQuestion proposes the next question. When none is left the
// consultation is finalized and the result reports Exhausted.
func (s *consultationService) NextQuestion(ctx context.Context, id uuid.UUID) (_ *NextQuestionResult, err error) {
	ctx, span := observability.Tracer().Start(ctx, "consultation.NextQuestion",
		trace.WithAttributes(attribute.String("consultation.id", id.String())))
	defer func() { endSpan(span, err) }()

	var out *NextQuestionResult
	err = s.mutate(ctx, id, true, func(dbc dbctx.Context, kb *engine.KnowledgeBase, c *types.Consultation, sess *engine.Session) error {
		q, err := s.engine.NextQuestion(kb, sess)
		if err == nil {
			out = &NextQuestionResult{ConsultationID: c.ID, Status: c.Status, Progress: c.Progress, Question: q}
			return nil
		}
		if !errors.Is(err, engine.ErrExhausted) {
			return translateEngineError(err)
		}
		res, err := s.engine.Finalize(kb, sess)
		if err != nil {
			return translateEngineError(err)
		}
		diag, err := s.complete(dbc, kb, c, sess, res)
		if err != nil {
			return err
		}
		out = &NextQuestionResult{
			ConsultationID: c.ID,
			Status:         c.Status,
			Progress:       c.Progress,
			Exhausted:      true,
			Diagnosis:      diag,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *consultationService) SubmitAnswer(ctx context.Context, id uuid.UUID, symptomCode, severity string) (_ *AnswerResult, err error) {
	ctx, span := observability.Tracer().Start(ctx, "consultation.SubmitAnswer",
		trace.WithAttributes(attribute.String("consultation.id", id.String())))
	defer func() { endSpan(span, err) }()

	// Validity is checked by the engine so errors surface in a fixed order.
	sev := types.NormalizeSeverity(severity)

	var out *AnswerResult
	err = s.mutate(ctx, id, true, func(dbc dbctx.Context, kb *engine.KnowledgeBase, c *types.Consultation, sess *engine.Session) error {
		seq := len(sess.Answers) + 1
		step, err := s.engine.Answer(kb, sess, symptomCode, sev)
		if err != nil {
			return translateEngineError(err)
		}
		row := answerRow(c.ID, seq, step.Recorded)
		if err := s.answerRepo.Append(dbc, row); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Conflict(CodeConcurrentUpdate, errConcurrentUpdate)
			}
			return fmt.Errorf("append answer: %w", err)
		}
		out = &AnswerResult{
			ConsultationID:   c.ID,
			Answer:           row,
			NextQuestion:     step.Next,
			Completed:        step.Completed,
			CompletionReason: step.CompletionReason,
		}
		if step.Completed {
			diag, err := s.complete(dbc, kb, c, sess, step.Diagnosis)
			if err != nil {
				return err
			}
			out.Diagnosis = diag
		} else if err := s.save(dbc, c, sess); err != nil {
			return err
		}
		out.CurrentSymptoms = append([]string{}, c.CurrentSymptoms...)
		out.Progress = c.Progress
		out.Status = c.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Completed {
		s.log.Info("consultation completed", "consultation_id", id, "reason", out.CompletionReason)
	}
	return out, nil
}

// Abandon is a no-op for consultations that already finished.
func (s *consultationService) Abandon(ctx context.Context, id uuid.UUID) (_ *AbandonResult, err error) {
	ctx, span := observability.Tracer().Start(ctx, "consultation.Abandon",
		trace.WithAttributes(attribute.String("consultation.id", id.String())))
	defer func() { endSpan(span, err) }()

	var out *AbandonResult
	err = s.mutate(ctx, id, false, func(dbc dbctx.Context, _ *engine.KnowledgeBase, c *types.Consultation, sess *engine.Session) error {
		if !sess.Abandon() {
			out = &AbandonResult{ConsultationID: c.ID, Status: c.Status, Noop: true}
			return nil
		}
		at := s.now().UTC()
		c.AbandonedAt = &at
		if err := s.save(dbc, c, sess); err != nil {
			return err
		}
		out = &AbandonResult{ConsultationID: c.ID, Status: c.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Noop {
		s.log.Info("consultation abandoned", "consultation_id", id)
	}
	return out, nil
}

func (s *consultationService) Summary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, err := s.owned(dbc, id)
	if err != nil {
		return nil, err
	}
	answers, err := s.answerRepo.ListByConsultation(dbc, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	out := &Summary{
		ConsultationID:   c.ID,
		Status:           c.Status,
		ReportedSymptoms: append([]string{}, c.CurrentSymptoms...),
		TotalQuestions:   len(answers),
		Progress:         c.Progress,
		Answers:          answers,
		StartedAt:        c.StartedAt,
		CompletedAt:      c.CompletedAt,
		AbandonedAt:      c.AbandonedAt,
	}

	var diag *types.UserDiagnosis
	if c.Status == types.StatusCompleted {
		if diag, err = s.diagnosisRepo.GetByConsultation(dbc, c.ID); err != nil {
			return nil, fmt.Errorf("load diagnosis: %w", err)
		}
	}
	if diag != nil {
		out.SymptomsDetails = diag.SymptomsDetails
		out.Candidates = diag.Candidates
		out.Recommendations = (&engine.Result{Recommendation: diag.Recommendation}).Recommendations()
		if diag.HasDisorder() {
			out.FinalDiagnosis = diag
		}
		return out, nil
	}

	details, err := s.liveDetails(dbc, answers)
	if err != nil {
		return nil, err
	}
	out.SymptomsDetails = details
	out.Recommendations = (*engine.Result)(nil).Recommendations()
	return out, nil
}

type mutation func(dbc dbctx.Context, kb *engine.KnowledgeBase, c *types.Consultation, sess *engine.Session) error

// mutate serializes fn against other writers of the same consultation. The
// knowledge base snapshot is taken before the transaction opens.
func (s *consultationService) mutate(ctx context.Context, id uuid.UUID, needKB bool, fn mutation) error {
	if _, err := callerID(ctx); err != nil {
		return err
	}
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	unlock, err := s.locker.Lock(lockCtx, id)
	cancel()
	if err != nil {
		return translateEngineError(err)
	}
	defer unlock()

	var kb *engine.KnowledgeBase
	if needKB {
		if kb, err = s.snapshot(ctx); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		c, err := s.owned(dbc, id)
		if err != nil {
			return err
		}
		answers, err := s.answerRepo.ListByConsultation(dbc, c.ID)
		if err != nil {
			return fmt.Errorf("list answers: %w", err)
		}
		return fn(dbc, kb, c, sessionFrom(c, answers))
	})
}

// complete persists the diagnosis snapshot and the completed state together.
func (s *consultationService) complete(dbc dbctx.Context, kb *engine.KnowledgeBase, c *types.Consultation, sess *engine.Session, res *engine.Result) (*types.UserDiagnosis, error) {
	at := s.now().UTC()
	c.CompletedAt = &at
	diag := diagnosisFrom(kb, c, sess, res, at)
	if err := s.diagnosisRepo.Create(dbc, diag); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict(CodeConcurrentUpdate, errConcurrentUpdate)
		}
		return nil, fmt.Errorf("create diagnosis: %w", err)
	}
	if err := s.save(dbc, c, sess); err != nil {
		return nil, err
	}
	return diag, nil
}

func (s *consultationService) save(dbc dbctx.Context, c *types.Consultation, sess *engine.Session) error {
	c.Status = sess.Status
	c.Progress = sess.Progress
	c.CurrentSymptoms = datatypes.JSONSlice[string](append([]string{}, sess.CurrentSymptoms...))
	c.QuestionCount = len(sess.Answers)
	ok, err := s.consultationRepo.SaveState(dbc, c)
	if err != nil {
		return fmt.Errorf("save consultation: %w", err)
	}
	if !ok {
		s.log.Warn("stale consultation write rejected", "consultation_id", c.ID, "version", c.Version)
		return apierr.Conflict(CodeConcurrentUpdate, errConcurrentUpdate)
	}
	return nil
}

func (s *consultationService) owned(dbc dbctx.Context, id uuid.UUID) (*types.Consultation, error) {
	userID, err := callerID(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.consultationRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load consultation: %w", err)
	}
	// Other users' consultations are indistinguishable from missing ones.
	if c == nil || c.UserID != userID {
		return nil, apierr.NotFound("consultation")
	}
	return c, nil
}

func (s *consultationService) snapshot(ctx context.Context) (*engine.KnowledgeBase, error) {
	kb, err := s.cache.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrMisconfigured) {
			s.log.Error("knowledge base misconfigured", "error", err)
		}
		return nil, translateEngineError(err)
	}
	return kb, nil
}

func (s *consultationService) liveDetails(dbc dbctx.Context, answers []*types.ConsultationAnswer) ([]types.SymptomDetail, error) {
	var codes []string
	for _, a := range answers {
		if a.Severity.Positive() {
			codes = append(codes, a.SymptomCode)
		}
	}
	out := make([]types.SymptomDetail, 0, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	syms, err := s.symptomRepo.GetByCodes(dbc, codes)
	if err != nil {
		return nil, fmt.Errorf("load symptoms: %w", err)
	}
	desc := make(map[string]string, len(syms))
	for _, sym := range syms {
		desc[sym.Code] = sym.Description
	}
	for _, a := range answers {
		if !a.Severity.Positive() {
			continue
		}
		out = append(out, types.SymptomDetail{
			Code:        a.SymptomCode,
			Description: desc[a.SymptomCode],
			Category:    a.Category,
			Severity:    a.Severity,
			Weight:      a.Weight,
		})
	}
	return out, nil
}

func sessionFrom(c *types.Consultation, answers []*types.ConsultationAnswer) *engine.Session {
	sess := &engine.Session{
		Status:          c.Status,
		Answers:         make([]engine.Answer, 0, len(answers)),
		CurrentSymptoms: append([]string{}, c.CurrentSymptoms...),
		Progress:        c.Progress,
	}
	for _, a := range answers {
		sess.Answers = append(sess.Answers, engine.Answer{
			Code:       a.SymptomCode,
			Severity:   a.Severity,
			Weight:     a.Weight,
			Priority:   a.Priority,
			RuleCode:   a.RuleCode,
			Category:   a.Category,
			Type:       engine.QuestionType(a.QuestionType),
			AnsweredAt: a.AnsweredAt,
		})
	}
	return sess
}

func answerRow(consultationID uuid.UUID, seq int, a engine.Answer) *types.ConsultationAnswer {
	return &types.ConsultationAnswer{
		ConsultationID: consultationID,
		Seq:            seq,
		SymptomCode:    a.Code,
		Severity:       a.Severity,
		Weight:         a.Weight,
		Priority:       a.Priority,
		RuleCode:       a.RuleCode,
		Category:       a.Category,
		QuestionType:   string(a.Type),
		AnsweredAt:     a.AnsweredAt,
	}
}

// diagnosisFrom copies everything a later knowledge base edit could change.
func diagnosisFrom(kb *engine.KnowledgeBase, c *types.Consultation, sess *engine.Session, res *engine.Result, at time.Time) *types.UserDiagnosis {
	details := make([]types.SymptomDetail, 0, len(sess.CurrentSymptoms))
	for _, a := range sess.Answers {
		if !a.Severity.Positive() {
			continue
		}
		d := types.SymptomDetail{Code: a.Code, Category: a.Category, Severity: a.Severity, Weight: a.Weight}
		if sym := kb.Symptom(a.Code); sym != nil {
			d.Description = sym.Description
		}
		if d.Category == "" {
			d.Category = knowledge.SymptomCategory(a.Code)
		}
		details = append(details, d)
	}
	diag := &types.UserDiagnosis{
		UserID:          c.UserID,
		ConsultationID:  c.ID,
		Recommendation:  res.Recommendation,
		SymptomsDetails: datatypes.JSONSlice[types.SymptomDetail](details),
		Candidates:      datatypes.JSONSlice[types.CandidateSnapshot](res.Candidates),
		DiagnosedAt:     at,
	}
	if res.IsDiagnosis() {
		id := res.Disorder.ID
		diag.MentalDisorderID = &id
		diag.DisorderCode = res.Disorder.Code
		diag.DisorderName = res.Disorder.Name
		diag.RuleCode = res.Rule.RuleCode
		diag.ConfidenceLevel = res.Confidence
	}
	return diag
}

func callerID(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, CodeUnauthorized, errors.New("no authenticated user"))
	}
	return id, nil
}

func historyLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return defaultHistoryLimit
	}
	return limit
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, apierr.CodeOf(err))
	}
	span.End()
}
