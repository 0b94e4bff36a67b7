package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rxadvisor/rxadvisor/internal/domain/questionnaire"
	"github.com/rxadvisor/rxadvisor/internal/domain/recommendation"
)

// ErrQuestionnaireNotFound is returned by Submit when no active questionnaire
// exists for the requested key.
var ErrQuestionnaireNotFound = errors.New("no active questionnaire for key")

// QuestionnaireSource resolves the active questionnaire definition for a key.
// Satisfied by the questionnaire service.
type QuestionnaireSource interface {
	GetActiveByKey(ctx context.Context, key string) (*questionnaire.Questionnaire, error)
}

type Service struct {
	repo           Repository
	questionnaires QuestionnaireSource
}

func NewService(repo Repository, questionnaires QuestionnaireSource) *Service {
	return &Service{repo: repo, questionnaires: questionnaires}
}

// Submit runs a questionnaire submission end to end: resolve the active
// definition, coerce and validate the answers, generate the recommendation
// and persist the completed assessment.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*Assessment, error) {
	if req.QuestionnaireKey == "" {
		return nil, fmt.Errorf("questionnaire_key is required")
	}
	if req.PatientRef == "" {
		return nil, fmt.Errorf("patient_ref is required")
	}

	q, err := s.questionnaires.GetActiveByKey(ctx, req.QuestionnaireKey)
	if errors.Is(err, questionnaire.ErrNotFound) {
		return nil, fmt.Errorf("%w %q", ErrQuestionnaireNotFound, req.QuestionnaireKey)
	}
	if err != nil {
		return nil, fmt.Errorf("load questionnaire %q: %w", req.QuestionnaireKey, err)
	}

	responses, err := coerceResponses(req.Responses, &q.Definition)
	if err != nil {
		return nil, err
	}
	if err := checkRequired(responses, &q.Definition); err != nil {
		return nil, err
	}

	rec, err := recommendation.GenerateRecommendation(responses, &q.Definition)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		QuestionnaireID:      q.ID,
		QuestionnaireKey:     q.Key,
		QuestionnaireVersion: q.Version,
		PatientRef:           req.PatientRef,
		Status:               StatusCompleted,
		Responses:            responses,
		Result:               rec,
	}
	if rec.Type != recommendation.RecommendationApproved {
		a.Status = StatusBlocked
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// coerceResponses reconciles shape-inferred answers against the declared
// question kinds and rejects answers for questions the definition does not
// declare.
func coerceResponses(raw recommendation.ResponseMap, def *recommendation.Questionnaire) (recommendation.ResponseMap, error) {
	coerced := make(recommendation.ResponseMap, len(raw))
	for id, ans := range raw {
		question := def.Question(id)
		if question == nil {
			return nil, fmt.Errorf("unknown question %q", id)
		}
		c, err := ans.Coerce(question.Kind)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", id, err)
		}
		if question.Kind == recommendation.KindNumeric {
			if question.Min != nil && c.Number < *question.Min {
				return nil, fmt.Errorf("question %q: value below minimum %v", id, *question.Min)
			}
			if question.Max != nil && c.Number > *question.Max {
				return nil, fmt.Errorf("question %q: value above maximum %v", id, *question.Max)
			}
		}
		coerced[id] = c
	}
	return coerced, nil
}

// checkRequired enforces required questions, but only those visible given the
// answers collected so far. A question hidden by its display condition is
// never demanded.
func checkRequired(responses recommendation.ResponseMap, def *recommendation.Questionnaire) error {
	for i := range def.Questions {
		question := &def.Questions[i]
		if !question.Required {
			continue
		}
		if !recommendation.QuestionVisible(question, responses) {
			continue
		}
		if _, ok := responses[question.ID]; !ok {
			return fmt.Errorf("question %q is required", question.ID)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientRef string, limit, offset int) ([]*Assessment, int, error) {
	return s.repo.ListByPatient(ctx, patientRef, limit, offset)
}
