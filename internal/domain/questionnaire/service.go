package questionnaire

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validStatuses = map[string]bool{
	StatusDraft: true, StatusActive: true, StatusRetired: true,
}

// Create validates and stores a new questionnaire. The embedded definition is
// checked in full before anything is written: a definition that fails
// validation is never available for assessments.
func (s *Service) Create(ctx context.Context, q *Questionnaire) error {
	if q.Key == "" {
		q.Key = q.Definition.Key
	}
	if q.Category == "" {
		q.Category = q.Definition.Category
	}
	if q.Title == "" {
		q.Title = q.Definition.Title
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	if !validStatuses[q.Status] {
		return fmt.Errorf("invalid status: %s", q.Status)
	}
	if q.Key != q.Definition.Key {
		return fmt.Errorf("key %q does not match definition key %q", q.Key, q.Definition.Key)
	}
	if err := q.Definition.Validate(); err != nil {
		return err
	}
	q.Version = 1
	return s.repo.Create(ctx, q)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Questionnaire, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActiveByKey returns the latest active version for a key. This is the
// lookup assessments use.
func (s *Service) GetActiveByKey(ctx context.Context, key string) (*Questionnaire, error) {
	return s.repo.GetActiveByKey(ctx, key)
}

// Update replaces the stored definition and bumps the version. Retired
// questionnaires are immutable.
func (s *Service) Update(ctx context.Context, q *Questionnaire) error {
	existing, err := s.repo.GetByID(ctx, q.ID)
	if err != nil {
		return err
	}
	if existing.Status == StatusRetired {
		return fmt.Errorf("questionnaire %s is retired", q.ID)
	}
	if q.Status == "" {
		q.Status = existing.Status
	}
	if !validStatuses[q.Status] {
		return fmt.Errorf("invalid status: %s", q.Status)
	}
	if q.Key == "" {
		q.Key = existing.Key
	}
	if q.Category == "" {
		q.Category = existing.Category
	}
	if q.Title == "" {
		q.Title = existing.Title
	}
	if q.Key != q.Definition.Key {
		return fmt.Errorf("key %q does not match definition key %q", q.Key, q.Definition.Key)
	}
	if err := q.Definition.Validate(); err != nil {
		return err
	}
	q.Version = existing.Version + 1
	return s.repo.Update(ctx, q)
}

// SetStatus moves a questionnaire through its lifecycle. Allowed transitions
// are draft to active and active to retired.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Questionnaire, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case q.Status == StatusDraft && status == StatusActive:
	case q.Status == StatusActive && status == StatusRetired:
	default:
		return nil, fmt.Errorf("cannot move questionnaire from %s to %s", q.Status, status)
	}
	q.Status = status
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if q.Status == StatusActive {
		return fmt.Errorf("active questionnaire cannot be deleted, retire it first")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Questionnaire, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByCategory(ctx context.Context, category string, limit, offset int) ([]*Questionnaire, int, error) {
	return s.repo.ListByCategory(ctx, category, limit, offset)
}
