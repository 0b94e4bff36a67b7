package questionnaire

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups when no matching questionnaire exists.
// Infrastructure failures are returned as-is and must not be conflated with it.
var ErrNotFound = errors.New("questionnaire not found")

type Repository interface {
	Create(ctx context.Context, q *Questionnaire) error
	GetByID(ctx context.Context, id uuid.UUID) (*Questionnaire, error)
	GetActiveByKey(ctx context.Context, key string) (*Questionnaire, error)
	Update(ctx context.Context, q *Questionnaire) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Questionnaire, int, error)
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]*Questionnaire, int, error)
}
