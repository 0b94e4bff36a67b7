package questionnaire

import (
	"time"

	"github.com/google/uuid"

	"github.com/rxadvisor/rxadvisor/internal/domain/recommendation"
)

// Questionnaire is a stored, versioned questionnaire definition. The full
// declarative definition (questions, medications, scoring logic) lives in the
// Definition document; the top-level columns exist for listing and lookup.
type Questionnaire struct {
	ID          uuid.UUID                    `json:"id"`
	Key         string                       `json:"key"`
	Category    string                       `json:"category"`
	Title       string                       `json:"title"`
	Description string                       `json:"description,omitempty"`
	Status      string                       `json:"status"`
	Version     int                          `json:"version"`
	Definition  recommendation.Questionnaire `json:"definition"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

const (
	StatusDraft   = "draft"
	StatusActive  = "active"
	StatusRetired = "retired"
)
