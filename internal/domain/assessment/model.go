package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/rxadvisor/rxadvisor/internal/domain/recommendation"
)

// Assessment is one completed questionnaire run: the answers as submitted and
// the recommendation produced from them. The questionnaire key and version are
// recorded so the result can be traced back to the exact definition that
// produced it.
type Assessment struct {
	ID                   uuid.UUID                      `json:"id"`
	QuestionnaireID      uuid.UUID                      `json:"questionnaire_id"`
	QuestionnaireKey     string                         `json:"questionnaire_key"`
	QuestionnaireVersion int                            `json:"questionnaire_version"`
	PatientRef           string                         `json:"patient_ref"`
	Status               string                         `json:"status"`
	Responses            recommendation.ResponseMap     `json:"responses"`
	Result               *recommendation.Recommendation `json:"result"`
	CreatedAt            time.Time                      `json:"created_at"`
	UpdatedAt            time.Time                      `json:"updated_at"`
}

const (
	StatusCompleted = "completed"
	StatusBlocked   = "blocked"
)

// SubmitRequest is the submission payload. Responses arrive shape-inferred
// and are coerced against the questionnaire's declared question kinds.
type SubmitRequest struct {
	QuestionnaireKey string                     `json:"questionnaire_key"`
	PatientRef       string                     `json:"patient_ref"`
	Responses        recommendation.ResponseMap `json:"responses"`
}
