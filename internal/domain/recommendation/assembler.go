package recommendation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoCandidates is returned when a recommendation is requested for a
// questionnaire that declares no candidate medications.
var ErrNoCandidates = errors.New("questionnaire has no candidate medications")

// blockedConfidence is reported when a contraindication rule fires: the rule
// match itself is near-certain, independent of any scoring.
const blockedConfidence = 95

const (
	minConfidence = 60
	maxConfidence = 95
)

// ScoredMedication pairs a candidate medication with its computed score.
type ScoredMedication struct {
	Medication Medication `json:"medication"`
	Score      float64    `json:"score"`
}

// Recommendation is the terminal result of one assessment run.
type Recommendation struct {
	Type         RecommendationType `json:"type"`
	Primary      *ScoredMedication  `json:"primary_recommendation,omitempty"`
	Alternatives []ScoredMedication `json:"alternative_options,omitempty"`
	Confidence   int                `json:"confidence"`
	Message      string             `json:"message,omitempty"`
	Reasoning    []string           `json:"reasoning,omitempty"`
}

// GenerateRecommendation runs the full engine: contraindication check first,
// then scoring, ranking and assembly. The computation is a pure function of
// its inputs; neither argument is mutated.
func GenerateRecommendation(responses ResponseMap, q *Questionnaire) (*Recommendation, error) {
	check, err := CheckContraindications(responses, q)
	if err != nil {
		return nil, err
	}
	if check.Blocked {
		return &Recommendation{
			Type:       check.Result,
			Confidence: blockedConfidence,
			Message:    check.Message,
		}, nil
	}

	if len(q.Medications) == 0 {
		return nil, ErrNoCandidates
	}

	scored := make([]ScoredMedication, len(q.Medications))
	for i := range q.Medications {
		scored[i] = ScoredMedication{
			Medication: q.Medications[i],
			Score:      ScoreMedication(responses, &q.Medications[i], q),
		}
	}
	// Stable sort: ties keep the questionnaire's declared order.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	primary := scored[0]
	alternatives := scored[1:]
	if len(alternatives) > 2 {
		alternatives = alternatives[:2]
	}

	confidence := int(math.Round(primary.Score * 10))
	if confidence < minConfidence {
		confidence = minConfidence
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	return &Recommendation{
		Type:         RecommendationApproved,
		Primary:      &primary,
		Alternatives: alternatives,
		Confidence:   confidence,
		Reasoning:    buildReasoning(responses, q, &primary),
	}, nil
}

// buildReasoning produces the human-readable explanation shown alongside an
// approved recommendation.
func buildReasoning(responses ResponseMap, q *Questionnaire, primary *ScoredMedication) []string {
	med := &primary.Medication
	reasoning := []string{
		fmt.Sprintf("%s is the best match for your responses, with a suitability score of %.1f out of 10.", med.Name, primary.Score),
		fmt.Sprintf("%s has a base effectiveness rating of %.1f/10.", med.Name, med.Effectiveness),
		fmt.Sprintf("Estimated monthly cost: $%.2f.", med.MonthlyCost),
	}
	if qid := q.Logic.PrimaryConcernQuestion; qid != "" {
		if ans, ok := responses[qid]; ok {
			if s, ok := ans.scalarString(); ok && s != "" {
				reasoning = append(reasoning,
					fmt.Sprintf("Your primary concern, %q, was factored into this recommendation.", s))
			}
		}
	}
	return reasoning
}
