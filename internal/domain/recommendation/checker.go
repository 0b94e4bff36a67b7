package recommendation

import "fmt"

// ContraindicationResult is the outcome of evaluating a questionnaire's
// safety rules against a set of responses.
type ContraindicationResult struct {
	Blocked bool               `json:"has_contraindications"`
	Result  RecommendationType `json:"result,omitempty"`
	Message string             `json:"message,omitempty"`
}

// CheckContraindications evaluates the questionnaire's rules in declared
// order and returns the first match. Evaluation stops at the first rule whose
// condition holds; later rules are never consulted. A rule whose condition
// cannot be parsed fails the check with an error rather than being skipped;
// definitions are validated at load time, so an error here means the stored
// definition is corrupt.
func CheckContraindications(responses ResponseMap, q *Questionnaire) (ContraindicationResult, error) {
	for i := range q.Logic.Rules {
		rule := &q.Logic.Rules[i]
		cond, err := ParseCondition(rule.Condition)
		if err != nil {
			return ContraindicationResult{}, fmt.Errorf("contraindication rule %d: %w", i, err)
		}
		if cond.Eval(responses) {
			return ContraindicationResult{
				Blocked: true,
				Result:  rule.Result,
				Message: rule.Message,
			}, nil
		}
	}
	return ContraindicationResult{}, nil
}
