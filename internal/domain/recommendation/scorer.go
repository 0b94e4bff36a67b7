package recommendation

import "sort"

const (
	multiFactorCoeff  = 0.1
	scalarFactorCoeff = 0.2
	multiWeightCoeff  = 0.15
	scalarWeightCoeff = 0.1
)

// ScoreMedication computes a suitability score for one candidate medication.
// The score is seeded at the medication's intrinsic effectiveness (0-10), then
// adjusted by two additive passes: the medication's own suitability factors
// and the questionnaire's global scoring weights. An unanswered question
// contributes nothing in either pass. The result is clamped to [0, 10].
//
// Keys are visited in sorted order so repeated calls produce bit-identical
// floating point results.
func ScoreMedication(responses ResponseMap, med *Medication, q *Questionnaire) float64 {
	score := med.Effectiveness

	for _, qid := range sortedKeys(med.SuitabilityFactors) {
		ans, ok := responses[qid]
		if !ok {
			continue
		}
		factor := med.SuitabilityFactors[qid]
		if ans.Kind == AnswerMultiChoice {
			score += float64(len(ans.Multi)) * factor * multiFactorCoeff
		} else {
			score += factor * scalarFactorCoeff
		}
	}

	for _, qid := range sortedKeys(q.Logic.GlobalWeights) {
		ans, ok := responses[qid]
		if !ok {
			continue
		}
		weight := q.Logic.GlobalWeights[qid]
		if ans.Kind == AnswerMultiChoice {
			score += float64(len(ans.Multi)) * weight * multiWeightCoeff
		} else {
			score += weight * scalarWeightCoeff
		}
	}

	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
