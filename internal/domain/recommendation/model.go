package recommendation

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// QuestionKind enumerates the answer shapes a question can declare.
type QuestionKind string

const (
	KindSingleChoice QuestionKind = "single_choice"
	KindMultiChoice  QuestionKind = "multi_choice"
	KindBoolean      QuestionKind = "boolean"
	KindNumeric      QuestionKind = "numeric"
	KindScale        QuestionKind = "scale" // ordinal 1-10
)

// AnswerKind tags the concrete shape carried by an Answer.
type AnswerKind string

const (
	AnswerChoice      AnswerKind = "choice"
	AnswerMultiChoice AnswerKind = "multi_choice"
	AnswerBool        AnswerKind = "boolean"
	AnswerNumber      AnswerKind = "number"
	AnswerScale       AnswerKind = "scale"
)

// Answer is a closed tagged variant over the response shapes a questionnaire
// can collect. Exactly one of the value fields is meaningful, selected by Kind.
type Answer struct {
	Kind   AnswerKind
	Choice string
	Multi  []string
	Bool   bool
	Number float64
	Scale  int
}

func ChoiceAnswer(v string) Answer    { return Answer{Kind: AnswerChoice, Choice: v} }
func MultiAnswer(vs ...string) Answer { return Answer{Kind: AnswerMultiChoice, Multi: vs} }
func BoolAnswer(v bool) Answer        { return Answer{Kind: AnswerBool, Bool: v} }
func NumberAnswer(v float64) Answer   { return Answer{Kind: AnswerNumber, Number: v} }
func ScaleAnswer(v int) Answer        { return Answer{Kind: AnswerScale, Scale: v} }

// scalarString renders the answer in the form rule conditions compare against.
// Multi-choice answers have no scalar form and return ok=false.
func (a Answer) scalarString() (string, bool) {
	switch a.Kind {
	case AnswerChoice:
		return a.Choice, true
	case AnswerBool:
		if a.Bool {
			return "Yes", true
		}
		return "No", true
	case AnswerNumber:
		return strconv.FormatFloat(a.Number, 'f', -1, 64), true
	case AnswerScale:
		return strconv.Itoa(a.Scale), true
	default:
		return "", false
	}
}

// MarshalJSON emits the underlying value in its natural JSON shape.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerChoice:
		return json.Marshal(a.Choice)
	case AnswerMultiChoice:
		if a.Multi == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Multi)
	case AnswerBool:
		return json.Marshal(a.Bool)
	case AnswerNumber:
		return json.Marshal(a.Number)
	case AnswerScale:
		return json.Marshal(a.Scale)
	default:
		return nil, fmt.Errorf("answer has no kind")
	}
}

// UnmarshalJSON infers the variant from the JSON shape: string, array of
// strings, boolean or number. Scale answers arrive as numbers and are
// narrowed by Coerce once the declared question kind is known.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = ChoiceAnswer(s)
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err == nil {
		*a = MultiAnswer(vs...)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = BoolAnswer(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = NumberAnswer(n)
		return nil
	}
	return fmt.Errorf("unsupported answer shape: %s", string(data))
}

// Coerce reconciles a shape-inferred answer against the question's declared
// kind. It narrows numbers to scales, accepts the legacy "Yes"/"No" string
// form for booleans, and rejects mismatched shapes.
func (a Answer) Coerce(kind QuestionKind) (Answer, error) {
	switch kind {
	case KindSingleChoice:
		if a.Kind == AnswerChoice {
			return a, nil
		}
	case KindMultiChoice:
		if a.Kind == AnswerMultiChoice {
			return a, nil
		}
	case KindBoolean:
		if a.Kind == AnswerBool {
			return a, nil
		}
		if a.Kind == AnswerChoice {
			switch a.Choice {
			case "Yes":
				return BoolAnswer(true), nil
			case "No":
				return BoolAnswer(false), nil
			}
		}
	case KindNumeric:
		if a.Kind == AnswerNumber {
			return a, nil
		}
	case KindScale:
		if a.Kind == AnswerNumber {
			n := int(a.Number)
			if float64(n) != a.Number || n < 1 || n > 10 {
				return Answer{}, fmt.Errorf("scale answer must be an integer between 1 and 10")
			}
			return ScaleAnswer(n), nil
		}
		if a.Kind == AnswerScale {
			return a, nil
		}
	}
	return Answer{}, fmt.Errorf("answer shape %s does not match question kind %s", a.Kind, kind)
}

// ResponseMap holds a respondent's answers keyed by question identifier.
type ResponseMap map[string]Answer

// DisplayCondition controls conditional show/hide of a question based on
// another question's answer.
type DisplayCondition struct {
	Mode       string `json:"mode"` // show_if or hide_if
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

const (
	DisplayShowIf = "show_if"
	DisplayHideIf = "hide_if"
)

// Question is a single questionnaire entry.
type Question struct {
	ID        string            `json:"id"`
	Kind      QuestionKind      `json:"kind"`
	Prompt    string            `json:"prompt"`
	Required  bool              `json:"required"`
	Category  string            `json:"category,omitempty"`
	Weight    float64           `json:"weight"`
	Options   []string          `json:"options,omitempty"`
	Display   *DisplayCondition `json:"display,omitempty"`
	Min       *float64          `json:"min,omitempty"`
	Max       *float64          `json:"max,omitempty"`
}

// EducationalInsert is informational content shown after a question. It never
// participates in scoring or contraindication checks.
type EducationalInsert struct {
	AfterQuestionID string `json:"after_question_id"`
	Title           string `json:"title"`
	Body            string `json:"body"`
}

// Medication is a candidate treatment with static reference data.
type Medication struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	GenericName        string             `json:"generic_name,omitempty"`
	Dosages            []string           `json:"dosages,omitempty"`
	Description        string             `json:"description,omitempty"`
	SideEffects        []string           `json:"side_effects,omitempty"`
	Contraindications  []string           `json:"contraindications,omitempty"`
	MonthlyCost        float64            `json:"monthly_cost"`
	Effectiveness      float64            `json:"effectiveness"` // 0-10, patient-independent
	SuitabilityFactors map[string]float64 `json:"suitability_factors,omitempty"`
}

// RecommendationType is the outcome of an assessment run.
type RecommendationType string

const (
	RecommendationApproved    RecommendationType = "approved"
	ConsultationRequired      RecommendationType = "consultation_required"
	MedicationContraindicated RecommendationType = "medication_contraindicated"
)

// ContraindicationRule is a safety predicate. Rules are evaluated in declared
// order and the first match wins.
type ContraindicationRule struct {
	Condition string             `json:"condition"`
	Result    RecommendationType `json:"result"`
	Message   string             `json:"message"`
}

// ScoringLogic carries the questionnaire-level recommendation configuration.
type ScoringLogic struct {
	GlobalWeights          map[string]float64     `json:"global_weights,omitempty"`
	Rules                  []ContraindicationRule `json:"rules,omitempty"`
	PrimaryConcernQuestion string                 `json:"primary_concern_question,omitempty"`
}

// Questionnaire is the full declarative definition for one clinical domain.
type Questionnaire struct {
	Key         string              `json:"key"`
	Category    string              `json:"category"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Questions   []Question          `json:"questions"`
	Inserts     []EducationalInsert `json:"inserts,omitempty"`
	Medications []Medication        `json:"medications"`
	Logic       ScoringLogic        `json:"logic"`
}

// Question returns the question with the given identifier, or nil.
func (q *Questionnaire) Question(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// QuestionVisible reports whether a question should be presented (and its
// required flag enforced) given the answers collected so far.
func QuestionVisible(q *Question, responses ResponseMap) bool {
	if q.Display == nil {
		return true
	}
	matched := false
	if ans, ok := responses[q.Display.QuestionID]; ok {
		if s, ok := ans.scalarString(); ok && s == q.Display.Value {
			matched = true
		}
		if ans.Kind == AnswerMultiChoice {
			for _, v := range ans.Multi {
				if v == q.Display.Value {
					matched = true
					break
				}
			}
		}
	}
	if q.Display.Mode == DisplayHideIf {
		return !matched
	}
	return matched
}

// Validate checks a definition for configuration errors before it is accepted
// for use: duplicate or empty question identifiers, unparseable rule
// conditions, invalid result tags, dangling display or primary-concern
// references, and out-of-range reference data. Dangling suitability-factor
// and global-weight keys are deliberately tolerated; they contribute nothing
// at evaluation time.
func (q *Questionnaire) Validate() error {
	if q.Key == "" {
		return fmt.Errorf("questionnaire key is required")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("questionnaire has no questions")
	}
	seen := make(map[string]bool, len(q.Questions))
	concerns := 0
	for i := range q.Questions {
		question := &q.Questions[i]
		if question.ID == "" {
			return fmt.Errorf("question %d: id is required", i)
		}
		if seen[question.ID] {
			return fmt.Errorf("duplicate question id %q", question.ID)
		}
		seen[question.ID] = true
		switch question.Kind {
		case KindSingleChoice, KindMultiChoice, KindBoolean, KindNumeric, KindScale:
		default:
			return fmt.Errorf("question %q: unknown kind %q", question.ID, question.Kind)
		}
		if question.Weight <= 0 {
			return fmt.Errorf("question %q: weight must be positive", question.ID)
		}
		if question.Min != nil && question.Max != nil && *question.Min > *question.Max {
			return fmt.Errorf("question %q: min exceeds max", question.ID)
		}
		if question.Category == "concerns" {
			concerns++
		}
	}
	for i := range q.Questions {
		question := &q.Questions[i]
		if question.Display == nil {
			continue
		}
		if question.Display.Mode != DisplayShowIf && question.Display.Mode != DisplayHideIf {
			return fmt.Errorf("question %q: display mode must be %s or %s", question.ID, DisplayShowIf, DisplayHideIf)
		}
		if !seen[question.Display.QuestionID] {
			return fmt.Errorf("question %q: display condition references unknown question %q", question.ID, question.Display.QuestionID)
		}
	}
	if len(q.Medications) == 0 {
		return fmt.Errorf("questionnaire has no medications")
	}
	for i := range q.Medications {
		med := &q.Medications[i]
		if med.ID == "" || med.Name == "" {
			return fmt.Errorf("medication %d: id and name are required", i)
		}
		if med.Effectiveness < 0 || med.Effectiveness > 10 {
			return fmt.Errorf("medication %q: effectiveness must be between 0 and 10", med.ID)
		}
		if med.MonthlyCost < 0 {
			return fmt.Errorf("medication %q: monthly cost must not be negative", med.ID)
		}
	}
	for i, rule := range q.Logic.Rules {
		if _, err := ParseCondition(rule.Condition); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if rule.Result != ConsultationRequired && rule.Result != MedicationContraindicated {
			return fmt.Errorf("rule %d: result must be %s or %s", i, ConsultationRequired, MedicationContraindicated)
		}
		if rule.Message == "" {
			return fmt.Errorf("rule %d: message is required", i)
		}
	}
	if q.Logic.PrimaryConcernQuestion != "" && !seen[q.Logic.PrimaryConcernQuestion] {
		return fmt.Errorf("primary concern question %q does not exist", q.Logic.PrimaryConcernQuestion)
	}
	if q.Logic.PrimaryConcernQuestion == "" && concerns > 0 {
		return fmt.Errorf("questionnaire tags %d question(s) with category \"concerns\" but logic.primary_concern_question is not set", concerns)
	}
	return nil
}
