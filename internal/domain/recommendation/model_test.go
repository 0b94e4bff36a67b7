package recommendation

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func validDefinition() *Questionnaire {
	return &Questionnaire{
		Key:      "hair-loss",
		Category: "hair_loss",
		Title:    "Hair Loss Assessment",
		Questions: []Question{
			{ID: "gender", Kind: KindSingleChoice, Prompt: "Gender", Required: true, Weight: 1.0},
			{ID: "duration", Kind: KindSingleChoice, Prompt: "How long?", Weight: 1.5},
			{ID: "concern", Kind: KindSingleChoice, Prompt: "Biggest concern?", Category: "concerns", Weight: 1.2},
		},
		Medications: []Medication{
			{ID: "fin", Name: "Finasteride", Effectiveness: 8.5, MonthlyCost: 25},
		},
		Logic: ScoringLogic{
			Rules: []ContraindicationRule{
				{Condition: `gender equals "Female"`, Result: ConsultationRequired, Message: "Consultation required."},
			},
			PrimaryConcernQuestion: "concern",
		},
	}
}

func TestQuestionnaireValidate_OK(t *testing.T) {
	if err := validDefinition().Validate(); err != nil {
		t.Fatalf("valid definition rejected: %v", err)
	}
}

func TestQuestionnaireValidate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Questionnaire)
		wantSub string
	}{
		{"missing key", func(q *Questionnaire) { q.Key = "" }, "key is required"},
		{"no questions", func(q *Questionnaire) { q.Questions = nil }, "no questions"},
		{"duplicate question id", func(q *Questionnaire) { q.Questions[1].ID = "gender" }, "duplicate question id"},
		{"unknown kind", func(q *Questionnaire) { q.Questions[0].Kind = "essay" }, "unknown kind"},
		{"negative weight", func(q *Questionnaire) { q.Questions[0].Weight = -1 }, "weight"},
		{"zero weight", func(q *Questionnaire) { q.Questions[0].Weight = 0 }, "weight must be positive"},
		{"no medications", func(q *Questionnaire) { q.Medications = nil }, "no medications"},
		{"bad bounds", func(q *Questionnaire) {
			lo, hi := 10.0, 5.0
			q.Questions[0].Min, q.Questions[0].Max = &lo, &hi
		}, "min exceeds max"},
		{"dangling display reference", func(q *Questionnaire) {
			q.Questions[1].Display = &DisplayCondition{Mode: DisplayShowIf, QuestionID: "ghost", Value: "x"}
		}, "unknown question"},
		{"bad display mode", func(q *Questionnaire) {
			q.Questions[1].Display = &DisplayCondition{Mode: "sometimes", QuestionID: "gender", Value: "x"}
		}, "display mode"},
		{"effectiveness out of range", func(q *Questionnaire) { q.Medications[0].Effectiveness = 11 }, "effectiveness"},
		{"unparseable rule", func(q *Questionnaire) { q.Logic.Rules[0].Condition = "gibberish" }, "invalid condition"},
		{"bad rule result", func(q *Questionnaire) { q.Logic.Rules[0].Result = "rejected" }, "result must be"},
		{"missing rule message", func(q *Questionnaire) { q.Logic.Rules[0].Message = "" }, "message is required"},
		{"dangling concern reference", func(q *Questionnaire) { q.Logic.PrimaryConcernQuestion = "ghost" }, "does not exist"},
		{"concerns tag without declaration", func(q *Questionnaire) { q.Logic.PrimaryConcernQuestion = "" }, "primary_concern_question"},
	}
	for _, tc := range cases {
		q := validDefinition()
		tc.mutate(q)
		err := q.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantSub) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.wantSub)
		}
	}
}

func TestAnswerJSONRoundTrip(t *testing.T) {
	responses := ResponseMap{
		"gender":   ChoiceAnswer("Female"),
		"symptoms": MultiAnswer("a", "b"),
		"smoker":   BoolAnswer(false),
		"weight":   NumberAnswer(82.5),
	}
	data, err := json.Marshal(responses)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ResponseMap
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded["gender"], ChoiceAnswer("Female")) {
		t.Errorf("gender decoded as %+v", decoded["gender"])
	}
	if !reflect.DeepEqual(decoded["symptoms"], MultiAnswer("a", "b")) {
		t.Errorf("symptoms decoded as %+v", decoded["symptoms"])
	}
	if !reflect.DeepEqual(decoded["smoker"], BoolAnswer(false)) {
		t.Errorf("smoker decoded as %+v", decoded["smoker"])
	}
	if !reflect.DeepEqual(decoded["weight"], NumberAnswer(82.5)) {
		t.Errorf("weight decoded as %+v", decoded["weight"])
	}
}

func TestAnswerCoerce(t *testing.T) {
	if _, err := ChoiceAnswer("x").Coerce(KindMultiChoice); err == nil {
		t.Error("choice answer should not satisfy a multi-choice question")
	}

	got, err := NumberAnswer(7).Coerce(KindScale)
	if err != nil {
		t.Fatalf("scale coercion: %v", err)
	}
	if !reflect.DeepEqual(got, ScaleAnswer(7)) {
		t.Errorf("coerced to %+v, want scale 7", got)
	}
	if _, err := NumberAnswer(11).Coerce(KindScale); err == nil {
		t.Error("scale answer above 10 should be rejected")
	}
	if _, err := NumberAnswer(7.5).Coerce(KindScale); err == nil {
		t.Error("fractional scale answer should be rejected")
	}

	got, err = ChoiceAnswer("Yes").Coerce(KindBoolean)
	if err != nil {
		t.Fatalf("boolean coercion: %v", err)
	}
	if !reflect.DeepEqual(got, BoolAnswer(true)) {
		t.Errorf("coerced to %+v, want true", got)
	}
	if _, err := ChoiceAnswer("Maybe").Coerce(KindBoolean); err == nil {
		t.Error("non Yes/No string should not coerce to boolean")
	}
}

func TestQuestionVisible(t *testing.T) {
	followUp := &Question{
		ID:   "follow_up",
		Kind: KindSingleChoice,
		Display: &DisplayCondition{
			Mode:       DisplayShowIf,
			QuestionID: "smoker",
			Value:      "Yes",
		},
	}
	if QuestionVisible(followUp, ResponseMap{}) {
		t.Error("show_if question should be hidden before its trigger is answered")
	}
	if !QuestionVisible(followUp, ResponseMap{"smoker": BoolAnswer(true)}) {
		t.Error("show_if question should appear when trigger matches")
	}
	if QuestionVisible(followUp, ResponseMap{"smoker": BoolAnswer(false)}) {
		t.Error("show_if question should stay hidden when trigger does not match")
	}

	followUp.Display.Mode = DisplayHideIf
	if QuestionVisible(followUp, ResponseMap{"smoker": BoolAnswer(true)}) {
		t.Error("hide_if question should disappear when trigger matches")
	}
	if !QuestionVisible(followUp, ResponseMap{}) {
		t.Error("hide_if question should be visible before its trigger is answered")
	}

	multiTrigger := &Question{
		ID:   "detail",
		Kind: KindSingleChoice,
		Display: &DisplayCondition{
			Mode:       DisplayShowIf,
			QuestionID: "conditions",
			Value:      "Diabetes",
		},
	}
	if !QuestionVisible(multiTrigger, ResponseMap{"conditions": MultiAnswer("Diabetes", "Asthma")}) {
		t.Error("show_if should match a multi-choice selection")
	}

	plain := &Question{ID: "always", Kind: KindSingleChoice}
	if !QuestionVisible(plain, ResponseMap{}) {
		t.Error("question without display condition is always visible")
	}
}
