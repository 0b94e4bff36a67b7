package questionnaire

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rxadvisor/rxadvisor/internal/domain/recommendation"
)

type mockRepo struct {
	items map[uuid.UUID]*Questionnaire
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Questionnaire)}
}

func (m *mockRepo) Create(_ context.Context, q *Questionnaire) error {
	q.ID = uuid.New()
	cp := *q
	m.items[q.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Questionnaire, error) {
	q, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *mockRepo) GetActiveByKey(_ context.Context, key string) (*Questionnaire, error) {
	var best *Questionnaire
	for _, q := range m.items {
		if q.Key == key && q.Status == StatusActive {
			if best == nil || q.Version > best.Version {
				best = q
			}
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, q *Questionnaire) error {
	if _, ok := m.items[q.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *q
	m.items[q.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Questionnaire, int, error) {
	var items []*Questionnaire
	for _, q := range m.items {
		items = append(items, q)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByCategory(_ context.Context, category string, limit, offset int) ([]*Questionnaire, int, error) {
	var items []*Questionnaire
	for _, q := range m.items {
		if q.Category == category {
			items = append(items, q)
		}
	}
	return items, len(items), nil
}

func testDefinition() recommendation.Questionnaire {
	return recommendation.Questionnaire{
		Key:      "weight-management",
		Category: "weight_management",
		Title:    "Weight Management Assessment",
		Questions: []recommendation.Question{
			{ID: "gender", Kind: recommendation.KindSingleChoice, Prompt: "Gender", Required: true, Weight: 1.0},
			{ID: "medical_conditions", Kind: recommendation.KindMultiChoice, Prompt: "Conditions", Weight: 2.0},
		},
		Medications: []recommendation.Medication{
			{ID: "sem", Name: "Semaglutide", Effectiveness: 9, MonthlyCost: 299},
		},
		Logic: recommendation.ScoringLogic{
			Rules: []recommendation.ContraindicationRule{
				{
					Condition: `medical_conditions includes "Gastroparesis"`,
					Result:    recommendation.MedicationContraindicated,
					Message:   "Contraindicated with gastroparesis.",
				},
			},
		},
	}
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	q := &Questionnaire{Definition: testDefinition()}

	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Status != StatusDraft {
		t.Errorf("status = %s, want draft", q.Status)
	}
	if q.Version != 1 {
		t.Errorf("version = %d, want 1", q.Version)
	}
	if q.Key != "weight-management" || q.Category != "weight_management" {
		t.Errorf("key/category not taken from definition: %s / %s", q.Key, q.Category)
	}
}

func TestCreate_RejectsInvalidDefinition(t *testing.T) {
	svc := NewService(newMockRepo())
	def := testDefinition()
	def.Logic.Rules[0].Condition = "gibberish"
	err := svc.Create(context.Background(), &Questionnaire{Definition: def})
	if err == nil {
		t.Fatal("expected validation error for unparseable rule condition")
	}
	if !strings.Contains(err.Error(), "invalid condition") {
		t.Errorf("error %q should name the bad condition", err)
	}
}

func TestCreate_RejectsMismatchedKey(t *testing.T) {
	svc := NewService(newMockRepo())
	q := &Questionnaire{Key: "other-key", Definition: testDefinition()}
	if err := svc.Create(context.Background(), q); err == nil {
		t.Fatal("expected error when record key differs from definition key")
	}
}

func TestUpdate_BumpsVersion(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	q := &Questionnaire{Definition: testDefinition()}
	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := &Questionnaire{ID: q.ID, Definition: testDefinition()}
	upd.Definition.Title = "Weight Management Assessment v2"
	if err := svc.Update(context.Background(), upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Version != 2 {
		t.Errorf("version = %d, want 2", upd.Version)
	}
}

func TestUpdate_RetiredIsImmutable(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	q := &Questionnaire{Status: StatusDraft, Definition: testDefinition()}
	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.items[q.ID].Status = StatusRetired

	upd := &Questionnaire{ID: q.ID, Definition: testDefinition()}
	if err := svc.Update(context.Background(), upd); err == nil {
		t.Fatal("expected update of a retired questionnaire to fail")
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	q := &Questionnaire{Definition: testDefinition()}
	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SetStatus(context.Background(), q.ID, StatusRetired); err == nil {
		t.Error("draft cannot be retired directly")
	}
	activated, err := svc.SetStatus(context.Background(), q.ID, StatusActive)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if activated.Status != StatusActive {
		t.Errorf("status = %s, want active", activated.Status)
	}
	if _, err := svc.SetStatus(context.Background(), q.ID, StatusDraft); err == nil {
		t.Error("active cannot go back to draft")
	}
	if _, err := svc.SetStatus(context.Background(), q.ID, StatusRetired); err != nil {
		t.Errorf("retire: %v", err)
	}
}

func TestDelete_ActiveRejected(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	q := &Questionnaire{Definition: testDefinition()}
	if err := svc.Create(context.Background(), q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), q.ID, StatusActive); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if err := svc.Delete(context.Background(), q.ID); err == nil {
		t.Fatal("expected delete of active questionnaire to fail")
	}
	if _, err := svc.SetStatus(context.Background(), q.ID, StatusRetired); err != nil {
		t.Fatalf("retire: %v", err)
	}
	if err := svc.Delete(context.Background(), q.ID); err != nil {
		t.Fatalf("delete retired: %v", err)
	}
}

func TestGetActiveByKey_PicksLatestVersion(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	old := &Questionnaire{Status: StatusActive, Version: 1, Key: "weight-management", Definition: testDefinition()}
	old.ID = uuid.New()
	repo.items[old.ID] = old
	newer := &Questionnaire{Status: StatusActive, Version: 3, Key: "weight-management", Definition: testDefinition()}
	newer.ID = uuid.New()
	repo.items[newer.ID] = newer

	got, err := svc.GetActiveByKey(context.Background(), "weight-management")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != 3 {
		t.Errorf("version = %d, want the latest active version 3", got.Version)
	}
}
