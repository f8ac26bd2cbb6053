package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/lifecycle"
	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testOrg = "org-test"

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(s store.Store, cfg RuleConfig) *Engine {
	lc := lifecycle.New(s, nil)
	e := New(s, lc, nil, cfg)
	e.now = func() time.Time { return testNow }
	return e
}

func seedIncident(t *testing.T, s store.Store, category string, severity models.IncidentSeverity, daysAgo int) models.Incident {
	t.Helper()
	incident := models.Incident{
		OrganizationID: testOrg,
		Reference:      "INC-202610-0001",
		Title:          category + " incident",
		Category:       category,
		Severity:       severity,
		Status:         "open",
		OccurredAt:     testNow.AddDate(0, 0, -daysAgo),
		CreatedAt:      testNow.AddDate(0, 0, -daysAgo),
	}
	if err := s.CreateIncident(context.Background(), &incident); err != nil {
		t.Fatalf("creating incident: %v", err)
	}
	return incident
}

func TestRun_TrainingGap(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityMinor, 12)

	emitted, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(emitted))
	}
	rec := emitted[0]
	if rec.Type != models.RecommendationTraining {
		t.Errorf("expected training type, got %s", rec.Type)
	}
	if rec.Confidence != 95 {
		t.Errorf("expected confidence 95 for 2 incidents, got %d", rec.Confidence)
	}
	if rec.Status != models.RecommendationPending {
		t.Errorf("expected pending status, got %s", rec.Status)
	}
	if len(rec.BasedOn.IncidentIDs) != 2 {
		t.Errorf("expected 2 evidence incidents, got %d", len(rec.BasedOn.IncidentIDs))
	}
}

func TestRun_BelowThresholdEmitsNothing(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)

	emitted, err := e.Run(context.Background(), testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("expected no recommendations for a single incident, got %d", len(emitted))
	}
}

func TestRun_WindowExcludesOldIncidents(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{Window: 30 * 24 * time.Hour})

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityModerate, 45)

	emitted, err := e.Run(context.Background(), testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("incident outside window must not count, got %d recommendations", len(emitted))
	}
}

func TestRun_Idempotent(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityMinor, 12)
	seedIncident(t, mem, "Chute", models.SeverityModerate, 20)

	first, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 recommendation on first run, got %d", len(first))
	}
	if first[0].Confidence != 95 {
		t.Errorf("expected capped confidence 95 for 3 incidents, got %d", first[0].Confidence)
	}

	second, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("re-run on unchanged incidents must emit nothing, got %d", len(second))
	}

	recs, err := mem.Recommendations(ctx, store.RecommendationQuery{OrganizationID: testOrg})
	if err != nil {
		t.Fatalf("listing recommendations: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected exactly 1 stored recommendation, got %d", len(recs))
	}
}

func TestRun_MixedRules(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})

	seedIncident(t, mem, "Coupure", models.SeverityModerate, 8)
	seedIncident(t, mem, "Coupure", models.SeverityModerate, 21)
	seedIncident(t, mem, "Chute", models.SeverityCritical, 3)

	emitted, err := e.Run(context.Background(), testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}

	var training, equipment int
	for _, rec := range emitted {
		switch rec.Type {
		case models.RecommendationTraining:
			training++
			if rec.Confidence != 95 {
				t.Errorf("expected training confidence 95, got %d", rec.Confidence)
			}
		case models.RecommendationEquipment:
			equipment++
			if rec.Confidence != 90 {
				t.Errorf("expected equipment confidence 90, got %d", rec.Confidence)
			}
		}
	}
	if training != 1 || equipment != 1 {
		t.Fatalf("expected 1 training and 1 equipment recommendation, got %d and %d", training, equipment)
	}
}

func TestRun_AppendsHistory(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityMinor, 12)

	if _, err := e.Run(ctx, testOrg); err != nil {
		t.Fatalf("running rules: %v", err)
	}

	entries, err := mem.History(ctx, testOrg, 10)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Kind != models.HistoryRuleRun {
		t.Errorf("expected rule_run entry, got %s", entries[0].Kind)
	}
	if entries[0].IncidentCount != 2 {
		t.Errorf("expected incident count 2, got %d", entries[0].IncidentCount)
	}
	if len(entries[0].EmittedIDs) != 1 {
		t.Errorf("expected 1 emitted id, got %d", len(entries[0].EmittedIDs))
	}
}

func TestRefreshWindow_ReadmitsOldAccepted(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{RefreshWindow: 30 * 24 * time.Hour})
	ctx := context.Background()

	in1 := seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	in2 := seedIncident(t, mem, "Chute", models.SeverityMinor, 12)

	// An accepted recommendation for the same evidence, older than the
	// refresh window.
	old := models.Recommendation{
		OrganizationID: testOrg,
		Type:           models.RecommendationTraining,
		Status:         models.RecommendationAccepted,
		Confidence:     95,
		BasedOn:        models.BasedOn{IncidentIDs: []string{in1.ID.Hex(), in2.ID.Hex()}},
		CreatedAt:      testNow.AddDate(0, 0, -60),
	}
	if err := mem.CreateRecommendation(ctx, &old); err != nil {
		t.Fatalf("creating old recommendation: %v", err)
	}

	emitted, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("stale accepted key must be re-admitted, got %d emitted", len(emitted))
	}
}

func TestRefreshWindow_ZeroNeverReadmits(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	in1 := seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	in2 := seedIncident(t, mem, "Chute", models.SeverityMinor, 12)

	old := models.Recommendation{
		OrganizationID: testOrg,
		Type:           models.RecommendationTraining,
		Status:         models.RecommendationAccepted,
		Confidence:     95,
		BasedOn:        models.BasedOn{IncidentIDs: []string{in1.ID.Hex(), in2.ID.Hex()}},
		CreatedAt:      testNow.AddDate(-1, 0, 0),
	}
	if err := mem.CreateRecommendation(ctx, &old); err != nil {
		t.Fatalf("creating old recommendation: %v", err)
	}

	emitted, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}
	if len(emitted) != 0 {
		t.Fatalf("accepted key must stay blocked without a refresh window, got %d emitted", len(emitted))
	}
}

func TestAccept_SpawnsTrainingPlan(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityMinor, 12)

	emitted, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}

	spawnedID, err := e.Accept(ctx, testOrg, emitted[0].ID, "reviewer")
	if err != nil {
		t.Fatalf("accepting: %v", err)
	}
	if spawnedID == "" {
		t.Fatal("accept returned no spawned id")
	}

	rec, err := mem.Recommendation(ctx, testOrg, emitted[0].ID)
	if err != nil {
		t.Fatalf("reading recommendation: %v", err)
	}
	if rec.Status != models.RecommendationAccepted {
		t.Errorf("expected accepted status, got %s", rec.Status)
	}
	if rec.SpawnedID != spawnedID {
		t.Errorf("recommendation spawnedId %q does not match returned id %q", rec.SpawnedID, spawnedID)
	}

	trainings, err := mem.TrainingPlans(ctx, testOrg)
	if err != nil {
		t.Fatalf("listing training plans: %v", err)
	}
	if len(trainings) != 1 {
		t.Fatalf("expected 1 training plan, got %d", len(trainings))
	}
	if !trainings[0].AIGenerated {
		t.Error("spawned training plan must be marked AI generated")
	}
	if trainings[0].AIConfidence != 95 {
		t.Errorf("expected confidence 95 carried over, got %d", trainings[0].AIConfidence)
	}
}

func TestAccept_SpawnsActionPlan(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	incident := seedIncident(t, mem, "Chute", models.SeverityCritical, 3)
	rec := models.Recommendation{
		OrganizationID: testOrg,
		Type:           models.RecommendationAction,
		Status:         models.RecommendationPending,
		Confidence:     88,
		Reasoning:      "recurring falls near loading dock",
		SuggestedItem: models.SuggestedItem{
			Title:       "Install guard rail",
			Description: "Loading dock edge",
			Category:    models.CategoryCorrective,
			Priority:    models.PriorityHigh,
		},
		BasedOn:   models.BasedOn{IncidentIDs: []string{incident.ID.Hex()}},
		CreatedAt: testNow,
	}
	if err := mem.CreateRecommendation(ctx, &rec); err != nil {
		t.Fatalf("creating recommendation: %v", err)
	}

	spawnedID, err := e.Accept(ctx, testOrg, rec.ID, "reviewer")
	if err != nil {
		t.Fatalf("accepting: %v", err)
	}

	plans, err := mem.ActionPlans(ctx, store.ActionPlanQuery{OrganizationID: testOrg})
	if err != nil {
		t.Fatalf("listing plans: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected 1 action plan, got %d", len(plans))
	}
	plan := plans[0]
	if plan.ID.Hex() != spawnedID {
		t.Errorf("plan id %s does not match spawned id %s", plan.ID.Hex(), spawnedID)
	}
	if !plan.AIGenerated || plan.AIConfidence != 88 {
		t.Errorf("expected aiGenerated with confidence 88, got %v/%d", plan.AIGenerated, plan.AIConfidence)
	}
	if plan.SourceType != models.SourceAISuggestion {
		t.Errorf("expected ai_suggestion source, got %s", plan.SourceType)
	}
	if plan.Status != models.StatusDraft {
		t.Errorf("spawned plan must start at draft, got %s", plan.Status)
	}

	linked, err := mem.Incident(ctx, testOrg, incident.ID)
	if err != nil {
		t.Fatalf("reading incident: %v", err)
	}
	if len(linked.LinkedCapaIDs) != 1 || linked.LinkedCapaIDs[0] != spawnedID {
		t.Errorf("incident not linked to spawned plan: %v", linked.LinkedCapaIDs)
	}
}

func TestAccept_AlreadyDecidedConflicts(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityMinor, 12)
	emitted, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}

	if _, err := e.Accept(ctx, testOrg, emitted[0].ID, "reviewer"); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	_, err = e.Accept(ctx, testOrg, emitted[0].ID, "reviewer")
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on second accept, got %v", err)
	}
}

func TestReject_Idempotent(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityMinor, 12)
	emitted, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}

	if err := e.Reject(ctx, testOrg, emitted[0].ID, "reviewer"); err != nil {
		t.Fatalf("first reject: %v", err)
	}
	if err := e.Reject(ctx, testOrg, emitted[0].ID, "reviewer"); err != nil {
		t.Fatalf("second reject must be a no-op, got %v", err)
	}

	trainings, err := mem.TrainingPlans(ctx, testOrg)
	if err != nil {
		t.Fatalf("listing training plans: %v", err)
	}
	if len(trainings) != 0 {
		t.Fatalf("reject must not spawn anything, got %d training plans", len(trainings))
	}
}

func TestModify_MergesOverrides(t *testing.T) {
	mem := store.NewMemory()
	e := newTestEngine(mem, RuleConfig{})
	ctx := context.Background()

	seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	seedIncident(t, mem, "Chute", models.SeverityMinor, 12)
	emitted, err := e.Run(ctx, testOrg)
	if err != nil {
		t.Fatalf("running rules: %v", err)
	}

	overrides := models.SuggestedItem{Title: "Formation chutes - version revue"}
	spawnedID, err := e.Modify(ctx, testOrg, emitted[0].ID, "reviewer", overrides)
	if err != nil {
		t.Fatalf("modifying: %v", err)
	}

	rec, err := mem.Recommendation(ctx, testOrg, emitted[0].ID)
	if err != nil {
		t.Fatalf("reading recommendation: %v", err)
	}
	if rec.Status != models.RecommendationModified {
		t.Errorf("expected modified status, got %s", rec.Status)
	}
	if rec.SpawnedID != spawnedID {
		t.Errorf("spawnedId mismatch: %q vs %q", rec.SpawnedID, spawnedID)
	}

	trainings, err := mem.TrainingPlans(ctx, testOrg)
	if err != nil {
		t.Fatalf("listing training plans: %v", err)
	}
	if len(trainings) != 1 {
		t.Fatalf("expected 1 training plan, got %d", len(trainings))
	}
	if trainings[0].Title != "Formation chutes - version revue" {
		t.Errorf("override title not applied: %q", trainings[0].Title)
	}
	// Zero-valued override fields keep the suggested values.
	if trainings[0].TargetAudience == "" {
		t.Error("unset override must keep the suggested target audience")
	}
	if !trainings[0].AIGenerated {
		t.Error("modified spawn still counts as AI generated")
	}
}

// failingDecideStore forces the decide write to fail so the compensating
// cleanup path is exercised.
type failingDecideStore struct {
	store.Store
}

func (s *failingDecideStore) DecideRecommendation(context.Context, string, primitive.ObjectID, models.RecommendationStatus, string, time.Time, string) error {
	return errors.New("write failed")
}

func TestAccept_RollsBackSpawnOnDecideFailure(t *testing.T) {
	mem := store.NewMemory()
	wrapped := &failingDecideStore{Store: mem}
	e := newTestEngine(wrapped, RuleConfig{})
	ctx := context.Background()

	in1 := seedIncident(t, mem, "Chute", models.SeverityModerate, 5)
	in2 := seedIncident(t, mem, "Chute", models.SeverityMinor, 12)

	rec := models.Recommendation{
		OrganizationID: testOrg,
		Type:           models.RecommendationTraining,
		Status:         models.RecommendationPending,
		Confidence:     95,
		SuggestedItem:  models.SuggestedItem{Title: "Formation chutes"},
		BasedOn:        models.BasedOn{IncidentIDs: []string{in1.ID.Hex(), in2.ID.Hex()}},
		CreatedAt:      testNow,
	}
	if err := mem.CreateRecommendation(ctx, &rec); err != nil {
		t.Fatalf("creating recommendation: %v", err)
	}

	if _, err := e.Accept(ctx, testOrg, rec.ID, "reviewer"); err == nil {
		t.Fatal("expected accept to fail")
	}

	// The spawned training plan must have been removed again.
	trainings, err := mem.TrainingPlans(ctx, testOrg)
	if err != nil {
		t.Fatalf("listing training plans: %v", err)
	}
	if len(trainings) != 0 {
		t.Fatalf("spawned entity must be rolled back, found %d training plans", len(trainings))
	}

	got, err := mem.Recommendation(ctx, testOrg, rec.ID)
	if err != nil {
		t.Fatalf("reading recommendation: %v", err)
	}
	if got.Status != models.RecommendationPending {
		t.Errorf("recommendation must stay pending after rollback, got %s", got.Status)
	}
}
