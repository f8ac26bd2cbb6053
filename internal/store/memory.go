package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory implements Store in process memory. It backs the engine tests
// and seed dry runs; semantics (conditional writes, error taxonomy)
// mirror the Mongo implementation.
type Memory struct {
	mu sync.Mutex

	seqs       map[string]int64
	plans      map[primitive.ObjectID]models.ActionPlan
	incidents  map[primitive.ObjectID]models.Incident
	audits     map[primitive.ObjectID]models.Audit
	trainings  map[primitive.ObjectID]models.TrainingPlan
	equipments map[primitive.ObjectID]models.EquipmentRecommendation
	recs       map[primitive.ObjectID]models.Recommendation
	history    []models.HistoryEntry
}

func NewMemory() *Memory {
	return &Memory{
		seqs:       map[string]int64{},
		plans:      map[primitive.ObjectID]models.ActionPlan{},
		incidents:  map[primitive.ObjectID]models.Incident{},
		audits:     map[primitive.ObjectID]models.Audit{},
		trainings:  map[primitive.ObjectID]models.TrainingPlan{},
		equipments: map[primitive.ObjectID]models.EquipmentRecommendation{},
		recs:       map[primitive.ObjectID]models.Recommendation{},
	}
}

func (m *Memory) NextSequence(_ context.Context, org, prefix string, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := org + ":" + prefix + ":" + t.Format("200601")
	m.seqs[key]++
	return m.seqs[key], nil
}

func (m *Memory) CreateActionPlan(_ context.Context, p *models.ActionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.plans[p.ID] = *p
	return nil
}

func (m *Memory) ActionPlan(_ context.Context, org string, id primitive.ObjectID) (*models.ActionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.OrganizationID != org {
		return nil, &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	cp := p
	return &cp, nil
}

func (m *Memory) ActionPlans(_ context.Context, q ActionPlanQuery) ([]models.ActionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActionPlan
	for _, p := range m.plans {
		if p.OrganizationID != q.OrganizationID {
			continue
		}
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, p.Status) {
			continue
		}
		if q.AssigneeID != "" && p.AssigneeID != q.AssigneeID {
			continue
		}
		if q.SourceType != "" && p.SourceType != q.SourceType {
			continue
		}
		if !q.DueAfter.IsZero() && p.DueDate.Before(q.DueAfter) {
			continue
		}
		if !q.DueBefore.IsZero() && p.DueDate.After(q.DueBefore) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (m *Memory) ApplyStatusChange(_ context.Context, org string, id primitive.ObjectID, expectVersion int64, change StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.OrganizationID != org {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	if p.Version != expectVersion {
		return &models.ConcurrencyConflict{Entity: "action plan", ID: id.Hex()}
	}
	p.Status = change.Status
	p.Progress = change.Progress
	if change.CompletedAt != nil {
		p.CompletedAt = change.CompletedAt
	}
	if change.VerifiedAt != nil {
		p.VerifiedAt = change.VerifiedAt
	}
	p.UpdatedBy = change.UpdatedBy
	p.UpdatedAt = change.UpdatedAt
	p.Version++
	m.plans[id] = p
	return nil
}

func (m *Memory) SetProgress(_ context.Context, org string, id primitive.ObjectID, progress int, by string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.OrganizationID != org {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	p.Progress = progress
	p.UpdatedBy = by
	p.UpdatedAt = at
	m.plans[id] = p
	return nil
}

func (m *Memory) AddChecklistItem(_ context.Context, org string, id primitive.ObjectID, item models.ChecklistItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.OrganizationID != org {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	p.ChecklistItems = append(append([]models.ChecklistItem(nil), p.ChecklistItems...), item)
	m.plans[id] = p
	return nil
}

func (m *Memory) SetChecklistItem(_ context.Context, org string, id, itemID primitive.ObjectID, completed bool, by string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.OrganizationID != org {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	items := append([]models.ChecklistItem(nil), p.ChecklistItems...)
	for i := range items {
		if items[i].ID != itemID {
			continue
		}
		items[i].Completed = completed
		if completed {
			items[i].CompletedBy = by
			t := at
			items[i].CompletedAt = &t
		} else {
			items[i].CompletedBy = ""
			items[i].CompletedAt = nil
		}
		p.ChecklistItems = items
		p.UpdatedBy = by
		p.UpdatedAt = at
		m.plans[id] = p
		return nil
	}
	return &models.NotFoundError{Entity: "checklist item", ID: itemID.Hex()}
}

func (m *Memory) AppendComment(_ context.Context, org string, id primitive.ObjectID, comment models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.OrganizationID != org {
		return &models.NotFoundError{Entity: "action plan", ID: id.Hex()}
	}
	p.Comments = append(append([]models.Comment(nil), p.Comments...), comment)
	m.plans[id] = p
	return nil
}

func (m *Memory) DeleteActionPlan(_ context.Context, org string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.plans[id]; ok && p.OrganizationID == org {
		delete(m.plans, id)
	}
	return nil
}

func (m *Memory) CreateIncident(_ context.Context, in *models.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.ID.IsZero() {
		in.ID = primitive.NewObjectID()
	}
	m.incidents[in.ID] = *in
	return nil
}

func (m *Memory) Incident(_ context.Context, org string, id primitive.ObjectID) (*models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.incidents[id]
	if !ok || in.OrganizationID != org {
		return nil, &models.NotFoundError{Entity: "incident", ID: id.Hex()}
	}
	cp := in
	return &cp, nil
}

func (m *Memory) Incidents(_ context.Context, q IncidentQuery) ([]models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Incident
	for _, in := range m.incidents {
		if in.OrganizationID != q.OrganizationID {
			continue
		}
		if q.OpenOnly && !in.Open() {
			continue
		}
		if !q.Since.IsZero() && in.OccurredAt.Before(q.Since) {
			continue
		}
		if len(q.Severities) > 0 && !containsSeverity(q.Severities, in.Severity) {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (m *Memory) LinkCapaToIncident(_ context.Context, org string, incidentID primitive.ObjectID, capaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.incidents[incidentID]
	if !ok || in.OrganizationID != org {
		return &models.NotFoundError{Entity: "incident", ID: incidentID.Hex()}
	}
	for _, existing := range in.LinkedCapaIDs {
		if existing == capaID {
			return nil
		}
	}
	in.LinkedCapaIDs = append(append([]string(nil), in.LinkedCapaIDs...), capaID)
	m.incidents[incidentID] = in
	return nil
}

func (m *Memory) CreateAudit(_ context.Context, a *models.Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.audits[a.ID] = *a
	return nil
}

func (m *Memory) Audits(_ context.Context, org string) ([]models.Audit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Audit
	for _, a := range m.audits {
		if a.OrganizationID == org {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) CreateTrainingPlan(_ context.Context, t *models.TrainingPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	m.trainings[t.ID] = *t
	return nil
}

func (m *Memory) TrainingPlans(_ context.Context, org string) ([]models.TrainingPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TrainingPlan
	for _, t := range m.trainings {
		if t.OrganizationID == org {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) DeleteTrainingPlan(_ context.Context, org string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trainings[id]; ok && t.OrganizationID == org {
		delete(m.trainings, id)
	}
	return nil
}

func (m *Memory) CreateEquipmentRecommendation(_ context.Context, e *models.EquipmentRecommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	m.equipments[e.ID] = *e
	return nil
}

func (m *Memory) EquipmentRecommendations(_ context.Context, org string) ([]models.EquipmentRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EquipmentRecommendation
	for _, e := range m.equipments {
		if e.OrganizationID == org {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) DeleteEquipmentRecommendation(_ context.Context, org string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.equipments[id]; ok && e.OrganizationID == org {
		delete(m.equipments, id)
	}
	return nil
}

func (m *Memory) CreateRecommendation(_ context.Context, r *models.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	m.recs[r.ID] = *r
	return nil
}

func (m *Memory) Recommendation(_ context.Context, org string, id primitive.ObjectID) (*models.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok || r.OrganizationID != org {
		return nil, &models.NotFoundError{Entity: "recommendation", ID: id.Hex()}
	}
	cp := r
	return &cp, nil
}

func (m *Memory) Recommendations(_ context.Context, q RecommendationQuery) ([]models.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Recommendation
	for _, r := range m.recs {
		if r.OrganizationID != q.OrganizationID {
			continue
		}
		if len(q.Statuses) > 0 && !containsRecStatus(q.Statuses, r.Status) {
			continue
		}
		if len(q.Types) > 0 && !containsRecType(q.Types, r.Type) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DecideRecommendation(_ context.Context, org string, id primitive.ObjectID, status models.RecommendationStatus, by string, at time.Time, spawnedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok || r.OrganizationID != org {
		return &models.NotFoundError{Entity: "recommendation", ID: id.Hex()}
	}
	if r.Status != models.RecommendationPending {
		return &models.ConflictError{Reason: "recommendation " + id.Hex() + " already decided"}
	}
	r.Status = status
	r.DecidedBy = by
	t := at
	r.DecidedAt = &t
	r.SpawnedID = spawnedID
	m.recs[id] = r
	return nil
}

func (m *Memory) DeleteRecommendation(_ context.Context, org string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.recs[id]; ok && r.OrganizationID == org {
		delete(m.recs, id)
	}
	return nil
}

func (m *Memory) AppendHistory(_ context.Context, h *models.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	m.history = append(m.history, *h)
	return nil
}

func (m *Memory) History(_ context.Context, org string, limit int64) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HistoryEntry
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].OrganizationID != org {
			continue
		}
		out = append(out, m.history[i])
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) Purge(_ context.Context, org string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.plans {
		if p.OrganizationID == org {
			delete(m.plans, id)
		}
	}
	for id, in := range m.incidents {
		if in.OrganizationID == org {
			delete(m.incidents, id)
		}
	}
	for id, a := range m.audits {
		if a.OrganizationID == org {
			delete(m.audits, id)
		}
	}
	for id, t := range m.trainings {
		if t.OrganizationID == org {
			delete(m.trainings, id)
		}
	}
	for id, e := range m.equipments {
		if e.OrganizationID == org {
			delete(m.equipments, id)
		}
	}
	for id, r := range m.recs {
		if r.OrganizationID == org {
			delete(m.recs, id)
		}
	}
	kept := m.history[:0]
	for _, h := range m.history {
		if h.OrganizationID != org {
			kept = append(kept, h)
		}
	}
	m.history = kept
	return nil
}

func containsStatus(list []models.ActionStatus, s models.ActionStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsSeverity(list []models.IncidentSeverity, s models.IncidentSeverity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsRecStatus(list []models.RecommendationStatus, s models.RecommendationStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsRecType(list []models.RecommendationType, t models.RecommendationType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}
