// Package recommend is the pattern engine: it scores incident clusters
// and severity signals into candidate recommendations, deduplicates them
// against prior runs, and turns human decisions into real entities
// through the lifecycle engine.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/lifecycle"
	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"
)

const (
	trainingBaseConfidence = 85
	trainingPerIncident    = 5
	trainingMaxConfidence  = 95
	equipmentConfidence    = 90
)

type Engine struct {
	store     store.Store
	lifecycle *lifecycle.Engine
	analysis  *AnalysisClient
	cfg       RuleConfig
	now       func() time.Time
}

// New builds the pattern engine. The analysis client may be nil when no
// external collaborator is configured.
func New(s store.Store, lc *lifecycle.Engine, analysis *AnalysisClient, cfg RuleConfig) *Engine {
	return &Engine{
		store:     s,
		lifecycle: lc,
		analysis:  analysis,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Run applies the pattern rules to the organization's open incidents
// inside the rolling window. Re-running on an unchanged incident set
// emits nothing new: candidates whose dedup key already exists on a
// pending or accepted recommendation are dropped. Every run appends a
// history entry.
func (e *Engine) Run(ctx context.Context, org string) ([]models.Recommendation, error) {
	now := e.now()
	incidents, err := e.store.Incidents(ctx, store.IncidentQuery{
		OrganizationID: org,
		OpenOnly:       true,
		Since:          now.Add(-e.cfg.Window),
	})
	if err != nil {
		return nil, err
	}

	blocked, err := e.blockedKeys(ctx, org, now)
	if err != nil {
		return nil, err
	}

	var candidates []models.Recommendation
	candidates = append(candidates, e.trainingGapRule(org, incidents)...)
	candidates = append(candidates, e.equipmentSeverityRule(org, incidents)...)

	var emitted []models.Recommendation
	var emittedIDs []string
	for _, cand := range candidates {
		key := cand.DedupKey()
		if blocked[key] {
			continue
		}
		blocked[key] = true

		cand.Status = models.RecommendationPending
		cand.CreatedAt = now
		rec := cand
		if err := e.store.CreateRecommendation(ctx, &rec); err != nil {
			return nil, err
		}
		emitted = append(emitted, rec)
		emittedIDs = append(emittedIDs, rec.ID.Hex())
	}

	entry := &models.HistoryEntry{
		OrganizationID: org,
		Kind:           models.HistoryRuleRun,
		IncidentCount:  len(incidents),
		EmittedIDs:     emittedIDs,
		CreatedAt:      now,
	}
	if err := e.store.AppendHistory(ctx, entry); err != nil {
		return nil, err
	}
	return emitted, nil
}

// blockedKeys collects the dedup keys that must not be regenerated:
// every pending key, plus accepted keys younger than the refresh window.
func (e *Engine) blockedKeys(ctx context.Context, org string, now time.Time) (map[string]bool, error) {
	existing, err := e.store.Recommendations(ctx, store.RecommendationQuery{
		OrganizationID: org,
		Statuses:       []models.RecommendationStatus{models.RecommendationPending, models.RecommendationAccepted},
	})
	if err != nil {
		return nil, err
	}
	blocked := map[string]bool{}
	for _, r := range existing {
		if r.Status != models.RecommendationPending && e.cfg.RefreshWindow > 0 &&
			now.Sub(r.CreatedAt) > e.cfg.RefreshWindow {
			continue
		}
		blocked[r.DedupKey()] = true
	}
	return blocked, nil
}

// trainingGapRule emits one training recommendation per incident
// category reaching the threshold count, confidence min(85+5n, 95).
func (e *Engine) trainingGapRule(org string, incidents []models.Incident) []models.Recommendation {
	groups := map[string][]models.Incident{}
	for _, in := range incidents {
		if in.Category == "" {
			continue
		}
		groups[in.Category] = append(groups[in.Category], in)
	}

	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var out []models.Recommendation
	for _, cat := range categories {
		group := groups[cat]
		n := len(group)
		if n < e.cfg.MinCategoryCount {
			continue
		}
		confidence := trainingBaseConfidence + trainingPerIncident*n
		if confidence > trainingMaxConfidence {
			confidence = trainingMaxConfidence
		}
		ids := make([]string, len(group))
		for i, in := range group {
			ids[i] = in.ID.Hex()
		}
		sort.Strings(ids)

		out = append(out, models.Recommendation{
			OrganizationID: org,
			Type:           models.RecommendationTraining,
			Confidence:     confidence,
			Reasoning:      fmt.Sprintf("%d open incidents in category %q within the window point to a training gap", n, cat),
			SuggestedItem: models.SuggestedItem{
				Title:          fmt.Sprintf("Safety training: %s", cat),
				Description:    fmt.Sprintf("Targeted training addressing the recurring %q incidents", cat),
				TargetAudience: "Teams exposed to " + cat + " risks",
			},
			BasedOn: models.BasedOn{IncidentIDs: ids, HistoricalData: true},
		})
	}
	return out
}

// equipmentSeverityRule emits one equipment recommendation per severe or
// critical incident, fixed confidence 90.
func (e *Engine) equipmentSeverityRule(org string, incidents []models.Incident) []models.Recommendation {
	var out []models.Recommendation
	for _, in := range incidents {
		if in.Severity != models.SeveritySevere && in.Severity != models.SeverityCritical {
			continue
		}
		out = append(out, models.Recommendation{
			OrganizationID: org,
			Type:           models.RecommendationEquipment,
			Confidence:     equipmentConfidence,
			Reasoning:      fmt.Sprintf("incident %s has severity %s; protective equipment should be reviewed", in.Reference, in.Severity),
			SuggestedItem: models.SuggestedItem{
				Title:         fmt.Sprintf("Protective equipment review: %s", in.Category),
				Description:   fmt.Sprintf("Review and upgrade equipment involved in incident %s (%s)", in.Reference, in.Title),
				EquipmentType: in.Category,
			},
			BasedOn: models.BasedOn{IncidentIDs: []string{in.ID.Hex()}},
		})
	}
	return out
}
