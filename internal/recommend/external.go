package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"
)

// AnalysisClient talks to the external analysis collaborator that turns
// incident and CAPA summaries into candidate suggestions.
type AnalysisClient struct {
	URL    string
	Client *http.Client
}

func NewAnalysisClient(url string) *AnalysisClient {
	return &AnalysisClient{
		URL:    url,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

type IncidentSummary struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

type CapaSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

type AnalysisRequest struct {
	Incidents   []IncidentSummary `json:"incidents"`
	ActionPlans []CapaSummary     `json:"actionPlans"`
}

// CandidateSuggestion is the analysis collaborator's response item. All
// fields up to Reasoning are required.
type CandidateSuggestion struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Priority           string   `json:"priority"`
	Confidence         int      `json:"confidence"`
	Reasoning          string   `json:"reasoning"`
	LinkedIncidentIDs  []string `json:"linkedIncidentIds,omitempty"`
	LinkedTrainingIDs  []string `json:"linkedTrainingIds,omitempty"`
	LinkedEquipmentIDs []string `json:"linkedEquipmentIds,omitempty"`
}

// Suggest posts the summaries and returns the validated candidate batch.
// A malformed response, including any candidate missing a required field
// or carrying an out-of-range confidence, rejects the whole batch.
func (c *AnalysisClient) Suggest(ctx context.Context, req AnalysisRequest) ([]CandidateSuggestion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.URL+"/suggestions", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, &models.ExternalServiceError{Service: "analysis", Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &models.ExternalServiceError{
			Service: "analysis",
			Reason:  fmt.Sprintf("status %d: %s", resp.StatusCode, string(b)),
		}
	}

	var result struct {
		Suggestions []CandidateSuggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &models.ExternalServiceError{Service: "analysis", Reason: "malformed response: " + err.Error()}
	}

	for i, s := range result.Suggestions {
		if err := ValidateCandidate(s); err != nil {
			return nil, &models.ExternalServiceError{
				Service: "analysis",
				Reason:  fmt.Sprintf("candidate %d rejected: %v", i, err),
			}
		}
	}
	return result.Suggestions, nil
}

// ValidateCandidate enforces the collaborator contract.
func ValidateCandidate(s CandidateSuggestion) error {
	if s.Title == "" {
		return &models.ValidationError{Field: "title", Reason: "required"}
	}
	if s.Description == "" {
		return &models.ValidationError{Field: "description", Reason: "required"}
	}
	if s.Category != string(models.CategoryCorrective) && s.Category != string(models.CategoryPreventive) {
		return &models.ValidationError{Field: "category", Reason: "must be corrective or preventive"}
	}
	switch models.ActionPriority(s.Priority) {
	case models.PriorityCritical, models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		return &models.ValidationError{Field: "priority", Reason: "unknown priority"}
	}
	if s.Confidence < 0 || s.Confidence > 100 {
		return &models.ValidationError{Field: "confidence", Reason: "outside [0,100]"}
	}
	if s.Reasoning == "" {
		return &models.ValidationError{Field: "reasoning", Reason: "required"}
	}
	return nil
}

// ImportExternal asks the analysis collaborator for candidates and
// stores them as pending action recommendations. The batch commits all
// or nothing: validation happens before the first write, and a write
// failure rolls the already-written part back. Cancelling ctx discards
// the in-flight response.
func (e *Engine) ImportExternal(ctx context.Context, org string) ([]models.Recommendation, error) {
	if e.analysis == nil {
		return nil, &models.ExternalServiceError{Service: "analysis", Reason: "not configured"}
	}

	now := e.now()
	incidents, err := e.store.Incidents(ctx, store.IncidentQuery{
		OrganizationID: org,
		OpenOnly:       true,
		Since:          now.Add(-e.cfg.Window),
	})
	if err != nil {
		return nil, err
	}
	plans, err := e.store.ActionPlans(ctx, store.ActionPlanQuery{OrganizationID: org})
	if err != nil {
		return nil, err
	}

	req := AnalysisRequest{}
	for _, in := range incidents {
		req.Incidents = append(req.Incidents, IncidentSummary{
			ID:       in.ID.Hex(),
			Category: in.Category,
			Severity: string(in.Severity),
			Title:    in.Title,
		})
	}
	for _, p := range plans {
		req.ActionPlans = append(req.ActionPlans, CapaSummary{
			ID:       p.ID.Hex(),
			Title:    p.Title,
			Status:   string(p.Status),
			Priority: string(p.Priority),
		})
	}

	candidates, err := e.analysis.Suggest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocked, err := e.blockedKeys(ctx, org, now)
	if err != nil {
		return nil, err
	}

	var written []models.Recommendation
	for _, cand := range candidates {
		rec := models.Recommendation{
			OrganizationID: org,
			Type:           models.RecommendationAction,
			Confidence:     cand.Confidence,
			Reasoning:      cand.Reasoning,
			SuggestedItem: models.SuggestedItem{
				Title:              cand.Title,
				Description:        cand.Description,
				Category:           models.ActionCategory(cand.Category),
				Priority:           models.ActionPriority(cand.Priority),
				LinkedTrainingIDs:  cand.LinkedTrainingIDs,
				LinkedEquipmentIDs: cand.LinkedEquipmentIDs,
			},
			BasedOn:   models.BasedOn{IncidentIDs: cand.LinkedIncidentIDs, HistoricalData: true},
			Status:    models.RecommendationPending,
			CreatedAt: now,
		}
		key := rec.DedupKey()
		if blocked[key] {
			continue
		}
		blocked[key] = true

		if err := e.store.CreateRecommendation(ctx, &rec); err != nil {
			e.rollbackRecommendations(org, written)
			return nil, err
		}
		written = append(written, rec)
	}

	ids := make([]string, len(written))
	for i, r := range written {
		ids[i] = r.ID.Hex()
	}
	entry := &models.HistoryEntry{
		OrganizationID: org,
		Kind:           models.HistoryRuleRun,
		IncidentCount:  len(incidents),
		EmittedIDs:     ids,
		Note:           "external analysis import",
		CreatedAt:      now,
	}
	if err := e.store.AppendHistory(ctx, entry); err != nil {
		return nil, err
	}
	return written, nil
}

// rollbackRecommendations compensates a partially-written batch. It runs
// on a fresh context so a cancelled request still cleans up.
func (e *Engine) rollbackRecommendations(org string, written []models.Recommendation) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range written {
		if err := e.store.DeleteRecommendation(ctx, org, r.ID); err != nil {
			// Best effort; a leftover pending rec is still deduplicated
			// by key on the next import.
			continue
		}
	}
}
