// Package seed populates an organization with demo fixtures: incidents,
// audits and action plans in assorted lifecycle stages, plus one pattern
// engine run so recommendations are visible out of the box.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/lifecycle"
	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/recommend"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"
)

type Options struct {
	OrganizationID string
	// Clean purges the organization's collections before reseeding.
	Clean bool
}

type incidentFixture struct {
	title    string
	category string
	severity models.IncidentSeverity
	daysAgo  int
}

var incidentFixtures = []incidentFixture{
	{"Glissade dans l'atelier", "Chute", models.SeverityModerate, 12},
	{"Chute d'une échelle", "Chute", models.SeveritySevere, 30},
	{"Chute sur sol mouillé", "Chute", models.SeverityMinor, 5},
	{"Coupure au poste de découpe", "Coupure", models.SeverityModerate, 8},
	{"Coupure lors du déballage", "Coupure", models.SeverityModerate, 21},
	{"Projection chimique", "Exposition", models.SeverityCritical, 3},
}

// Run writes the fixture set through the store and engines, reporting
// progress on stdout.
func Run(ctx context.Context, s store.Store, opts Options) error {
	org := opts.OrganizationID

	if opts.Clean {
		fmt.Printf("purging existing data for organization %s\n", org)
		if err := s.Purge(ctx, org); err != nil {
			return fmt.Errorf("purging organization: %w", err)
		}
	}

	now := time.Now()
	lc := lifecycle.New(s, nil)

	fmt.Printf("seeding %d incidents\n", len(incidentFixtures))
	var incidents []models.Incident
	for _, f := range incidentFixtures {
		occurred := now.AddDate(0, 0, -f.daysAgo)
		seq, err := s.NextSequence(ctx, org, "INC", occurred)
		if err != nil {
			return err
		}
		incident := models.Incident{
			OrganizationID: org,
			Reference:      models.FormatReference("INC", occurred, seq),
			Type:           "workplace_accident",
			Title:          f.title,
			Severity:       f.severity,
			Category:       f.category,
			Status:         "open",
			OccurredAt:     occurred,
			ReportedBy:     "seed",
			CreatedAt:      occurred,
		}
		if err := s.CreateIncident(ctx, &incident); err != nil {
			return fmt.Errorf("creating incident %q: %w", f.title, err)
		}
		incidents = append(incidents, incident)
	}

	fmt.Println("seeding audits")
	audit := models.Audit{
		OrganizationID: org,
		Reference:      models.FormatReference("AUD", now, 1),
		Title:          "Audit annuel sécurité machines",
		Norm:           "ISO 45001",
		Status:         "completed",
		Findings:       []string{"Protections machine incomplètes", "Registre de maintenance à jour"},
		PerformedAt:    now.AddDate(0, 0, -45),
		CreatedAt:      now.AddDate(0, 0, -45),
	}
	if err := s.CreateAudit(ctx, &audit); err != nil {
		return fmt.Errorf("creating audit: %w", err)
	}

	fmt.Println("seeding action plans")
	plans := []models.ActionPlan{
		{
			Title:            "Installer des bandes antidérapantes",
			Description:      "Zones de passage de l'atelier",
			Category:         models.CategoryCorrective,
			Priority:         models.PriorityHigh,
			AssigneeID:       "u-martin",
			AssigneeName:     "Martin",
			DueDate:          now.AddDate(0, 0, 14),
			StartDate:        now.AddDate(0, 0, 2),
			EndDate:          now.AddDate(0, 0, 14),
			EstimatedHours:   16,
			RequiredSkills:   []string{"maintenance"},
			SourceType:       models.SourceIncident,
			SourceIncidentID: incidents[0].ID.Hex(),
		},
		{
			Title:          "Réviser la procédure de découpe",
			Description:    "Mise à jour suite aux coupures récentes",
			Category:       models.CategoryPreventive,
			Priority:       models.PriorityMedium,
			AssigneeID:     "u-sonia",
			AssigneeName:   "Sonia",
			DueDate:        now.AddDate(0, 0, 30),
			StartDate:      now.AddDate(0, 0, 7),
			EndDate:        now.AddDate(0, 0, 25),
			EstimatedHours: 8,
			RequiredSkills: []string{"hse"},
			SourceType:     models.SourceAudit,
			SourceAuditID:  audit.ID.Hex(),
		},
		{
			Title:        "Mettre à jour la fiche EPI du poste chimie",
			Description:  "Suite à la projection chimique",
			Category:     models.CategoryCorrective,
			Priority:     models.PriorityCritical,
			AssigneeID:   "u-martin",
			AssigneeName: "Martin",
			DueDate:      now.AddDate(0, 0, 3),
			SourceType:   models.SourceIncident,
			SourceIncidentID: incidents[len(incidents)-1].ID.Hex(),
			EstimatedHours:   24,
			RequiredSkills:   []string{"hse", "chimie"},
		},
	}
	for i := range plans {
		plans[i].OrganizationID = org
		plans[i].CreatedBy = "seed"
		if err := lc.CreateActionPlan(ctx, &plans[i]); err != nil {
			return fmt.Errorf("creating action plan %q: %w", plans[i].Title, err)
		}
	}

	// Walk the first plan into execution so the board has activity.
	first := plans[0].ID
	for _, status := range []models.ActionStatus{
		models.StatusPendingApproval, models.StatusApproved, models.StatusInProgress,
	} {
		if _, err := lc.Transition(ctx, org, first, status, "seed"); err != nil {
			return fmt.Errorf("advancing plan to %s: %w", status, err)
		}
	}
	for _, desc := range []string{"Commander les bandes", "Poser zone A", "Poser zone B"} {
		if _, err := lc.AddChecklistItem(ctx, org, first, desc, "seed"); err != nil {
			return fmt.Errorf("adding checklist item: %w", err)
		}
	}

	fmt.Println("running pattern engine")
	rec := recommend.New(s, lc, nil, recommend.RuleConfig{})
	emitted, err := rec.Run(ctx, org)
	if err != nil {
		return fmt.Errorf("pattern engine run: %w", err)
	}
	fmt.Printf("emitted %d recommendations\n", len(emitted))

	fmt.Println("seed complete")
	return nil
}
