// Package schedule classifies action plans into an urgency/importance
// matrix, computes per-resource load, and proposes reassignments when a
// resource is overloaded. Everything here is a pure function of its
// inputs; the caller supplies plans and resources.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

type Quadrant string

const (
	QuadrantUrgentImportant    Quadrant = "urgent_important"
	QuadrantImportantNotUrgent Quadrant = "important_not_urgent"
	QuadrantUrgentNotImportant Quadrant = "urgent_not_important"
	QuadrantNeither            Quadrant = "neither"
)

// Thresholds are the configurable window boundaries for urgency
// derivation.
type Thresholds struct {
	// PlanningWindow marks a due date as high urgency.
	PlanningWindow time.Duration
	// MediumWindow marks a due date as medium urgency.
	MediumWindow time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		PlanningWindow: 7 * 24 * time.Hour,
		MediumWindow:   21 * 24 * time.Hour,
	}
}

// UrgencyOf derives urgency from the due date against the thresholds.
// Overdue plans are high urgency.
func UrgencyOf(p *models.ActionPlan, now time.Time, th Thresholds) Urgency {
	if p.DueDate.IsZero() {
		return UrgencyLow
	}
	until := p.DueDate.Sub(now)
	if until <= th.PlanningWindow {
		return UrgencyHigh
	}
	if until <= th.MediumWindow {
		return UrgencyMedium
	}
	return UrgencyLow
}

// QuadrantOf maps priority and urgency onto the Eisenhower matrix.
// Critical counts as high priority. Stable under re-evaluation: same
// inputs, same quadrant.
func QuadrantOf(priority models.ActionPriority, urgency Urgency) Quadrant {
	important := priority == models.PriorityHigh || priority == models.PriorityCritical
	urgent := urgency == UrgencyHigh
	switch {
	case important && urgent:
		return QuadrantUrgentImportant
	case important:
		return QuadrantImportantNotUrgent
	case urgent:
		return QuadrantUrgentNotImportant
	default:
		return QuadrantNeither
	}
}

// Resource is a team member the advisor balances work across.
type Resource struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	CapacityHours float64  `json:"capacityHours"`
	Skills        []string `json:"skills,omitempty"`
}

type LoadBand string

const (
	BandAvailable  LoadBand = "available"
	BandNormal     LoadBand = "normal"
	BandOverloaded LoadBand = "overloaded"
)

type Load struct {
	ResourceID string   `json:"resourceId"`
	Percent    int      `json:"percent"`
	Band       LoadBand `json:"band"`
}

// ResourceLoad sums the estimated effort of the resource's non-terminal
// plans against its capacity, clamped to [0,100].
func ResourceLoad(plans []models.ActionPlan, r Resource) Load {
	var effort float64
	for _, p := range plans {
		if p.AssigneeID != r.ID || p.Status.IsTerminal() {
			continue
		}
		effort += p.EstimatedHours
	}
	percent := 0
	if r.CapacityHours > 0 {
		percent = int(effort / r.CapacityHours * 100)
	}
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return Load{ResourceID: r.ID, Percent: percent, Band: bandOf(percent)}
}

func bandOf(percent int) LoadBand {
	switch {
	case percent < 60:
		return BandAvailable
	case percent <= 80:
		return BandNormal
	default:
		return BandOverloaded
	}
}

// Conflict is a pair of plans on the same resource with overlapping
// execution intervals.
type Conflict struct {
	ResourceID string `json:"resourceId"`
	PlanA      string `json:"planA"`
	PlanB      string `json:"planB"`
}

// Conflicts flags same-resource plans whose [start, end] intervals
// overlap. Intervals touching only at an endpoint do not conflict.
func Conflicts(plans []models.ActionPlan) []Conflict {
	byResource := map[string][]models.ActionPlan{}
	for _, p := range plans {
		if p.AssigneeID == "" || p.StartDate.IsZero() || p.EndDate.IsZero() || p.Status.IsTerminal() {
			continue
		}
		byResource[p.AssigneeID] = append(byResource[p.AssigneeID], p)
	}

	resources := make([]string, 0, len(byResource))
	for id := range byResource {
		resources = append(resources, id)
	}
	sort.Strings(resources)

	var out []Conflict
	for _, id := range resources {
		group := byResource[id]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if intervalsOverlap(group[i].StartDate, group[i].EndDate, group[j].StartDate, group[j].EndDate) {
					out = append(out, Conflict{
						ResourceID: id,
						PlanA:      group[i].ID.Hex(),
						PlanB:      group[j].ID.Hex(),
					})
				}
			}
		}
	}
	return out
}

func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Suggestion proposes moving one plan off an overloaded resource. The
// efficiency delta is a heuristic, not a guarantee.
type Suggestion struct {
	PlanID          string `json:"planId"`
	FromResourceID  string `json:"fromResourceId"`
	ToResourceID    string `json:"toResourceId"`
	EfficiencyDelta int    `json:"efficiencyDelta"`
	Reason          string `json:"reason"`
}

// Suggestions proposes, for every overloaded resource, reassigning its
// lowest-priority non-conflicting plan to the least loaded resource that
// shares at least one required skill.
func Suggestions(plans []models.ActionPlan, resources []Resource) []Suggestion {
	loads := map[string]Load{}
	for _, r := range resources {
		loads[r.ID] = ResourceLoad(plans, r)
	}

	conflicting := map[string]bool{}
	for _, c := range Conflicts(plans) {
		conflicting[c.PlanA] = true
		conflicting[c.PlanB] = true
	}

	var out []Suggestion
	for _, src := range resources {
		if loads[src.ID].Band != BandOverloaded {
			continue
		}

		candidate := pickMovable(plans, src.ID, conflicting)
		if candidate == nil {
			continue
		}

		target := pickTarget(resources, loads, src.ID, candidate.RequiredSkills)
		if target == nil {
			continue
		}

		delta := (loads[src.ID].Percent - loads[target.ID].Percent) / 2
		if delta > 25 {
			delta = 25
		}
		out = append(out, Suggestion{
			PlanID:          candidate.ID.Hex(),
			FromResourceID:  src.ID,
			ToResourceID:    target.ID,
			EfficiencyDelta: delta,
			Reason: fmt.Sprintf("%s is overloaded (%d%%); %s has capacity (%d%%)",
				src.Name, loads[src.ID].Percent, target.Name, loads[target.ID].Percent),
		})
	}
	return out
}

var priorityRank = map[models.ActionPriority]int{
	models.PriorityLow:      0,
	models.PriorityMedium:   1,
	models.PriorityHigh:     2,
	models.PriorityCritical: 3,
}

func pickMovable(plans []models.ActionPlan, resourceID string, conflicting map[string]bool) *models.ActionPlan {
	var best *models.ActionPlan
	for i := range plans {
		p := &plans[i]
		if p.AssigneeID != resourceID || p.Status.IsTerminal() || conflicting[p.ID.Hex()] {
			continue
		}
		if best == nil || priorityRank[p.Priority] < priorityRank[best.Priority] {
			best = p
		}
	}
	return best
}

func pickTarget(resources []Resource, loads map[string]Load, excludeID string, requiredSkills []string) *Resource {
	var best *Resource
	for i := range resources {
		r := &resources[i]
		if r.ID == excludeID {
			continue
		}
		if len(requiredSkills) > 0 && !sharesSkill(r.Skills, requiredSkills) {
			continue
		}
		if best == nil || loads[r.ID].Percent < loads[best.ID].Percent {
			best = r
		}
	}
	return best
}

func sharesSkill(have, required []string) bool {
	for _, h := range have {
		for _, r := range required {
			if h == r {
				return true
			}
		}
	}
	return false
}
