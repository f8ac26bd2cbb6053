package handlers

import (
	"net/http"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/schedule"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"github.com/gin-gonic/gin"
)

// AnalyzeSchedule runs the scheduling advisor over the organization's
// plans and the resources supplied in the request body.
func (a *API) AnalyzeSchedule(c *gin.Context) {
	var request struct {
		Resources      []schedule.Resource `json:"resources"`
		PlanningWindow int                 `json:"planningWindowDays,omitempty"`
		MediumWindow   int                 `json:"mediumWindowDays,omitempty"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	th := schedule.DefaultThresholds()
	if request.PlanningWindow > 0 {
		th.PlanningWindow = time.Duration(request.PlanningWindow) * 24 * time.Hour
	}
	if request.MediumWindow > 0 {
		th.MediumWindow = time.Duration(request.MediumWindow) * 24 * time.Hour
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	plans, err := a.Store.ActionPlans(ctx, store.ActionPlanQuery{OrganizationID: orgFrom(c)})
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	quadrants := map[schedule.Quadrant][]string{}
	for _, p := range plans {
		if p.Status.IsTerminal() {
			continue
		}
		q := schedule.QuadrantOf(p.Priority, schedule.UrgencyOf(&p, now, th))
		quadrants[q] = append(quadrants[q], p.ID.Hex())
	}

	loads := make([]schedule.Load, 0, len(request.Resources))
	for _, r := range request.Resources {
		loads = append(loads, schedule.ResourceLoad(plans, r))
	}

	conflicts := schedule.Conflicts(plans)
	if conflicts == nil {
		conflicts = []schedule.Conflict{}
	}
	suggestions := schedule.Suggestions(plans, request.Resources)
	if suggestions == nil {
		suggestions = []schedule.Suggestion{}
	}

	c.JSON(http.StatusOK, gin.H{
		"quadrants":   quadrants,
		"loads":       loads,
		"conflicts":   conflicts,
		"suggestions": suggestions,
	})
}
