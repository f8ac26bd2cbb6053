package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/lifecycle"
	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 30*time.Second)
}

func (a *API) CreateActionPlan(c *gin.Context) {
	var plan models.ActionPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan.OrganizationID = orgFrom(c)
	plan.CreatedBy = usernameFrom(c)

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := a.Lifecycle.CreateActionPlan(ctx, &plan); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// ActionPlans lists plans with the status/assignee/date filters and a
// start/size window.
func (a *API) ActionPlans(c *gin.Context) {
	start, _ := strconv.Atoi(c.DefaultQuery("start", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	query := store.ActionPlanQuery{OrganizationID: orgFrom(c)}
	for _, s := range c.QueryArray("status") {
		query.Statuses = append(query.Statuses, models.ActionStatus(s))
	}
	query.AssigneeID = c.Query("assigneeId")
	if v := c.Query("dueBefore"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.DueBefore = t
		}
	}
	if v := c.Query("dueAfter"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query.DueAfter = t
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	plans, err := a.Store.ActionPlans(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}

	total := len(plans)
	if start > total {
		start = total
	}
	end := start + size
	if size <= 0 || end > total {
		end = total
	}
	page := plans[start:end]
	if page == nil {
		page = []models.ActionPlan{}
	}

	now := time.Now()
	type row struct {
		models.ActionPlan
		Overdue bool                       `json:"overdue"`
		DueSoon bool                       `json:"dueSoon"`
		Column  lifecycle.KanbanColumnName `json:"kanbanColumn"`
	}
	rows := make([]row, 0, len(page))
	for _, p := range page {
		overdue := lifecycle.IsOverdue(&p, now)
		rows = append(rows, row{
			ActionPlan: p,
			Overdue:    overdue,
			DueSoon:    lifecycle.IsDueSoon(&p, now),
			Column:     lifecycle.KanbanColumn(p.Priority, p.Status, overdue),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":          rows,
		"totalRowCount": total,
	})
}

func (a *API) ViewActionPlan(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	plan, err := a.Store.ActionPlan(ctx, orgFrom(c), objectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (a *API) TransitionActionPlan(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	var request struct {
		Status models.ActionStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	plan, err := a.Lifecycle.Transition(ctx, orgFrom(c), objectID, request.Status, usernameFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (a *API) SetProgress(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	var request struct {
		Progress int `json:"progress"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	plan, err := a.Lifecycle.SetManualProgress(ctx, orgFrom(c), objectID, request.Progress, usernameFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (a *API) AddChecklistItem(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	var request struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	item, err := a.Lifecycle.AddChecklistItem(ctx, orgFrom(c), objectID, request.Description, usernameFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *API) ToggleChecklistItem(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid item ID format"})
		return
	}

	var request struct {
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	plan, err := a.Lifecycle.ToggleChecklistItem(ctx, orgFrom(c), objectID, itemID, request.Completed, usernameFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (a *API) AddComment(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	var request struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	comment, err := a.Lifecycle.AppendComment(ctx, orgFrom(c), objectID, usernameFrom(c), request.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (a *API) KanbanBoard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	board, err := a.Lifecycle.Kanban(ctx, orgFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (a *API) CalendarView(c *gin.Context) {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		from, _ = time.Parse(time.RFC3339, v)
	}
	if v := c.Query("to"); v != "" {
		to, _ = time.Parse(time.RFC3339, v)
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	buckets, err := a.Lifecycle.Calendar(ctx, orgFrom(c), from, to, time.Local)
	if err != nil {
		respondError(c, err)
		return
	}
	if buckets == nil {
		buckets = []lifecycle.CalendarBucket{}
	}
	c.JSON(http.StatusOK, buckets)
}
