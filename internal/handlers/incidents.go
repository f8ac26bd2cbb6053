package handlers

import (
	"net/http"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (a *API) CreateIncident(c *gin.Context) {
	var incident models.Incident
	if err := c.ShouldBindJSON(&incident); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	incident.OrganizationID = orgFrom(c)
	incident.ReportedBy = usernameFrom(c)
	if incident.Status == "" {
		incident.Status = "open"
	}
	if incident.OccurredAt.IsZero() {
		incident.OccurredAt = time.Now()
	}
	incident.CreatedAt = time.Now()

	ctx, cancel := requestContext(c)
	defer cancel()
	if incident.Reference == "" {
		seq, err := a.Store.NextSequence(ctx, incident.OrganizationID, "INC", incident.CreatedAt)
		if err != nil {
			respondError(c, err)
			return
		}
		incident.Reference = models.FormatReference("INC", incident.CreatedAt, seq)
	}
	if err := a.Store.CreateIncident(ctx, &incident); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, incident)
}

func (a *API) Incidents(c *gin.Context) {
	query := store.IncidentQuery{OrganizationID: orgFrom(c)}
	if c.Query("open") == "true" {
		query.OpenOnly = true
	}
	for _, s := range c.QueryArray("severity") {
		query.Severities = append(query.Severities, models.IncidentSeverity(s))
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	incidents, err := a.Store.Incidents(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}
	c.JSON(http.StatusOK, incidents)
}

func (a *API) ViewIncident(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	incident, err := a.Store.Incident(ctx, orgFrom(c), objectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}
