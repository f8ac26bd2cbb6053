package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RunRecommendations triggers the pattern rules. With refresh=external
// it also imports candidates from the analysis collaborator; a failing
// collaborator degrades to the rule output plus an error flag instead of
// blocking.
func (a *API) RunRecommendations(c *gin.Context) {
	org := orgFrom(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	emitted, err := a.Recommend.Run(ctx, org)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"emitted": emitted}
	if c.Query("refresh") == "external" {
		imported, err := a.Recommend.ImportExternal(ctx, org)
		if err != nil {
			var external *models.ExternalServiceError
			if !errors.As(err, &external) {
				respondError(c, err)
				return
			}
			response["externalError"] = err.Error()
		} else {
			response["imported"] = imported
		}
	}
	c.JSON(http.StatusOK, response)
}

func (a *API) Recommendations(c *gin.Context) {
	query := store.RecommendationQuery{OrganizationID: orgFrom(c)}
	for _, s := range c.QueryArray("status") {
		query.Statuses = append(query.Statuses, models.RecommendationStatus(s))
	}
	for _, t := range c.QueryArray("type") {
		query.Types = append(query.Types, models.RecommendationType(t))
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	recs, err := a.Store.Recommendations(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	c.JSON(http.StatusOK, recs)
}

func (a *API) AcceptRecommendation(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	spawnedID, err := a.Recommend.Accept(ctx, orgFrom(c), objectID, usernameFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted", "spawnedId": spawnedID})
}

func (a *API) RejectRecommendation(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := a.Recommend.Reject(ctx, orgFrom(c), objectID, usernameFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (a *API) ModifyRecommendation(c *gin.Context) {
	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid ID format"})
		return
	}

	var overrides models.SuggestedItem
	if err := c.ShouldBindJSON(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	spawnedID, err := a.Recommend.Modify(ctx, orgFrom(c), objectID, usernameFrom(c), overrides)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "modified", "spawnedId": spawnedID})
}

func (a *API) RecommendationHistory(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	ctx, cancel := requestContext(c)
	defer cancel()
	entries, err := a.Store.History(ctx, orgFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
