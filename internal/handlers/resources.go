package handlers

import (
	"net/http"

	"github.com/AlaBenAicha/sahtee-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

func (a *API) TrainingPlans(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	plans, err := a.Store.TrainingPlans(ctx, orgFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if plans == nil {
		plans = []models.TrainingPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

func (a *API) EquipmentRecommendations(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	recs, err := a.Store.EquipmentRecommendations(ctx, orgFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if recs == nil {
		recs = []models.EquipmentRecommendation{}
	}
	c.JSON(http.StatusOK, recs)
}

func (a *API) Audits(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()
	audits, err := a.Store.Audits(ctx, orgFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if audits == nil {
		audits = []models.Audit{}
	}
	c.JSON(http.StatusOK, audits)
}
