package handlers

import (
	"errors"
	"net/http"

	"github.com/AlaBenAicha/sahtee-sub002/internal/graph"
	"github.com/AlaBenAicha/sahtee-sub002/internal/lifecycle"
	"github.com/AlaBenAicha/sahtee-sub002/internal/models"
	"github.com/AlaBenAicha/sahtee-sub002/internal/recommend"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"github.com/gin-gonic/gin"
)

// API bundles the engines behind the HTTP surface. The store and the
// engines are injected; handlers hold no package-level state.
type API struct {
	Store     store.Store
	Lifecycle *lifecycle.Engine
	Recommend *recommend.Engine
	Linker    graph.Linker
}

func NewAPI(s store.Store, lc *lifecycle.Engine, rec *recommend.Engine, linker graph.Linker) *API {
	return &API{Store: s, Lifecycle: lc, Recommend: rec, Linker: linker}
}

func orgFrom(c *gin.Context) string {
	org, _ := c.Get("organizationId")
	s, _ := org.(string)
	return s
}

func usernameFrom(c *gin.Context) string {
	username, _ := c.Get("username")
	s, _ := username.(string)
	return s
}

// respondError maps the error taxonomy onto HTTP statuses. Everything in
// the taxonomy is recoverable; only unknown errors become 500s.
func respondError(c *gin.Context, err error) {
	var validation *models.ValidationError
	var transition *models.InvalidTransitionError
	var notFound *models.NotFoundError
	var concurrency *models.ConcurrencyConflict
	var external *models.ExternalServiceError
	var conflict *models.ConflictError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &concurrency):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.As(err, &external):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
