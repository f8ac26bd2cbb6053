package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/AlaBenAicha/sahtee-sub002/internal/graph"

	"github.com/gin-gonic/gin"
)

// EntityGraph walks the link neighborhood of an entity (CAPA, incident,
// training or equipment). Falls back to an empty graph when no graph
// store is configured.
func (a *API) EntityGraph(c *gin.Context) {
	if a.Linker == nil {
		log.Println("graph store not configured, returning empty neighborhood")
		c.JSON(http.StatusOK, gin.H{"edges": []graph.Edge{}})
		return
	}

	hops, _ := strconv.Atoi(c.DefaultQuery("hops", "3"))

	ctx, cancel := requestContext(c)
	defer cancel()
	edges, err := a.Linker.Neighborhood(ctx, orgFrom(c), c.Param("id"), hops)
	if err != nil {
		log.Printf("graph neighborhood query failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"edges": []graph.Edge{}, "degraded": true})
		return
	}
	if edges == nil {
		edges = []graph.Edge{}
	}
	c.JSON(http.StatusOK, gin.H{"edges": edges})
}
