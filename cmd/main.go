package main

import (
	"os"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/auth"
	"github.com/AlaBenAicha/sahtee-sub002/internal/db"
	"github.com/AlaBenAicha/sahtee-sub002/internal/graph"
	"github.com/AlaBenAicha/sahtee-sub002/internal/handlers"
	"github.com/AlaBenAicha/sahtee-sub002/internal/lifecycle"
	"github.com/AlaBenAicha/sahtee-sub002/internal/recommend"
	"github.com/AlaBenAicha/sahtee-sub002/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "X-Requested-With", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var linker graph.Linker
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		db.InitNeo4j(uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"))
		linker = graph.NewNeo4j(db.GetNeo4jDriver())
	}

	var analysis *recommend.AnalysisClient
	if url := os.Getenv("ANALYSIS_URL"); url != "" {
		analysis = recommend.NewAnalysisClient(url)
	}

	s := store.NewMongo(db.DB)
	lc := lifecycle.New(s, linker)
	rec := recommend.New(s, lc, analysis, recommend.RuleConfig{})
	api := handlers.NewAPI(s, lc, rec, linker)

	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.POST("/refresh", handlers.RefreshToken)

	protected := r.Group("/api")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/permissions", handlers.GetPermissions)

		protected.GET("/actionplans", api.ActionPlans)
		protected.POST("/actionplans", api.CreateActionPlan)
		protected.GET("/actionplans/:id", api.ViewActionPlan)
		protected.POST("/actionplans/:id/transition", api.TransitionActionPlan)
		protected.POST("/actionplans/:id/progress", api.SetProgress)
		protected.POST("/actionplans/:id/checklist", api.AddChecklistItem)
		protected.PUT("/actionplans/:id/checklist/:itemid", api.ToggleChecklistItem)
		protected.POST("/actionplans/:id/comment", api.AddComment)

		protected.GET("/views/kanban", api.KanbanBoard)
		protected.GET("/views/calendar", api.CalendarView)

		protected.GET("/incidents", api.Incidents)
		protected.POST("/incidents", api.CreateIncident)
		protected.GET("/incidents/:id", api.ViewIncident)

		protected.POST("/recommendations/run", api.RunRecommendations)
		protected.GET("/recommendations", api.Recommendations)
		protected.POST("/recommendations/:id/accept", api.AcceptRecommendation)
		protected.POST("/recommendations/:id/reject", api.RejectRecommendation)
		protected.POST("/recommendations/:id/modify", api.ModifyRecommendation)
		protected.GET("/recommendations/history", api.RecommendationHistory)

		protected.POST("/schedule/analyze", api.AnalyzeSchedule)

		protected.GET("/trainingplans", api.TrainingPlans)
		protected.GET("/equipment", api.EquipmentRecommendations)
		protected.GET("/audits", api.Audits)

		protected.GET("/entity/:id/graph", api.EntityGraph)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
