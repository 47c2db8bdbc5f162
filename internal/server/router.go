package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vocnet/skos-backend/internal/handlers"
)

type RouterConfig struct {
	Mode            string
	OaiHandler      *handlers.OaiHandler
	ConceptHandler  *handlers.ConceptHandler
	RelationHandler *handlers.RelationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// The protocol multiplexes every operation on one endpoint; the
	// handler itself rejects methods other than GET and POST.
	router.Any("/oai-pmh", cfg.OaiHandler.Handle)

	api := router.Group("/api")
	{
		// Concepts
		api.GET("/concepts", cfg.ConceptHandler.Get)
		api.POST("/concepts", cfg.ConceptHandler.Create)
		api.PUT("/concepts/status", cfg.ConceptHandler.ChangeStatus)
		// Relations
		api.GET("/relation-types", cfg.RelationHandler.ListTypes)
		api.GET("/relations", cfg.RelationHandler.Query)
		api.GET("/concepts/relations", cfg.RelationHandler.ForConcept)
		api.POST("/relations", cfg.RelationHandler.Add)
		api.DELETE("/relations", cfg.RelationHandler.Delete)
	}

	return router
}
