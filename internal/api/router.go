package api

import "github.com/gin-gonic/gin"

// SetupRouter wires the HTTP surface onto a Gin engine with the default
// logger and recovery middleware.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", h.Health)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/query", h.Query)
		apiV1.POST("/search", h.Search)
		apiV1.POST("/ingest", h.Ingest)
		apiV1.GET("/filters", h.Filters)
		apiV1.GET("/stats", h.Stats)
		apiV1.POST("/reset", h.Reset)
	}

	return r
}
