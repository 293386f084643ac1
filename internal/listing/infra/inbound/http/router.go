package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterListingRoutes registra las rutas HTTP de listings y búsqueda.
func RegisterListingRoutes(r *gin.Engine, handler *ListingHandler) {
	listings := r.Group("/listings")
	{
		listings.GET("/search", handler.SearchGet)
		listings.POST("/search", handler.SearchPost)
		listings.GET("/search/stats", handler.SearchStats)

		listings.POST("", handler.CreateListing)
		listings.GET("/:id", handler.GetListing)
		listings.PUT("/:id", handler.UpdateListing)
		listings.DELETE("/:id", handler.DeleteListing)
	}
}

// HealthCheck comprueba una dependencia (DB, caché...).
type HealthCheck func(ctx context.Context) error

// RegisterHealthRoute expone GET /health; responde 503 si falla algún check.
func RegisterHealthRoute(r *gin.Engine, checks map[string]HealthCheck) {
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	})
}
