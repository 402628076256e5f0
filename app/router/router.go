package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fragrance-sampler/app/controller"
)

type Controllers struct {
	Bundle  *controller.BundleController
	Catalog *controller.CatalogController
}

// pingHandler handles GET /ping
func pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(controllers *Controllers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	// Ping endpoint
	r.GET("/ping", pingHandler)

	// Catalog routes
	r.GET("/catalog/candidates", controllers.Catalog.ListCandidates)

	// Bundle routes
	r.POST("/bundles/build", controllers.Bundle.Build)

	// Admin routes
	admin := r.Group("/admin")
	admin.POST("/bundles/validate", controllers.Bundle.ValidateProposals)

	return r
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("🌐 Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
