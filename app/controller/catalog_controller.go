package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fragrance-sampler/service"
)

// CatalogController handles HTTP requests for the sampler catalog
type CatalogController struct {
	service service.BundleServiceInterface
	logger  *zap.Logger
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(svc service.BundleServiceInterface, logger *zap.Logger) *CatalogController {
	return &CatalogController{
		service: svc,
		logger:  logger,
	}
}

// ListCandidates handles GET /catalog/candidates
func (c *CatalogController) ListCandidates(ctx *gin.Context) {
	items, err := c.service.Candidates(ctx.Request.Context())
	if err != nil {
		c.logger.Error("❌ ListCandidates: failed to load catalog", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
