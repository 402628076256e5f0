package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fragrance-sampler/bundle"
	"fragrance-sampler/models"
	"fragrance-sampler/service"
)

// BundleController handles HTTP requests for sampler bundles
type BundleController struct {
	service service.BundleServiceInterface
	logger  *zap.Logger
}

// NewBundleController creates a new BundleController
func NewBundleController(svc service.BundleServiceInterface, logger *zap.Logger) *BundleController {
	return &BundleController{
		service: svc,
		logger:  logger,
	}
}

// Build handles POST /bundles/build
func (c *BundleController) Build(ctx *gin.Context) {
	var req models.BuildBundlesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Info("❌ Build: invalid payload", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := c.service.Build(ctx.Request.Context(), req.Budget)
	if err != nil {
		c.writeServiceError(ctx, "Build", err)
		return
	}

	if result.Outcome == models.OutcomeNoBundleAtBudget {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  models.OutcomeNoBundleAtBudget,
			"budget": result.Budget,
			"tier":   result.Tier,
		})
		return
	}

	c.logger.Info("✅ Build: bundles returned",
		zap.String("budget", result.Budget.StringFixed(2)),
		zap.String("outcome", result.Outcome),
		zap.Int("bundles", len(result.Bundles)))
	ctx.JSON(http.StatusOK, result)
}

// ValidateProposals handles POST /admin/bundles/validate
func (c *BundleController) ValidateProposals(ctx *gin.Context) {
	var req models.ValidateProposalsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Info("❌ ValidateProposals: invalid payload", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := c.service.ValidateProposals(ctx.Request.Context(), req.Budget, req.Proposals)
	if err != nil {
		c.writeServiceError(ctx, "ValidateProposals", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *BundleController) writeServiceError(ctx *gin.Context, op string, err error) {
	if errors.Is(err, bundle.ErrInvalidBudget) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.logger.Error("❌ "+op+": failed", zap.Error(err))
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
}
