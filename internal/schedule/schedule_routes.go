package schedule

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/middleware"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	logger *zap.Logger,
) {
	jobs := r.Group("/admin/jobs")
	jobs.Use(middleware.AuthMiddleware())
	jobs.Use(middleware.ContextLogger(logger))
	{
		jobs.POST("/quarterly-credit",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "jobs", "run"),
			handler.RunQuarterlyCredit,
		)

		jobs.POST("/year-end-carry",
			middleware.RateLimitByUser(0.1, 1),
			middleware.RBACAuthorize(rbacService, "jobs", "run"),
			handler.RunYearEndCarry,
		)
	}
}
