package ledger

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
	ledgers := r.Group("/ledger")
	ledgers.Use(middleware.AuthMiddleware())
	ledgers.Use(middleware.ContextLogger(logger))
	{
		ledgers.GET("/me",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "ledger", "read"),
			handler.Me,
		)

		ledgers.GET("/users/:user_id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "ledger", "read_team"),
			handler.GetByUser,
		)

		ledgers.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "ledger", "read_all"),
			handler.ListByYear,
		)
	}
}
