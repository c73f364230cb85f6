package profile

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
	profiles := r.Group("/profiles")
	profiles.Use(middleware.AuthMiddleware())
	profiles.Use(middleware.ContextLogger(logger))
	{
		profiles.GET("/me",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "profile", "read"),
			handler.Me,
		)

		profiles.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "profile", "manage"),
			handler.GetAll,
		)

		profiles.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "profile", "manage"),
			handler.GetById,
		)

		profiles.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "profile", "manage"),
			handler.Create,
		)

		profiles.PUT("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "profile", "manage"),
			handler.Update,
		)
	}
}
