package app

import (
	"context"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/auth"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/leave"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/rbac"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/rbac/infra"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/schedule"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	profileRepo := profile.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	jobRunRepo := schedule.NewJobRunRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)
	if err := rbacService.LoadPolicy(context.Background()); err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(authRepo, rbacService)
	profileService := profile.NewService(gormDB, profileRepo)
	ledgerEngine := ledger.NewEngine(ledgerRepo)
	ledgerService := ledger.NewService(ledgerRepo)
	leaveService := leave.NewService(gormDB, leaveRepo, profileRepo, ledgerEngine, outboxRepo)

	// --- Jobs (manual admin triggers share the scheduler's job objects) ---
	creditJob := schedule.NewQuarterlyCreditJob(ledgerRepo, profileRepo, jobRunRepo, outboxRepo)
	carryJob := schedule.NewYearEndCarryJob(ledgerRepo, jobRunRepo, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	profileHandler := profile.NewHandler(profileService)
	ledgerHandler := ledger.NewHandler(ledgerService)
	leaveHandler := leave.NewHandler(leaveService)
	scheduleHandler := schedule.NewHandler(creditJob, carryJob)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		profile.RegisterRoutes(api, profileHandler, rbacService, logger)
		ledger.RegisterRoutes(api, ledgerHandler, rbacService, logger)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, logger)
		schedule.RegisterRoutes(api, scheduleHandler, rbacService, logger)
	}

	return nil
}
