package app

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/audit"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/leave"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/middleware"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/schedule"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/connection"
)

// BuildApp wires infrastructure and routes onto the router.
func BuildApp(router *gin.Engine) error {
	gormDB, err := connectDB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return registerModules(router, gormDB, redisClient)
}

func connectDB() (*gorm.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return nil, err
	}

	if os.Getenv("DB_AUTO_MIGRATE") == "true" {
		if err := gormDB.AutoMigrate(
			&profile.Profile{},
			&ledger.LeaveLedger{},
			&leave.LeaveRequest{},
			&schedule.JobRun{},
			&kafka.OutboxEvent{},
			&audit.DecisionAudit{},
		); err != nil {
			return nil, err
		}
	}

	return gormDB, nil
}

func corsOrigins() []string {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		return []string{"http://localhost:5173"}
	}
	return []string{origins}
}
