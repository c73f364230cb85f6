package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/schedule"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/connection"
)

const schedulerTick = time.Hour

// RunScheduler fires the calendar jobs when their dates come up. The jobs
// themselves are idempotent per period, so a tick that lands twice on the
// same date is harmless; the redis lock just keeps instances from doing the
// same work simultaneously.
func RunScheduler() error {
	logger := zap.L().Named("app.scheduler")

	gormDB, err := connectDB()
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	lock, err := schedule.NewRedisLock(redisClient, "time-off:scheduler:lock", 30*time.Minute)
	if err != nil {
		return err
	}

	ledgerRepo := ledger.NewRepository(gormDB)
	profileRepo := profile.NewRepository(gormDB)
	jobRunRepo := schedule.NewJobRunRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	creditJob := schedule.NewQuarterlyCreditJob(ledgerRepo, profileRepo, jobRunRepo, outboxRepo)
	carryJob := schedule.NewYearEndCarryJob(ledgerRepo, jobRunRepo, outboxRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		runDueJobs(ctx, lock, creditJob, carryJob, time.Now().UTC(), logger)

		ticker := time.NewTicker(schedulerTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runDueJobs(ctx, lock, creditJob, carryJob, now.UTC(), logger)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("scheduler shutting down")
	cancel()

	return nil
}

func runDueJobs(
	ctx context.Context,
	lock schedule.Lock,
	creditJob *schedule.QuarterlyCreditJob,
	carryJob *schedule.YearEndCarryJob,
	now time.Time,
	logger *zap.Logger,
) {
	locked, err := lock.Acquire(ctx)
	if err != nil {
		logger.Error("acquire scheduler lock failed", zap.Error(err))
		return
	}
	if !locked {
		logger.Debug("another scheduler instance holds the lock, skipping cycle")
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.Error("release scheduler lock failed", zap.Error(err))
		}
	}()

	if now.Day() == 1 {
		if _, ok := ledger.QuarterStartMonth(now.Month()); ok {
			if _, err := creditJob.Run(ctx, now); err != nil {
				logger.Error("quarterly credit run failed", zap.Error(err))
			}
		}
	}

	if now.Month() == time.December && now.Day() == 31 {
		if _, err := carryJob.CalculateCarry(ctx, now.Year()); err != nil {
			logger.Error("calculate carry run failed", zap.Error(err))
		}
	}

	if now.Month() == time.January && now.Day() == 1 {
		if _, err := carryJob.ApplyNewYear(ctx, now.Year()); err != nil {
			logger.Error("apply new year run failed", zap.Error(err))
		}
	}
}
