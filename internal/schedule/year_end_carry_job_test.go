package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/schedule"
)

func newCarryJob(db *gorm.DB) *schedule.YearEndCarryJob {
	return schedule.NewYearEndCarryJob(
		ledger.NewRepository(db),
		schedule.NewJobRunRepository(db),
		kafka.NewOutboxRepository(db),
	)
}

func TestYearEndCarryJobCalculateCarry(t *testing.T) {
	t.Run("success banks half of the remaining quarters", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: userID, Year: 2026,
			Q1: 3, Q2: 2, Q3: 1, Q4: 0,
			CarriedFromLastYear: 2, OptionalUsed: 1,
		}).Error)

		report, err := newCarryJob(db).CalculateCarry(context.Background(), 2026)

		assert.NoError(t, err)
		assert.Equal(t, 1, report.Processed)
		assert.Zero(t, report.Errors)

		row := getLedgerRow(t, db, userID, 2026)
		assert.Zero(t, row.Q1)
		assert.Zero(t, row.Q2)
		assert.Zero(t, row.Q3)
		assert.Zero(t, row.Q4)
		// 3+2+1+0 = 6 days left, floor(50%) = 3. The old carried balance
		// does not roll a second time.
		assert.Equal(t, 3, row.CarriedFromLastYear)
		assert.True(t, row.CarryCalculated)
		assert.Equal(t, 1, row.OptionalUsed)
	})

	t.Run("odd totals round down", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: userID, Year: 2026,
			Q1: 5, Q2: 0, Q3: 0, Q4: 0,
		}).Error)

		_, err := newCarryJob(db).CalculateCarry(context.Background(), 2026)

		assert.NoError(t, err)
		assert.Equal(t, 2, getLedgerRow(t, db, userID, 2026).CarriedFromLastYear)
	})

	t.Run("second run of the same year is a no-op", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: userID, Year: 2026, Q1: 4,
		}).Error)
		job := newCarryJob(db)

		_, err := job.CalculateCarry(context.Background(), 2026)
		require.NoError(t, err)

		report, err := job.CalculateCarry(context.Background(), 2026)

		assert.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, "carry already calculated for this year", report.Reason)
		assert.Equal(t, 2, getLedgerRow(t, db, userID, 2026).CarriedFromLastYear)
	})
}

func TestYearEndCarryJobApplyNewYear(t *testing.T) {
	t.Run("success opens next year rows with q1 credit plus carry", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: userID, Year: 2026,
			CarriedFromLastYear: 3, CarryCalculated: true,
		}).Error)

		report, err := newCarryJob(db).ApplyNewYear(context.Background(), 2027)

		assert.NoError(t, err)
		assert.Equal(t, 1, report.Processed)
		assert.Zero(t, report.Errors)

		row := getLedgerRow(t, db, userID, 2027)
		assert.Equal(t, 5, row.Q1)
		assert.Equal(t, 3, row.CarriedFromLastYear)
		assert.Zero(t, row.OptionalUsed)
		assert.False(t, row.CarryCalculated)
	})

	t.Run("negative refuses rows whose carry was never calculated", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: userID, Year: 2026,
			Q4: 4, CarryCalculated: false,
		}).Error)

		report, err := newCarryJob(db).ApplyNewYear(context.Background(), 2027)

		assert.NoError(t, err)
		assert.Zero(t, report.Processed)
		assert.Equal(t, 1, report.Errors)

		var count int64
		require.NoError(t, db.Model(&ledger.LeaveLedger{}).
			Where("year = ?", 2027).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("claims the q1 window so the credit job does not double it", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: userID, Year: 2026,
			CarriedFromLastYear: 2, CarryCalculated: true,
		}).Error)

		_, err := newCarryJob(db).ApplyNewYear(context.Background(), 2027)
		require.NoError(t, err)

		creditJob := schedule.NewQuarterlyCreditJob(
			ledger.NewRepository(db),
			&fakeActiveProfiles{ids: []uuid.UUID{userID}},
			schedule.NewJobRunRepository(db),
			kafka.NewOutboxRepository(db),
		)
		report, err := creditJob.Run(context.Background(), time.Date(2027, time.January, 1, 2, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, 5, getLedgerRow(t, db, userID, 2027).Q1)
	})

	t.Run("second rollover is a no-op", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: userID, Year: 2026,
			CarriedFromLastYear: 1, CarryCalculated: true,
		}).Error)
		job := newCarryJob(db)

		_, err := job.ApplyNewYear(context.Background(), 2027)
		require.NoError(t, err)

		report, err := job.ApplyNewYear(context.Background(), 2027)

		assert.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, "new year rollover already applied", report.Reason)
	})
}
