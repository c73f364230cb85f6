package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/events"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/schedule"
)

// flakyLedgerRepo fails ApplyDelta for one user and delegates the rest.
type flakyLedgerRepo struct {
	ledger.Repository
	failFor uuid.UUID
}

func (f *flakyLedgerRepo) ApplyDelta(ctx context.Context, userID uuid.UUID, year int, delta ledger.FieldDeltas) (bool, error) {
	if userID == f.failFor {
		return false, errors.New("store unavailable")
	}
	return f.Repository.ApplyDelta(ctx, userID, year, delta)
}

func getLedgerRow(t *testing.T, db *gorm.DB, userID uuid.UUID, year int) *ledger.LeaveLedger {
	t.Helper()
	var row ledger.LeaveLedger
	require.NoError(t, db.Where("user_id = ? AND year = ?", userID, year).First(&row).Error)
	return &row
}

func TestQuarterlyCreditJobRun(t *testing.T) {
	asOfQ3 := time.Date(2026, time.July, 1, 6, 0, 0, 0, time.UTC)

	t.Run("success credits five days to the opening quarter", func(t *testing.T) {
		db := newScheduleDB(t)
		withRow := uuid.New()
		withoutRow := uuid.New()
		require.NoError(t, db.Create(&ledger.LeaveLedger{
			ID: uuid.New(), UserID: withRow, Year: 2026, Q1: 1, Q3: 2,
		}).Error)

		job := schedule.NewQuarterlyCreditJob(
			ledger.NewRepository(db),
			&fakeActiveProfiles{ids: []uuid.UUID{withRow, withoutRow}},
			schedule.NewJobRunRepository(db),
			kafka.NewOutboxRepository(db),
		)

		report, err := job.Run(context.Background(), asOfQ3)

		assert.NoError(t, err)
		assert.False(t, report.Skipped)
		assert.Equal(t, "2026-Q3", report.PeriodKey)
		assert.Equal(t, 2, report.Processed)
		assert.Zero(t, report.Errors)

		assert.Equal(t, 7, getLedgerRow(t, db, withRow, 2026).Q3)
		fresh := getLedgerRow(t, db, withoutRow, 2026)
		assert.Equal(t, 5, fresh.Q3)
		assert.Zero(t, fresh.Q1)

		var event kafka.OutboxEvent
		require.NoError(t, db.First(&event, "aggregate_id = ?", "2026-Q3").Error)
		assert.Equal(t, events.LedgerJobCompletedTopic, event.Topic)
	})

	t.Run("skips outside quarter start months", func(t *testing.T) {
		db := newScheduleDB(t)
		job := schedule.NewQuarterlyCreditJob(
			ledger.NewRepository(db),
			&fakeActiveProfiles{ids: []uuid.UUID{uuid.New()}},
			schedule.NewJobRunRepository(db),
			kafka.NewOutboxRepository(db),
		)

		report, err := job.Run(context.Background(), time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, "not a quarter start month", report.Reason)

		var count int64
		require.NoError(t, db.Model(&schedule.JobRun{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("second run of the same period is a no-op", func(t *testing.T) {
		db := newScheduleDB(t)
		userID := uuid.New()
		job := schedule.NewQuarterlyCreditJob(
			ledger.NewRepository(db),
			&fakeActiveProfiles{ids: []uuid.UUID{userID}},
			schedule.NewJobRunRepository(db),
			kafka.NewOutboxRepository(db),
		)

		_, err := job.Run(context.Background(), asOfQ3)
		require.NoError(t, err)

		report, err := job.Run(context.Background(), asOfQ3)

		assert.NoError(t, err)
		assert.True(t, report.Skipped)
		assert.Equal(t, "already credited for this period", report.Reason)
		assert.Equal(t, 5, getLedgerRow(t, db, userID, 2026).Q3)
	})

	t.Run("one failing user does not stop the batch", func(t *testing.T) {
		db := newScheduleDB(t)
		healthy := uuid.New()
		broken := uuid.New()
		job := schedule.NewQuarterlyCreditJob(
			&flakyLedgerRepo{Repository: ledger.NewRepository(db), failFor: broken},
			&fakeActiveProfiles{ids: []uuid.UUID{broken, healthy}},
			schedule.NewJobRunRepository(db),
			kafka.NewOutboxRepository(db),
		)

		report, err := job.Run(context.Background(), asOfQ3)

		assert.NoError(t, err)
		assert.Equal(t, 1, report.Processed)
		assert.Equal(t, 1, report.Errors)
		assert.Equal(t, 5, getLedgerRow(t, db, healthy, 2026).Q3)
		assert.Zero(t, getLedgerRow(t, db, broken, 2026).Q3)
	})
}
