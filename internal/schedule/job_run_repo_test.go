package schedule_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/schedule"
)

func newScheduleDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ledger.LeaveLedger{},
		&schedule.JobRun{},
		&kafka.OutboxEvent{},
	))
	return db
}

// fakeActiveProfiles serves only the active-ID listing the jobs depend on.
type fakeActiveProfiles struct {
	ids []uuid.UUID
}

func (f *fakeActiveProfiles) WithTx(tx *gorm.DB) profile.Repository { return f }

func (f *fakeActiveProfiles) Create(ctx context.Context, p *profile.Profile) error { return nil }

func (f *fakeActiveProfiles) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeActiveProfiles) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeActiveProfiles) List(ctx context.Context) ([]profile.Profile, error) { return nil, nil }

func (f *fakeActiveProfiles) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return f.ids, nil
}

func (f *fakeActiveProfiles) Update(ctx context.Context, p *profile.Profile) error { return nil }

func (f *fakeActiveProfiles) IsManagerOf(ctx context.Context, managerID, userID string) (bool, error) {
	return false, nil
}

func TestJobRunRepositoryMarkRun(t *testing.T) {
	db := newScheduleDB(t)
	repo := schedule.NewJobRunRepository(db)

	t.Run("success first claim wins", func(t *testing.T) {
		claimed, err := repo.MarkRun(context.Background(), "quarterly_credit", "2026-Q3")
		assert.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("negative same period cannot be claimed twice", func(t *testing.T) {
		claimed, err := repo.MarkRun(context.Background(), "quarterly_credit", "2026-Q3")
		assert.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("success another period is independent", func(t *testing.T) {
		claimed, err := repo.MarkRun(context.Background(), "quarterly_credit", "2026-Q4")
		assert.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.MarkRun(context.Background(), "year_end_carry_calculate", "2026-Q3")
		assert.NoError(t, err)
		assert.True(t, claimed)
	})
}
