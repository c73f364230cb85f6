package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobRun is the idempotency marker for scheduled batch runs, one row per
// (job, period). A second run of the same period finds the row and backs off.
type JobRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobName   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_job_runs_name_period"`
	PeriodKey string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_job_runs_name_period"`
	RanAt     time.Time `gorm:"not null"`
}

func (JobRun) TableName() string {
	return "job_runs"
}

//go:generate mockgen -source=job_run_repo.go -destination=mock/job_run_repo_mock.go -package=mock
type JobRunRepository interface {
	// MarkRun claims the (job, period) slot. It returns true when this
	// caller inserted the marker and false when the period was already
	// claimed, atomically even under concurrent invocations.
	MarkRun(ctx context.Context, jobName, periodKey string) (bool, error)
	WithTx(tx *gorm.DB) JobRunRepository
}

type jobRunRepository struct {
	db *gorm.DB
}

func NewJobRunRepository(db *gorm.DB) JobRunRepository {
	return &jobRunRepository{db: db}
}

func (r *jobRunRepository) WithTx(tx *gorm.DB) JobRunRepository {
	return &jobRunRepository{db: tx}
}

func (r *jobRunRepository) MarkRun(ctx context.Context, jobName, periodKey string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_name"}, {Name: "period_key"}},
			DoNothing: true,
		}).
		Create(&JobRun{
			ID:        uuid.New(),
			JobName:   jobName,
			PeriodKey: periodKey,
			RanAt:     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
