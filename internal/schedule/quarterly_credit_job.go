package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/events"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
)

const quarterlyCreditJobName = "quarterly_credit"

// Report is the per-user tally a batch job hands back. A skipped run carries
// the reason instead of counts.
type Report struct {
	JobName   string `json:"job_name"`
	PeriodKey string `json:"period_key,omitempty"`
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
	Skipped   bool   `json:"skipped"`
	Reason    string `json:"reason,omitempty"`
}

// QuarterlyCreditJob credits 5 days to the opening quarter for every active
// user. The as-of date comes in as a parameter so runs are replayable against
// synthetic dates.
type QuarterlyCreditJob struct {
	ledgers  ledger.Repository
	profiles profile.Repository
	jobRuns  JobRunRepository
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewQuarterlyCreditJob(
	ledgers ledger.Repository,
	profiles profile.Repository,
	jobRuns JobRunRepository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) *QuarterlyCreditJob {
	l := zap.L().Named("schedule.quarterly_credit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.quarterly_credit")
	}
	return &QuarterlyCreditJob{
		ledgers:  ledgers,
		profiles: profiles,
		jobRuns:  jobRuns,
		outbox:   outbox,
		logger:   l,
	}
}

func (j *QuarterlyCreditJob) Name() string {
	return quarterlyCreditJobName
}

func (j *QuarterlyCreditJob) Run(ctx context.Context, asOf time.Time) (Report, error) {
	quarter, ok := ledger.QuarterStartMonth(asOf.Month())
	if !ok {
		j.logger.Info("not a quarter start month, skipping",
			zap.String("as_of", asOf.Format("2006-01-02")),
		)
		return Report{
			JobName: quarterlyCreditJobName,
			Skipped: true,
			Reason:  "not a quarter start month",
		}, nil
	}

	year := asOf.Year()
	periodKey := QuarterPeriodKey(year, quarter)

	claimed, err := j.jobRuns.MarkRun(ctx, quarterlyCreditJobName, periodKey)
	if err != nil {
		return Report{}, err
	}
	if !claimed {
		j.logger.Warn("quarterly credit already ran for this period, skipping",
			zap.String("period_key", periodKey),
		)
		return Report{
			JobName:   quarterlyCreditJobName,
			PeriodKey: periodKey,
			Skipped:   true,
			Reason:    "already credited for this period",
		}, nil
	}

	userIDs, err := j.profiles.ListActiveIDs(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{JobName: quarterlyCreditJobName, PeriodKey: periodKey}
	delta := creditDelta(quarter)

	for _, userID := range userIDs {
		// A missing row is created at zero first, so the credit itself is
		// always an increment and never a lost-update overwrite.
		if _, err := j.ledgers.CreateIfAbsent(ctx, &ledger.LeaveLedger{
			UserID: userID,
			Year:   year,
		}); err != nil {
			report.Errors++
			j.logger.Error("quarterly credit ensure ledger failed",
				zap.String("user_id", userID.String()),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		applied, err := j.ledgers.ApplyDelta(ctx, userID, year, delta)
		if err != nil || !applied {
			report.Errors++
			j.logger.Error("quarterly credit apply failed",
				zap.String("user_id", userID.String()),
				zap.Int("year", year),
				zap.Int("quarter", quarter),
				zap.Error(err),
			)
			continue
		}
		report.Processed++
	}

	j.logger.Info("quarterly credit finished",
		zap.String("period_key", periodKey),
		zap.Int("credited", report.Processed),
		zap.Int("errors", report.Errors),
	)
	j.enqueueCompletedEvent(ctx, report, year, quarter)

	return report, nil
}

func (j *QuarterlyCreditJob) enqueueCompletedEvent(ctx context.Context, report Report, year, quarter int) {
	payload, err := json.Marshal(events.LedgerJobCompletedEvent{
		EventType: "ledger_job_completed",
		JobName:   quarterlyCreditJobName,
		Year:      year,
		Quarter:   quarter,
		Credited:  report.Processed,
		Errors:    report.Errors,
		RunAt:     time.Now().UTC(),
	})
	if err != nil {
		j.logger.Error("encode job completed event failed", zap.Error(err))
		return
	}

	if err := j.outbox.Create(ctx, &kafka.OutboxEvent{
		AggregateType: "ledger_job",
		AggregateID:   report.PeriodKey,
		EventType:     "ledger_job_completed",
		Topic:         events.LedgerJobCompletedTopic,
		Payload:       payload,
	}); err != nil {
		j.logger.Error("enqueue job completed event failed", zap.Error(err))
	}
}

func creditDelta(quarter int) ledger.FieldDeltas {
	var d ledger.FieldDeltas
	switch quarter {
	case 1:
		d.Q1 = domain.QuarterlyCreditDays
	case 2:
		d.Q2 = domain.QuarterlyCreditDays
	case 3:
		d.Q3 = domain.QuarterlyCreditDays
	case 4:
		d.Q4 = domain.QuarterlyCreditDays
	}
	return d
}

// QuarterPeriodKey names a credit window, e.g. "2026-Q3".
func QuarterPeriodKey(year, quarter int) string {
	return fmt.Sprintf("%d-Q%d", year, quarter)
}
