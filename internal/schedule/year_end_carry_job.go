package schedule

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/events"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
)

const (
	carryCalculateJobName = "year_end_carry_calculate"
	carryApplyJobName     = "year_end_carry_apply"
)

// YearEndCarryJob implements the two-phase year rollover: CalculateCarry on
// Dec 31 halves and banks the unused quarters, ApplyNewYear on Jan 1 opens
// the next year's rows.
type YearEndCarryJob struct {
	ledgers ledger.Repository
	jobRuns JobRunRepository
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

func NewYearEndCarryJob(
	ledgers ledger.Repository,
	jobRuns JobRunRepository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) *YearEndCarryJob {
	l := zap.L().Named("schedule.year_end_carry")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.year_end_carry")
	}
	return &YearEndCarryJob{
		ledgers: ledgers,
		jobRuns: jobRuns,
		outbox:  outbox,
		logger:  l,
	}
}

// CalculateCarry banks floor(50%) of each row's remaining quarter days into
// carried_from_last_year and zeroes the quarters, once per year.
func (j *YearEndCarryJob) CalculateCarry(ctx context.Context, year int) (Report, error) {
	periodKey := strconv.Itoa(year)

	claimed, err := j.jobRuns.MarkRun(ctx, carryCalculateJobName, periodKey)
	if err != nil {
		return Report{}, err
	}
	if !claimed {
		return Report{
			JobName:   carryCalculateJobName,
			PeriodKey: periodKey,
			Skipped:   true,
			Reason:    "carry already calculated for this year",
		}, nil
	}

	rows, err := j.ledgers.ListByYear(ctx, year)
	if err != nil {
		return Report{}, err
	}

	report := Report{JobName: carryCalculateJobName, PeriodKey: periodKey}
	for i := range rows {
		row := &rows[i]
		if row.CarryCalculated {
			continue
		}

		prev := row.Balances()
		carry := (prev.Q1 + prev.Q2 + prev.Q3 + prev.Q4) / 2

		applied, err := j.ledgers.SetCarryGuarded(ctx, row.UserID, year, prev, carry)
		if err != nil || !applied {
			report.Errors++
			j.logger.Error("calculate carry failed",
				zap.String("user_id", row.UserID.String()),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}
		report.Processed++
	}

	j.logger.Info("calculate carry finished",
		zap.Int("year", year),
		zap.Int("processed", report.Processed),
		zap.Int("errors", report.Errors),
	)
	j.enqueueCompletedEvent(ctx, carryCalculateJobName, year, report)

	return report, nil
}

// ApplyNewYear creates next-year rows seeded with the Q1 credit and the
// carried balance banked by CalculateCarry. Rows whose carry has not been
// calculated are refused and counted as errors rather than rolled over with
// unhalved balances.
func (j *YearEndCarryJob) ApplyNewYear(ctx context.Context, year int) (Report, error) {
	periodKey := strconv.Itoa(year)

	claimed, err := j.jobRuns.MarkRun(ctx, carryApplyJobName, periodKey)
	if err != nil {
		return Report{}, err
	}
	if !claimed {
		return Report{
			JobName:   carryApplyJobName,
			PeriodKey: periodKey,
			Skipped:   true,
			Reason:    "new year rollover already applied",
		}, nil
	}

	rows, err := j.ledgers.ListByYear(ctx, year-1)
	if err != nil {
		return Report{}, err
	}

	report := Report{JobName: carryApplyJobName, PeriodKey: periodKey}
	for i := range rows {
		row := &rows[i]
		if !row.CarryCalculated {
			report.Errors++
			j.logger.Error("refusing rollover before carry calculation",
				zap.String("user_id", row.UserID.String()),
				zap.Int("prior_year", year-1),
			)
			continue
		}

		if _, err := j.ledgers.CreateIfAbsent(ctx, &ledger.LeaveLedger{
			UserID:              row.UserID,
			Year:                year,
			Q1:                  domain.QuarterlyCreditDays,
			CarriedFromLastYear: row.CarriedFromLastYear,
		}); err != nil {
			report.Errors++
			j.logger.Error("apply new year failed",
				zap.String("user_id", row.UserID.String()),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}
		report.Processed++
	}

	// The rollover already seeds Q1 with the quarterly credit; claiming the
	// Q1 credit window stops the credit job from doubling it on Jan 1.
	if _, err := j.jobRuns.MarkRun(ctx, quarterlyCreditJobName, QuarterPeriodKey(year, 1)); err != nil {
		j.logger.Error("claim q1 credit window failed", zap.Int("year", year), zap.Error(err))
	}

	j.logger.Info("apply new year finished",
		zap.Int("year", year),
		zap.Int("processed", report.Processed),
		zap.Int("errors", report.Errors),
	)
	j.enqueueCompletedEvent(ctx, carryApplyJobName, year, report)

	return report, nil
}

func (j *YearEndCarryJob) enqueueCompletedEvent(ctx context.Context, jobName string, year int, report Report) {
	payload, err := json.Marshal(events.LedgerJobCompletedEvent{
		EventType: "ledger_job_completed",
		JobName:   jobName,
		Year:      year,
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
