package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
	ledgererrors "github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger/errors"
)

// maxDeductAttempts bounds the optimistic retry loop before the caller gets
// a conflict error back.
const maxDeductAttempts = 3

type DeductionRequest struct {
	UserID    uuid.UUID
	Year      int
	Days      int
	LeaveType string
}

// Engine is the single authoritative path for balance deductions. Nothing
// else in the system mutates a ledger in response to a leave request.
//
//go:generate mockgen -source=ledger_engine.go -destination=mock/ledger_engine_mock.go -package=mock
type Engine interface {
	Deduct(ctx context.Context, req DeductionRequest) (DeductionBreakdown, error)

	// DeductTx runs the same deduction inside the caller's transaction, so
	// an approval can commit the deduction and the status flip as one unit.
	DeductTx(ctx context.Context, tx *gorm.DB, req DeductionRequest) (DeductionBreakdown, error)
}

type engine struct {
	repo   Repository
	logger *zap.Logger
}

func NewEngine(repo Repository, logger ...*zap.Logger) Engine {
	l := zap.L().Named("ledger.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ledger.engine")
	}
	return &engine{repo: repo, logger: l}
}

func (e *engine) Deduct(ctx context.Context, req DeductionRequest) (DeductionBreakdown, error) {
	return e.deductWith(ctx, e.repo, req)
}

func (e *engine) DeductTx(ctx context.Context, tx *gorm.DB, req DeductionRequest) (DeductionBreakdown, error) {
	return e.deductWith(ctx, e.repo.WithTx(tx), req)
}

func (e *engine) deductWith(ctx context.Context, repo Repository, req DeductionRequest) (DeductionBreakdown, error) {
	if req.Days <= 0 {
		return DeductionBreakdown{}, ledgererrors.ErrInvalidDays
	}
	if !domain.ValidLeaveType(req.LeaveType) {
		return DeductionBreakdown{}, ledgererrors.ErrInvalidLeaveType
	}

	for attempt := 1; attempt <= maxDeductAttempts; attempt++ {
		row, err := repo.Get(ctx, req.UserID, req.Year)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A missing ledger is evaluated as all-zero balances, so a
			// general deduction against it fails with the full shortfall.
			row, err = repo.CreateIfAbsent(ctx, &LeaveLedger{
				UserID: req.UserID,
				Year:   req.Year,
			})
		}
		if err != nil {
			return DeductionBreakdown{}, err
		}

		prev := row.Balances()

		var (
			next      Balances
			breakdown DeductionBreakdown
		)
		if req.LeaveType == domain.LeaveTypeOptional {
			// One optional request consumes exactly one slot, whatever its
			// day count.
			if prev.OptionalUsed+1 > domain.OptionalHolidayCap {
				return DeductionBreakdown{}, ledgererrors.ErrOptionalQuotaExceeded
			}
			next = prev
			next.OptionalUsed++
		} else {
			var shortfall int
			breakdown, shortfall = drawDown(prev, req.Days)
			if shortfall > 0 {
				return DeductionBreakdown{}, ledgererrors.NewInsufficientBalance(shortfall)
			}
			next = Balances{
				Q1:                  prev.Q1 - breakdown.Q1,
				Q2:                  prev.Q2 - breakdown.Q2,
				Q3:                  prev.Q3 - breakdown.Q3,
				Q4:                  prev.Q4 - breakdown.Q4,
				CarriedFromLastYear: prev.CarriedFromLastYear - breakdown.Carried,
				OptionalUsed:        prev.OptionalUsed,
			}
		}

		applied, err := repo.UpdateBalancesGuarded(ctx, req.UserID, req.Year, prev, next)
		if err != nil {
			return DeductionBreakdown{}, err
		}
		if applied {
			e.logger.Info("deduction applied",
				zap.String("user_id", req.UserID.String()),
				zap.Int("year", req.Year),
				zap.String("leave_type", req.LeaveType),
				zap.Int("days", req.Days),
				zap.Int("attempt", attempt),
			)
			return breakdown, nil
		}

		e.logger.Debug("deduction lost a write race, reloading",
			zap.String("user_id", req.UserID.String()),
			zap.Int("year", req.Year),
			zap.Int("attempt", attempt),
		)
	}

	return DeductionBreakdown{}, ledgererrors.ErrConcurrencyConflict
}

// drawDown satisfies days from the buckets in the fixed order
// Q1, Q2, Q3, Q4, then carried. The returned shortfall is whatever the five
// buckets could not cover; when it is positive the breakdown must be
// discarded, not applied.
func drawDown(b Balances, days int) (DeductionBreakdown, int) {
	remaining := days

	var d DeductionBreakdown
	d.Q1 = min(remaining, b.Q1)
	remaining -= d.Q1
	d.Q2 = min(remaining, b.Q2)
	remaining -= d.Q2
	d.Q3 = min(remaining, b.Q3)
	remaining -= d.Q3
	d.Q4 = min(remaining, b.Q4)
	remaining -= d.Q4
	d.Carried = min(remaining, b.CarriedFromLastYear)
	remaining -= d.Carried

	return d, remaining
}
