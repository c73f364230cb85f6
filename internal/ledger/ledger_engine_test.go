package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	ledgererrors "github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger/errors"
)

type fakeLedgerRepository struct {
	withTxFn                func(tx *gorm.DB) ledger.Repository
	getFn                   func(ctx context.Context, userID uuid.UUID, year int) (*ledger.LeaveLedger, error)
	createIfAbsentFn        func(ctx context.Context, row *ledger.LeaveLedger) (*ledger.LeaveLedger, error)
	applyDeltaFn            func(ctx context.Context, userID uuid.UUID, year int, delta ledger.FieldDeltas) (bool, error)
	updateBalancesGuardedFn func(ctx context.Context, userID uuid.UUID, year int, prev, next ledger.Balances) (bool, error)
	setCarryGuardedFn       func(ctx context.Context, userID uuid.UUID, year int, prev ledger.Balances, carry int) (bool, error)
	listByYearFn            func(ctx context.Context, year int) ([]ledger.LeaveLedger, error)
}

func (f *fakeLedgerRepository) WithTx(tx *gorm.DB) ledger.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLedgerRepository) Get(ctx context.Context, userID uuid.UUID, year int) (*ledger.LeaveLedger, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedgerRepository) CreateIfAbsent(ctx context.Context, row *ledger.LeaveLedger) (*ledger.LeaveLedger, error) {
	if f.createIfAbsentFn != nil {
		return f.createIfAbsentFn(ctx, row)
	}
	return row, nil
}

func (f *fakeLedgerRepository) ApplyDelta(ctx context.Context, userID uuid.UUID, year int, delta ledger.FieldDeltas) (bool, error) {
	if f.applyDeltaFn != nil {
		return f.applyDeltaFn(ctx, userID, year, delta)
	}
	return true, nil
}

func (f *fakeLedgerRepository) UpdateBalancesGuarded(ctx context.Context, userID uuid.UUID, year int, prev, next ledger.Balances) (bool, error) {
	if f.updateBalancesGuardedFn != nil {
		return f.updateBalancesGuardedFn(ctx, userID, year, prev, next)
	}
	return true, nil
}

func (f *fakeLedgerRepository) SetCarryGuarded(ctx context.Context, userID uuid.UUID, year int, prev ledger.Balances, carry int) (bool, error) {
	if f.setCarryGuardedFn != nil {
		return f.setCarryGuardedFn(ctx, userID, year, prev, carry)
	}
	return true, nil
}

func (f *fakeLedgerRepository) ListByYear(ctx context.Context, year int) ([]ledger.LeaveLedger, error) {
	if f.listByYearFn != nil {
		return f.listByYearFn(ctx, year)
	}
	return nil, nil
}

func TestEngineDeductGeneral(t *testing.T) {
	t.Run("success draws down quarters in order", func(t *testing.T) {
		db := newLedgerDB(t)
		engine := ledger.NewEngine(ledger.NewRepository(db))
		row := seedLedger(t, db, &ledger.LeaveLedger{
			UserID: uuid.New(), Year: 2026,
			Q1: 2, Q2: 5, Q3: 5, Q4: 5,
		})

		breakdown, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    row.UserID,
			Year:      2026,
			Days:      4,
			LeaveType: domain.LeaveTypeGeneral,
		})

		assert.NoError(t, err)
		assert.Equal(t, ledger.DeductionBreakdown{Q1: 2, Q2: 2}, breakdown)

		got := reloadLedger(t, db, row.UserID, 2026)
		assert.Equal(t, 0, got.Q1)
		assert.Equal(t, 3, got.Q2)
		assert.Equal(t, 5, got.Q3)
		assert.Equal(t, 5, got.Q4)
	})

	t.Run("success spills into the carried balance last", func(t *testing.T) {
		db := newLedgerDB(t)
		engine := ledger.NewEngine(ledger.NewRepository(db))
		row := seedLedger(t, db, &ledger.LeaveLedger{
			UserID: uuid.New(), Year: 2026,
			Q3: 1, Q4: 1, CarriedFromLastYear: 3,
		})

		breakdown, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    row.UserID,
			Year:      2026,
			Days:      4,
			LeaveType: domain.LeaveTypeGeneral,
		})

		assert.NoError(t, err)
		assert.Equal(t, ledger.DeductionBreakdown{Q3: 1, Q4: 1, Carried: 2}, breakdown)
		assert.Equal(t, 1, reloadLedger(t, db, row.UserID, 2026).CarriedFromLastYear)
	})

	t.Run("negative insufficient balance leaves the row untouched", func(t *testing.T) {
		db := newLedgerDB(t)
		engine := ledger.NewEngine(ledger.NewRepository(db))
		row := seedLedger(t, db, &ledger.LeaveLedger{
			UserID: uuid.New(), Year: 2026,
			Q1: 1, Q2: 2,
		})

		_, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    row.UserID,
			Year:      2026,
			Days:      5,
			LeaveType: domain.LeaveTypeGeneral,
		})

		assert.Error(t, err)
		assert.True(t, ledgererrors.IsInsufficientBalance(err))
		assert.Contains(t, err.Error(), "Short by 2 days")

		got := reloadLedger(t, db, row.UserID, 2026)
		assert.Equal(t, 1, got.Q1)
		assert.Equal(t, 2, got.Q2)
	})

	t.Run("negative missing ledger is treated as all zero", func(t *testing.T) {
		db := newLedgerDB(t)
		engine := ledger.NewEngine(ledger.NewRepository(db))
		userID := uuid.New()

		_, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    userID,
			Year:      2026,
			Days:      3,
			LeaveType: domain.LeaveTypeGeneral,
		})

		assert.True(t, ledgererrors.IsInsufficientBalance(err))
		assert.Contains(t, err.Error(), "Short by 3 days")

		// The zero row must now exist so later credits have a target.
		got := reloadLedger(t, db, userID, 2026)
		assert.Zero(t, got.Balances().Total())
	})

	t.Run("negative second request cannot exceed the remaining total", func(t *testing.T) {
		db := newLedgerDB(t)
		engine := ledger.NewEngine(ledger.NewRepository(db))
		row := seedLedger(t, db, &ledger.LeaveLedger{
			UserID: uuid.New(), Year: 2026,
			Q1: 5,
		})

		req := ledger.DeductionRequest{
			UserID:    row.UserID,
			Year:      2026,
			Days:      3,
			LeaveType: domain.LeaveTypeGeneral,
		}

		_, err := engine.Deduct(context.Background(), req)
		require.NoError(t, err)

		_, err = engine.Deduct(context.Background(), req)
		assert.True(t, ledgererrors.IsInsufficientBalance(err))
		assert.Contains(t, err.Error(), "Short by 1 days")
		assert.Equal(t, 2, reloadLedger(t, db, row.UserID, 2026).Q1)
	})
}

func TestEngineDeductOptional(t *testing.T) {
	t.Run("success consumes exactly one slot regardless of days", func(t *testing.T) {
		db := newLedgerDB(t)
		engine := ledger.NewEngine(ledger.NewRepository(db))
		row := seedLedger(t, db, &ledger.LeaveLedger{
			UserID: uuid.New(), Year: 2026,
			Q1: 5, OptionalUsed: 2,
		})

		breakdown, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    row.UserID,
			Year:      2026,
			Days:      3,
			LeaveType: domain.LeaveTypeOptional,
		})

		assert.NoError(t, err)
		assert.Equal(t, ledger.DeductionBreakdown{}, breakdown)

		got := reloadLedger(t, db, row.UserID, 2026)
		assert.Equal(t, 3, got.OptionalUsed)
		assert.Equal(t, 5, got.Q1)
	})

	t.Run("negative quota of four is a hard cap", func(t *testing.T) {
		db := newLedgerDB(t)
		engine := ledger.NewEngine(ledger.NewRepository(db))
		row := seedLedger(t, db, &ledger.LeaveLedger{
			UserID: uuid.New(), Year: 2026,
			Q1: 5, OptionalUsed: domain.OptionalHolidayCap,
		})

		_, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    row.UserID,
			Year:      2026,
			Days:      1,
			LeaveType: domain.LeaveTypeOptional,
		})

		assert.ErrorIs(t, err, ledgererrors.ErrOptionalQuotaExceeded)
		assert.Equal(t, 4, reloadLedger(t, db, row.UserID, 2026).OptionalUsed)
	})
}

func TestEngineDeductValidation(t *testing.T) {
	engine := ledger.NewEngine(&fakeLedgerRepository{})

	t.Run("negative zero days", func(t *testing.T) {
		_, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    uuid.New(),
			Year:      2026,
			Days:      0,
			LeaveType: domain.LeaveTypeGeneral,
		})
		assert.ErrorIs(t, err, ledgererrors.ErrInvalidDays)
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		_, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
			UserID:    uuid.New(),
			Year:      2026,
			Days:      1,
			LeaveType: "SICK",
		})
		assert.ErrorIs(t, err, ledgererrors.ErrInvalidLeaveType)
	})
}

func TestEngineDeductConcurrencyConflict(t *testing.T) {
	userID := uuid.New()
	attempts := 0
	repo := &fakeLedgerRepository{
		getFn: func(ctx context.Context, id uuid.UUID, year int) (*ledger.LeaveLedger, error) {
			return &ledger.LeaveLedger{UserID: id, Year: year, Q1: 5}, nil
		},
		updateBalancesGuardedFn: func(ctx context.Context, id uuid.UUID, year int, prev, next ledger.Balances) (bool, error) {
			attempts++
			return false, nil
		},
	}
	engine := ledger.NewEngine(repo)

	_, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
		UserID:    userID,
		Year:      2026,
		Days:      2,
		LeaveType: domain.LeaveTypeGeneral,
	})

	assert.ErrorIs(t, err, ledgererrors.ErrConcurrencyConflict)
	assert.Equal(t, 3, attempts)
}

func TestEngineDeductRetriesAfterLostRace(t *testing.T) {
	userID := uuid.New()
	attempts := 0
	repo := &fakeLedgerRepository{
		getFn: func(ctx context.Context, id uuid.UUID, year int) (*ledger.LeaveLedger, error) {
			return &ledger.LeaveLedger{UserID: id, Year: year, Q1: 5}, nil
		},
		updateBalancesGuardedFn: func(ctx context.Context, id uuid.UUID, year int, prev, next ledger.Balances) (bool, error) {
			attempts++
			return attempts == 2, nil
		},
	}
	engine := ledger.NewEngine(repo)

	breakdown, err := engine.Deduct(context.Background(), ledger.DeductionRequest{
		UserID:    userID,
		Year:      2026,
		Days:      2,
		LeaveType: domain.LeaveTypeGeneral,
	})

	assert.NoError(t, err)
	assert.Equal(t, ledger.DeductionBreakdown{Q1: 2}, breakdown)
	assert.Equal(t, 2, attempts)
}

func TestEngineDeductTxRollsBackWithCaller(t *testing.T) {
	db := newLedgerDB(t)
	engine := ledger.NewEngine(ledger.NewRepository(db))
	row := seedLedger(t, db, &ledger.LeaveLedger{UserID: uuid.New(), Year: 2026, Q1: 5})

	rollback := errors.New("caller failed later")
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := engine.DeductTx(context.Background(), tx, ledger.DeductionRequest{
			UserID:    row.UserID,
			Year:      2026,
			Days:      3,
			LeaveType: domain.LeaveTypeGeneral,
		})
		require.NoError(t, err)
		return rollback
	})

	assert.ErrorIs(t, err, rollback)
	assert.Equal(t, 5, reloadLedger(t, db, row.UserID, 2026).Q1)
}
