package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, userID uuid.UUID, year int) (*LeaveLedger, error)
	CreateIfAbsent(ctx context.Context, row *LeaveLedger) (*LeaveLedger, error)
	ApplyDelta(ctx context.Context, userID uuid.UUID, year int, delta FieldDeltas) (bool, error)
	UpdateBalancesGuarded(ctx context.Context, userID uuid.UUID, year int, prev, next Balances) (bool, error)
	SetCarryGuarded(ctx context.Context, userID uuid.UUID, year int, prev Balances, carry int) (bool, error)
	ListByYear(ctx context.Context, year int) ([]LeaveLedger, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, userID uuid.UUID, year int) (*LeaveLedger, error) {
	var row LeaveLedger
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		First(&row).Error
	return &row, err
}

// CreateIfAbsent inserts the row unless one already exists for the same
// (user_id, year). Either way the caller gets the row that is now durable,
// so two racing creators converge on the same state.
func (r *repository) CreateIfAbsent(ctx context.Context, row *LeaveLedger) (*LeaveLedger, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, row.UserID, row.Year)
}

// ApplyDelta adds the deltas to the named fields in a single guarded UPDATE.
// The WHERE predicates refuse any write that would drive a quarter or the
// carried balance below zero, or optional_used outside 0..4; in that case no
// row matches and (false, nil) is returned.
func (r *repository) ApplyDelta(ctx context.Context, userID uuid.UUID, year int, delta FieldDeltas) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveLedger{}).
		Where("user_id = ? AND year = ?", userID, year).
		Where("q1 + ? >= 0", delta.Q1).
		Where("q2 + ? >= 0", delta.Q2).
		Where("q3 + ? >= 0", delta.Q3).
		Where("q4 + ? >= 0", delta.Q4).
		Where("carried_from_last_year + ? >= 0", delta.CarriedFromLastYear).
		Where("optional_used + ? BETWEEN 0 AND 4", delta.OptionalUsed).
		Updates(map[string]interface{}{
			"q1":                     gorm.Expr("q1 + ?", delta.Q1),
			"q2":                     gorm.Expr("q2 + ?", delta.Q2),
			"q3":                     gorm.Expr("q3 + ?", delta.Q3),
			"q4":                     gorm.Expr("q4 + ?", delta.Q4),
			"carried_from_last_year": gorm.Expr("carried_from_last_year + ?", delta.CarriedFromLastYear),
			"optional_used":          gorm.Expr("optional_used + ?", delta.OptionalUsed),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateBalancesGuarded is a compare-and-swap over the full balance slice of
// one ledger row. It only writes if the row still holds prev; a concurrent
// writer makes the compare fail and (false, nil) comes back.
func (r *repository) UpdateBalancesGuarded(ctx context.Context, userID uuid.UUID, year int, prev, next Balances) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveLedger{}).
		Where("user_id = ? AND year = ?", userID, year).
		Where("q1 = ? AND q2 = ? AND q3 = ? AND q4 = ?", prev.Q1, prev.Q2, prev.Q3, prev.Q4).
		Where("carried_from_last_year = ?", prev.CarriedFromLastYear).
		Where("optional_used = ?", prev.OptionalUsed).
		Updates(map[string]interface{}{
			"q1":                     next.Q1,
			"q2":                     next.Q2,
			"q3":                     next.Q3,
			"q4":                     next.Q4,
			"carried_from_last_year": next.CarriedFromLastYear,
			"optional_used":          next.OptionalUsed,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetCarryGuarded performs the year-end carry write for one row: carried is
// set, quarters are zeroed and carry_calculated flips on. Same CAS contract
// as UpdateBalancesGuarded.
func (r *repository) SetCarryGuarded(ctx context.Context, userID uuid.UUID, year int, prev Balances, carry int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveLedger{}).
		Where("user_id = ? AND year = ?", userID, year).
		Where("q1 = ? AND q2 = ? AND q3 = ? AND q4 = ?", prev.Q1, prev.Q2, prev.Q3, prev.Q4).
		Where("carry_calculated = ?", false).
		Updates(map[string]interface{}{
			"q1":                     0,
			"q2":                     0,
			"q3":                     0,
			"q4":                     0,
			"carried_from_last_year": carry,
			"carry_calculated":       true,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByYear(ctx context.Context, year int) ([]LeaveLedger, error) {
	var rows []LeaveLedger
	err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("user_id ASC").
		Find(&rows).Error
	return rows, err
}
