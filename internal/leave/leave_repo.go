package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]LeaveRequest, error)
	FindAllByManager(ctx context.Context, managerID uuid.UUID) ([]LeaveRequest, error)
	DecideIfPending(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID, decidedAt time.Time, rejectionReason *string) (bool, error)
	CancelIfPending(ctx context.Context, id uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

// FindAllByManager returns the manager's own requests plus those of their
// direct reports.
func (r *repository) FindAllByManager(ctx context.Context, managerID uuid.UUID) ([]LeaveRequest, error) {
	var leaves []LeaveRequest
	reports := r.db.Model(&profile.Profile{}).
		Select("id").
		Where("manager_id = ?", managerID)
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR user_id IN (?)", managerID, reports).
		Order("created_at DESC").
		Find(&leaves).Error
	return leaves, err
}

// DecideIfPending flips a request out of PENDING exactly once. The status
// predicate makes a second decision on the same request update zero rows.
func (r *repository) DecideIfPending(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID, decidedAt time.Time, rejectionReason *string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Where("status = ?", domain.StatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"approved_by":      decidedBy,
			"approved_at":      decidedAt,
			"rejection_reason": rejectionReason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CancelIfPending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Where("status = ?", domain.StatusPending).
		Update("status", domain.StatusCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
