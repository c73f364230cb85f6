package rbac

import (
	"context"

	"gorm.io/gorm"
)

type UserRole struct {
	UserID string
	Role   string
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetUserRoles(ctx context.Context) ([]UserRole, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserRoles(ctx context.Context) ([]UserRole, error) {
	var userRoles []UserRole
	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("id AS user_id, role").
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Scan(&userRoles).Error
	return userRoles, err
}
