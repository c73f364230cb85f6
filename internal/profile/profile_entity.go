package profile

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName string    `gorm:"type:varchar(255);not null"`
	Email    string    `gorm:"type:text;not null;uniqueIndex"`
	Password string    `gorm:"type:text;not null"`

	Role      string     `gorm:"type:varchar(20);not null;default:'EMPLOYEE';index:idx_profiles_role"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index:idx_profiles_manager"`
	IsActive  bool       `gorm:"not null;default:true;index:idx_profiles_active"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_profiles_deleted_at"`
}
