package profile_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
	profileerrors "github.com/UmarRehanShaikh/pronttera-time-off/internal/profile/errors"
)

func newProfileDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&profile.Profile{}))
	return db
}

func newProfileService(t *testing.T) (profile.Service, *gorm.DB) {
	t.Helper()
	db := newProfileDB(t)
	return profile.NewService(db, profile.NewRepository(db)), db
}

func createRequest(email string) profile.CreateProfileRequest {
	return profile.CreateProfileRequest{
		FullName: "Bayu Santoso",
		Email:    email,
		Password: "secret123",
		Role:     domain.RoleEmployee,
	}
}

func TestProfileServiceCreate(t *testing.T) {
	t.Run("success hashes the password", func(t *testing.T) {
		svc, db := newProfileService(t)

		resp, err := svc.Create(context.Background(), createRequest("bayu@example.com"))

		assert.NoError(t, err)
		assert.Equal(t, "bayu@example.com", resp.Email)
		assert.True(t, resp.IsActive)

		var stored profile.Profile
		require.NoError(t, db.First(&stored, "email = ?", "bayu@example.com").Error)
		assert.NotEqual(t, "secret123", stored.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
	})

	t.Run("negative duplicate email", func(t *testing.T) {
		svc, _ := newProfileService(t)

		_, err := svc.Create(context.Background(), createRequest("dup@example.com"))
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), createRequest("dup@example.com"))

		assert.ErrorIs(t, err, profileerrors.ErrEmailTaken)
	})

	t.Run("negative unknown manager", func(t *testing.T) {
		svc, _ := newProfileService(t)

		req := createRequest("eka@example.com")
		managerID := uuid.NewString()
		req.ManagerID = &managerID

		_, err := svc.Create(context.Background(), req)

		assert.ErrorIs(t, err, profileerrors.ErrManagerNotFound)
	})

	t.Run("success with an existing manager", func(t *testing.T) {
		svc, _ := newProfileService(t)

		manager, err := svc.Create(context.Background(), profile.CreateProfileRequest{
			FullName: "Rina Wulandari",
			Email:    "rina@example.com",
			Password: "secret123",
			Role:     domain.RoleManager,
		})
		require.NoError(t, err)

		req := createRequest("eka@example.com")
		req.ManagerID = &manager.ID

		resp, err := svc.Create(context.Background(), req)

		assert.NoError(t, err)
		require.NotNil(t, resp.ManagerID)
		assert.Equal(t, manager.ID, *resp.ManagerID)
	})
}

func TestProfileServiceGetByID(t *testing.T) {
	svc, _ := newProfileService(t)

	created, err := svc.Create(context.Background(), createRequest("bayu@example.com"))
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), created.ID)
		assert.NoError(t, err)
		assert.Equal(t, created.Email, resp.Email)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), "nope")
		assert.ErrorIs(t, err, profileerrors.ErrInvalidUserID)
	})

	t.Run("negative unknown id", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, profileerrors.ErrProfileNotFound)
	})
}

func TestProfileServiceUpdate(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }

	t.Run("success promotes and deactivates", func(t *testing.T) {
		svc, _ := newProfileService(t)
		created, err := svc.Create(context.Background(), createRequest("bayu@example.com"))
		require.NoError(t, err)

		resp, err := svc.Update(context.Background(), created.ID, profile.UpdateProfileRequest{
			FullName: "Bayu Santoso",
			Role:     domain.RoleManager,
			IsActive: boolPtr(false),
		})

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleManager, resp.Role)
		assert.False(t, resp.IsActive)
	})

	t.Run("negative cannot manage themselves", func(t *testing.T) {
		svc, _ := newProfileService(t)
		created, err := svc.Create(context.Background(), createRequest("bayu@example.com"))
		require.NoError(t, err)

		_, err = svc.Update(context.Background(), created.ID, profile.UpdateProfileRequest{
			FullName:  "Bayu Santoso",
			Role:      domain.RoleEmployee,
			ManagerID: &created.ID,
			IsActive:  boolPtr(true),
		})

		assert.ErrorIs(t, err, profileerrors.ErrSelfManager)
	})

	t.Run("negative unknown profile", func(t *testing.T) {
		svc, _ := newProfileService(t)

		_, err := svc.Update(context.Background(), uuid.NewString(), profile.UpdateProfileRequest{
			FullName: "Ghost",
			Role:     domain.RoleEmployee,
			IsActive: boolPtr(true),
		})

		assert.ErrorIs(t, err, profileerrors.ErrProfileNotFound)
	})
}

func TestProfileRepositoryIsManagerOf(t *testing.T) {
	db := newProfileDB(t)
	repo := profile.NewRepository(db)
	svc := profile.NewService(db, repo)

	manager, err := svc.Create(context.Background(), profile.CreateProfileRequest{
		FullName: "Rina Wulandari",
		Email:    "rina@example.com",
		Password: "secret123",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)

	req := createRequest("bayu@example.com")
	req.ManagerID = &manager.ID
	report, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	ok, err := repo.IsManagerOf(context.Background(), manager.ID, report.ID)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsManagerOf(context.Background(), report.ID, manager.ID)
	assert.NoError(t, err)
	assert.False(t, ok)
}
