package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	profileerrors "github.com/UmarRehanShaikh/pronttera-time-off/internal/profile/errors"
)

//go:generate mockgen -source=profile_service.go -destination=mock/profile_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateProfileRequest) (ProfileResponse, error)
	GetAll(ctx context.Context) ([]ProfileResponse, error)
	GetByID(ctx context.Context, id string) (ProfileResponse, error)
	Update(ctx context.Context, id string, req UpdateProfileRequest) (ProfileResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("profile.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("profile.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateProfileRequest) (ProfileResponse, error) {
	s.logger.Debug("create profile requested",
		zap.String("email", req.Email),
		zap.String("role", req.Role),
	)

	managerID, err := parseManagerID(req.ManagerID)
	if err != nil {
		return ProfileResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return ProfileResponse{}, err
	}

	p := &Profile{
		ID:        uuid.New(),
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		ManagerID: managerID,
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if _, err := qtx.GetByEmail(ctx, req.Email); err == nil {
			return profileerrors.ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if managerID != nil {
			if _, err := qtx.GetByID(ctx, managerID.String()); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return profileerrors.ErrManagerNotFound
				}
				return err
			}
		}

		return qtx.Create(ctx, p)
	})
	if err != nil {
		s.logger.Warn("create profile failed", zap.String("email", req.Email), zap.Error(err))
		return ProfileResponse{}, err
	}

	s.logger.Info("create profile success",
		zap.String("profile_id", p.ID.String()),
		zap.String("role", p.Role),
	)
	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context) ([]ProfileResponse, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(profiles), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ProfileResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ProfileResponse{}, profileerrors.ErrInvalidUserID
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileResponse{}, profileerrors.ErrProfileNotFound
		}
		return ProfileResponse{}, err
	}
	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateProfileRequest) (ProfileResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ProfileResponse{}, profileerrors.ErrInvalidUserID
	}

	managerID, err := parseManagerID(req.ManagerID)
	if err != nil {
		return ProfileResponse{}, err
	}
	if managerID != nil && managerID.String() == id {
		return ProfileResponse{}, profileerrors.ErrSelfManager
	}

	var p *Profile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		p, err = qtx.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return profileerrors.ErrProfileNotFound
			}
			return err
		}

		if managerID != nil {
			if _, err := qtx.GetByID(ctx, managerID.String()); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return profileerrors.ErrManagerNotFound
				}
				return err
			}
		}

		p.FullName = req.FullName
		p.Role = req.Role
		p.ManagerID = managerID
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}

		return qtx.Update(ctx, p)
	})
	if err != nil {
		s.logger.Warn("update profile failed", zap.String("profile_id", id), zap.Error(err))
		return ProfileResponse{}, err
	}

	s.logger.Info("update profile success",
		zap.String("profile_id", id),
		zap.String("role", p.Role),
		zap.Bool("is_active", p.IsActive),
	)
	return mapToResponse(*p), nil
}

func parseManagerID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, profileerrors.ErrInvalidManagerID
	}
	return &id, nil
}

func mapToResponse(p Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:       p.ID.String(),
		FullName: p.FullName,
		Email:    p.Email,
		Role:     p.Role,
		IsActive: p.IsActive,
	}
	if p.ManagerID != nil {
		v := p.ManagerID.String()
		resp.ManagerID = &v
	}
	return resp
}

func mapToListResponse(profiles []Profile) []ProfileResponse {
	resp := make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		resp[i] = mapToResponse(p)
	}
	return resp
}
