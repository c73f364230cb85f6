package rbac

import (
	"context"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
)

// rolePermissions is the static grant table for the closed role set. Roles
// are fixed; only the user→role grouping comes from the database.
var rolePermissions = map[string][][2]string{
	domain.RoleAdmin: {
		{"leave", "read"}, {"leave", "create"}, {"leave", "approve"},
		{"ledger", "read"}, {"ledger", "read_team"}, {"ledger", "read_all"},
		{"profile", "read"}, {"profile", "manage"},
		{"jobs", "run"},
	},
	domain.RoleManager: {
		{"leave", "read"}, {"leave", "create"}, {"leave", "approve"},
		{"ledger", "read"}, {"ledger", "read_team"},
		{"profile", "read"},
	},
	domain.RoleEmployee: {
		{"leave", "read"}, {"leave", "create"},
		{"ledger", "read"},
		{"profile", "read"},
	},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	for role, perms := range rolePermissions {
		for _, p := range perms {
			if _, err := s.enforcer.AddPolicy(role, p[0], p[1]); err != nil {
				return err
			}
		}
	}

	userRoles, err := s.repo.GetUserRoles(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("rbac policy loaded", zap.Int("user_roles", len(userRoles)))

	for _, ur := range userRoles {
		if !domain.ValidRole(ur.Role) {
			s.logger.Warn("skipping profile with unknown role",
				zap.String("user_id", ur.UserID),
				zap.String("role", ur.Role),
			)
			continue
		}
		if _, err := s.enforcer.AddGroupingPolicy(ur.UserID, ur.Role); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(req.UserID, req.Resource, req.Action)
}
