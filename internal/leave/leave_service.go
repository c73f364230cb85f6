package leave

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/domain"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/events"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
	leaveerrors "github.com/UmarRehanShaikh/pronttera-time-off/internal/leave/errors"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/messaging/kafka"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/profile"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/contextutil"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actorID, actorRole string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actorID, actorRole, id string) (LeaveResponse, error)
	Decide(ctx context.Context, actorID, id string, req DecideLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, actorID, id string) (LeaveResponse, error)
}

type service struct {
	db       *gorm.DB
	repo     Repository
	profiles profile.Repository
	engine   ledger.Engine
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	profiles profile.Repository,
	engine ledger.Engine,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		profiles: profiles,
		engine:   engine,
		outbox:   outbox,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_id", actorID),
		zap.String("leave_type", req.LeaveType),
		zap.Int("days", req.Days),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	// Business-day counting happens on the submitting side; days is
	// trusted as given.
	l := &LeaveRequest{
		ID:        uuid.New(),
		UserID:    actorUUID,
		LeaveType: req.LeaveType,
		StartDate: startDate,
		EndDate:   endDate,
		Days:      req.Days,
		Reason:    req.Reason,
		Status:    domain.StatusPending,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("user_id", actorID),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, actorID, actorRole string) ([]LeaveResponse, error) {
	if actorRole == domain.RoleAdmin {
		leaves, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(leaves), nil
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, leaveerrors.ErrInvalidActorID
	}

	// Managers see their own requests plus their direct reports'.
	if actorRole == domain.RoleManager {
		leaves, err := s.repo.FindAllByManager(ctx, actorUUID)
		if err != nil {
			return nil, err
		}
		return mapToListResponse(leaves), nil
	}

	leaves, err := s.repo.FindAllByUser(ctx, actorUUID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actorID, actorRole, id string) (LeaveResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}

	l, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrRequestNotFound
		}
		return LeaveResponse{}, err
	}

	if actorRole == domain.RoleAdmin || l.UserID.String() == actorID {
		return mapToResponse(*l), nil
	}
	if actorRole == domain.RoleManager {
		isManager, err := s.profiles.IsManagerOf(ctx, actorID, l.UserID.String())
		if err != nil {
			return LeaveResponse{}, err
		}
		if isManager {
			return mapToResponse(*l), nil
		}
	}
	return LeaveResponse{}, leaveerrors.ErrRequestNotFound
}

// Decide runs the approval state machine. On approve, the ledger deduction
// and the status flip commit in one transaction; if either fails the request
// stays PENDING and the ledger stays untouched.
func (s *service) Decide(ctx context.Context, actorID, id string, req DecideLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("decision", req.Decision),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	requestID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}
	if req.Decision == "reject" && (req.RejectionReason == nil || *req.RejectionReason == "") {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}

	var resp LeaveResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrRequestNotFound
			}
			return err
		}
		if l.Status != domain.StatusPending {
			return leaveerrors.ErrAlreadyDecided
		}

		if err := s.authorizeDecision(ctx, actorID, l.UserID.String()); err != nil {
			return err
		}

		now := time.Now().UTC()
		var breakdown ledger.DeductionBreakdown

		switch req.Decision {
		case "approve":
			breakdown, err = s.engine.DeductTx(ctx, tx, ledger.DeductionRequest{
				UserID:    l.UserID,
				Year:      l.StartDate.Year(),
				Days:      l.Days,
				LeaveType: l.LeaveType,
			})
			if err != nil {
				return err
			}

			flipped, err := qtx.DecideIfPending(ctx, l.ID, domain.StatusApproved, actorUUID, now, nil)
			if err != nil {
				return err
			}
			if !flipped {
				// Someone else decided between our read and this write.
				// Rolling back also undoes the deduction above.
				return leaveerrors.ErrAlreadyDecided
			}

			l.Status = domain.StatusApproved
			l.ApprovedBy = &actorUUID
			l.ApprovedAt = &now

		default: // reject
			flipped, err := qtx.DecideIfPending(ctx, l.ID, domain.StatusRejected, actorUUID, now, req.RejectionReason)
			if err != nil {
				return err
			}
			if !flipped {
				return leaveerrors.ErrAlreadyDecided
			}

			l.Status = domain.StatusRejected
			l.ApprovedBy = &actorUUID
			l.ApprovedAt = &now
			l.RejectionReason = req.RejectionReason
		}

		if err := s.enqueueDecisionEvent(ctx, tx, l, actorID, breakdown, now); err != nil {
			return err
		}

		resp = mapToResponse(*l)
		if l.Status == domain.StatusApproved {
			resp.Deduction = &breakdown
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("decide leave failed",
			zap.String("leave_id", id),
			zap.String("decision", req.Decision),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.logger.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("status", resp.Status),
		zap.String("decided_by", actorID),
	)
	return resp, nil
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidRequestID
	}

	var resp LeaveResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		l, err := qtx.FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrRequestNotFound
			}
			return err
		}
		if l.UserID.String() != actorID {
			return leaveerrors.ErrNotRequestOwner
		}
		if l.Status != domain.StatusPending {
			return leaveerrors.ErrAlreadyDecided
		}

		cancelled, err := qtx.CancelIfPending(ctx, l.ID)
		if err != nil {
			return err
		}
		if !cancelled {
			return leaveerrors.ErrAlreadyDecided
		}

		l.Status = domain.StatusCancelled
		now := time.Now().UTC()
		if err := s.enqueueDecisionEvent(ctx, tx, l, actorID, ledger.DeductionBreakdown{}, now); err != nil {
			return err
		}

		resp = mapToResponse(*l)
		return nil
	})
	if err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("cancel leave success", zap.String("leave_id", id))
	return resp, nil
}

func (s *service) authorizeDecision(ctx context.Context, actorID, ownerID string) error {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrDecisionForbidden
		}
		return err
	}
	if actor.Role == domain.RoleAdmin {
		return nil
	}

	isManager, err := s.profiles.IsManagerOf(ctx, actorID, ownerID)
	if err != nil {
		return err
	}
	if !isManager {
		return leaveerrors.ErrDecisionForbidden
	}
	return nil
}

func (s *service) enqueueDecisionEvent(ctx context.Context, tx *gorm.DB, l *LeaveRequest, decidedBy string, breakdown ledger.DeductionBreakdown, at time.Time) error {
	payload, err := json.Marshal(events.LeaveDecidedEvent{
		EventType:       "leave_decided",
		RequestID:       l.ID.String(),
		UserID:          l.UserID.String(),
		LeaveType:       l.LeaveType,
		Days:            l.Days,
		Status:          l.Status,
		DecidedBy:       decidedBy,
		DeductedQ1:      breakdown.Q1,
		DeductedQ2:      breakdown.Q2,
		DeductedQ3:      breakdown.Q3,
		DeductedQ4:      breakdown.Q4,
		DeductedCarried: breakdown.Carried,
		OccurredAt:      at,
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, &kafka.OutboxEvent{
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     "leave_decided",
		Topic:         events.LeaveDecidedTopic,
		Payload:       payload,
	})
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:        l.ID.String(),
		UserID:    l.UserID.String(),
		LeaveType: l.LeaveType,
		StartDate: l.StartDate.Format("2006-01-02"),
		EndDate:   l.EndDate.Format("2006-01-02"),
		Days:      l.Days,
		Reason:    l.Reason,
		Status:    l.Status,
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
