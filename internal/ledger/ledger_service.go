package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	ledgererrors "github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger/errors"
)

// Service is the read side of the ledger, consumed by balance dashboards.
//
//go:generate mockgen -source=ledger_service.go -destination=mock/ledger_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, userID string, year int) (LedgerResponse, error)
	ListByYear(ctx context.Context, year int) ([]LedgerResponse, error)
}

type service struct {
	repo   Repository
	sf     singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("ledger.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("ledger.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetBalance(ctx context.Context, userID string, year int) (LedgerResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidUserID
	}
	if year < 2000 || year > 2200 {
		return LedgerResponse{}, ledgererrors.ErrInvalidYear
	}

	// Dashboards hammer the same key right after a decision lands;
	// singleflight collapses those into one store read.
	key := fmt.Sprintf("%s:%d", userID, year)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		row, err := s.repo.Get(ctx, id, year)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return LedgerResponse{}, ledgererrors.ErrLedgerNotFound
			}
			return LedgerResponse{}, err
		}
		return mapToResponse(row), nil
	})
	if err != nil {
		return LedgerResponse{}, err
	}
	return v.(LedgerResponse), nil
}

func (s *service) ListByYear(ctx context.Context, year int) ([]LedgerResponse, error) {
	if year < 2000 || year > 2200 {
		return nil, ledgererrors.ErrInvalidYear
	}

	rows, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	resp := make([]LedgerResponse, len(rows))
	for i := range rows {
		resp[i] = mapToResponse(&rows[i])
	}
	return resp, nil
}

func mapToResponse(row *LeaveLedger) LedgerResponse {
	b := row.Balances()
	return LedgerResponse{
		UserID:              row.UserID.String(),
		Year:                row.Year,
		Q1:                  row.Q1,
		Q2:                  row.Q2,
		Q3:                  row.Q3,
		Q4:                  row.Q4,
		CarriedFromLastYear: row.CarriedFromLastYear,
		OptionalUsed:        row.OptionalUsed,
		TotalAvailable:      b.Total(),
		CarryCalculated:     row.CarryCalculated,
	}
}
