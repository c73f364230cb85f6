package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/audit"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/bootstrap"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/events"
)

func ConsumeLeaveDecided(
	ctx context.Context,
	reader *kafkago.Reader,
	auditRepo audit.Repository,
	auditLogger bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decided")
	log.Info("leave decision consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decision consumer stopped")
				return
			}
			log.Error("fetch leave decision message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave_decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		requestID, err := uuid.Parse(event.RequestID)
		if err != nil {
			log.Error("leave_decided event carries invalid request id",
				zap.String("request_id", event.RequestID),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		userID, err := uuid.Parse(event.UserID)
		if err != nil {
			log.Error("leave_decided event carries invalid user id",
				zap.String("user_id", event.UserID),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		err = auditRepo.Create(ctx, &audit.DecisionAudit{
			RequestID:       requestID,
			Status:          event.Status,
			UserID:          userID,
			LeaveType:       event.LeaveType,
			Days:            event.Days,
			DecidedBy:       event.DecidedBy,
			DeductedQ1:      event.DeductedQ1,
			DeductedQ2:      event.DeductedQ2,
			DeductedQ3:      event.DeductedQ3,
			DeductedQ4:      event.DeductedQ4,
			DeductedCarried: event.DeductedCarried,
			OccurredAt:      event.OccurredAt,
		})
		if err != nil {
			if isDuplicateDecisionAudit(err) {
				log.Warn("decision audit entry already exists, skipping",
					zap.String("request_id", event.RequestID),
					zap.String("status", event.Status),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("write decision audit failed",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		auditLogger.Log(ctx, bootstrap.AuditLog{
			Action:  "LEAVE_DECIDED",
			Message: "Leave request decision recorded",
			Meta: map[string]any{
				"request_id": event.RequestID,
				"user_id":    event.UserID,
				"status":     event.Status,
				"decided_by": event.DecidedBy,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decision message failed", zap.Error(err))
			continue
		}

		log.Info("decision audit recorded",
			zap.String("request_id", event.RequestID),
			zap.String("status", event.Status),
		)
	}
}

func isDuplicateDecisionAudit(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_decision_audit_request_status"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_decision_audit_request_status")
}
