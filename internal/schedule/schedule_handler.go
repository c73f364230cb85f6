package schedule

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/apperror"
	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/response"
)

// Handler exposes manual job triggers for operators, next to the scheduler
// that fires the same jobs on calendar dates.
type Handler struct {
	creditJob *QuarterlyCreditJob
	carryJob  *YearEndCarryJob
	logger    *zap.Logger
}

func NewHandler(creditJob *QuarterlyCreditJob, carryJob *YearEndCarryJob, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("schedule.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.handler")
	}
	return &Handler{creditJob: creditJob, carryJob: carryJob, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("job trigger failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) RunQuarterlyCredit(c *gin.Context) {
	var req RunQuarterlyCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	asOf, err := time.Parse("2006-01-02", req.AsOf)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "as_of must be YYYY-MM-DD", nil)
		return
	}

	h.logger.Info("manual quarterly credit trigger",
		zap.String("as_of", req.AsOf),
		zap.String("actor_id", c.GetString("user_id")),
	)

	report, err := h.creditJob.Run(c.Request.Context(), asOf)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, report, nil)
}

func (h *Handler) RunYearEndCarry(c *gin.Context) {
	var req RunYearEndCarryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	h.logger.Info("manual year end carry trigger",
		zap.String("action", req.Action),
		zap.Int("year", req.Year),
		zap.String("actor_id", c.GetString("user_id")),
	)

	var (
		report Report
		err    error
	)
	if req.Action == "calculate" {
		report, err = h.carryJob.CalculateCarry(c.Request.Context(), req.Year)
	} else {
		report, err = h.carryJob.ApplyNewYear(c.Request.Context(), req.Year)
	}
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, report, nil)
}
