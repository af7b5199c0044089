package handlers

import (
	"errors"
	"net/http"

	"github.com/choreboard-dev/choreboard/internal/apperr"
	"github.com/choreboard-dev/choreboard/internal/coordinator"
	"github.com/choreboard-dev/choreboard/internal/notify"
	"github.com/choreboard-dev/choreboard/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler wires the domain services, the notification hub and the
// coordinator into gin routes.
type Handler struct {
	log            *zap.Logger
	hub            *notify.Hub
	memberships    *services.MembershipService
	schedule       *services.ScheduleService
	tasks          *services.TaskService
	coord          *coordinator.Coordinator
	allowedOrigins []string
}

func New(database *gorm.DB, logger *zap.Logger, hub *notify.Hub, allowedOrigins []string) *Handler {
	tasks := services.NewTaskService(database, logger)
	schedule := services.NewScheduleService(database, logger, tasks)
	memberships := services.NewMembershipService(database, logger)

	return &Handler{
		log:            logger,
		hub:            hub,
		memberships:    memberships,
		schedule:       schedule,
		tasks:          tasks,
		coord:          coordinator.New(database, logger, memberships, schedule, tasks),
		allowedOrigins: allowedOrigins,
	}
}

// fail translates a service error into the HTTP response. Partial pipeline
// failures are reported distinctly (207) so the caller can retry just the
// failed step; unknown errors are logged and never leaked.
func (h *Handler) fail(ctx *gin.Context, err error) {
	var pipelineErr *services.PipelineError

	if errors.As(err, &pipelineErr) {
		ctx.JSON(http.StatusMultiStatus, gin.H{
			"error":           pipelineErr.Err.Error(),
			"failed_step":     pipelineErr.Failed,
			"completed_steps": pipelineErr.Completed,
		})
		return
	}

	status := apperr.Status(err)

	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
		ctx.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(status, gin.H{"error": err.Error()})
}
