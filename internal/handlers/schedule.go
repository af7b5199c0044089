package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/choreboard-dev/choreboard/internal/coordinator"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/notify"
	"github.com/choreboard-dev/choreboard/internal/services"
	"github.com/choreboard-dev/choreboard/internal/utils"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListSchedule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	membership, err := h.memberships.MembershipOf(userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	snapshot := h.coord.Refresh(userID, membership.ApartmentID, 0, coordinator.ScopeSchedule)

	if len(snapshot.Stale) > 0 {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, snapshot.Schedule)
}

func (h *Handler) TakeSlot(ctx *gin.Context) {
	h.slotMutation(ctx, true)
}

func (h *Handler) ReleaseSlot(ctx *gin.Context) {
	h.slotMutation(ctx, false)
}

func (h *Handler) slotMutation(ctx *gin.Context, take bool) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	day, err := utils.GetDayParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.memberships.MembershipOf(currentUser.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	var (
		mutationErr error
		eventType   string
		message     string
	)

	if take {
		mutationErr = h.schedule.TakeSlot(membership.ApartmentID, day, currentUser.ID)
		eventType = notify.EventSlotTaken
		message = fmt.Sprintf("%s took %s", currentUser.Username, models.DayName(day))
	} else {
		mutationErr = h.schedule.ReleaseSlot(membership.ApartmentID, day, currentUser.ID)
		eventType = notify.EventSlotReleased
		message = fmt.Sprintf("%s released %s", currentUser.Username, models.DayName(day))
	}

	// A partial pipeline failure still changed the slot; notify and report
	// the failed step alongside the refreshed views.
	var pipelineErr *services.PipelineError
	partial := mutationErr != nil && errors.As(mutationErr, &pipelineErr)

	if mutationErr != nil && !partial {
		h.fail(ctx, mutationErr)
		return
	}

	h.notifyCoResidents(membership.ApartmentID, currentUser.ID, eventType, message)

	snapshot := h.coord.Refresh(currentUser.ID, membership.ApartmentID, day,
		coordinator.ScopeSchedule, coordinator.ScopeTasks)

	if partial {
		ctx.JSON(http.StatusMultiStatus, gin.H{
			"error":           pipelineErr.Err.Error(),
			"failed_step":     pipelineErr.Failed,
			"completed_steps": pipelineErr.Completed,
			"refresh":         snapshot,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"refresh": snapshot})
}
