package handlers

import (
	"fmt"
	"net/http"

	"github.com/choreboard-dev/choreboard/internal/coordinator"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/notify"
	"github.com/choreboard-dev/choreboard/internal/types"
	"github.com/choreboard-dev/choreboard/internal/utils"
	"github.com/gin-gonic/gin"
)

func (h *Handler) TasksForDay(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	day, err := utils.GetDayParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instances, err := h.tasks.ListForDay(userID, day)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	response := make([]types.TaskResponse, 0, len(instances))

	for _, instance := range instances {
		response = append(response, types.TaskResponse{
			ID:        instance.ID,
			DayOfWeek: instance.DayOfWeek,
			Name:      instance.Name,
			IsDone:    instance.IsDone,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"day_of_week": day,
		"tasks":       response,
	})
}

// ApartmentTasksForDay returns every resident's checklist for the day, so a
// member can see who does what.
func (h *Handler) ApartmentTasksForDay(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	day, err := utils.GetDayParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.memberships.MembershipOf(userID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	instances, err := h.tasks.ListForApartmentDay(membership.ApartmentID, day)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	response := make([]types.ApartmentTaskResponse, 0, len(instances))

	for _, instance := range instances {
		response = append(response, types.ApartmentTaskResponse{
			ID:        instance.ID,
			UserID:    instance.UserID,
			DayOfWeek: instance.DayOfWeek,
			Name:      instance.Name,
			IsDone:    instance.IsDone,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"day_of_week": day,
		"tasks":       response,
	})
}

func (h *Handler) ToggleTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetUintParam(ctx, "task_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instance, err := h.tasks.Toggle(currentUser.ID, taskID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	if instance.IsDone {
		h.notifyCoResidents(instance.ApartmentID, currentUser.ID, notify.EventTaskToggled,
			fmt.Sprintf("%s finished %q for %s", currentUser.Username, instance.Name, models.DayName(instance.DayOfWeek)))
	}

	snapshot := h.coord.Refresh(currentUser.ID, instance.ApartmentID, instance.DayOfWeek, coordinator.ScopeTasks)

	ctx.JSON(http.StatusOK, gin.H{
		"task": types.TaskResponse{
			ID:        instance.ID,
			DayOfWeek: instance.DayOfWeek,
			Name:      instance.Name,
			IsDone:    instance.IsDone,
		},
		"refresh": snapshot,
	})
}
