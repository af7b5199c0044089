package handlers

import (
	"net/http"

	"github.com/choreboard-dev/choreboard/db"
	"github.com/choreboard-dev/choreboard/internal/coordinator"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/notify"
	"github.com/choreboard-dev/choreboard/internal/types"
	"github.com/choreboard-dev/choreboard/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateTemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type SetTaskModeRequest struct {
	UseDefaultTasks *bool `json:"use_default_tasks" binding:"required"`
}

// taskScopes extends the base refresh scopes with the caller's checklist when
// they hold a slot. Mode and template mutations rewrite instances for claimed
// days, so the caller's own task list is invalidated too.
func (h *Handler) taskScopes(apartmentID, userID uint, base ...coordinator.Scope) ([]coordinator.Scope, int) {
	var slot models.ScheduleSlot

	err := db.DB.Where("apartment_id = ? AND claimant_id = ?", apartmentID, userID).First(&slot).Error

	if err != nil {
		return base, 0
	}

	return append(base, coordinator.ScopeTasks), slot.DayOfWeek
}

func (h *Handler) ListTemplates(ctx *gin.Context) {
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

	templates, err := h.tasks.ListTemplates(userID, membership.ApartmentID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	response := make([]types.TemplateResponse, 0, len(templates))

	for _, template := range templates {
		response = append(response, types.TemplateResponse{
			ID:          template.ID,
			Name:        template.Name,
			Description: template.Description,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) CreateTemplate(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTemplateRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	membership, err := h.memberships.MembershipOf(currentUser.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	template, err := h.tasks.CreateTemplate(currentUser.ID, membership.ApartmentID, req.Name, req.Description)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	scopes, day := h.taskScopes(membership.ApartmentID, currentUser.ID,
		coordinator.ScopeTemplates, coordinator.ScopeMode)

	snapshot := h.coord.Refresh(currentUser.ID, membership.ApartmentID, day, scopes...)

	ctx.JSON(http.StatusCreated, gin.H{
		"template": types.TemplateResponse{
			ID:          template.ID,
			Name:        template.Name,
			Description: template.Description,
		},
		"refresh": snapshot,
	})
}

func (h *Handler) DeleteTemplate(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	templateID, err := utils.GetUintParam(ctx, "template_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.memberships.MembershipOf(currentUser.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	if err := h.tasks.DeleteTemplate(currentUser.ID, templateID); err != nil {
		h.fail(ctx, err)
		return
	}

	scopes, day := h.taskScopes(membership.ApartmentID, currentUser.ID, coordinator.ScopeTemplates)

	snapshot := h.coord.Refresh(currentUser.ID, membership.ApartmentID, day, scopes...)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Template deleted",
		"refresh": snapshot,
	})
}

func (h *Handler) GetTaskMode(ctx *gin.Context) {
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

	useDefault, err := h.tasks.GenerationMode(membership.ApartmentID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"use_default_tasks": useDefault})
}

func (h *Handler) SetTaskMode(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SetTaskModeRequest

	if err := ctx.BindJSON(&req); err != nil || req.UseDefaultTasks == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	membership, err := h.memberships.MembershipOf(currentUser.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	if err := h.tasks.SetGenerationMode(currentUser.ID, membership.ApartmentID, *req.UseDefaultTasks); err != nil {
		h.fail(ctx, err)
		return
	}

	h.notifyCoResidents(membership.ApartmentID, currentUser.ID, notify.EventModeChanged,
		"The task generation mode was changed")

	scopes, day := h.taskScopes(membership.ApartmentID, currentUser.ID,
		coordinator.ScopeMode, coordinator.ScopeTemplates, coordinator.ScopeSchedule)

	snapshot := h.coord.Refresh(currentUser.ID, membership.ApartmentID, day, scopes...)

	ctx.JSON(http.StatusOK, gin.H{
		"use_default_tasks": *req.UseDefaultTasks,
		"refresh":           snapshot,
	})
}
