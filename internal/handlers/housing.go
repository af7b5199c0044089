package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/choreboard-dev/choreboard/db"
	"github.com/choreboard-dev/choreboard/internal/coordinator"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/notify"
	"github.com/choreboard-dev/choreboard/internal/types"
	"github.com/choreboard-dev/choreboard/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (h *Handler) ListBuildings(ctx *gin.Context) {
	var buildings []models.Building

	if err := db.DB.Order("code asc").Find(&buildings).Error; err != nil {
		h.log.Error("failed to list buildings", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]types.BuildingResponse, 0, len(buildings))

	for _, building := range buildings {
		response = append(response, types.BuildingResponse{
			ID:   building.ID,
			Code: building.Code,
			Name: building.Name,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) ListApartments(ctx *gin.Context) {
	code := ctx.Param("code")

	var building models.Building

	if err := db.DB.Where("code = ?", code).First(&building).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Building not found"})
			return
		}
		h.log.Error("failed to fetch building", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var apartments []models.Apartment

	if err := db.DB.Where("building_id = ?", building.ID).Order("number asc").Find(&apartments).Error; err != nil {
		h.log.Error("failed to list apartments", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	counts := make(map[uint]int)

	var rows []struct {
		ApartmentID uint
		Residents   int
	}

	err := db.DB.Model(&models.ApartmentMembership{}).
		Select("apartment_id, count(*) as residents").
		Where("apartment_id IN (SELECT id FROM apartments WHERE building_id = ?)", building.ID).
		Group("apartment_id").
		Scan(&rows).Error

	if err != nil {
		h.log.Error("failed to count residents", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	for _, row := range rows {
		counts[row.ApartmentID] = row.Residents
	}

	response := make([]types.ApartmentResponse, 0, len(apartments))

	for _, apartment := range apartments {
		response = append(response, types.ApartmentResponse{
			ID:               apartment.ID,
			BuildingCode:     building.Code,
			Number:           apartment.Number,
			MaxResidents:     apartment.MaxResidents,
			CurrentResidents: counts[apartment.ID],
			UseDefaultTasks:  apartment.UseDefaultTasks,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) MyApartment(ctx *gin.Context) {
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

	view, err := h.coord.ApartmentView(membership.ApartmentID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

func (h *Handler) MyMembers(ctx *gin.Context) {
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

	members, err := h.memberships.ListMembers(membership.ApartmentID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	response := make([]types.MemberResponse, 0, len(members))

	for _, member := range members {
		response = append(response, types.MemberResponse{
			UserID:   member.UserID,
			Username: member.User.Username,
			Role:     member.Role,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *Handler) JoinApartment(ctx *gin.Context) {
	h.joinOrMove(ctx, false)
}

func (h *Handler) MoveApartment(ctx *gin.Context) {
	h.joinOrMove(ctx, true)
}

func (h *Handler) joinOrMove(ctx *gin.Context, move bool) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	apartmentID, err := utils.GetUintParam(ctx, "apartment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var membership *models.ApartmentMembership

	if move {
		membership, err = h.memberships.Move(currentUser.ID, apartmentID)
	} else {
		membership, err = h.memberships.Join(currentUser.ID, apartmentID)
	}

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.notifyCoResidents(apartmentID, currentUser.ID, notify.EventMemberJoined,
		fmt.Sprintf("%s joined the apartment", currentUser.Username))

	scopes := []coordinator.Scope{coordinator.ScopeApartment, coordinator.ScopeMembers, coordinator.ScopeSchedule, coordinator.ScopeTasks}

	if membership.Role == models.RoleManager {
		scopes = append(scopes, coordinator.ScopeTemplates, coordinator.ScopeMode)
	}

	snapshot := h.coord.Refresh(currentUser.ID, apartmentID, 0, scopes...)

	ctx.JSON(http.StatusOK, gin.H{
		"membership": types.MemberResponse{
			UserID:   membership.UserID,
			Username: currentUser.Username,
			Role:     membership.Role,
		},
		"refresh": snapshot,
	})
}

func (h *Handler) LeaveApartment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	apartmentID, err := h.memberships.Leave(currentUser.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	h.notifyCoResidents(apartmentID, currentUser.ID, notify.EventMemberLeft,
		fmt.Sprintf("%s left the apartment", currentUser.Username))

	ctx.JSON(http.StatusOK, gin.H{"message": "Left apartment"})
}

func (h *Handler) RemoveMember(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetUserID, err := utils.GetUintParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.memberships.MembershipOf(currentUser.ID)

	if err != nil {
		h.fail(ctx, err)
		return
	}

	if err := h.memberships.RemoveMember(currentUser.ID, membership.ApartmentID, targetUserID); err != nil {
		h.fail(ctx, err)
		return
	}

	h.hub.Publish(targetUserID, notify.NewEvent(notify.EventMemberRemoved, "You were removed from the apartment"))
	h.notifyCoResidents(membership.ApartmentID, currentUser.ID, notify.EventMemberLeft, "A resident was removed from the apartment")

	snapshot := h.coord.Refresh(currentUser.ID, membership.ApartmentID, 0,
		coordinator.ScopeApartment, coordinator.ScopeMembers, coordinator.ScopeSchedule)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Member removed",
		"refresh": snapshot,
	})
}

// notifyCoResidents fans an event out to every other resident of the
// apartment. Best-effort: a lookup failure only logs.
func (h *Handler) notifyCoResidents(apartmentID, actorID uint, eventType, message string) {
	coResidents, err := h.memberships.CoResidents(apartmentID, actorID)

	if err != nil {
		h.log.Warn("failed to resolve co-residents for notification",
			zap.Uint("apartment_id", apartmentID),
			zap.Error(err))
		return
	}

	h.hub.PublishAll(coResidents, notify.NewEvent(eventType, message))
}
