// Package coordinator implements the invalidate-and-refresh protocol that
// stands in for cross-resource transactions: every mutation is followed by a
// re-fetch of the read-models it can have invalidated, and the refreshed
// views travel back in the same response so a client reads its own writes in
// one round trip.
package coordinator

import (
	"sync"

	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/choreboard-dev/choreboard/internal/services"
	"github.com/choreboard-dev/choreboard/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scope names a read-model a mutation can invalidate.
type Scope string

const (
	ScopeApartment Scope = "apartment"
	ScopeMembers   Scope = "members"
	ScopeSchedule  Scope = "schedule"
	ScopeTasks     Scope = "tasks"
	ScopeTemplates Scope = "templates"
	ScopeMode      Scope = "mode"
)

// Snapshot carries the refreshed views for the scopes that were requested.
// A scope whose re-fetch failed is listed in Stale instead of failing the
// request; the client retries via GET or waits for the next notification.
type Snapshot struct {
	Apartment       *types.ApartmentResponse `json:"apartment,omitempty"`
	Members         []types.MemberResponse   `json:"members,omitempty"`
	Schedule        []types.SlotResponse     `json:"schedule,omitempty"`
	Tasks           []types.TaskResponse     `json:"tasks,omitempty"`
	Templates       []types.TemplateResponse `json:"templates,omitempty"`
	UseDefaultTasks *bool                    `json:"use_default_tasks,omitempty"`
	Stale           []string                 `json:"stale,omitempty"`
}

type Coordinator struct {
	db          *gorm.DB
	logger      *zap.Logger
	memberships *services.MembershipService
	schedule    *services.ScheduleService
	tasks       *services.TaskService
}

func New(db *gorm.DB, logger *zap.Logger, memberships *services.MembershipService, schedule *services.ScheduleService, tasks *services.TaskService) *Coordinator {
	return &Coordinator{
		db:          db,
		logger:      logger,
		memberships: memberships,
		schedule:    schedule,
		tasks:       tasks,
	}
}

// Refresh re-fetches the requested scopes for the caller. The reads are
// independent of each other and run concurrently; day selects which
// checklist the tasks scope loads.
func (c *Coordinator) Refresh(userID, apartmentID uint, day int, scopes ...Scope) Snapshot {
	var (
		snapshot Snapshot
		mu       sync.Mutex
		wg       sync.WaitGroup
	)

	markStale := func(scope Scope, err error) {
		c.logger.Warn("read-model refresh failed",
			zap.String("scope", string(scope)),
			zap.Uint("apartment_id", apartmentID),
			zap.Error(err))
		mu.Lock()
		snapshot.Stale = append(snapshot.Stale, string(scope))
		mu.Unlock()
	}

	for _, scope := range scopes {
		wg.Add(1)

		go func(scope Scope) {
			defer wg.Done()

			switch scope {
			case ScopeApartment:
				view, err := c.ApartmentView(apartmentID)
				if err != nil {
					markStale(scope, err)
					return
				}
				mu.Lock()
				snapshot.Apartment = view
				mu.Unlock()

			case ScopeMembers:
				members, err := c.memberships.ListMembers(apartmentID)
				if err != nil {
					markStale(scope, err)
					return
				}
				view := make([]types.MemberResponse, 0, len(members))
				for _, m := range members {
					view = append(view, types.MemberResponse{
						UserID:   m.UserID,
						Username: m.User.Username,
						Role:     m.Role,
					})
				}
				mu.Lock()
				snapshot.Members = view
				mu.Unlock()

			case ScopeSchedule:
				slots, err := c.schedule.ListSlots(apartmentID)
				if err != nil {
					markStale(scope, err)
					return
				}
				view := make([]types.SlotResponse, 0, len(slots))
				for _, slot := range slots {
					resp := types.SlotResponse{
						DayOfWeek:  slot.DayOfWeek,
						ClaimantID: slot.ClaimantID,
					}
					if slot.Claimant != nil {
						resp.ClaimantName = slot.Claimant.Username
					}
					if slot.ClaimantID != nil && *slot.ClaimantID == userID {
						resp.ClaimedByCaller = true
					}
					view = append(view, resp)
				}
				mu.Lock()
				snapshot.Schedule = view
				mu.Unlock()

			case ScopeTasks:
				instances, err := c.tasks.ListForDay(userID, day)
				if err != nil {
					markStale(scope, err)
					return
				}
				view := make([]types.TaskResponse, 0, len(instances))
				for _, instance := range instances {
					view = append(view, types.TaskResponse{
						ID:        instance.ID,
						DayOfWeek: instance.DayOfWeek,
						Name:      instance.Name,
						IsDone:    instance.IsDone,
					})
				}
				mu.Lock()
				snapshot.Tasks = view
				mu.Unlock()

			case ScopeTemplates:
				templates, err := c.tasks.ListTemplates(userID, apartmentID)
				if err != nil {
					markStale(scope, err)
					return
				}
				view := make([]types.TemplateResponse, 0, len(templates))
				for _, template := range templates {
					view = append(view, types.TemplateResponse{
						ID:          template.ID,
						Name:        template.Name,
						Description: template.Description,
					})
				}
				mu.Lock()
				snapshot.Templates = view
				mu.Unlock()

			case ScopeMode:
				useDefault, err := c.tasks.GenerationMode(apartmentID)
				if err != nil {
					markStale(scope, err)
					return
				}
				mu.Lock()
				snapshot.UseDefaultTasks = &useDefault
				mu.Unlock()
			}
		}(scope)
	}

	wg.Wait()

	return snapshot
}

// ApartmentView assembles the single-apartment read-model.
func (c *Coordinator) ApartmentView(apartmentID uint) (*types.ApartmentResponse, error) {
	var apartment models.Apartment

	if err := c.db.Preload("Building").First(&apartment, apartmentID).Error; err != nil {
		return nil, err
	}

	var residents int64

	if err := c.db.Model(&models.ApartmentMembership{}).
		Where("apartment_id = ?", apartmentID).
		Count(&residents).Error; err != nil {
		return nil, err
	}

	return &types.ApartmentResponse{
		ID:               apartment.ID,
		BuildingCode:     apartment.Building.Code,
		Number:           apartment.Number,
		MaxResidents:     apartment.MaxResidents,
		CurrentResidents: int(residents),
		UseDefaultTasks:  apartment.UseDefaultTasks,
	}, nil
}
