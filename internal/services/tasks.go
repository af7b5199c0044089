package services

import (
	"errors"
	"strings"

	"github.com/choreboard-dev/choreboard/internal/apperr"
	"github.com/choreboard-dev/choreboard/internal/catalog"
	"github.com/choreboard-dev/choreboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService resolves which source feeds a day's checklist (default catalog
// or manager templates), materializes task instances and tracks completion.
type TaskService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTaskService(db *gorm.DB, logger *zap.Logger) *TaskService {
	return &TaskService{db: db, logger: logger}
}

// Materialize (re)creates the (user, day) checklist from the apartment's
// current generation source. Idempotent: existing instances for the pair are
// replaced, never duplicated.
func (s *TaskService) Materialize(apartmentID uint, day int, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.materializeTx(tx, apartmentID, day, userID)
	})
}

func (s *TaskService) materializeTx(tx *gorm.DB, apartmentID uint, day int, userID uint) error {
	var apartment models.Apartment

	if err := tx.First(&apartment, apartmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	var names []string

	if apartment.UseDefaultTasks {
		for _, entry := range catalog.Default() {
			names = append(names, entry.Name)
		}
	} else {
		var templates []models.TaskTemplate

		if err := tx.Where("apartment_id = ?", apartmentID).
			Order("id asc").
			Find(&templates).Error; err != nil {
			return err
		}

		for _, template := range templates {
			names = append(names, template.Name)
		}
	}

	if err := tx.Unscoped().
		Where("user_id = ? AND apartment_id = ? AND day_of_week = ?", userID, apartmentID, day).
		Delete(&models.TaskInstance{}).Error; err != nil {
		return err
	}

	if len(names) == 0 {
		return nil
	}

	instances := make([]models.TaskInstance, 0, len(names))

	for position, name := range names {
		instances = append(instances, models.TaskInstance{
			UserID:      userID,
			ApartmentID: apartmentID,
			DayOfWeek:   day,
			Name:        name,
			Position:    position,
		})
	}

	return tx.Create(&instances).Error
}

// Discard removes the user's instances for the day, done or not. Banked
// total_cleanings are untouched; the counter only moves on toggle.
func (s *TaskService) Discard(userID, apartmentID uint, day int) error {
	return s.db.Unscoped().
		Where("user_id = ? AND apartment_id = ? AND day_of_week = ?", userID, apartmentID, day).
		Delete(&models.TaskInstance{}).Error
}

// ListForDay returns the user's instances for the day in materialization order.
func (s *TaskService) ListForDay(userID uint, day int) ([]models.TaskInstance, error) {
	var instances []models.TaskInstance

	err := s.db.Where("user_id = ? AND day_of_week = ?", userID, day).
		Order("position asc").
		Find(&instances).Error

	if err != nil {
		return nil, err
	}

	return instances, nil
}

// ListForApartmentDay returns every instance of the apartment for the day,
// grouped by owner.
func (s *TaskService) ListForApartmentDay(apartmentID uint, day int) ([]models.TaskInstance, error) {
	var instances []models.TaskInstance

	err := s.db.Where("apartment_id = ? AND day_of_week = ?", apartmentID, day).
		Order("user_id asc, position asc").
		Find(&instances).Error

	if err != nil {
		return nil, err
	}

	return instances, nil
}

// Toggle flips completion. false->true banks one cleaning on the owner's
// lifetime counter, true->false takes it back, in the same transaction as
// the flip so an undo round-trips exactly.
func (s *TaskService) Toggle(actorID, taskID uint) (*models.TaskInstance, error) {
	var instance models.TaskInstance

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&instance, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}

		if instance.UserID != actorID {
			return apperr.ErrForbidden
		}

		delta := 1

		if instance.IsDone {
			delta = -1
		}

		instance.IsDone = !instance.IsDone

		if err := tx.Model(&instance).Update("is_done", instance.IsDone).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", instance.UserID).
			Update("total_cleanings", gorm.Expr("total_cleanings + ?", delta)).Error
	})

	if err != nil {
		return nil, err
	}

	return &instance, nil
}

// GenerationMode reports whether the apartment uses the default catalog.
func (s *TaskService) GenerationMode(apartmentID uint) (bool, error) {
	var apartment models.Apartment

	if err := s.db.First(&apartment, apartmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, err
	}

	return apartment.UseDefaultTasks, nil
}

// SetGenerationMode flips the source of materialized tasks and regenerates
// the checklist of every claimed day from the new source. Templates are left
// untouched either way; toggling the mode back restores their effect.
func (s *TaskService) SetGenerationMode(actorID, apartmentID uint, useDefault bool) error {
	if err := s.requireManager(actorID, apartmentID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Apartment{}).
			Where("id = ?", apartmentID).
			Update("use_default_tasks", useDefault).Error; err != nil {
			return err
		}

		return s.regenerateClaimedDays(tx, apartmentID)
	})

	if err != nil {
		return err
	}

	s.logger.Info("generation mode changed",
		zap.Uint("apartment_id", apartmentID),
		zap.Bool("use_default_tasks", useDefault))

	return nil
}

// ListTemplates returns the apartment's templates in creation order.
// Any member may read them.
func (s *TaskService) ListTemplates(actorID, apartmentID uint) ([]models.TaskTemplate, error) {
	if err := s.requireMember(actorID, apartmentID); err != nil {
		return nil, err
	}

	var templates []models.TaskTemplate

	err := s.db.Where("apartment_id = ?", apartmentID).
		Order("id asc").
		Find(&templates).Error

	if err != nil {
		return nil, err
	}

	return templates, nil
}

// CreateTemplate adds a manager-authored template and appends a matching
// instance to every claimed day's checklist. Rejected while the apartment
// runs on default tasks.
func (s *TaskService) CreateTemplate(actorID, apartmentID uint, name, description string) (*models.TaskTemplate, error) {
	if err := s.requireManager(actorID, apartmentID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperr.ErrValidation
	}

	var apartment models.Apartment

	if err := s.db.First(&apartment, apartmentID).Error; err != nil {
		return nil, err
	}

	if apartment.UseDefaultTasks {
		return nil, apperr.ErrModeConflict
	}

	template := models.TaskTemplate{
		ApartmentID: apartmentID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&template).Error; err != nil {
			return err
		}

		// Claimed days pick the new task up immediately, appended after
		// the existing ones so done-state is preserved.
		var slots []models.ScheduleSlot

		if err := tx.Where("apartment_id = ? AND claimant_id IS NOT NULL", apartmentID).
			Find(&slots).Error; err != nil {
			return err
		}

		for _, slot := range slots {
			// max+1, not count: deleting a template leaves position gaps
			// and the next append must still land after everything.
			var maxPosition int

			if err := tx.Model(&models.TaskInstance{}).
				Where("user_id = ? AND apartment_id = ? AND day_of_week = ?", *slot.ClaimantID, apartmentID, slot.DayOfWeek).
				Select("COALESCE(MAX(position), -1)").
				Scan(&maxPosition).Error; err != nil {
				return err
			}

			instance := models.TaskInstance{
				UserID:      *slot.ClaimantID,
				ApartmentID: apartmentID,
				DayOfWeek:   slot.DayOfWeek,
				Name:        name,
				Position:    maxPosition + 1,
			}

			if err := tx.Create(&instance).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &template, nil
}

// DeleteTemplate removes the template and the not-yet-done instances it
// materialized. Completed occurrences stay for the record.
func (s *TaskService) DeleteTemplate(actorID, templateID uint) error {
	var template models.TaskTemplate

	if err := s.db.First(&template, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}

	if err := s.requireManager(actorID, template.ApartmentID); err != nil {
		return err
	}

	var apartment models.Apartment

	if err := s.db.First(&apartment, template.ApartmentID).Error; err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&template).Error; err != nil {
			return err
		}

		// While defaults are active the template fed no instances; a name
		// collision with a catalog entry must not delete catalog-derived
		// ones.
		if apartment.UseDefaultTasks {
			return nil
		}

		return tx.Unscoped().
			Where("apartment_id = ? AND name = ? AND is_done = ?", template.ApartmentID, template.Name, false).
			Delete(&models.TaskInstance{}).Error
	})
}

func (s *TaskService) regenerateClaimedDays(tx *gorm.DB, apartmentID uint) error {
	var slots []models.ScheduleSlot

	if err := tx.Where("apartment_id = ? AND claimant_id IS NOT NULL", apartmentID).
		Find(&slots).Error; err != nil {
		return err
	}

	for _, slot := range slots {
		if err := s.materializeTx(tx, apartmentID, slot.DayOfWeek, *slot.ClaimantID); err != nil {
			return err
		}
	}

	return nil
}

func (s *TaskService) requireManager(userID, apartmentID uint) error {
	var membership models.ApartmentMembership

	err := s.db.Where("user_id = ? AND apartment_id = ?", userID, apartmentID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrForbidden
		}
		return err
	}

	if membership.Role != models.RoleManager {
		return apperr.ErrForbidden
	}

	return nil
}

func (s *TaskService) requireMember(userID, apartmentID uint) error {
	var membership models.ApartmentMembership

	err := s.db.Where("user_id = ? AND apartment_id = ?", userID, apartmentID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotAMember
		}
		return err
	}

	return nil
}
