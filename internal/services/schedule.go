package services

import (
	"errors"

	"github.com/choreboard-dev/choreboard/internal/apperr"
	"github.com/choreboard-dev/choreboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ScheduleService runs the 7-slot weekly duty table of an apartment.
// Claiming is a single compare-and-set UPDATE so a race between two
// claimants resolves with exactly one winner.
type ScheduleService struct {
	db     *gorm.DB
	logger *zap.Logger
	tasks  *TaskService
}

func NewScheduleService(db *gorm.DB, logger *zap.Logger, tasks *TaskService) *ScheduleService {
	return &ScheduleService{db: db, logger: logger, tasks: tasks}
}

// EnsureSlots lazily creates the apartment's 7 weekly slots.
func (s *ScheduleService) EnsureSlots(apartmentID uint) error {
	var count int64

	if err := s.db.Model(&models.ScheduleSlot{}).
		Where("apartment_id = ?", apartmentID).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	slots := make([]models.ScheduleSlot, 0, 7)

	for day := 0; day < 7; day++ {
		slots = append(slots, models.ScheduleSlot{ApartmentID: apartmentID, DayOfWeek: day})
	}

	// A concurrent first read may have seeded already; the unique
	// (apartment, day) index turns the second insert into a no-op error we
	// can ignore.
	if err := s.db.Create(&slots).Error; err != nil {
		var verify int64

		if countErr := s.db.Model(&models.ScheduleSlot{}).
			Where("apartment_id = ?", apartmentID).
			Count(&verify).Error; countErr == nil && verify == 7 {
			return nil
		}

		return err
	}

	return nil
}

// ListSlots returns all 7 slots ordered by day, claimants preloaded.
func (s *ScheduleService) ListSlots(apartmentID uint) ([]models.ScheduleSlot, error) {
	if err := s.EnsureSlots(apartmentID); err != nil {
		return nil, err
	}

	var slots []models.ScheduleSlot

	err := s.db.Preload("Claimant").
		Where("apartment_id = ?", apartmentID).
		Order("day_of_week asc").
		Find(&slots).Error

	if err != nil {
		return nil, err
	}

	return slots, nil
}

// TakeSlot claims a free slot for the user and materializes their checklist
// for that day. The claim is step one of an ordered pipeline; if
// materialization fails the claim stands and a PipelineError reports the
// failed step.
func (s *ScheduleService) TakeSlot(apartmentID uint, day int, userID uint) error {
	if day < 0 || day > 6 {
		return apperr.ErrValidation
	}

	var membership models.ApartmentMembership

	err := s.db.Where("user_id = ? AND apartment_id = ?", userID, apartmentID).First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotAMember
		}
		return err
	}

	if err := s.EnsureSlots(apartmentID); err != nil {
		return err
	}

	// Atomic check-and-set: only a free slot transitions to claimed, and
	// only while the user holds no other day. Both conditions sit in the
	// one UPDATE so a user racing two claims cannot win twice.
	result := s.db.Model(&models.ScheduleSlot{}).
		Where("apartment_id = ? AND day_of_week = ? AND claimant_id IS NULL", apartmentID, day).
		Where("NOT EXISTS (SELECT 1 FROM schedule_slots other WHERE other.apartment_id = ? AND other.claimant_id = ? AND other.day_of_week <> ? AND other.deleted_at IS NULL)",
			apartmentID, userID, day).
		Update("claimant_id", userID)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var slot models.ScheduleSlot

		if err := s.db.Where("apartment_id = ? AND day_of_week = ?", apartmentID, day).First(&slot).Error; err != nil {
			return err
		}

		// A free slot means the one-day guard tripped: the user already
		// claims another day.
		if slot.ClaimantID == nil {
			return apperr.ErrAlreadyClaimedElsewhere
		}

		// Re-claiming one's own slot is idempotent; tasks get
		// re-materialized below.
		if *slot.ClaimantID != userID {
			return apperr.ErrSlotTaken
		}
	}

	s.logger.Info("slot claimed",
		zap.Uint("apartment_id", apartmentID),
		zap.Int("day", day),
		zap.Uint("user_id", userID))

	if err := s.tasks.Materialize(apartmentID, day, userID); err != nil {
		return &PipelineError{
			Completed: []string{StepClaimSlot},
			Failed:    StepMaterialize,
			Err:       err,
		}
	}

	return nil
}

// ReleaseSlot frees the slot and discards the claimant's tasks for the day.
func (s *ScheduleService) ReleaseSlot(apartmentID uint, day int, userID uint) error {
	if day < 0 || day > 6 {
		return apperr.ErrValidation
	}

	result := s.db.Model(&models.ScheduleSlot{}).
		Where("apartment_id = ? AND day_of_week = ? AND claimant_id = ?", apartmentID, day, userID).
		Update("claimant_id", nil)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperr.ErrNotClaimant
	}

	s.logger.Info("slot released",
		zap.Uint("apartment_id", apartmentID),
		zap.Int("day", day),
		zap.Uint("user_id", userID))

	if err := s.tasks.Discard(userID, apartmentID, day); err != nil {
		return &PipelineError{
			Completed: []string{StepReleaseSlot},
			Failed:    StepDiscardTask,
			Err:       err,
		}
	}

	return nil
}
