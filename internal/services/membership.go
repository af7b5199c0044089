package services

import (
	"errors"
	"time"

	"github.com/choreboard-dev/choreboard/internal/apperr"
	"github.com/choreboard-dev/choreboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MembershipService owns the user-to-apartment relation: joins, moves,
// leaves and manager-driven removals, all under the capacity invariant.
type MembershipService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMembershipService(db *gorm.DB, logger *zap.Logger) *MembershipService {
	return &MembershipService{db: db, logger: logger}
}

// Join adds the user to the apartment. The first joiner of an empty
// apartment becomes its manager. The capacity check and the insert run in
// one transaction with the apartment row locked, so two concurrent joins
// cannot both squeeze into the last free spot.
func (s *MembershipService) Join(userID, apartmentID uint) (*models.ApartmentMembership, error) {
	var membership models.ApartmentMembership

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ApartmentMembership

		err := tx.Where("user_id = ?", userID).First(&existing).Error

		if err == nil {
			return apperr.ErrAlreadyMember
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		created, err := s.createMembership(tx, userID, apartmentID)

		if err != nil {
			return err
		}

		membership = *created
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("user joined apartment",
		zap.Uint("user_id", userID),
		zap.Uint("apartment_id", apartmentID),
		zap.String("role", membership.Role))

	return &membership, nil
}

// Move atomically revokes the current membership (releasing any claimed slot
// and discarding that day's tasks in the old apartment, promoting a
// replacement manager if needed) and joins the new apartment. A user with no
// membership just joins.
func (s *MembershipService) Move(userID, newApartmentID uint) (*models.ApartmentMembership, error) {
	var membership models.ApartmentMembership

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ApartmentMembership

		err := tx.Where("user_id = ?", userID).First(&existing).Error

		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err == nil {
			if existing.ApartmentID == newApartmentID {
				return apperr.ErrAlreadyMember
			}

			if err := s.removeMembership(tx, &existing); err != nil {
				return err
			}
		}

		created, err := s.createMembership(tx, userID, newApartmentID)

		if err != nil {
			return err
		}

		membership = *created
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("user moved apartment",
		zap.Uint("user_id", userID),
		zap.Uint("apartment_id", newApartmentID))

	return &membership, nil
}

// Leave removes the caller's membership with full cleanup. Returns the
// apartment that was left.
func (s *MembershipService) Leave(userID uint) (uint, error) {
	var apartmentID uint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ApartmentMembership

		if err := tx.Where("user_id = ?", userID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotAMember
			}
			return err
		}

		apartmentID = existing.ApartmentID
		return s.removeMembership(tx, &existing)
	})

	if err != nil {
		return 0, err
	}

	s.logger.Info("user left apartment",
		zap.Uint("user_id", userID),
		zap.Uint("apartment_id", apartmentID))

	return apartmentID, nil
}

// RemoveMember lets a manager evict a resident of their own apartment.
// The only manager of an apartment cannot remove themselves.
func (s *MembershipService) RemoveMember(actorID, apartmentID, targetUserID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var actor models.ApartmentMembership

		if err := tx.Where("user_id = ? AND apartment_id = ?", actorID, apartmentID).First(&actor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrForbidden
			}
			return err
		}

		if actor.Role != models.RoleManager {
			return apperr.ErrForbidden
		}

		var target models.ApartmentMembership

		if err := tx.Where("user_id = ? AND apartment_id = ?", targetUserID, apartmentID).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return err
		}

		if target.UserID == actorID && target.Role == models.RoleManager {
			var managers int64

			if err := tx.Model(&models.ApartmentMembership{}).
				Where("apartment_id = ? AND role = ?", apartmentID, models.RoleManager).
				Count(&managers).Error; err != nil {
				return err
			}

			if managers <= 1 {
				return apperr.ErrValidation
			}
		}

		return s.removeMembership(tx, &target)
	})
}

// ListMembers returns the apartment's residents in join order.
func (s *MembershipService) ListMembers(apartmentID uint) ([]models.ApartmentMembership, error) {
	var memberships []models.ApartmentMembership

	err := s.db.Preload("User").
		Where("apartment_id = ?", apartmentID).
		Order("joined_at asc").
		Find(&memberships).Error

	if err != nil {
		return nil, err
	}

	return memberships, nil
}

// MembershipOf returns the user's active membership, or ErrNotAMember.
func (s *MembershipService) MembershipOf(userID uint) (*models.ApartmentMembership, error) {
	var membership models.ApartmentMembership

	err := s.db.Preload("Apartment").Preload("Apartment.Building").
		Where("user_id = ?", userID).
		First(&membership).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotAMember
		}
		return nil, err
	}

	return &membership, nil
}

// CoResidents returns the ids of every resident of the apartment except the
// excluded user. Used for notification fan-out.
func (s *MembershipService) CoResidents(apartmentID, excludeUserID uint) ([]uint, error) {
	var ids []uint

	err := s.db.Model(&models.ApartmentMembership{}).
		Where("apartment_id = ? AND user_id <> ?", apartmentID, excludeUserID).
		Pluck("user_id", &ids).Error

	if err != nil {
		return nil, err
	}

	return ids, nil
}

// createMembership inserts a membership under the capacity invariant. The
// apartment row is locked for the duration of the count-and-insert.
func (s *MembershipService) createMembership(tx *gorm.DB, userID, apartmentID uint) (*models.ApartmentMembership, error) {
	var apartment models.Apartment

	if err := lockForUpdate(tx).First(&apartment, apartmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	var residents int64

	if err := tx.Model(&models.ApartmentMembership{}).
		Where("apartment_id = ?", apartmentID).
		Count(&residents).Error; err != nil {
		return nil, err
	}

	if residents >= int64(apartment.MaxResidents) {
		return nil, apperr.ErrCapacityExceeded
	}

	role := models.RoleResident

	if residents == 0 {
		role = models.RoleManager
	}

	membership := models.ApartmentMembership{
		UserID:      userID,
		ApartmentID: apartmentID,
		Role:        role,
		JoinedAt:    time.Now(),
	}

	if err := tx.Create(&membership).Error; err != nil {
		return nil, err
	}

	return &membership, nil
}

// removeMembership deletes a membership along with the member's slot claim
// and task instances in that apartment, then promotes a replacement manager
// if the leaver held the role.
func (s *MembershipService) removeMembership(tx *gorm.DB, membership *models.ApartmentMembership) error {
	if err := tx.Model(&models.ScheduleSlot{}).
		Where("apartment_id = ? AND claimant_id = ?", membership.ApartmentID, membership.UserID).
		Update("claimant_id", nil).Error; err != nil {
		return err
	}

	if err := tx.Unscoped().
		Where("apartment_id = ? AND user_id = ?", membership.ApartmentID, membership.UserID).
		Delete(&models.TaskInstance{}).Error; err != nil {
		return err
	}

	// Hard delete: a soft-deleted row would still occupy the unique
	// user_id index and block re-joining.
	if err := tx.Unscoped().Delete(membership).Error; err != nil {
		return err
	}

	if membership.Role != models.RoleManager {
		return nil
	}

	// Longest-tenured remaining resident takes over.
	var successor models.ApartmentMembership

	err := tx.Where("apartment_id = ?", membership.ApartmentID).
		Order("joined_at asc").
		First(&successor).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return tx.Model(&successor).Update("role", models.RoleManager).Error
}
