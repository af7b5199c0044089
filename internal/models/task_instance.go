package models

import "gorm.io/gorm"

// TaskInstance is a concrete checklist item materialized for the claimant of
// a day. Position preserves the insertion order of the source catalog or
// template set.
type TaskInstance struct {
	gorm.Model

	UserID      uint   `gorm:"not null;index:idx_user_day"`
	ApartmentID uint   `gorm:"not null;index"`
	DayOfWeek   int    `gorm:"not null;index:idx_user_day"`
	Name        string `gorm:"not null"`
	Position    int    `gorm:"not null"`
	IsDone      bool   `gorm:"not null;default:false"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Apartment Apartment `gorm:"foreignKey:ApartmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
