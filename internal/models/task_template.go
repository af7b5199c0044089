package models

import "gorm.io/gorm"

// TaskTemplate is a manager-authored task description. Templates are kept
// when the apartment switches back to default tasks; they just stop feeding
// materialization until custom mode is re-enabled.
type TaskTemplate struct {
	gorm.Model

	ApartmentID uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string

	// Relationships
	Apartment Apartment `gorm:"foreignKey:ApartmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
