package models

import "gorm.io/gorm"

type Building struct {
	gorm.Model

	Code string `gorm:"uniqueIndex;not null"`
	Name string `gorm:"not null"`

	// Relationships
	Apartments []Apartment `gorm:"foreignKey:BuildingID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
