package models

import "gorm.io/gorm"

type Apartment struct {
	gorm.Model

	BuildingID      uint `gorm:"not null;index"`
	Number          int  `gorm:"not null"`
	MaxResidents    int  `gorm:"not null;default:4"`
	UseDefaultTasks bool `gorm:"not null;default:true"`

	// Relationships
	Building      Building              `gorm:"foreignKey:BuildingID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Memberships   []ApartmentMembership `gorm:"foreignKey:ApartmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ScheduleSlots []ScheduleSlot        `gorm:"foreignKey:ApartmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	TaskTemplates []TaskTemplate        `gorm:"foreignKey:ApartmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
