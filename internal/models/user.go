package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Username       string `gorm:"uniqueIndex;not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	TotalCleanings int    `gorm:"not null;default:0"`

	// Relationships
	Membership    *ApartmentMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ClaimedSlots  []ScheduleSlot       `gorm:"foreignKey:ClaimantID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	TaskInstances []TaskInstance       `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
