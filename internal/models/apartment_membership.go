package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleResident = "resident"
	RoleManager  = "manager"
)

// ApartmentMembership links a user to the one apartment they live in.
// The unique index on UserID enforces at most one active membership per user.
type ApartmentMembership struct {
	gorm.Model

	UserID      uint      `gorm:"not null;uniqueIndex"`
	ApartmentID uint      `gorm:"not null;index"`
	Role        string    `gorm:"not null;default:resident"`
	JoinedAt    time.Time `gorm:"not null"`

	// Relationships
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Apartment Apartment `gorm:"foreignKey:ApartmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
