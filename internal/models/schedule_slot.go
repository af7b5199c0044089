package models

import "gorm.io/gorm"

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English weekday name for a 0-based slot day.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return "Unknown"
	}
	return dayNames[day]
}

// ScheduleSlot is one of the 7 weekly duty positions of an apartment.
// ClaimantID is NULL while the slot is free; the claim itself is done with a
// compare-and-set UPDATE so two concurrent claimants cannot both win.
type ScheduleSlot struct {
	gorm.Model

	ApartmentID uint  `gorm:"not null;uniqueIndex:idx_apartment_day"`
	DayOfWeek   int   `gorm:"not null;uniqueIndex:idx_apartment_day"` // 0 = Monday .. 6 = Sunday
	ClaimantID  *uint `gorm:"index"`

	// Relationships
	Apartment Apartment `gorm:"foreignKey:ApartmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Claimant  *User     `gorm:"foreignKey:ClaimantID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
