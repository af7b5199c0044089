package db

import (
	"github.com/choreboard-dev/choreboard/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Building codes seeded on first boot, 96 apartments each.
var buildingCodes = []string{"C1", "C2", "R1", "R2", "R3", "R4", "R5", "R6"}

const apartmentsPerBuilding = 96

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Building{},
		&models.Apartment{},
		&models.ApartmentMembership{},
		&models.ScheduleSlot{},
		&models.TaskTemplate{},
		&models.TaskInstance{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedBuildings creates the static building and apartment reference data.
// Idempotent: a non-empty buildings table means the seed already ran.
func SeedBuildings() error {
	var count int64

	if err := DB.Model(&models.Building{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		for _, code := range buildingCodes {
			building := models.Building{Code: code, Name: code}

			if err := tx.Create(&building).Error; err != nil {
				return err
			}

			apartments := make([]models.Apartment, 0, apartmentsPerBuilding)

			for number := 1; number <= apartmentsPerBuilding; number++ {
				apartments = append(apartments, models.Apartment{
					BuildingID:      building.ID,
					Number:          number,
					MaxResidents:    4,
					UseDefaultTasks: true,
				})
			}

			if err := tx.CreateInBatches(apartments, 100).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
