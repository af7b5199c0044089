// Package testutil builds the fixtures shared by the package tests: a fresh
// in-memory database with the full schema per test, plus entity helpers.
package testutil

import (
	"fmt"
	"testing"

	"github.com/choreboard-dev/choreboard/db"
	"github.com/choreboard-dev/choreboard/internal/auth"
	"github.com/choreboard-dev/choreboard/internal/models"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "password123"

// SetupTestDB opens a fresh in-memory database with the full schema and
// points the global db.DB at it so middleware and handlers see the same
// instance the test writes to.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if err := auth.Init("test-secret"); err != nil {
		t.Fatalf("Failed to init auth: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// One connection: the shared-cache memory DB is dropped when the last
	// connection closes, and a single writer sidesteps sqlite lock errors.
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("Failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = database.AutoMigrate(
		&models.User{},
		&models.Building{},
		&models.Apartment{},
		&models.ApartmentMembership{},
		&models.ScheduleSlot{},
		&models.TaskTemplate{},
		&models.TaskInstance{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db.DB = database

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return database
}

// CreateUser inserts a user with the fixture password.
func CreateUser(t *testing.T, database *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}

	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}

	return &user
}

// CreateApartment inserts a building and one apartment with the given
// capacity.
func CreateApartment(t *testing.T, database *gorm.DB, maxResidents int) *models.Apartment {
	t.Helper()

	building := models.Building{Code: "B1", Name: "Test Building"}

	if err := database.Where("code = ?", building.Code).FirstOrCreate(&building).Error; err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}

	var number int64

	if err := database.Model(&models.Apartment{}).Count(&number).Error; err != nil {
		t.Fatalf("Failed to count apartments: %v", err)
	}

	apartment := models.Apartment{
		BuildingID:      building.ID,
		Number:          int(number) + 1,
		MaxResidents:    maxResidents,
		UseDefaultTasks: true,
	}

	if err := database.Create(&apartment).Error; err != nil {
		t.Fatalf("Failed to create apartment: %v", err)
	}

	return &apartment
}
