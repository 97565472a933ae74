// Package testutil opens a migrated, seeded sqlite database per test.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"trackii-backend/internal/config"
	"trackii-backend/internal/database"
	"trackii-backend/internal/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const JWTSecret = "trackii-test-secret-0123456789abcdef"

// FixturePath returns the path of a file under testutil/testdata.
func FixturePath(name string) string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "testdata", name)
}

// SetupTestDB returns an empty, migrated database in t.TempDir().
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseDSN:    filepath.Join(t.TempDir(), "trackii.db") + "?_pragma=busy_timeout(5000)",
		JWTSecret:      JWTSecret,
	}
	db, err := database.Open(cfg, zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// SetupPlantDB returns a database seeded with testdata/plant.yaml.
func SetupPlantDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := SetupTestDB(t)

	data, err := database.LoadSeedFile(FixturePath("plant.yaml"))
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}
	if err := database.Seed(db, data); err != nil {
		t.Fatalf("Failed to seed fixture: %v", err)
	}
	return db
}

// UserID looks up a seeded user by username.
func UserID(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()
	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		t.Fatalf("user %s not seeded: %v", username, err)
	}
	return u.ID
}

// DeviceID looks up a seeded device by uid.
func DeviceID(t *testing.T, db *gorm.DB, uid string) uint {
	t.Helper()
	var d models.Device
	if err := db.Where("device_uid = ?", uid).First(&d).Error; err != nil {
		t.Fatalf("device %s not seeded: %v", uid, err)
	}
	return d.ID
}

// ErrorCodeID looks up a seeded error code.
func ErrorCodeID(t *testing.T, db *gorm.DB, code string) uint {
	t.Helper()
	var ec models.ErrorCode
	if err := db.Where("code = ?", code).First(&ec).Error; err != nil {
		t.Fatalf("error code %s not seeded: %v", code, err)
	}
	return ec.ID
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
