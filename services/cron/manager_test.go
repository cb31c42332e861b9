package cron

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/parikshasetu/api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openCronTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run.")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&model.CronJobLog{}); err != nil {
		t.Fatalf("failed to migrate cron job logs: %v", err)
	}
	return db
}

// The completion update must land on the row created at job start; an
// update that Postgres rejects (or that matches another run's row) leaves
// the log stuck in "running" forever.
func TestJobLogLifecycle(t *testing.T) {
	db := openCronTestDB(t)
	m := NewCronManager(db, nil)

	t.Run("completed", func(t *testing.T) {
		logID := m.logJobStart("lifecycle_test")
		if logID == 0 {
			t.Fatal("expected a persisted log row")
		}
		t.Cleanup(func() { db.Unscoped().Delete(&model.CronJobLog{}, logID) })

		m.logJobComplete(logID, "lifecycle_test", "done")

		var entry model.CronJobLog
		if err := db.First(&entry, logID).Error; err != nil {
			t.Fatalf("failed to reload log row: %v", err)
		}
		if entry.Status != "completed" {
			t.Errorf("expected status completed, got %q", entry.Status)
		}
		if entry.CompletedAt == nil {
			t.Error("expected CompletedAt to be set")
		}
		if entry.Message != "done" {
			t.Errorf("expected message %q, got %q", "done", entry.Message)
		}
	})

	t.Run("failed", func(t *testing.T) {
		logID := m.logJobStart("lifecycle_test")
		t.Cleanup(func() { db.Unscoped().Delete(&model.CronJobLog{}, logID) })

		m.logJobError(logID, "lifecycle_test", errors.New("boom"))

		var entry model.CronJobLog
		if err := db.First(&entry, logID).Error; err != nil {
			t.Fatalf("failed to reload log row: %v", err)
		}
		if entry.Status != "failed" {
			t.Errorf("expected status failed, got %q", entry.Status)
		}
		if entry.ErrorMsg != "boom" {
			t.Errorf("expected error message %q, got %q", "boom", entry.ErrorMsg)
		}
	})

	t.Run("overlapping runs keep separate rows", func(t *testing.T) {
		first := m.logJobStart("lifecycle_test")
		second := m.logJobStart("lifecycle_test")
		t.Cleanup(func() {
			db.Unscoped().Delete(&model.CronJobLog{}, []uint{first, second})
		})

		m.logJobComplete(second, "lifecycle_test", "second done")

		var entry model.CronJobLog
		if err := db.First(&entry, first).Error; err != nil {
			t.Fatalf("failed to reload first log row: %v", err)
		}
		if entry.Status != "running" {
			t.Errorf("first run's row was touched: status %q", entry.Status)
		}
	})
}
