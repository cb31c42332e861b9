package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/parikshasetu/api/model"
	"github.com/parikshasetu/api/services"
)

// ReconcileRanks recomputes rankings for every test whose window is open
// or closed within the last day. Each recompute derives a full snapshot,
// so overlapping with submission-triggered recomputes is harmless.
func (m *CronManager) ReconcileRanks() {
	logID := m.logJobStart("reconcile_ranks")
	ctx := context.Background()

	var tests []model.Test
	cutoff := time.Now().Add(-24 * time.Hour)
	err := m.db.
		Where("extraction_status = ?", model.TestExtractionCompleted).
		Where("end_time > ?", cutoff).
		Find(&tests).Error
	if err != nil {
		m.logJobError(logID, "reconcile_ranks", err)
		return
	}

	scoring := services.NewScoringService(m.db, m.cache)
	reconciled := 0
	for _, test := range tests {
		if err := scoring.RecomputeRanks(ctx, test.ID); err != nil {
			m.logJobError(logID, "reconcile_ranks", fmt.Errorf("test %d: %w", test.ID, err))
			return
		}
		reconciled++
	}

	m.logJobComplete(logID, "reconcile_ranks", fmt.Sprintf("reconciled ranks for %d tests", reconciled))
}

// CleanupStaleAttempts removes attempts that were started but never
// submitted for tests whose window closed over an hour ago. They hold the
// (user, test) uniqueness slot without contributing to any ranking.
func (m *CronManager) CleanupStaleAttempts() {
	logID := m.logJobStart("cleanup_stale_attempts")

	cutoff := time.Now().Add(-1 * time.Hour)
	result := m.db.
		Where("status = ?", model.AttemptStarted).
		Where("test_id IN (?)",
			m.db.Model(&model.Test{}).Select("id").Where("end_time < ?", cutoff),
		).
		Delete(&model.Attempt{})
	if result.Error != nil {
		m.logJobError(logID, "cleanup_stale_attempts", result.Error)
		return
	}

	m.logJobComplete(logID, "cleanup_stale_attempts", fmt.Sprintf("removed %d stale attempts", result.RowsAffected))
}

// CleanupOldData prunes job logs older than 30 days
func (m *CronManager) CleanupOldData() {
	logID := m.logJobStart("cleanup_old_data")

	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(logID, "cleanup_old_data", result.Error)
		return
	}

	m.logJobComplete(logID, "cleanup_old_data", fmt.Sprintf("removed %d old cron logs", result.RowsAffected))
}
