package cron

import (
	"log"
	"time"

	"github.com/parikshasetu/api/model"
	"github.com/parikshasetu/api/utils/cache"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewCronManager creates a new cron manager. The cache is the same
// instance the HTTP layer reads through, so reconciliation sweeps can
// drop stale leaderboard pages; nil disables that invalidation.
func NewCronManager(db *gorm.DB, redisCache *cache.RedisCache) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:  c,
		db:    db,
		cache: redisCache,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Every 5 minutes: reconcile ranks for tests inside or just past
	// their window. Submissions already trigger a recompute; this sweep
	// repairs rankings missed by crashed background goroutines.
	_, err := m.cron.AddFunc("0 */5 * * * *", m.ReconcileRanks)
	if err != nil {
		return err
	}

	// 2. Every 30 minutes: clean up attempts started but never submitted
	// for tests whose window has closed
	_, err = m.cron.AddFunc("0 */30 * * * *", m.CleanupStaleAttempts)
	if err != nil {
		return err
	}

	// 3. Daily at 2 AM: cleanup old job logs
	_, err = m.cron.AddFunc("0 0 2 * * *", m.CleanupOldData)
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart records the start of a cron job and returns the log row ID.
// Completion and errors are written back to that exact row; overlapping
// runs of the same job never touch each other's logs.
func (m *CronManager) logJobStart(jobName string) uint {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: time.Now(),
	}
	m.db.Create(&cronLog)
	return cronLog.ID
}

// logJobComplete marks the job's log row as completed
func (m *CronManager) logJobComplete(logID uint, jobName string, message string) {
	log.Printf("[CRON] Completed job: %s - %s", jobName, message)

	m.db.Model(&model.CronJobLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": time.Now(),
			"message":      message,
		})
}

// logJobError marks the job's log row as failed
func (m *CronManager) logJobError(logID uint, jobName string, err error) {
	log.Printf("[CRON] Error in job: %s - %v", jobName, err)

	m.db.Model(&model.CronJobLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"status":       "failed",
			"completed_at": time.Now(),
			"error_msg":    err.Error(),
		})
}
