package database

import (
	"log"
)

// attemptConstraints are invariants the pipeline relies on but which live
// outside GORM's migration scope: one live attempt per (user, test), and
// the index the rank recompute streams over. Partial on deleted_at so a
// soft-deleted attempt does not block a fresh one.
const attemptConstraints = `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attempt_user_test
		ON attempts (user_id, test_id)
		WHERE deleted_at IS NULL;

	CREATE INDEX IF NOT EXISTS idx_attempts_ranking
		ON attempts (test_id, score DESC, time_taken ASC, submitted_at ASC)
		WHERE status = 'submitted';
`

func (s *PostgreSQLStore) Initialize() error {
	log.Println("Initializing PostgreSQL Database.", "Applying constraints")
	if err := s.InitConstraints(); err != nil {
		return err
	}
	return nil
}

// InitConstraints applies the attempt constraints over the raw connection
func (s *PostgreSQLStore) InitConstraints() error {
	_, err := s.db.Exec(attemptConstraints)
	return err
}

// InitConstraints applies the attempt constraints through GORM. Called
// after AutoMigrate on the server startup path.
func (s *GORMStore) InitConstraints() error {
	return s.db.Exec(attemptConstraints).Error
}
