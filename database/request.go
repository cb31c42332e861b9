package database

import (
	"database/sql"

	"github.com/parikshasetu/api/model"
)

// ExportLeaderboard streams the full ranked attempt population for a test
// through the raw connection, bypassing the ORM. Used by the admin export
// path where result sets can reach thousands of rows.
func (s *PostgreSQLStore) ExportLeaderboard(testID uint) ([]model.LeaderboardEntry, error) {
	query := `
		SELECT rank, user_id, score, accuracy, time_taken, submitted_at
		FROM attempts
		WHERE test_id = $1 AND status = 'submitted' AND deleted_at IS NULL
		ORDER BY score DESC, time_taken ASC, submitted_at ASC;
	`
	rows, err := s.db.Query(query, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		entry, err := scanIntoLeaderboardEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

// CountSubmittedAttempts returns the submitted attempt count for a test
func (s *PostgreSQLStore) CountSubmittedAttempts(testID uint) (int64, error) {
	var count int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM attempts WHERE test_id = $1 AND status = 'submitted' AND deleted_at IS NULL`,
		testID,
	).Scan(&count)
	return count, err
}

func scanIntoLeaderboardEntry(rows *sql.Rows) (*model.LeaderboardEntry, error) {
	entry := new(model.LeaderboardEntry)
	err := rows.Scan(
		&entry.Rank,
		&entry.UserID,
		&entry.Score,
		&entry.Accuracy,
		&entry.TimeTaken,
		&entry.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
