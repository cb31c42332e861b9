// Command export dumps the full ranked leaderboard of a test as CSV on
// stdout. It goes through the raw SQL store rather than the ORM: result
// sets can reach thousands of rows and need neither model hooks nor
// soft-delete scoping beyond the query itself.
//
// Usage:
//
//	go run ./cmd/export -test 42 > leaderboard.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/parikshasetu/api/config"
	"github.com/parikshasetu/api/database"
)

func main() {
	testID := flag.Uint("test", 0, "test ID to export (required)")
	flag.Parse()

	if *testID == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(uint(*testID)); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
}

func run(testID uint) error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	store, err := database.StartPostgreSQL()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer store.Close()

	total, err := store.CountSubmittedAttempts(testID)
	if err != nil {
		return fmt.Errorf("failed to count attempts: %w", err)
	}
	log.Printf("Exporting %d submitted attempts for test %d", total, testID)

	entries, err := store.ExportLeaderboard(testID)
	if err != nil {
		return fmt.Errorf("failed to export leaderboard: %w", err)
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.Write([]string{"rank", "user_id", "score", "accuracy", "time_taken_seconds", "submitted_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			fmt.Sprintf("%d", e.Rank),
			fmt.Sprintf("%d", e.UserID),
			fmt.Sprintf("%.2f", e.Score),
			fmt.Sprintf("%.2f", e.Accuracy),
			fmt.Sprintf("%d", e.TimeTaken),
			e.SubmittedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
