// Command ingest runs the PDF ingestion pipeline against a local pair of
// documents without going through the HTTP surface. Useful for trying a
// new paper layout before scheduling it.
//
// Usage:
//
//	go run ./cmd/ingest -question paper.pdf -solution key.pdf -title "Mock Test 12"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/parikshasetu/api/config"
	"github.com/parikshasetu/api/database"
	"github.com/parikshasetu/api/services"
	"gorm.io/gorm"
)

func main() {
	questionPath := flag.String("question", "", "path to the question paper PDF (required)")
	solutionPath := flag.String("solution", "", "path to the solution paper PDF (optional)")
	title := flag.String("title", "Ingest Trial", "test title")
	duration := flag.Int("duration", 120, "test duration in minutes")
	questionCount := flag.Int("questions", 100, "expected question count")
	flag.Parse()

	if *questionPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*questionPath, *solutionPath, *title, *duration, *questionCount); err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}
}

func run(questionPath, solutionPath, title string, duration, questionCount int) error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	store, err := database.StartGORM()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return errors.New("failed to get GORM DB instance")
	}

	questionPDF, err := os.ReadFile(questionPath)
	if err != nil {
		return fmt.Errorf("failed to read question paper: %w", err)
	}

	var solutionPDF []byte
	if solutionPath != "" {
		solutionPDF, err = os.ReadFile(solutionPath)
		if err != nil {
			return fmt.Errorf("failed to read solution paper: %w", err)
		}
	}

	testService := services.NewTestService(db)

	// trial windows open immediately and run for a day
	now := time.Now()
	input := services.CreateTestInput{
		Title:           title,
		DurationMinutes: duration,
		QuestionCount:   questionCount,
		StartTime:       now,
		EndTime:         now.Add(24 * time.Hour),
		QuestionPDF:     questionPDF,
		SolutionPDF:     solutionPDF,
	}

	test, err := testService.CreateTestFromPDFs(context.Background(), input)
	if err != nil {
		if test != nil {
			log.Printf("Test record %d saved with status %s: %s", test.ID, test.ExtractionStatus, test.ExtractionError)
		}
		return err
	}

	questions, err := test.DecodeQuestions()
	if err != nil {
		return err
	}

	log.Printf("Created test %d: %q", test.ID, test.Title)
	log.Printf("  questions: %d, bilingual: %v, method: %s", len(questions), test.IsBilingual, test.ExtractionMethod)
	for _, q := range questions[:min(3, len(questions))] {
		log.Printf("  Q%d [%s] EN: %.60q HI: %.60q", q.Number, q.CorrectAnswer, q.Question.English, q.Question.Hindi)
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
