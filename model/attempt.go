package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttemptStatus tracks the lifecycle of a participant's attempt
type AttemptStatus string

const (
	AttemptStarted   AttemptStatus = "started"
	AttemptSubmitted AttemptStatus = "submitted"
)

// Attempt is one participant's run at a test. A (user, test) pair is
// unique; submission is terminal and a second submit is rejected.
// Rank is recomputed asynchronously after each submission, so readers may
// observe a rank derived from a smaller, earlier attempt population.
type Attempt struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PublicID  string         `gorm:"type:varchar(36);uniqueIndex" json:"public_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// uniqueness of (user_id, test_id) is a partial index created in
	// database.InitConstraints so soft-deleted attempts don't block retries
	UserID uint `gorm:"not null;index" json:"user_id"`
	TestID uint `gorm:"not null;index" json:"test_id"`

	// Answers is a sparse map of question number -> chosen letter, JSONB
	Answers datatypes.JSON `gorm:"type:jsonb" json:"-"`

	Status       AttemptStatus `gorm:"type:varchar(20);default:'started'" json:"status"`
	Score        float64       `gorm:"default:0" json:"score"`
	CorrectCount int           `gorm:"default:0" json:"correct_count"`
	WrongCount   int           `gorm:"default:0" json:"wrong_count"`
	SkippedCount int           `gorm:"default:0" json:"skipped_count"`
	Accuracy     float64       `gorm:"default:0" json:"accuracy"`
	TimeTaken    int           `gorm:"default:0" json:"time_taken"` // seconds
	Rank         int           `gorm:"default:0;index" json:"rank"`
	StartedAt    time.Time     `json:"started_at"`
	SubmittedAt  *time.Time    `json:"submitted_at,omitempty"`

	Test Test `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns the public identifier
func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.PublicID == "" {
		a.PublicID = uuid.NewString()
	}
	return nil
}

// DecodeAnswers unmarshals the stored answer map (question number -> letter).
// JSON object keys are strings; they are converted back to ints here.
func (a *Attempt) DecodeAnswers() (map[int]string, error) {
	answers := make(map[int]string)
	if len(a.Answers) == 0 {
		return answers, nil
	}
	var raw map[string]string
	if err := json.Unmarshal(a.Answers, &raw); err != nil {
		return nil, err
	}
	for k, v := range raw {
		num, err := strconv.Atoi(k)
		if err != nil {
			continue // untrusted participant input, skip malformed keys
		}
		answers[num] = v
	}
	return answers, nil
}

// EncodeAnswers marshals the answer map into the JSONB column
func (a *Attempt) EncodeAnswers(answers map[int]string) error {
	raw := make(map[string]string, len(answers))
	for k, v := range answers {
		raw[strconv.Itoa(k)] = v
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	a.Answers = datatypes.JSON(data)
	return nil
}

// ============= Response Types =============

// AttemptResultResponse is returned on submission and result queries
type AttemptResultResponse struct {
	PublicID     string        `json:"public_id"`
	TestID       uint          `json:"test_id"`
	Status       AttemptStatus `json:"status"`
	Score        float64       `json:"score"`
	CorrectCount int           `json:"correct_count"`
	WrongCount   int           `json:"wrong_count"`
	SkippedCount int           `json:"skipped_count"`
	Accuracy     float64       `json:"accuracy"`
	TimeTaken    int           `json:"time_taken"`
	Rank         int           `json:"rank"`
	TopScore     float64       `json:"top_score"`
	TotalMarks   float64       `json:"total_marks"`
	SubmittedAt  *time.Time    `json:"submitted_at,omitempty"`
}

// ToResult converts an Attempt to its API shape
func (a *Attempt) ToResult(topScore, totalMarks float64) *AttemptResultResponse {
	return &AttemptResultResponse{
		PublicID:     a.PublicID,
		TestID:       a.TestID,
		Status:       a.Status,
		Score:        a.Score,
		CorrectCount: a.CorrectCount,
		WrongCount:   a.WrongCount,
		SkippedCount: a.SkippedCount,
		Accuracy:     a.Accuracy,
		TimeTaken:    a.TimeTaken,
		Rank:         a.Rank,
		TopScore:     topScore,
		TotalMarks:   totalMarks,
		SubmittedAt:  a.SubmittedAt,
	}
}

// LeaderboardEntry is one row of a test leaderboard
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uint      `json:"user_id"`
	Score       float64   `json:"score"`
	Accuracy    float64   `json:"accuracy"`
	TimeTaken   int       `json:"time_taken"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// LeaderboardResponse is the paginated leaderboard payload
type LeaderboardResponse struct {
	TestID   uint               `json:"test_id"`
	Total    int64              `json:"total"`
	TopScore float64            `json:"top_score"`
	Entries  []LeaderboardEntry `json:"entries"`
}
