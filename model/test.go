package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TestExtractionStatus represents the status of question extraction for a test
type TestExtractionStatus string

const (
	TestExtractionPending    TestExtractionStatus = "pending"
	TestExtractionProcessing TestExtractionStatus = "processing"
	TestExtractionCompleted  TestExtractionStatus = "completed"
	TestExtractionFailed     TestExtractionStatus = "failed"
)

// BilingualQuestionCount is the fixed size of a bilingual test paper.
// The merge validator rejects any parsed set that does not cover 1..100.
const BilingualQuestionCount = 100

// MergedQuestion is one question of a finalized test with both language
// sides and a fused answer key. Stored as a JSON array on the Test record.
type MergedQuestion struct {
	Number        int           `json:"number"`
	Question      BilingualText `json:"question"`
	Options       [4]TestOption `json:"options"`
	CorrectAnswer string        `json:"correct_answer"`
	Explanation   string        `json:"explanation,omitempty"`
}

// BilingualText holds the same logical text in both scripts.
// Either side may be empty when only one language page produced it.
type BilingualText struct {
	English string `json:"english"`
	Hindi   string `json:"hindi"`
}

// TestOption is one of the four answer options. The Key slot is always
// present (A-D) even when neither language recovered the option text.
type TestOption struct {
	Key     string `json:"key"`
	English string `json:"english"`
	Hindi   string `json:"hindi"`
}

// Test represents a scheduled mock test assembled from a question paper PDF
// (and optionally a solution PDF). Immutable after creation except via the
// administrative re-parse workflow.
type Test struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title            string               `gorm:"type:varchar(255);not null" json:"title"`
	DurationMinutes  int                  `gorm:"not null" json:"duration_minutes"`
	MarksPerQuestion float64              `gorm:"default:2" json:"marks_per_question"`
	NegativeMarking  float64              `gorm:"default:0.66" json:"negative_marking"`
	TotalMarks       float64              `gorm:"default:0" json:"total_marks"`
	QuestionCount    int                  `gorm:"default:0" json:"question_count"`
	IsBilingual      bool                 `gorm:"default:false" json:"is_bilingual"`
	StartTime        time.Time            `json:"start_time"`
	EndTime          time.Time            `json:"end_time"`
	ExtractionStatus TestExtractionStatus `gorm:"type:varchar(20);default:'pending'" json:"extraction_status"`
	ExtractionError  string               `gorm:"type:text" json:"extraction_error,omitempty"`
	ExtractionMethod string               `gorm:"type:varchar(20)" json:"extraction_method,omitempty"` // direct | optical | font-recovered

	// Questions holds the ordered []MergedQuestion as JSONB
	Questions datatypes.JSON `gorm:"type:jsonb" json:"-"`

	Attempts []Attempt `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"-"`
}

// DecodeQuestions unmarshals the stored question sequence
func (t *Test) DecodeQuestions() ([]MergedQuestion, error) {
	if len(t.Questions) == 0 {
		return nil, nil
	}
	var questions []MergedQuestion
	if err := json.Unmarshal(t.Questions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// EncodeQuestions marshals the question sequence into the JSONB column
func (t *Test) EncodeQuestions(questions []MergedQuestion) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	t.Questions = datatypes.JSON(data)
	t.QuestionCount = len(questions)
	return nil
}

// IsWindowOpen reports whether the given instant falls inside the schedule window
func (t *Test) IsWindowOpen(at time.Time) bool {
	return !at.Before(t.StartTime) && !at.After(t.EndTime)
}

// ============= Response Types =============

// TestResponse is used for API responses
type TestResponse struct {
	ID               uint                     `json:"id"`
	Title            string                   `json:"title"`
	DurationMinutes  int                      `json:"duration_minutes"`
	MarksPerQuestion float64                  `json:"marks_per_question"`
	NegativeMarking  float64                  `json:"negative_marking"`
	TotalMarks       float64                  `json:"total_marks"`
	QuestionCount    int                      `json:"question_count"`
	IsBilingual      bool                     `json:"is_bilingual"`
	StartTime        time.Time                `json:"start_time"`
	EndTime          time.Time                `json:"end_time"`
	ExtractionStatus TestExtractionStatus     `json:"extraction_status"`
	ExtractionError  string                   `json:"extraction_error,omitempty"`
	Questions        []MergedQuestionResponse `json:"questions,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

// MergedQuestionResponse mirrors MergedQuestion; the answer key and
// explanation are withheld while the test window is still open.
type MergedQuestionResponse struct {
	Number        int           `json:"number"`
	Question      BilingualText `json:"question"`
	Options       [4]TestOption `json:"options"`
	CorrectAnswer string        `json:"correct_answer,omitempty"`
	Explanation   string        `json:"explanation,omitempty"`
}

// ToResponse converts a Test to its API shape. When includeAnswers is
// false the correct answers and explanations are stripped.
func (t *Test) ToResponse(includeAnswers bool) (*TestResponse, error) {
	resp := &TestResponse{
		ID:               t.ID,
		Title:            t.Title,
		DurationMinutes:  t.DurationMinutes,
		MarksPerQuestion: t.MarksPerQuestion,
		NegativeMarking:  t.NegativeMarking,
		TotalMarks:       t.TotalMarks,
		QuestionCount:    t.QuestionCount,
		IsBilingual:      t.IsBilingual,
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		ExtractionStatus: t.ExtractionStatus,
		ExtractionError:  t.ExtractionError,
		CreatedAt:        t.CreatedAt,
	}

	questions, err := t.DecodeQuestions()
	if err != nil {
		return nil, err
	}

	for _, q := range questions {
		qr := MergedQuestionResponse{
			Number:   q.Number,
			Question: q.Question,
			Options:  q.Options,
		}
		if includeAnswers {
			qr.CorrectAnswer = q.CorrectAnswer
			qr.Explanation = q.Explanation
		}
		resp.Questions = append(resp.Questions, qr)
	}

	return resp, nil
}

// TestSummary is a lightweight version for listing
type TestSummary struct {
	ID               uint                 `json:"id"`
	Title            string               `json:"title"`
	DurationMinutes  int                  `json:"duration_minutes"`
	TotalMarks       float64              `json:"total_marks"`
	QuestionCount    int                  `json:"question_count"`
	StartTime        time.Time            `json:"start_time"`
	EndTime          time.Time            `json:"end_time"`
	ExtractionStatus TestExtractionStatus `json:"extraction_status"`
}

// ToSummary converts Test to TestSummary
func (t *Test) ToSummary() TestSummary {
	return TestSummary{
		ID:               t.ID,
		Title:            t.Title,
		DurationMinutes:  t.DurationMinutes,
		TotalMarks:       t.TotalMarks,
		QuestionCount:    t.QuestionCount,
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		ExtractionStatus: t.ExtractionStatus,
	}
}
