package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/parikshasetu/api/model"
	"gorm.io/gorm"
)

var optionKeys = [4]string{"A", "B", "C", "D"}

// fallbackAnswer is recorded when no answer key entry was recoverable for
// a question. An explicit, documented default: tests may be activated
// before a key is available and corrected later via re-parse, so a missing
// entry never blocks creation.
const fallbackAnswer = "A"

// MergeFragments groups per-page fragments by question number, pairs the
// Hindi and English sides, fuses the answer key by zero-based index and
// validates that the merged set densely covers 1..expectedCount. A missing
// language side stays empty rather than inferred.
func MergeFragments(hindi, english []QuestionFragment, key map[int]string, explanations map[int]string, expectedCount int) ([]model.MergedQuestion, error) {
	type pair struct {
		hindi   *QuestionFragment
		english *QuestionFragment
	}

	byNumber := make(map[int]*pair)
	get := func(n int) *pair {
		if p, ok := byNumber[n]; ok {
			return p
		}
		p := &pair{}
		byNumber[n] = p
		return p
	}

	for i := range hindi {
		frag := &hindi[i]
		p := get(frag.Number)
		if p.hindi == nil {
			p.hindi = frag
		}
	}
	for i := range english {
		frag := &english[i]
		p := get(frag.Number)
		if p.english == nil {
			p.english = frag
		}
	}

	numbers := make([]int, 0, len(byNumber))
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	merged := make([]model.MergedQuestion, 0, len(numbers))
	for _, n := range numbers {
		p := byNumber[n]

		q := model.MergedQuestion{Number: n}
		for i := range q.Options {
			q.Options[i].Key = optionKeys[i]
		}
		if p.hindi != nil {
			q.Question.Hindi = p.hindi.Text
			for i := range q.Options {
				q.Options[i].Hindi = p.hindi.Options[i]
			}
		}
		if p.english != nil {
			q.Question.English = p.english.Text
			for i := range q.Options {
				q.Options[i].English = p.english.Options[i]
			}
		}

		if letter, ok := key[n-1]; ok {
			q.CorrectAnswer = letter
		} else {
			q.CorrectAnswer = fallbackAnswer
		}
		if explanation, ok := explanations[n-1]; ok {
			q.Explanation = explanation
		}

		merged = append(merged, q)
	}

	// Hard precondition: a dense, contiguous 1..expectedCount sequence.
	// Anything short means pages or markers were lost upstream.
	if len(merged) != expectedCount {
		return nil, &StructuralMismatchError{Found: len(merged), Expected: expectedCount}
	}
	for i, q := range merged {
		if q.Number != i+1 {
			return nil, &StructuralMismatchError{Found: len(merged) - gapCount(merged, expectedCount), Expected: expectedCount}
		}
	}

	return merged, nil
}

// gapCount counts numbers of 1..expected missing from the merged sequence
func gapCount(merged []model.MergedQuestion, expected int) int {
	present := make(map[int]bool, len(merged))
	for _, q := range merged {
		present[q.Number] = true
	}
	gaps := 0
	for n := 1; n <= expected; n++ {
		if !present[n] {
			gaps++
		}
	}
	return gaps
}

// TestService handles ingestion of question/solution PDFs into scheduled tests
type TestService struct {
	db        *gorm.DB
	extractor *PDFExtractor
}

// NewTestService creates a new test ingestion service
func NewTestService(db *gorm.DB) *TestService {
	return &TestService{
		db:        db,
		extractor: NewPDFExtractor(NewOCRClient()),
	}
}

// CreateTestInput carries the ingestion configuration and raw documents
type CreateTestInput struct {
	Title            string
	DurationMinutes  int
	MarksPerQuestion float64
	NegativeMarking  float64
	TotalMarks       float64
	QuestionCount    int
	StartTime        time.Time
	EndTime          time.Time
	QuestionPDF      []byte
	SolutionPDF      []byte // optional
}

// CreateTestFromPDFs runs the full ingestion pipeline: extraction, script
// segmentation, question/option parsing, answer key fusion, merge and
// validation. The Test record is created up front so a failed parse leaves
// an inspectable failed record rather than nothing.
func (s *TestService) CreateTestFromPDFs(ctx context.Context, input CreateTestInput) (*model.Test, error) {
	if input.QuestionCount <= 0 {
		input.QuestionCount = model.BilingualQuestionCount
	}
	if input.NegativeMarking == 0 {
		input.NegativeMarking = 0.66
	}
	if input.MarksPerQuestion == 0 {
		input.MarksPerQuestion = 2
	}
	if input.TotalMarks == 0 {
		input.TotalMarks = input.MarksPerQuestion * float64(input.QuestionCount)
	}

	test := &model.Test{
		Title:            input.Title,
		DurationMinutes:  input.DurationMinutes,
		MarksPerQuestion: input.MarksPerQuestion,
		NegativeMarking:  input.NegativeMarking,
		TotalMarks:       input.TotalMarks,
		QuestionCount:    input.QuestionCount,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		ExtractionStatus: model.TestExtractionProcessing,
	}
	if err := s.db.WithContext(ctx).Create(test).Error; err != nil {
		return nil, fmt.Errorf("failed to create test record: %w", err)
	}

	questions, method, bilingual, err := s.parseDocuments(ctx, input)
	if err != nil {
		s.updateTestError(test, err.Error())
		return test, err
	}

	if err := test.EncodeQuestions(questions); err != nil {
		s.updateTestError(test, err.Error())
		return test, fmt.Errorf("failed to encode questions: %w", err)
	}
	test.IsBilingual = bilingual
	test.ExtractionMethod = string(method)
	test.ExtractionStatus = model.TestExtractionCompleted
	test.ExtractionError = ""

	if err := s.db.WithContext(ctx).Save(test).Error; err != nil {
		return test, fmt.Errorf("failed to save test: %w", err)
	}

	log.Printf("TestService: Created test %d with %d questions (method=%s, bilingual=%v)",
		test.ID, len(questions), method, bilingual)

	return test, nil
}

// parseDocuments extracts and parses the question paper and optional
// solution paper into a validated merged question set
func (s *TestService) parseDocuments(ctx context.Context, input CreateTestInput) ([]model.MergedQuestion, ExtractionMethod, bool, error) {
	doc, err := s.extractor.ExtractDocument(ctx, input.QuestionPDF, "question-paper.pdf")
	if err != nil {
		return nil, "", false, err
	}

	// Parse each page in each script channel. Bilingual papers carry the
	// same question once per language on different pages; monolingual
	// papers simply leave one channel empty throughout.
	var hindiFrags, englishFrags []QuestionFragment
	for _, page := range doc.Pages {
		english, hindi := SplitScripts(page)
		if english != "" {
			englishFrags = append(englishFrags, ParseQuestions(english, "english", input.QuestionCount)...)
		}
		if hindi != "" {
			hindiFrags = append(hindiFrags, ParseQuestions(hindi, "hindi", input.QuestionCount)...)
		}
	}

	bilingual := len(hindiFrags) > 0 && len(englishFrags) > 0

	key := map[int]string{}
	explanations := map[int]string{}
	if len(input.SolutionPDF) > 0 {
		solutionDoc, err := s.extractor.ExtractDocument(ctx, input.SolutionPDF, "solution-paper.pdf")
		if err != nil {
			// The answer key is correctable later; a missing one defaults
			// every answer and never blocks creation
			log.Printf("TestService: Solution document extraction failed, defaulting answer key: %v", err)
		} else {
			key = ParseAnswerKey(solutionDoc.Text, input.QuestionCount)
			explanations = ParseExplanations(solutionDoc.Text, input.QuestionCount)
			if len(key) < input.QuestionCount {
				log.Printf("TestService: Answer key incomplete (%d of %d); missing entries default to %s",
					len(key), input.QuestionCount, fallbackAnswer)
			}
		}
	}

	questions, err := MergeFragments(hindiFrags, englishFrags, key, explanations, input.QuestionCount)
	if err != nil {
		return nil, "", bilingual, err
	}

	return questions, doc.Method, bilingual, nil
}

// ReparseTest re-runs ingestion for an existing test, the administrative
// correction path for bad answer keys or parse failures
func (s *TestService) ReparseTest(ctx context.Context, testID uint, input CreateTestInput) (*model.Test, error) {
	var test model.Test
	if err := s.db.WithContext(ctx).First(&test, testID).Error; err != nil {
		return nil, fmt.Errorf("test not found: %w", err)
	}

	test.ExtractionStatus = model.TestExtractionProcessing
	s.db.WithContext(ctx).Save(&test)

	if input.QuestionCount <= 0 {
		input.QuestionCount = test.QuestionCount
	}
	if input.QuestionCount <= 0 {
		input.QuestionCount = model.BilingualQuestionCount
	}

	questions, method, bilingual, err := s.parseDocuments(ctx, input)
	if err != nil {
		s.updateTestError(&test, err.Error())
		return &test, err
	}

	if err := test.EncodeQuestions(questions); err != nil {
		s.updateTestError(&test, err.Error())
		return &test, fmt.Errorf("failed to encode questions: %w", err)
	}
	test.IsBilingual = bilingual
	test.ExtractionMethod = string(method)
	test.ExtractionStatus = model.TestExtractionCompleted
	test.ExtractionError = ""

	if err := s.db.WithContext(ctx).Save(&test).Error; err != nil {
		return &test, fmt.Errorf("failed to save reparsed test: %w", err)
	}

	log.Printf("TestService: Reparsed test %d with %d questions", test.ID, len(questions))

	return &test, nil
}

// GetTestByID retrieves a test by ID
func (s *TestService) GetTestByID(ctx context.Context, testID uint) (*model.Test, error) {
	var test model.Test
	if err := s.db.WithContext(ctx).First(&test, testID).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

// ListTests returns test summaries ordered by start time
func (s *TestService) ListTests(ctx context.Context) ([]model.TestSummary, error) {
	var tests []model.Test
	if err := s.db.WithContext(ctx).Order("start_time DESC").Find(&tests).Error; err != nil {
		return nil, err
	}
	summaries := make([]model.TestSummary, 0, len(tests))
	for _, t := range tests {
		summaries = append(summaries, t.ToSummary())
	}
	return summaries, nil
}

// updateTestError marks a test's extraction as failed
func (s *TestService) updateTestError(test *model.Test, errMsg string) {
	test.ExtractionStatus = model.TestExtractionFailed
	test.ExtractionError = errMsg
	s.db.Save(test)
}
