package test

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/parikshasetu/api/model"
	"github.com/parikshasetu/api/services"
	"github.com/parikshasetu/api/utils/pdfvalidation"
	"github.com/parikshasetu/api/utils/response"
	"github.com/parikshasetu/api/utils/validation"
	"gorm.io/gorm"
)

// maxPDFSize caps uploaded documents at 50MB per file
const maxPDFSize = 50 << 20

// TestHandler handles test ingestion and retrieval requests
type TestHandler struct {
	db          *gorm.DB
	testService *services.TestService
	scoring     *services.ScoringService
	validator   *validation.Validator
}

// NewTestHandler creates a new test handler
func NewTestHandler(db *gorm.DB, testService *services.TestService, scoring *services.ScoringService) *TestHandler {
	return &TestHandler{
		db:          db,
		testService: testService,
		scoring:     scoring,
		validator:   validation.NewValidator(),
	}
}

// ingestForm carries the multipart fields of an ingestion request
type ingestForm struct {
	Title            string  `validate:"required,min=3,max=255"`
	DurationMinutes  int     `validate:"required,gte=1,lte=600"`
	MarksPerQuestion float64 `validate:"gte=0"`
	NegativeMarking  float64 `validate:"gte=0"`
	QuestionCount    int     `validate:"gte=0,lte=300"`
	StartTime        string  `validate:"required"`
	EndTime          string  `validate:"required"`
}

// CreateTest handles POST /api/v1/tests/ingest
// Accepts a multipart form with a question paper PDF and an optional
// solution PDF, runs the extraction pipeline and returns the created test.
func (h *TestHandler) CreateTest(c *fiber.Ctx) error {
	form := ingestForm{
		Title:     validation.SanitizeString(c.FormValue("title")),
		StartTime: c.FormValue("start_time"),
		EndTime:   c.FormValue("end_time"),
	}
	form.DurationMinutes, _ = strconv.Atoi(c.FormValue("duration_minutes"))
	form.MarksPerQuestion, _ = strconv.ParseFloat(c.FormValue("marks_per_question"), 64)
	form.NegativeMarking, _ = strconv.ParseFloat(c.FormValue("negative_marking"), 64)
	form.QuestionCount, _ = strconv.Atoi(c.FormValue("question_count"))

	if err := h.validator.ValidateStruct(form); err != nil {
		return response.ValidationError(c, err)
	}

	startTime, err := time.Parse(time.RFC3339, form.StartTime)
	if err != nil {
		return response.BadRequest(c, "Invalid start_time, expected RFC3339")
	}
	endTime, err := time.Parse(time.RFC3339, form.EndTime)
	if err != nil {
		return response.BadRequest(c, "Invalid end_time, expected RFC3339")
	}
	if !endTime.After(startTime) {
		return response.BadRequest(c, "end_time must be after start_time")
	}

	questionPDF, solutionPDF, err := readDocumentPair(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	input := services.CreateTestInput{
		Title:            form.Title,
		DurationMinutes:  form.DurationMinutes,
		MarksPerQuestion: form.MarksPerQuestion,
		NegativeMarking:  form.NegativeMarking,
		QuestionCount:    form.QuestionCount,
		StartTime:        startTime,
		EndTime:          endTime,
		QuestionPDF:      questionPDF,
		SolutionPDF:      solutionPDF,
	}

	created, err := h.testService.CreateTestFromPDFs(c.Context(), input)
	if err != nil {
		var mismatch *services.StructuralMismatchError
		switch {
		case errors.As(err, &mismatch):
			return response.ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
				"Question paper structure could not be parsed", "STRUCTURAL_MISMATCH", err.Error())
		case errors.Is(err, services.ErrExtractionFailed):
			return response.UnprocessableEntity(c, err.Error(), "EXTRACTION_FAILED")
		default:
			return response.InternalServerError(c, "Failed to ingest test")
		}
	}

	resp, err := created.ToResponse(false)
	if err != nil {
		return response.InternalServerError(c, "Failed to build test response")
	}
	return response.Created(c, resp)
}

// GetTest handles GET /api/v1/tests/:id
// Correct answers and explanations are withheld while the window is open.
func (h *TestHandler) GetTest(c *fiber.Ctx) error {
	testID, err := parseTestID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid test ID")
	}

	test, err := h.testService.GetTestByID(c.Context(), testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Test not found")
		}
		return response.InternalServerError(c, "Failed to fetch test")
	}

	includeAnswers := time.Now().After(test.EndTime)
	resp, err := test.ToResponse(includeAnswers)
	if err != nil {
		return response.InternalServerError(c, "Failed to build test response")
	}
	return response.Success(c, resp)
}

// ListTests handles GET /api/v1/tests
func (h *TestHandler) ListTests(c *fiber.Ctx) error {
	summaries, err := h.testService.ListTests(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list tests")
	}
	return response.Success(c, fiber.Map{
		"tests": summaries,
		"total": len(summaries),
	})
}

// ReparseTest handles POST /api/v1/tests/:id/reparse
// Re-runs the extraction pipeline on fresh documents for an existing test,
// typically after a failed ingestion with corrected PDFs.
func (h *TestHandler) ReparseTest(c *fiber.Ctx) error {
	testID, err := parseTestID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid test ID")
	}

	questionPDF, solutionPDF, err := readDocumentPair(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	input := services.CreateTestInput{
		QuestionPDF: questionPDF,
		SolutionPDF: solutionPDF,
	}
	test, err := h.testService.ReparseTest(c.Context(), testID, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Test not found")
		}
		var mismatch *services.StructuralMismatchError
		switch {
		case errors.As(err, &mismatch):
			return response.ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
				"Question paper structure could not be parsed", "STRUCTURAL_MISMATCH", err.Error())
		case errors.Is(err, services.ErrExtractionFailed):
			return response.UnprocessableEntity(c, err.Error(), "EXTRACTION_FAILED")
		default:
			return response.InternalServerError(c, "Failed to reparse test")
		}
	}

	resp, err := test.ToResponse(false)
	if err != nil {
		return response.InternalServerError(c, "Failed to build test response")
	}
	return response.SuccessWithMessage(c, "Test reparsed successfully", resp)
}

// GetLeaderboard handles GET /api/v1/tests/:id/leaderboard
func (h *TestHandler) GetLeaderboard(c *fiber.Ctx) error {
	testID, err := parseTestID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid test ID")
	}

	var test model.Test
	if err := h.db.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Test not found")
		}
		return response.InternalServerError(c, "Failed to fetch test")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "25"))

	board, err := h.scoring.GetLeaderboard(c.Context(), testID, page, perPage)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch leaderboard")
	}
	return response.Success(c, board)
}

// parseTestID extracts and parses the :id route parameter
func parseTestID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// readDocumentPair reads the required question paper and optional solution
// paper from the multipart form and validates both structurally
func readDocumentPair(c *fiber.Ctx) (questionPDF, solutionPDF []byte, err error) {
	questionPDF, err = readUpload(c, "question_pdf")
	if err != nil {
		return nil, nil, err
	}
	if err := validatePDF(questionPDF, pdfvalidation.QuestionPaperLimits); err != nil {
		return nil, nil, err
	}

	solutionPDF, err = readOptionalUpload(c, "solution_pdf")
	if err != nil {
		return nil, nil, err
	}
	if solutionPDF != nil {
		if err := validatePDF(solutionPDF, pdfvalidation.SolutionPaperLimits); err != nil {
			return nil, nil, err
		}
	}
	return questionPDF, solutionPDF, nil
}

func validatePDF(content []byte, limits pdfvalidation.PDFLimits) error {
	result, err := pdfvalidation.ValidatePDFBytes(content, limits)
	if err != nil {
		return err
	}
	if !result.Valid {
		return errors.New(result.Error)
	}
	return nil
}

// readUpload reads a required multipart file into memory
func readUpload(c *fiber.Ctx, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, errors.New(field + " file is required")
	}
	return readFileHeader(fileHeader, field)
}

// readOptionalUpload reads an optional multipart file, returning nil when absent
func readOptionalUpload(c *fiber.Ctx, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return readFileHeader(fileHeader, field)
}

func readFileHeader(fileHeader *multipart.FileHeader, field string) ([]byte, error) {
	if fileHeader.Size > maxPDFSize {
		return nil, errors.New(field + " exceeds the 50MB upload limit")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to open " + field + " upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read " + field + " upload")
	}
	return data, nil
}
