package attempt

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/parikshasetu/api/services"
	"github.com/parikshasetu/api/utils/response"
	"github.com/parikshasetu/api/utils/validation"
	"gorm.io/gorm"
)

// AttemptHandler handles attempt lifecycle requests
type AttemptHandler struct {
	scoring   *services.ScoringService
	validator *validation.Validator
}

// NewAttemptHandler creates a new attempt handler
func NewAttemptHandler(scoring *services.ScoringService) *AttemptHandler {
	return &AttemptHandler{
		scoring:   scoring,
		validator: validation.NewValidator(),
	}
}

// submitRequest is the JSON body of a submission. Answer keys are question
// numbers as strings, values are option letters.
type submitRequest struct {
	Answers   map[string]string `json:"answers" validate:"required"`
	TimeTaken int               `json:"time_taken" validate:"gte=0"`
}

// StartAttempt handles POST /api/v1/tests/:id/start
func (h *AttemptHandler) StartAttempt(c *fiber.Ctx) error {
	testID, err := parseTestID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid test ID")
	}
	userID, err := requireUserID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	started, err := h.scoring.StartAttempt(c.Context(), userID, testID)
	if err != nil {
		return h.mapAttemptError(c, err)
	}
	return response.Success(c, fiber.Map{
		"attempt_id": started.PublicID,
		"test_id":    started.TestID,
		"status":     started.Status,
		"started_at": started.StartedAt,
	})
}

// SubmitAttempt handles POST /api/v1/tests/:id/submit
// A repeat submission returns the original result with a conflict status.
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	testID, err := parseTestID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid test ID")
	}
	userID, err := requireUserID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	answers := make(map[int]string, len(req.Answers))
	for numberStr, letter := range req.Answers {
		number, convErr := strconv.Atoi(numberStr)
		if convErr != nil || number < 1 {
			return response.BadRequest(c, "Answer keys must be positive question numbers")
		}
		answers[number] = letter
	}

	result, err := h.scoring.SubmitAttempt(c.Context(), userID, testID, answers, req.TimeTaken)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateSubmission) {
			return c.Status(fiber.StatusConflict).JSON(response.Response{
				Success: false,
				Message: "Attempt already submitted",
				Data:    result,
				Error: &response.ErrorDetail{
					Code:    "DUPLICATE_SUBMISSION",
					Message: err.Error(),
				},
			})
		}
		return h.mapAttemptError(c, err)
	}
	return response.Success(c, result)
}

// GetMyResult handles GET /api/v1/tests/:id/attempts/me
func (h *AttemptHandler) GetMyResult(c *fiber.Ctx) error {
	testID, err := parseTestID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid test ID")
	}
	userID, err := requireUserID(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.scoring.GetAttemptResult(c.Context(), userID, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "No attempt found for this test")
		}
		return response.InternalServerError(c, "Failed to fetch attempt result")
	}
	return response.Success(c, result)
}

// mapAttemptError translates service errors into HTTP responses
func (h *AttemptHandler) mapAttemptError(c *fiber.Ctx, err error) error {
	var window *services.WindowViolationError
	if errors.As(err, &window) {
		return response.Forbidden(c, err.Error())
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "Test not found")
	}
	return response.InternalServerError(c, "Failed to process attempt")
}

// requireUserID reads the participant identity from the X-User-ID header.
// Authentication proper is handled upstream; this service trusts the
// gateway-injected identity.
func requireUserID(c *fiber.Ctx) (uint, error) {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return 0, errors.New("X-User-ID header is required")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("X-User-ID must be a positive integer")
	}
	return uint(id), nil
}

// parseTestID extracts and parses the :id route parameter
func parseTestID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
