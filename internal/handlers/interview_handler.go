package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
}

func NewInterviewHandler(interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
	}
}

// HandleStart handles POST /interview/start
func (h *InterviewHandler) HandleStart(c *fiber.Ctx) error {
	var req models.StartInterviewRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate_id format",
		})
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role_id format",
		})
	}

	cvID, err := uuid.Parse(req.CvID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid cv_id format",
		})
	}

	question, err := h.interviewService.StartSession(c.UserContext(), candidateID, roleID, cvID)
	if err != nil {
		return h.mapInterviewError(c, err, "Failed to start interview session")
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

// HandleAnswer handles POST /interview/answer. The response is either
// the next question view or the session-terminated marker.
func (h *InterviewHandler) HandleAnswer(c *fiber.Ctx) error {
	var req models.SubmitAnswerRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	turnID, err := uuid.Parse(req.TurnID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid turn_id format",
		})
	}

	if req.RawAnswer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "raw_answer is required",
		})
	}

	question, ended, err := h.interviewService.SubmitAnswer(
		c.UserContext(),
		turnID,
		req.RawAnswer,
		req.ResponseLatency,
		req.ForceFinal,
	)
	if err != nil {
		return h.mapInterviewError(c, err, "Failed to submit answer")
	}

	if ended != nil {
		return c.JSON(ended)
	}

	return c.JSON(question)
}

// mapInterviewError translates the orchestrator's error taxonomy into
// client responses. Validation failures surface as 404/409; systemic
// failures collapse to a generic message with no internal detail.
func (h *InterviewHandler) mapInterviewError(c *fiber.Ctx, err error, genericMessage string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resource not found",
		})
	case errors.Is(err, services.ErrSessionCompleted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Interview session already completed",
		})
	case errors.Is(err, services.ErrTurnAlreadyAnswered):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Question turn already answered",
		})
	default:
		log.Printf("❌ %s: %v\n", genericMessage, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": genericMessage,
		})
	}
}
