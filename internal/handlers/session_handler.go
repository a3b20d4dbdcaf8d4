package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/repositories"
)

type SessionHandler struct {
	interviewRepo repositories.InterviewRepository
}

func NewSessionHandler(interviewRepo repositories.InterviewRepository) *SessionHandler {
	return &SessionHandler{
		interviewRepo: interviewRepo,
	}
}

// HandleSessionHistory handles GET /interview/sessions/:candidateId.
// Returns each session with its turns, metrics and feedback for the
// dashboard/report view.
func (h *SessionHandler) HandleSessionHistory(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("candidateId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	sessions, err := h.interviewRepo.FindSessionsByCandidate(candidateID)
	if err != nil {
		log.Printf("❌ Failed to list interview sessions: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list interview sessions",
		})
	}

	return c.JSON(sessions)
}
