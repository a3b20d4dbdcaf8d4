package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

type UserHandler struct {
	candidateRepo repositories.CandidateRepository
}

func NewUserHandler(candidateRepo repositories.CandidateRepository) *UserHandler {
	return &UserHandler{
		candidateRepo: candidateRepo,
	}
}

// HandleRegister handles POST /users/register
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "a valid email is required",
		})
	}

	if req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "password is required",
		})
	}

	// Reject duplicate registrations up front
	if _, err := h.candidateRepo.FindByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already registered",
		})
	} else if !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("❌ Failed to check candidate email: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register candidate",
		})
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register candidate",
		})
	}

	candidate := &models.Candidate{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Phone:        req.Phone,
		RegisteredAt: time.Now(),
	}

	if err := h.candidateRepo.Create(candidate); err != nil {
		log.Printf("❌ Failed to create candidate: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register candidate",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.RegisterResponse{
		ID:           candidate.ID.String(),
		Name:         candidate.Name,
		Email:        candidate.Email,
		RegisteredAt: candidate.RegisteredAt,
	})
}
