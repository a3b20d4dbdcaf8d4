package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interview/internal/repositories"
)

type RoleHandler struct {
	roleRepo repositories.JobRoleRepository
}

func NewRoleHandler(roleRepo repositories.JobRoleRepository) *RoleHandler {
	return &RoleHandler{
		roleRepo: roleRepo,
	}
}

// HandleListRoles handles GET /pipeline/job-roles
func (h *RoleHandler) HandleListRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll()
	if err != nil {
		log.Printf("❌ Failed to list job roles: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list job roles",
		})
	}

	if len(roles) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No job roles available yet",
		})
	}

	return c.JSON(roles)
}
