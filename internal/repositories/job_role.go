package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/mock-interview/internal/models"
)

type JobRoleRepository interface {
	Create(role *models.JobRole) error
	FindByID(id uuid.UUID) (*models.JobRole, error)
	FindAll() ([]models.JobRole, error)
}

type jobRoleRepository struct {
	db *gorm.DB
}

func NewJobRoleRepository(db *gorm.DB) JobRoleRepository {
	return &jobRoleRepository{db: db}
}

// Create implements JobRoleRepository.
func (r *jobRoleRepository) Create(role *models.JobRole) error {
	if err := r.db.Create(role).Error; err != nil {
		return fmt.Errorf("failed to create job role: %w", err)
	}

	return nil
}

// FindByID implements JobRoleRepository.
func (r *jobRoleRepository) FindByID(id uuid.UUID) (*models.JobRole, error) {
	var role models.JobRole
	if err := r.db.Where("id = ?", id).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job role %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find job role: %w", err)
	}

	return &role, nil
}

// FindAll implements JobRoleRepository.
func (r *jobRoleRepository) FindAll() ([]models.JobRole, error) {
	var roles []models.JobRole
	if err := r.db.Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list job roles: %w", err)
	}

	return roles, nil
}
