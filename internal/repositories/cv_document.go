package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/mock-interview/internal/models"
)

type CvDocumentRepository interface {
	Create(doc *models.CvDocument) error
	FindByID(id uuid.UUID) (*models.CvDocument, error)
	FindByCandidate(candidateID uuid.UUID) ([]models.CvDocument, error)
	UpdateIndexStatus(id uuid.UUID, status models.IndexStatus) error
	UpdateIndexResult(id uuid.UUID, status models.IndexStatus, competencySummary string) error
	FindPendingIndex(limit int) ([]models.CvDocument, error)
}

type cvDocumentRepository struct {
	db *gorm.DB
}

func NewCvDocumentRepository(db *gorm.DB) CvDocumentRepository {
	return &cvDocumentRepository{db: db}
}

// Create implements CvDocumentRepository.
func (r *cvDocumentRepository) Create(doc *models.CvDocument) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create cv document: %w", err)
	}

	return nil
}

// FindByID implements CvDocumentRepository.
func (r *cvDocumentRepository) FindByID(id uuid.UUID) (*models.CvDocument, error) {
	var doc models.CvDocument
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cv document %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find cv document: %w", err)
	}

	return &doc, nil
}

// FindByCandidate implements CvDocumentRepository.
func (r *cvDocumentRepository) FindByCandidate(candidateID uuid.UUID) ([]models.CvDocument, error) {
	var docs []models.CvDocument
	err := r.db.
		Where("candidate_id = ?", candidateID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cv documents: %w", err)
	}

	return docs, nil
}

// UpdateIndexStatus implements CvDocumentRepository.
func (r *cvDocumentRepository) UpdateIndexStatus(id uuid.UUID, status models.IndexStatus) error {
	result := r.db.Model(&models.CvDocument{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"index_status": status,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update index status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("cv document %s: %w", id, ErrNotFound)
	}

	return nil
}

// UpdateIndexResult implements CvDocumentRepository.
func (r *cvDocumentRepository) UpdateIndexResult(id uuid.UUID, status models.IndexStatus, competencySummary string) error {
	result := r.db.Model(&models.CvDocument{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"index_status":       status,
			"competency_summary": competencySummary,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update index result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("cv document %s: %w", id, ErrNotFound)
	}

	return nil
}

// FindPendingIndex implements CvDocumentRepository.
func (r *cvDocumentRepository) FindPendingIndex(limit int) ([]models.CvDocument, error) {
	var docs []models.CvDocument
	err := r.db.
		Where("index_status = ?", models.IndexQueued).
		Order("uploaded_at ASC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending cv documents: %w", err)
	}

	return docs, nil
}
