package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
	"alfredoptarigan/mock-interview/internal/services"
)

type UploadHandler struct {
	candidateRepo  repositories.CandidateRepository
	cvRepo         repositories.CvDocumentRepository
	storageService services.StorageService
	pdfParser      services.PDFParserService
	indexWorker    services.IndexWorker
	maxFileSize    int64
}

func NewUploadHandler(
	candidateRepo repositories.CandidateRepository,
	cvRepo repositories.CvDocumentRepository,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	indexWorker services.IndexWorker,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		candidateRepo:  candidateRepo,
		cvRepo:         cvRepo,
		storageService: storageService,
		pdfParser:      pdfParser,
		indexWorker:    indexWorker,
		maxFileSize:    maxFileSize,
	}
}

// HandleUploadCv handles POST /pipeline/upload-cv/:candidateId. A
// failed text extraction degrades to sentinel text rather than
// aborting the upload.
func (h *UploadHandler) HandleUploadCv(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("candidateId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	if _, err := h.candidateRepo.FindByID(candidateID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Candidate not found",
			})
		}

		log.Printf("❌ Failed to find candidate: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process CV",
		})
	}

	file, err := c.FormFile("cv")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cv file is required",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save CV file: %v", err),
		})
	}

	rawText, err := h.pdfParser.ExtractText(filePath)
	if err != nil {
		log.Printf("⚠️  CV text extraction failed, storing sentinel: %v\n", err)
		rawText = services.ExtractionFailedText
	} else {
		rawText = services.CleanText(rawText)
	}

	doc := &models.CvDocument{
		ID:          uuid.New(),
		CandidateID: candidateID,
		FileName:    file.Filename,
		FilePath:    filePath,
		RawText:     rawText,
		IndexStatus: models.IndexQueued,
		UploadedAt:  time.Now(),
	}

	if err := h.cvRepo.Create(doc); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		log.Printf("❌ Failed to save CV document record: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save CV document record",
		})
	}

	// Chunking, embedding and summary generation run in the background
	h.indexWorker.EnqueueJob(doc.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.UploadCvResponse{
		ID:          doc.ID.String(),
		CandidateID: doc.CandidateID.String(),
		FileName:    doc.FileName,
		IndexStatus: string(doc.IndexStatus),
	})
}

// HandleCvHistory handles GET /pipeline/cv-history/:candidateId
func (h *UploadHandler) HandleCvHistory(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("candidateId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	docs, err := h.cvRepo.FindByCandidate(candidateID)
	if err != nil {
		log.Printf("❌ Failed to list CV history: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list CV history",
		})
	}

	return c.JSON(docs)
}
