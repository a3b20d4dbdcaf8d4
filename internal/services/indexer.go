package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

// summaryPlaceholder is stored when the competency summary could not
// be generated. The CV chunks are already indexed at that point, so
// the document stays usable for retrieval.
const summaryPlaceholder = "Core competencies extracted."

type IndexWorker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(cvID uuid.UUID)
}

type indexWorker struct {
	cvRepo          repositories.CvDocumentRepository
	vectorStore     VectorStoreService
	geminiService   GeminiService
	promptBuilder   *PromptBuilder
	jobQueue        chan uuid.UUID
	concurrency     int
	generateTimeout time.Duration
	maxRetries      int
	wg              sync.WaitGroup
	stopChan        chan struct{}
}

func NewIndexWorker(
	cvRepo repositories.CvDocumentRepository,
	vectorStore VectorStoreService,
	geminiService GeminiService,
	concurrency int,
	generateTimeout time.Duration,
	maxRetries int,
) IndexWorker {
	return &indexWorker{
		cvRepo:          cvRepo,
		vectorStore:     vectorStore,
		geminiService:   geminiService,
		promptBuilder:   NewPromptBuilder(),
		jobQueue:        make(chan uuid.UUID, 100),
		concurrency:     concurrency,
		generateTimeout: generateTimeout,
		maxRetries:      maxRetries,
		stopChan:        make(chan struct{}),
	}
}

// Start implements IndexWorker.
func (w *indexWorker) Start(ctx context.Context) {
	log.Printf("🚀 Starting index worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// Poll for CVs that were queued before the process started or
	// whose enqueue was lost.
	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Index worker started successfully")
}

// Stop implements IndexWorker.
func (w *indexWorker) Stop() {
	log.Println("🛑 Stopping index worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Index worker stopped")
}

// EnqueueJob implements IndexWorker.
func (w *indexWorker) EnqueueJob(cvID uuid.UUID) {
	select {
	case w.jobQueue <- cvID:
		log.Printf("📥 CV %s enqueued for indexing\n", cvID)
	case <-w.stopChan:
		log.Printf("⚠️  Index worker stopped, cannot enqueue CV %s\n", cvID)
	}
}

func (w *indexWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Index worker #%d stopped\n", workerID)
			return
		case cvID := <-w.jobQueue:
			log.Printf("👷 Index worker #%d processing CV %s\n", workerID, cvID)
			if err := w.indexDocument(ctx, cvID); err != nil {
				log.Printf("❌ Index worker #%d failed to index CV %s: %v\n", workerID, cvID, err)
			} else {
				log.Printf("✅ Index worker #%d indexed CV %s\n", workerID, cvID)
			}
		}
	}
}

func (w *indexWorker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pendingDocs, err := w.cvRepo.FindPendingIndex(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending CVs: %v\n", err)
				continue
			}

			for _, doc := range pendingDocs {
				w.EnqueueJob(doc.ID)
			}
		}
	}
}

// indexDocument chunks, embeds and upserts one CV into the vector
// store, then derives its competency summary.
func (w *indexWorker) indexDocument(ctx context.Context, cvID uuid.UUID) error {
	if err := w.cvRepo.UpdateIndexStatus(cvID, models.IndexProcessing); err != nil {
		return err
	}

	doc, err := w.cvRepo.FindByID(cvID)
	if err != nil {
		return err
	}

	chunkCount, err := w.vectorStore.IndexDocument(ctx, doc.CandidateID, doc.ID, doc.RawText)
	if err != nil {
		if statusErr := w.cvRepo.UpdateIndexStatus(cvID, models.IndexFailed); statusErr != nil {
			log.Printf("⚠️  Failed to mark CV %s as failed: %v\n", cvID, statusErr)
		}
		return fmt.Errorf("failed to index cv chunks: %w", err)
	}

	log.Printf("📄 Indexed %d chunks for CV %s\n", chunkCount, cvID)

	summary := w.generateSummary(ctx, doc.RawText)

	return w.cvRepo.UpdateIndexResult(cvID, models.IndexCompleted, summary)
}

func (w *indexWorker) generateSummary(ctx context.Context, cvText string) string {
	generateCtx, cancel := context.WithTimeout(ctx, w.generateTimeout)
	defer cancel()

	summary, err := w.geminiService.GenerateWithRetry(
		generateCtx,
		w.promptBuilder.BuildSummarySystemInstruction(),
		w.promptBuilder.BuildSummaryPrompt(cvText),
		w.maxRetries,
	)
	if err != nil {
		log.Printf("⚠️  Competency summary generation failed, storing placeholder: %v\n", err)
		return summaryPlaceholder
	}

	return summary
}
