package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// NoContextSentinel is returned by QueryContext when no chunk matches.
// An empty result set is a normal outcome, never an error.
const NoContextSentinel = "No relevant CV context found."

// contextSeparator joins retrieved chunks in similarity-descending
// order with a separator the prompt templates can show to the model.
const contextSeparator = "\n---\n"

const (
	chunkWindowSize = 500
	chunkOverlap    = 50
)

type VectorStoreService interface {
	InitCollection() error
	IndexDocument(ctx context.Context, candidateID, cvID uuid.UUID, text string) (int, error)
	QueryContext(ctx context.Context, candidateID uuid.UUID, queryText string, topK int) (string, error)
}

type vectorStoreService struct {
	client         *qdrant.Client
	geminiService  GeminiService
	chunker        TextChunker
	collectionName string
	vectorSize     uint64
}

func NewVectorStoreService(urlStr, apiKey, collectionName string, geminiService GeminiService) (VectorStoreService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &vectorStoreService{
		client:         client,
		geminiService:  geminiService,
		chunker:        NewTextChunker(),
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 dimension
	}, nil
}

// InitCollection implements VectorStoreService.
func (v *vectorStoreService) InitCollection() error {
	ctx := context.Background()

	exists, err := v.client.CollectionExists(ctx, v.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = v.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: v.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     v.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", v.collectionName)
	return nil
}

// IndexDocument implements VectorStoreService. The CV text is split
// into overlapping word windows, each chunk embedded independently and
// upserted with candidate/cv metadata. Writes are append-only: a
// re-upload adds chunks for the new document, nothing is replaced.
func (v *vectorStoreService) IndexDocument(ctx context.Context, candidateID, cvID uuid.UUID, text string) (int, error) {
	chunks := v.chunker.ChunkText(text, chunkWindowSize, chunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))

	for _, chunk := range chunks {
		embedding, err := v.geminiService.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk: %w", err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      newChunkPointID(),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"candidate_id": candidateID.String(),
				"cv_id":        cvID.String(),
				"text":         chunk,
			}),
		})
	}

	_, err := v.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: v.collectionName,
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert chunks: %w", err)
	}

	return len(points), nil
}

// QueryContext implements VectorStoreService. The similarity search is
// always restricted to the candidate's own chunks; cross-candidate
// leakage would be a correctness violation, not just a quality issue.
func (v *vectorStoreService) QueryContext(ctx context.Context, candidateID uuid.UUID, queryText string, topK int) (string, error) {
	embedding, err := v.geminiService.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("candidate_id", candidateID.String()),
		},
	}

	searchResult, err := v.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: v.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to search: %w", err)
	}

	var chunks []string
	for _, point := range searchResult {
		if value, ok := point.Payload["text"]; ok {
			if text, ok := value.GetKind().(*qdrant.Value_StringValue); ok {
				chunks = append(chunks, text.StringValue)
			}
		}
	}

	return FormatRetrievedContext(chunks), nil
}

// newChunkPointID assigns a fresh full-width UUID to an indexed chunk.
// A numeric ID derived from a truncated UUID would collide long before
// the store fills up, and Upsert silently overwrites on collision.
func newChunkPointID() *qdrant.PointId {
	return qdrant.NewID(uuid.NewString())
}

// FormatRetrievedContext joins retrieved chunks for prompt injection,
// falling back to the sentinel when nothing matched.
func FormatRetrievedContext(chunks []string) string {
	var parts []string
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			parts = append(parts, chunk)
		}
	}

	if len(parts) == 0 {
		return NoContextSentinel
	}

	return strings.Join(parts, contextSeparator)
}
