package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateContent(ctx context.Context, systemInstruction, userPrompt string) (string, error)
	GenerateWithRetry(ctx context.Context, systemInstruction, userPrompt string, maxRetries int) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

// Interview questions should not feel scripted, so generation runs
// with mild sampling variability. Scoring correctness relies on the
// evaluator's JSON contract, not on determinism.
const generationTemperature float32 = 0.7

func NewGeminiService(apiKey string) (GeminiService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrGatewayFailure)
	}

	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  "gemini-2.5-flash",
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate embedding: %v", ErrGatewayFailure, err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", ErrGatewayFailure)
	}

	return result.Embeddings[0].Values, nil
}

// GenerateContent implements GeminiService. The system instruction
// pins the model persona; the user prompt carries the task. Failures
// collapse to ErrGatewayFailure so callers can never mistake an error
// payload for model output.
func (g *geminiService) GenerateContent(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	temperature := generationTemperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrGatewayFailure)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrGatewayFailure)
	}

	return text, nil
}

// GenerateWithRetry implements GeminiService. Retries are bounded and
// apply to gateway failures only; a malformed payload is detected
// above this layer and never re-sent.
func (g *geminiService) GenerateWithRetry(ctx context.Context, systemInstruction, userPrompt string, maxRetries int) (string, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateContent(ctx, systemInstruction, userPrompt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: context cancelled: %v", ErrGatewayFailure, ctx.Err())
		default:
		}

		if attempt < maxRetries {
			fmt.Printf("⚠️ Attempt %d failed: %v. Retrying...\n", attempt, err)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
