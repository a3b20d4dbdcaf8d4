package services

import "strings"

type TextChunker interface {
	ChunkText(text string, windowSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. The text is split into overlapping
// word-count windows so local context survives chunk boundaries; each
// window is embedded and indexed independently.
func (tc *textChunker) ChunkText(text string, windowSize int, overlap int) []string {
	if windowSize <= 0 {
		windowSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= windowSize {
		overlap = windowSize / 4
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	step := windowSize - overlap

	for i := 0; i < len(words); i += step {
		end := i + windowSize
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, strings.Join(words[i:end], " "))

		if end == len(words) {
			break
		}
	}

	return chunks
}
