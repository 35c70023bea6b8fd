package ai

import (
	"context"
	"fmt"
	"strings"
)

// SplitIntoChunks splits text on whitespace into chunks of at most maxWords words.
// Chunks are re-joined with single spaces. Blank text yields no chunks.
func SplitIntoChunks(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxWords < 1 {
		maxWords = DefaultMaxWords
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for i := 0; i < len(words); i += maxWords {
		end := min(i+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// ChunkingEmbedder embeds texts longer than the word budget by splitting them
// into chunks and averaging the chunk embeddings.
type ChunkingEmbedder struct {
	embedder Embedder
	maxWords int
}

var _ Embedder = (*ChunkingEmbedder)(nil)

// NewChunkingEmbedder wraps embedder with word-budget chunking.
// A maxWords below 1 uses DefaultMaxWords.
func NewChunkingEmbedder(embedder Embedder, maxWords int) (*ChunkingEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if maxWords < 1 {
		maxWords = DefaultMaxWords
	}
	return &ChunkingEmbedder{embedder: embedder, maxWords: maxWords}, nil
}

// EmbedText embeds text, chunking it when it exceeds the word budget.
func (c *ChunkingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	chunks := SplitIntoChunks(text, c.maxWords)
	if len(chunks) <= 1 {
		return c.embedder.EmbedText(ctx, text)
	}

	vectors, err := c.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(chunks), len(vectors))
	}
	return MeanVector(vectors)
}

// EmbedTexts embeds all texts with a single call to the wrapped embedder.
func (c *ChunkingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var (
		inputs []string
		owners []int
		split  bool
	)
	for i, text := range texts {
		chunks := SplitIntoChunks(text, c.maxWords)
		if len(chunks) <= 1 {
			inputs = append(inputs, text)
			owners = append(owners, i)
			continue
		}
		split = true
		for _, chunk := range chunks {
			inputs = append(inputs, chunk)
			owners = append(owners, i)
		}
	}

	vectors, err := c.embedder.EmbedTexts(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(inputs), len(vectors))
	}
	if !split {
		return vectors, nil
	}

	grouped := make([][][]float32, len(texts))
	for i, vector := range vectors {
		grouped[owners[i]] = append(grouped[owners[i]], vector)
	}

	out := make([][]float32, len(texts))
	for i, group := range grouped {
		mean, err := MeanVector(group)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = mean
	}
	return out, nil
}

// MeanVector returns the element-wise mean of equal-length vectors.
func MeanVector(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("chunk %d has dimension %d, expected %d", i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += float64(x)
		}
	}

	mean := make([]float32, dim)
	n := float64(len(vectors))
	for j := range sum {
		mean[j] = float32(sum[j] / n)
	}
	return mean, nil
}
