// Package ai provides the embedding service used to vectorize job
// descriptions and CV documents before similarity retrieval.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// chunkRuneLimit bounds one embedding input. Provider context windows hold
// roughly 8k tokens; 6000 runes keeps a margin for dense CJK text.
const chunkRuneLimit = 6000

// EmbeddingService is the vector embedding service interface.
type EmbeddingService interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int
}

type embeddingService struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewEmbeddingService creates an EmbeddingService for any OpenAI-compatible
// provider (siliconflow, openai, ollama, dashscope, ...).
func NewEmbeddingService(cfg *EmbeddingConfig) (EmbeddingService, error) {
	if cfg.Model == "" {
		return nil, errors.New("embedding model required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &embeddingService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("empty embedding result")
	}
	return vectors[0], nil
}

func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func (s *embeddingService) Dimensions() int {
	return s.dimensions
}

// SplitChunks splits text into chunks of at most limit runes, breaking on
// whitespace. A single word longer than the limit stays in one chunk.
func SplitChunks(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(text) {
		runes := len([]rune(word))
		if count > 0 && count+1+runes > limit {
			chunks = append(chunks, b.String())
			b.Reset()
			count = 0
		}
		if count > 0 {
			b.WriteByte(' ')
			count++
		}
		b.WriteString(word)
		count += runes
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// EmbedDocumentChunks chunks a document and embeds each chunk, preserving
// chunk order.
func EmbedDocumentChunks(ctx context.Context, svc EmbeddingService, text string) ([][]float32, error) {
	chunks := SplitChunks(text, chunkRuneLimit)
	if len(chunks) == 0 {
		return nil, errors.New("empty document text")
	}
	return svc.EmbedBatch(ctx, chunks)
}

// EmbedDocument embeds a document of arbitrary length as one query vector.
// Short texts go through a single call; long ones are chunked and the chunk
// vectors averaged.
func EmbedDocument(ctx context.Context, svc EmbeddingService, text string) ([]float32, error) {
	vectors, err := EmbedDocumentChunks(ctx, svc, text)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 1 {
		return vectors[0], nil
	}
	avg := AverageEmbeddings(vectors)
	if avg == nil {
		return nil, errors.New("inconsistent embedding dimensions across chunks")
	}
	return avg, nil
}

// AverageEmbeddings collapses per-chunk embeddings of one document into a
// single query vector. Chunks must share a dimension; mismatched or empty
// input returns nil.
func AverageEmbeddings(embeddings [][]float32) []float32 {
	if len(embeddings) == 0 {
		return nil
	}

	dim := len(embeddings[0])
	avg := make([]float32, dim)
	for _, embedding := range embeddings {
		if len(embedding) != dim {
			return nil
		}
		for i, v := range embedding {
			avg[i] += v
		}
	}

	n := float32(len(embeddings))
	for i := range avg {
		avg[i] /= n
	}
	return avg
}
