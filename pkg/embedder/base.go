// Package embedder provides interfaces for text embedding providers.
//
// It defines the Provider interface that all embedding implementations must
// satisfy, enabling text-to-vector conversion for similarity search, plus the
// cosine similarity function used to compare the resulting vectors. A
// deployment without an embedding provider uses Disabled(), which degrades
// the memory subsystem to relational-only search instead of failing it.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for embedding operations.
var (
	// ErrDisabled is returned by Embed and EmbedBatch when the provider is
	// not configured. Orchestration code checks Enabled() first, so this
	// error only surfaces through direct calls.
	ErrDisabled = errors.New("embedding provider not configured")

	// ErrDimensionMismatch is returned by CosineSimilarity when the two
	// vectors have different lengths.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Provider defines the interface for embedding providers.
//
// All embedding implementations must satisfy this interface.
type Provider interface {
	// Enabled reports whether the provider is configured and usable.
	//
	// This is a pure capability check: it performs no I/O and must be safe
	// to call on every request.
	Enabled() bool

	// Embed converts a text string into a vector embedding.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - text: The input text to embed
	//
	// Returns the embedding vector and any error. A disabled provider
	// returns ErrDisabled.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch converts multiple text strings into vector embeddings.
	//
	// This method is more efficient than calling Embed multiple times,
	// as it can batch process requests.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - texts: Slice of input texts to embed
	//
	// Returns a slice of embedding vectors in input order and any error.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the dimension of vectors produced by this provider.
	//
	// The dimension is fixed per deployment (e.g. 1536); every stored
	// embedding is consistent with it.
	Dimensions() int

	// Close closes the provider and releases resources.
	Close() error
}

// CosineSimilarity calculates the cosine similarity between two vectors.
//
// The result is in [-1, 1], where 1 means identical direction. CosineSimilarity
// is a pure function and performs no I/O.
//
// Parameters:
//   - a, b: Vectors of equal length.
//
// Returns the similarity, or ErrDimensionMismatch when the lengths differ.
// Zero vectors yield a similarity of 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity: %w (len %d vs %d)", ErrDimensionMismatch, len(a), len(b))
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Disabled returns the null Provider used when no embedding configuration is
// present. Enabled() reports false and every operation returns ErrDisabled.
func Disabled() Provider {
	return disabledProvider{}
}

type disabledProvider struct{}

func (disabledProvider) Enabled() bool { return false }

func (disabledProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, ErrDisabled
}

func (disabledProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return nil, ErrDisabled
}

func (disabledProvider) Dimensions() int { return 0 }

func (disabledProvider) Close() error { return nil }
