package embedder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboard/mnemo-go/pkg/embedder"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 0, 0}, b: []float64{1, 0, 0}, want: 1.0},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0.0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1.0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := embedder.CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := embedder.CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, embedder.ErrDimensionMismatch)
}

func TestDisabledProvider(t *testing.T) {
	p := embedder.Disabled()
	ctx := context.Background()

	assert.False(t, p.Enabled())
	assert.Equal(t, 0, p.Dimensions())

	_, err := p.Embed(ctx, "hello")
	assert.ErrorIs(t, err, embedder.ErrDisabled)

	_, err = p.EmbedBatch(ctx, []string{"hello"})
	assert.ErrorIs(t, err, embedder.ErrDisabled)

	assert.NoError(t, p.Close())
}
