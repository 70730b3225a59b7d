package vectorindex_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentboard/mnemo-go/pkg/vectorindex"
)

func TestDisabledIndex(t *testing.T) {
	idx := vectorindex.Disabled()
	ctx := context.Background()

	assert.False(t, idx.Enabled())

	err := idx.Upsert(ctx, "1", []float64{0.1}, nil)
	assert.ErrorIs(t, err, vectorindex.ErrDisabled)

	_, err = idx.Query(ctx, []float64{0.1}, 5, "agent-1")
	assert.ErrorIs(t, err, vectorindex.ErrDisabled)

	assert.ErrorIs(t, idx.Delete(ctx, "1"), vectorindex.ErrDisabled)
	assert.ErrorIs(t, idx.DeleteMany(ctx, []string{"1"}), vectorindex.ErrDisabled)
	assert.ErrorIs(t, idx.DeleteAllForOwner(ctx, "agent-1"), vectorindex.ErrDisabled)

	assert.NoError(t, idx.Close())
}
