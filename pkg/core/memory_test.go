package core_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboard/mnemo-go/pkg/core"
	"github.com/agentboard/mnemo-go/pkg/storage"
	"github.com/agentboard/mnemo-go/pkg/storage/inmemory"
	"github.com/agentboard/mnemo-go/pkg/vectorindex"
)

// fakeEmbedder is a deterministic embedder.Provider for tests.
type fakeEmbedder struct {
	vector   []float64
	embedErr error
	calls    int
}

func (f *fakeEmbedder) Enabled() bool { return true }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return append([]float64(nil), f.vector...), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vector) }

func (f *fakeEmbedder) Close() error { return nil }

// fakeIndex is an in-test vectorindex.Index that records writes and
// answers queries from what was upserted.
type fakeIndex struct {
	order     []string
	owners    map[string]string
	scores    map[string]float64
	deleted   []string
	upserts   int
	queries   int
	upsertErr error
	queryErr  error
	deleteErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		owners: make(map[string]string),
		scores: make(map[string]float64),
	}
}

func (f *fakeIndex) Enabled() bool { return true }

func (f *fakeIndex) Upsert(ctx context.Context, id string, vector []float64, metadata map[string]interface{}) error {
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if _, seen := f.owners[id]; !seen {
		f.order = append(f.order, id)
	}
	owner, _ := metadata[vectorindex.MetadataOwnerKey].(string)
	f.owners[id] = owner
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float64, topK int, ownerID string) ([]vectorindex.Match, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var matches []vectorindex.Match
	for _, id := range f.order {
		if f.owners[id] != ownerID {
			continue
		}
		score, ok := f.scores[id]
		if !ok {
			score = 0.9
		}
		matches = append(matches, vectorindex.Match{ID: id, Score: score})
		if len(matches) == topK {
			break
		}
	}
	return matches, nil
}

func (f *fakeIndex) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) DeleteMany(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeIndex) DeleteAllForOwner(ctx context.Context, ownerID string) error { return nil }

func (f *fakeIndex) Close() error { return nil }

// newRelationalClient builds a client with no embedder and no index.
func newRelationalClient(t *testing.T) (*core.Client, *inmemory.Client) {
	t.Helper()

	store := inmemory.NewClient()
	client, err := core.New(store, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, store
}

// newHybridClient builds a client with a working fake embedder and index.
func newHybridClient(t *testing.T) (*core.Client, *inmemory.Client, *fakeEmbedder, *fakeIndex) {
	t.Helper()

	store := inmemory.NewClient()
	emb := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	idx := newFakeIndex()
	client, err := core.New(store, emb, idx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, store, emb, idx
}

func vectorID(t *testing.T, m *core.Memory) string {
	t.Helper()
	return strconv.FormatInt(m.ID, 10)
}

func TestClient_CreateComputesInitialHeat(t *testing.T) {
	client, _ := newRelationalClient(t)
	ctx := context.Background()

	tests := []struct {
		name            string
		content         string
		interactionType string
		want            float64
	}{
		{"short plain", "note", "", 0.5},
		{"short comment", "note", "comment", 0.6},
		{"short post", "note", "post", 0.7},
		{"medium post", strings.Repeat("m", 600), "post", 0.8},
		{"long post", strings.Repeat("l", 1200), "post", 0.9},
		{"long unknown type clamps nothing", strings.Repeat("l", 1200), "vote", 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memory, err := client.Create(ctx, "agent_heat", tt.content,
				core.WithContext(core.MemoryContext{InteractionType: tt.interactionType}))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, memory.HeatScore, 1e-9)
			assert.True(t, memory.IsActive)
			assert.Equal(t, int64(0), memory.AccessCount)
			assert.Nil(t, memory.LastAccessed)
		})
	}
}

func TestClient_CreateValidation(t *testing.T) {
	client, _ := newRelationalClient(t)
	ctx := context.Background()

	_, err := client.Create(ctx, "", "content")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = client.Create(ctx, "agent_001", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	var memErr *core.MemoryError
	require.ErrorAs(t, err, &memErr)
	assert.Equal(t, "Create", memErr.Op)
	assert.Contains(t, err.Error(), "mnemo: Create:")
}

func TestClient_CreateWithoutEmbedderStoresNilEmbedding(t *testing.T) {
	client, store := newRelationalClient(t)
	ctx := context.Background()

	memory, err := client.Create(ctx, "agent_001", "plain relational memory")
	require.NoError(t, err)
	assert.Nil(t, memory.Embedding)

	row, err := store.Get(ctx, memory.ID)
	require.NoError(t, err)
	assert.Nil(t, row.Embedding)
	assert.True(t, row.IsActive)
}

func TestClient_CreateSurvivesEmbedderFailure(t *testing.T) {
	store := inmemory.NewClient()
	emb := &fakeEmbedder{vector: []float64{1}, embedErr: errors.New("api down")}
	idx := newFakeIndex()
	client, err := core.New(store, emb, idx)
	require.NoError(t, err)

	memory, err := client.Create(context.Background(), "agent_001", "content")
	require.NoError(t, err)
	assert.Nil(t, memory.Embedding)

	// No vector reached the index, and the row is still authoritative.
	assert.Zero(t, idx.upserts)
	_, err = store.Get(context.Background(), memory.ID)
	assert.NoError(t, err)
}

func TestClient_CreateUpsertsIntoIndex(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	memory, err := client.Create(ctx, "agent_001", "indexed content",
		core.WithContext(core.MemoryContext{ForumID: "golang", InteractionType: "post"}))
	require.NoError(t, err)
	require.NotNil(t, memory.Embedding)

	require.Len(t, idx.order, 1)
	assert.Equal(t, vectorID(t, memory), idx.order[0])
	assert.Equal(t, "agent_001", idx.owners[idx.order[0]])
}

func TestClient_CreateSurvivesIndexFailure(t *testing.T) {
	store := inmemory.NewClient()
	emb := &fakeEmbedder{vector: []float64{0.5, 0.5}}
	idx := newFakeIndex()
	idx.upsertErr = errors.New("index down")
	client, err := core.New(store, emb, idx)
	require.NoError(t, err)

	memory, err := client.Create(context.Background(), "agent_001", "content")
	require.NoError(t, err)
	assert.NotNil(t, memory.Embedding)

	row, err := store.Get(context.Background(), memory.ID)
	require.NoError(t, err)
	assert.NotNil(t, row.Embedding)
}

func TestClient_SearchVectorPath(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	first, err := client.Create(ctx, "agent_001", "release feedback thread")
	require.NoError(t, err)
	second, err := client.Create(ctx, "agent_001", "unrelated memo")
	require.NoError(t, err)

	idx.scores[vectorID(t, first)] = 0.95
	idx.scores[vectorID(t, second)] = 0.60

	results, err := client.Search(ctx, "agent_001", "release feedback")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, first.ID, results[0].ID)
	assert.InDelta(t, 0.95, results[0].Score, 1e-9)
	assert.Equal(t, second.ID, results[1].ID)
	assert.InDelta(t, 0.60, results[1].Score, 1e-9)

	// Both results count as accessed.
	for _, m := range results {
		assert.Equal(t, int64(1), m.AccessCount)
		assert.NotNil(t, m.LastAccessed)
	}
}

func TestClient_SearchMinRelevanceFiltersVectorMatches(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	strong, err := client.Create(ctx, "agent_001", "strong match")
	require.NoError(t, err)
	weak, err := client.Create(ctx, "agent_001", "weak match")
	require.NoError(t, err)

	idx.scores[vectorID(t, strong)] = 0.9
	idx.scores[vectorID(t, weak)] = 0.4

	results, err := client.Search(ctx, "agent_001", "match", core.WithMinRelevance(0.7))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, strong.ID, results[0].ID)
}

func TestClient_SearchVectorPathHidesDeactivatedRows(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	kept, err := client.Create(ctx, "agent_001", "kept memory")
	require.NoError(t, err)
	dropped, err := client.Create(ctx, "agent_001", "dropped memory")
	require.NoError(t, err)

	// Simulate index divergence: the index forgets nothing.
	idx.deleteErr = errors.New("index down")
	require.NoError(t, client.Delete(ctx, dropped.ID))

	results, err := client.Search(ctx, "agent_001", "memory")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, kept.ID, results[0].ID)
}

func TestClient_SearchFallsBackWhenIndexFails(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	hot, err := client.Create(ctx, "agent_001", strings.Repeat("h", 1200),
		core.WithContext(core.MemoryContext{InteractionType: "post"}))
	require.NoError(t, err)
	cold, err := client.Create(ctx, "agent_001", "cold")
	require.NoError(t, err)

	idx.queryErr = errors.New("index down")

	results, err := client.Search(ctx, "agent_001", "anything")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Relational fallback orders by heat.
	assert.Equal(t, hot.ID, results[0].ID)
	assert.Equal(t, cold.ID, results[1].ID)
	assert.Zero(t, results[0].Score)
}

func TestClient_SearchFallsBackWhenEmbedderFails(t *testing.T) {
	store := inmemory.NewClient()
	emb := &fakeEmbedder{vector: []float64{1, 0}}
	idx := newFakeIndex()
	client, err := core.New(store, emb, idx)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Create(ctx, "agent_001", "survives provider outage")
	require.NoError(t, err)

	emb.embedErr = errors.New("api down")

	results, err := client.Search(ctx, "agent_001", "outage")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, idx.queries)
}

func TestClient_SearchEmptyQuerySkipsVectorPath(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	_, err := client.Create(ctx, "agent_001", "memory one")
	require.NoError(t, err)

	results, err := client.Search(ctx, "agent_001", "")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Zero(t, idx.queries)
}

func TestClient_SearchRelationalFilters(t *testing.T) {
	client, _ := newRelationalClient(t)
	ctx := context.Background()

	_, err := client.Create(ctx, "agent_001", "golang post",
		core.WithContext(core.MemoryContext{ForumID: "golang", InteractionType: "post"}))
	require.NoError(t, err)
	_, err = client.Create(ctx, "agent_001", "rust comment",
		core.WithContext(core.MemoryContext{ForumID: "rust", InteractionType: "comment"}))
	require.NoError(t, err)
	_, err = client.Create(ctx, "agent_002", "other owner")
	require.NoError(t, err)

	results, err := client.Search(ctx, "agent_001", "", core.WithForum("golang"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "golang post", results[0].Content)

	results, err = client.Search(ctx, "agent_001", "", core.WithInteractionType("comment"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "rust comment", results[0].Content)

	results, err = client.Search(ctx, "agent_001", "")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestClient_SearchSortByRecency(t *testing.T) {
	client, store := newRelationalClient(t)
	ctx := context.Background()

	older, err := client.Create(ctx, "agent_001", strings.Repeat("o", 1200),
		core.WithContext(core.MemoryContext{InteractionType: "post"}))
	require.NoError(t, err)
	newer, err := client.Create(ctx, "agent_001", "plain")
	require.NoError(t, err)

	// Force distinct creation instants; inserts within one test can land
	// on the same clock tick. Re-inserting overwrites the stored row.
	row, err := store.Get(ctx, older.ID)
	require.NoError(t, err)
	row.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.Insert(ctx, row))

	results, err := client.Search(ctx, "agent_001", "", core.WithSortBy(core.SortByRecency))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, newer.ID, results[0].ID)
	assert.Equal(t, older.ID, results[1].ID)

	// Heat order is independent of recency: the older memory is hotter.
	results, err = client.Search(ctx, "agent_001", "", core.WithSortBy(core.SortByHeat))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, older.ID, results[0].ID)
}

func TestClient_SearchLimit(t *testing.T) {
	client, _ := newRelationalClient(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Create(ctx, "agent_001", "memory "+strconv.Itoa(i))
		require.NoError(t, err)
	}

	results, err := client.Search(ctx, "agent_001", "", core.WithLimit(3))
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestClient_SearchValidation(t *testing.T) {
	client, _ := newRelationalClient(t)

	_, err := client.Search(context.Background(), "", "query")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestClient_GetReinforcesHeat(t *testing.T) {
	client, _ := newRelationalClient(t)
	ctx := context.Background()

	// 1200 chars of post content starts at exactly 0.9.
	created, err := client.Create(ctx, "agent_001", strings.Repeat("x", 1200),
		core.WithContext(core.MemoryContext{InteractionType: "post"}))
	require.NoError(t, err)
	require.InDelta(t, 0.9, created.HeatScore, 1e-9)

	// Repeated access follows min(h*1.1, 1.0): 0.9 -> 0.99 -> 1.0 -> 1.0.
	first, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.99, first.HeatScore, 1e-9)
	assert.Equal(t, int64(1), first.AccessCount)
	assert.NotNil(t, first.LastAccessed)

	second, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, second.HeatScore, 1e-9)
	assert.Equal(t, int64(2), second.AccessCount)

	third, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, third.HeatScore, 1e-9)
	assert.Equal(t, int64(3), third.AccessCount)
}

func TestClient_HeatStaysBounded(t *testing.T) {
	client, _ := newRelationalClient(t)
	ctx := context.Background()

	memory, err := client.Create(ctx, "agent_001", strings.Repeat("b", 600),
		core.WithContext(core.MemoryContext{InteractionType: "post"}))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		got, err := client.Get(ctx, memory.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.HeatScore, 0.0)
		assert.LessOrEqual(t, got.HeatScore, 1.0)
	}

	final, err := client.Get(ctx, memory.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, final.HeatScore, 1e-9)
	assert.Equal(t, int64(51), final.AccessCount)
}

func TestClient_GetNotFound(t *testing.T) {
	client, _ := newRelationalClient(t)

	_, err := client.Get(context.Background(), 424242)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestClient_DeleteIsRepeatableFailure(t *testing.T) {
	client, store := newRelationalClient(t)
	ctx := context.Background()

	memory, err := client.Create(ctx, "agent_001", "to be deleted")
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, memory.ID))

	_, err = client.Get(ctx, memory.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The row still exists, deactivated; a second delete fails again.
	err = client.Delete(ctx, memory.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	err = client.Delete(ctx, memory.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	stats, err := store.Stats(ctx, "agent_001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalMemories)
	assert.Equal(t, int64(0), stats.ActiveMemories)
}

func TestClient_DeleteRemovesIndexEntry(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	memory, err := client.Create(ctx, "agent_001", "indexed then deleted")
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, memory.ID))
	assert.Equal(t, []string{vectorID(t, memory)}, idx.deleted)
}

func TestClient_DeleteSurvivesIndexFailure(t *testing.T) {
	client, _, _, idx := newHybridClient(t)
	ctx := context.Background()

	memory, err := client.Create(ctx, "agent_001", "content")
	require.NoError(t, err)

	idx.deleteErr = errors.New("index down")
	assert.NoError(t, client.Delete(ctx, memory.ID))

	_, err = client.Get(ctx, memory.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// seedAged inserts a backdated row directly into storage, bypassing the
// client, the way rows look after living in the store for a while.
func seedAged(t *testing.T, store *inmemory.Client, id int64, ownerID string, ageDays int, heat float64) {
	t.Helper()

	require.NoError(t, store.Insert(context.Background(), &storage.Memory{
		ID:        id,
		OwnerID:   ownerID,
		Content:   "aged memory",
		HeatScore: heat,
		IsActive:  true,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -ageDays),
	}))
}

func TestClient_CleanupEvictsColdOldMemories(t *testing.T) {
	client, store, _, idx := newHybridClient(t)
	ctx := context.Background()

	// 100 days old with heat 0.05: evictable under {90, 0.1}.
	seedAged(t, store, 1, "agent_001", 100, 0.05)
	// Old but hot: survives.
	seedAged(t, store, 2, "agent_001", 100, 0.5)
	// Cold but young: survives.
	seedAged(t, store, 3, "agent_001", 5, 0.05)

	evicted, err := client.Cleanup(ctx, core.WithMaxAgeDays(90), core.WithMinHeatScore(0.1))
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	assert.Equal(t, []string{"1"}, idx.deleted)

	stats, err := client.Stats(ctx, "agent_001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalMemories)
	assert.Equal(t, int64(2), stats.ActiveMemories)

	// Cleanup is re-entrant: a second pass finds nothing.
	evicted, err = client.Cleanup(ctx, core.WithMaxAgeDays(90), core.WithMinHeatScore(0.1))
	require.NoError(t, err)
	assert.Zero(t, evicted)
}

func TestClient_CleanupEvictsExpiredRegardlessOfHeat(t *testing.T) {
	client, store := newRelationalClient(t)
	ctx := context.Background()

	expired := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        10,
		OwnerID:   "agent_001",
		Content:   "expired but hot",
		HeatScore: 1.0,
		ExpiresAt: &expired,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}))

	evicted, err := client.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, err = client.Get(ctx, 10)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestClient_CleanupHonorsBatchSize(t *testing.T) {
	client, store := newRelationalClient(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		seedAged(t, store, i, "agent_001", 100, 0.01)
	}

	evicted, err := client.Cleanup(ctx,
		core.WithMaxAgeDays(90),
		core.WithMinHeatScore(0.1),
		core.WithBatchSize(2))
	require.NoError(t, err)
	assert.Equal(t, 2, evicted)

	// Remaining cold rows go in later passes.
	evicted, err = client.Cleanup(ctx,
		core.WithMaxAgeDays(90),
		core.WithMinHeatScore(0.1),
		core.WithBatchSize(10))
	require.NoError(t, err)
	assert.Equal(t, 3, evicted)
}

func TestClient_CleanupNothingToDo(t *testing.T) {
	client, _ := newRelationalClient(t)

	evicted, err := client.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Zero(t, evicted)
}

func TestClient_CleanupSurvivesIndexFailure(t *testing.T) {
	client, store, _, idx := newHybridClient(t)
	ctx := context.Background()

	seedAged(t, store, 1, "agent_001", 100, 0.01)
	idx.deleteErr = errors.New("index down")

	evicted, err := client.Cleanup(ctx, core.WithMaxAgeDays(90), core.WithMinHeatScore(0.1))
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
}

func TestClient_Stats(t *testing.T) {
	client, _ := newRelationalClient(t)
	ctx := context.Background()

	_, err := client.Create(ctx, "agent_001", "post one",
		core.WithContext(core.MemoryContext{InteractionType: "post"}))
	require.NoError(t, err)
	_, err = client.Create(ctx, "agent_001", "post two",
		core.WithContext(core.MemoryContext{InteractionType: "post"}))
	require.NoError(t, err)
	deleted, err := client.Create(ctx, "agent_001", "comment",
		core.WithContext(core.MemoryContext{InteractionType: "comment"}))
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, deleted.ID))

	stats, err := client.Stats(ctx, "agent_001")
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalMemories)
	assert.Equal(t, int64(2), stats.ActiveMemories)
	assert.InDelta(t, 0.7, stats.AvgHeatScore, 1e-9)
	require.NotNil(t, stats.OldestMemory)
	require.NotNil(t, stats.NewestMemory)
	require.Len(t, stats.TopInteractionTypes, 1)
	assert.Equal(t, "post", stats.TopInteractionTypes[0].InteractionType)
	assert.Equal(t, int64(2), stats.TopInteractionTypes[0].Count)
}

func TestClient_StatsEmptyOwner(t *testing.T) {
	client, _ := newRelationalClient(t)

	stats, err := client.Stats(context.Background(), "agent_none")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMemories)
	assert.Zero(t, stats.ActiveMemories)
	assert.Zero(t, stats.AvgHeatScore)
	assert.Nil(t, stats.OldestMemory)
	assert.Nil(t, stats.NewestMemory)
	assert.Empty(t, stats.TopInteractionTypes)

	_, err = client.Stats(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := core.New(nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestClient_CreateWithTagsAndExpiry(t *testing.T) {
	client, store := newRelationalClient(t)
	ctx := context.Background()

	expiry := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	memory, err := client.Create(ctx, "agent_001", "tagged memory",
		core.WithTags("release", "feedback"),
		core.WithExpiresAt(expiry),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"release", "feedback"}, memory.Tags)
	require.NotNil(t, memory.ExpiresAt)
	assert.True(t, memory.ExpiresAt.Equal(expiry))

	row, err := store.Get(ctx, memory.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"release", "feedback"}, row.Tags)
	require.NotNil(t, row.ExpiresAt)
	assert.True(t, row.ExpiresAt.Equal(expiry))
}
