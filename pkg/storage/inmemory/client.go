// Package inmemory provides a map-backed implementation of the memory store.
//
// It keeps every row in process memory behind a read-write mutex and applies
// the same visibility and eviction rules as the SQL backends. It is intended
// for tests and examples, not for durable deployments.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agentboard/mnemo-go/pkg/storage"
)

// Client implements storage.Store with an in-process map.
type Client struct {
	mu       sync.RWMutex
	memories map[int64]*storage.Memory
}

// NewClient creates an empty in-memory store.
func NewClient() *Client {
	return &Client{
		memories: make(map[int64]*storage.Memory),
	}
}

// Insert persists a new memory row.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := clone(memory)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	c.memories[row.ID] = row

	return nil
}

// Get retrieves an active memory by ID.
func (c *Client) Get(ctx context.Context, id int64) (*storage.Memory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.memories[id]
	if !ok || !row.IsActive {
		return nil, storage.ErrNotFound
	}

	return clone(row), nil
}

// List returns active memories for an owner, filtered, ordered and limited
// per opts.
func (c *Client) List(ctx context.Context, opts *storage.ListOptions) ([]*storage.Memory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []*storage.Memory
	for _, row := range c.memories {
		if !row.IsActive || row.OwnerID != opts.OwnerID {
			continue
		}
		if opts.ForumID != "" && row.Context.ForumID != opts.ForumID {
			continue
		}
		if opts.PostID != "" && row.Context.PostID != opts.PostID {
			continue
		}
		if opts.InteractionType != "" && row.Context.InteractionType != opts.InteractionType {
			continue
		}
		results = append(results, clone(row))
	}

	// Relevance has no score on the relational path, so it shares the heat
	// ordering, matching the SQL backends.
	switch opts.SortBy {
	case storage.SortByRecency:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].HeatScore != results[j].HeatScore {
				return results[i].HeatScore > results[j].HeatScore
			}
			return results[i].CreatedAt.After(results[j].CreatedAt)
		})
	}

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

// ListByIDs returns the active memories among ids that belong to ownerID.
func (c *Client) ListByIDs(ctx context.Context, ids []int64, ownerID string) ([]*storage.Memory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := []*storage.Memory{}
	for _, id := range ids {
		row, ok := c.memories[id]
		if !ok || !row.IsActive || row.OwnerID != ownerID {
			continue
		}
		results = append(results, clone(row))
	}

	return results, nil
}

// UpdateAccess records a read on the given memories.
func (c *Client) UpdateAccess(ctx context.Context, ids []int64, growthFactor float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for _, id := range ids {
		row, ok := c.memories[id]
		if !ok || !row.IsActive {
			continue
		}

		accessed := now
		row.LastAccessed = &accessed
		row.AccessCount++
		row.HeatScore = row.HeatScore * growthFactor
		if row.HeatScore > 1.0 {
			row.HeatScore = 1.0
		}
	}

	return nil
}

// FindEvictable returns up to opts.BatchSize ids of active memories that are
// past their expiry, or older than opts.MaxAgeDays with heat below
// opts.MinHeatScore. Ids are returned in ascending order so batching is
// deterministic.
func (c *Client) FindEvictable(ctx context.Context, opts *storage.EvictionOptions) ([]int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	cutoff := now.AddDate(0, 0, -opts.MaxAgeDays)

	var ids []int64
	for id, row := range c.memories {
		if !row.IsActive {
			continue
		}

		expired := row.ExpiresAt != nil && !row.ExpiresAt.After(now)
		stale := !row.CreatedAt.After(cutoff) && row.HeatScore < opts.MinHeatScore
		if expired || stale {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if opts.BatchSize > 0 && len(ids) > opts.BatchSize {
		ids = ids[:opts.BatchSize]
	}

	return ids, nil
}

// Deactivate soft-deletes the given memories and returns how many rows
// actually flipped.
func (c *Client) Deactivate(ctx context.Context, ids []int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var affected int64
	for _, id := range ids {
		row, ok := c.memories[id]
		if !ok || !row.IsActive {
			continue
		}
		row.IsActive = false
		affected++
	}

	return affected, nil
}

// Stats aggregates memory statistics for an owner.
func (c *Client) Stats(ctx context.Context, ownerID string) (*storage.OwnerStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &storage.OwnerStats{}
	typeCounts := make(map[string]int64)
	var heatSum float64

	for _, row := range c.memories {
		if row.OwnerID != ownerID {
			continue
		}
		stats.TotalMemories++

		if !row.IsActive {
			continue
		}
		stats.ActiveMemories++
		heatSum += row.HeatScore

		created := row.CreatedAt
		if stats.OldestMemory == nil || created.Before(*stats.OldestMemory) {
			stats.OldestMemory = &created
		}
		if stats.NewestMemory == nil || created.After(*stats.NewestMemory) {
			stats.NewestMemory = &created
		}

		if row.Context.InteractionType != "" {
			typeCounts[row.Context.InteractionType]++
		}
	}

	if stats.ActiveMemories > 0 {
		stats.AvgHeatScore = heatSum / float64(stats.ActiveMemories)
	}

	for interactionType, count := range typeCounts {
		stats.TopInteractionTypes = append(stats.TopInteractionTypes, storage.InteractionTypeCount{
			InteractionType: interactionType,
			Count:           count,
		})
	}
	sort.SliceStable(stats.TopInteractionTypes, func(i, j int) bool {
		a, b := stats.TopInteractionTypes[i], stats.TopInteractionTypes[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.InteractionType < b.InteractionType
	})
	if len(stats.TopInteractionTypes) > 5 {
		stats.TopInteractionTypes = stats.TopInteractionTypes[:5]
	}

	return stats, nil
}

// Close releases nothing; it exists to satisfy storage.Store.
func (c *Client) Close() error {
	return nil
}

// clone copies a row so callers never alias the store's internal state.
func clone(m *storage.Memory) *storage.Memory {
	row := *m

	if m.Embedding != nil {
		row.Embedding = append([]float64(nil), m.Embedding...)
	}
	if m.Tags != nil {
		row.Tags = append([]string(nil), m.Tags...)
	}
	if m.ExpiresAt != nil {
		expiresAt := *m.ExpiresAt
		row.ExpiresAt = &expiresAt
	}
	if m.LastAccessed != nil {
		lastAccessed := *m.LastAccessed
		row.LastAccessed = &lastAccessed
	}

	return &row
}
