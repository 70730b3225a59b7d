// Package storage provides interfaces and types for relational memory backends.
//
// It defines the Store interface that all storage implementations must satisfy,
// along with the persisted memory row type and query options. The relational
// store is the source of truth for memory visibility: reads only ever see rows
// whose is_active flag is set, and deletion only ever clears that flag.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no active memory matches the requested id.
var ErrNotFound = errors.New("memory not found")

// SortBy determines the ordering of List results.
type SortBy string

const (
	// SortByRelevance orders by similarity score. Relational backends carry
	// no score, so it degenerates to heat ordering.
	SortByRelevance SortBy = "relevance"

	// SortByHeat orders by heat score, highest first.
	SortByHeat SortBy = "heat"

	// SortByRecency orders by creation time, newest first.
	SortByRecency SortBy = "recency"
)

// MemoryContext describes the interaction a memory was formed from.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.MemoryContext structure.
type MemoryContext struct {
	// ForumID, PostID and CommentID tie the memory to the place the
	// interaction happened. All are optional.
	ForumID   string
	PostID    string
	CommentID string

	// InteractionType tags the kind of interaction (e.g. "post", "comment").
	InteractionType string

	// Timestamp is when the interaction happened.
	Timestamp time.Time
}

// Memory represents a memory row in the relational store.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.Memory structure.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// OwnerID identifies the agent that owns this memory.
	OwnerID string

	// Content is the text content of the memory.
	Content string

	// Embedding is the vector embedding for similarity search.
	// Nil when embedding generation was skipped or failed at creation time.
	Embedding []float64

	// Context describes the interaction the memory was formed from.
	Context MemoryContext

	// HeatScore is the current retention heat in [0, 1].
	HeatScore float64

	// ExpiresAt is an optional explicit expiry instant.
	ExpiresAt *time.Time

	// Tags is a set-like list of labels.
	Tags []string

	// IsActive is true until the memory is soft-deleted.
	IsActive bool

	// CreatedAt is when the memory was created.
	CreatedAt time.Time

	// LastAccessed is when the memory was last returned by a read.
	// Nil if never accessed.
	LastAccessed *time.Time

	// AccessCount is the number of reads that have returned this memory.
	AccessCount int64
}

// ListOptions contains filters and ordering for List operations.
type ListOptions struct {
	// OwnerID scopes the listing to a single owner. Required.
	OwnerID string

	// ForumID filters on the context forum when non-empty.
	ForumID string

	// PostID filters on the context post when non-empty.
	PostID string

	// InteractionType filters on the context interaction type when non-empty.
	InteractionType string

	// SortBy determines result ordering. An empty value sorts by heat.
	SortBy SortBy

	// Limit caps the number of rows returned. Zero or negative means no cap.
	Limit int
}

// EvictionOptions bounds a single eviction pass.
type EvictionOptions struct {
	// MaxAgeDays is the age beyond which low-heat memories become evictable.
	MaxAgeDays int

	// MinHeatScore is the heat below which aged memories become evictable.
	MinHeatScore float64

	// BatchSize caps how many rows one pass may select.
	BatchSize int
}

// InteractionTypeCount pairs an interaction type with its frequency.
type InteractionTypeCount struct {
	// InteractionType is the context tag being counted.
	InteractionType string

	// Count is the number of active memories carrying the tag.
	Count int64
}

// OwnerStats aggregates memory statistics for a single owner.
type OwnerStats struct {
	// TotalMemories counts every row for the owner, active or not.
	TotalMemories int64

	// ActiveMemories counts rows that have not been soft-deleted.
	ActiveMemories int64

	// AvgHeatScore is the mean heat across active rows.
	// Zero when the owner has no active rows.
	AvgHeatScore float64

	// OldestMemory is the earliest creation time across active rows.
	// Nil when the owner has no active rows.
	OldestMemory *time.Time

	// NewestMemory is the latest creation time across active rows.
	// Nil when the owner has no active rows.
	NewestMemory *time.Time

	// TopInteractionTypes holds the five most frequent interaction types
	// among active rows, most frequent first.
	TopInteractionTypes []InteractionTypeCount
}

// Store defines the interface for relational memory backends.
//
// All storage implementations (SQLite, PostgreSQL, MySQL, in-memory) must
// implement this interface.
type Store interface {
	// Insert persists a new memory row.
	Insert(ctx context.Context, memory *Memory) error

	// Get retrieves an active memory by ID.
	//
	// Returns ErrNotFound when no active row matches; soft-deleted rows are
	// indistinguishable from missing ones.
	Get(ctx context.Context, id int64) (*Memory, error)

	// List returns active memories for an owner, filtered, ordered and
	// limited per opts.
	List(ctx context.Context, opts *ListOptions) ([]*Memory, error)

	// ListByIDs returns the active memories among ids that belong to ownerID.
	// Missing or inactive ids are skipped, not errors.
	ListByIDs(ctx context.Context, ids []int64, ownerID string) ([]*Memory, error)

	// UpdateAccess records a read on the given memories: last_accessed is set
	// to now, access_count is incremented by one and heat is multiplied by
	// growthFactor, clamped to 1.0. Only active rows are touched.
	UpdateAccess(ctx context.Context, ids []int64, growthFactor float64) error

	// FindEvictable returns up to opts.BatchSize ids of active memories that
	// are past their expiry, or older than opts.MaxAgeDays with heat below
	// opts.MinHeatScore.
	FindEvictable(ctx context.Context, opts *EvictionOptions) ([]int64, error)

	// Deactivate soft-deletes the given memories and returns how many rows
	// actually flipped. Rows that were already inactive are not counted.
	Deactivate(ctx context.Context, ids []int64) (int64, error)

	// Stats aggregates memory statistics for an owner.
	Stats(ctx context.Context, ownerID string) (*OwnerStats, error)

	// Close closes the store and releases resources.
	Close() error
}
