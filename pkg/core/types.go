// Package core provides the main Mnemo client and memory management functionality.
package core

import "time"

// Memory represents a single memory stored in the system.
//
// A memory contains:
//   - Content: The text content of the memory
//   - Embedding: Vector representation for similarity search
//   - Context: Where the memory originated (forum, post, comment, interaction)
//   - HeatScore: Current heat (0.0-1.0) driving retention and ranking
//
// Example:
//
//	memory := &core.Memory{
//	    ID:      1234567890,
//	    OwnerID: "agent_001",
//	    Content: "Thread participants prefer concise changelogs",
//	    Context: core.MemoryContext{
//	        ForumID:         "golang",
//	        InteractionType: "post",
//	    },
//	}
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64 `json:"id"`

	// OwnerID identifies the agent that owns this memory.
	OwnerID string `json:"owner_id"`

	// Content is the text content of the memory.
	Content string `json:"content"`

	// Embedding is the vector embedding for similarity search.
	// Nil when no embedding provider was configured at creation time.
	// Omitted from JSON to reduce payload size.
	Embedding []float64 `json:"embedding,omitempty"`

	// Context describes where the memory originated.
	Context MemoryContext `json:"context"`

	// HeatScore is the current heat of the memory (0.0-1.0).
	// Hot memories rank higher in search and survive cleanup longer.
	HeatScore float64 `json:"heat_score"`

	// ExpiresAt is the optional hard expiry of the memory.
	// Expired memories are deactivated by Cleanup regardless of heat.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Tags are free-form labels attached to the memory.
	Tags []string `json:"tags,omitempty"`

	// IsActive reports whether the memory is live. Deleted and evicted
	// memories stay in storage with IsActive=false.
	IsActive bool `json:"is_active"`

	// CreatedAt is when the memory was created.
	CreatedAt time.Time `json:"created_at"`

	// LastAccessed is when the memory was last returned by a search or
	// lookup (nil if never accessed).
	LastAccessed *time.Time `json:"last_accessed,omitempty"`

	// AccessCount is the number of times the memory has been accessed.
	AccessCount int64 `json:"access_count"`

	// Score is the similarity score from search operations (0.0-1.0).
	// Higher scores indicate better matches. Only populated on the
	// vector search path; zero on relational fallback.
	Score float64 `json:"score,omitempty"`
}

// MemoryContext describes the situation a memory was formed in.
//
// All fields are optional. Context fields are queryable: searches can
// filter by forum, post, and interaction type.
type MemoryContext struct {
	// ForumID is the forum or community the memory relates to.
	ForumID string `json:"forum_id,omitempty"`

	// PostID is the post the memory relates to.
	PostID string `json:"post_id,omitempty"`

	// CommentID is the comment the memory relates to.
	CommentID string `json:"comment_id,omitempty"`

	// InteractionType is the kind of interaction that produced the
	// memory, e.g. "post", "comment", "vote".
	InteractionType string `json:"interaction_type,omitempty"`

	// Timestamp is when the interaction happened (zero if unknown).
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// SortBy defines the ordering of search results.
//
// Orderings:
//   - SortByRelevance: vector similarity score (default)
//   - SortByHeat: heat score, hottest first
//   - SortByRecency: creation time, newest first
//
// On the relational fallback path there are no similarity scores, so
// SortByRelevance degenerates to heat ordering.
type SortBy string

const (
	// SortByRelevance orders results by vector similarity score.
	SortByRelevance SortBy = "relevance"

	// SortByHeat orders results by heat score, hottest first.
	SortByHeat SortBy = "heat"

	// SortByRecency orders results by creation time, newest first.
	SortByRecency SortBy = "recency"
)

// MemoryStats summarizes the memory population of a single owner.
type MemoryStats struct {
	// TotalMemories is the count of all memories, active or not.
	TotalMemories int64 `json:"total_memories"`

	// ActiveMemories is the count of active memories.
	ActiveMemories int64 `json:"active_memories"`

	// AvgHeatScore is the mean heat score across active memories.
	// Zero when the owner has no active memories.
	AvgHeatScore float64 `json:"avg_heat_score"`

	// OldestMemory is the creation time of the oldest active memory
	// (nil if the owner has no active memories).
	OldestMemory *time.Time `json:"oldest_memory,omitempty"`

	// NewestMemory is the creation time of the newest active memory
	// (nil if the owner has no active memories).
	NewestMemory *time.Time `json:"newest_memory,omitempty"`

	// TopInteractionTypes lists the most frequent interaction types
	// among active memories, at most five, most frequent first.
	TopInteractionTypes []InteractionTypeCount `json:"top_interaction_types,omitempty"`
}

// InteractionTypeCount pairs an interaction type with its frequency.
type InteractionTypeCount struct {
	// InteractionType is the interaction type label.
	InteractionType string `json:"interaction_type"`

	// Count is the number of active memories with this type.
	Count int64 `json:"count"`
}
