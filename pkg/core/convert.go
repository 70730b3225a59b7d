package core

import (
	"github.com/agentboard/mnemo-go/pkg/storage"
)

// toStorageMemory converts a core.Memory to storage.Memory.
//
// This function is used internally to convert between package types
// to avoid circular dependencies.
func toStorageMemory(m *Memory) *storage.Memory {
	return &storage.Memory{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Content:   m.Content,
		Embedding: m.Embedding,
		Context: storage.MemoryContext{
			ForumID:         m.Context.ForumID,
			PostID:          m.Context.PostID,
			CommentID:       m.Context.CommentID,
			InteractionType: m.Context.InteractionType,
			Timestamp:       m.Context.Timestamp,
		},
		HeatScore:    m.HeatScore,
		ExpiresAt:    m.ExpiresAt,
		Tags:         m.Tags,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		LastAccessed: m.LastAccessed,
		AccessCount:  m.AccessCount,
	}
}

// fromStorageMemory converts a storage.Memory to core.Memory.
//
// This function is used internally to convert between package types
// to avoid circular dependencies.
func fromStorageMemory(m *storage.Memory) *Memory {
	return &Memory{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Content:   m.Content,
		Embedding: m.Embedding,
		Context: MemoryContext{
			ForumID:         m.Context.ForumID,
			PostID:          m.Context.PostID,
			CommentID:       m.Context.CommentID,
			InteractionType: m.Context.InteractionType,
			Timestamp:       m.Context.Timestamp,
		},
		HeatScore:    m.HeatScore,
		ExpiresAt:    m.ExpiresAt,
		Tags:         m.Tags,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		LastAccessed: m.LastAccessed,
		AccessCount:  m.AccessCount,
	}
}

// fromStorageMemories converts a slice of storage.Memory to a slice of core.Memory.
//
// This function is used internally for batch conversion between package types.
func fromStorageMemories(memories []*storage.Memory) []*Memory {
	result := make([]*Memory, len(memories))
	for i, m := range memories {
		result[i] = fromStorageMemory(m)
	}
	return result
}

// toStorageSortBy converts a core.SortBy to storage.SortBy.
func toStorageSortBy(s SortBy) storage.SortBy {
	switch s {
	case SortByHeat:
		return storage.SortByHeat
	case SortByRecency:
		return storage.SortByRecency
	default:
		return storage.SortByRelevance
	}
}

// fromStorageStats converts a storage.OwnerStats to core.MemoryStats.
func fromStorageStats(s *storage.OwnerStats) *MemoryStats {
	stats := &MemoryStats{
		TotalMemories:  s.TotalMemories,
		ActiveMemories: s.ActiveMemories,
		AvgHeatScore:   s.AvgHeatScore,
		OldestMemory:   s.OldestMemory,
		NewestMemory:   s.NewestMemory,
	}
	for _, tc := range s.TopInteractionTypes {
		stats.TopInteractionTypes = append(stats.TopInteractionTypes, InteractionTypeCount{
			InteractionType: tc.InteractionType,
			Count:           tc.Count,
		})
	}
	return stats
}
