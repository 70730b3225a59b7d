package core

import "time"

// Default values applied when an option is not provided.
const (
	// DefaultSearchLimit is the maximum number of search results
	// when WithLimit is not provided.
	DefaultSearchLimit = 10

	// DefaultCleanupMaxAgeDays is the age threshold for cold-memory
	// eviction when WithMaxAgeDays is not provided.
	DefaultCleanupMaxAgeDays = 30

	// DefaultCleanupMinHeatScore is the heat threshold for cold-memory
	// eviction when WithMinHeatScore is not provided. Memories older
	// than the age threshold survive cleanup if their heat is at or
	// above this value.
	DefaultCleanupMinHeatScore = 0.3

	// DefaultCleanupBatchSize is the maximum number of memories a
	// single cleanup run deactivates when WithBatchSize is not provided.
	DefaultCleanupBatchSize = 100
)

// CreateOption is a function type for configuring Create operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type CreateOption func(*CreateOptions)

// CreateOptions contains configuration options for Create operations.
type CreateOptions struct {
	// Context describes where the memory originated.
	Context MemoryContext

	// Tags are free-form labels attached to the memory.
	Tags []string

	// ExpiresAt is the optional hard expiry of the memory.
	// Nil means the memory never expires on its own.
	ExpiresAt *time.Time
}

// WithContext sets the origin context for Create operations.
//
// The interaction type recorded here also feeds the initial heat
// heuristic: "post" interactions start hotter than "comment" ones.
//
// Example:
//
//	memory, _ := client.Create(ctx, "agent_001", "content",
//	    core.WithContext(core.MemoryContext{
//	        ForumID:         "golang",
//	        PostID:          "p-42",
//	        InteractionType: "post",
//	    }),
//	)
func WithContext(mc MemoryContext) CreateOption {
	return func(opts *CreateOptions) {
		opts.Context = mc
	}
}

// WithTags attaches tags to the memory for Create operations.
//
// Example:
//
//	memory, _ := client.Create(ctx, "agent_001", "content",
//	    core.WithTags("release", "feedback"),
//	)
func WithTags(tags ...string) CreateOption {
	return func(opts *CreateOptions) {
		opts.Tags = tags
	}
}

// WithExpiresAt sets a hard expiry for Create operations.
//
// Expired memories are deactivated by Cleanup regardless of heat.
//
// Example:
//
//	memory, _ := client.Create(ctx, "agent_001", "content",
//	    core.WithExpiresAt(time.Now().Add(72*time.Hour)),
//	)
func WithExpiresAt(t time.Time) CreateOption {
	return func(opts *CreateOptions) {
		opts.ExpiresAt = &t
	}
}

// WithTTL sets a hard expiry relative to now for Create operations.
//
// Example:
//
//	memory, _ := client.Create(ctx, "agent_001", "content",
//	    core.WithTTL(72*time.Hour),
//	)
func WithTTL(d time.Duration) CreateOption {
	return func(opts *CreateOptions) {
		t := time.Now().Add(d)
		opts.ExpiresAt = &t
	}
}

// SearchOption is a function type for configuring Search operations.
type SearchOption func(*SearchOptions)

// SearchOptions contains configuration options for Search operations.
type SearchOptions struct {
	// Limit sets the maximum number of results to return.
	// Default: 10
	Limit int

	// MinRelevance sets the minimum similarity score for results.
	// Only applied on the vector search path; the relational fallback
	// has no similarity scores to compare against.
	// Default: 0.0 (no minimum)
	MinRelevance float64

	// ForumID filters results to a specific forum.
	ForumID string

	// PostID filters results to a specific post.
	PostID string

	// InteractionType filters results to a specific interaction type.
	InteractionType string

	// SortBy sets the ordering of results.
	// Default: SortByRelevance
	SortBy SortBy
}

// WithLimit sets the maximum number of results for Search operations.
//
// Example:
//
//	results, _ := client.Search(ctx, "agent_001", "query", core.WithLimit(20))
func WithLimit(limit int) SearchOption {
	return func(opts *SearchOptions) {
		opts.Limit = limit
	}
}

// WithMinRelevance sets the minimum similarity score for Search results.
//
// Only results with similarity scores >= minRelevance are returned on
// the vector search path. Typical range: 0.0-1.0, where 1.0 is identical.
//
// Example:
//
//	results, _ := client.Search(ctx, "agent_001", "query", core.WithMinRelevance(0.7))
func WithMinRelevance(score float64) SearchOption {
	return func(opts *SearchOptions) {
		opts.MinRelevance = score
	}
}

// WithForum filters Search results to a specific forum.
//
// Example:
//
//	results, _ := client.Search(ctx, "agent_001", "query", core.WithForum("golang"))
func WithForum(forumID string) SearchOption {
	return func(opts *SearchOptions) {
		opts.ForumID = forumID
	}
}

// WithPost filters Search results to a specific post.
//
// Example:
//
//	results, _ := client.Search(ctx, "agent_001", "query", core.WithPost("p-42"))
func WithPost(postID string) SearchOption {
	return func(opts *SearchOptions) {
		opts.PostID = postID
	}
}

// WithInteractionType filters Search results to a specific interaction type.
//
// Example:
//
//	results, _ := client.Search(ctx, "agent_001", "query", core.WithInteractionType("post"))
func WithInteractionType(interactionType string) SearchOption {
	return func(opts *SearchOptions) {
		opts.InteractionType = interactionType
	}
}

// WithSortBy sets the ordering of Search results.
//
// Example:
//
//	results, _ := client.Search(ctx, "agent_001", "query", core.WithSortBy(core.SortByHeat))
func WithSortBy(sortBy SortBy) SearchOption {
	return func(opts *SearchOptions) {
		opts.SortBy = sortBy
	}
}

// CleanupOption is a function type for configuring Cleanup operations.
type CleanupOption func(*CleanupOptions)

// CleanupOptions contains configuration options for Cleanup operations.
type CleanupOptions struct {
	// MaxAgeDays is the age threshold in days for cold-memory eviction.
	// Memories created more than MaxAgeDays ago are evicted when their
	// heat is below MinHeatScore.
	// Default: 30
	MaxAgeDays int

	// MinHeatScore is the heat threshold for cold-memory eviction.
	// Old memories with heat >= MinHeatScore survive cleanup.
	// Default: 0.3
	MinHeatScore float64

	// BatchSize is the maximum number of memories a single cleanup run
	// deactivates.
	// Default: 100
	BatchSize int
}

// WithMaxAgeDays sets the age threshold for Cleanup operations.
//
// Example:
//
//	evicted, _ := client.Cleanup(ctx, core.WithMaxAgeDays(90))
func WithMaxAgeDays(days int) CleanupOption {
	return func(opts *CleanupOptions) {
		opts.MaxAgeDays = days
	}
}

// WithMinHeatScore sets the heat threshold for Cleanup operations.
//
// Example:
//
//	evicted, _ := client.Cleanup(ctx, core.WithMinHeatScore(0.1))
func WithMinHeatScore(score float64) CleanupOption {
	return func(opts *CleanupOptions) {
		opts.MinHeatScore = score
	}
}

// WithBatchSize caps the number of memories one Cleanup run deactivates.
//
// Example:
//
//	evicted, _ := client.Cleanup(ctx, core.WithBatchSize(500))
func WithBatchSize(size int) CleanupOption {
	return func(opts *CleanupOptions) {
		opts.BatchSize = size
	}
}

// applyCreateOptions applies Create options to create CreateOptions.
func applyCreateOptions(opts []CreateOption) *CreateOptions {
	options := &CreateOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applySearchOptions applies Search options to create SearchOptions.
func applySearchOptions(opts []SearchOption) *SearchOptions {
	options := &SearchOptions{
		Limit:        DefaultSearchLimit,
		MinRelevance: 0.0,
		SortBy:       SortByRelevance,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Limit <= 0 {
		options.Limit = DefaultSearchLimit
	}
	if options.SortBy == "" {
		options.SortBy = SortByRelevance
	}
	return options
}

// applyCleanupOptions applies Cleanup options to create CleanupOptions.
func applyCleanupOptions(opts []CleanupOption) *CleanupOptions {
	options := &CleanupOptions{
		MaxAgeDays:   DefaultCleanupMaxAgeDays,
		MinHeatScore: DefaultCleanupMinHeatScore,
		BatchSize:    DefaultCleanupBatchSize,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.MaxAgeDays <= 0 {
		options.MaxAgeDays = DefaultCleanupMaxAgeDays
	}
	if options.BatchSize <= 0 {
		options.BatchSize = DefaultCleanupBatchSize
	}
	return options
}
