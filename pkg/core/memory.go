package core

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/agentboard/mnemo-go/pkg/embedder"
	openaiEmbedder "github.com/agentboard/mnemo-go/pkg/embedder/openai"
	"github.com/agentboard/mnemo-go/pkg/intelligence"
	"github.com/agentboard/mnemo-go/pkg/storage"
	mysqlStore "github.com/agentboard/mnemo-go/pkg/storage/mysql"
	postgresStore "github.com/agentboard/mnemo-go/pkg/storage/postgres"
	sqliteStore "github.com/agentboard/mnemo-go/pkg/storage/sqlite"
	"github.com/agentboard/mnemo-go/pkg/vectorindex"
	pineconeIndex "github.com/agentboard/mnemo-go/pkg/vectorindex/pinecone"
)

// Client is the main Mnemo client for agent memory management.
//
// It provides a complete interface for storing, retrieving, and managing
// memories with support for:
//   - Hybrid search (vector similarity with relational fallback)
//   - Heat-based retention (hot memories rank higher and live longer)
//   - Access tracking (reads reinforce heat)
//   - Cold-memory cleanup (expiry and age/heat eviction)
//
// The relational store is the source of truth: a memory exists and is
// visible if and only if its relational row is active. The embedder and
// vector index are best-effort collaborators and their failures never
// break creation or search.
//
// The client holds no mutable state between calls, so it is safe for
// concurrent use without any client-level locking. Concurrency control
// is delegated to the storage backend and the HTTP clients.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	memory, _ := client.Create(ctx, "agent_001", "Thread prefers short changelogs",
//	    core.WithContext(core.MemoryContext{ForumID: "golang", InteractionType: "post"}),
//	)
type Client struct {
	// config contains the client configuration (nil when built with New).
	config *Config

	// store is the authoritative relational store.
	store storage.Store

	// embedder generates embedding vectors (may be disabled).
	embedder embedder.Provider

	// index answers similarity queries (may be disabled).
	index vectorindex.Index

	// heat computes initial scores and access reinforcement.
	heat *intelligence.HeatPolicy

	// node generates unique IDs for memories.
	node *snowflake.Node

	// logger receives soft-failure diagnostics.
	logger *zap.Logger
}

// Option configures a Client created with New or NewClient.
type Option func(*Client)

// WithLogger sets the structured logger used for soft-failure diagnostics.
//
// By default the client logs nowhere (zap.NewNop()).
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	client, _ := core.New(store, emb, idx, core.WithLogger(logger))
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHeatPolicy overrides the heat policy used for initial scoring and
// access reinforcement.
//
// Example:
//
//	policy := intelligence.NewHeatPolicy(1.05)
//	client, _ := core.New(store, emb, idx, core.WithHeatPolicy(policy))
func WithHeatPolicy(policy *intelligence.HeatPolicy) Option {
	return func(c *Client) {
		c.heat = policy
	}
}

// WithNode sets the snowflake node used for ID generation.
//
// Deployments running several instances should give each one a distinct
// node so generated IDs never collide.
//
// Example:
//
//	node, _ := snowflake.NewNode(7)
//	client, _ := core.New(store, emb, idx, core.WithNode(node))
func WithNode(node *snowflake.Node) Option {
	return func(c *Client) {
		c.node = node
	}
}

// New creates a Mnemo client from explicit collaborators.
//
// A nil embedder or index is replaced with the corresponding disabled
// implementation, so callers can run relational-only by passing nil for
// both. The store is required.
//
// Parameters:
//   - store: Authoritative relational store (required)
//   - emb: Embedding provider, or nil to disable embeddings
//   - idx: Vector index, or nil to disable similarity search
//   - opts: Optional client options (WithLogger, WithHeatPolicy, WithNode)
//
// Returns a new Client instance, or an error if initialization fails.
//
// Example:
//
//	store, _ := sqlite.NewClient(&sqlite.Config{DBPath: "./memories.db"})
//	client, _ := core.New(store, nil, nil)
func New(store storage.Store, emb embedder.Provider, idx vectorindex.Index, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, NewMemoryError("New", ErrInvalidInput)
	}
	if emb == nil {
		emb = embedder.Disabled()
	}
	if idx == nil {
		idx = vectorindex.Disabled()
	}

	client := &Client{
		store:    store,
		embedder: emb,
		index:    idx,
		heat:     intelligence.NewHeatPolicy(intelligence.DefaultGrowthFactor),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger == nil {
		client.logger = zap.NewNop()
	}
	if client.heat == nil {
		client.heat = intelligence.NewHeatPolicy(intelligence.DefaultGrowthFactor)
	}
	if client.node == nil {
		node, err := snowflake.NewNode(1)
		if err != nil {
			return nil, NewMemoryError("New", err)
		}
		client.node = node
	}

	return client, nil
}

// NewClient creates a new Mnemo client from configuration.
//
// The client is initialized with:
//   - Storage backend (SQLite, PostgreSQL, or MySQL)
//   - Embedding provider (OpenAI, or disabled)
//   - Vector index (Pinecone, or disabled)
//
// Absent embedder or index configuration degrades the client to
// relational-only operation instead of failing startup.
//
// Parameters:
//   - cfg: Configuration containing storage, embedding, and index settings
//   - opts: Optional client options (WithLogger, WithHeatPolicy, WithNode)
//
// Returns a new Client instance, or an error if initialization fails.
//
// Example:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, err := core.NewClient(config)
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, NewMemoryError("NewClient", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply options early so initIndex can log through the caller's logger.
	probe := &Client{}
	for _, opt := range opts {
		opt(probe)
	}
	logger := probe.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := initStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	emb, err := initEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	idx, err := initIndex(cfg.VectorIndex, logger)
	if err != nil {
		return nil, err
	}

	client, err := New(store, emb, idx, opts...)
	if err != nil {
		return nil, err
	}
	client.config = cfg

	return client, nil
}

// Create stores a new memory for an owner.
//
// The method:
//  1. Computes the initial heat score from content length and interaction type
//  2. Attempts embedding generation (best-effort, skipped when disabled)
//  3. Persists the memory row (authoritative write)
//  4. Upserts the vector into the index (best-effort)
//
// Embedding and index failures are logged and swallowed: creation never
// fails because a best-effort collaborator did. Only validation errors
// and storage failures are returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ownerID: Owner of the memory (required)
//   - content: Memory content (required)
//   - opts: Optional parameters (Context, Tags, ExpiresAt)
//
// Returns the created Memory, or an error if validation or the
// authoritative write fails.
//
// Example:
//
//	memory, err := client.Create(ctx, "agent_001", "Maintainer asked for repro steps",
//	    core.WithContext(core.MemoryContext{
//	        ForumID:         "golang",
//	        PostID:          "p-42",
//	        InteractionType: "comment",
//	    }),
//	    core.WithTags("maintenance"),
//	)
func (c *Client) Create(ctx context.Context, ownerID, content string, opts ...CreateOption) (*Memory, error) {
	if ownerID == "" || content == "" {
		return nil, NewMemoryError("Create", ErrInvalidInput)
	}

	createOpts := applyCreateOptions(opts)

	// Check context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	memory := &Memory{
		ID:        c.node.Generate().Int64(),
		OwnerID:   ownerID,
		Content:   content,
		Context:   createOpts.Context,
		HeatScore: c.heat.InitialScore(content, createOpts.Context.InteractionType),
		ExpiresAt: createOpts.ExpiresAt,
		Tags:      createOpts.Tags,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if c.embedder.Enabled() {
		embedding, err := c.embedder.Embed(ctx, content)
		if err != nil {
			c.logger.Warn("embedding generation failed, storing memory without embedding",
				zap.Int64("memory_id", memory.ID),
				zap.Error(err))
		} else {
			memory.Embedding = embedding
		}
	}

	if err := c.store.Insert(ctx, toStorageMemory(memory)); err != nil {
		return nil, NewMemoryError("Create", err)
	}

	if c.index.Enabled() && memory.Embedding != nil {
		if err := c.index.Upsert(ctx, indexID(memory.ID), memory.Embedding, indexMetadata(memory)); err != nil {
			c.logger.Warn("vector index upsert failed",
				zap.Int64("memory_id", memory.ID),
				zap.Error(err))
		}
	}

	return memory, nil
}

// Search retrieves memories for an owner, most relevant first.
//
// When the embedder and index are both enabled and query text is
// provided, the method embeds the query, asks the index for the top
// matches scoped to the owner, drops matches below MinRelevance, and
// hydrates the survivors from the relational store (which remains the
// visibility authority: rows deactivated since indexing drop out here).
//
// Any failure on that path falls back to a relational search instead of
// propagating the error. The relational path filters active memories by
// owner and the supplied context filters, ordered by heat or recency.
//
// Every returned memory has its access recorded: last accessed time,
// access count, and reinforced heat are reflected in the results.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ownerID: Owner whose memories are searched (required)
//   - query: Query text; empty skips the vector path entirely
//   - opts: Optional parameters (Limit, MinRelevance, ForumID, PostID,
//     InteractionType, SortBy)
//
// Returns a list of memories, or an error if both paths fail.
//
// Example:
//
//	results, err := client.Search(ctx, "agent_001", "release feedback",
//	    core.WithLimit(10),
//	    core.WithMinRelevance(0.7),
//	)
func (c *Client) Search(ctx context.Context, ownerID, query string, opts ...SearchOption) ([]*Memory, error) {
	if ownerID == "" {
		return nil, NewMemoryError("Search", ErrInvalidInput)
	}

	searchOpts := applySearchOptions(opts)

	if query != "" && c.embedder.Enabled() && c.index.Enabled() {
		memories, err := c.vectorSearch(ctx, ownerID, query, searchOpts)
		if err != nil {
			c.logger.Warn("vector search failed, falling back to relational search",
				zap.String("owner_id", ownerID),
				zap.Error(err))
		} else {
			c.touchAccess(ctx, memories)
			return memories, nil
		}
	}

	memories, err := c.relationalSearch(ctx, ownerID, searchOpts)
	if err != nil {
		return nil, NewMemoryError("Search", err)
	}

	c.touchAccess(ctx, memories)
	return memories, nil
}

// vectorSearch runs the similarity path: embed, query the index scoped
// to the owner, drop low-relevance matches, hydrate from storage.
func (c *Client) vectorSearch(ctx context.Context, ownerID, query string, opts *SearchOptions) ([]*Memory, error) {
	queryEmbedding, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := c.index.Query(ctx, queryEmbedding, opts.Limit, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(matches))
	scores := make(map[int64]float64, len(matches))
	for _, match := range matches {
		if opts.MinRelevance > 0 && match.Score < opts.MinRelevance {
			continue
		}
		id, err := strconv.ParseInt(match.ID, 10, 64)
		if err != nil {
			// Not one of our ids; another writer shares the namespace.
			continue
		}
		ids = append(ids, id)
		scores[id] = match.Score
	}
	if len(ids) == 0 {
		return []*Memory{}, nil
	}

	rows, err := c.store.ListByIDs(ctx, ids, ownerID)
	if err != nil {
		return nil, err
	}

	memories := fromStorageMemories(rows)
	for _, m := range memories {
		m.Score = scores[m.ID]
	}
	sortMemories(memories, opts.SortBy)

	return memories, nil
}

// relationalSearch runs the fallback path against the relational store.
func (c *Client) relationalSearch(ctx context.Context, ownerID string, opts *SearchOptions) ([]*Memory, error) {
	rows, err := c.store.List(ctx, &storage.ListOptions{
		OwnerID:         ownerID,
		ForumID:         opts.ForumID,
		PostID:          opts.PostID,
		InteractionType: opts.InteractionType,
		SortBy:          toStorageSortBy(opts.SortBy),
		Limit:           opts.Limit,
	})
	if err != nil {
		return nil, err
	}

	return fromStorageMemories(rows), nil
}

// Get retrieves a memory by its ID.
//
// Soft-deleted memories are indistinguishable from missing ones: both
// return ErrNotFound. The read is recorded as an access, so the returned
// memory carries the updated access count and reinforced heat.
//
// Parameters:
//   - ctx: Context for cancellation
//   - id: Memory ID
//
// Returns the Memory if an active row matches, or an error otherwise.
//
// Example:
//
//	memory, err := client.Get(ctx, memoryID)
//	if errors.Is(err, core.ErrNotFound) {
//	    // deleted or never existed
//	}
func (c *Client) Get(ctx context.Context, id int64) (*Memory, error) {
	row, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, NewMemoryError("Get", err)
	}

	memory := fromStorageMemory(row)
	c.touchAccess(ctx, []*Memory{memory})

	return memory, nil
}

// Delete soft-deletes a memory by its ID.
//
// The relational row is deactivated, never removed. Deleting an already
// deleted (or never existing) memory returns ErrNotFound, and does so on
// every retry: inactive rows are never resurrected.
//
// The vector index entry is removed best-effort; an index failure is
// logged and swallowed because the deactivated relational row already
// hides the memory from every read path.
//
// Parameters:
//   - ctx: Context for cancellation
//   - id: Memory ID to delete
//
// Returns an error if no active row matches or the soft-delete fails.
//
// Example:
//
//	err := client.Delete(ctx, memoryID)
func (c *Client) Delete(ctx context.Context, id int64) error {
	count, err := c.store.Deactivate(ctx, []int64{id})
	if err != nil {
		return NewMemoryError("Delete", err)
	}
	if count == 0 {
		return NewMemoryError("Delete", ErrNotFound)
	}

	if c.index.Enabled() {
		if err := c.index.Delete(ctx, indexID(id)); err != nil {
			c.logger.Warn("vector index delete failed",
				zap.Int64("memory_id", id),
				zap.Error(err))
		}
	}

	return nil
}

// Cleanup deactivates cold and expired memories.
//
// One run selects up to BatchSize active memories that are past their
// expiry, or older than MaxAgeDays with heat below MinHeatScore, and
// soft-deletes them. The matching vector index entries are removed
// best-effort.
//
// Cleanup is safely re-entrant: each affected row transitions to
// inactive exactly once, so concurrent runs and concurrent reads may
// interleave freely. A second run over the same data finds nothing.
//
// Parameters:
//   - ctx: Context for cancellation
//   - opts: Optional parameters (MaxAgeDays, MinHeatScore, BatchSize)
//
// Returns the number of memories deactivated; 0 with no error when
// nothing matched.
//
// Example:
//
//	evicted, err := client.Cleanup(ctx,
//	    core.WithMaxAgeDays(90),
//	    core.WithMinHeatScore(0.1),
//	)
func (c *Client) Cleanup(ctx context.Context, opts ...CleanupOption) (int, error) {
	cleanupOpts := applyCleanupOptions(append(c.cleanupDefaults(), opts...))

	ids, err := c.store.FindEvictable(ctx, &storage.EvictionOptions{
		MaxAgeDays:   cleanupOpts.MaxAgeDays,
		MinHeatScore: cleanupOpts.MinHeatScore,
		BatchSize:    cleanupOpts.BatchSize,
	})
	if err != nil {
		return 0, NewMemoryError("Cleanup", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	count, err := c.store.Deactivate(ctx, ids)
	if err != nil {
		return 0, NewMemoryError("Cleanup", err)
	}

	if c.index.Enabled() {
		if err := c.index.DeleteMany(ctx, indexIDs(ids)); err != nil {
			c.logger.Warn("vector index cleanup failed",
				zap.Int("memories", len(ids)),
				zap.Error(err))
		}
	}

	c.logger.Info("cleanup evicted cold memories",
		zap.Int64("evicted", count),
		zap.Int("batch_size", cleanupOpts.BatchSize))

	return int(count), nil
}

// cleanupDefaults turns config-level cleanup settings into options so a
// bare Cleanup() call honors the deployment configuration.
func (c *Client) cleanupDefaults() []CleanupOption {
	if c.config == nil {
		return nil
	}

	var base []CleanupOption
	if c.config.Cleanup.MaxAgeDays > 0 {
		base = append(base, WithMaxAgeDays(c.config.Cleanup.MaxAgeDays))
	}
	if c.config.Cleanup.MinHeatScore > 0 {
		base = append(base, WithMinHeatScore(c.config.Cleanup.MinHeatScore))
	}
	if c.config.Cleanup.BatchSize > 0 {
		base = append(base, WithBatchSize(c.config.Cleanup.BatchSize))
	}
	return base
}

// Stats aggregates memory statistics for an owner.
//
// The aggregates cover total and active counts, the average heat score,
// oldest and newest creation times, and the five most frequent
// interaction types among active memories.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ownerID: Owner whose memories are aggregated (required)
//
// Returns the MemoryStats, or an error if aggregation fails.
//
// Example:
//
//	stats, err := client.Stats(ctx, "agent_001")
//	fmt.Printf("%d active, avg heat %.2f\n", stats.ActiveMemories, stats.AvgHeatScore)
func (c *Client) Stats(ctx context.Context, ownerID string) (*MemoryStats, error) {
	if ownerID == "" {
		return nil, NewMemoryError("Stats", ErrInvalidInput)
	}

	stats, err := c.store.Stats(ctx, ownerID)
	if err != nil {
		return nil, NewMemoryError("Stats", err)
	}

	return fromStorageStats(stats), nil
}

// Close closes the client and releases all resources.
//
// This method:
//   - Closes the storage backend
//   - Closes the embedding provider
//   - Closes the vector index
//
// Returns the first error encountered during cleanup, or nil if all
// resources were closed successfully.
//
// Example:
//
//	defer client.Close()
func (c *Client) Close() error {
	var errs []error

	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.index != nil {
		if err := c.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0] // Return the first error
	}

	return nil
}

// touchAccess records a read on the given memories and mirrors the
// storage transition into the returned copies: last accessed is set to
// now, the access count increments by one, and heat is reinforced.
//
// This is the only path that raises a memory's heat. Bookkeeping
// failures are logged, never surfaced: a read must not break because
// its access stamp could not be written. On failure the memories keep
// their stored values.
func (c *Client) touchAccess(ctx context.Context, memories []*Memory) {
	if len(memories) == 0 {
		return
	}

	ids := make([]int64, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}

	if err := c.store.UpdateAccess(ctx, ids, c.heat.GrowthFactor()); err != nil {
		c.logger.Warn("access tracking failed",
			zap.Int("memories", len(memories)),
			zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, m := range memories {
		m.LastAccessed = &now
		m.AccessCount++
		m.HeatScore = c.heat.Reinforce(m.HeatScore)
	}
}

// sortMemories orders hydrated vector-path results. Index matches come
// back in score order, but hydration does not preserve it.
func sortMemories(memories []*Memory, sortBy SortBy) {
	switch sortBy {
	case SortByHeat:
		sort.SliceStable(memories, func(i, j int) bool {
			if memories[i].HeatScore != memories[j].HeatScore {
				return memories[i].HeatScore > memories[j].HeatScore
			}
			return memories[i].CreatedAt.After(memories[j].CreatedAt)
		})
	case SortByRecency:
		sort.SliceStable(memories, func(i, j int) bool {
			return memories[i].CreatedAt.After(memories[j].CreatedAt)
		})
	default:
		sort.SliceStable(memories, func(i, j int) bool {
			return memories[i].Score > memories[j].Score
		})
	}
}

// indexID formats a memory ID for the vector index, which keys by string.
func indexID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// indexIDs formats a batch of memory IDs for the vector index.
func indexIDs(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = indexID(id)
	}
	return out
}

// indexMetadata builds the metadata stored alongside a vector. The owner
// key is what scopes index queries to a single owner.
func indexMetadata(m *Memory) map[string]interface{} {
	metadata := map[string]interface{}{
		vectorindex.MetadataOwnerKey: m.OwnerID,
	}
	if m.Context.ForumID != "" {
		metadata["forum_id"] = m.Context.ForumID
	}
	if m.Context.PostID != "" {
		metadata["post_id"] = m.Context.PostID
	}
	if m.Context.InteractionType != "" {
		metadata["interaction_type"] = m.Context.InteractionType
	}
	return metadata
}

// initStorage initializes the storage backend.
func initStorage(cfg StorageConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    configString(cfg.Config, "db_path"),
			TableName: configString(cfg.Config, "table_name"),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:      configString(cfg.Config, "host"),
			Port:      configInt(cfg.Config, "port"),
			User:      configString(cfg.Config, "user"),
			Password:  configString(cfg.Config, "password"),
			DBName:    configString(cfg.Config, "db_name"),
			TableName: configString(cfg.Config, "table_name"),
			SSLMode:   configString(cfg.Config, "ssl_mode"),
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:      configString(cfg.Config, "host"),
			Port:      configInt(cfg.Config, "port"),
			User:      configString(cfg.Config, "user"),
			Password:  configString(cfg.Config, "password"),
			DBName:    configString(cfg.Config, "db_name"),
			TableName: configString(cfg.Config, "table_name"),
		})
	default:
		return nil, NewMemoryError("initStorage", ErrInvalidConfig)
	}
}

// initEmbedder initializes the embedding provider.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	case "none":
		return embedder.Disabled(), nil
	default:
		return nil, NewMemoryError("initEmbedder", ErrInvalidConfig)
	}
}

// initIndex initializes the vector index.
func initIndex(cfg VectorIndexConfig, logger *zap.Logger) (vectorindex.Index, error) {
	switch cfg.Provider {
	case "pinecone":
		return pineconeIndex.NewClient(pineconeIndex.Config{
			APIKey:     cfg.APIKey,
			Index:      cfg.Index,
			BaseURL:    cfg.BaseURL,
			Namespace:  cfg.Namespace,
			Dimensions: cfg.Dimensions,
		}, logger)
	case "none":
		return vectorindex.Disabled(), nil
	default:
		return nil, NewMemoryError("initIndex", ErrInvalidConfig)
	}
}

// configString reads a string value from a provider config map.
func configString(config map[string]interface{}, key string) string {
	if config == nil {
		return ""
	}
	if value, ok := config[key].(string); ok {
		return value
	}
	return ""
}

// configInt reads an integer value from a provider config map. JSON
// decoding produces float64 numbers, so both forms are accepted.
func configInt(config map[string]interface{}, key string) int {
	if config == nil {
		return 0
	}
	switch value := config[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	}
	return 0
}
