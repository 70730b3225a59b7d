// Package postgres provides the PostgreSQL implementation of the memory store.
//
// Embeddings and tags are stored as JSONB; interaction context fields are
// plain columns so that filtering and statistics run in SQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/agentboard/mnemo-go/pkg/storage"
)

// Client implements storage.Store using PostgreSQL as the backend.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains PostgreSQL configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
	SSLMode   string
}

// NewClient creates a new PostgreSQL memory store client.
func NewClient(cfg *Config) (*Client, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	if cfg.TableName == "" {
		cfg.TableName = "memories"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	client := &Client{
		db:        db,
		tableName: cfg.TableName,
	}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			embedding JSONB,
			forum_id VARCHAR(255) NOT NULL DEFAULT '',
			post_id VARCHAR(255) NOT NULL DEFAULT '',
			comment_id VARCHAR(255) NOT NULL DEFAULT '',
			interaction_type VARCHAR(64) NOT NULL DEFAULT '',
			interaction_at TIMESTAMPTZ,
			heat_score DOUBLE PRECISION NOT NULL DEFAULT 0.5,
			expires_at TIMESTAMPTZ,
			tags JSONB,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			last_accessed TIMESTAMPTZ,
			access_count BIGINT NOT NULL DEFAULT 0
		)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("initTables: create table: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_owner_active ON %s(owner_id, is_active)
	`, c.tableName, c.tableName)
	_, err = c.db.ExecContext(ctx, indexQuery)
	if err != nil {
		return fmt.Errorf("initTables: create index: %w", err)
	}

	evictionIndexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_active_created ON %s(is_active, created_at)
	`, c.tableName, c.tableName)
	_, err = c.db.ExecContext(ctx, evictionIndexQuery)
	if err != nil {
		return fmt.Errorf("initTables: create index: %w", err)
	}

	return nil
}

// Insert inserts a memory row.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, owner_id, content, embedding, forum_id, post_id, comment_id,
		 interaction_type, interaction_at, heat_score, expires_at, tags,
		 is_active, created_at, last_accessed, access_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, c.tableName)

	embeddingJSON, err := marshalVector(memory.Embedding)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	tagsJSON, err := marshalTags(memory.Tags)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	createdAt := memory.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = c.db.ExecContext(ctx, query,
		memory.ID,
		memory.OwnerID,
		memory.Content,
		embeddingJSON,
		memory.Context.ForumID,
		memory.Context.PostID,
		memory.Context.CommentID,
		memory.Context.InteractionType,
		nullableTime(timePtr(memory.Context.Timestamp)),
		memory.HeatScore,
		nullableTime(memory.ExpiresAt),
		tagsJSON,
		memory.IsActive,
		createdAt,
		nullableTime(memory.LastAccessed),
		memory.AccessCount,
	)

	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	return nil
}

// Get retrieves an active memory by ID.
func (c *Client) Get(ctx context.Context, id int64) (*storage.Memory, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND is_active
	`, memoryColumns, c.tableName)

	row := c.db.QueryRowContext(ctx, query, id)

	memory, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("Get: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	return memory, nil
}

// List returns active memories for an owner, filtered, ordered and limited
// per opts.
func (c *Client) List(ctx context.Context, opts *storage.ListOptions) ([]*storage.Memory, error) {
	whereClause, args := buildListWhere(opts)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		%s
	`, memoryColumns, c.tableName, whereClause, orderClause(opts.SortBy))

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, opts.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectMemories(rows)
}

// ListByIDs returns the active memories among ids that belong to ownerID.
func (c *Client) ListByIDs(ctx context.Context, ids []int64, ownerID string) ([]*storage.Memory, error) {
	if len(ids) == 0 {
		return []*storage.Memory{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = ANY($1) AND owner_id = $2 AND is_active
	`, memoryColumns, c.tableName)

	rows, err := c.db.QueryContext(ctx, query, pq.Array(ids), ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListByIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectMemories(rows)
}

// UpdateAccess records a read on the given memories. The heat multiplication
// and its clamp happen in SQL.
func (c *Client) UpdateAccess(ctx context.Context, ids []int64, growthFactor float64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET last_accessed = $1,
		    access_count = access_count + 1,
		    heat_score = LEAST(heat_score * $2, 1.0)
		WHERE id = ANY($3) AND is_active
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query, time.Now(), growthFactor, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("UpdateAccess: %w", err)
	}

	return nil
}

// FindEvictable returns up to opts.BatchSize ids of active memories that are
// past their expiry, or older than opts.MaxAgeDays with heat below
// opts.MinHeatScore.
func (c *Client) FindEvictable(ctx context.Context, opts *storage.EvictionOptions) ([]int64, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -opts.MaxAgeDays)

	query := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE is_active
		  AND ((expires_at IS NOT NULL AND expires_at <= $1)
		       OR (created_at <= $2 AND heat_score < $3))
		LIMIT $4
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query, now, cutoff, opts.MinHeatScore, opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("FindEvictable: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("FindEvictable: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindEvictable: %w", err)
	}

	return ids, nil
}

// Deactivate soft-deletes the given memories and returns how many rows
// actually flipped.
func (c *Client) Deactivate(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_active = FALSE
		WHERE id = ANY($1) AND is_active
	`, c.tableName)

	result, err := c.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("Deactivate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Deactivate: %w", err)
	}

	return affected, nil
}

// Stats aggregates memory statistics for an owner.
func (c *Client) Stats(ctx context.Context, ownerID string) (*storage.OwnerStats, error) {
	stats := &storage.OwnerStats{}

	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COALESCE(AVG(heat_score) FILTER (WHERE is_active), 0),
		       MIN(created_at) FILTER (WHERE is_active),
		       MAX(created_at) FILTER (WHERE is_active)
		FROM %s
		WHERE owner_id = $1
	`, c.tableName)

	var oldest, newest sql.NullTime
	err := c.db.QueryRowContext(ctx, query, ownerID).Scan(
		&stats.TotalMemories,
		&stats.ActiveMemories,
		&stats.AvgHeatScore,
		&oldest,
		&newest,
	)
	if err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}

	if oldest.Valid {
		stats.OldestMemory = &oldest.Time
	}
	if newest.Valid {
		stats.NewestMemory = &newest.Time
	}

	typesQuery := fmt.Sprintf(`
		SELECT interaction_type, COUNT(*) AS cnt
		FROM %s
		WHERE owner_id = $1 AND is_active AND interaction_type != ''
		GROUP BY interaction_type
		ORDER BY cnt DESC, interaction_type ASC
		LIMIT 5
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, typesQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tc storage.InteractionTypeCount
		if err := rows.Scan(&tc.InteractionType, &tc.Count); err != nil {
			return nil, fmt.Errorf("Stats: %w", err)
		}
		stats.TopInteractionTypes = append(stats.TopInteractionTypes, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}

	return stats, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// collectMemories drains rows into memory structs.
func collectMemories(rows *sql.Rows) ([]*storage.Memory, error) {
	var memories []*storage.Memory
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, memory)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return memories, nil
}
