// Package mysql provides the MySQL implementation of the memory store.
//
// Embeddings and tags are stored in JSON columns; interaction context fields
// are plain columns so that filtering and statistics run in SQL.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/agentboard/mnemo-go/pkg/storage"
)

// Client implements storage.Store using MySQL as the backend.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains MySQL configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
}

// NewClient creates a new MySQL memory store client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.TableName == "" {
		cfg.TableName = "memories"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	client := &Client{
		db:        db,
		tableName: cfg.TableName,
	}

	// Initialize table structure
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
			content LONGTEXT NOT NULL,
			embedding JSON,
			forum_id VARCHAR(255) NOT NULL DEFAULT '',
			post_id VARCHAR(255) NOT NULL DEFAULT '',
			comment_id VARCHAR(255) NOT NULL DEFAULT '',
			interaction_type VARCHAR(64) NOT NULL DEFAULT '',
			interaction_at DATETIME(6),
			heat_score DOUBLE NOT NULL DEFAULT 0.5,
			expires_at DATETIME(6),
			tags JSON,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME(6),
			last_accessed DATETIME(6),
			access_count BIGINT NOT NULL DEFAULT 0,
			INDEX idx_owner_active (owner_id, is_active),
			INDEX idx_active_created (is_active, created_at)
		)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		WHERE id = ? AND is_active = 1
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
		query += " LIMIT ?"
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
		WHERE id IN (%s) AND owner_id = ? AND is_active = 1
	`, memoryColumns, c.tableName, placeholders(len(ids)))

	args := append(int64Args(ids), ownerID)

	rows, err := c.db.QueryContext(ctx, query, args...)
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
		SET last_accessed = ?,
		    access_count = access_count + 1,
		    heat_score = LEAST(heat_score * ?, 1.0)
		WHERE id IN (%s) AND is_active = 1
	`, c.tableName, placeholders(len(ids)))

	args := append([]interface{}{time.Now(), growthFactor}, int64Args(ids)...)

	_, err := c.db.ExecContext(ctx, query, args...)
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
		WHERE is_active = 1
		  AND ((expires_at IS NOT NULL AND expires_at <= ?)
		       OR (created_at <= ? AND heat_score < ?))
		LIMIT ?
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
		SET is_active = 0
		WHERE id IN (%s) AND is_active = 1
	`, c.tableName, placeholders(len(ids)))

	result, err := c.db.ExecContext(ctx, query, int64Args(ids)...)
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
		       COALESCE(SUM(is_active), 0),
		       COALESCE(AVG(CASE WHEN is_active = 1 THEN heat_score END), 0),
		       MIN(CASE WHEN is_active = 1 THEN created_at END),
		       MAX(CASE WHEN is_active = 1 THEN created_at END)
		FROM %s
		WHERE owner_id = ?
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
		WHERE owner_id = ? AND is_active = 1 AND interaction_type != ''
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
