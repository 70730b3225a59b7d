// Package sqlite provides the SQLite implementation of the memory store.
//
// SQLite is a lightweight, file-based database suitable for local development
// and small-scale deployments. Embeddings and tags are stored as JSON strings
// in TEXT fields; interaction context fields are plain columns so that
// filtering and statistics run in SQL.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentboard/mnemo-go/pkg/storage"
)

// Client implements storage.Store using SQLite as the backend.
type Client struct {
	// db is the SQLite database connection.
	db *sql.DB

	// tableName is the name of the table storing memories.
	tableName string
}

// Config contains configuration for creating a SQLite memory store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the name of the table to use. Defaults to "memories".
	TableName string
}

// NewClient creates a new SQLite memory store client.
//
// Parameters:
//   - cfg: Configuration containing the database path and table name
//
// Returns:
//   - *Client: The SQLite client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	if cfg.TableName == "" {
		cfg.TableName = "memories"
	}

	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
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

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			owner_id TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding TEXT,
			forum_id TEXT NOT NULL DEFAULT '',
			post_id TEXT NOT NULL DEFAULT '',
			comment_id TEXT NOT NULL DEFAULT '',
			interaction_type TEXT NOT NULL DEFAULT '',
			interaction_at DATETIME,
			heat_score REAL NOT NULL DEFAULT 0.5,
			expires_at DATETIME,
			tags TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_accessed DATETIME,
			access_count INTEGER NOT NULL DEFAULT 0
		)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	// Owner-scoped reads and the eviction scan both filter on is_active
	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_owner_active ON %s(owner_id, is_active)
	`, c.tableName, c.tableName)
	_, err = c.db.ExecContext(ctx, indexQuery)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	evictionIndexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_active_created ON %s(is_active, created_at)
	`, c.tableName, c.tableName)
	_, err = c.db.ExecContext(ctx, evictionIndexQuery)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Insert inserts a memory row into the SQLite database.
//
// Embeddings and tags are stored as JSON strings in TEXT fields. A nil
// embedding is stored as NULL so that "no embedding" survives round trips.
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

	tagsJSON, err := json.Marshal(memory.Tags)
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
		string(tagsJSON),
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
//
// Soft-deleted rows are treated as missing and return storage.ErrNotFound.
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
// Missing or inactive ids are skipped.
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

// UpdateAccess records a read on the given memories.
//
// The heat multiplication and its clamp happen in SQL so that concurrent
// reads each apply the growth exactly once.
func (c *Client) UpdateAccess(ctx context.Context, ids []int64, growthFactor float64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET last_accessed = ?,
		    access_count = access_count + 1,
		    heat_score = MIN(heat_score * ?, 1.0)
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

// Deactivate soft-deletes the given memories.
//
// Returns the number of rows that actually flipped; rows already inactive
// are not counted, so a repeated call reports 0.
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

	totalQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE owner_id = ?", c.tableName)
	if err := c.db.QueryRowContext(ctx, totalQuery, ownerID).Scan(&stats.TotalMemories); err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}

	activeQuery := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(AVG(heat_score), 0)
		FROM %s
		WHERE owner_id = ? AND is_active = 1
	`, c.tableName)
	if err := c.db.QueryRowContext(ctx, activeQuery, ownerID).Scan(&stats.ActiveMemories, &stats.AvgHeatScore); err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}

	// MIN/MAX over DATETIME lose the column's declared type under the sqlite3
	// driver, so the bounds come from ordered single-row selects instead.
	if stats.ActiveMemories > 0 {
		var oldest, newest time.Time

		oldestQuery := fmt.Sprintf(`
			SELECT created_at FROM %s
			WHERE owner_id = ? AND is_active = 1
			ORDER BY created_at ASC LIMIT 1
		`, c.tableName)
		if err := c.db.QueryRowContext(ctx, oldestQuery, ownerID).Scan(&oldest); err != nil {
			return nil, fmt.Errorf("Stats: %w", err)
		}

		newestQuery := fmt.Sprintf(`
			SELECT created_at FROM %s
			WHERE owner_id = ? AND is_active = 1
			ORDER BY created_at DESC LIMIT 1
		`, c.tableName)
		if err := c.db.QueryRowContext(ctx, newestQuery, ownerID).Scan(&newest); err != nil {
			return nil, fmt.Errorf("Stats: %w", err)
		}

		stats.OldestMemory = &oldest
		stats.NewestMemory = &newest
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
