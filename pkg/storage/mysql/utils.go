package mysql

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agentboard/mnemo-go/pkg/storage"
)

// memoryColumns is the select list shared by every read query, in scanMemory
// order.
const memoryColumns = `id, owner_id, content, embedding, forum_id, post_id, comment_id,
	       interaction_type, interaction_at, heat_score, expires_at, tags,
	       is_active, created_at, last_accessed, access_count`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanMemory scans a memory from a database row or rows.
func scanMemory(scanner rowScanner) (*storage.Memory, error) {
	var memory storage.Memory
	var embeddingJSON []byte
	var tagsJSON []byte
	var interactionAt sql.NullTime
	var expiresAt sql.NullTime
	var createdAt sql.NullTime
	var lastAccessed sql.NullTime

	err := scanner.Scan(
		&memory.ID,
		&memory.OwnerID,
		&memory.Content,
		&embeddingJSON,
		&memory.Context.ForumID,
		&memory.Context.PostID,
		&memory.Context.CommentID,
		&memory.Context.InteractionType,
		&interactionAt,
		&memory.HeatScore,
		&expiresAt,
		&tagsJSON,
		&memory.IsActive,
		&createdAt,
		&lastAccessed,
		&memory.AccessCount,
	)
	if err != nil {
		return nil, err
	}

	if len(embeddingJSON) > 0 {
		if err := json.Unmarshal(embeddingJSON, &memory.Embedding); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &memory.Tags); err != nil {
			return nil, fmt.Errorf("parse tags: %w", err)
		}
	}

	if interactionAt.Valid {
		memory.Context.Timestamp = interactionAt.Time
	}
	if expiresAt.Valid {
		memory.ExpiresAt = &expiresAt.Time
	}
	if createdAt.Valid {
		memory.CreatedAt = createdAt.Time
	}
	if lastAccessed.Valid {
		memory.LastAccessed = &lastAccessed.Time
	}

	return &memory, nil
}

// buildListWhere builds the WHERE clause for List queries.
func buildListWhere(opts *storage.ListOptions) (string, []interface{}) {
	conditions := []string{"owner_id = ?", "is_active = 1"}
	args := []interface{}{opts.OwnerID}

	if opts.ForumID != "" {
		conditions = append(conditions, "forum_id = ?")
		args = append(args, opts.ForumID)
	}

	if opts.PostID != "" {
		conditions = append(conditions, "post_id = ?")
		args = append(args, opts.PostID)
	}

	if opts.InteractionType != "" {
		conditions = append(conditions, "interaction_type = ?")
		args = append(args, opts.InteractionType)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// orderClause maps a sort mode to its ORDER BY clause. Relevance needs a
// similarity score, which relational rows do not carry, so it shares the
// heat ordering.
func orderClause(sortBy storage.SortBy) string {
	switch sortBy {
	case storage.SortByRecency:
		return "ORDER BY created_at DESC"
	default:
		return "ORDER BY heat_score DESC, created_at DESC"
	}
}

// placeholders returns n comma-separated "?" markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args widens ids into query arguments.
func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// marshalVector serializes an embedding to its JSON column value. Nil
// embeddings become NULL so that "no embedding" survives round trips.
func marshalVector(embedding []float64) (interface{}, error) {
	if embedding == nil {
		return nil, nil
	}
	b, err := json.Marshal(embedding)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// marshalTags serializes tags to their JSON column value.
func marshalTags(tags []string) (interface{}, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// nullableTime converts an optional time into a query argument.
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// timePtr returns nil for the zero time, so optional timestamps are stored
// as NULL.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
