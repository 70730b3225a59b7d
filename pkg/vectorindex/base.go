// Package vectorindex defines the vector index abstraction used for
// semantic memory retrieval.
//
// An Index stores memory embeddings keyed by memory ID and answers
// similarity queries scoped to a single owner. The relational store remains
// the source of truth; the index is an acceleration structure that the
// memory client treats as best-effort.
package vectorindex

import (
	"context"
	"errors"
)

// ErrDisabled is returned when vector index operations are invoked but no
// index provider is configured.
var ErrDisabled = errors.New("vector index not configured")

// MetadataOwnerKey is the metadata field that records which owner a vector
// belongs to. Providers filter similarity queries on this field, so callers
// must set it on every Upsert.
const MetadataOwnerKey = "owner_id"

// Match is a single similarity query result.
type Match struct {
	// ID is the memory ID the vector was stored under.
	ID string

	// Score is the similarity score reported by the index provider.
	// Higher is more similar.
	Score float64

	// Metadata is the metadata stored alongside the vector.
	Metadata map[string]interface{}
}

// Index is the interface for vector index providers.
// All implementations must support upserting, querying and deleting vectors.
type Index interface {
	// Enabled reports whether the index is usable. A disabled index causes
	// the memory client to skip vector operations entirely.
	Enabled() bool

	// Upsert inserts or overwrites the vector stored under id.
	Upsert(ctx context.Context, id string, vector []float64, metadata map[string]interface{}) error

	// Query returns the topK most similar vectors belonging to ownerID,
	// ordered by descending score.
	Query(ctx context.Context, vector []float64, topK int, ownerID string) ([]Match, error)

	// Delete removes the vector stored under id. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes all vectors stored under the given ids.
	DeleteMany(ctx context.Context, ids []string) error

	// DeleteAllForOwner removes every vector belonging to ownerID that the
	// provider can enumerate. Providers without native metadata deletion
	// may only remove a bounded number of vectors per call.
	DeleteAllForOwner(ctx context.Context, ownerID string) error

	// Close closes the index connection.
	Close() error
}

// Disabled returns an Index whose operations all fail with ErrDisabled.
// It is used when no vector index is configured so that callers can hold a
// non-nil Index unconditionally.
func Disabled() Index {
	return disabledIndex{}
}

type disabledIndex struct{}

func (disabledIndex) Enabled() bool { return false }

func (disabledIndex) Upsert(ctx context.Context, id string, vector []float64, metadata map[string]interface{}) error {
	return ErrDisabled
}

func (disabledIndex) Query(ctx context.Context, vector []float64, topK int, ownerID string) ([]Match, error) {
	return nil, ErrDisabled
}

func (disabledIndex) Delete(ctx context.Context, id string) error { return ErrDisabled }

func (disabledIndex) DeleteMany(ctx context.Context, ids []string) error { return ErrDisabled }

func (disabledIndex) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	return ErrDisabled
}

func (disabledIndex) Close() error { return nil }
