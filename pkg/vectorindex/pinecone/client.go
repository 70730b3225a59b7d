// Package pinecone implements the vectorindex.Index interface on top of
// Pinecone's REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentboard/mnemo-go/pkg/vectorindex"
)

// maxOwnerPurgeResults bounds how many vectors a single DeleteAllForOwner
// call can enumerate. Pinecone has no server-side delete-by-metadata on
// serverless indexes, so the purge queries for the owner's vectors and
// deletes them by ID; owners with more vectors than this keep the remainder
// until a later purge.
const maxOwnerPurgeResults = 1000

// DefaultDimensions is the vector size assumed when the configuration does
// not specify one. It matches the default embedding model.
const DefaultDimensions = 1536

// Config is the configuration for the Pinecone vector index.
//
// To use Pinecone you need either:
//   - BaseURL (data-plane host, e.g. https://<index>-<project>.svc.<region>.pinecone.io), or
//   - Index, in which case the client resolves the host via the controller API.
type Config struct {
	APIKey    string
	Index     string        // Used to resolve BaseURL if BaseURL is empty
	BaseURL   string        // Data-plane base URL (preferred if known)
	Namespace string        // Optional Pinecone namespace
	Timeout   time.Duration // HTTP timeout, defaults to 30s

	ControllerBaseURL string // Default: https://api.pinecone.io

	// Dimensions is the vector size stored in the index. It is used to build
	// the probe vector for owner purges. Defaults to 1536.
	Dimensions int
}

// Client is a Pinecone-backed vector index.
// It implements the vectorindex.Index interface using Pinecone's REST API.
type Client struct {
	cfg    Config
	logger *zap.Logger
	client *http.Client

	mu      sync.RWMutex
	baseURL string
}

// NewClient creates a Pinecone vector index client.
//
// Args:
//   - cfg: Pinecone configuration containing APIKey and either BaseURL or Index
//   - logger: Structured logger; a no-op logger is used when nil
//
// Returns:
//   - *Client: Pinecone client instance
//   - error: Returns an error if the configuration is invalid
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("pinecone: api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" && strings.TrimSpace(cfg.Index) == "" {
		return nil, errors.New("pinecone: either base_url or index is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ControllerBaseURL == "" {
		cfg.ControllerBaseURL = "https://api.pinecone.io"
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &Client{
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "pinecone_index")),
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}, nil
}

// Enabled reports whether the index is usable. A constructed client is
// always enabled; deployments without Pinecone use vectorindex.Disabled()
// instead.
func (c *Client) Enabled() bool {
	return true
}

func (c *Client) ensureBaseURL(ctx context.Context) error {
	c.mu.RLock()
	if c.baseURL != "" {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	// Resolve the data-plane host via the controller API: GET /indexes/{index}
	controller := strings.TrimRight(strings.TrimSpace(c.cfg.ControllerBaseURL), "/")
	endpoint := fmt.Sprintf("%s/indexes/%s", controller, url.PathEscape(c.cfg.Index))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Api-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone describe index failed: status=%d body=%s", resp.StatusCode, string(raw))
	}

	var describe struct {
		Host string `json:"host"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&describe); err != nil {
		return err
	}
	host := strings.TrimSpace(describe.Host)
	if host == "" {
		return fmt.Errorf("pinecone controller returned empty host for index %q", c.cfg.Index)
	}

	baseURL := host
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()

	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	if err := c.ensureBaseURL(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	baseURL := c.baseURL
	c.mu.RUnlock()
	endpoint := baseURL + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone request failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type vectorPayload struct {
	ID       string         `json:"id"`
	Values   []float64      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Upsert inserts or overwrites the vector stored under id.
//
// Args:
//   - ctx: Context for controlling the request lifecycle
//   - id: Memory ID the vector is stored under
//   - vector: Embedding values
//   - metadata: Metadata stored alongside the vector; must include the owner field
//
// Returns:
//   - error: Returns an error if the upsert fails
func (c *Client) Upsert(ctx context.Context, id string, vector []float64, metadata map[string]any) error {
	if id == "" {
		return errors.New("pinecone upsert: id is required")
	}
	if len(vector) == 0 {
		return errors.New("pinecone upsert: vector is required")
	}

	req := struct {
		Vectors   []vectorPayload `json:"vectors"`
		Namespace string          `json:"namespace,omitempty"`
	}{
		Vectors: []vectorPayload{{
			ID:       id,
			Values:   vector,
			Metadata: metadata,
		}},
		Namespace: strings.TrimSpace(c.cfg.Namespace),
	}

	var resp any
	return c.doJSON(ctx, http.MethodPost, "/vectors/upsert", req, &resp)
}

// Query returns the topK most similar vectors belonging to ownerID, ordered
// by descending score.
//
// Args:
//   - ctx: Context for controlling the request lifecycle
//   - vector: Query embedding
//   - topK: Maximum number of matches to return
//   - ownerID: Owner whose vectors are searched; other owners' vectors are filtered out
//
// Returns:
//   - []vectorindex.Match: Similarity matches with scores and metadata
//   - error: Returns an error if the query fails
func (c *Client) Query(ctx context.Context, vector []float64, topK int, ownerID string) ([]vectorindex.Match, error) {
	if topK <= 0 {
		return []vectorindex.Match{}, nil
	}
	if len(vector) == 0 {
		return nil, errors.New("pinecone query: vector is required")
	}

	req := struct {
		Vector          []float64      `json:"vector"`
		TopK            int            `json:"topK"`
		Namespace       string         `json:"namespace,omitempty"`
		Filter          map[string]any `json:"filter,omitempty"`
		IncludeMetadata bool           `json:"includeMetadata"`
	}{
		Vector:          vector,
		TopK:            topK,
		Namespace:       strings.TrimSpace(c.cfg.Namespace),
		IncludeMetadata: true,
	}
	if ownerID != "" {
		req.Filter = map[string]any{
			vectorindex.MetadataOwnerKey: map[string]any{"$eq": ownerID},
		}
	}

	var resp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata,omitempty"`
		} `json:"matches"`
	}

	if err := c.doJSON(ctx, http.MethodPost, "/query", req, &resp); err != nil {
		return nil, err
	}

	out := make([]vectorindex.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		out = append(out, vectorindex.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}

	return out, nil
}

// Delete removes the vector stored under id. Deleting a missing id is not
// an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return c.DeleteMany(ctx, []string{id})
}

// DeleteMany removes all vectors stored under the given ids.
func (c *Client) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	req := struct {
		IDs       []string `json:"ids"`
		Namespace string   `json:"namespace,omitempty"`
	}{
		IDs:       ids,
		Namespace: strings.TrimSpace(c.cfg.Namespace),
	}

	var resp any
	return c.doJSON(ctx, http.MethodPost, "/vectors/delete", req, &resp)
}

// DeleteAllForOwner removes vectors belonging to ownerID.
//
// The purge queries the index with a zero probe vector filtered to the owner
// and deletes the returned IDs. At most maxOwnerPurgeResults vectors are
// removed per call; owners holding more vectors than that keep the excess
// until a later purge.
//
// Args:
//   - ctx: Context for controlling the request lifecycle
//   - ownerID: Owner whose vectors are removed
//
// Returns:
//   - error: Returns an error if the query or the delete fails
func (c *Client) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return errors.New("pinecone purge: owner id is required")
	}

	probe := make([]float64, c.cfg.Dimensions)
	matches, err := c.Query(ctx, probe, maxOwnerPurgeResults, ownerID)
	if err != nil {
		return fmt.Errorf("pinecone purge: %w", err)
	}
	if len(matches) == 0 {
		return nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	if err := c.DeleteMany(ctx, ids); err != nil {
		return fmt.Errorf("pinecone purge: %w", err)
	}

	c.logger.Debug("purged owner vectors",
		zap.String("owner_id", ownerID),
		zap.Int("count", len(ids)))

	if len(matches) == maxOwnerPurgeResults {
		c.logger.Warn("owner purge hit result cap, some vectors may remain",
			zap.String("owner_id", ownerID),
			zap.Int("cap", maxOwnerPurgeResults))
	}

	return nil
}

// Close closes the index connection.
// The HTTP client does not require explicit closing; this method is retained
// for interface compatibility.
func (c *Client) Close() error {
	return nil
}
