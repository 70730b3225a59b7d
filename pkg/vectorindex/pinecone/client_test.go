package pinecone_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentboard/mnemo-go/pkg/vectorindex"
	"github.com/agentboard/mnemo-go/pkg/vectorindex/pinecone"
)

func newTestClient(t *testing.T, baseURL string) *pinecone.Client {
	t.Helper()

	client, err := pinecone.NewClient(pinecone.Config{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Dimensions: 3,
	}, zap.NewNop())
	require.NoError(t, err)

	return client
}

func TestNewClientValidation(t *testing.T) {
	_, err := pinecone.NewClient(pinecone.Config{BaseURL: "http://localhost"}, nil)
	assert.Error(t, err, "missing api key should be rejected")

	_, err = pinecone.NewClient(pinecone.Config{APIKey: "k"}, nil)
	assert.Error(t, err, "missing base url and index should be rejected")

	client, err := pinecone.NewClient(pinecone.Config{APIKey: "k", Index: "memories"}, nil)
	require.NoError(t, err)
	assert.True(t, client.Enabled())
}

func TestUpsertAndQuery(t *testing.T) {
	var upsertCalls, queryCalls atomic.Int64

	mux := http.NewServeMux()

	mux.HandleFunc("/vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("Api-Key"))
		upsertCalls.Add(1)

		var req struct {
			Vectors []struct {
				ID       string         `json:"id"`
				Values   []float64      `json:"values"`
				Metadata map[string]any `json:"metadata"`
			} `json:"vectors"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Vectors, 1)
		assert.Equal(t, "101", req.Vectors[0].ID)
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, req.Vectors[0].Values)
		assert.Equal(t, "agent-1", req.Vectors[0].Metadata[vectorindex.MetadataOwnerKey])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"upsertedCount":1}`))
	})

	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		queryCalls.Add(1)

		var req struct {
			Vector          []float64      `json:"vector"`
			TopK            int            `json:"topK"`
			Filter          map[string]any `json:"filter"`
			IncludeMetadata bool           `json:"includeMetadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 5, req.TopK)
		assert.True(t, req.IncludeMetadata)

		ownerFilter, ok := req.Filter[vectorindex.MetadataOwnerKey].(map[string]any)
		require.True(t, ok, "query must filter on the owner field")
		assert.Equal(t, "agent-1", ownerFilter["$eq"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"matches":[
				{"id":"101","score":0.92,"metadata":{"owner_id":"agent-1"}},
				{"id":"102","score":0.71,"metadata":{"owner_id":"agent-1"}}
			]
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	err := client.Upsert(ctx, "101", []float64{0.1, 0.2, 0.3}, map[string]any{
		vectorindex.MetadataOwnerKey: "agent-1",
	})
	require.NoError(t, err)

	matches, err := client.Query(ctx, []float64{0.1, 0.2, 0.3}, 5, "agent-1")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "101", matches[0].ID)
	assert.InDelta(t, 0.92, matches[0].Score, 1e-9)
	assert.Equal(t, "agent-1", matches[0].Metadata[vectorindex.MetadataOwnerKey])

	assert.Equal(t, int64(1), upsertCalls.Load())
	assert.Equal(t, int64(1), queryCalls.Load())
}

func TestQueryZeroTopK(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")

	matches, err := client.Query(context.Background(), []float64{0.1}, 0, "agent-1")
	require.NoError(t, err, "topK=0 should short-circuit without a request")
	assert.Empty(t, matches)
}

func TestDeleteMany(t *testing.T) {
	var gotIDs []string

	mux := http.NewServeMux()
	mux.HandleFunc("/vectors/delete", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotIDs = req.IDs

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, client.DeleteMany(ctx, []string{"101", "102"}))
	assert.Equal(t, []string{"101", "102"}, gotIDs)

	require.NoError(t, client.Delete(ctx, "103"))
	assert.Equal(t, []string{"103"}, gotIDs)

	require.NoError(t, client.DeleteMany(ctx, nil), "empty delete is a no-op")
	require.NoError(t, client.Delete(ctx, ""), "empty id delete is a no-op")
}

func TestDeleteAllForOwner(t *testing.T) {
	var deletedIDs []string
	var queryCalls atomic.Int64

	mux := http.NewServeMux()

	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		queryCalls.Add(1)

		var req struct {
			Vector []float64      `json:"vector"`
			TopK   int            `json:"topK"`
			Filter map[string]any `json:"filter"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []float64{0, 0, 0}, req.Vector, "purge probes with a zero vector")
		assert.Equal(t, 1000, req.TopK)
		require.Contains(t, req.Filter, vectorindex.MetadataOwnerKey)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"matches":[
				{"id":"7","score":0.0},
				{"id":"8","score":0.0},
				{"id":"9","score":0.0}
			]
		}`))
	})

	mux.HandleFunc("/vectors/delete", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		deletedIDs = req.IDs

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)

	require.NoError(t, client.DeleteAllForOwner(context.Background(), "agent-1"))
	assert.Equal(t, int64(1), queryCalls.Load())
	assert.Equal(t, []string{"7", "8", "9"}, deletedIDs)

	err := client.DeleteAllForOwner(context.Background(), "  ")
	assert.Error(t, err, "blank owner must be rejected")
}

func TestDeleteAllForOwnerNoMatches(t *testing.T) {
	var deleteCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[]}`))
	})
	mux.HandleFunc("/vectors/delete", func(w http.ResponseWriter, r *http.Request) {
		deleteCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)

	require.NoError(t, client.DeleteAllForOwner(context.Background(), "agent-1"))
	assert.Equal(t, int64(0), deleteCalls.Load(), "no delete request when the owner has no vectors")
}

func TestResolvesHostFromController(t *testing.T) {
	dataMux := http.NewServeMux()
	dataMux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[{"id":"1","score":0.5}]}`))
	})
	dataSrv := httptest.NewServer(dataMux)
	t.Cleanup(dataSrv.Close)

	controllerMux := http.NewServeMux()
	controllerMux.HandleFunc("/indexes/memories", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "test-key", r.Header.Get("Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"host":"` + dataSrv.URL + `"}`))
	})
	controllerSrv := httptest.NewServer(controllerMux)
	t.Cleanup(controllerSrv.Close)

	client, err := pinecone.NewClient(pinecone.Config{
		APIKey:            "test-key",
		Index:             "memories",
		ControllerBaseURL: controllerSrv.URL,
		Dimensions:        3,
	}, zap.NewNop())
	require.NoError(t, err)

	matches, err := client.Query(context.Background(), []float64{0.1, 0.2, 0.3}, 1, "agent-1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].ID)
}

func TestAPIErrorSurfacesStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	err := client.Upsert(ctx, "1", []float64{0.1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = client.Query(ctx, []float64{0.1}, 5, "agent-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
