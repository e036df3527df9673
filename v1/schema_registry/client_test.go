package schema_registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaJSON = `{"type":"record","name":"Event","fields":[{"name":"id","type":"long"}]}`

func newTestRegistry(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/schemas/ids/1", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt64(hits, 1)
		}
		json.NewEncoder(w).Encode(map[string]string{"schema": testSchemaJSON})
	})
	mux.HandleFunc("/subjects/events-value/versions/latest", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "version": 3, "schema": testSchemaJSON,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error_code":40403,"message":"Schema not found"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetSchemaByID(t *testing.T) {
	srv := newTestRegistry(t, nil)
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	schema, err := client.GetSchemaByID(context.Background(), 1)
	require.NoError(t, err)

	record, ok := schema.(*avro.RecordSchema)
	require.True(t, ok, "expected record schema, got %T", schema)
	assert.Equal(t, "Event", record.FullName())
}

func TestClient_SchemaFetchedOnce(t *testing.T) {
	var hits int64
	srv := newTestRegistry(t, &hits)
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	// Many sequential lookups of the same identifier share one fetch.
	var first avro.Schema
	for i := 0; i < 10; i++ {
		schema, err := client.GetSchemaByID(context.Background(), 1)
		require.NoError(t, err)
		if first == nil {
			first = schema
		} else {
			assert.Same(t, first, schema, "cached lookups must return the same parsed schema")
		}
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestClient_ConcurrentLookupsConverge(t *testing.T) {
	var hits int64
	srv := newTestRegistry(t, &hits)
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.GetSchemaByID(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Redundant first fetches are allowed; afterwards the cache serves.
	before := atomic.LoadInt64(&hits)
	_, err = client.GetSchemaByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, before, atomic.LoadInt64(&hits))
}

func TestClient_UnknownSchemaID(t *testing.T) {
	srv := newTestRegistry(t, nil)
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetSchemaByID(context.Background(), 999)
	assert.True(t, IsUnknownSchemaIDError(err), "got %v", err)
}

func TestClient_RegistryUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetSchemaByID(context.Background(), 1)
	assert.True(t, IsRegistryUnavailableError(err), "got %v", err)
}

func TestClient_UnreachableEndpoint(t *testing.T) {
	client, err := NewClient(Config{URL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = client.GetSchemaByID(context.Background(), 1)
	assert.True(t, IsRegistryUnavailableError(err), "got %v", err)
}

func TestClient_InvalidSchemaDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"schema": `{"type":"nope"}`})
	}))
	defer srv.Close()
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetSchemaByID(context.Background(), 1)
	assert.True(t, IsInvalidSchemaError(err), "got %v", err)
}

func TestClient_GetLatestSchema(t *testing.T) {
	var hits int64
	srv := newTestRegistry(t, &hits)
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)

	meta, err := client.GetLatestSchema(context.Background(), "events-value")
	require.NoError(t, err)
	assert.Equal(t, 1, meta.ID)
	assert.Equal(t, 3, meta.Version)
	assert.Equal(t, "events-value", meta.Subject)

	// The subject fetch primes the id cache.
	_, err = client.GetSchemaByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), atomic.LoadInt64(&hits))
}

func TestClient_RequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestForEndpoint_SharedPerURL(t *testing.T) {
	srv := newTestRegistry(t, nil)

	a, err := ForEndpoint(Config{URL: srv.URL})
	require.NoError(t, err)
	b, err := ForEndpoint(Config{URL: srv.URL, Username: "ignored"})
	require.NoError(t, err)
	assert.Same(t, a, b, "same endpoint must share one client")

	other := newTestRegistry(t, nil)
	c, err := ForEndpoint(Config{URL: other.URL})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}
