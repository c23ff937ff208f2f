package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, fetches *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /datasets/sst2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"sst2","task":"text-classification","file_type":"tsv","splits":["train","test"]}`))
	})
	mux.HandleFunc("GET /datasets/sst2/test.tsv", func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			fetches.Add(1)
		}
		_, _ = w.Write([]byte("a good movie\tpositive\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"dataset not found"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Info(t *testing.T) {
	srv := newTestHub(t, nil)
	c, err := New(srv.URL, WithCacheDir(t.TempDir()))
	require.NoError(t, err)

	info, err := c.Info(context.Background(), "sst2", "")
	require.NoError(t, err)
	assert.Equal(t, "sst2", info.Name)
	assert.Equal(t, "text-classification", info.Task)
	assert.Equal(t, "tsv", info.FileType)
	assert.Contains(t, info.Splits, "test")
}

func TestClient_Info_NotFound(t *testing.T) {
	srv := newTestHub(t, nil)
	c, err := New(srv.URL, WithCacheDir(t.TempDir()))
	require.NoError(t, err)

	_, err = c.Info(context.Background(), "no-such-dataset", "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "expected IsNotFound, got %v", err)
	assert.Contains(t, err.Error(), "dataset not found")
}

func TestClient_Fetch_Caches(t *testing.T) {
	var fetches atomic.Int64
	srv := newTestHub(t, &fetches)
	c, err := New(srv.URL, WithCacheDir(t.TempDir()))
	require.NoError(t, err)

	info, err := c.Info(context.Background(), "sst2", "")
	require.NoError(t, err)

	path, err := c.Fetch(context.Background(), info, "test")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a good movie\tpositive\n", string(data))

	// Second fetch must be served from the cache.
	again, err := c.Fetch(context.Background(), info, "test")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int64(1), fetches.Load())
}
