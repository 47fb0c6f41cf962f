package dtrack

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "secret-key"

// newProjectServer serves the given pages (1-based) and an empty page afterwards.
func newProjectServer(t *testing.T, pages ...string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/api/v1/project" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("bad key"))
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("excludeInactive"))
		assert.Equal(t, "2", q.Get("limit"))

		var page int
		_, err := fmt.Sscanf(q.Get("page"), "%d", &page)
		assert.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		if page >= 1 && page <= len(pages) {
			_, _ = w.Write([]byte(pages[page-1]))
			return
		}
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClientFetchSnapshotsPaging(t *testing.T) {
	srv, calls := newProjectServer(t,
		`[{"uuid":"u-1","name":"Alpha","version":"1.0","lastBomImport":1705276800000,"metrics":{"critical":2}},
		  {"uuid":"u-2","name":"Alpha","version":"1.1","lastBomImport":"1705708800000","metrics":{"critical":0}}]`,
		`[{"uuid":"u-3","name":"Beta","version":"3.0","lastBomImport":"2024-04-01T00:00:00Z"}]`,
	)

	var hooked []int
	client := New(srv.Client(), srv.URL+"/", testAPIKey,
		WithPageSize(2),
		WithLocation(time.UTC),
		WithPageHook(func(page, count int) { hooked = append(hooked, count) }),
	)

	snapshots, err := client.FetchSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls), "two data pages and the terminating empty page")
	assert.Equal(t, []int{2, 1, 0}, hooked)

	assert.Equal(t, "u-1", snapshots[0].UUID)
	assert.Equal(t, "Beta", snapshots[2].Name)
	require.NotNil(t, snapshots[1].ImportedAt)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), *snapshots[1].ImportedAt)
}

func TestClientFetchSnapshotsEmpty(t *testing.T) {
	srv, _ := newProjectServer(t)
	client := New(srv.Client(), srv.URL, testAPIKey, WithPageSize(2))

	snapshots, err := client.FetchSnapshots(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestClientFetchSnapshotsHTTPError(t *testing.T) {
	srv, _ := newProjectServer(t, `[]`)
	client := New(srv.Client(), srv.URL, "wrong-key", WithPageSize(2))

	_, err := client.FetchSnapshots(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestClientFetchSnapshotsBadJSON(t *testing.T) {
	srv, _ := newProjectServer(t, `{"oops":true}`)
	client := New(srv.Client(), srv.URL, testAPIKey, WithPageSize(2))

	_, err := client.FetchSnapshots(context.Background())
	assert.Error(t, err)
}

func TestClientFetchSnapshotsCanceled(t *testing.T) {
	srv, _ := newProjectServer(t, `[]`)
	client := New(srv.Client(), srv.URL, testAPIKey, WithPageSize(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.FetchSnapshots(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDefaults(t *testing.T) {
	client := New(nil, "https://dtrack.example.com///", "")
	assert.Equal(t, "https://dtrack.example.com", client.baseURL)
	assert.Equal(t, requestTimeout, client.c.Timeout)
	assert.Equal(t, 1000, client.pageSize)
	assert.Equal(t, time.Local, client.loc)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	content := `[{"uuid":"u-1","name":"Alpha","version":"1.0","lastBomImport":"2024-01-15T00:00:00Z","metrics":{"high":4}}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snapshots, err := FileSource{Path: path}.FetchSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.InDelta(t, 4.0, snapshots[0].Metrics.High, 1e-9)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.FetchSnapshots(context.Background())
	assert.Error(t, err)
}
