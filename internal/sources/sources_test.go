package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GeoSentinel/internal/prompts"
)

func writeList(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.json")
	writeList(t, path, `[{"name":"MOFA","url":"https://mofa.example/a","category":"government","notes":"","tags":["pdf"]}]`)

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MOFA", list[0].Name)
	assert.Equal(t, []string{"pdf"}, list[0].Tags)
}

func TestLoad_MissingFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.json")
	writeList(t, path, `{not json`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestRepositoryWhitelistLoads(t *testing.T) {
	list, err := Load(filepath.Join("..", "..", "data", "source_whitelist.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, list)
	for _, s := range list {
		assert.NotEmpty(t, s.URL)
		assert.NotEmpty(t, s.Category, s.URL)
	}
}

func TestMissingPromptSources(t *testing.T) {
	list := []Source{{URL: "https://a"}, {URL: "https://b"}}
	templates := []prompts.Template{
		{Key: "one", DefaultSources: []string{"https://a", "https://z"}},
		{Key: "two", DefaultSources: []string{"https://c", "https://z"}},
	}
	assert.Equal(t, []string{"https://c", "https://z"}, MissingPromptSources(list, templates))
	assert.Empty(t, MissingPromptSources(list, templates[:0]))

	known := KnownURLs(list)
	assert.Len(t, known, 2)
	assert.Contains(t, known, "https://b")
}

func TestCheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/get-only", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	list := []Source{
		{Name: "ok", URL: srv.URL + "/ok"},
		{Name: "gone", URL: srv.URL + "/gone"},
		{Name: "get-only", URL: srv.URL + "/get-only"},
		{Name: "bad", URL: "http://127.0.0.1:1/unreachable"},
	}
	results, err := Check(context.Background(), srv.Client(), list, 2)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.Equal(t, http.StatusOK, results[0].Status)
	assert.False(t, results[1].OK())
	assert.Equal(t, http.StatusNotFound, results[1].Status)
	assert.True(t, results[2].OK(), "HEAD 405 falls back to GET")
	assert.False(t, results[3].OK())
	assert.Error(t, results[3].Err)
	for i, r := range results {
		assert.Equal(t, list[i].Name, r.Source.Name)
	}
}

func TestCheck_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Check(ctx, nil, []Source{{URL: "http://127.0.0.1:1"}}, 1)
	require.Error(t, err)
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whitelist.json")
	writeList(t, path, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []Source, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(list []Source) { changes <- list })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	writeList(t, path, `[{"name":"n","url":"https://u","category":"c","notes":""}]`)

	select {
	case list := <-changes:
		require.Len(t, list, 1)
		assert.Equal(t, "https://u", list[0].URL)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
