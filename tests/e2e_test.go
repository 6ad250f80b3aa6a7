package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/foliage/internal/cli"
	"github.com/mithrel/foliage/pkg/api"
)

// runCLI executes the CLI with the given args and returns stdout, stderr, and error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// fakeCMS serves a microCMS-shaped article collection.
func fakeCMS(t *testing.T, articles []api.Article) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/articles", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "test-key" {
			http.Error(w, `{"message":"forbidden"}`, http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(api.ArticleList{
			Contents:   articles,
			TotalCount: len(articles),
			Limit:      len(articles),
		})
	})
	mux.HandleFunc("/api/v1/articles/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, a := range articles {
			if a.ID == r.PathValue("id") {
				_ = json.NewEncoder(w).Encode(a)
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`data_dir = %q

[cms]
base_url = %q
api_key = "test-key"
`, filepath.Join(dir, "data"), baseURL)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath
}

func testArticles() []api.Article {
	return []api.Article{
		{
			ID:          "hello-world",
			Title:       "Hello World",
			Body:        "# Hello\n\nFirst post.",
			Tags:        []api.Tag{{ID: "meta", Name: "Meta"}},
			PublishedAt: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:          "second-post",
			Title:       "Second Post",
			Body:        "More words.",
			PublishedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestE2E_ArticlesList(t *testing.T) {
	srv := fakeCMS(t, testArticles())
	cfg := writeTestConfig(t, srv.URL)

	out, _, err := runCLI(t, "--config", cfg, "articles", "list", "--output", "ndjson")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first api.Article
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "hello-world", first.ID)
}

func TestE2E_ArticlesSearch(t *testing.T) {
	srv := fakeCMS(t, testArticles())
	cfg := writeTestConfig(t, srv.URL)

	out, _, err := runCLI(t, "--config", cfg, "articles", "search", "second", "--output", "ndjson")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "second-post")
}

func TestE2E_ArticlesShow(t *testing.T) {
	srv := fakeCMS(t, testArticles())
	cfg := writeTestConfig(t, srv.URL)

	out, _, err := runCLI(t, "--config", cfg, "articles", "show", "hello-world", "--output", "json")
	require.NoError(t, err)

	var a api.Article
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "Hello World", a.Title)

	_, _, err = runCLI(t, "--config", cfg, "articles", "show", "missing")
	require.Error(t, err)
}

func TestE2E_RenderLocalFile(t *testing.T) {
	srv := fakeCMS(t, nil)
	cfg := writeTestConfig(t, srv.URL)

	md := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(md, []byte("# Title\n\n```go\npackage main\n```\n"), 0o600))

	out, _, err := runCLI(t, "--config", cfg, "render", md)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "code-block")
}

func TestE2E_RenderRemoteArticle(t *testing.T) {
	srv := fakeCMS(t, testArticles())
	cfg := writeTestConfig(t, srv.URL)

	out, _, err := runCLI(t, "--config", cfg, "render", "hello-world")
	require.NoError(t, err)
	assert.Contains(t, out, "First post.")
}

func TestE2E_ConfigInit(t *testing.T) {
	srv := fakeCMS(t, nil)
	cfg := writeTestConfig(t, srv.URL)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, "--config", cfg, "config", "init", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[cms]")
}
