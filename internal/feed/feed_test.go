package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/foliage/pkg/api"
)

func sampleArticles() []api.Article {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []api.Article{
		{
			ID: "a1", Title: "Kubernetes Basics",
			Body:        "A tour of pods and services. Also mentions etcd.",
			Tags:        []api.Tag{{ID: "infra", Name: "Infrastructure"}},
			PublishedAt: t0.Add(72 * time.Hour), RevisedAt: t0.Add(72 * time.Hour),
		},
		{
			ID: "a2", Title: "Writing a Blog in Go",
			Body:        "Server-rendered pages with html/template.",
			Tags:        []api.Tag{{ID: "go", Name: "Go"}},
			PublishedAt: t0.Add(48 * time.Hour), RevisedAt: t0.Add(96 * time.Hour),
		},
		{
			ID: "a3", Title: "My Favorite Keyboards",
			Body:        "Switches, keycaps, and firmware.",
			Tags:        []api.Tag{{ID: "hw", Name: "Hardware"}},
			PublishedAt: t0.Add(24 * time.Hour), RevisedAt: t0.Add(24 * time.Hour),
		},
	}
}

func ids(articles []api.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestSearch(t *testing.T) {
	articles := sampleArticles()

	t.Run("empty query returns everything", func(t *testing.T) {
		assert.Len(t, Search(articles, ""), 3)
		assert.Len(t, Search(articles, "   "), 3)
	})

	t.Run("title match", func(t *testing.T) {
		got := Search(articles, "kubernetes")
		require.Len(t, got, 1)
		assert.Equal(t, "a1", got[0].ID)
	})

	t.Run("tag name match", func(t *testing.T) {
		got := Search(articles, "Hardware")
		require.NotEmpty(t, got)
		assert.Contains(t, ids(got), "a3")
	})

	t.Run("body substring match", func(t *testing.T) {
		got := Search(articles, "etcd")
		require.Len(t, got, 1)
		assert.Equal(t, "a1", got[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Search(articles, "xylophone"))
	})

	t.Run("input order preserved", func(t *testing.T) {
		got := Search(articles, "a")
		assert.Equal(t, ids(got), sortedByInput(ids(got), ids(articles)))
	})
}

// sortedByInput reorders got to the order the ids appear in input.
func sortedByInput(got, input []string) []string {
	out := make([]string, 0, len(got))
	set := make(map[string]struct{}, len(got))
	for _, id := range got {
		set[id] = struct{}{}
	}
	for _, id := range input {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func TestFilterTag(t *testing.T) {
	articles := sampleArticles()

	assert.Len(t, FilterTag(articles, ""), 3)

	got := FilterTag(articles, "go")
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)

	assert.Empty(t, FilterTag(articles, "nope"))
}

func TestSortBy(t *testing.T) {
	articles := sampleArticles()

	t.Run("default newest first", func(t *testing.T) {
		assert.Equal(t, []string{"a1", "a2", "a3"}, ids(SortBy(articles, "-published")))
		assert.Equal(t, []string{"a1", "a2", "a3"}, ids(SortBy(articles, "garbage")), "unknown order falls back")
	})

	t.Run("published ascending", func(t *testing.T) {
		assert.Equal(t, []string{"a3", "a2", "a1"}, ids(SortBy(articles, "published")))
	})

	t.Run("revised descending", func(t *testing.T) {
		assert.Equal(t, []string{"a2", "a1", "a3"}, ids(SortBy(articles, "-revised")))
	})

	t.Run("input not mutated", func(t *testing.T) {
		before := ids(articles)
		_ = SortBy(articles, "published")
		assert.Equal(t, before, ids(articles))
	})
}

func TestPaginate(t *testing.T) {
	articles := make([]api.Article, 0, 7)
	for i := 0; i < 7; i++ {
		articles = append(articles, api.Article{ID: string(rune('a' + i))})
	}

	t.Run("first page", func(t *testing.T) {
		p := Paginate(articles, 1, 3)
		assert.Len(t, p.Items, 3)
		assert.Equal(t, 1, p.Number)
		assert.Equal(t, 3, p.TotalPages)
		assert.Equal(t, 7, p.TotalItems)
		assert.False(t, p.HasPrev)
		assert.True(t, p.HasNext)
	})

	t.Run("last page is short", func(t *testing.T) {
		p := Paginate(articles, 3, 3)
		assert.Len(t, p.Items, 1)
		assert.True(t, p.HasPrev)
		assert.False(t, p.HasNext)
	})

	t.Run("page beyond range clamps to last", func(t *testing.T) {
		p := Paginate(articles, 99, 3)
		assert.Equal(t, 3, p.Number)
	})

	t.Run("page below range clamps to first", func(t *testing.T) {
		p := Paginate(articles, -1, 3)
		assert.Equal(t, 1, p.Number)
	})

	t.Run("empty list yields one empty page", func(t *testing.T) {
		p := Paginate(nil, 1, 3)
		assert.Empty(t, p.Items)
		assert.Equal(t, 1, p.Number)
		assert.Equal(t, 1, p.TotalPages)
		assert.False(t, p.HasPrev)
		assert.False(t, p.HasNext)
	})

	t.Run("non-positive per page falls back", func(t *testing.T) {
		p := Paginate(articles, 1, 0)
		assert.Equal(t, 12, p.PerPage)
		assert.Len(t, p.Items, 7)
	})

	t.Run("window clamps at edges", func(t *testing.T) {
		many := make([]api.Article, 30)
		p := Paginate(many, 1, 3) // 10 pages
		assert.Equal(t, []int{1, 2, 3}, p.Window)
		p = Paginate(many, 5, 3)
		assert.Equal(t, []int{3, 4, 5, 6, 7}, p.Window)
		p = Paginate(many, 10, 3)
		assert.Equal(t, []int{8, 9, 10}, p.Window)
	})
}
