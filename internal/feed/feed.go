package feed

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mithrel/foliage/pkg/api"
)

// Search filters articles by a free-text query: fuzzy match over title and
// tag names, unioned with a case-insensitive substring match over the body.
// Input order is preserved.
func Search(articles []api.Article, q string) []api.Article {
	q = strings.TrimSpace(q)
	if q == "" {
		return articles
	}

	keep := make(map[int]struct{}, len(articles))

	haystack := make([]string, len(articles))
	for i, a := range articles {
		haystack[i] = a.Title + " " + strings.Join(a.TagNames(), " ")
	}
	for _, m := range fuzzy.Find(q, haystack) {
		keep[m.Index] = struct{}{}
	}

	lq := strings.ToLower(q)
	for i, a := range articles {
		if _, ok := keep[i]; ok {
			continue
		}
		if strings.Contains(strings.ToLower(a.Body), lq) {
			keep[i] = struct{}{}
		}
	}

	out := make([]api.Article, 0, len(keep))
	for i, a := range articles {
		if _, ok := keep[i]; ok {
			out = append(out, a)
		}
	}
	return out
}

// FilterTag keeps articles carrying the tag ID. Empty ID keeps everything.
func FilterTag(articles []api.Article, tagID string) []api.Article {
	if tagID == "" {
		return articles
	}
	out := make([]api.Article, 0, len(articles))
	for _, a := range articles {
		if a.HasTag(tagID) {
			out = append(out, a)
		}
	}
	return out
}

// SortBy orders articles by publish or revision time. Recognized orders are
// "published", "-published", "revised", "-revised"; anything else falls back
// to "-published" (newest first).
func SortBy(articles []api.Article, order string) []api.Article {
	out := append([]api.Article(nil), articles...)
	desc := true
	field := "published"
	switch order {
	case "published":
		desc = false
	case "revised":
		field, desc = "revised", false
	case "-revised":
		field = "revised"
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].PublishedAt, out[j].PublishedAt
		if field == "revised" {
			ti, tj = out[i].RevisedAt, out[j].RevisedAt
		}
		if desc {
			return ti.After(tj)
		}
		return ti.Before(tj)
	})
	return out
}

// Page is one window into a paginated article list.
type Page struct {
	Items      []api.Article
	Number     int
	PerPage    int
	TotalItems int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	Window     []int // numbered-page strip around Number
}

// Paginate slices one page out of the list. Out-of-range pages clamp into
// [1, TotalPages]; an empty list yields a single empty page 1.
func Paginate(articles []api.Article, page, perPage int) Page {
	if perPage <= 0 {
		perPage = 12
	}
	total := len(articles)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      articles[start:end],
		Number:     page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Window:     pageWindow(page, totalPages, 2),
	}
}

// pageWindow returns the page numbers to show around current (current ± radius,
// clamped to the valid range).
func pageWindow(current, totalPages, radius int) []int {
	lo := current - radius
	if lo < 1 {
		lo = 1
	}
	hi := current + radius
	if hi > totalPages {
		hi = totalPages
	}
	out := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	return out
}
