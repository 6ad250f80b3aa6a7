package server

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/foliage/internal/feed"
	"github.com/mithrel/foliage/internal/markdown"
	"github.com/mithrel/foliage/pkg/api"
)

const viewCookie = "foliage_view"

// Server renders the blog over the article snapshot kept by the feed.
type Server struct {
	cfg      *viper.Viper
	feed     *feed.Refresher
	renderer *markdown.Renderer
	tmpl     *templates
}

func New(cfg *viper.Viper, f *feed.Refresher, r *markdown.Renderer) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, feed: f, renderer: r, tmpl: tmpl}, nil
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/static/", staticHandler())
	mux.HandleFunc("/articles/{id}", s.logged(s.handleArticle))
	mux.HandleFunc("/{$}", s.logged(s.handleIndex))
	return mux
}

// logged wraps a handler with request logging (method, path, status, duration).
func (s *Server) logged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.RequestURI(), sw.status, time.Since(start).Round(time.Millisecond))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	articles := s.feed.Snapshot()
	if len(articles) == 0 && s.feed.LastRefreshed().IsZero() {
		// Nothing fetched yet and nothing cached: the CMS is down.
		s.renderError(w, http.StatusServiceUnavailable, "The article feed is temporarily unavailable.")
		return
	}

	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	tagID := strings.TrimSpace(q.Get("tag"))
	order := q.Get("order")
	page, _ := strconv.Atoi(q.Get("page"))

	filtered := feed.Search(articles, query)
	filtered = feed.FilterTag(filtered, tagID)
	filtered = feed.SortBy(filtered, order)
	pg := feed.Paginate(filtered, page, s.cfg.GetInt("site.per_page"))

	view := s.resolveView(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	s.tmpl.render(w, "index.html", indexData{
		pageData: s.pageData(),
		Page:     pg,
		Query:    query,
		TagID:    tagID,
		Order:    order,
		View:     view,
		Tags:     distinctTags(articles),
		PageLink: pageLinker(query, tagID, order, view),
	})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")

	a, ok := s.feed.Article(id)
	if !ok {
		s.renderError(w, http.StatusNotFound, "No such article.")
		return
	}

	// Content hash + renderer version: the page only changes when one of
	// them does.
	etag := `"` + a.Hash() + "-" + markdown.Version + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	s.tmpl.render(w, "article.html", articleData{
		pageData: s.pageData(),
		Article:  a,
		Body:     s.renderer.Render([]byte(a.Body)),
	})
}

// resolveView picks the index layout: explicit ?view= wins and is persisted
// in a cookie, then the cookie, then the configured default.
func (s *Server) resolveView(w http.ResponseWriter, r *http.Request) string {
	view := r.URL.Query().Get("view")
	switch view {
	case "card", "list":
		http.SetCookie(w, &http.Cookie{
			Name:     viewCookie,
			Value:    view,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
		return view
	}
	if c, err := r.Cookie(viewCookie); err == nil {
		switch c.Value {
		case "card", "list":
			return c.Value
		}
	}
	if v := s.cfg.GetString("site.default_view"); v == "list" {
		return "list"
	}
	return "card"
}

func (s *Server) pageData() pageData {
	return pageData{
		SiteTitle:       s.cfg.GetString("site.title"),
		SiteDescription: s.cfg.GetString("site.description"),
		Stale:           s.feed.Stale(),
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	s.tmpl.render(w, "error.html", errorData{
		pageData: s.pageData(),
		Status:   status,
		Message:  msg,
	})
}

// etagMatches implements the If-None-Match comparison: "*" matches any
// current representation, otherwise the listed entity-tags are compared
// weakly (W/ prefixes stripped).
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}

// distinctTags collects the tag set across the snapshot, first-seen order.
func distinctTags(articles []api.Article) []api.Tag {
	seen := make(map[string]struct{})
	var out []api.Tag
	for _, a := range articles {
		for _, t := range a.Tags {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// pageLinker builds index URLs that preserve the current query/filter state.
func pageLinker(query, tagID, order, view string) func(page int) string {
	return func(page int) string {
		var b strings.Builder
		b.WriteString("/?page=")
		b.WriteString(strconv.Itoa(page))
		if query != "" {
			b.WriteString("&q=")
			b.WriteString(url.QueryEscape(query))
		}
		if tagID != "" {
			b.WriteString("&tag=")
			b.WriteString(url.QueryEscape(tagID))
		}
		if order != "" {
			b.WriteString("&order=")
			b.WriteString(url.QueryEscape(order))
		}
		if view != "" {
			b.WriteString("&view=")
			b.WriteString(view)
		}
		return b.String()
	}
}
