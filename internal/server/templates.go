package server

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/mithrel/foliage/internal/feed"
	"github.com/mithrel/foliage/pkg/api"
)

//go:embed web/templates/*.html
var templateFS embed.FS

//go:embed web/static
var staticFS embed.FS

type templates struct {
	t *template.Template
}

func parseTemplates() (*templates, error) {
	t := template.New("").Funcs(template.FuncMap{
		"date": func(ts time.Time) string {
			return ts.Local().Format("January 2, 2006")
		},
		"shortdate": func(ts time.Time) string {
			return ts.Local().Format("2006-01-02")
		},
		"add1": func(n int) int { return n + 1 },
		"sub1": func(n int) int { return n - 1 },
	})
	t, err := t.ParseFS(templateFS, "web/templates/*.html")
	if err != nil {
		return nil, err
	}
	return &templates{t: t}, nil
}

func (ts *templates) render(w io.Writer, name string, data any) {
	if err := ts.t.ExecuteTemplate(w, name, data); err != nil {
		// Headers are gone by now; log and move on.
		log.Printf("template %s: %v", name, err)
	}
}

type pageData struct {
	SiteTitle       string
	SiteDescription string
	Stale           bool
}

type indexData struct {
	pageData
	Page     feed.Page
	Query    string
	TagID    string
	Order    string
	View     string
	Tags     []api.Tag
	PageLink func(page int) string
}

type articleData struct {
	pageData
	Article api.Article
	Body    template.HTML
}

type errorData struct {
	pageData
	Status  int
	Message string
}

// staticHandler serves the embedded assets with a long client cache.
func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		// embed guarantees the directory exists; this is unreachable.
		panic(err)
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
