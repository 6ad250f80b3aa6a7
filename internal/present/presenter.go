package present

import (
	"context"
	"io"

	"github.com/mithrel/foliage/internal/present/format"
	"github.com/mithrel/foliage/internal/present/tui"
	"github.com/mithrel/foliage/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeTUI
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
}

// ParseMode parses a string like "plain", "pretty", "json", "ndjson", "tui".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "tui":
		return ModeTUI, true
	default:
		return ModePlain, false
	}
}

// RenderArticles renders an article list according to options. In TUI mode
// the selected article is shown pretty-printed after the table closes.
func RenderArticles(ctx context.Context, w io.Writer, articles []api.Article, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONArticles(w, articles, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONArticles(w, articles)
	case ModeTUI:
		sel, err := tui.Browse(ctx, articles)
		if err != nil {
			return err
		}
		if sel != nil {
			return format.WritePrettyArticle(w, *sel)
		}
		return nil
	default:
		return format.WritePlainArticles(w, articles, opts.Headers)
	}
}

// RenderArticle renders a single article according to options.
func RenderArticle(ctx context.Context, w io.Writer, a api.Article, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONArticle(w, a, opts.JSONIndent)
	case ModePretty, ModeTUI:
		return format.WritePrettyArticle(w, a)
	default:
		return format.WritePlainArticle(w, a, opts.Headers)
	}
}
