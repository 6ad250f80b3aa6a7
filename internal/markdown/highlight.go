package markdown

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// formatter emits class-based markup so the palette lives in the stylesheet,
// not inline styles (which the sanitizer strips anyway).
var formatter = chromahtml.New(chromahtml.WithClasses(true))

var highlightStyle = styles.Get("github")

// highlight writes the source as chroma-highlighted HTML. An unknown or
// empty language returns an error so the caller can fall back to a plain
// escaped block.
func highlight(w io.Writer, lang, source string) error {
	if lang == "" {
		return fmt.Errorf("no language")
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return fmt.Errorf("no lexer for %q", lang)
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	return formatter.Format(w, highlightStyle, it)
}
