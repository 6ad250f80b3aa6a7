package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPromo() PromoRule {
	return PromoRule{
		Domains:  []string{"shop.example.com"},
		Source:   "blog",
		Campaign: "spring",
	}
}

func TestRenderCodeBlock(t *testing.T) {
	r := NewRenderer(PromoRule{})

	t.Run("highlighted fenced block", func(t *testing.T) {
		out := string(r.Render([]byte("```go\npackage main\n```\n")))
		assert.Contains(t, out, `class="code-block"`)
		assert.Contains(t, out, `data-lang="go"`)
		assert.Contains(t, out, `class="code-lang"`)
		assert.Contains(t, out, "code-copy")
		assert.Contains(t, out, "Copy")
	})

	t.Run("filename label from info string", func(t *testing.T) {
		out := string(r.Render([]byte("```go:main.go\npackage main\n```\n")))
		assert.Contains(t, out, `data-lang="go"`)
		assert.Contains(t, out, `<span class="code-filename">main.go</span>`)
	})

	t.Run("unknown language falls back to escaped pre", func(t *testing.T) {
		out := string(r.Render([]byte("```zzzlang\n<b>raw</b>\n```\n")))
		assert.Contains(t, out, "language-zzzlang")
		assert.Contains(t, out, "&lt;b&gt;raw&lt;/b&gt;")
		assert.NotContains(t, out, "<b>raw</b>")
	})

	t.Run("no info string still gets the wrapper", func(t *testing.T) {
		out := string(r.Render([]byte("```\nplain text\n```\n")))
		assert.Contains(t, out, `class="code-block"`)
		assert.Contains(t, out, "plain text")
	})
}

func TestRenderImage(t *testing.T) {
	r := NewRenderer(PromoRule{})

	t.Run("figure with lazy loading", func(t *testing.T) {
		out := string(r.Render([]byte(`![diagram](https://images.example.com/d.png)`)))
		assert.Contains(t, out, "<figure")
		assert.Contains(t, out, `loading="lazy"`)
		assert.Contains(t, out, `decoding="async"`)
		assert.Contains(t, out, `alt="diagram"`)
	})

	t.Run("title becomes figcaption", func(t *testing.T) {
		out := string(r.Render([]byte(`![d](https://images.example.com/d.png "The caption")`)))
		assert.Contains(t, out, "<figcaption>The caption</figcaption>")
	})
}

func TestRenderLink(t *testing.T) {
	r := NewRenderer(testPromo())

	t.Run("external link opens in new tab", func(t *testing.T) {
		out := string(r.Render([]byte(`some text with [a link](https://other.example.org/post) inline`)))
		assert.Contains(t, out, `target="_blank"`)
		assert.Contains(t, out, "noopener")
	})

	t.Run("relative link passes through untouched", func(t *testing.T) {
		out := string(r.Render([]byte(`see [the about page](/about) here`)))
		assert.Contains(t, out, `href="/about"`)
		assert.NotContains(t, out, "target=")
	})

	t.Run("promo link gets campaign params and class", func(t *testing.T) {
		out := string(r.Render([]byte(`Buy [the thing](https://shop.example.com/item) today`)))
		assert.Contains(t, out, "promo-link")
		assert.Contains(t, out, "utm_source=blog")
		assert.Contains(t, out, "utm_campaign=spring")
		assert.NotContains(t, out, "promo-card", "inline promo link must not become a card")
	})

	t.Run("lone promo paragraph becomes a card", func(t *testing.T) {
		out := string(r.Render([]byte("intro paragraph\n\n[Get it here](https://shop.example.com/item)\n\noutro\n")))
		assert.Contains(t, out, `<div class="promo-card">`)
		assert.Contains(t, out, "promo-link")
	})

	t.Run("subdomain of promo host matches", func(t *testing.T) {
		rule := PromoRule{Domains: []string{"example.com"}, Source: "blog"}
		rr := NewRenderer(rule)
		out := string(rr.Render([]byte(`x [y](https://store.example.com/z) w`)))
		assert.Contains(t, out, "promo-link")
	})
}

func TestRenderHeadingAnchors(t *testing.T) {
	r := NewRenderer(PromoRule{})
	out := string(r.Render([]byte("## Getting Started\n\nbody\n")))
	assert.Contains(t, out, `id="getting-started"`)
}

func TestRenderSanitizes(t *testing.T) {
	r := NewRenderer(PromoRule{})

	t.Run("script is stripped", func(t *testing.T) {
		out := string(r.Render([]byte("hello\n\n<script>alert(1)</script>\n")))
		assert.NotContains(t, out, "<script")
	})

	t.Run("event handlers are stripped", func(t *testing.T) {
		out := string(r.Render([]byte(`<img src="x" onerror="alert(1)">`)))
		assert.NotContains(t, out, "onerror")
	})

	t.Run("javascript urls are stripped", func(t *testing.T) {
		out := string(r.Render([]byte(`[x](javascript:alert(1))`)))
		assert.NotContains(t, strings.ToLower(out), "javascript:")
	})
}

func TestSplitInfo(t *testing.T) {
	cases := []struct {
		info, lang, filename string
	}{
		{"", "", ""},
		{"go", "go", ""},
		{"go:main.go", "go", "main.go"},
		{"ts:src/app.ts", "ts", "src/app.ts"},
	}
	for _, c := range cases {
		lang, filename := splitInfo(c.info)
		require.Equal(t, c.lang, lang, "info %q", c.info)
		require.Equal(t, c.filename, filename, "info %q", c.info)
	}
}
