package markdown

import "github.com/microcosm-cc/bluemonday"

// policy is bluemonday's UGC baseline widened just enough for the markup the
// renderer emits: code-block wrappers, the copy button, figures, lazy images,
// heading anchors, and decorated links.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowElements("figure", "figcaption", "button")
	p.AllowAttrs("class").OnElements("div", "span", "pre", "code", "a", "figure", "button")
	p.AllowAttrs("data-lang").OnElements("div")
	p.AllowAttrs("type", "aria-label").OnElements("button")
	p.AllowAttrs("loading", "decoding", "title").OnElements("img")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("target", "rel").OnElements("a")
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(false)

	return p
}

func sanitize(unsafe []byte) []byte {
	return policy.SanitizeBytes(unsafe)
}
