package markdown

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"net/url"
	"strings"

	bf "github.com/russross/blackfriday/v2"
)

// Version is folded into page ETags so cached pages die when the HTML the
// pipeline emits changes shape.
const Version = "3"

// Renderer converts CMS Markdown bodies to sanitized HTML. It keeps the
// stock blackfriday HTML renderer for the boring nodes and takes over code
// blocks, images, links, and promo paragraphs.
type Renderer struct {
	html  *bf.HTMLRenderer
	promo PromoRule
}

func NewRenderer(promo PromoRule) *Renderer {
	return &Renderer{
		html: bf.NewHTMLRenderer(bf.HTMLRendererParameters{
			Flags: bf.CommonHTMLFlags,
		}),
		promo: promo,
	}
}

// Render runs the full pipeline: parse, custom-render, sanitize.
// The result is safe to inject into templates as-is.
func (r *Renderer) Render(md []byte) template.HTML {
	unsafe := bf.Run(md,
		bf.WithRenderer(r),
		bf.WithExtensions(bf.CommonExtensions|bf.AutoHeadingIDs),
	)
	return template.HTML(sanitize(unsafe))
}

// RenderNode dispatches the nodes we customize and delegates the rest.
func (r *Renderer) RenderNode(w io.Writer, node *bf.Node, entering bool) bf.WalkStatus {
	switch node.Type {
	case bf.CodeBlock:
		r.renderCodeBlock(w, node)
		return bf.GoToNext
	case bf.Image:
		if entering {
			r.renderImage(w, node)
		}
		return bf.SkipChildren
	case bf.Link:
		return r.renderLink(w, node, entering)
	case bf.Paragraph:
		if link := promoCardLink(node, r.promo); link != nil {
			if entering {
				_, _ = io.WriteString(w, "\n<div class=\"promo-card\">")
			} else {
				_, _ = io.WriteString(w, "</div>\n")
			}
			return bf.GoToNext
		}
	}
	return r.html.RenderNode(w, node, entering)
}

func (r *Renderer) RenderHeader(w io.Writer, ast *bf.Node) {}
func (r *Renderer) RenderFooter(w io.Writer, ast *bf.Node) {}

// renderCodeBlock emits a wrapper with a language label, optional filename,
// and the copy-button hook, around the highlighted source. The fence info
// string may be "lang" or "lang:filename".
func (r *Renderer) renderCodeBlock(w io.Writer, node *bf.Node) {
	lang, filename := splitInfo(string(node.Info))

	_, _ = fmt.Fprintf(w, "\n<div class=\"code-block\" data-lang=\"%s\">\n", html.EscapeString(lang))
	_, _ = io.WriteString(w, "<div class=\"code-block-header\">")
	if filename != "" {
		_, _ = fmt.Fprintf(w, "<span class=\"code-filename\">%s</span>", html.EscapeString(filename))
	} else if lang != "" {
		_, _ = fmt.Fprintf(w, "<span class=\"code-lang\">%s</span>", html.EscapeString(lang))
	}
	_, _ = io.WriteString(w, "<button class=\"code-copy\" type=\"button\" aria-label=\"Copy code\">Copy</button>")
	_, _ = io.WriteString(w, "</div>\n")

	if err := highlight(w, lang, string(node.Literal)); err != nil {
		// Highlighting is best-effort; fall back to an escaped block.
		_, _ = fmt.Fprintf(w, "<pre><code class=\"language-%s\">%s</code></pre>\n",
			html.EscapeString(lang), html.EscapeString(string(node.Literal)))
	}
	_, _ = io.WriteString(w, "</div>\n")
}

// renderImage emits a lazy-loading figure. Alt text comes from the node's
// children, the optional title becomes the caption.
func (r *Renderer) renderImage(w io.Writer, node *bf.Node) {
	dest := html.EscapeString(string(node.LinkData.Destination))
	alt := html.EscapeString(childText(node))
	title := html.EscapeString(string(node.LinkData.Title))

	_, _ = io.WriteString(w, "<figure class=\"article-image\">")
	_, _ = fmt.Fprintf(w, "<img src=\"%s\" alt=\"%s\" loading=\"lazy\" decoding=\"async\"", dest, alt)
	if title != "" {
		_, _ = fmt.Fprintf(w, " title=\"%s\"", title)
	}
	_, _ = io.WriteString(w, ">")
	if title != "" {
		_, _ = fmt.Fprintf(w, "<figcaption>%s</figcaption>", title)
	}
	_, _ = io.WriteString(w, "</figure>")
}

func (r *Renderer) renderLink(w io.Writer, node *bf.Node, entering bool) bf.WalkStatus {
	if !entering {
		_, _ = io.WriteString(w, "</a>")
		return bf.GoToNext
	}
	dest := string(node.LinkData.Destination)

	var class string
	if r.promo.Matches(dest) {
		dest = r.promo.Decorate(dest)
		class = "promo-link"
	}

	_, _ = fmt.Fprintf(w, "<a href=\"%s\"", html.EscapeString(dest))
	if class != "" {
		_, _ = fmt.Fprintf(w, " class=\"%s\"", class)
	}
	if title := string(node.LinkData.Title); title != "" {
		_, _ = fmt.Fprintf(w, " title=\"%s\"", html.EscapeString(title))
	}
	if isExternal(dest) {
		_, _ = io.WriteString(w, " target=\"_blank\" rel=\"noopener noreferrer\"")
	}
	_, _ = io.WriteString(w, ">")
	return bf.GoToNext
}

// promoCardLink returns the paragraph's sole promo link, or nil when the
// paragraph is anything more than a single matching link.
func promoCardLink(p *bf.Node, promo PromoRule) *bf.Node {
	link := p.FirstChild
	if link == nil || link != p.LastChild || link.Type != bf.Link {
		return nil
	}
	if !promo.Matches(string(link.LinkData.Destination)) {
		return nil
	}
	return link
}

// childText collects the plain text under a node (used for image alt).
func childText(node *bf.Node) string {
	var buf bytes.Buffer
	node.Walk(func(n *bf.Node, entering bool) bf.WalkStatus {
		if entering && (n.Type == bf.Text || n.Type == bf.Code) {
			buf.Write(n.Literal)
		}
		return bf.GoToNext
	})
	return buf.String()
}

// splitInfo parses a fence info string of the form "lang" or "lang:filename".
func splitInfo(info string) (lang, filename string) {
	info = strings.TrimSpace(info)
	if info == "" {
		return "", ""
	}
	if i := strings.IndexByte(info, ':'); i >= 0 {
		return info[:i], info[i+1:]
	}
	return info, ""
}

func isExternal(dest string) bool {
	u, err := url.Parse(dest)
	return err == nil && u.Host != ""
}
