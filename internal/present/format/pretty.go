package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/foliage/pkg/api"
)

// WritePrettyArticle renders a single article with markdown formatting using glamour.
func WritePrettyArticle(w io.Writer, a api.Article) error {
	ts := a.PublishedAt.Local().Format(time.RFC3339)
	tags := joinTags(a.Tags)

	md := fmt.Sprintf(`# %s

> **ID:** %s | **Published:** %s
>
> **Tags:** %s

---

%s
`, a.Title, a.ID, ts, tags, strings.TrimSpace(a.Body))

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}
