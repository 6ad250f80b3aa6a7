package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mithrel/foliage/pkg/api"
)

// TSV columns: id, title, published, tags
var headerLine = "id\ttitle\tpublished\ttags\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func joinTags(tags []api.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	// Join with commas; no spaces
	var b strings.Builder
	for i, t := range tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Name)
	}
	return b.String()
}

func WritePlainArticles(w io.Writer, articles []api.Article, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, a := range articles {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\n",
			esc(a.ID), esc(a.Title), a.PublishedAt.Local().Format(time.DateOnly), esc(joinTags(a.Tags)))
		_, _ = io.WriteString(tw, line)
	}
	return tw.Flush()
}

func WritePlainArticle(w io.Writer, a api.Article, headers bool) error {
	return WritePlainArticles(w, []api.Article{a}, headers)
}
