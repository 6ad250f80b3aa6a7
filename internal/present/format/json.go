package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/foliage/pkg/api"
)

func WriteJSONArticles(w io.Writer, articles []api.Article, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(articles)
}

func WriteJSONArticle(w io.Writer, a api.Article, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(a)
}
