package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/foliage/pkg/api"
)

// WriteNDJSONArticles writes articles as newline-delimited JSON objects.
func WriteNDJSONArticles(w io.Writer, articles []api.Article) error {
	enc := json.NewEncoder(w)
	for _, a := range articles {
		if err := enc.Encode(a); err != nil {
			return err
		}
	}
	return nil
}
