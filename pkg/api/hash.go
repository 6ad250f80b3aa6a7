package api

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of the article content.
// It covers ID, Title, Description, Body, Tags (sorted), Thumbnail URL,
// and both timestamps; two articles hash equal iff the rendered page
// would be identical, so the value doubles as an ETag and as the cache
// change marker.
func (a Article) Hash() string {
	h := blake3.New()

	h.Write([]byte(a.ID))
	h.Write([]byte{0})

	h.Write([]byte(a.Title))
	h.Write([]byte{0})

	h.Write([]byte(a.Description))
	h.Write([]byte{0})

	h.Write([]byte(a.Body))
	h.Write([]byte{0})

	// Sort tags for determinism
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, t.ID+"="+strings.ToLower(t.Name))
	}
	sort.Strings(tags)
	for _, t := range tags {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	h.Write([]byte{0}) // End of tags

	if a.Thumbnail != nil {
		h.Write([]byte(a.Thumbnail.URL))
	}
	h.Write([]byte{0})

	// Timestamps in RFC3339Nano (UTC)
	if !a.PublishedAt.IsZero() {
		h.Write([]byte(a.PublishedAt.UTC().Format(timeRFC3339Nano)))
	}
	h.Write([]byte{0})

	if !a.RevisedAt.IsZero() {
		h.Write([]byte(a.RevisedAt.UTC().Format(timeRFC3339Nano)))
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

const timeRFC3339Nano = "2006-01-02T15:04:05.999999999Z07:00"
