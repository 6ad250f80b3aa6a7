package api

import "time"

// Article is a single published post as returned by the CMS.
// Field names follow the CMS payload (camelCase).
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Body        string    `json:"body"`
	Tags        []Tag     `json:"tags,omitempty"`
	Thumbnail   *Media    `json:"thumbnail,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	RevisedAt   time.Time `json:"revisedAt"`
}

// Tag is a CMS tag reference attached to an article.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Media is a CMS-hosted asset (thumbnail, inline image).
type Media struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ArticleList is the list envelope the CMS wraps collection responses in.
type ArticleList struct {
	Contents   []Article `json:"contents"`
	TotalCount int       `json:"totalCount"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

// TagNames returns the tag display names in payload order.
func (a Article) TagNames() []string {
	if len(a.Tags) == 0 {
		return nil
	}
	out := make([]string, len(a.Tags))
	for i, t := range a.Tags {
		out[i] = t.Name
	}
	return out
}

// HasTag reports whether the article carries the tag with the given ID.
func (a Article) HasTag(id string) bool {
	for _, t := range a.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}
