package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/foliage/pkg/api"
)

// ErrNotFound is returned when the CMS answers 404 for an article ID.
var ErrNotFound = errors.New("article not found")

// Client talks to the headless CMS. The CMS is a black box: a JSON REST
// service with a list envelope and per-article detail endpoints.
type Client struct {
	baseURL      string
	endpoint     string
	apiKey       string
	apiKeyHeader string
	httpClient   *http.Client
}

func New(cfg *viper.Viper) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.GetString("cms.base_url")), "/")
	if base == "" {
		return nil, errors.New("cms.base_url is required")
	}
	timeout := cfg.GetDuration("cms.timeout")
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	endpoint := strings.Trim(cfg.GetString("cms.endpoint"), "/")
	if endpoint == "" {
		endpoint = "articles"
	}
	header := cfg.GetString("cms.api_key_header")
	if header == "" {
		header = "X-API-KEY"
	}
	return &Client{
		baseURL:      base,
		endpoint:     endpoint,
		apiKey:       cfg.GetString("cms.api_key"),
		apiKeyHeader: header,
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

// Query narrows a List call. Zero values are omitted from the request.
type Query struct {
	Limit   int
	Offset  int
	Q       string // full-text query evaluated by the CMS
	Orders  string // e.g. "-publishedAt"
	Filters string // CMS filter expression, e.g. "tags[contains]go"
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Orders != "" {
		v.Set("orders", q.Orders)
	}
	if q.Filters != "" {
		v.Set("filters", q.Filters)
	}
	return v
}

// List fetches one page of the article collection.
func (c *Client) List(ctx context.Context, q Query) (api.ArticleList, error) {
	u := c.baseURL + "/api/v1/" + c.endpoint
	if enc := q.values().Encode(); enc != "" {
		u += "?" + enc
	}
	body, code, err := c.execRequest(ctx, u)
	if err != nil {
		return api.ArticleList{}, fmt.Errorf("list articles: %w", err)
	}
	if code >= 300 {
		return api.ArticleList{}, statusError("list articles", code, body)
	}
	var list api.ArticleList
	if err := json.Unmarshal(body, &list); err != nil {
		return api.ArticleList{}, fmt.Errorf("decode article list: %w", err)
	}
	return list, nil
}

// ListAll pages through the whole collection with limit/offset until the
// reported totalCount is reached.
func (c *Client) ListAll(ctx context.Context, pageSize int) ([]api.Article, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	out := make([]api.Article, 0, pageSize)
	offset := 0
	for {
		list, err := c.List(ctx, Query{Limit: pageSize, Offset: offset, Orders: "-publishedAt"})
		if err != nil {
			return nil, err
		}
		if len(list.Contents) == 0 {
			break
		}
		out = append(out, list.Contents...)
		offset += len(list.Contents)
		if offset >= list.TotalCount {
			break
		}
	}
	return out, nil
}

// Get fetches a single article by ID.
func (c *Client) Get(ctx context.Context, id string) (api.Article, error) {
	if strings.TrimSpace(id) == "" {
		return api.Article{}, errors.New("missing article id")
	}
	u := c.baseURL + "/api/v1/" + c.endpoint + "/" + url.PathEscape(id)
	body, code, err := c.execRequest(ctx, u)
	if err != nil {
		return api.Article{}, fmt.Errorf("get article %s: %w", id, err)
	}
	if code == http.StatusNotFound {
		return api.Article{}, fmt.Errorf("get article %s: %w", id, ErrNotFound)
	}
	if code >= 300 {
		return api.Article{}, statusError("get article "+id, code, body)
	}
	var a api.Article
	if err := json.Unmarshal(body, &a); err != nil {
		return api.Article{}, fmt.Errorf("decode article %s: %w", id, err)
	}
	return a, nil
}

func (c *Client) execRequest(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return respBody, resp.StatusCode, nil
}

func statusError(op string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Errorf("%s: cms returned %d: %s", op, code, msg)
}
