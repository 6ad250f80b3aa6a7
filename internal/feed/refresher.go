package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/mithrel/foliage/pkg/api"
)

// Fetcher is the slice of the CMS client the refresher needs.
type Fetcher interface {
	ListAll(ctx context.Context, pageSize int) ([]api.Article, error)
}

// Cache persists the last good article set across restarts.
type Cache interface {
	UpsertArticles(ctx context.Context, articles []api.Article) error
	ListArticles(ctx context.Context) ([]api.Article, error)
	LastRefreshed(ctx context.Context) (time.Time, error)
}

// Refresher keeps an in-memory article snapshot fed from the CMS, falling
// back to the sqlite cache when the CMS is unreachable. Handlers read the
// snapshot; only the refresh loop writes it.
type Refresher struct {
	cfg   *viper.Viper
	cms   Fetcher
	cache Cache

	mu          sync.RWMutex
	snapshot    []api.Article
	refreshedAt time.Time
}

func NewRefresher(cfg *viper.Viper, cms Fetcher, cache Cache) *Refresher {
	return &Refresher{cfg: cfg, cms: cms, cache: cache}
}

// Bootstrap loads the cached article set so the site can serve immediately,
// before the first CMS round-trip completes. A cold cache is not an error.
func (r *Refresher) Bootstrap(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	articles, err := r.cache.ListArticles(ctx)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return nil
	}
	at, _ := r.cache.LastRefreshed(ctx)
	r.swap(articles, at)
	log.Printf("feed: bootstrapped %d articles from cache (refreshed %s)", len(articles), at.Format(time.RFC3339))
	return nil
}

// RefreshNow fetches the full article list from the CMS, persists it, and
// swaps the snapshot.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	pageSize := r.cfg.GetInt("cms.page_size")
	articles, err := r.cms.ListAll(ctx, pageSize)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if r.cache != nil {
		if err := r.cache.UpsertArticles(ctx, articles); err != nil {
			// The snapshot is still good; losing the cache only hurts the
			// next restart.
			log.Printf("feed: cache write failed: %v", err)
		}
	}
	r.swap(SortBy(articles, "-published"), now)
	log.Printf("feed: refreshed %d articles", len(articles))
	return nil
}

// RunBackground refreshes on an interval, backing off on consecutive
// failures along a fibonacci curve capped at refresh.max_backoff. The
// caller does the initial fetch; the loop sleeps a full interval before
// its first one.
func (r *Refresher) RunBackground(ctx context.Context) {
	base := r.cfg.GetDuration("refresh.interval")
	if base == 0 {
		base = 5 * time.Minute
	}
	fib := func() func() int {
		a, b := 1, 1
		return func() int { a, b = b, a+b; return a }
	}()
	next := base
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(next):
		}
		if err := r.RefreshNow(ctx); err != nil {
			log.Printf("feed: refresh failed: %v", err)
			step := fib()
			max := r.cfg.GetDuration("refresh.max_backoff")
			if max == 0 {
				max = 30 * time.Minute
			}
			next = base * time.Duration(step)
			if next > max {
				next = max
			}
		} else {
			next = base
			fib = func() func() int { a, b := 1, 1; return func() int { a, b = b, a+b; return a } }()
		}
	}
}

func (r *Refresher) swap(articles []api.Article, at time.Time) {
	r.mu.Lock()
	r.snapshot = articles
	r.refreshedAt = at
	r.mu.Unlock()
}

// Snapshot returns the current article set, newest first.
func (r *Refresher) Snapshot() []api.Article {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Article looks an article up in the snapshot.
func (r *Refresher) Article(id string) (api.Article, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.snapshot {
		if a.ID == id {
			return a, true
		}
	}
	return api.Article{}, false
}

// LastRefreshed reports when the snapshot was last confirmed against the CMS.
func (r *Refresher) LastRefreshed() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshedAt
}

// Stale reports whether the snapshot has outlived refresh.stale_after,
// meaning the CMS has been unreachable for a while and readers should see
// the stale banner.
func (r *Refresher) Stale() bool {
	after := r.cfg.GetDuration("refresh.stale_after")
	if after == 0 {
		after = time.Hour
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.refreshedAt.IsZero() {
		return len(r.snapshot) > 0
	}
	return time.Since(r.refreshedAt) > after
}
