package ingest

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

// PostSaver persists collected posts. *db.Store satisfies it.
type PostSaver interface {
	SaveUnlabeledTexts(texts []*stance.UnlabeledText) error
}

// KeywordProvider serves the active keyword list. The hot-reloading
// KeywordWatcher satisfies it; tests use a static list.
type KeywordProvider interface {
	Current() *Keywords
}

// CollectorConfig tunes the polling collector.
type CollectorConfig struct {
	Subreddits []string
	Interval   time.Duration
	CacheSize  int
}

// CollectStats counts a collector's lifetime activity.
type CollectStats struct {
	Fetched int64 `json:"fetched"`
	Matched int64 `json:"matched"`
	Saved   int64 `json:"saved"`
	Skipped int64 `json:"skipped"`
}

// Collector polls subreddit listings, keeps keyword-matching posts, and
// saves them. Listings overlap between polls, so an LRU of recently seen
// post IDs keeps re-fetched posts from being processed twice.
type Collector struct {
	config   CollectorConfig
	source   PostSource
	keywords KeywordProvider
	saver    PostSaver
	logger   *zap.Logger

	seen  *lru.Cache[string, struct{}]
	since map[string]time.Time

	stats     CollectStats
	statsLock sync.RWMutex
}

// NewCollector builds a collector. Interval defaults to 5 minutes and the
// seen cache to 100k IDs.
func NewCollector(config CollectorConfig, source PostSource, keywords KeywordProvider, saver PostSaver, logger *zap.Logger) (*Collector, error) {
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}
	if config.CacheSize == 0 {
		config.CacheSize = 100000
	}

	seen, err := lru.New[string, struct{}](config.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Collector{
		config:   config,
		source:   source,
		keywords: keywords,
		saver:    saver,
		logger:   logger,
		seen:     seen,
		since:    make(map[string]time.Time),
	}, nil
}

// Run polls every configured subreddit once immediately, then on each tick,
// until the context is canceled. A failed subreddit never stops the loop.
func (c *Collector) Run(ctx context.Context) {
	c.collectAll(ctx)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("collector stopped")
			return
		case <-ticker.C:
			c.collectAll(ctx)
		}
	}
}

func (c *Collector) collectAll(ctx context.Context) {
	for _, subreddit := range c.config.Subreddits {
		if ctx.Err() != nil {
			return
		}
		if err := c.CollectSubreddit(ctx, subreddit); err != nil {
			c.logger.Warn("collection failed",
				zap.String("subreddit", subreddit), zap.Error(err))
		}
	}
}

// CollectSubreddit fetches one subreddit's posts since the last poll,
// filters them by keyword, and saves the matches.
func (c *Collector) CollectSubreddit(ctx context.Context, subreddit string) error {
	posts, err := c.source.FetchRecentPosts(ctx, subreddit, c.since[subreddit])
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	keywords := c.keywords.Current()
	var batch []*stance.UnlabeledText
	var skipped int64
	for _, post := range posts {
		if _, dup := c.seen.Get(post.ID); dup {
			skipped++
			continue
		}
		c.seen.Add(post.ID, struct{}{})

		matched := keywords.Matching(post.FullText())
		if len(matched) == 0 {
			skipped++
			continue
		}
		batch = append(batch, &stance.UnlabeledText{
			ID:              post.ID,
			Text:            Clean(post.FullText()),
			Subreddit:       post.Subreddit,
			MatchedKeywords: matched,
			CreatedAt:       post.CreatedAt,
		})
	}

	if len(batch) > 0 {
		if err := c.saver.SaveUnlabeledTexts(batch); err != nil {
			return err
		}
	}

	// Posts come oldest first, so the last one is the new high-water mark.
	c.since[subreddit] = posts[len(posts)-1].CreatedAt

	c.statsLock.Lock()
	c.stats.Fetched += int64(len(posts))
	c.stats.Matched += int64(len(batch))
	c.stats.Saved += int64(len(batch))
	c.stats.Skipped += skipped
	c.statsLock.Unlock()

	c.logger.Info("collected subreddit",
		zap.String("subreddit", subreddit),
		zap.Int("fetched", len(posts)), zap.Int("saved", len(batch)))
	return nil
}

// Stats returns a snapshot of the collection counters.
func (c *Collector) Stats() CollectStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}
