package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultRedditBaseURL = "https://www.reddit.com"

// RedditPost is one raw listing entry before keyword filtering.
type RedditPost struct {
	ID        string
	Subreddit string
	Title     string
	SelfText  string
	CreatedAt time.Time
}

// FullText concatenates title and body so a keyword match in either field
// counts.
func (p RedditPost) FullText() string {
	if p.SelfText == "" {
		return p.Title
	}
	return p.Title + " " + p.SelfText
}

// PostSource fetches recent posts for a community. The Reddit client and
// the test mock both satisfy it.
type PostSource interface {
	FetchRecentPosts(ctx context.Context, subreddit string, since time.Time) ([]RedditPost, error)
}

// RedditClient reads the public /new listing of a subreddit.
type RedditClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRedditClient creates a listing client. userAgent is required by the
// Reddit API guidelines; an empty value gets a generic one.
func NewRedditClient(userAgent string, logger *zap.Logger) *RedditClient {
	if userAgent == "" {
		userAgent = "stance-pipeline-collector/1.0"
	}
	return &RedditClient{
		baseURL:    defaultRedditBaseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Subreddit  string  `json:"subreddit"`
				Title      string  `json:"title"`
				SelfText   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchRecentPosts returns the subreddit's newest posts created after
// since, oldest first.
func (c *RedditClient) FetchRecentPosts(ctx context.Context, subreddit string, since time.Time) ([]RedditPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/new.json?%s", c.baseURL, url.PathEscape(subreddit),
		url.Values{"limit": {"100"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch r/%s: unexpected status %d", subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s listing: %w", subreddit, err)
	}

	posts := make([]RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		created := time.Unix(int64(child.Data.CreatedUTC), 0).UTC()
		if !created.After(since) {
			continue
		}
		posts = append(posts, RedditPost{
			ID:        child.Data.ID,
			Subreddit: child.Data.Subreddit,
			Title:     child.Data.Title,
			SelfText:  child.Data.SelfText,
			CreatedAt: created,
		})
	}

	// Listing comes newest first; callers track progress oldest first.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}

	c.logger.Debug("fetched subreddit listing",
		zap.String("subreddit", subreddit), zap.Int("posts", len(posts)))
	return posts, nil
}

// MockPostSource replays canned posts per subreddit in tests.
type MockPostSource struct {
	Posts map[string][]RedditPost
	Err   error
}

func (m *MockPostSource) FetchRecentPosts(_ context.Context, subreddit string, since time.Time) ([]RedditPost, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var posts []RedditPost
	for _, post := range m.Posts[subreddit] {
		if post.CreatedAt.After(since) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}
