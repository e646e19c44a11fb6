// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package forum fetches discussion threads from a Discourse forum and
// assembles them into single-document PDF artifacts.
// Implements: prd005-forum (R1-R4);
//
//	docs/ARCHITECTURE § Forum Threads.
package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/pdiddy/filings-engine/internal/httputil"
	"github.com/pdiddy/filings-engine/pkg/types"
)

// forumBaseURL is the forum origin. Declared as a var so tests can
// substitute an httptest server.
var forumBaseURL = "https://forum.valuepickr.com"

// defaultPageSize is the posts-per-page request size when the config leaves
// it unset.
const defaultPageSize = 50

var threadURLRe = regexp.MustCompile(`/t/([^/]+)/(\d+)`)

// ParseThreadURL extracts the slug and topic ID from a thread URL. Trailing
// post anchors (".../20319/123") are accepted and ignored.
func ParseThreadURL(rawURL string) (slug string, topicID int, err error) {
	m := threadURLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", 0, fmt.Errorf("invalid thread URL %q: expected .../t/<slug>/<id>", rawURL)
	}
	topicID, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid topic ID in %q: %w", rawURL, err)
	}
	return m[1], topicID, nil
}

// TopicLink is one entry of the topic's link-tracking metadata.
type TopicLink struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Clicks     int    `json:"clicks"`
	PostNumber int    `json:"post_number"`
	Internal   bool   `json:"internal"`
	Reflection bool   `json:"reflection"`
}

// Topic is the thread's metadata: title plus the tracked links.
type Topic struct {
	Title string
	Slug  string
	ID    int
	Links []TopicLink
}

// Post is one message of the thread. Cooked is the forum's rendered HTML.
type Post struct {
	Number    int
	CreatedAt time.Time
	Cooked    string
	Hidden    bool
}

// Client talks to the forum's JSON API.
type Client struct {
	http *http.Client
	cfg  types.ForumConfig
}

// NewClient constructs a forum client.
func NewClient(client *http.Client, cfg types.ForumConfig) *Client {
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	return &Client{http: client, cfg: cfg}
}

// PageSize is the posts-per-page the client requests.
func (c *Client) PageSize() int { return c.cfg.PageSize }

// FetchTopic retrieves the thread's metadata document.
func (c *Client) FetchTopic(ctx context.Context, slug string, topicID int) (*Topic, error) {
	rawURL := fmt.Sprintf("%s/t/%s/%d.json", forumBaseURL, url.PathEscape(slug), topicID)
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Title   string `json:"title"`
		Details struct {
			Links []TopicLink `json:"links"`
		} `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &types.ThreadFetchError{URL: rawURL, Err: err}
	}
	return &Topic{
		Title: payload.Title,
		Slug:  slug,
		ID:    topicID,
		Links: payload.Details.Links,
	}, nil
}

// FetchPosts retrieves one page of posts starting at offset.
func (c *Client) FetchPosts(ctx context.Context, topicID, offset int) ([]Post, error) {
	q := url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(c.cfg.PageSize)},
	}
	rawURL := fmt.Sprintf("%s/t/%d/posts.json?%s", forumBaseURL, topicID, q.Encode())
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		PostStream struct {
			Posts []struct {
				PostNumber int    `json:"post_number"`
				CreatedAt  string `json:"created_at"`
				Cooked     string `json:"cooked"`
				Hidden     bool   `json:"hidden"`
			} `json:"posts"`
		} `json:"post_stream"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &types.ThreadFetchError{URL: rawURL, Err: err}
	}

	posts := make([]Post, 0, len(payload.PostStream.Posts))
	for _, p := range payload.PostStream.Posts {
		created, _ := time.Parse(time.RFC3339, p.CreatedAt)
		posts = append(posts, Post{
			Number:    p.PostNumber,
			CreatedAt: created,
			Cooked:    p.Cooked,
			Hidden:    p.Hidden,
		})
	}
	return posts, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.ThreadFetchError{URL: rawURL, Err: err}
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Api-Key", c.cfg.APIKey)
		req.Header.Set("Api-Username", c.cfg.APIUsername)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req)
	if err != nil {
		return nil, &types.ThreadFetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.ThreadFetchError{URL: rawURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.ThreadFetchError{URL: rawURL, Err: err}
	}
	return body, nil
}
