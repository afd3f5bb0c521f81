package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/providers"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://openlibrary.org"

// Client looks up books through the Open Library Books API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RPS caps outbound requests per second; Open Library asks clients to stay near 1
	RPS float64
}

// NewClient creates a new Open Library client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "shelfscan"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 1
	}

	return &Client{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), 1),
	}
}

// BookData matches the per-ISBN object in api/books?jscmd=data
type BookData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Authors  []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"authors"`
	Subjects []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"subjects"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	PublishDate string `json:"publish_date"`
}

func (c *Client) Name() string {
	return "openlibrary"
}

// Lookup fetches metadata for a single ISBN. One request is made; failures are returned as is.
func (c *Client) Lookup(ctx context.Context, isbn string) (*providers.Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	bibkey := "ISBN:" + isbn
	query := url.Values{}
	query.Set("bibkeys", bibkey)
	query.Set("jscmd", "data")
	query.Set("format", "json")
	u := c.baseURL + "/api/books?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Open Library request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("Open Library request", "isbn", isbn)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query Open Library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("open Library API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result map[string]BookData
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Open Library response: %w", err)
	}

	book, ok := result[bibkey]
	if !ok {
		return nil, providers.ErrNotFound
	}

	md := &providers.Metadata{Title: book.Title}
	if book.Subtitle != "" && book.Title != "" {
		md.Title = book.Title + ": " + book.Subtitle
	}
	for _, a := range book.Authors {
		md.Authors = append(md.Authors, a.Name)
	}
	for _, s := range book.Subjects {
		md.Subjects = append(md.Subjects, s.Name)
	}
	return md, nil
}
