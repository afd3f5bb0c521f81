package googlebooks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/providers"
	books "google.golang.org/api/books/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleBooks is a metadata provider backed by the Google Books volumes API
type GoogleBooks struct {
	svc    *books.Service
	apiKey string
}

// Options configures the provider. Endpoint is only overridden in tests.
type Options struct {
	APIKey   string
	Timeout  time.Duration
	Endpoint string
}

// New returns a new Google Books provider
func New(ctx context.Context, opts Options) (*GoogleBooks, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	clientOpts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := books.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Books client: %w", err)
	}

	return &GoogleBooks{svc: svc, apiKey: opts.APIKey}, nil
}

func (g *GoogleBooks) Name() string {
	return "googlebooks"
}

// Lookup searches volumes by ISBN and uses the first match
func (g *GoogleBooks) Lookup(ctx context.Context, isbn string) (*providers.Metadata, error) {
	var callOpts []googleapi.CallOption
	if g.apiKey != "" {
		// the key travels as a query parameter since a custom HTTP client bypasses option.WithAPIKey
		callOpts = append(callOpts, googleapi.QueryParameter("key", g.apiKey))
	}

	slog.Debug("Google Books request", "isbn", isbn)

	vols, err := g.svc.Volumes.List("isbn:" + isbn).Context(ctx).Do(callOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query Google Books: %w", err)
	}

	if len(vols.Items) == 0 || vols.Items[0].VolumeInfo == nil {
		return nil, providers.ErrNotFound
	}

	info := vols.Items[0].VolumeInfo
	md := &providers.Metadata{
		Title:    info.Title,
		Authors:  info.Authors,
		Subjects: info.Categories,
	}
	if info.Subtitle != "" && info.Title != "" {
		md.Title = info.Title + ": " + info.Subtitle
	}
	return md, nil
}
