package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duneResponse = `{
  "ISBN:9780441013593": {
    "title": "Dune",
    "authors": [{"name": "Frank Herbert", "url": "https://openlibrary.org/authors/OL79034A/Frank_Herbert"}],
    "subjects": [
      {"name": "Science fiction", "url": "https://openlibrary.org/subjects/science_fiction"},
      {"name": "Dune (Imaginary place)", "url": "https://openlibrary.org/subjects/place:dune"}
    ],
    "publishers": [{"name": "Ace Books"}],
    "publish_date": "2005"
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Options{BaseURL: server.URL, UserAgent: "shelfscan-test", RPS: 100, Timeout: 5 * time.Second})
}

func TestClient_Lookup(t *testing.T) {
	t.Run("returns metadata", func(t *testing.T) {
		var gotQuery, gotUA string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			gotUA = r.Header.Get("User-Agent")
			assert.Equal(t, "/api/books", r.URL.Path)
			_, _ = w.Write([]byte(duneResponse))
		})

		md, err := client.Lookup(context.Background(), "9780441013593")
		require.NoError(t, err)
		assert.Equal(t, "Dune", md.Title)
		assert.Equal(t, []string{"Frank Herbert"}, md.Authors)
		assert.Equal(t, []string{"Science fiction", "Dune (Imaginary place)"}, md.Subjects)
		assert.Contains(t, gotQuery, "bibkeys=ISBN%3A9780441013593")
		assert.Contains(t, gotQuery, "jscmd=data")
		assert.Equal(t, "shelfscan-test", gotUA)
	})

	t.Run("subtitle is appended to title", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ISBN:1": {"title": "Gödel, Escher, Bach", "subtitle": "an Eternal Golden Braid"}}`))
		})

		md, err := client.Lookup(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "Gödel, Escher, Bach: an Eternal Golden Braid", md.Title)
		assert.Empty(t, md.Authors)
	})

	t.Run("empty object means not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.Lookup(context.Background(), "9780000000002")
		assert.ErrorIs(t, err, providers.ErrNotFound)
	})

	t.Run("server error is returned without retrying", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.Lookup(context.Background(), "9780441013593")
		require.Error(t, err)
		assert.NotErrorIs(t, err, providers.ErrNotFound)
		assert.Contains(t, err.Error(), "status 503")
		assert.Equal(t, 1, calls)
	})

	t.Run("malformed json", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		})

		_, err := client.Lookup(context.Background(), "9780441013593")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode")
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(duneResponse))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Lookup(ctx, "9780441013593")
		assert.Error(t, err)
	})
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "openlibrary", NewClient(Options{}).Name())
}
