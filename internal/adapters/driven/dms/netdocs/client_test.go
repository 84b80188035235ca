package netdocs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

const testToken = "secret-token-value"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		AccessToken: testToken,
		BaseURL:     srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestClient_RequiresToken(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestClient_FetchDocument(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/document/4711/info":
			fmt.Fprint(w, `{"id":"4711","name":"Supplier Agreement","modified":"2026-08-01"}`)
		case "/document/4711/content":
			fmt.Fprint(w, "This agreement is made between the parties.")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	doc, err := client.Fetch(context.Background(), "4711")
	require.NoError(t, err)

	assert.Equal(t, "netdocs://4711", doc.SourceURI)
	assert.Equal(t, "This agreement is made between the parties.", doc.Text)
	assert.Equal(t, "Supplier Agreement", doc.Metadata["title"])
	assert.Equal(t, "2026-08-01", doc.Metadata["modified"])
}

func TestClient_FetchEmptyID(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	_, err := client.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_FetchMissingDocument(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	_, err := client.Fetch(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_AccessDeniedDoesNotLeakToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Fetch(context.Background(), "4711")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.NotContains(t, err.Error(), testToken)
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.Fetch(context.Background(), "4711")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
