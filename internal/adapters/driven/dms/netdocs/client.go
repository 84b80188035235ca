// Package netdocs fetches documents from a NetDocuments-style document
// management service over its REST API.
package netdocs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.DocumentRepository = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.vault.netvoyage.com/v2"
	DefaultTimeout = 30 * time.Second

	maxDocumentSize = 10 << 20 // 10 MiB
)

// Config holds configuration for the document repository client.
type Config struct {
	// AccessToken is the OAuth2 access token (required).
	AccessToken string

	// BaseURL is the API base URL (default: the NetDocuments vault API).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client fetches documents by id. Authentication uses an OAuth2 bearer
// token carried by the underlying HTTP client, never by error messages.
type Client struct {
	client  *http.Client
	baseURL string
}

// documentInfo is the metadata portion of the API response.
type documentInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Extension  string `json:"extension"`
	ModifiedAt string `json:"modified"`
}

// NewClient creates a document repository client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("netdocs: access token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		client:  httpClient,
		baseURL: cfg.BaseURL,
	}, nil
}

// Fetch retrieves a remote document's text and metadata by id.
func (c *Client) Fetch(ctx context.Context, id string) (*driven.LoadedDocument, error) {
	if id == "" {
		return nil, fmt.Errorf("netdocs: document id is required: %w", domain.ErrInvalidInput)
	}

	info, err := c.fetchInfo(ctx, id)
	if err != nil {
		return nil, err
	}

	text, err := c.fetchContent(ctx, id)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"title":  info.Name,
		"source": "netdocs",
	}
	if info.ModifiedAt != "" {
		metadata["modified"] = info.ModifiedAt
	}

	return &driven.LoadedDocument{
		SourceURI: "netdocs://" + id,
		Text:      text,
		Metadata:  metadata,
	}, nil
}

// fetchInfo retrieves document metadata.
func (c *Client) fetchInfo(ctx context.Context, id string) (*documentInfo, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/document/%s/info", c.baseURL, id), id)
	if err != nil {
		return nil, err
	}

	var info documentInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("netdocs: decode document info: %w", err)
	}
	if info.ID == "" {
		info.ID = id
	}
	return &info, nil
}

// fetchContent retrieves the document body as text.
func (c *Client) fetchContent(ctx context.Context, id string) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/document/%s/content", c.baseURL, id), id)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// get performs an authenticated GET and classifies failures. Error
// messages carry the document id and status only.
func (c *Client) get(ctx context.Context, url, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("netdocs: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("netdocs: request for document %s failed: %w", id, domain.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("netdocs: document %s: %w", id, domain.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("netdocs: access denied for document %s (status %d): %w",
			id, resp.StatusCode, domain.ErrInvalidConfig)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("netdocs: service error for document %s (status %d): %w",
			id, resp.StatusCode, domain.ErrProviderUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("netdocs: unexpected status %d for document %s", resp.StatusCode, id)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("netdocs: read response for document %s: %w", id, err)
	}
	return body, nil
}
