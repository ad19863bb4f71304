// Package hosting provides a client for the Netlify deployment API.
//
// The package covers the full REST surface the site tools need: site listing
// and lookup, zip-archive deploys (create-site and new-deploy-for-existing-site),
// deploy status polling, subdomain rename, rollback, and deletion. All calls
// are bearer-token authenticated and context-aware.
package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dropdawn/dropdawn/internal/log"
)

// DefaultBaseURL is the production Netlify API endpoint.
const DefaultBaseURL = "https://api.netlify.com/api/v1"

// Deploy states reported by the provider. Ready and StateError are terminal;
// the rest mean the deploy is still in flight.
const (
	StateEnqueued   = "enqueued"
	StateProcessing = "processing"
	StateUploading  = "uploading"
	StateReady      = "ready"
	StateError      = "error"
)

// ErrSiteNotFound indicates the provider returned 404 for a site-scoped call.
// A stale or wrong site ID is the usual cause; callers surface it with
// actionable text instead of treating it as a transport failure.
var ErrSiteNotFound = errors.New("site not found")

// Site is the provider's site resource. Only the fields the service reads
// are mapped; the provider is the source of truth and nothing is cached.
type Site struct {
	ID           string `json:"id"`
	SiteID       string `json:"site_id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	SSLURL       string `json:"ssl_url"`
	AdminURL     string `json:"admin_url"`
	CustomDomain string `json:"custom_domain"`

	// DeployID is set on site-creation responses and identifies the
	// initial deploy carried by the creation call.
	DeployID string `json:"deploy_id"`
}

// PrimaryURL returns the stable site URL, preferring HTTPS.
func (s *Site) PrimaryURL() string {
	if s.SSLURL != "" {
		return s.SSLURL
	}
	return s.URL
}

// Deploy is one immutable upload/build event against a site.
type Deploy struct {
	ID           string    `json:"id"`
	SiteID       string    `json:"site_id"`
	State        string    `json:"state"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
	Context      string    `json:"context"`
	Branch       string    `json:"branch"`
	URL          string    `json:"url"`
	SSLURL       string    `json:"ssl_url"`
	AdminURL     string    `json:"admin_url"`
}

// Client talks to the hosting provider's REST API.
// Client is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  log.Logger
}

// Option configures optional Client behavior.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a hosting API client authenticated with the given token.
func NewClient(token string, logger log.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewNop()
	}
	return c
}

// ListSites fetches every site visible to the access token.
func (c *Client) ListSites(ctx context.Context) ([]Site, error) {
	var sites []Site
	if err := c.doJSON(ctx, http.MethodGet, "/sites?filter=all", nil, "", &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// GetSite fetches canonical metadata for one site.
func (c *Client) GetSite(ctx context.Context, siteID string) (*Site, error) {
	var site Site
	if err := c.doJSON(ctx, http.MethodGet, "/sites/"+url.PathEscape(siteID), nil, "", &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// CreateSite creates a new site carrying the archive as its initial deploy.
// The response includes both the new site ID and the initial deploy ID.
func (c *Client) CreateSite(ctx context.Context, archive []byte) (*Site, error) {
	var site Site
	if err := c.doJSON(ctx, http.MethodPost, "/sites", bytes.NewReader(archive), "application/zip", &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// CreateDeploy uploads a new deploy for an existing site.
// A 404 response is returned as ErrSiteNotFound so callers can distinguish a
// stale site ID from other provider failures.
func (c *Client) CreateDeploy(ctx context.Context, siteID string, archive []byte) (*Deploy, error) {
	var deploy Deploy
	path := "/sites/" + url.PathEscape(siteID) + "/deploys"
	if err := c.doJSON(ctx, http.MethodPost, path, bytes.NewReader(archive), "application/zip", &deploy); err != nil {
		return nil, err
	}
	return &deploy, nil
}

// GetDeploy fetches the current state of a deploy.
func (c *Client) GetDeploy(ctx context.Context, deployID string) (*Deploy, error) {
	var deploy Deploy
	if err := c.doJSON(ctx, http.MethodGet, "/deploys/"+url.PathEscape(deployID), nil, "", &deploy); err != nil {
		return nil, err
	}
	return &deploy, nil
}

// ListReadyDeploys fetches the site's most recent ready deploys,
// newest first, capped at 5 by the provider query.
func (c *Client) ListReadyDeploys(ctx context.Context, siteID string) ([]Deploy, error) {
	var deploys []Deploy
	path := "/sites/" + url.PathEscape(siteID) + "/deploys?state=ready&per_page=5"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "", &deploys); err != nil {
		return nil, err
	}
	return deploys, nil
}

// RestoreDeploy rolls the site back to the given deploy.
func (c *Client) RestoreDeploy(ctx context.Context, siteID, deployID string) error {
	path := "/sites/" + url.PathEscape(siteID) + "/deploys/" + url.PathEscape(deployID) + "/restore"
	return c.doJSON(ctx, http.MethodPost, path, nil, "", nil)
}

// RenameSite changes only the subdomain portion of the site URL.
// The site ID is stable across renames.
func (c *Client) RenameSite(ctx context.Context, siteID, name string) (*Site, error) {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("encoding rename body: %w", err)
	}

	var site Site
	path := "/sites/" + url.PathEscape(siteID)
	if err := c.doJSON(ctx, http.MethodPatch, path, bytes.NewReader(body), "application/json", &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// DeleteSite permanently deletes a site. Irreversible.
func (c *Client) DeleteSite(ctx context.Context, siteID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/sites/"+url.PathEscape(siteID), nil, "", nil)
}

// doJSON performs one authenticated API call, decoding a JSON response into
// out when out is non-nil. Non-2xx responses become errors carrying the
// provider's response text; 404 maps to ErrSiteNotFound.
func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrSiteNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(text))
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
