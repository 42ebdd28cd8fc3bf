// Package n8n implements the CredentialAPI port against the n8n public REST API.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/credmcp/internal/domain/apierr"
	"github.com/ericfisherdev/credmcp/internal/domain/model"
	"github.com/ericfisherdev/credmcp/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialAPI = (*Client)(nil)

// DefaultTimeout bounds every request alongside context cancellation.
const DefaultTimeout = 30 * time.Second

// apiKeyHeader carries the n8n API key.
const apiKeyHeader = "X-N8N-API-KEY"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

var apiVersionSuffix = regexp.MustCompile(`/api/v\d+$`)

// Client implements the driven.CredentialAPI port over HTTP.
type Client struct {
	http    *http.Client
	baseURL *url.URL // Ends in /api/v1.
	rootURL *url.URL // Instance root, used for /healthz.
	apiKey  string
}

// NewClient creates an n8n API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. net/http default transport
//
// baseURL may be the instance root or already end in /api/v1.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{Transport: cacheTransport, Timeout: timeout}

	return NewClientWithHTTPClient(httpClient, baseURL, apiKey)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, apiKey string) (*Client, error) {
	apiURL, rootURL, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    httpClient,
		baseURL: apiURL,
		rootURL: rootURL,
		apiKey:  apiKey,
	}, nil
}

// normalizeBaseURL returns the /api/v1 URL and the instance root for raw.
func normalizeBaseURL(raw string) (*url.URL, *url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, errors.New("n8n base URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, nil, fmt.Errorf("parsing base URL: unsupported scheme %q", u.Scheme)
	}

	p := strings.TrimRight(u.Path, "/")
	root := *u
	root.Path = apiVersionSuffix.ReplaceAllString(p, "")
	root.RawPath = ""

	api := root
	api.Path = p
	if root.Path == p {
		api.Path = p + "/api/v1"
	}

	return &api, &root, nil
}

// ListCredentials retrieves one page of credentials.
func (c *Client) ListCredentials(ctx context.Context, opts model.ListOptions) (*model.CredentialPage, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}

	var page model.CredentialPage
	if err := c.do(ctx, http.MethodGet, "/credentials", q, nil, &page); err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	if page.Data == nil {
		page.Data = []model.Credential{}
	}

	slog.Debug("n8n: listed credentials", "count", len(page.Data), "has_next", page.NextCursor != nil)
	return &page, nil
}

// GetCredential retrieves a single credential by ID.
func (c *Client) GetCredential(ctx context.Context, id string) (*model.Credential, error) {
	var cred model.Credential
	if err := c.do(ctx, http.MethodGet, credentialPath(id), nil, nil, &cred); err != nil {
		return nil, fmt.Errorf("getting credential %s: %w", id, err)
	}
	return &cred, nil
}

// CreateCredential creates a credential. NodesAccess is sent only when non-nil.
func (c *Client) CreateCredential(ctx context.Context, cred model.NewCredential) (*model.Credential, error) {
	body := map[string]any{
		"name": cred.Name,
		"type": cred.Type,
		"data": cred.Data,
	}
	if cred.NodesAccess != nil {
		body["nodesAccess"] = cred.NodesAccess
	}

	var created model.Credential
	if err := c.do(ctx, http.MethodPost, "/credentials", nil, body, &created); err != nil {
		return nil, fmt.Errorf("creating %s credential: %w", cred.Type, err)
	}
	return &created, nil
}

// UpdateCredential sends the set fields of patch. An empty patch is sent as {}.
func (c *Client) UpdateCredential(ctx context.Context, id string, patch model.CredentialPatch) (*model.Credential, error) {
	body := map[string]any{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.Data != nil {
		body["data"] = patch.Data
	}
	if patch.NodesAccess != nil {
		body["nodesAccess"] = patch.NodesAccess
	}

	var updated model.Credential
	if err := c.do(ctx, http.MethodPatch, credentialPath(id), nil, body, &updated); err != nil {
		return nil, fmt.Errorf("updating credential %s: %w", id, err)
	}
	return &updated, nil
}

// DeleteCredential deletes a credential by ID.
func (c *Client) DeleteCredential(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, credentialPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting credential %s: %w", id, err)
	}
	return nil
}

// TestCredential runs the connectivity test for a credential.
func (c *Client) TestCredential(ctx context.Context, id string) (*model.CredentialTestResult, error) {
	var result model.CredentialTestResult
	if err := c.do(ctx, http.MethodPost, credentialPath(id)+"/test", nil, nil, &result); err != nil {
		return nil, fmt.Errorf("testing credential %s: %w", id, err)
	}
	return &result, nil
}

// HealthCheck probes the instance's /healthz endpoint. Instances that do not
// expose it are probed by listing a single workflow instead.
func (c *Client) HealthCheck(ctx context.Context) (*model.HealthStatus, error) {
	status, err := c.healthz(ctx)
	if err == nil {
		return status, nil
	}
	slog.Debug("n8n: healthz unavailable, falling back to workflow listing", "error", err)

	q := url.Values{"limit": []string{"1"}}
	if err := c.do(ctx, http.MethodGet, "/workflows", q, nil, nil); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &model.HealthStatus{Status: "ok", Features: map[string]any{}}, nil
}

func (c *Client) healthz(ctx context.Context) (*model.HealthStatus, error) {
	u := c.rootURL.JoinPath("healthz")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("healthz: HTTP %d", resp.StatusCode)
	}

	var status model.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding healthz response: %w", err)
	}
	if status.Status == "" {
		status.Status = "ok"
	}
	return &status, nil
}

// do sends a JSON request to the escaped path under the API base URL and
// decodes a JSON response into out when out is non-nil. Non-2xx responses are
// returned as *apierr.Error; transport failures as apierr.NoResponse.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return apierr.NoResponse(err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("n8n: request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"cached", resp.Header.Get(httpcache.XFromCache) == "1",
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeErrorResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeErrorResponse reads an n8n error body ({"message": "..."}) and
// classifies the status code.
func decodeErrorResponse(resp *http.Response) *apierr.Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var details map[string]any
	var message string
	if err := json.Unmarshal(raw, &details); err == nil {
		if m, ok := details["message"].(string); ok {
			message = m
		}
	} else {
		details = nil
		message = strings.TrimSpace(string(raw))
	}

	return apierr.FromResponse(resp.StatusCode, message, details, resp.Header)
}

func credentialPath(id string) string {
	return "/credentials/" + url.PathEscape(id)
}
