// Package dtrack fetches project snapshots from a Dependency-Track server or from
// an exported JSON file.
package dtrack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
)

const (
	apiKeyHeader   = "X-Api-Key"
	requestTimeout = 60 * time.Second
	maxErrorBody   = 4096
)

// Client is a thin wrapper over http.Client with API key auth.
// Use New to construct it.
type Client struct {
	c        *http.Client
	baseURL  string
	apiKey   string
	pageSize int
	loc      *time.Location
	onPage   func(page, count int)
}

var _ contract.SnapshotSource = &Client{} // Compile-time check

// Option customizes a Client.
type Option func(*Client)

// WithPageSize overrides the number of projects requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithLocation sets the zone epoch timestamps are placed in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithPageHook registers a callback invoked after every fetched page.
func WithPageHook(fn func(page, count int)) Option {
	return func(c *Client) { c.onPage = fn }
}

// New creates a client for the server at baseURL.
func New(c *http.Client, baseURL, apiKey string, opts ...Option) *Client {
	if c == nil {
		c = &http.Client{Timeout: requestTimeout}
	}
	client := &Client{
		c:        c,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		pageSize: contract.DefaultPageSize,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchSnapshots pages through all active projects until an empty page comes back.
func (dc *Client) FetchSnapshots(ctx context.Context) ([]schema.ProjectSnapshot, error) {
	var all []schema.ProjectSnapshot
	for page := 1; ; page++ {
		snapshots, err := dc.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if dc.onPage != nil {
			dc.onPage(page, len(snapshots))
		}
		if len(snapshots) == 0 {
			return all, nil
		}
		all = append(all, snapshots...)
	}
}

func (dc *Client) fetchPage(ctx context.Context, page int) ([]schema.ProjectSnapshot, error) {
	q := url.Values{}
	q.Set("excludeInactive", "true")
	q.Set("limit", strconv.Itoa(dc.pageSize))
	q.Set("page", strconv.Itoa(page))
	rawURL := dc.baseURL + "/api/v1/project?" + q.Encode()

	req, err := dc.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	resp, err := dc.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("dependency-track %s %s returned %d: %s", req.Method, rawURL, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return DecodeProjects(resp.Body, dc.loc)
}

func (dc *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if dc.apiKey != "" {
		req.Header.Set(apiKeyHeader, dc.apiKey)
	}
	return req, nil
}

// FileSource reads snapshots from a JSON file holding an array of project objects,
// as returned by the project endpoint.
type FileSource struct {
	Path string
	Loc  *time.Location
}

var _ contract.SnapshotSource = FileSource{} // Compile-time check

// FetchSnapshots implements contract.SnapshotSource.
func (fs FileSource) FetchSnapshots(ctx context.Context) ([]schema.ProjectSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(fs.Path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	loc := fs.Loc
	if loc == nil {
		loc = time.Local
	}
	snapshots, err := DecodeProjects(f, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fs.Path, err)
	}
	return snapshots, nil
}
