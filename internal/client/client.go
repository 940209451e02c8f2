// Package client talks to the Cosense REST API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mithrel/cosense/pkg/api"
)

const DefaultBaseURL = "https://scrapbox.io"

// ErrEmptyTitle is returned when a page is requested without a title.
var ErrEmptyTitle = errors.New("page title is empty")

// StatusError is a non-2xx API response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Body)
}

type Options struct {
	BaseURL   string
	Project   string
	Timeout   time.Duration
	SessionID string
	Logger    *log.Logger
	// HTTPClient replaces the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	base       string
	project    string
	sid        string
	log        *log.Logger
	httpClient *http.Client
}

func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	lg := opts.Logger
	if lg == nil {
		lg = log.New(io.Discard, "", 0)
	}
	return &Client{base: base, project: opts.Project, sid: opts.SessionID, log: lg, httpClient: hc}
}

func (c *Client) BaseURL() string { return c.base }
func (c *Client) Project() string { return c.project }

// Search runs a full-text query against the project. An empty query
// returns no pages without contacting the server.
func (c *Client) Search(ctx context.Context, query string) (api.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return api.SearchResult{Pages: []api.PageSummary{}}, nil
	}
	u := c.apiURL("search", "query") + "?q=" + url.QueryEscape(query)
	var out api.SearchResult
	if err := c.getJSON(ctx, u, &out); err != nil {
		return api.SearchResult{}, fmt.Errorf("search %q: %w", query, err)
	}
	if out.Pages == nil {
		out.Pages = []api.PageSummary{}
	}
	return out, nil
}

// PageText fetches the raw notation of a page.
func (c *Client) PageText(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", ErrEmptyTitle
	}
	body, err := c.get(ctx, c.apiURL(title, "text"))
	if err != nil {
		return "", fmt.Errorf("page text %q: %w", title, err)
	}
	return string(body), nil
}

type ListOptions struct {
	Limit int
	Skip  int
	// Sort is one of the server sort keys, e.g. "updated" or "views".
	Sort string
}

// ListPages returns one window of the project's page list.
func (c *Client) ListPages(ctx context.Context, opts ListOptions) (api.PageList, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Skip > 0 {
		q.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	u := c.apiURL()
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var out api.PageList
	if err := c.getJSON(ctx, u, &out); err != nil {
		return api.PageList{}, fmt.Errorf("list pages: %w", err)
	}
	return out, nil
}

// PageURL is the browser URL of a page.
func PageURL(base, project, title string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(project) + "/" + url.PathEscape(title)
}

func (c *Client) PageURL(title string) string { return PageURL(c.base, c.project, title) }

func (c *Client) apiURL(segments ...string) string {
	var sb strings.Builder
	sb.WriteString(c.base)
	sb.WriteString("/api/pages/")
	sb.WriteString(url.PathEscape(c.project))
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	body, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if c.project == "" {
		return nil, errors.New("project is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.sid != "" {
		req.AddCookie(&http.Cookie{Name: "connect.sid", Value: c.sid})
	}
	c.log.Printf("client: GET %s", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
