// Package client fetches library pages from a media listing endpoint.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/media-library/backend/internal/models"
)

// ErrFetchFailed wraps every failure of FetchPage. Callers show a generic
// error and never surface the wrapped detail to users.
var ErrFetchFailed = errors.New("fetch failed")

// maxBodySize caps how much of a response is read.
const maxBodySize = 32 << 20

// Request describes one listing request.
type Request struct {
	APIURL  string
	Folder  string
	Search  string
	Page    int
	PerPage int
	Data    map[string]string // extra query parameters
	Headers map[string]string
}

// Client is an HTTP client for the media listing endpoint.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	msgpack    bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL resolves relative API URLs against base.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if u, err := url.Parse(base); err == nil {
			c.baseURL = u
		}
	}
}

// WithMsgpack asks the server for msgpack instead of JSON.
func WithMsgpack(enabled bool) Option {
	return func(c *Client) { c.msgpack = enabled }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client. There are no retries: one call is one attempt.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope accepts both the success and the {"error": ...} shape.
type envelope struct {
	models.PageResult `msgpack:",inline"`
	Error             string `json:"error" msgpack:"error"`
}

// BuildURL returns the request URL: Data first, then folder, search, page
// and per_page override any parameter of the same name.
func (c *Client) BuildURL(req Request) (string, error) {
	u, err := url.Parse(req.APIURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	if c.baseURL != nil && !u.IsAbs() {
		u = c.baseURL.ResolveReference(u)
	}

	params := u.Query()
	for k, v := range req.Data {
		params.Set(k, v)
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	params.Set("folder", req.Folder)
	params.Set("search", req.Search)
	params.Set("page", strconv.Itoa(page))
	if req.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(req.PerPage))
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// FetchPage performs a single GET for req.
func (c *Client) FetchPage(ctx context.Context, req Request) (*models.PageResult, error) {
	reqURL, err := c.BuildURL(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrFetchFailed, err)
	}
	if c.msgpack {
		httpReq.Header.Set("Accept", "application/msgpack, application/json;q=0.5")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrFetchFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var env envelope
	if isMsgpack(resp.Header.Get("Content-Type")) {
		err = msgpack.Unmarshal(body, &env)
	} else {
		err = json.Unmarshal(body, &env)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFetchFailed, err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: server error: %s", ErrFetchFailed, env.Error)
	}

	return normalize(&env.PageResult), nil
}

// normalize fills what a lenient server may omit.
func normalize(res *models.PageResult) *models.PageResult {
	if res.Files == nil {
		res.Files = []models.FileEntry{}
	}
	if res.Folders == nil {
		res.Folders = []string{}
	}
	if res.Page < 1 {
		res.Page = 1
	}
	if res.Pages < 1 {
		res.Pages = 1
	}
	if res.Total < 0 {
		res.Total = 0
	}
	return res
}

func isMsgpack(contentType string) bool {
	mime := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return mime == "application/msgpack" || mime == "application/x-msgpack"
}
