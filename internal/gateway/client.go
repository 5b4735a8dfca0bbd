package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shareit/internal/httputil"
	"shareit/internal/metrics"
)

const maxUpstreamBody = 10 << 20

// Client forwards validated requests to the core server.
type Client struct {
	baseURL    string
	userHeader string
	httpClient *http.Client
}

// Response is the upstream answer, relayed to the caller unchanged.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func NewClient(baseURL, userHeader string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userHeader: userHeader,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward replays r against the core server with body as payload. Only the
// identity, request id and content negotiation headers are passed on.
func (c *Client) Forward(ctx context.Context, r *http.Request, body []byte) (*Response, error) {
	endpoint := c.baseURL + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		endpoint += "?" + r.URL.RawQuery
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	c.addHeaders(req, r)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncUpstream(0)
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.IncUpstream(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

func (c *Client) addHeaders(req, in *http.Request) {
	for _, name := range []string{c.userHeader, httputil.RequestIDHeader, "Content-Type", "Accept"} {
		if v := in.Header.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}
}
