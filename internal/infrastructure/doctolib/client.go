// Package doctolib is the HTTP session against the Doctolib website: cookie
// continuity, browser-like headers, response decoding and the typed
// endpoints used by the booking engine.
package doctolib

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/example/doctoshotgun/internal/internaltypes"
)

const (
	DefaultBaseURL   = "https://www.doctolib.de"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.114 Safari/537.36"
	defaultTimeout   = 10 * time.Second
)

// Client is a logged-in (or about to be) session. It is not safe for
// concurrent use; the booking flow is strictly sequential.
type Client struct {
	base    *url.URL
	hc      *http.Client
	ua      string
	limiter *rate.Limiter
	capture *Capture
	logger  *zap.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.ua = ua
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables it.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithCapture writes every exchange to the capture directory.
func WithCapture(cp *Capture) Option {
	return func(c *Client) { c.capture = cp }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("doctolib: base url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:   base,
		hc:     &http.Client{Timeout: defaultTimeout, Jar: jar},
		ua:     DefaultUserAgent,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	URL    *url.URL
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("doctolib: decode %s: %w", r.URL.Path, err)
	}
	return nil
}

// Do performs one request. path may be absolute or relative to the base
// URL. body, when non-nil, is sent as JSON. Timeouts and connection errors
// are wrapped in internaltypes.ErrTransient; statuses >= 400 come back as
// *internaltypes.HTTPError together with the response.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, body any, headers http.Header) (*Response, error) {
	u, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("doctolib: encode body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("user-agent", c.ua)
	req.Header.Set("sec-fetch-dest", "document")
	req.Header.Set("sec-fetch-mode", "navigate")
	req.Header.Set("sec-fetch-site", "same-origin")
	req.Header.Set("accept-encoding", "gzip, br")
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	res, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Debug("request failed", zap.String("method", method), zap.String("url", u.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", internaltypes.ErrTransient, method, u.Path, err)
	}
	defer res.Body.Close()

	raw, err := readBody(res)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s %s: read body: %v", internaltypes.ErrTransient, method, u.Path, err)
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("url", u.String()),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	c.capture.Save(req, payload, res, raw)

	resp := &Response{Status: res.StatusCode, Header: res.Header, Body: raw, URL: res.Request.URL}
	if res.StatusCode >= 400 {
		return resp, &internaltypes.HTTPError{Method: method, URL: u.String(), Status: res.StatusCode, Body: raw}
	}
	return resp, nil
}

// getJSON is the common GET-then-decode path of the typed endpoints.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	res, err := c.Do(ctx, http.MethodGet, path, params, nil, nil)
	if err != nil {
		return err
	}
	return res.JSON(v)
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("doctolib: path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref), nil
}

// readBody undoes the content encodings the transport leaves alone. Go's
// transport only decompresses gzip when it added the header itself.
func readBody(res *http.Response) ([]byte, error) {
	var r io.Reader = res.Body
	switch strings.ToLower(res.Header.Get("content-encoding")) {
	case "br":
		r = brotli.NewReader(res.Body)
	case "gzip":
		gz, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}
