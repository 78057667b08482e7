package scanner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maxvaer/gmapsprobe/internal/config"
)

// maxBodySize caps how much of a response body is kept for classification.
const maxBodySize = 4 << 20

// Request describes one probe call. The key is already interpolated.
type Request struct {
	Method     string
	URL        string
	Headers    map[string]string
	Body       string
	NoRedirect bool // return 3xx responses instead of following them
}

// Response holds the parsed HTTP response data.
type Response struct {
	StatusCode int
	Body       []byte
	URL        string
}

// Requester wraps the HTTP clients used for probing.
type Requester struct {
	follow    *http.Client
	noFollow  *http.Client
	userAgent string
	logger    *slog.Logger
	redact    func(string) string
}

// NewRequester creates a Requester from the provided options. TLS
// verification is disabled for every probe.
func NewRequester(opts *config.Options, logger *slog.Logger) (*Requester, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		MaxIdleConnsPerHost: opts.Threads,
		MaxIdleConns:        opts.Threads * 4,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		if proxyURL.Scheme == "" || proxyURL.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q: scheme and host are required", opts.Proxy)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "gmapsprobe/1.0"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Requester{
		follow: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		noFollow: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: ua,
		logger:    logger,
		redact:    func(s string) string { return s },
	}, nil
}

// SetRedactor installs a function applied to URLs before they are logged.
func (r *Requester) SetRedactor(fn func(string) string) {
	if fn != nil {
		r.redact = fn
	}
}

// Do sends the request and returns the parsed response. Method defaults
// to GET if empty.
func (r *Requester) Do(ctx context.Context, pr Request) (*Response, error) {
	method := pr.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if pr.Body != "" {
		body = strings.NewReader(pr.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, pr.URL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", r.userAgent)
	for k, v := range pr.Headers {
		req.Header.Set(k, v)
	}

	client := r.follow
	if pr.NoRedirect {
		client = r.noFollow
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		r.logger.Debug("request failed", "method", method, "url", r.redact(pr.URL), "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body for %s: %w", r.redact(pr.URL), err)
	}
	elapsed := time.Since(start)

	result := &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		URL:        pr.URL,
	}

	r.logger.Debug("request done",
		"method", method,
		"url", r.redact(pr.URL),
		"status", resp.StatusCode,
		"location", r.redact(resp.Header.Get("Location")),
		"size", len(data),
		"duration", elapsed.Round(time.Millisecond),
	)
	return result, nil
}
