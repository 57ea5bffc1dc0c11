package crawler

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"clustrmaps-go-crawler/internal/parser"
)

type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64, userAgent string) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: userAgent,
	}
}

type Response struct {
	Body        []byte
	FinalURL    string
	ContentType string
	StatusCode  int
	Elapsed     time.Duration
}

// Fetch downloads an HTML page. 404 and 410 are returned as responses, not
// errors, because the site renders its not-found page with them.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	gone := resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone
	if (resp.StatusCode < 200 || resp.StatusCode >= 400) && !gone {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.Contains(mediaType, "text/html") && !strings.Contains(mediaType, "application/xhtml+xml") && mediaType != "" {
		// still allow if empty (some servers omit), otherwise reject non-html
		return nil, errors.New("non-html content")
	}

	// enforce a size cap
	data, err := io.ReadAll(io.LimitReader(body, h.sizeCap))
	if err != nil {
		return nil, err
	}

	return &Response{
		Body:        data,
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
		StatusCode:  resp.StatusCode,
		Elapsed:     time.Since(start),
	}, nil
}

type HTTPOptions struct {
	Timeout     time.Duration
	DialTimeout time.Duration
	SizeCap     int64
	UserAgent   string
}

func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:     30 * time.Second,
		DialTimeout: 5 * time.Second,
		SizeCap:     5 * 1024 * 1024, // 5MB cap
		UserAgent:   DefaultUserAgent,
	}
}

// HTTPLauncher returns a Browser that loads pages with plain GET requests and
// no script execution. Each launch gets its own client, so a restart drops
// cookies and pooled connections.
func HTTPLauncher(opts HTTPOptions) Launcher {
	return func(context.Context) (Browser, error) {
		return &HTTPBrowser{
			client: NewHTTPClient(opts.Timeout, opts.DialTimeout, opts.SizeCap, opts.UserAgent),
			parser: parser.New(""),
		}, nil
	}
}

type HTTPBrowser struct {
	client *HTTPClient
	parser *parser.Parser
	doc    *goquery.Document
}

func (b *HTTPBrowser) Navigate(ctx context.Context, url string) error {
	resp, err := b.client.Fetch(ctx, url)
	if err != nil {
		return err
	}
	doc, err := b.parser.Document(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	b.doc = doc
	return nil
}

func (b *HTTPBrowser) Title(context.Context) (string, error) {
	if b.doc == nil {
		return "", ErrNoPage
	}
	return parser.Title(b.doc), nil
}

func (b *HTTPBrowser) PageMarkup(context.Context) (string, error) {
	if b.doc == nil {
		return "", ErrNoPage
	}
	return b.doc.Html()
}

// Screenshot cannot render pixels; it saves the current markup next to path
// with an .html extension instead.
func (b *HTTPBrowser) Screenshot(ctx context.Context, path string) error {
	markup, err := b.PageMarkup(ctx)
	if err != nil {
		return err
	}
	path = strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	return os.WriteFile(path, []byte(markup), 0o644)
}

func (b *HTTPBrowser) Quit() error {
	b.client.client.CloseIdleConnections()
	b.doc = nil
	return nil
}

var ErrNoPage = errors.New("no page loaded")
