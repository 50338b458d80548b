package lookup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/net/html"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultUserAgent    = "Mozilla/5.0"
)

// FetchOptions configures a PageFetcher.
type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string

	// CacheSize bounds the number of page texts kept per run. <=0 uses 256.
	CacheSize int
	// CacheTTL expires cached page texts. <=0 uses 15 minutes.
	CacheTTL time.Duration
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultFetchTimeout
	}
	if strings.TrimSpace(o.UserAgent) == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 256
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 15 * time.Minute
	}
	return o
}

// PageFetcher downloads a page and reduces it to its visible text.
type PageFetcher struct {
	client *resty.Client
	cache  *expirable.LRU[string, string]
}

// NewPageFetcher returns a fetcher with a fixed timeout and a generic user agent.
func NewPageFetcher(opts FetchOptions) *PageFetcher {
	opts = opts.withDefaults()
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)
	return &PageFetcher{
		client: client,
		cache:  expirable.NewLRU[string, string](opts.CacheSize, nil, opts.CacheTTL),
	}
}

// FetchPageText GETs url and returns its visible text joined with single spaces.
// Non-2xx responses are returned as *HTTPError.
func (f *PageFetcher) FetchPageText(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", errors.New("empty url")
	}
	if text, ok := f.cache.Get(url); ok {
		return text, nil
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", ClassifyTransportErr(err)
	}
	if !resp.IsSuccess() {
		return "", NewHTTPError("fetchPage", url, resp.StatusCode(), resp.Status(), resp.Body())
	}

	text, err := VisibleText(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", err
	}
	f.cache.Add(url, text)
	return text, nil
}

// VisibleText parses an HTML document and returns its non-empty text nodes,
// each trimmed, joined with a single space. Script, style, noscript and
// template contents are dropped.
func VisibleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " "), nil
}

func collectText(node *html.Node, out *[]string) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		if t := strings.TrimSpace(node.Data); t != "" {
			*out = append(*out, t)
		}
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, out)
	}
}

// ClassifyTransportErr wraps timeouts as TransientError and passes other errors through.
func ClassifyTransportErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TransientError{Err: err}
	}
	return err
}
