package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGoOptions configures the HTML search backend.
type DuckDuckGoOptions struct {
	Endpoint      string
	Region        string // e.g. jp-jp
	SafeSearch    string // strict, moderate or off
	MaxResults    int
	RatePerSecond float64
	Timeout       time.Duration
	Proxy         string
}

// DuckDuckGoSearcher implements Searcher over the DuckDuckGo HTML endpoint.
type DuckDuckGoSearcher struct {
	Client  *http.Client
	opts    DuckDuckGoOptions
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewDuckDuckGoSearcher creates a searcher with optional proxy support.
func NewDuckDuckGoSearcher(opts DuckDuckGoOptions) *DuckDuckGoSearcher {
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	return &DuckDuckGoSearcher{
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "duckduckgo",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (s *DuckDuckGoSearcher) Name() string { return "duckduckgo" }

// Search runs query and returns at most MaxResults hits in page order.
func (s *DuckDuckGoSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty query")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Result), nil
}

func (s *DuckDuckGoSearcher) fetch(ctx context.Context, query string) ([]Result, error) {
	form := url.Values{"q": {query}}
	if s.opts.Region != "" {
		form.Set("kl", s.opts.Region)
	}
	if kp := safeSearchParam(s.opts.SafeSearch); kp != "" {
		form.Set("kp", kp)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request: status %d, body: %s", resp.StatusCode, string(body))
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return parseResults(doc, s.opts.MaxResults), nil
}

func safeSearchParam(level string) string {
	switch strings.ToLower(level) {
	case "strict", "on":
		return "1"
	case "off":
		return "-2"
	case "moderate":
		return "-1"
	default:
		return ""
	}
}

// parseResults walks the result page collecting div.result blocks.
func parseResults(doc *html.Node, limit int) []Result {
	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") && !hasClass(n, "result--ad") {
			if r := extractResult(n); r.Title != "" {
				results = append(results, r)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

func extractResult(n *html.Node) Result {
	var r Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				r.URL = resolveRedirect(attr(n, "href"))
				r.Title = text(n)
			case hasClass(n, "result__snippet"):
				r.Snippet = text(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return r
}

// resolveRedirect unwraps //duckduckgo.com/l/?uddg=<target> links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
