// Package websearch finds retailer pages for the web_search tool using the
// DuckDuckGo HTML endpoint.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	// DefaultEndpoint is the DuckDuckGo no-JavaScript search page.
	DefaultEndpoint   = "https://html.duckduckgo.com/html/"
	DefaultRegion     = "wt-wt"
	DefaultMaxResults = 10
)

// Result is one search hit.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Client queries DuckDuckGo. Failures degrade to canned retailer links.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a Client for endpoint; an empty endpoint uses
// DefaultEndpoint.
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Search returns up to maxResults hits for query. It never fails: transport
// or parse errors are logged and the canned retailer list is returned.
func (c *Client) Search(ctx context.Context, query string, maxResults int, region string) []Result {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if region == "" {
		region = DefaultRegion
	}
	results, err := c.fetch(ctx, query, region)
	if err != nil {
		c.logger.Warn("web search failed, using canned results", zap.String("query", query), zap.Error(err))
		return CannedResults(query, maxResults)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	c.logger.Info("web search", zap.String("query", query), zap.Int("results", len(results)))
	return results
}

func (c *Client) fetch(ctx context.Context, query, region string) ([]Result, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", region)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; seamlessads/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search http %d", resp.StatusCode)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return parseResults(doc), nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
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
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// resolveLink unwraps DuckDuckGo redirect links of the form
// //duckduckgo.com/l/?uddg=<target>.
func resolveLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// parseResults pairs each result__a link with the result__snippet that
// follows it.
func parseResults(doc *html.Node) []Result {
	var out []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				out = append(out, Result{Title: text(n), URL: resolveLink(attr(n, "href"))})
				return
			case hasClass(n, "result__snippet") && len(out) > 0:
				out[len(out)-1].Description = text(n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// CannedResults lists well-known retailer search pages for query.
func CannedResults(query string, maxResults int) []Result {
	q := strings.ReplaceAll(query, " ", "+")
	all := []Result{
		{Title: "Amazon.com: " + query, URL: "https://www.amazon.com/s?k=" + q, Description: "Shop for " + query + " on Amazon. Free shipping on eligible orders."},
		{Title: "Best Buy: " + query, URL: "https://www.bestbuy.com/site/searchpage.jsp?st=" + q, Description: "Find great deals on " + query + " at Best Buy. Shop online or in-store."},
		{Title: "Walmart.com: " + query, URL: "https://www.walmart.com/search?q=" + q, Description: "Save money on " + query + ". Free pickup and delivery available."},
		{Title: "Target: " + query, URL: "https://www.target.com/s?searchTerm=" + q, Description: "Shop " + query + " at Target. Free shipping on orders over $35."},
		{Title: "eBay: " + query, URL: "https://www.ebay.com/sch/i.html?_nkw=" + q, Description: "Find great deals on " + query + ". Shop with confidence on eBay."},
	}
	if maxResults >= 0 && maxResults < len(all) {
		all = all[:maxResults]
	}
	return all
}
