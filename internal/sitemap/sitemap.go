package sitemap

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes caps a single sitemap body after decompression.
const maxBodyBytes = 32 << 20

// Client fetches robots.txt and sitemap documents over plain HTTP with a
// browser User-Agent. Requests are blocking and sequential.
type Client struct {
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

func NewClient(timeout time.Duration, userAgent string, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger.With("component", "sitemap"),
	}
}

// Discover reads a site's robots.txt and returns the advertised sitemap
// URLs. When robots.txt is missing or advertises none, the conventional
// /sitemap.xml location is returned instead.
func (c *Client) Discover(ctx context.Context, baseURL string) ([]string, error) {
	base := strings.TrimRight(baseURL, "/")
	fallback := []string{base + "/sitemap.xml"}

	body, err := c.get(ctx, base+"/robots.txt")
	if err != nil {
		c.logger.Warn("robots.txt not readable, assuming default sitemap", "base", base, "error", err)
		return fallback, nil
	}

	var sitemaps []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			continue
		}
		if loc := strings.TrimSpace(line[len("sitemap:"):]); loc != "" {
			sitemaps = append(sitemaps, loc)
		}
	}

	if len(sitemaps) == 0 {
		c.logger.Info("robots.txt advertises no sitemaps, assuming default", "base", base)
		return fallback, nil
	}
	return sitemaps, nil
}

// document covers both sitemap-protocol roots: <urlset> carries page
// entries, <sitemapindex> carries child sitemaps.
type document struct {
	XMLName  xml.Name
	URLs     []locEntry `xml:"url"`
	Sitemaps []locEntry `xml:"sitemap"`
}

type locEntry struct {
	Loc string `xml:"loc"`
}

// FetchURLs downloads one sitemap and returns its <url><loc> values. A
// sitemapindex is followed one level deep; deeper nesting is ignored.
func (c *Client) FetchURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	doc, err := c.fetchDocument(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	if doc.XMLName.Local != "sitemapindex" {
		return locValues(doc.URLs), nil
	}

	var urls []string
	for _, child := range doc.Sitemaps {
		loc := strings.TrimSpace(child.Loc)
		if loc == "" {
			continue
		}
		childDoc, err := c.fetchDocument(ctx, loc)
		if err != nil {
			c.logger.Warn("failed to fetch child sitemap", "url", loc, "error", err)
			continue
		}
		urls = append(urls, locValues(childDoc.URLs)...)
	}
	return urls, nil
}

func (c *Client) fetchDocument(ctx context.Context, url string) (*document, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap %s: %w", url, err)
	}
	return &doc, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	// Sitemaps are often shipped pre-compressed (.xml.gz) with a content
	// type the transport will not transparently decode.
	if isGzip(body) {
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("GET %s: bad gzip body: %w", url, err)
		}
		defer gz.Close()
		body, err = io.ReadAll(io.LimitReader(gz, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", url, err)
		}
	}

	return body, nil
}

func isGzip(body []byte) bool {
	return len(body) > 2 && body[0] == 0x1f && body[1] == 0x8b
}

func locValues(entries []locEntry) []string {
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls
}
