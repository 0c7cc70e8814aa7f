// Package directory fetches listing and detail pages from the company
// directory site. Listing pages are plain HTTP GETs; whether a page exists
// is signaled by a textual marker in the body, not by the HTTP status.
package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// notFoundMarker is the body text the directory serves on nonexistent
// listing pages. The response status is 200 either way.
const notFoundMarker = "404 Not Found"

// Client defines the directory site operations.
type Client interface {
	// Listing fetches one paginated listing page for an industry group and
	// revenue bracket. NotFound is true when the page does not exist.
	Listing(ctx context.Context, industryGroup, revenueBracket string, page int) (*ListingResult, error)
	// Detail fetches a company detail page and returns the raw HTML.
	Detail(ctx context.Context, detailURL string) (string, error)
}

// ListingResult is the outcome of a single listing-page fetch.
type ListingResult struct {
	URL      string
	NotFound bool
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new directory client.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListingURL builds the listing page URL for an industry group, revenue
// bracket and page number.
func (c *httpClient) ListingURL(industryGroup, revenueBracket string, page int) string {
	return fmt.Sprintf("%s/companies-database/united-states/%s/revenue-%s?page=%d",
		c.baseURL, industryGroup, revenueBracket, page)
}

func (c *httpClient) Listing(ctx context.Context, industryGroup, revenueBracket string, page int) (*ListingResult, error) {
	pageURL := c.ListingURL(industryGroup, revenueBracket, page)

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "directory: fetch listing page %d", page)
	}

	return &ListingResult{
		URL:      pageURL,
		NotFound: strings.Contains(body, notFoundMarker),
	}, nil
}

func (c *httpClient) Detail(ctx context.Context, detailURL string) (string, error) {
	body, err := c.get(ctx, detailURL)
	if err != nil {
		return "", eris.Wrap(err, "directory: fetch detail page")
	}
	return body, nil
}

func (c *httpClient) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "directory: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "directory: read response body")
	}

	return string(body), nil
}
