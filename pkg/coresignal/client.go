// Package coresignal provides a client for the Coresignal job-search API,
// the paid source of per-company job-posting counts.
package coresignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Coresignal CDAPI.
const defaultBaseURL = "https://api.coresignal.com"

// searchPath is the job search filter endpoint.
const searchPath = "/cdapi/v1/linkedin/job/search/filter"

// countHeader carries the total result count. The count is read from this
// response header, never from the payload body.
const countHeader = "x-total-results"

// ErrQuotaExhausted is returned when the API signals that no credits remain
// (HTTP 402). Callers must surface this distinctly from a zero count.
var ErrQuotaExhausted = eris.New("coresignal: quota exhausted")

// Client defines the Coresignal operations used by enrichment.
type Client interface {
	// SearchJobs returns the number of active, non-deleted job postings for
	// a company slug matching the keyword.
	SearchJobs(ctx context.Context, companySlug, keyword string) (int, error)
}

// searchRequest is the body for the job search filter endpoint.
type searchRequest struct {
	CompanyLinkedinURL string `json:"company_linkedin_url"`
	KeywordDescription string `json:"keyword_description"`
	Deleted            bool   `json:"deleted"`
	ApplicationActive  bool   `json:"application_active"`
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Coresignal client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchJobs(ctx context.Context, companySlug, keyword string) (int, error) {
	payload, err := json.Marshal(searchRequest{
		CompanyLinkedinURL: fmt.Sprintf("https://www.linkedin.com/company/%s", companySlug),
		KeywordDescription: keyword,
		Deleted:            false,
		ApplicationActive:  true,
	})
	if err != nil {
		return 0, eris.Wrap(err, "coresignal: marshal search request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return 0, eris.Wrap(err, "coresignal: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "coresignal: search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired {
		return 0, ErrQuotaExhausted
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return 0, eris.Errorf("coresignal: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	// A missing or non-numeric count header means no matching postings.
	count, err := strconv.Atoi(resp.Header.Get(countHeader))
	if err != nil || count < 0 {
		return 0, nil
	}

	return count, nil
}
