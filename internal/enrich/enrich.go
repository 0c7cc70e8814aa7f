// Package enrich computes per-role job-posting counts for companies, either
// through the Coresignal API or through an authenticated LinkedIn browser
// session. Both paths implement the same Strategy contract.
package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscan/internal/model"
)

// Strategy produces job counts for one company.
type Strategy interface {
	Name() string
	// Concurrency is the maximum number of companies that may be enriched
	// in flight at once. The browser strategy returns 1: its session's
	// current-tab state is shared and unguarded.
	Concurrency() int
	Enrich(ctx context.Context, company model.CompanyWithSlug) (model.EnrichedCompany, error)
}

// ErrWaitTimeout is returned by Session implementations when a bounded UI
// wait elapses without the expected element or tab appearing.
var ErrWaitTimeout = eris.New("enrich: wait timed out")

// ErrStaleElement is returned when an element appeared and then vanished
// before it could be read. On the results page this is how "no matching
// jobs" manifests, so callers treat it as a zero, not a fault.
var ErrStaleElement = eris.New("enrich: element went stale")

// Session is one authenticated browser session, shared across all companies
// of a run. Implementations own the current-tab bookkeeping: FocusOriginal
// must restore the tab NavigateJobs was issued on.
type Session interface {
	// NavigateJobs loads the job-listings page for a company slug.
	NavigateJobs(ctx context.Context, slug string) error
	// PageSource returns the current tab's full page source.
	PageSource(ctx context.Context) (string, error)
	// WaitVisible blocks until the selector is visible or the timeout
	// elapses (ErrWaitTimeout).
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// ClearAndType clears the matched input and types the given text.
	ClearAndType(ctx context.Context, selector, text string) error
	// Click activates the matched element.
	Click(ctx context.Context, selector string) error
	// WaitForNewTab blocks until a tab opened by the last interaction
	// becomes available, or the timeout elapses (ErrWaitTimeout).
	WaitForNewTab(ctx context.Context, timeout time.Duration) (ResultsTab, error)
	// FocusOriginal switches control back to the original tab.
	FocusOriginal(ctx context.Context) error
	// Close tears down the session and the underlying browser.
	Close() error
}

// ResultsTab is a search-results tab opened during a keyword search.
type ResultsTab interface {
	// WaitText waits for the selector and returns its text content.
	// ErrWaitTimeout when it never appears; ErrStaleElement when it appears
	// and detaches before it can be read.
	WaitText(ctx context.Context, selector string, timeout time.Duration) (string, error)
	Close() error
}
