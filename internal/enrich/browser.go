package enrich

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscan/internal/model"
)

// Page markers that identify legitimate empty outcomes on a company jobs
// page. The apostrophe in the unavailable marker is the typographic one
// LinkedIn serves.
const (
	pageUnavailableMarker = "This LinkedIn Page isn’t available"
	noJobsMarker          = "There are no jobs right now"
)

// Selectors driven by the per-keyword search procedure.
const (
	jobsLandmarkSelector   = "#ember34"
	searchInputSelector    = ".org-jobs-job-search-form-module__typeahead-input"
	searchButtonSelector   = "[data-view-name='org-member-jobs-job-search-button']"
	resultsSummarySelector = ".jobs-search-results-list__subtitle"
)

// defaultWaitTimeout bounds every UI wait in the search procedure. There is
// no unbounded wait anywhere in enrichment.
const defaultWaitTimeout = 5 * time.Second

// Browser enriches companies by driving one authenticated LinkedIn session
// through the per-company job search procedure. The session is shared
// mutable state (current tab, login cookie), so companies are enriched
// strictly sequentially against it.
type Browser struct {
	sess        Session
	waitTimeout time.Duration
}

// BrowserOption configures the Browser strategy.
type BrowserOption func(*Browser)

// WithWaitTimeout overrides the bound applied to every UI wait.
func WithWaitTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		b.waitTimeout = d
	}
}

// NewBrowser creates the browser enrichment strategy over an already
// authenticated session.
func NewBrowser(sess Session, opts ...BrowserOption) *Browser {
	b := &Browser{
		sess:        sess,
		waitTimeout: defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Browser) Name() string { return "browser" }

// Concurrency is 1: the session's current-tab bookkeeping has no isolation
// mechanism, so concurrent use would corrupt it.
func (b *Browser) Concurrency() int { return 1 }

// Enrich runs the per-company procedure: navigate to the jobs page, detect
// the legitimate empty outcomes, then search each role keyword in order.
// Zero counts from an unavailable page or an empty job board are valid
// results; only faults that cannot be disambiguated as such return an error.
func (b *Browser) Enrich(ctx context.Context, company model.CompanyWithSlug) (model.EnrichedCompany, error) {
	enriched := model.EnrichedCompany{CompanyWithSlug: company}
	log := zap.L().With(zap.String("company", company.Name), zap.String("slug", company.Slug))

	if err := b.sess.NavigateJobs(ctx, company.Slug); err != nil {
		return enriched, eris.Wrap(err, "enrich: navigate to jobs page")
	}

	if err := b.sess.WaitVisible(ctx, jobsLandmarkSelector, b.waitTimeout); err != nil {
		// A landmark timeout alone is ambiguous: the page may not exist, or
		// it may be a genuine fault. Only the textual marker disambiguates,
		// and the check must happen after the failed wait.
		src, srcErr := b.sess.PageSource(ctx)
		if srcErr == nil && strings.Contains(src, pageUnavailableMarker) {
			log.Info("enrich: company page not available")
			return enriched, nil
		}
		return enriched, eris.Wrap(err, "enrich: jobs page landmark")
	}

	src, err := b.sess.PageSource(ctx)
	if err != nil {
		return enriched, eris.Wrap(err, "enrich: read jobs page")
	}
	if strings.Contains(src, noJobsMarker) || strings.Contains(src, pageUnavailableMarker) {
		log.Info("enrich: no jobs listed")
		return enriched, nil
	}

	var counts [3]int
	for i, keyword := range model.RoleKeywords {
		counts[i] = b.searchKeyword(ctx, keyword)
	}

	enriched.Counts = model.JobCounts{AI: counts[0], Engineer: counts[1], IT: counts[2]}
	return enriched, nil
}

// searchKeyword runs one job search and returns the posting count. Every
// failure mode inside this procedure degrades to 0 for this keyword only;
// it never aborts the remaining keywords or companies. The results tab, if
// one opened, is closed and focus restored to the original tab on every
// exit path, so the next keyword starts from clean tab state.
func (b *Browser) searchKeyword(ctx context.Context, keyword string) (count int) {
	log := zap.L().With(zap.String("keyword", keyword))

	var tab ResultsTab
	defer func() {
		if tab != nil {
			if err := tab.Close(); err != nil {
				log.Warn("enrich: close results tab", zap.Error(err))
			}
		}
		if err := b.sess.FocusOriginal(ctx); err != nil {
			log.Warn("enrich: refocus original tab", zap.Error(err))
		}
	}()

	if err := b.sess.WaitVisible(ctx, searchInputSelector, b.waitTimeout); err != nil {
		log.Warn("enrich: search input not available", zap.Error(err))
		return 0
	}
	if err := b.sess.ClearAndType(ctx, searchInputSelector, keyword); err != nil {
		log.Warn("enrich: type keyword", zap.Error(err))
		return 0
	}
	if err := b.sess.Click(ctx, searchButtonSelector); err != nil {
		log.Warn("enrich: click search", zap.Error(err))
		return 0
	}

	var err error
	tab, err = b.sess.WaitForNewTab(ctx, b.waitTimeout)
	if err != nil {
		// The search never opened a results tab; the original tab remains
		// the control point.
		log.Debug("enrich: no results tab opened", zap.Error(err))
		return 0
	}

	text, err := tab.WaitText(ctx, resultsSummarySelector, b.waitTimeout)
	if err != nil {
		switch {
		case eris.Is(err, ErrStaleElement):
			// The summary rendered and vanished before it could be read:
			// no matching jobs, not a fault.
			return 0
		case eris.Is(err, ErrWaitTimeout):
			return 0
		default:
			log.Warn("enrich: read results summary", zap.Error(err))
			return 0
		}
	}

	return parseLeadingCount(text)
}

// parseLeadingCount extracts the leading integer from a results summary such
// as "1,024 results". Returns 0 when the text does not start with a number.
func parseLeadingCount(text string) int {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
