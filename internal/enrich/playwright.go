package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscan/internal/config"
)

// loginLandmarkSelector is the element that proves the li_at cookie produced
// a logged-in session.
const loginLandmarkSelector = ".profile-card"

// playwrightSession implements Session over a Playwright Firefox browser.
// One instance is created per run: re-authenticating per company is
// disallowed for cost and latency reasons.
type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page // the original tab; the control point
	results playwright.Page // open results tab, nil when none
	baseURL string
}

// NewPlaywrightSession launches a browser, logs into LinkedIn with the
// session cookie and verifies the post-login landmark. A missing landmark
// fails the whole run: nothing downstream works without authentication.
func NewPlaywrightSession(cfg config.LinkedInConfig) (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, eris.Wrap(err, "enrich: start playwright")
	}

	browser, err := pw.Firefox.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, eris.Wrap(err, "enrich: launch browser")
	}

	bctx, err := browser.NewContext()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, eris.Wrap(err, "enrich: new browser context")
	}

	s := &playwrightSession{
		pw:      pw,
		browser: browser,
		bctx:    bctx,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
	if s.baseURL == "" {
		s.baseURL = "https://www.linkedin.com"
	}

	if err := bctx.AddCookies([]playwright.OptionalCookie{{
		Name:   "li_at",
		Value:  cfg.SessionCookie,
		Domain: playwright.String(".linkedin.com"),
		Path:   playwright.String("/"),
	}}); err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "enrich: set session cookie")
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "enrich: open page")
	}
	s.page = page

	if _, err := page.Goto(s.baseURL+"/", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "enrich: open linkedin")
	}

	loginWait := time.Duration(cfg.LoginWaitSecs) * time.Second
	if loginWait == 0 {
		loginWait = 10 * time.Second
	}
	if err := page.Locator(loginLandmarkSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(loginWait.Milliseconds())),
	}); err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "enrich: login landmark never appeared")
	}

	zap.L().Info("enrich: browser session authenticated")
	return s, nil
}

func (s *playwrightSession) NavigateJobs(_ context.Context, slug string) error {
	_, err := s.page.Goto(fmt.Sprintf("%s/company/%s/jobs", s.baseURL, slug), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (s *playwrightSession) PageSource(_ context.Context) (string, error) {
	return s.page.Content()
}

func (s *playwrightSession) WaitVisible(_ context.Context, selector string, timeout time.Duration) error {
	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil && isTimeout(err) {
		return ErrWaitTimeout
	}
	return err
}

func (s *playwrightSession) ClearAndType(_ context.Context, selector, text string) error {
	// Fill clears the input before typing.
	return s.page.Locator(selector).First().Fill(text)
}

func (s *playwrightSession) Click(_ context.Context, selector string) error {
	return s.page.Locator(selector).First().Click()
}

// WaitForNewTab polls the context's page list until a tab other than the
// original appears, mirroring the window-handle wait of the underlying UI
// procedure.
func (s *playwrightSession) WaitForNewTab(ctx context.Context, timeout time.Duration) (ResultsTab, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		for _, p := range s.bctx.Pages() {
			if p != s.page {
				s.results = p
				return &playwrightTab{page: p}, nil
			}
		}
		if time.Now().After(deadline) {
			return nil, ErrWaitTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *playwrightSession) FocusOriginal(_ context.Context) error {
	s.results = nil
	return s.page.BringToFront()
}

func (s *playwrightSession) Close() error {
	var errs []error
	if s.bctx != nil {
		errs = append(errs, s.bctx.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}

// playwrightTab wraps a results page.
type playwrightTab struct {
	page playwright.Page
}

func (t *playwrightTab) WaitText(_ context.Context, selector string, timeout time.Duration) (string, error) {
	loc := t.page.Locator(selector).First()

	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if isTimeout(err) {
			return "", ErrWaitTimeout
		}
		return "", err
	}

	text, err := loc.TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(1000),
	})
	if err != nil {
		// The element was visible a moment ago; it detached before the
		// read. That is the empty-results race.
		return "", ErrStaleElement
	}
	return text, nil
}

func (t *playwrightTab) Close() error {
	return t.page.Close()
}

// isTimeout reports whether a playwright error is a timeout.
func isTimeout(err error) bool {
	var pwErr *playwright.Error
	if errors.As(err, &pwErr) {
		return pwErr.Name == "TimeoutError"
	}
	return strings.Contains(err.Error(), "Timeout")
}
