package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscan/internal/model"
	"github.com/sells-group/leadscan/pkg/firecrawl"
	"github.com/sells-group/leadscan/pkg/jina"
)

// RetrievePages fetches rendered markdown for all listing pages, Jina first
// with a per-page Firecrawl fallback. Fetches run concurrently up to limit;
// the result preserves input order (output[i] matches pages[i]). A page
// whose retrieval fails on both paths degrades to empty content and never
// aborts the batch.
func RetrievePages(ctx context.Context, pages []model.ListingPage, jinaClient jina.Client, fcClient firecrawl.Client, limit int) []model.PageContent {
	if limit <= 0 {
		limit = 10
	}

	contents := make([]model.PageContent, len(pages))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, page := range pages {
		contents[i] = model.PageContent{Page: page}
		g.Go(func() error {
			md, err := renderPage(gCtx, page.URL, jinaClient, fcClient)
			if err != nil {
				zap.L().Warn("retrieve: page degraded to empty content",
					zap.String("url", page.URL),
					zap.Int("page", page.Index),
					zap.Error(err),
				)
				return nil
			}
			contents[i].Markdown = md
			return nil
		})
	}

	_ = g.Wait()
	return contents
}

// renderPage fetches one URL as markdown via Jina, falling back to a
// Firecrawl scrape when Jina fails or returns empty content.
func renderPage(ctx context.Context, pageURL string, jinaClient jina.Client, fcClient firecrawl.Client) (string, error) {
	resp, err := jinaClient.Read(ctx, pageURL)
	if err == nil && resp.Data.Content != "" {
		return resp.Data.Content, nil
	}
	if err != nil {
		zap.L().Debug("retrieve: jina fetch failed, trying firecrawl",
			zap.String("url", pageURL),
			zap.Error(err),
		)
	}

	if fcClient == nil {
		return "", err
	}

	fcResp, fcErr := fcClient.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     pageURL,
		Formats: []string{"markdown"},
	})
	if fcErr != nil {
		return "", fcErr
	}
	if !fcResp.Success {
		return "", eris.New("firecrawl: scrape not successful")
	}
	return fcResp.Data.Markdown, nil
}
