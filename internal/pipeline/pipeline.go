// Package pipeline wires discovery, retrieval, extraction and enrichment
// into one run per industry/revenue filter.
package pipeline

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscan/internal/config"
	"github.com/sells-group/leadscan/internal/discovery"
	"github.com/sells-group/leadscan/internal/enrich"
	"github.com/sells-group/leadscan/internal/model"
	"github.com/sells-group/leadscan/pkg/firecrawl"
	"github.com/sells-group/leadscan/pkg/jina"
)

// Params select what one run scans.
type Params struct {
	IndustryGroup  string
	RevenueBracket string
	MaxPages       int // <= 0 means no cap
}

// Report summarizes a run for the operator.
type Report struct {
	Pages          int // listing pages discovered
	Extracted      int // companies extracted across all pages
	Skipped        int // companies without a LinkedIn slug, not enriched
	Failed         int // companies whose enrichment failed and were omitted
	Enriched       int // companies in the output
	QuotaExhausted int // enriched companies carrying an unavailable count
}

// Pipeline runs the full scan.
type Pipeline struct {
	discoverer *discovery.Discoverer
	jina       jina.Client
	firecrawl  firecrawl.Client
	extractor  *Extractor
	strategy   enrich.Strategy
	cfg        config.PipelineConfig
}

// New assembles a Pipeline. The firecrawl client may be nil; retrieval then
// has no fallback path.
func New(discoverer *discovery.Discoverer, jinaClient jina.Client, fcClient firecrawl.Client, extractor *Extractor, strategy enrich.Strategy, cfg config.PipelineConfig) *Pipeline {
	return &Pipeline{
		discoverer: discoverer,
		jina:       jinaClient,
		firecrawl:  fcClient,
		extractor:  extractor,
		strategy:   strategy,
		cfg:        cfg,
	}
}

// Run executes one scan end to end and returns the enriched companies in
// discovery order. Extraction schema violations abort the run; per-company
// enrichment failures drop the company from the output and are tallied in
// the report.
func (p *Pipeline) Run(ctx context.Context, params Params) ([]model.EnrichedCompany, Report, error) {
	var report Report
	log := zap.L().With(
		zap.String("industry", params.IndustryGroup),
		zap.String("revenue", params.RevenueBracket),
	)

	pages, err := p.discoverer.Discover(ctx, params.IndustryGroup, params.RevenueBracket, params.MaxPages)
	if err != nil {
		return nil, report, err
	}
	report.Pages = len(pages)
	if len(pages) == 0 {
		log.Info("pipeline: no listing pages for filter")
		return nil, report, nil
	}

	contents := RetrievePages(ctx, pages, p.jina, p.firecrawl, p.cfg.FetchConcurrency)

	companies, err := p.extractAll(ctx, contents)
	if err != nil {
		return nil, report, err
	}
	report.Extracted = len(companies)
	log.Info("pipeline: extraction complete",
		zap.Int("pages", len(pages)),
		zap.Int("companies", len(companies)),
	)

	enriched := p.enrichAll(ctx, companies, &report)
	report.Enriched = len(enriched)

	log.Info("pipeline: run complete",
		zap.Int("extracted", report.Extracted),
		zap.Int("enriched", report.Enriched),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("quota_exhausted", report.QuotaExhausted),
	)
	return enriched, report, nil
}

// extractAll extracts companies from every page concurrently and flattens
// the results in page order. Any page's schema violation fails the whole
// run.
func (p *Pipeline) extractAll(ctx context.Context, contents []model.PageContent) ([]model.CompanyWithSlug, error) {
	limit := p.cfg.ExtractConcurrency
	if limit <= 0 {
		limit = 4
	}

	perPage := make([][]model.CompanyWithSlug, len(contents))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, content := range contents {
		g.Go(func() error {
			companies, err := p.extractor.ExtractCompanies(gCtx, content)
			if err != nil {
				return err
			}
			perPage[i] = companies
			zap.L().Info("pipeline: page extracted",
				zap.Int("page", content.Page.Index),
				zap.Int("total_pages", len(contents)),
				zap.Int("companies", len(companies)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var companies []model.CompanyWithSlug
	for _, batch := range perPage {
		companies = append(companies, batch...)
	}
	return companies, nil
}

// enrichAll runs the strategy over every company that has a slug, bounded
// by the strategy's own concurrency. Output keeps input order; failed
// companies leave a gap that is squeezed out at the end.
func (p *Pipeline) enrichAll(ctx context.Context, companies []model.CompanyWithSlug, report *Report) []model.EnrichedCompany {
	results := make([]*model.EnrichedCompany, len(companies))
	total := len(companies)

	var failed atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.strategy.Concurrency())
	for i, company := range companies {
		if company.Slug == "" {
			report.Skipped++
			zap.L().Info("pipeline: company has no linkedin slug, skipping enrichment",
				zap.String("company", company.Name),
			)
			continue
		}

		g.Go(func() error {
			zap.L().Info("pipeline: enriching company",
				zap.Int("index", i+1),
				zap.Int("total", total),
				zap.String("company", company.Name),
				zap.String("strategy", p.strategy.Name()),
			)
			enriched, err := p.strategy.Enrich(gCtx, company)
			if err != nil {
				failed.Add(1)
				zap.L().Warn("pipeline: enrichment failed, company omitted",
					zap.String("company", company.Name),
					zap.Error(err),
				)
				return nil
			}
			results[i] = &enriched
			return nil
		})
	}
	_ = g.Wait()
	report.Failed = int(failed.Load())

	out := make([]model.EnrichedCompany, 0, len(companies))
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Counts.Unavailable() {
			report.QuotaExhausted++
		}
		out = append(out, *r)
	}
	return out
}
