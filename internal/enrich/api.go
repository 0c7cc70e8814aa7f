package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscan/internal/model"
	"github.com/sells-group/leadscan/pkg/coresignal"
)

// API enriches companies through the Coresignal job-search API. Unlike the
// browser strategy it has no shared session state, so companies may be
// enriched concurrently up to the configured bound; the limiter keeps the
// aggregate request rate within the provider's quota.
type API struct {
	client      coresignal.Client
	limiter     *rate.Limiter
	concurrency int
}

// NewAPI creates the API enrichment strategy. requestsPerSecond throttles
// lookups across all in-flight companies.
func NewAPI(client coresignal.Client, requestsPerSecond float64, concurrency int) *API {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	if concurrency <= 0 {
		concurrency = 5
	}
	return &API{
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		concurrency: concurrency,
	}
}

func (a *API) Name() string { return "api" }

func (a *API) Concurrency() int { return a.concurrency }

// Enrich looks up each role keyword for the company. Quota exhaustion on one
// keyword records the unavailable sentinel and continues with the remaining
// keywords; the sentinel must reach the report rather than being coerced to
// a zero.
func (a *API) Enrich(ctx context.Context, company model.CompanyWithSlug) (model.EnrichedCompany, error) {
	enriched := model.EnrichedCompany{CompanyWithSlug: company}
	log := zap.L().With(zap.String("company", company.Name), zap.String("slug", company.Slug))

	var counts [3]int
	for i, keyword := range model.RoleKeywords {
		if err := a.limiter.Wait(ctx); err != nil {
			return enriched, eris.Wrap(err, "enrich: rate limiter")
		}

		count, err := a.client.SearchJobs(ctx, company.Slug, keyword)
		if err != nil {
			if eris.Is(err, coresignal.ErrQuotaExhausted) {
				log.Warn("enrich: lookup quota exhausted", zap.String("keyword", keyword))
				counts[i] = model.CountUnavailable
				continue
			}
			return enriched, eris.Wrapf(err, "enrich: search %q", keyword)
		}
		counts[i] = count
	}

	enriched.Counts = model.JobCounts{AI: counts[0], Engineer: counts[1], IT: counts[2]}
	return enriched, nil
}
