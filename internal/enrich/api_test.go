package enrich

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscan/internal/model"
	"github.com/sells-group/leadscan/pkg/coresignal"
)

type fakeCoresignal struct {
	counts map[string]int
	errs   map[string]error
	calls  []string
}

func (f *fakeCoresignal) SearchJobs(_ context.Context, slug, keyword string) (int, error) {
	f.calls = append(f.calls, keyword)
	if err, ok := f.errs[keyword]; ok {
		return 0, err
	}
	return f.counts[keyword], nil
}

func TestAPIEnrich_AllKeywords(t *testing.T) {
	t.Parallel()

	cs := &fakeCoresignal{counts: map[string]int{"AI": 2, "Engineer": 15, "IT": 4}}
	api := NewAPI(cs, 100, 1)

	enriched, err := api.Enrich(context.Background(), testCompany())

	require.NoError(t, err)
	assert.Equal(t, model.JobCounts{AI: 2, Engineer: 15, IT: 4}, enriched.Counts)
	assert.Equal(t, []string{"AI", "Engineer", "IT"}, cs.calls)
}

func TestAPIEnrich_QuotaExhaustedKeepsGoing(t *testing.T) {
	t.Parallel()

	cs := &fakeCoresignal{
		counts: map[string]int{"AI": 2, "IT": 4},
		errs:   map[string]error{"Engineer": coresignal.ErrQuotaExhausted},
	}
	api := NewAPI(cs, 100, 1)

	enriched, err := api.Enrich(context.Background(), testCompany())

	// Quota on one keyword records the sentinel and continues; it is not a
	// company-level failure.
	require.NoError(t, err)
	assert.Equal(t, model.JobCounts{AI: 2, Engineer: model.CountUnavailable, IT: 4}, enriched.Counts)
	assert.True(t, enriched.Counts.Unavailable())
	assert.Equal(t, []string{"AI", "Engineer", "IT"}, cs.calls)
}

func TestAPIEnrich_OtherErrorFailsCompany(t *testing.T) {
	t.Parallel()

	cs := &fakeCoresignal{
		counts: map[string]int{"AI": 2},
		errs:   map[string]error{"Engineer": eris.New("coresignal: unexpected status 500")},
	}
	api := NewAPI(cs, 100, 1)

	_, err := api.Enrich(context.Background(), testCompany())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Engineer")
}

func TestAPIConcurrencyConfigurable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, NewAPI(&fakeCoresignal{}, 1, 8).Concurrency())
	// Zero falls back to the default.
	assert.Equal(t, 5, NewAPI(&fakeCoresignal{}, 1, 0).Concurrency())
}
