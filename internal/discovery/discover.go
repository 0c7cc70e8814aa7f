// Package discovery walks directory listing pages for an industry/revenue
// filter until the site signals the end of results.
package discovery

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscan/internal/directory"
	"github.com/sells-group/leadscan/internal/model"
)

// Discoverer enumerates the listing pages for one search. Discovery is
// strictly sequential: each page's existence gates the next request.
type Discoverer struct {
	client directory.Client
}

// New creates a Discoverer backed by the given directory client.
func New(client directory.Client) *Discoverer {
	return &Discoverer{client: client}
}

// Discover returns the finite set of listing pages for the filter, in page
// order. It stops at the first page carrying the directory's not-found
// marker, exclusive of that page; a not-found first page yields an empty
// slice, not an error. maxPages <= 0 means no cap. The result is eager so
// downstream stages know the page count upfront.
func (d *Discoverer) Discover(ctx context.Context, industryGroup, revenueBracket string, maxPages int) ([]model.ListingPage, error) {
	log := zap.L().With(
		zap.String("industry", industryGroup),
		zap.String("revenue", revenueBracket),
	)

	var pages []model.ListingPage
	for page := 1; ; page++ {
		res, err := d.client.Listing(ctx, industryGroup, revenueBracket, page)
		if err != nil {
			return nil, eris.Wrapf(err, "discovery: page %d", page)
		}
		if res.NotFound {
			break
		}

		pages = append(pages, model.ListingPage{URL: res.URL, Index: page})
		if maxPages > 0 && len(pages) >= maxPages {
			break
		}
	}

	log.Info("discovery: listing pages found", zap.Int("pages", len(pages)))
	return pages, nil
}
