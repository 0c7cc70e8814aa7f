package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscan/internal/model"
	"github.com/sells-group/leadscan/pkg/firecrawl"
	"github.com/sells-group/leadscan/pkg/jina"
)

type fakeJina struct {
	read func(ctx context.Context, url string) (*jina.ReadResponse, error)
}

func (f *fakeJina) Read(ctx context.Context, url string) (*jina.ReadResponse, error) {
	return f.read(ctx, url)
}

type fakeFirecrawl struct {
	scrape func(ctx context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error)
	calls  atomic.Int64
}

func (f *fakeFirecrawl) Scrape(ctx context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	f.calls.Add(1)
	return f.scrape(ctx, req)
}

func listingPages(n int) []model.ListingPage {
	pages := make([]model.ListingPage, n)
	for i := range pages {
		pages[i] = model.ListingPage{URL: fmt.Sprintf("https://example.com?page=%d", i+1), Index: i + 1}
	}
	return pages
}

func TestRetrievePages_PreservesOrder(t *testing.T) {
	t.Parallel()

	// Later pages respond faster than earlier ones; order must still match
	// the input.
	j := &fakeJina{read: func(_ context.Context, url string) (*jina.ReadResponse, error) {
		var page int
		fmt.Sscanf(url, "https://example.com?page=%d", &page)
		time.Sleep(time.Duration(10-page) * time.Millisecond)
		return &jina.ReadResponse{Data: jina.ReadData{Content: fmt.Sprintf("content-%d", page)}}, nil
	}}

	contents := RetrievePages(context.Background(), listingPages(5), j, nil, 5)

	require.Len(t, contents, 5)
	for i, c := range contents {
		assert.Equal(t, i+1, c.Page.Index)
		assert.Equal(t, fmt.Sprintf("content-%d", i+1), c.Markdown)
	}
}

func TestRetrievePages_FallsBackToFirecrawl(t *testing.T) {
	t.Parallel()

	j := &fakeJina{read: func(context.Context, string) (*jina.ReadResponse, error) {
		return nil, eris.New("jina: unexpected status 500")
	}}
	fc := &fakeFirecrawl{scrape: func(_ context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
		return &firecrawl.ScrapeResponse{
			Success: true,
			Data:    firecrawl.PageData{Markdown: "fallback content"},
		}, nil
	}}

	contents := RetrievePages(context.Background(), listingPages(2), j, fc, 2)

	require.Len(t, contents, 2)
	assert.Equal(t, "fallback content", contents[0].Markdown)
	assert.Equal(t, "fallback content", contents[1].Markdown)
	assert.Equal(t, int64(2), fc.calls.Load())
}

func TestRetrievePages_DoubleFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	j := &fakeJina{read: func(context.Context, string) (*jina.ReadResponse, error) {
		return nil, eris.New("jina down")
	}}
	fc := &fakeFirecrawl{scrape: func(context.Context, firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
		return nil, eris.New("firecrawl down")
	}}

	contents := RetrievePages(context.Background(), listingPages(3), j, fc, 3)

	// A failed page leaves an empty slot; the batch never aborts.
	require.Len(t, contents, 3)
	for i, c := range contents {
		assert.Equal(t, i+1, c.Page.Index)
		assert.Empty(t, c.Markdown)
	}
}

func TestRetrievePages_EmptyJinaContentTriggersFallback(t *testing.T) {
	t.Parallel()

	j := &fakeJina{read: func(context.Context, string) (*jina.ReadResponse, error) {
		return &jina.ReadResponse{Data: jina.ReadData{Content: ""}}, nil
	}}
	fc := &fakeFirecrawl{scrape: func(context.Context, firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
		return &firecrawl.ScrapeResponse{Success: true, Data: firecrawl.PageData{Markdown: "rendered"}}, nil
	}}

	contents := RetrievePages(context.Background(), listingPages(1), j, fc, 1)

	require.Len(t, contents, 1)
	assert.Equal(t, "rendered", contents[0].Markdown)
}
