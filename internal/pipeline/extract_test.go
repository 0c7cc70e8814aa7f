package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscan/internal/config"
	"github.com/sells-group/leadscan/internal/directory"
	"github.com/sells-group/leadscan/internal/model"
	"github.com/sells-group/leadscan/pkg/anthropic"
)

type fakeAnthropic struct {
	response string
	err      error
	lastReq  anthropic.MessageRequest
}

func (f *fakeAnthropic) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.response}},
	}, nil
}

type fakeDetailDirectory struct {
	pages map[string]string // detail URL -> body
	err   error
}

func (f *fakeDetailDirectory) Listing(context.Context, string, string, int) (*directory.ListingResult, error) {
	return nil, eris.New("not used")
}

func (f *fakeDetailDirectory) Detail(_ context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

const extractionPayload = `{"companies": [
	{"company_name": "Acme Corp", "industry": "Plumbing", "location": "Austin, TX", "revenue": "$10M-$25M", "employees": "51-200", "details_page": "https://example.com/acme"},
	{"company_name": "Globex", "industry": "Plumbing", "location": "Boston, MA", "revenue": "$10M-$25M", "employees": "11-50", "details_page": "https://example.com/globex"}
]}`

func testContent(markdown string) model.PageContent {
	return model.PageContent{Page: model.ListingPage{URL: "https://example.com?page=1", Index: 1}, Markdown: markdown}
}

func TestExtractCompanies_ParsesFencedJSON(t *testing.T) {
	t.Parallel()

	ai := &fakeAnthropic{response: "```json\n" + extractionPayload + "\n```"}
	dir := &fakeDetailDirectory{pages: map[string]string{
		"https://example.com/acme":   `<a href="https://linkedin.com/company/acme-corp/">li</a>`,
		"https://example.com/globex": `no linkedin link here`,
	}}

	e := NewExtractor(ai, config.AnthropicConfig{Model: "claude-haiku-4-5-20251001"}, dir, 2)
	companies, err := e.ExtractCompanies(context.Background(), testContent("## Listing page"))

	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Acme Corp", companies[0].Name)
	assert.Equal(t, "acme-corp", companies[0].Slug)
	assert.Equal(t, "Globex", companies[1].Name)
	assert.Empty(t, companies[1].Slug)
}

func TestExtractCompanies_EmptyContent(t *testing.T) {
	t.Parallel()

	ai := &fakeAnthropic{}
	e := NewExtractor(ai, config.AnthropicConfig{}, &fakeDetailDirectory{}, 1)

	companies, err := e.ExtractCompanies(context.Background(), testContent("  \n "))

	require.NoError(t, err)
	assert.Nil(t, companies)
	// No extraction call is made for an empty page.
	assert.Empty(t, ai.lastReq.Messages)
}

func TestExtractCompanies_MissingFieldFailsRun(t *testing.T) {
	t.Parallel()

	ai := &fakeAnthropic{response: `{"companies": [
		{"company_name": "Acme Corp", "industry": "Plumbing", "location": "Austin, TX", "revenue": "$10M-$25M", "employees": "51-200"}
	]}`}
	e := NewExtractor(ai, config.AnthropicConfig{}, &fakeDetailDirectory{}, 1)

	_, err := e.ExtractCompanies(context.Background(), testContent("content"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "details_page")
}

func TestExtractCompanies_EmptyFieldFailsRun(t *testing.T) {
	t.Parallel()

	ai := &fakeAnthropic{response: `{"companies": [
		{"company_name": "", "industry": "Plumbing", "location": "Austin, TX", "revenue": "$10M-$25M", "employees": "51-200", "details_page": "https://example.com/x"}
	]}`}
	e := NewExtractor(ai, config.AnthropicConfig{}, &fakeDetailDirectory{}, 1)

	_, err := e.ExtractCompanies(context.Background(), testContent("content"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "company_name")
}

func TestExtractCompanies_DetailFetchFailureYieldsEmptySlug(t *testing.T) {
	t.Parallel()

	ai := &fakeAnthropic{response: extractionPayload}
	dir := &fakeDetailDirectory{err: eris.New("connection refused")}
	e := NewExtractor(ai, config.AnthropicConfig{}, dir, 2)

	companies, err := e.ExtractCompanies(context.Background(), testContent("content"))

	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Empty(t, companies[0].Slug)
	assert.Empty(t, companies[1].Slug)
}

func TestResolveSlug_UnescapesEntities(t *testing.T) {
	t.Parallel()

	dir := &fakeDetailDirectory{pages: map[string]string{
		"https://example.com/x": `href="https://linkedin.com/company/foo&#39;s-co/"`,
	}}
	e := NewExtractor(&fakeAnthropic{}, config.AnthropicConfig{}, dir, 1)

	assert.Equal(t, "foo's-co", e.resolveSlug(context.Background(), "https://example.com/x"))
}

func TestCleanJSON(t *testing.T) {
	t.Parallel()

	// cleanJSON strips fences and surrounding prose.
	assert.Equal(t, `{"companies": []}`, cleanJSON("Here you go:\n```json\n{\"companies\": []}\n```\nDone."))
	assert.Equal(t, `{"a":1}`, cleanJSON("{\"a\":1}"))
}
