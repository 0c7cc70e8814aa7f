package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscan/internal/config"
	"github.com/sells-group/leadscan/internal/directory"
	"github.com/sells-group/leadscan/internal/model"
	"github.com/sells-group/leadscan/pkg/anthropic"
)

// extractSystemText is the fixed instruction block for company extraction.
// It is cached across the per-page calls of a run.
const extractSystemText = `You are a data analyst extracting company records from scraped web content.
The content is raw text from a company directory listing page. Enumerate ALL
companies mentioned and return a valid JSON object of the form:
{"companies": [{"company_name": ..., "industry": ..., "location": ..., "revenue": ..., "employees": ..., "details_page": ...}, ...]}
- company_name: the name of the company
- industry: the industry in which the company operates
- location: the location of the company's headquarters
- revenue: the company's annual revenue bracket, verbatim
- employees: the employee count bracket, verbatim
- details_page: absolute URL to the company details page
Do not include the directory site itself as a company.
Return only the JSON object, with no additional text.`

const extractPromptTemplate = "Content: ```%s```"

// slugPattern matches a LinkedIn company URL in detail page markup and
// captures the slug up to the next slash or quote delimiter.
var slugPattern = regexp.MustCompile(`https://linkedin\.com/company/([^/'"]+)`)

// extractedRow mirrors one extraction-service record. Pointer fields
// distinguish a missing key from an empty value so schema drift surfaces as
// an error instead of a truncated record.
type extractedRow struct {
	Name      *string `json:"company_name"`
	Industry  *string `json:"industry"`
	Location  *string `json:"location"`
	Revenue   *string `json:"revenue"`
	Employees *string `json:"employees"`
	Detail    *string `json:"details_page"`
}

type extractedList struct {
	Companies []extractedRow `json:"companies"`
}

// Extractor turns listing-page content into company records with resolved
// LinkedIn slugs.
type Extractor struct {
	ai           anthropic.Client
	aiCfg        config.AnthropicConfig
	dir          directory.Client
	resolveLimit int
}

// NewExtractor creates an Extractor. resolveLimit bounds concurrent
// detail-page fetches during slug resolution.
func NewExtractor(ai anthropic.Client, aiCfg config.AnthropicConfig, dir directory.Client, resolveLimit int) *Extractor {
	if resolveLimit <= 0 {
		resolveLimit = 10
	}
	return &Extractor{
		ai:           ai,
		aiCfg:        aiCfg,
		dir:          dir,
		resolveLimit: resolveLimit,
	}
}

// ExtractCompanies extracts all companies mentioned in one page's content
// and resolves each record's LinkedIn slug. Empty content yields zero
// companies. A record violating the extraction schema is a hard error, not
// a silently dropped row: silent truncation would hide systemic drift in
// the extraction service.
func (e *Extractor) ExtractCompanies(ctx context.Context, content model.PageContent) ([]model.CompanyWithSlug, error) {
	if strings.TrimSpace(content.Markdown) == "" {
		return nil, nil
	}

	maxTokens := int64(e.aiCfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.aiCfg.Model,
		MaxTokens: maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(extractSystemText),
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(extractPromptTemplate, content.Markdown)},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extract: page %d", content.Page.Index)
	}

	rows, err := parseExtraction(extractText(resp))
	if err != nil {
		return nil, eris.Wrapf(err, "extract: page %d", content.Page.Index)
	}

	companies := make([]model.CompanyWithSlug, len(rows))
	for i, row := range rows {
		companies[i] = model.CompanyWithSlug{Company: row}
	}

	// Slug resolution needs one detail-page fetch per company; run them with
	// the same bounded-fanout discipline as page retrieval, output in input
	// order.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.resolveLimit)
	for i := range companies {
		g.Go(func() error {
			companies[i].Slug = e.resolveSlug(gCtx, companies[i].DetailPageURL)
			return nil
		})
	}
	_ = g.Wait()

	return companies, nil
}

// resolveSlug fetches the detail page and pattern-matches the LinkedIn slug
// out of the markup. A page without the pattern, or an unreachable page,
// yields an empty slug: a company with no known LinkedIn presence is valid
// data, not an error.
func (e *Extractor) resolveSlug(ctx context.Context, detailURL string) string {
	body, err := e.dir.Detail(ctx, detailURL)
	if err != nil {
		zap.L().Warn("extract: detail page fetch failed",
			zap.String("url", detailURL),
			zap.Error(err),
		)
		return ""
	}

	match := slugPattern.FindStringSubmatch(body)
	if match == nil {
		return ""
	}

	return html.UnescapeString(match[1])
}

// parseExtraction validates the extraction-service payload. Every row must
// carry all six fields with non-empty values.
func parseExtraction(text string) ([]model.Company, error) {
	var list extractedList
	if err := json.Unmarshal([]byte(cleanJSON(text)), &list); err != nil {
		return nil, eris.Wrap(err, "parse extraction payload")
	}

	companies := make([]model.Company, 0, len(list.Companies))
	for i, row := range list.Companies {
		fields := map[string]*string{
			"company_name": row.Name,
			"industry":     row.Industry,
			"location":     row.Location,
			"revenue":      row.Revenue,
			"employees":    row.Employees,
			"details_page": row.Detail,
		}
		for _, name := range []string{"company_name", "industry", "location", "revenue", "employees", "details_page"} {
			v := fields[name]
			if v == nil || strings.TrimSpace(*v) == "" {
				return nil, eris.Errorf("company %d missing required field %q", i, name)
			}
		}
		companies = append(companies, model.Company{
			Name:          *row.Name,
			Industry:      *row.Industry,
			Location:      *row.Location,
			Revenue:       *row.Revenue,
			Employees:     *row.Employees,
			DetailPageURL: *row.Detail,
		})
	}

	return companies, nil
}

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
