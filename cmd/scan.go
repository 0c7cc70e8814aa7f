package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscan/internal/directory"
	"github.com/sells-group/leadscan/internal/discovery"
	"github.com/sells-group/leadscan/internal/enrich"
	"github.com/sells-group/leadscan/internal/output"
	"github.com/sells-group/leadscan/internal/pipeline"
	anthropicpkg "github.com/sells-group/leadscan/pkg/anthropic"
	"github.com/sells-group/leadscan/pkg/coresignal"
	"github.com/sells-group/leadscan/pkg/firecrawl"
	"github.com/sells-group/leadscan/pkg/jina"
)

var (
	scanIndustry string
	scanRevenue  string
	scanMaxPages int
	scanSource   string
	scanOutput   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan one industry/revenue filter and write enriched companies to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		industry := directory.NormalizeIndustryGroup(scanIndustry)
		if !directory.ValidRevenueBracket(scanRevenue) {
			return eris.Errorf("unknown revenue bracket %q (one of: %s)",
				scanRevenue, strings.Join(directory.RevenueBrackets, ", "))
		}

		source := scanSource
		if source == "" {
			source = cfg.Pipeline.Source
		}

		// Init clients
		dirClient := directory.NewClient(cfg.Directory.BaseURL)
		jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
		firecrawlClient := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

		strategy, cleanup, err := buildStrategy(source)
		if err != nil {
			return err
		}
		defer cleanup()

		p := pipeline.New(
			discovery.New(dirClient),
			jinaClient,
			firecrawlClient,
			pipeline.NewExtractor(anthropicClient, cfg.Anthropic, dirClient, cfg.Pipeline.ResolveConcurrency),
			strategy,
			cfg.Pipeline,
		)

		companies, report, err := p.Run(ctx, pipeline.Params{
			IndustryGroup:  industry,
			RevenueBracket: scanRevenue,
			MaxPages:       scanMaxPages,
		})
		if err != nil {
			return eris.Wrap(err, "scan")
		}

		path := scanOutput
		if path == "" {
			path = output.Filename(industry, scanRevenue)
		}
		if err := output.WriteCSVFile(path, companies); err != nil {
			return err
		}

		fmt.Printf("wrote %d companies to %s (pages=%d extracted=%d skipped=%d failed=%d quota_exhausted=%d)\n",
			report.Enriched, path, report.Pages, report.Extracted, report.Skipped, report.Failed, report.QuotaExhausted)
		return nil
	},
}

// buildStrategy constructs the enrichment strategy for the chosen source.
// The returned cleanup tears down any browser session; it is a no-op for
// the API path.
func buildStrategy(source string) (enrich.Strategy, func(), error) {
	switch source {
	case "api":
		client := coresignal.NewClient(cfg.Coresignal.Key, coresignal.WithBaseURL(cfg.Coresignal.BaseURL))
		return enrich.NewAPI(client, cfg.Coresignal.RequestsPerSecond, cfg.Pipeline.EnrichConcurrency), func() {}, nil
	case "browser":
		if cfg.LinkedIn.SessionCookie == "" {
			return nil, nil, eris.New("linkedin session cookie is required for the browser source")
		}
		sess, err := enrich.NewPlaywrightSession(cfg.LinkedIn)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := sess.Close(); err != nil {
				zap.L().Warn("scan: close browser session", zap.Error(err))
			}
		}
		var opts []enrich.BrowserOption
		if cfg.LinkedIn.ElementWaitSecs > 0 {
			opts = append(opts, enrich.WithWaitTimeout(time.Duration(cfg.LinkedIn.ElementWaitSecs)*time.Second))
		}
		return enrich.NewBrowser(sess, opts...), cleanup, nil
	default:
		return nil, nil, eris.Errorf("unknown enrichment source %q (api or browser)", source)
	}
}

func init() {
	scanCmd.Flags().StringVar(&scanIndustry, "industry", "", "industry group to search (required)")
	scanCmd.Flags().StringVar(&scanRevenue, "revenue", "", "revenue bracket, e.g. 10m-25m (required)")
	scanCmd.Flags().IntVar(&scanMaxPages, "max-pages", 0, "cap on listing pages, 0 means all")
	scanCmd.Flags().StringVar(&scanSource, "source", "", "job-count source: api or browser (default from config)")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "output CSV path (default companies_<industry>_<revenue>.csv)")
	_ = scanCmd.MarkFlagRequired("industry")
	_ = scanCmd.MarkFlagRequired("revenue")
	rootCmd.AddCommand(scanCmd)
}
