// Package output writes enriched company records to CSV.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscan/internal/model"
)

var csvHeader = []string{
	"company_name",
	"industry",
	"location",
	"revenue",
	"employees",
	"details_page",
	"linkedin_slug",
	"ai_jobs",
	"engineer_jobs",
	"it_jobs",
}

// Filename returns the default output file name for a scan's filter.
func Filename(industryGroup, revenueBracket string) string {
	return fmt.Sprintf("companies_%s_%s.csv", industryGroup, revenueBracket)
}

// WriteCSV writes the records with a header row. Count sentinels are
// written as-is, so an unavailable count appears as -1 and stays
// distinguishable from a real zero.
func WriteCSV(w io.Writer, companies []model.EnrichedCompany) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "output: write csv header")
	}
	for _, c := range companies {
		row := []string{
			c.Name,
			c.Industry,
			c.Location,
			c.Revenue,
			c.Employees,
			c.DetailPageURL,
			c.Slug,
			strconv.Itoa(c.Counts.AI),
			strconv.Itoa(c.Counts.Engineer),
			strconv.Itoa(c.Counts.IT),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "output: write csv row for %q", c.Name)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "output: flush csv")
	}
	return nil
}

// WriteCSVFile writes the records to the given path, creating or truncating
// the file.
func WriteCSVFile(path string, companies []model.EnrichedCompany) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "output: create %s", path)
	}
	defer f.Close()

	return WriteCSV(f, companies)
}
