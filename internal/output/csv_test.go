package output

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscan/internal/model"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	companies := []model.EnrichedCompany{
		{
			CompanyWithSlug: model.CompanyWithSlug{
				Company: model.Company{
					Name:          "Acme, Inc.",
					Industry:      "Plumbing",
					Location:      "Austin, TX",
					Revenue:       "$10M-$25M",
					Employees:     "51-200",
					DetailPageURL: "https://example.com/acme",
				},
				Slug: "acme-inc",
			},
			Counts: model.JobCounts{AI: 3, Engineer: 12, IT: 0},
		},
		{
			CompanyWithSlug: model.CompanyWithSlug{
				Company: model.Company{
					Name:          "Globex",
					Industry:      "Plumbing",
					Location:      "Boston, MA",
					Revenue:       "$10M-$25M",
					Employees:     "11-50",
					DetailPageURL: "https://example.com/globex",
				},
				Slug: "globex",
			},
			Counts: model.JobCounts{AI: model.CountUnavailable, Engineer: 5, IT: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, companies))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"company_name", "industry", "location", "revenue", "employees",
		"details_page", "linkedin_slug", "ai_jobs", "engineer_jobs", "it_jobs",
	}, rows[0])

	// Commas inside fields survive the round trip.
	assert.Equal(t, "Acme, Inc.", rows[1][0])
	assert.Equal(t, "3", rows[1][7])

	// The unavailable sentinel is written as -1, distinct from a zero.
	assert.Equal(t, "-1", rows[2][7])
	assert.Equal(t, "5", rows[2][8])
}

func TestWriteCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "companies_plumbing_10m-25m.csv", Filename("plumbing", "10m-25m"))
}
