package model

// RoleKeywords are the job categories counted for every company, in the
// order they are searched.
var RoleKeywords = [3]string{"AI", "Engineer", "IT"}

// CountUnavailable marks a job count that could not be retrieved because the
// lookup provider ran out of credits. Distinct from a legitimate zero.
const CountUnavailable = -1

// ListingPage is one paginated directory results page.
type ListingPage struct {
	URL   string `json:"url"`
	Index int    `json:"index"` // 1-based position within the discovery run
}

// PageContent is the rendered text content of one listing page. Empty
// markdown means retrieval failed for that page; downstream treats it as
// zero extracted companies.
type PageContent struct {
	Page     ListingPage `json:"page"`
	Markdown string      `json:"markdown"`
}

// Company is a single extracted directory record. All fields are free-text
// as returned by extraction; the revenue and employee brackets stay opaque
// categorical strings, never parsed numerically.
type Company struct {
	Name          string `json:"company_name"`
	Industry      string `json:"industry"`
	Location      string `json:"location"`
	Revenue       string `json:"revenue"`
	Employees     string `json:"employees"`
	DetailPageURL string `json:"details_page"`
}

// CompanyWithSlug attaches the resolved LinkedIn company slug. An empty slug
// means the company has no known LinkedIn presence; that is valid data, not
// an error.
type CompanyWithSlug struct {
	Company
	Slug string `json:"linkedin_slug"`
}

// JobCounts holds per-role posting counts. A value of CountUnavailable means
// the lookup for that role failed on provider quota, not that zero postings
// exist.
type JobCounts struct {
	AI       int `json:"ai_jobs"`
	Engineer int `json:"engineer_jobs"`
	IT       int `json:"it_jobs"`
}

// Unavailable reports whether any count carries the quota sentinel.
func (c JobCounts) Unavailable() bool {
	return c.AI == CountUnavailable || c.Engineer == CountUnavailable || c.IT == CountUnavailable
}

// EnrichedCompany is the terminal record written to output.
type EnrichedCompany struct {
	CompanyWithSlug
	Counts JobCounts `json:"job_counts"`
}
