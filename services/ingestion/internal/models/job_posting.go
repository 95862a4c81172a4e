package models

import "strings"

// JobPosting is the jobs API wire shape. ID is only set on postings read back from the API.
type JobPosting struct {
	ID          int64    `json:"id,omitempty"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	PostingDate string   `json:"posting_date,omitempty"`
	JobType     string   `json:"job_type,omitempty"`
	Tags        []string `json:"tags"`
	Description string   `json:"description,omitempty"`
	Salary      string   `json:"salary,omitempty"`
}

// SameAs reports whether p and other are duplicates for ingestion purposes.
func (p *JobPosting) SameAs(other *JobPosting) bool {
	return strings.EqualFold(p.Title, other.Title) && strings.EqualFold(p.Company, other.Company)
}
