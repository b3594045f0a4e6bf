package job

import (
	"errors"
)

const (
	DefaultTitle   = "Unknown Role"
	DefaultCompany = "Unknown Company"
	DefaultSource  = "Unknown"

	// DescriptionLimit bounds the description stored and sent to scorers.
	DescriptionLimit = 500
)

// ErrMalformedRecord is returned when a raw posting is not mapping-shaped.
var ErrMalformedRecord = errors.New("malformed record")

// RawPosting is what adapters yield. No keys are guaranteed.
type RawPosting map[string]any

// Job is a normalized posting. Values are never nil/NaN sentinels.
type Job struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Source      string `json:"source"`
	PostedDate  string `json:"posted_date"`
	SalaryRange string `json:"salary_range"`
}

// Key returns the dedup identity key. Empty means the job is never deduplicated.
func (j Job) Key() string {
	return j.URL
}
