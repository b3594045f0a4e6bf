// Package sink defines the persistence boundary of the pipeline and the
// row schema shared by every destination.
package sink

import (
	"context"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/job-router/internal/routing"
)

// Header is the column layout of every destination.
var Header = []string{"Role", "Company", "Location", "Mode", "Link", "Source", "Salary", "Posted_Date", "Score", "Summary"}

// keyColumns are the header names the identity key was stored under over time.
var keyColumns = []string{"Link", "Job URL", "link", "url"}

// Port is what the pipeline needs from persistence.
type Port interface {
	// ReadKeys returns every non-empty Link stored in dest.
	ReadKeys(ctx context.Context, dest routing.Category) ([]string, error)
	Append(ctx context.Context, dest routing.Category, row Row) error
}

// Preparer is implemented by sinks that must create partitions or headers first.
type Preparer interface {
	Prepare(ctx context.Context, dests []routing.Category) error
}

// Row is one accepted posting. Only the Header columns are written to tabular
// sinks; the SQL sinks keep the rest too.
type Row struct {
	Role       string
	Company    string
	Location   string
	Mode       string
	Link       string
	Source     string
	Salary     string
	PostedDate string
	Score      int
	Scored     bool
	Summary    string

	Priority    string
	Seniority   string
	Description string
	RunID       string
}

// Values renders the row in Header order. Unscored rows leave Score blank.
func (r Row) Values() []string {
	score := ""
	if r.Scored {
		score = strconv.Itoa(r.Score)
	}
	return []string{r.Role, r.Company, r.Location, r.Mode, r.Link, r.Source, r.Salary, r.PostedDate, score, r.Summary}
}

// ValuesFor lays the row out under an existing header. Columns are matched by
// name, legacy link names map to Link and unknown columns stay blank.
func (r Row) ValuesFor(header []string) []string {
	values := r.Values()
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if slices.Contains(keyColumns, h) {
			h = "Link"
		}
		if j := slices.Index(Header, h); j >= 0 {
			out[i] = values[j]
		}
	}
	return out
}

// KeyColumn finds the identity column in a header row. Returns -1 if absent.
func KeyColumn(header []string) int {
	for _, name := range keyColumns {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
	}
	return -1
}

// HeaderMatches reports whether got starts with the expected header.
func HeaderMatches(got []string) bool {
	if len(got) < len(Header) {
		return false
	}
	for i, h := range Header {
		if strings.TrimSpace(got[i]) != h {
			return false
		}
	}
	return true
}

// Prepare runs p's Prepare if it has one.
func Prepare(ctx context.Context, p Port, dests []routing.Category) error {
	if prep, ok := p.(Preparer); ok {
		return prep.Prepare(ctx, dests)
	}
	return nil
}

// Close closes p if it holds resources.
func Close(p Port) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
