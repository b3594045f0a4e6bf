package job

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field aliases in lookup order. Adapters and older exports disagree on names.
var (
	titleKeys       = []string{"title", "role", "name", "text"}
	companyKeys     = []string{"company", "company_name", "employer"}
	locationKeys    = []string{"location", "location_name", "candidate_required_location"}
	urlKeys         = []string{"url", "job_url", "link", "absolute_url", "hostedUrl", "alternate_url"}
	descriptionKeys = []string{"description", "summary", "content", "snippet"}
	sourceKeys      = []string{"source", "site"}
	postedKeys      = []string{"posted_date", "date_posted", "publication_date", "published_at", "created_at", "updated_at"}
	salaryKeys      = []string{"salary_range", "salary", "salary_source"}
)

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05-0700",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// Normalize maps a raw posting into a Job. It only fails when raw is not a mapping.
func Normalize(raw any, sourceLabel string) (Job, error) {
	fields, err := asMap(raw)
	if err != nil {
		return Job{}, err
	}

	j := Job{
		Title:       lookup(fields, titleKeys),
		Company:     lookup(fields, companyKeys),
		Location:    lookup(fields, locationKeys),
		URL:         lookup(fields, urlKeys),
		Description: Truncate(lookup(fields, descriptionKeys), DescriptionLimit),
		Source:      lookup(fields, sourceKeys),
		PostedDate:  NormalizeDate(lookup(fields, postedKeys)),
		SalaryRange: lookup(fields, salaryKeys),
	}

	if j.Title == "" {
		j.Title = DefaultTitle
	}
	if j.Company == "" {
		j.Company = DefaultCompany
	}
	if j.Source == "" {
		j.Source = SafeString(sourceLabel)
	}
	if j.Source == "" {
		j.Source = DefaultSource
	}
	if j.SalaryRange == "" {
		j.SalaryRange = ExtractSalary(j.Description, j.Title)
	}

	return j, nil
}

func asMap(raw any) (map[string]any, error) {
	switch m := raw.(type) {
	case RawPosting:
		if m == nil {
			return nil, fmt.Errorf("%w: nil posting", ErrMalformedRecord)
		}
		return m, nil
	case map[string]any:
		if m == nil {
			return nil, fmt.Errorf("%w: nil posting", ErrMalformedRecord)
		}
		return m, nil
	case map[string]string:
		if m == nil {
			return nil, fmt.Errorf("%w: nil posting", ErrMalformedRecord)
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unexpected type %T", ErrMalformedRecord, raw)
	}
}

func lookup(fields map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if s := SafeString(v); s != "" {
			return s
		}
	}
	return ""
}

// SafeString coerces any value into a trimmed string. nil, NaN and "nan" become "".
func SafeString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return cleanString(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return cleanString(val.String())
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.DateOnly)
	case *string:
		if val == nil {
			return ""
		}
		return cleanString(*val)
	case fmt.Stringer:
		return cleanString(val.String())
	default:
		return cleanString(fmt.Sprintf("%v", v))
	}
}

func cleanString(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeDate renders parseable timestamps as YYYY-MM-DD and keeps anything else as is.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if t, ok := ParseDate(s); ok {
		return t.Format(time.DateOnly)
	}
	return s
}

// ParseDate tries the timestamp layouts seen across sources.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit]))
}
