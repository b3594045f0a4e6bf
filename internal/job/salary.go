package job

import (
	"regexp"
	"strings"
)

type salaryPattern struct {
	re     *regexp.Regexp
	format func(low, high string) string
}

// Checked in order, first match wins.
var salaryPatterns = []salaryPattern{
	{
		re:     regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*-\s*\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
		format: func(low, high string) string { return "$" + low + "-$" + high },
	},
	{
		re:     regexp.MustCompile(`(\d{1,3}(?:,\d{3})*)\s*-\s*(\d{1,3}(?:,\d{3})*)\s*(?:usd|dollars?|per year|/year|annually)`),
		format: func(low, high string) string { return "$" + low + "-$" + high },
	},
	{
		re:     regexp.MustCompile(`(\d{1,3})k\s*-\s*(\d{1,3})k`),
		format: func(low, high string) string { return "$" + low + "k-$" + high + "k" },
	},
	{
		re:     regexp.MustCompile(`₹\s*(\d{1,3}(?:,\d{3})*)\s*-\s*₹\s*(\d{1,3}(?:,\d{3})*)`),
		format: func(low, high string) string { return "₹" + low + "-₹" + high },
	},
}

// ExtractSalary finds a salary range in description and title. Returns "" when nothing matches.
func ExtractSalary(description, title string) string {
	if description == "" && title == "" {
		return ""
	}

	text := strings.ToLower(description + " " + title)
	for _, p := range salaryPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return p.format(m[1], m[2])
	}

	return ""
}
