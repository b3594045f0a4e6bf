package signals

import (
	"slices"
	"strings"
)

var seniorityOrder = []Seniority{Intern, Entry, Mid, Senior, Executive}

var (
	DefaultIndiaGazetteer = []string{
		"india", "mumbai", "delhi", "bangalore", "bengaluru", "hyderabad",
		"chennai", "pune", "kolkata", "ahmedabad", "gurgaon", "noida",
		"chandigarh", "jaipur", "kochi", "indore", "bhopal", "lucknow",
	}

	DefaultDirectPortals = []string{
		"greenhouse.io", "lever.co", "careers.google.com", "careers.microsoft.com",
		"jobs.apple.com", "amazon.jobs", "careers.meta.com", "jobs.netflix.com",
	}

	// DefaultDirectSources are labels matched against the source on top of
	// the ones derived from DirectPortals.
	DefaultDirectSources = []string{"direct:"}

	// genericPortalLabels are domain labels too common to identify a portal
	// from the source alone ("Acme careers", "LinkedIn Jobs").
	genericPortalLabels = []string{"careers", "jobs", "www", "boards"}

	DefaultRemoteBoards = []string{"weworkremotely", "remotive", "wellfound", "angellist"}

	DefaultJobBoards = []string{"linkedin", "glassdoor", "indeed"}

	DefaultTechStack = []string{
		"python", "c++", "mern", "react", "node", "ai",
		"machine learning", "intern", "software", "developer",
	}

	DefaultSeniority = map[Seniority][]string{
		Intern:    {"intern", "internship", "co-op", "coop"},
		Entry:     {"entry", "junior", "graduate", "associate", "early career"},
		Mid:       {"mid-level", "intermediate", "experienced"},
		Senior:    {"senior", "sr.", "lead", "principal", "staff"},
		Executive: {"director", "vp", "vice president", "head of", "chief", "cto", "ceo"},
	}
)

// Lists configures the extractors. Empty lists fall back to the defaults.
type Lists struct {
	IndiaGazetteer []string               `mapstructure:"india-gazetteer"`
	DirectPortals  []string               `mapstructure:"direct-portals"`
	DirectSources  []string               `mapstructure:"direct-sources"`
	RemoteBoards   []string               `mapstructure:"remote-boards"`
	JobBoards      []string               `mapstructure:"job-boards"`
	TechStack      []string               `mapstructure:"tech-stack"`
	Seniority      map[Seniority][]string `mapstructure:"seniority"`
}

func (l Lists) withDefaults() Lists {
	out := Lists{
		IndiaGazetteer: pick(l.IndiaGazetteer, DefaultIndiaGazetteer),
		DirectPortals:  pick(l.DirectPortals, DefaultDirectPortals),
		DirectSources:  pick(l.DirectSources, DefaultDirectSources),
		RemoteBoards:   pick(l.RemoteBoards, DefaultRemoteBoards),
		JobBoards:      pick(l.JobBoards, DefaultJobBoards),
		TechStack:      pick(l.TechStack, DefaultTechStack),
		Seniority:      make(map[Seniority][]string, len(seniorityOrder)),
	}

	out.DirectSources = appendUnique(out.DirectSources, portalLabels(out.DirectPortals)...)

	for _, level := range seniorityOrder {
		var custom []string
		for key, words := range l.Seniority {
			// viper lowercases map keys
			if strings.EqualFold(string(key), string(level)) {
				custom = words
			}
		}
		out.Seniority[level] = pick(custom, DefaultSeniority[level])
	}

	return out
}

func pick(custom, fallback []string) []string {
	src := custom
	if len(src) == 0 {
		src = fallback
	}

	out := make([]string, 0, len(src))
	for _, s := range src {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// portalLabels returns the part of each domain before its first dot, minus
// the generic ones. "amazon.jobs" gives "amazon", "careers.google.com" gives nothing.
func portalLabels(domains []string) []string {
	var labels []string
	for _, d := range domains {
		label, _, _ := strings.Cut(d, ".")
		if label == "" || slices.Contains(genericPortalLabels, label) {
			continue
		}
		labels = appendUnique(labels, label)
	}
	return labels
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
