package routing

import (
	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/signals"
)

// Category is a destination partition. The value is the partition name in sinks.
type Category string

const (
	DirectPortals       Category = "Direct_Portals"
	InternationalRemote Category = "International_Remote"
	IndianRemote        Category = "Indian_Remote"
	IndianOnsite        Category = "Indian_Onsite"
	CareerPortals       Category = "Career_Portals"
)

// Categories lists every destination in sink order.
func Categories() []Category {
	return []Category{DirectPortals, InternationalRemote, IndianRemote, IndianOnsite, CareerPortals}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// Rule is one step of the cascade.
type Rule struct {
	Name     string
	Match    func(job.Job, signals.Signals) bool
	Category Category
}

// Fallback is used when no rule matches, so Classify is total.
const Fallback = InternationalRemote

// Cascade is evaluated top to bottom, first match wins. Order matters:
// source-type rules outrank geography rules.
var Cascade = []Rule{
	{
		Name:     "direct_portal",
		Match:    func(_ job.Job, s signals.Signals) bool { return s.IsDirectPortal },
		Category: DirectPortals,
	},
	{
		Name:     "remote_board",
		Match:    func(_ job.Job, s signals.Signals) bool { return s.IsRemoteBoard },
		Category: InternationalRemote,
	},
	{
		Name:     "india_remote",
		Match:    func(_ job.Job, s signals.Signals) bool { return s.IsIndiaLocation && s.WorkMode == signals.Remote },
		Category: IndianRemote,
	},
	{
		Name: "india_onsite",
		Match: func(_ job.Job, s signals.Signals) bool {
			return s.IsIndiaLocation && (s.WorkMode == signals.Onsite || s.WorkMode == signals.Hybrid)
		},
		Category: IndianOnsite,
	},
	{
		Name:     "international_remote",
		Match:    func(_ job.Job, s signals.Signals) bool { return !s.IsIndiaLocation && s.WorkMode == signals.Remote },
		Category: InternationalRemote,
	},
	{
		Name:     "career_portal",
		Match:    func(_ job.Job, s signals.Signals) bool { return s.IsCareerPortal },
		Category: CareerPortals,
	},
}

// Classify returns the destination for j. It never fails.
func Classify(j job.Job, s signals.Signals) Category {
	c, _ := Explain(j, s)
	return c
}

// Explain is Classify plus the name of the rule that fired ("fallback" if none).
func Explain(j job.Job, s signals.Signals) (Category, string) {
	for _, rule := range Cascade {
		if rule.Match(j, s) {
			return rule.Category, rule.Name
		}
	}
	return Fallback, "fallback"
}
