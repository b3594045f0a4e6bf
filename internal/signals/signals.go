// Package signals derives routing attributes from a normalized job.
// Every extractor is a pure case-insensitive substring match.
package signals

import (
	"strings"

	"github.com/spigell/job-router/internal/job"
)

type WorkMode string

const (
	Remote WorkMode = "Remote"
	Hybrid WorkMode = "Hybrid"
	Onsite WorkMode = "Onsite"
)

type Priority string

const (
	High   Priority = "High"
	Normal Priority = "Normal"
)

type Seniority string

const (
	Intern      Seniority = "Intern"
	Entry       Seniority = "Entry"
	Mid         Seniority = "Mid"
	Senior      Seniority = "Senior"
	Executive   Seniority = "Executive"
	Unspecified Seniority = "Unspecified"
)

// Signals are computed per job and never stored on their own.
type Signals struct {
	WorkMode        WorkMode  `json:"work_mode"`
	IsIndiaLocation bool      `json:"is_india_location"`
	IsDirectPortal  bool      `json:"is_direct_portal"`
	IsRemoteBoard   bool      `json:"is_remote_board"`
	IsCareerPortal  bool      `json:"is_career_portal"`
	Priority        Priority  `json:"priority"`
	Seniority       Seniority `json:"seniority"`
	TechStackMatch  bool      `json:"tech_stack_match"`
}

// Extractor holds the keyword lists. The zero value is not usable, use New.
type Extractor struct {
	lists Lists
}

func New(lists Lists) *Extractor {
	return &Extractor{lists: lists.withDefaults()}
}

// Derive computes every signal for j.
func (e *Extractor) Derive(j job.Job) Signals {
	mode := DetectWorkMode(j.Location, j.Description)
	direct := e.IsDirectPortal(j.Source, j.URL)
	board := e.IsRemoteBoard(j.Source, j.URL)

	return Signals{
		WorkMode:        mode,
		IsIndiaLocation: e.IsIndiaLocation(j.Location),
		IsDirectPortal:  direct,
		IsRemoteBoard:   board,
		IsCareerPortal:  !direct && !board && !e.isJobBoard(j.Source, j.URL),
		Priority:        e.priority(mode, direct, j.Company, j.Description),
		Seniority:       e.Seniority(j.Title, j.Description),
		TechStackMatch:  e.TechStackMatch(j.Title, j.Description),
	}
}

// DetectWorkMode looks at location and description. Text mentioning remote together
// with hybrid or onsite resolves to Hybrid, never Remote.
func DetectWorkMode(location, description string) WorkMode {
	text := strings.ToLower(location + " " + description)

	if strings.Contains(text, "remote") {
		if containsAny(text, []string{"hybrid", "on-site", "onsite"}) {
			return Hybrid
		}
		return Remote
	}

	if strings.Contains(text, "hybrid") {
		return Hybrid
	}

	return Onsite
}

// MentionsRemote reports whether location or description says remote at all.
func MentionsRemote(location, description string) bool {
	return strings.Contains(strings.ToLower(location+" "+description), "remote")
}

func (e *Extractor) IsIndiaLocation(location string) bool {
	return containsAny(strings.ToLower(location), e.lists.IndiaGazetteer)
}

// IsDirectPortal matches the url against portal domains and the source against
// known direct-portal source labels.
func (e *Extractor) IsDirectPortal(source, url string) bool {
	return containsAny(strings.ToLower(url), e.lists.DirectPortals) ||
		containsAny(strings.ToLower(source), e.lists.DirectSources)
}

func (e *Extractor) IsRemoteBoard(source, url string) bool {
	return containsAny(strings.ToLower(source), e.lists.RemoteBoards) ||
		containsAny(strings.ToLower(url), e.lists.RemoteBoards)
}

// IsCareerPortal is the backup bucket: not direct, not a remote board, not a generic job board.
func (e *Extractor) IsCareerPortal(source, url string) bool {
	if e.IsDirectPortal(source, url) || e.IsRemoteBoard(source, url) {
		return false
	}
	return !e.isJobBoard(source, url)
}

func (e *Extractor) isJobBoard(source, url string) bool {
	return containsAny(strings.ToLower(source), e.lists.JobBoards) ||
		containsAny(strings.ToLower(url), e.lists.JobBoards)
}

// Seniority returns the first level whose keywords hit, in Intern..Executive order.
func (e *Extractor) Seniority(title, description string) Seniority {
	text := strings.ToLower(title + " " + description)
	for _, level := range seniorityOrder {
		if containsAny(text, e.lists.Seniority[level]) {
			return level
		}
	}
	return Unspecified
}

func (e *Extractor) TechStackMatch(title, description string) bool {
	return containsAny(strings.ToLower(title+" "+description), e.lists.TechStack)
}

// priority is High for remote startup roles and for anything from a direct portal.
func (e *Extractor) priority(mode WorkMode, direct bool, company, description string) Priority {
	if direct {
		return High
	}
	startup := strings.Contains(strings.ToLower(company), "startup") ||
		strings.Contains(strings.ToLower(description), "startup")
	if mode == Remote && startup {
		return High
	}
	return Normal
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}
