package headhunter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type Resumes struct {
	Items []*Resume
}

type Resume struct {
	Title string
	ID    string `json:"id,omitempty"`
}

type ResumeDetails struct {
	ID    string
	Title string
	Raw   map[string]any
}

func (c *Client) getResumes(ctx context.Context, id string) (*Resumes, error) {
	items, err := c.GetItems(ctx, fmt.Sprintf("%s/resumes/%s", c.APIURL, id), nil, 0)
	if err != nil {
		return nil, err
	}

	var resumes []*Resume
	if err = mapstructure.Decode(items, &resumes); err != nil {
		return nil, err
	}

	return &Resumes{
		Items: resumes,
	}, nil
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

func (r *Resumes) Titles() []string {
	titles := make([]string, 0, len(r.Items))
	for _, v := range r.Items {
		titles = append(titles, v.Title)
	}

	return titles
}

func (r *Resumes) FindByTitle(title string) *Resume {
	for _, resume := range r.Items {
		if resume.Title == title {
			return resume
		}
	}

	return nil
}

func (c *Client) GetResumeDetails(ctx context.Context, id string) (*ResumeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	var raw map[string]any
	if err := c.getJSON(ctx, fmt.Sprintf("%s/resumes/%s", c.APIURL, id), nil, &raw); err != nil {
		return nil, err
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	return &ResumeDetails{
		ID:    valueAsString(raw["id"]),
		Title: valueAsString(raw["title"]),
		Raw:   raw,
	}, nil
}

// Text renders the resume as plain text usable as a candidate profile.
func (d *ResumeDetails) Text() string {
	var b strings.Builder

	if d.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", d.Title)
	}
	if skills := valueAsString(d.Raw["skills"]); skills != "" {
		fmt.Fprintf(&b, "About: %s\n", skills)
	}

	if set, ok := d.Raw["skill_set"].([]any); ok && len(set) > 0 {
		names := make([]string, 0, len(set))
		for _, s := range set {
			names = append(names, valueAsString(s))
		}
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(names, ", "))
	}

	if exp, ok := d.Raw["experience"].([]any); ok && len(exp) > 0 {
		b.WriteString("Experience:\n")
		for _, e := range exp {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- %s at %s", valueAsString(entry["position"]), valueAsString(entry["company"]))
			if desc := valueAsString(entry["description"]); desc != "" {
				fmt.Fprintf(&b, ": %s", strings.Join(strings.Fields(desc), " "))
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
