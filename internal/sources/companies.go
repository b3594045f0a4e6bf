package sources

import "strings"

type Company struct {
	Slug string `yaml:"slug" mapstructure:"slug"`
	Name string `yaml:"name" mapstructure:"name"`
}

// DisplayName falls back to the slug.
func (c Company) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return strings.TrimSpace(c.Slug)
}

var DefaultGreenhouseCompanies = []Company{
	{Name: "Airbnb", Slug: "airbnb"},
	{Name: "Stripe", Slug: "stripe"},
	{Name: "GitLab", Slug: "gitlab"},
	{Name: "Coinbase", Slug: "coinbase"},
	{Name: "Notion", Slug: "notion"},
	{Name: "Figma", Slug: "figma"},
	{Name: "DoorDash", Slug: "doordash"},
	{Name: "Instacart", Slug: "instacart"},
	{Name: "Canva", Slug: "canva"},
	{Name: "Dropbox", Slug: "dropbox"},
	{Name: "Asana", Slug: "asana"},
	{Name: "Grammarly", Slug: "grammarly"},
}

var DefaultLeverCompanies = []Company{
	{Name: "Netflix", Slug: "netflix"},
	{Name: "Shopify", Slug: "shopify"},
	{Name: "Twitch", Slug: "twitch"},
	{Name: "Reddit", Slug: "reddit"},
	{Name: "Robinhood", Slug: "robinhood"},
	{Name: "Lyft", Slug: "lyft"},
	{Name: "Udemy", Slug: "udemy"},
	{Name: "Eventbrite", Slug: "eventbrite"},
}

// cleanCompanies drops entries without a slug.
func cleanCompanies(in []Company) []Company {
	out := make([]Company, 0, len(in))
	for _, c := range in {
		slug := strings.TrimSpace(c.Slug)
		if slug == "" {
			continue
		}
		out = append(out, Company{Slug: slug, Name: c.DisplayName()})
	}
	return out
}
