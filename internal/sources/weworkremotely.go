package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/utils"
)

const (
	WeWorkRemotelyName            = "weworkremotely"
	WeWorkRemotelyBaseURL         = "https://weworkremotely.com"
	DefaultWeWorkRemotelyCategory = "programming"
	weWorkRemotelyLabel           = "WeWorkRemotely"
)

type WeWorkRemotely struct {
	base     string
	category string
	http     HTTP
	logger   *zap.Logger
}

func NewWeWorkRemotely(base, category string, h HTTP, l *zap.Logger) *WeWorkRemotely {
	if base == "" {
		base = WeWorkRemotelyBaseURL
	}
	if category == "" {
		category = DefaultWeWorkRemotelyCategory
	}
	return &WeWorkRemotely{
		base:     strings.TrimRight(base, "/"),
		category: category,
		http:     h.withDefaults(),
		logger:   logger.OrNop(l),
	}
}

func (w *WeWorkRemotely) Name() string { return WeWorkRemotelyName }

func (w *WeWorkRemotely) Fetch(ctx context.Context) ([]job.RawPosting, error) {
	page := fmt.Sprintf("%s/categories/remote-%s-jobs", w.base, w.category)

	doc, err := w.http.getDocument(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely listing: %w", err)
	}

	base, err := url.Parse(w.base)
	if err != nil {
		return nil, err
	}

	var out []job.RawPosting
	doc.Find("li.feature").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if len(out) >= w.http.MaxPerSource {
			return false
		}

		title := utils.CleanText(li.Find("span.title").First().Text())
		company := utils.CleanText(li.Find("span.company").First().Text())
		href := listingHref(li)
		if title == "" || company == "" || href == "" {
			return true
		}

		link, err := base.Parse(href)
		if err != nil {
			w.logger.Debug("skipping listing with bad href", zap.String("href", href))
			return true
		}

		out = append(out, job.RawPosting{
			"title":        title,
			"company":      company,
			"location":     "Remote",
			"url":          link.String(),
			"description":  "",
			"source":       weWorkRemotelyLabel,
			"posted_date":  "",
			"salary_range": "",
		})
		return true
	})

	return out, nil
}

// listingHref prefers the job link over company or logo links.
func listingHref(li *goquery.Selection) string {
	var href string
	li.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		v := strings.TrimSpace(a.AttrOr("href", ""))
		if i == 0 {
			href = v
		}
		if strings.Contains(v, "/remote-jobs/") {
			href = v
			return false
		}
		return true
	})
	return href
}
