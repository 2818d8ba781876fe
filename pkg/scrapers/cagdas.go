package scrapers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// cagdasScraper scrapes Çağdaş Burdur's front-page slider. The slider is
// undated, so every candidate goes through date resolution with early stop.
type cagdasScraper struct {
	base
}

func newCagdas(cfg sites.SiteConfig, opts Options) Scraper {
	return &cagdasScraper{base: newBase(cfg, opts)}
}

func (s *cagdasScraper) SiteID() string      { return s.cfg.ID }
func (s *cagdasScraper) SiteName() string    { return s.cfg.Name }
func (s *cagdasScraper) ResolvesDates() bool { return true }

// maxSliderItems caps how deep the undated slider is scanned.
const maxSliderItems = 50

var yayinTarihiRe = regexp.MustCompile(`Yayın Tarihi:\s*(\d{1,2})\s+(\S+)\s+(\d{4})\s+(\d{2}):(\d{2})`)

func (s *cagdasScraper) Scrape(ctx context.Context) ([]domain.Article, error) {
	html, ok := s.httpGet(ctx, s.opts.Client, s.cfg.BaseURL, nil)
	if !ok {
		logger.WarnObj("listing fetch failed", "site_id", s.cfg.ID)
		return nil, nil
	}

	raw := s.ExtractCandidates(html)
	final := s.resolveAll(ctx, raw, s.ResolveDate, true)
	sortNewestFirst(final)
	logger.InfoObj("site scrape completed", "site_result", map[string]any{
		"site_id":    s.cfg.ID,
		"candidates": len(raw),
		"articles":   len(final),
	})
	return final, nil
}

func (s *cagdasScraper) ExtractCandidates(html string) []domain.RawCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	slider := doc.Find("ul.bxslider").First()
	if slider.Length() == 0 {
		return nil
	}
	items := slider.Find("li")
	if items.Length() > maxSliderItems {
		items = items.Slice(0, maxSliderItems)
	}

	var out []domain.RawCandidate
	items.Each(func(_ int, item *goquery.Selection) {
		newsPost := item.Find("div.news-post").First()
		if newsPost.Length() == 0 {
			return
		}
		linkTag := newsPost.Find("a").First()
		if linkTag.Length() == 0 {
			return
		}
		href, _ := linkTag.Attr("href")
		if href == "" {
			return
		}
		link := href
		if !strings.HasPrefix(link, "http") {
			link = s.cfg.BaseURL + link
		}

		imgTag := linkTag.Find("img").First()
		image, ok := imgTag.Attr("data-src")
		if !ok || image == "" {
			image, _ = imgTag.Attr("src")
		}
		if image != "" && !strings.HasPrefix(image, "http") {
			image = s.cfg.BaseURL + image
		}

		title := strings.TrimSpace(imgTag.AttrOr("alt", ""))
		if len(title) < minTitleLen {
			return
		}

		category := "Genel"
		if cat := strings.TrimSpace(item.Find("div.hover-box a.category-post").First().Text()); cat != "" {
			category = cat
		}

		out = append(out, domain.RawCandidate{
			Title:    title,
			Link:     link,
			Image:    image,
			Category: category,
		})
	})

	return out
}

// ResolveDate tries the site's "Yayın Tarihi" tag line first, then the
// generic metadata cascade, then free text. A fetched page with no parseable
// date falls back to "now"; this site's slider only carries current items.
func (s *cagdasScraper) ResolveDate(ctx context.Context, link string) (time.Time, bool) {
	html, ok := s.httpGet(ctx, s.opts.DateClient, link, nil)
	if !ok {
		return time.Time{}, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return time.Time{}, false
	}

	if postTags := doc.Find("ul.post-tags"); postTags.Length() > 0 {
		if m := yayinTarihiRe.FindStringSubmatch(postTags.Text()); m != nil {
			if month, ok := turkishMonths[strings.ToLower(m[2])]; ok {
				if ts, ok := localMonthDate(m[3], month, m[1], m[4], m[5]); ok {
					return ts, true
				}
			}
		}
	}

	if ts, ok := metaPublishedDate(doc); ok {
		return ts, true
	}

	text := doc.Text()
	if len(text) > 2000 {
		text = text[:2000]
	}
	if ts, ok := parseNumericDate(text); ok {
		return ts, true
	}

	return s.opts.Now(), true
}
