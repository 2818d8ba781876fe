package scrapers

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// nncScraper scrapes NNC Haber's front-page carousel. The carousel mixes
// pinned and fresh items in no particular order, so early stopping is
// disabled and every candidate is resolved.
type nncScraper struct {
	base
}

func newNNC(cfg sites.SiteConfig, opts Options) Scraper {
	return &nncScraper{base: newBase(cfg, opts)}
}

func (s *nncScraper) SiteID() string      { return s.cfg.ID }
func (s *nncScraper) SiteName() string    { return s.cfg.Name }
func (s *nncScraper) ResolvesDates() bool { return true }

var (
	onclickURLRe = regexp.MustCompile(`window\.open\('([^']+)'`)
	nncDateRe    = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`)
	nncTimeRe    = regexp.MustCompile(`(\d{2})\.(\d{2})`)
	urlSegmentRe = regexp.MustCompile(`/([^/]+)/`)
)

// nncCategories maps URL path segments to display categories.
var nncCategories = map[string]string{
	"gundem":    "Gündem",
	"spor":      "Spor",
	"ekonomi":   "Ekonomi",
	"magazin":   "Magazin",
	"saglik":    "Sağlık",
	"egitim":    "Eğitim",
	"teknoloji": "Teknoloji",
	"kultur":    "Kültür",
	"sanat":     "Sanat",
	"yerel":     "Yerel",
	"dunya":     "Dünya",
	"turkiye":   "Türkiye",
}

func (s *nncScraper) Scrape(ctx context.Context) ([]domain.Article, error) {
	html, ok := s.httpGet(ctx, s.opts.Client, s.cfg.BaseURL, nil)
	if !ok {
		logger.WarnObj("listing fetch failed", "site_id", s.cfg.ID)
		return nil, nil
	}

	raw := s.ExtractCandidates(html)
	final := s.resolveAll(ctx, raw, s.ResolveDate, false)
	sortNewestFirst(final)
	logger.InfoObj("site scrape completed", "site_result", map[string]any{
		"site_id":    s.cfg.ID,
		"candidates": len(raw),
		"articles":   len(final),
	})
	return final, nil
}

func (s *nncScraper) ExtractCandidates(html string) []domain.RawCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	carousel := doc.Find("div.owl-carousel").First()
	if carousel.Length() == 0 {
		return nil
	}

	var out []domain.RawCandidate
	carousel.Find("div.item").Each(func(_ int, item *goquery.Selection) {
		onclick := item.AttrOr("onclick", "")
		m := onclickURLRe.FindStringSubmatch(onclick)
		if m == nil {
			return
		}
		href := m[1]

		imgTag := item.Find("img").First()
		if imgTag.Length() == 0 {
			return
		}
		image := imgTag.AttrOr("src", "")
		title := strings.TrimSpace(imgTag.AttrOr("alt", ""))
		if href == "" || len(title) < minTitleLen {
			return
		}

		out = append(out, domain.RawCandidate{
			Title:    title,
			Link:     s.absURL(href),
			Image:    image,
			Category: s.categoryFromURL(href),
		})
	})

	return out
}

// ResolveDate reads the article's info bar: the calendar entry carries
// DD.MM.YYYY, the clock entry HH.MM.
func (s *nncScraper) ResolveDate(ctx context.Context, link string) (time.Time, bool) {
	html, ok := s.httpGet(ctx, s.opts.DateClient, link, nil)
	if !ok {
		return time.Time{}, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return time.Time{}, false
	}

	blogInfo := doc.Find("ul.blog-info-link").First()
	if blogInfo.Length() == 0 {
		return time.Time{}, false
	}

	var dateMatch, timeMatch []string
	blogInfo.Find("li").Each(func(_ int, li *goquery.Selection) {
		inner, err := li.Html()
		if err != nil {
			return
		}
		text := strings.TrimSpace(li.Find("a").Text())

		switch {
		case strings.Contains(inner, "fa-calendar"):
			if m := nncDateRe.FindStringSubmatch(text); m != nil {
				dateMatch = m
			}
		case strings.Contains(inner, "fa-clock"):
			if m := nncTimeRe.FindStringSubmatch(text); m != nil {
				timeMatch = m
			}
		}
	})

	if dateMatch == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(dateMatch[1])
	month, _ := strconv.Atoi(dateMatch[2])
	year, _ := strconv.Atoi(dateMatch[3])
	hour, minute := 0, 0
	if timeMatch != nil {
		hour, _ = strconv.Atoi(timeMatch[1])
		minute, _ = strconv.Atoi(timeMatch[2])
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), true
}

func (s *nncScraper) categoryFromURL(href string) string {
	m := urlSegmentRe.FindStringSubmatch(href)
	if m == nil {
		return "Genel"
	}
	segment := strings.ToLower(m[1])
	if name, ok := nncCategories[segment]; ok {
		return name
	}
	return strings.ToUpper(segment[:1]) + segment[1:]
}
