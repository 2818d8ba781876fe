package scrapers

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// tarimdanScraper scrapes Tarımdan Haber's swiper listing. Its article pages
// vary wildly, so date resolution runs the full cascade including JSON-LD.
type tarimdanScraper struct {
	base
}

func newTarimdan(cfg sites.SiteConfig, opts Options) Scraper {
	return &tarimdanScraper{base: newBase(cfg, opts)}
}

func (s *tarimdanScraper) SiteID() string      { return s.cfg.ID }
func (s *tarimdanScraper) SiteName() string    { return s.cfg.Name }
func (s *tarimdanScraper) ResolvesDates() bool { return true }

func (s *tarimdanScraper) Scrape(ctx context.Context) ([]domain.Article, error) {
	html, ok := s.httpGet(ctx, s.opts.Client, s.cfg.ListURL, nil)
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

func (s *tarimdanScraper) ExtractCandidates(html string) []domain.RawCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []domain.RawCandidate
	doc.Find("div.swiper-slide").Each(func(_ int, slide *goquery.Selection) {
		href := slide.AttrOr("data-link", "")
		if href == "" {
			href = slide.Find("a").First().AttrOr("href", "")
		}
		if len(href) < 5 {
			return
		}

		titleTag := slide.Find("h3.title-2-line").First()
		if titleTag.Length() == 0 {
			titleTag = slide.Find("h3").First()
		}
		title := strings.TrimSpace(titleTag.Text())
		if len(title) < minTitleLen {
			return
		}

		imgTag := slide.Find("img.img-fluid").First()
		if imgTag.Length() == 0 {
			imgTag = slide.Find("img").First()
		}
		image := imgTag.AttrOr("src", "")

		category := strings.TrimSpace(slide.Find("span.mh-category").First().Text())
		if category == "" {
			category = "Genel"
		}

		out = append(out, domain.RawCandidate{
			Title:    title,
			Link:     s.absURL(href),
			Image:    image,
			Category: category,
		})
	})

	return out
}

// ResolveDate runs the full cascade: time element (attribute then text),
// published-time metadata, JSON-LD, and finally the page's leading text.
func (s *tarimdanScraper) ResolveDate(ctx context.Context, link string) (time.Time, bool) {
	html, ok := s.httpGet(ctx, s.opts.DateClient, link, nil)
	if !ok {
		return time.Time{}, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return time.Time{}, false
	}

	if timeTag := doc.Find("time").First(); timeTag.Length() > 0 {
		if attr, ok := timeTag.Attr("datetime"); ok {
			if ts, ok := parseMachineTimestamp(attr); ok {
				return ts, true
			}
		}
		if ts, ok := parseDateText(strings.TrimSpace(timeTag.Text())); ok {
			return ts, true
		}
	}

	if ts, ok := metaPublishedDate(doc); ok {
		return ts, true
	}

	if ts, ok := jsonLDDate(doc); ok {
		return ts, true
	}

	text := doc.Text()
	if len(text) > 1000 {
		text = text[:1000]
	}
	return parseDateText(text)
}
