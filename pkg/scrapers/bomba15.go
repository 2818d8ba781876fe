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

// bomba15Scraper scrapes Bomba15. Same listing engine as Burdur Yeni Gün but
// the cards sit inside responsive column wrappers.
type bomba15Scraper struct {
	base
}

func newBomba15(cfg sites.SiteConfig, opts Options) Scraper {
	return &bomba15Scraper{base: newBase(cfg, opts)}
}

func (s *bomba15Scraper) SiteID() string      { return s.cfg.ID }
func (s *bomba15Scraper) SiteName() string    { return s.cfg.Name }
func (s *bomba15Scraper) ResolvesDates() bool { return true }

func (s *bomba15Scraper) Scrape(ctx context.Context) ([]domain.Article, error) {
	raw := s.collectPaginated(ctx, s.ExtractCandidates)
	final := s.resolveAll(ctx, raw, s.ResolveDate, true)
	sortNewestFirst(final)
	logger.InfoObj("site scrape completed", "site_result", map[string]any{
		"site_id":    s.cfg.ID,
		"candidates": len(raw),
		"articles":   len(final),
	})
	return final, nil
}

func (s *bomba15Scraper) ExtractCandidates(html string) []domain.RawCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []domain.RawCandidate
	doc.Find("div.col-6, div.col-lg-4").Each(func(_ int, col *goquery.Selection) {
		card := col.Find("div.card").First()
		if card.Length() == 0 {
			return
		}
		titleLink := card.Find("h4 a").First()
		if titleLink.Length() == 0 {
			return
		}
		href, _ := titleLink.Attr("href")
		title := strings.TrimSpace(titleLink.Text())
		if href == "" || len(title) < minTitleLen {
			return
		}

		image, _ := card.Find("img").First().Attr("src")
		category := strings.TrimSpace(card.Find("a.fw-bold").First().Text())
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

func (s *bomba15Scraper) ResolveDate(ctx context.Context, link string) (time.Time, bool) {
	html, ok := s.httpGet(ctx, s.opts.DateClient, link, nil)
	if !ok {
		return time.Time{}, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return time.Time{}, false
	}

	text := strings.TrimSpace(doc.Find("time.fw-bold").First().Text())
	if text == "" {
		return time.Time{}, false
	}
	return parseNumericDate(text)
}
