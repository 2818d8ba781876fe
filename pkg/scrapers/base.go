package scrapers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/scheduler"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/httpclient"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// minTitleLen filters out navigation stubs and truncated listing entries.
const minTitleLen = 10

// base carries the shared capabilities every site scraper composes over:
// throttled fetching, URL joining, article construction, and the handoff to
// the batch scheduler. The run's "today" anchor is captured at construction.
type base struct {
	cfg   sites.SiteConfig
	opts  Options
	today time.Time
}

func newBase(cfg sites.SiteConfig, opts Options) base {
	return base{cfg: cfg, opts: opts, today: opts.Now()}
}

func (b *base) headers() map[string]string {
	return map[string]string{
		"User-Agent":      b.opts.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "tr-TR,tr;q=0.9,en;q=0.8",
		"Connection":      "keep-alive",
	}
}

// httpGet fetches a page, recovering transport failures and non-200 statuses
// as "no data" per the fetch boundary contract.
func (b *base) httpGet(ctx context.Context, client httpclient.Client, url string, extra map[string]string) (string, bool) {
	headers := b.headers()
	for k, v := range extra {
		headers[k] = v
	}
	resp, err := client.Get(ctx, url, headers)
	if err != nil || resp.StatusCode() != 200 {
		return "", false
	}
	return string(resp.Body()), true
}

func (b *base) httpGetWithParams(ctx context.Context, client httpclient.Client, url string, params, extra map[string]string) (string, bool) {
	headers := b.headers()
	for k, v := range extra {
		headers[k] = v
	}
	resp, err := client.GetWithParams(ctx, url, params, headers)
	if err != nil || resp.StatusCode() != 200 {
		return "", false
	}
	return string(resp.Body()), true
}

// absURL joins a root-relative href against the site's base URL.
func (b *base) absURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return b.cfg.BaseURL + href
	}
	return href
}

// article builds the resolved Article for a candidate with a confirmed date.
func (b *base) article(c domain.RawCandidate, ts time.Time) domain.Article {
	return domain.Article{
		Title:      c.Title,
		Link:       c.Link,
		Image:      c.Image,
		Category:   c.Category,
		Date:       ts.Format("02.01.2006"),
		Time:       ts.Format("15:04"),
		IsToday:    scheduler.SameDay(ts, b.today),
		ParsedDate: ts,
		Source:     b.cfg.Name,
		SourceID:   b.cfg.ID,
	}
}

// resolveAll hands the candidate list to the batch scheduler.
func (b *base) resolveAll(ctx context.Context, cands []domain.RawCandidate, resolve func(ctx context.Context, link string) (time.Time, bool), earlyStop bool) []domain.Article {
	return scheduler.ResolveDates(ctx, cands,
		func(ctx context.Context, c domain.RawCandidate) (time.Time, bool) {
			return resolve(ctx, c.Link)
		},
		b.article,
		scheduler.Options{
			BatchSize:         b.opts.BatchSize,
			WindowDays:        b.opts.WindowDays,
			MaxConsecutiveOld: b.opts.MaxConsecutiveOld,
			EarlyStop:         earlyStop,
			Now:               b.opts.Now,
		})
}

func sortNewestFirst(list []domain.Article) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ParsedDate.After(list[j].ParsedDate)
	})
}

// sleep waits for the per-request throttle, returning early on cancellation.
func (b *base) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
