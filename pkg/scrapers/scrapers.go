package scrapers

import (
	"context"
	"fmt"
	"time"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
	"github.com/burdurhub-hq/burdur-news-hub/internal/scheduler"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/httpclient"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// Package scrapers contains the per-site extraction strategies and their
// composition into full scrape passes.

// Scraper is one news source. Site-specific behavior is a set of
// interchangeable implementations selected by configuration key.
type Scraper interface {
	SiteID() string
	SiteName() string
	// Scrape fetches the site's listing(s) and returns the articles that fall
	// inside the recency window, newest first.
	Scrape(ctx context.Context) ([]domain.Article, error)
	// ExtractCandidates parses raw listing markup into undated candidates.
	ExtractCandidates(html string) []domain.RawCandidate
	// ResolveDate fetches one article page and extracts its publish timestamp.
	// ok=false means no date could be determined.
	ResolveDate(ctx context.Context, link string) (time.Time, bool)
	// ResolvesDates reports whether this source goes through per-article date
	// resolution. Sources deriving dates from listing markup return false.
	ResolvesDates() bool
}

// Options carries the shared tuning knobs every site scraper composes over.
type Options struct {
	Client            httpclient.Client // listing fetches
	DateClient        httpclient.Client // lighter per-article date fetches
	UserAgent         string
	RequestDelay      time.Duration
	MaxPages          int
	NewsPerPage       int
	BatchSize         int
	WindowDays        int
	MaxConsecutiveOld int
	Now               func() time.Time
}

const (
	defaultRequestTimeout   = 15 * time.Second
	defaultDateFetchTimeout = 5 * time.Second
	defaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func (o Options) withDefaults() Options {
	if o.Client == nil {
		o.Client = httpclient.NewRestyClient(defaultRequestTimeout)
	}
	if o.DateClient == nil {
		o.DateClient = httpclient.NewRestyClient(defaultDateFetchTimeout)
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.RequestDelay < 0 {
		o.RequestDelay = 0
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 6
	}
	if o.NewsPerPage <= 0 {
		o.NewsPerPage = 12
	}
	if o.BatchSize <= 0 {
		o.BatchSize = scheduler.DefaultBatchSize
	}
	if o.WindowDays < 0 {
		o.WindowDays = scheduler.DefaultWindowDays
	}
	if o.MaxConsecutiveOld <= 0 {
		o.MaxConsecutiveOld = scheduler.DefaultMaxConsecutiveOld
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type builderFunc func(cfg sites.SiteConfig, opts Options) Scraper

// builders maps config keys to scraper constructors.
var builders = map[string]builderFunc{
	"burdur_yenigun":  newYeniGun,
	"bomba15":         newBomba15,
	"burdur_gazetesi": newGazetesi,
	"cagdas_burdur":   newCagdas,
	"nnc_haber":       newNNC,
	"tarimdanhaber":   newTarimdan,
}

// ErrUnknownSite is returned when no scraper implementation exists for a site id.
var ErrUnknownSite = fmt.Errorf("unknown site")

// New builds the scraper for the given site id.
func New(id string, reg *sites.Registry, opts Options) (Scraper, error) {
	cfg, ok := reg.ByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSite, id)
	}
	build, ok := builders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSite, id)
	}
	return build(cfg, opts.withDefaults()), nil
}

// NewAll builds scrapers for every enabled site that has an implementation.
func NewAll(reg *sites.Registry, opts Options) []Scraper {
	opts = opts.withDefaults()
	enabled := reg.Enabled()
	out := make([]Scraper, 0, len(enabled))
	for _, cfg := range enabled {
		build, ok := builders[cfg.ID]
		if !ok {
			logger.WarnObj("no scraper implementation for site", "site_id", cfg.ID)
			continue
		}
		out = append(out, build(cfg, opts))
	}
	return out
}
