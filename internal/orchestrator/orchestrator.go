package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
	"github.com/burdurhub-hq/burdur-news-hub/internal/state"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/scrapers"
)

// Package orchestrator runs all enabled site scrapers concurrently, isolates
// per-site failures, and feeds the shared state store incrementally.

// ErrRunActive is returned when a background run is requested while one is
// already in flight. Concurrent starts are rejected, not queued.
var ErrRunActive = errors.New("scraping zaten devam ediyor")

// Factory builds a fresh scraper set for one run so each run gets its own
// "today" anchor.
type Factory func() []scrapers.Scraper

// Orchestrator coordinates scraping across all sites against one state store.
type Orchestrator struct {
	store       *state.Store
	newScrapers Factory
}

// New wires an orchestrator over the given store and scraper factory.
func New(store *state.Store, factory Factory) *Orchestrator {
	return &Orchestrator{store: store, newScrapers: factory}
}

// Store exposes the run state store for status readers.
func (o *Orchestrator) Store() *state.Store { return o.store }

// RunAll executes every scraper concurrently with settle-all semantics and
// returns the aggregate sorted newest first. Per-site failures are logged and
// swallowed so one broken source never empties the whole feed.
func (o *Orchestrator) RunAll(ctx context.Context) []domain.Article {
	scrs := o.newScrapers()
	results := make([][]domain.Article, len(scrs))

	var wg sync.WaitGroup
	for i, sc := range scrs {
		wg.Add(1)
		go func(i int, sc scrapers.Scraper) {
			defer wg.Done()
			articles, err := scrapeSite(ctx, sc)
			if err != nil {
				logger.WarnObj("site scrape failed", "site_error", map[string]any{
					"site_id": sc.SiteID(),
					"error":   err.Error(),
				})
				return
			}
			results[i] = articles
		}(i, sc)
	}
	wg.Wait()

	var all []domain.Article
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ParsedDate.After(all[j].ParsedDate)
	})
	return all
}

// StartBackground claims the active-run slot and launches the run in the
// background, returning immediately. ErrRunActive is returned, with no state
// mutated, when a run is already in flight.
func (o *Orchestrator) StartBackground() error {
	scrs := o.newScrapers()
	names := make([]string, 0, len(scrs))
	for _, sc := range scrs {
		names = append(names, sc.SiteName())
	}

	if !o.store.BeginRun(names) {
		return ErrRunActive
	}

	// The run outlives the triggering request.
	go o.run(context.Background(), scrs)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, scrs []scrapers.Scraper) {
	// The run must always reach completion, otherwise the active-run slot
	// stays held forever.
	defer func() {
		if r := recover(); r != nil {
			o.store.Fail(fmt.Sprintf("scraping hatası: %v", r))
			logger.ErrorObj("scraping run aborted", "panic", fmt.Sprint(r))
		}
	}()

	if len(scrs) == 0 {
		o.store.AddError("Aktif scraper bulunamadı")
		o.store.Complete()
		return
	}

	o.store.UpdateProgress(0, "Tüm siteler paralel taranıyor...")

	total := len(scrs)
	completed := 0
	var mu sync.Mutex

	var wg sync.WaitGroup
	for _, sc := range scrs {
		wg.Add(1)
		go func(sc scrapers.Scraper) {
			defer wg.Done()

			o.store.SetSiteStatus(sc.SiteName(), domain.SiteRunning, 0)
			articles, err := scrapeSite(ctx, sc)

			// Bookkeeping happens under one lock so progress stays
			// monotonic across racing site completions.
			mu.Lock()
			defer mu.Unlock()
			completed++
			progress := int(math.Round(float64(completed) / float64(total) * 100))

			if err != nil {
				o.store.AddError(fmt.Sprintf("%s: %v", sc.SiteName(), err))
				o.store.SetSiteStatus(sc.SiteName(), domain.SiteError, 0)
				o.store.UpdateProgress(progress, fmt.Sprintf("%s hata aldı (%d/%d)", sc.SiteName(), completed, total))
				return
			}

			o.store.AddArticles(articles)
			o.store.SetSiteStatus(sc.SiteName(), domain.SiteDone, len(articles))
			o.store.UpdateProgress(progress, fmt.Sprintf("%s tamamlandı (%d/%d)", sc.SiteName(), completed, total))
		}(sc)
	}
	wg.Wait()

	o.store.Complete()
	logger.InfoObj("scraping run completed", "run_result", o.store.Project().Total)
}

// scrapeSite isolates one site's execution, converting panics into errors so
// a misbehaving scraper cannot abort its siblings.
func scrapeSite(ctx context.Context, sc scrapers.Scraper) (articles []domain.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scraper panic: %v", r)
		}
	}()
	return sc.Scrape(ctx)
}
