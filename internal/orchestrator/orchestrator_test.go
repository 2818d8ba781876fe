package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/state"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/scrapers"
)

// fakeScraper is a canned scrapers.Scraper for orchestration tests.
type fakeScraper struct {
	id       string
	name     string
	articles []domain.Article
	err      error
	panics   bool
}

func (f *fakeScraper) SiteID() string   { return f.id }
func (f *fakeScraper) SiteName() string { return f.name }

func (f *fakeScraper) Scrape(_ context.Context) ([]domain.Article, error) {
	if f.panics {
		panic("kaput")
	}
	return f.articles, f.err
}

func (f *fakeScraper) ExtractCandidates(_ string) []domain.RawCandidate { return nil }

func (f *fakeScraper) ResolveDate(_ context.Context, _ string) (time.Time, bool) {
	return time.Time{}, false
}

func (f *fakeScraper) ResolvesDates() bool { return false }

func factoryOf(scrs ...scrapers.Scraper) Factory {
	return func() []scrapers.Scraper { return scrs }
}

func waitForCompletion(t *testing.T, store *state.Store) domain.StatusSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, completed, _ := store.Pulse(); completed {
			return store.Project()
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("run did not complete in time")
	return domain.StatusSnapshot{}
}

func art(title string, d time.Time, today bool) domain.Article {
	return domain.Article{Title: title, ParsedDate: d, IsToday: today}
}

func TestStartBackgroundCompletesWithAllArticles(t *testing.T) {
	now := time.Now()
	store := state.NewStore()
	o := New(store, factoryOf(
		&fakeScraper{id: "a", name: "Site A", articles: []domain.Article{art("a1", now, true)}},
		&fakeScraper{id: "b", name: "Site B", articles: []domain.Article{art("b1", now.Add(-time.Hour), true), art("b2", now.AddDate(0, 0, -1), false)}},
	))

	if err := o.StartBackground(); err != nil {
		t.Fatalf("StartBackground: %v", err)
	}
	snap := waitForCompletion(t, store)

	if snap.Total != 3 || snap.TodayCount != 2 || snap.YesterdayCount != 1 {
		t.Fatalf("unexpected totals: %#v", snap)
	}
	if snap.Progress != 100 || snap.IsScraping {
		t.Fatalf("run should be frozen at 100%%, got progress=%d scraping=%v", snap.Progress, snap.IsScraping)
	}
	for _, sp := range snap.SiteProgresses {
		if sp.Status != domain.SiteDone {
			t.Fatalf("site %q status = %q, want done", sp.Name, sp.Status)
		}
	}
}

func TestStartBackgroundRejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	blocking := &blockingScraper{release: release}
	store := state.NewStore()
	o := New(store, factoryOf(blocking))

	if err := o.StartBackground(); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := o.StartBackground(); !errors.Is(err, ErrRunActive) {
		t.Fatalf("second start error = %v, want ErrRunActive", err)
	}

	close(release)
	waitForCompletion(t, store)

	if err := o.StartBackground(); err != nil {
		t.Fatalf("start after completion: %v", err)
	}
	waitForCompletion(t, store)
}

type blockingScraper struct {
	release chan struct{}
}

func (b *blockingScraper) SiteID() string   { return "blocking" }
func (b *blockingScraper) SiteName() string { return "Blocking Site" }

func (b *blockingScraper) Scrape(_ context.Context) ([]domain.Article, error) {
	<-b.release
	return nil, nil
}

func (b *blockingScraper) ExtractCandidates(_ string) []domain.RawCandidate { return nil }

func (b *blockingScraper) ResolveDate(_ context.Context, _ string) (time.Time, bool) {
	return time.Time{}, false
}

func (b *blockingScraper) ResolvesDates() bool { return false }

func TestFailingSiteDoesNotAbortSiblings(t *testing.T) {
	now := time.Now()
	store := state.NewStore()
	o := New(store, factoryOf(
		&fakeScraper{id: "ok", name: "Saglam Site", articles: []domain.Article{art("n1", now, true)}},
		&fakeScraper{id: "bad", name: "Bozuk Site", err: errors.New("connection refused")},
		&fakeScraper{id: "boom", name: "Patlayan Site", panics: true},
	))

	if err := o.StartBackground(); err != nil {
		t.Fatalf("StartBackground: %v", err)
	}
	snap := waitForCompletion(t, store)

	if snap.Total != 1 {
		t.Fatalf("expected 1 surviving article, got %d", snap.Total)
	}
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 site errors, got %v", snap.Errors)
	}
	statuses := map[string]domain.SiteStatus{}
	for _, sp := range snap.SiteProgresses {
		statuses[sp.Name] = sp.Status
	}
	if statuses["Saglam Site"] != domain.SiteDone {
		t.Fatalf("healthy site status = %q", statuses["Saglam Site"])
	}
	if statuses["Bozuk Site"] != domain.SiteError || statuses["Patlayan Site"] != domain.SiteError {
		t.Fatalf("failed sites should be marked error: %#v", statuses)
	}
	for _, msg := range snap.Errors {
		if !strings.Contains(msg, "Site") {
			t.Fatalf("error message should carry the site name, got %q", msg)
		}
	}
}

func TestEmptyFactoryCompletesWithError(t *testing.T) {
	store := state.NewStore()
	o := New(store, factoryOf())

	if err := o.StartBackground(); err != nil {
		t.Fatalf("StartBackground: %v", err)
	}
	snap := waitForCompletion(t, store)
	if len(snap.Errors) != 1 || snap.Errors[0] != "Aktif scraper bulunamadı" {
		t.Fatalf("unexpected errors %v", snap.Errors)
	}
	if snap.IsScraping {
		t.Fatal("empty run must still release the active-run slot")
	}
}

func TestRunAllSortsNewestFirst(t *testing.T) {
	now := time.Now()
	o := New(state.NewStore(), factoryOf(
		&fakeScraper{id: "a", name: "Site A", articles: []domain.Article{art("eski", now.Add(-2*time.Hour), true)}},
		&fakeScraper{id: "b", name: "Site B", articles: []domain.Article{art("yeni", now, true), art("orta", now.Add(-time.Hour), true)}},
		&fakeScraper{id: "c", name: "Site C", err: errors.New("down")},
	))

	got := o.RunAll(context.Background())
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
	want := []string{"yeni", "orta", "eski"}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("position %d: got %q, want %q", i, got[i].Title, title)
		}
	}
}
