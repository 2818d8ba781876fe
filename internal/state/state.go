package state

import (
	"sync"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
)

// Package state owns the mutable run state for scraping and derives read-only
// status snapshots from it. The store is the sole owner of the run state; the
// orchestrator issues mutation calls and the HTTP layer only reads.

// Store tracks one in-progress scraping run. All mutations replace or append
// data in a single step under the lock so a concurrent projection never
// observes a partial write.
type Store struct {
	mu sync.RWMutex

	isScraping  bool
	progress    int
	currentSite string
	articles    []domain.Article
	errors      []string
	completed   bool

	siteOrder    []string
	siteProgress map[string]*domain.SiteProgress
}

// NewStore returns an idle store with no run recorded.
func NewStore() *Store {
	return &Store{
		articles:     []domain.Article{},
		errors:       []string{},
		siteProgress: map[string]*domain.SiteProgress{},
	}
}

// BeginRun atomically claims the single active-run slot. It returns false,
// leaving all state untouched, when a run is already active; otherwise it
// replaces the previous run's state wholesale and registers one waiting
// progress entry per site name.
func (s *Store) BeginRun(siteNames []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isScraping {
		return false
	}

	s.isScraping = true
	s.progress = 0
	s.currentSite = ""
	s.articles = []domain.Article{}
	s.errors = []string{}
	s.completed = false
	s.siteOrder = append([]string(nil), siteNames...)
	s.siteProgress = make(map[string]*domain.SiteProgress, len(siteNames))
	for _, name := range siteNames {
		s.siteProgress[name] = &domain.SiteProgress{Name: name, Status: domain.SiteWaiting}
	}
	return true
}

// IsScraping reports whether a run is currently active.
func (s *Store) IsScraping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isScraping
}

// UpdateProgress sets the overall progress percentage and the human label for
// the site currently in flight.
func (s *Store) UpdateProgress(progress int, currentSite string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = progress
	s.currentSite = currentSite
}

// AddArticles appends newly resolved articles to the accumulated feed.
func (s *Store) AddArticles(items []domain.Article) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = append(s.articles, items...)
}

// AddError records a per-site failure message.
func (s *Store) AddError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}

// SetSiteStatus updates one site's progress entry. Unknown names are ignored;
// entries are never deleted mid-run.
func (s *Store) SetSiteStatus(name string, status domain.SiteStatus, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp, ok := s.siteProgress[name]; ok {
		sp.Status = status
		sp.Count = count
	}
}

// Complete freezes the run as finished: progress forced to 100 and the
// active-run slot released.
func (s *Store) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = 100
	s.currentSite = "Tamamlandı"
	s.completed = true
	s.isScraping = false
}

// Fail records an orchestration-level error and forces run completion so the
// system never hangs with the active-run slot held.
func (s *Store) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
	s.completed = true
	s.isScraping = false
}

// Pulse returns the fields the stream reader watches between full projections.
func (s *Store) Pulse() (progress int, completed, isScraping bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress, s.completed, s.isScraping
}

// Project derives a read-only status snapshot, partitioning accumulated
// articles into today/yesterday buckets. All slices are copies; callers may
// hold them across later mutations.
func (s *Store) Project() domain.StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := make([]domain.Article, 0, len(s.articles))
	yesterday := make([]domain.Article, 0)
	for _, a := range s.articles {
		if a.IsToday {
			today = append(today, a)
		} else {
			yesterday = append(yesterday, a)
		}
	}

	progresses := make([]domain.SiteProgress, 0, len(s.siteOrder))
	for _, name := range s.siteOrder {
		if sp, ok := s.siteProgress[name]; ok {
			progresses = append(progresses, *sp)
		}
	}

	return domain.StatusSnapshot{
		IsScraping:        s.isScraping,
		Progress:          s.progress,
		CurrentSite:       s.currentSite,
		Total:             len(s.articles),
		TodayCount:        len(today),
		YesterdayCount:    len(yesterday),
		TodayArticles:     today,
		YesterdayArticles: yesterday,
		Errors:            append([]string(nil), s.errors...),
		Completed:         s.completed,
		SiteProgresses:    progresses,
	}
}
