package domain

import "time"

// Domain contains core models shared across scrapers, state, and the HTTP surface.

// RawCandidate is a listing entry whose publish date is not yet confirmed.
// Link doubles as the dedup key within one page scan.
type RawCandidate struct {
	Title    string
	Link     string
	Image    string
	Category string
}

// Article is a fully resolved news item whose date fell inside the recency window.
type Article struct {
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Image      string    `json:"image"`
	Category   string    `json:"category"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	IsToday    bool      `json:"is_today"`
	ParsedDate time.Time `json:"parsed_date"`
	Source     string    `json:"source"`
	SourceID   string    `json:"source_id"`
}

// SiteStatus tracks where a single site stands within a run.
type SiteStatus string

const (
	SiteWaiting SiteStatus = "waiting"
	SiteRunning SiteStatus = "running"
	SiteDone    SiteStatus = "done"
	SiteError   SiteStatus = "error"
)

// SiteProgress is the per-site run status used by the status feed.
type SiteProgress struct {
	Name   string     `json:"name"`
	Status SiteStatus `json:"status"`
	Count  int        `json:"count"`
}

// StatusSnapshot is the read-only projection of a scraping run, with
// accumulated articles partitioned into today/yesterday buckets.
type StatusSnapshot struct {
	IsScraping        bool           `json:"is_scraping"`
	Progress          int            `json:"progress"`
	CurrentSite       string         `json:"current_site"`
	Total             int            `json:"total"`
	TodayCount        int            `json:"today_count"`
	YesterdayCount    int            `json:"yesterday_count"`
	TodayArticles     []Article      `json:"today_articles"`
	YesterdayArticles []Article      `json:"yesterday_articles"`
	Errors            []string       `json:"errors"`
	Completed         bool           `json:"completed"`
	SiteProgresses    []SiteProgress `json:"site_progresses"`
}
