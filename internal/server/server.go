package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/burdurhub-hq/burdur-news-hub/internal/domain"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
	"github.com/burdurhub-hq/burdur-news-hub/internal/orchestrator"
	"github.com/burdurhub-hq/burdur-news-hub/internal/state"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/scrapers"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// Package server exposes the aggregated feed and the scraping status feed
// over JSON HTTP, including the SSE progress stream.

const (
	defaultStreamInterval    = 500 * time.Millisecond
	defaultStreamMaxAttempts = 120 // 60 s at the default interval
)

// Deps carries everything the HTTP layer reads or triggers.
type Deps struct {
	Registry   *sites.Registry
	Orch       *orchestrator.Orchestrator
	Store      *state.Store
	NewScraper func(id string) (scrapers.Scraper, error)

	// Stream pacing; zero values take the defaults.
	StreamInterval    time.Duration
	StreamMaxAttempts int
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	if deps.StreamInterval <= 0 {
		deps.StreamInterval = defaultStreamInterval
	}
	if deps.StreamMaxAttempts <= 0 {
		deps.StreamMaxAttempts = defaultStreamMaxAttempts
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", healthCheck)
	router.GET("/sites", listSites(deps.Registry))
	router.GET("/news", allNews(deps.Orch))
	router.GET("/news/:site", siteNews(deps.NewScraper))
	router.GET("/start-scraping", startScraping(deps.Orch))
	router.GET("/scraping-status", scrapingStatus(deps.Store))
	router.GET("/scraping-stream", scrapingStream(deps.Store, deps.StreamInterval, deps.StreamMaxAttempts))

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func listSites(reg *sites.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		infos := reg.Infos()
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(infos),
			"sites":   infos,
		})
	}
}

// allNews runs every enabled scraper synchronously and serves the aggregate
// sorted newest first. Per-site failures are swallowed so one broken source
// does not fail the whole response.
func allNews(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		news := orch.RunAll(c.Request.Context())
		if news == nil {
			news = []domain.Article{}
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(news),
			"news":    news,
		})
	}
}

func siteNews(newScraper func(id string) (scrapers.Scraper, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("site")

		sc, err := newScraper(id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, scrapers.ErrUnknownSite) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"success": false, "error": err.Error()})
			return
		}

		news, err := sc.Scrape(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		if news == nil {
			news = []domain.Article{}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"site":              id,
			"site_display_name": sc.SiteName(),
			"count":             len(news),
			"news":              news,
		})
	}
}

// startScraping triggers a background run and returns immediately. A request
// received while a run is active is rejected, not queued.
func startScraping(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orch.StartBackground(); err != nil {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
			return
		}
		logger.InfoObj("scraping run started", "trigger", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Scraping başlatıldı"})
	}
}

func scrapingStatus(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Project())
	}
}
