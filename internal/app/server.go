package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/burdurhub-hq/burdur-news-hub/internal/config"
	"github.com/burdurhub-hq/burdur-news-hub/internal/logger"
	"github.com/burdurhub-hq/burdur-news-hub/internal/orchestrator"
	"github.com/burdurhub-hq/burdur-news-hub/internal/server"
	"github.com/burdurhub-hq/burdur-news-hub/internal/state"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/httpclient"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/scrapers"
	"github.com/burdurhub-hq/burdur-news-hub/pkg/sites"
)

// Server represents the news hub runtime. It wires the site registry,
// scrapers, orchestrator, and HTTP surface together, and optionally schedules
// periodic background scrapes.
type Server struct {
	cfg      *config.Config
	registry *sites.Registry
	store    *state.Store
	orch     *orchestrator.Orchestrator
	engine   *gin.Engine
	cron     *cron.Cron
}

// New builds the server runtime from config.
func New(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	registry, err := sites.Load(cfg.SitesFile)
	if err != nil {
		return nil, fmt.Errorf("load sites registry: %w", err)
	}
	enabled := registry.Enabled()
	siteIDs := make([]string, 0, len(enabled))
	for _, s := range enabled {
		siteIDs = append(siteIDs, s.ID)
	}
	logger.InfoObj("sites registry loaded", "sites_meta", map[string]any{
		"count":   len(registry.All()),
		"enabled": siteIDs,
	})

	opts := scrapers.Options{
		Client:            httpclient.NewRestyClient(cfg.RequestTimeout),
		DateClient:        httpclient.NewRestyClient(cfg.DateFetchTimeout),
		UserAgent:         cfg.UserAgent,
		RequestDelay:      cfg.RequestDelay,
		MaxPages:          cfg.MaxPages,
		NewsPerPage:       cfg.NewsPerPage,
		BatchSize:         cfg.MaxWorkers,
		WindowDays:        cfg.DateRangeDays,
		MaxConsecutiveOld: cfg.MaxConsecutiveOld,
	}

	store := state.NewStore()
	orch := orchestrator.New(store, func() []scrapers.Scraper {
		return scrapers.NewAll(registry, opts)
	})

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := server.NewRouter(server.Deps{
		Registry: registry,
		Orch:     orch,
		Store:    store,
		NewScraper: func(id string) (scrapers.Scraper, error) {
			return scrapers.New(id, registry, opts)
		},
	})

	srv := &Server{
		cfg:      cfg,
		registry: registry,
		store:    store,
		orch:     orch,
		engine:   engine,
	}

	if cfg.ScrapeCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.ScrapeCron, srv.scheduledScrape); err != nil {
			return nil, fmt.Errorf("invalid scrape_cron %q: %w", cfg.ScrapeCron, err)
		}
		srv.cron = c
		logger.InfoObj("scheduled scraping enabled", "scrape_cron", cfg.ScrapeCron)
	}

	return srv, nil
}

// scheduledScrape triggers a background run, skipping silently when one is
// already active (same gate as the HTTP endpoint).
func (s *Server) scheduledScrape() {
	if err := s.orch.StartBackground(); err != nil {
		if errors.Is(err, orchestrator.ErrRunActive) {
			logger.DebugObj("scheduled scrape skipped", "reason", "run already active")
			return
		}
		logger.ErrorObj("scheduled scrape failed", "error", err)
	}
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.engine == nil {
		return fmt.Errorf("server is not initialized")
	}

	if s.cron != nil {
		s.cron.Start()
		defer s.cron.Stop()
	}

	httpSrv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	logger.InfoObj("http server listening", "listen_addr", s.cfg.ListenAddr)

	select {
	case <-ctx.Done():
		logger.InfoObj("server shutting down", "reason", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}
