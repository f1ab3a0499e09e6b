package ui

import (
	"net/http"
	"sync"

	"riskhypo/app"
	"riskhypo/internal"
	"riskhypo/internal/profiling"
	"riskhypo/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds UI application configuration
type Config struct {
	Port string
}

// App serves the latest pipeline result and, when a repository is
// configured, past runs. Every route is read-only.
type App struct {
	router *chi.Mux
	config Config
	repo   ports.ReportRepository
	logger *internal.Logger

	mu       sync.RWMutex
	result   *app.PipelineResult
	profiles []profiling.ColumnProfile
}

// NewApp creates the HTTP application. repo may be nil.
func NewApp(config Config, repo ports.ReportRepository, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	a := &App{
		router: chi.NewRouter(),
		config: config,
		repo:   repo,
		logger: logger.With("ui"),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// SetResult publishes a pipeline result; its dataset is profiled once here
func (a *App) SetResult(result *app.PipelineResult) {
	var profiles []profiling.ColumnProfile
	if result != nil && result.Dataset != nil {
		profiles = profiling.NewDataProfiler(a.logger).ProfileDataset(result.Dataset)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result = result
	a.profiles = profiles
}

func (a *App) current() (*app.PipelineResult, []profiling.ColumnProfile) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result, a.profiles
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/report", a.handleReportHTML)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/report", a.handleReportJSON)
		r.Get("/report.csv", a.handleReportCSV)
		r.Get("/report.xlsx", a.handleReportXLSX)
		r.Get("/profile", a.handleProfile)
		r.Get("/skipped", a.handleSkipped)
		r.Get("/runs", a.handleListRuns)
		r.Get("/runs/{runID}", a.handleGetRun)
	})
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler { return a.router }

// Start serves until the listener fails
func (a *App) Start() error {
	addr := ":" + a.config.Port
	a.logger.Info("serving reports on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
