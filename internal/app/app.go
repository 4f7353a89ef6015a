// Package app wires the static data source, services and HTTP router from a
// loaded configuration. Both binaries build on it.
package app

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/patient-portal/data"
	"github.com/jwalitptl/patient-portal/internal/config"
	"github.com/jwalitptl/patient-portal/internal/handler"
	appointmentHandler "github.com/jwalitptl/patient-portal/internal/handler/appointment"
	dashboardHandler "github.com/jwalitptl/patient-portal/internal/handler/dashboard"
	"github.com/jwalitptl/patient-portal/internal/handler/health"
	medicalHandler "github.com/jwalitptl/patient-portal/internal/handler/medical"
	promHandler "github.com/jwalitptl/patient-portal/internal/handler/prometheus"
	recommendationHandler "github.com/jwalitptl/patient-portal/internal/handler/recommendation"
	"github.com/jwalitptl/patient-portal/internal/middleware"
	"github.com/jwalitptl/patient-portal/internal/repository/static"
	"github.com/jwalitptl/patient-portal/internal/router"
	"github.com/jwalitptl/patient-portal/internal/service/appointment"
	"github.com/jwalitptl/patient-portal/internal/service/dashboard"
	"github.com/jwalitptl/patient-portal/internal/service/medical"
	"github.com/jwalitptl/patient-portal/internal/service/recommendation"
	"github.com/jwalitptl/patient-portal/pkg/metrics"
)

type App struct {
	Config      *config.Config
	DefaultLang language.Tag
	Location    *time.Location

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Source   *static.Source

	Appointments    *appointment.Service
	Recommendations *recommendation.Service
	Records         *medical.Service
	Dashboard       *dashboard.Service
}

// DataFS returns the configured data directory, or the embedded bundle.
func DataFS(cfg *config.Config) fs.FS {
	if cfg.Data.Dir != "" {
		return os.DirFS(cfg.Data.Dir)
	}
	return data.FS
}

// New builds the application over fsys.
func New(cfg *config.Config, fsys fs.FS) (*App, error) {
	lang, err := cfg.DefaultLanguage()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(cfg.Metrics.Namespace, registry)

	src := static.NewSource(fsys, static.Config{
		ReloadInterval:   cfg.Data.ReloadInterval,
		FailureThreshold: cfg.Data.FailureThreshold,
		RetryAfter:       cfg.Data.RetryAfter,
	}, m)
	appointments := static.NewAppointmentRepository(src)
	recommendations := static.NewRecommendationRepository(src)
	records := static.NewMedicalRecordRepository(src)

	return &App{
		Config:      cfg,
		DefaultLang: lang,
		Location:    loc,
		Registry:    registry,
		Metrics:     m,
		Source:      src,

		Appointments:    appointment.NewService(appointments),
		Recommendations: recommendation.NewService(recommendations),
		Records:         medical.NewService(records, loc),
		Dashboard:       dashboard.NewService(appointments, recommendations, records, loc),
	}, nil
}

// Router builds the HTTP router with every route registered.
func (a *App) Router(now func() time.Time) *router.Router {
	base := handler.NewBase(a.DefaultLang, a.Metrics)
	if now != nil {
		base.Now = now
	}

	var metricsHandler *promHandler.Handler
	if a.Config.Metrics.Enabled {
		metricsHandler = promHandler.New(a.Registry, a.Config.Metrics.Namespace)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = a.Config.CORS.AllowedOrigins
	cache := middleware.DefaultCacheConfig()
	cache.MaxAge = a.Config.Cache.MaxAge

	r := router.NewRouter(
		health.NewHandler(a.Source),
		[]router.Handler{
			dashboardHandler.NewHandler(base, a.Dashboard),
			appointmentHandler.NewHandler(base, a.Appointments),
			recommendationHandler.NewHandler(base, a.Recommendations),
			medicalHandler.NewHandler(base, a.Records),
		},
		metricsHandler,
		router.RouterConfig{
			RateLimitEnabled: a.Config.RateLimit.Enabled,
			RateLimit:        rate.Limit(a.Config.RateLimit.RPS),
			RateBurst:        a.Config.RateLimit.Burst,
			RequestTimeout:   a.Config.Server.RequestTimeout,
			CORSConfig:       cors,
			CacheConfig:      cache,
		},
	)
	r.Setup()
	return r
}

// DataSource describes where the data comes from, for startup logs.
func (a *App) DataSource() string {
	if a.Config.Data.Dir != "" {
		return fmt.Sprintf("dir:%s", a.Config.Data.Dir)
	}
	return "embedded"
}
