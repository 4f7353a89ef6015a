package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/patient-portal/internal/handler/prometheus"
	"github.com/jwalitptl/patient-portal/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine  *gin.Engine
	config  RouterConfig
	health  Handler
	views   []Handler
	metrics *prometheus.Handler
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	CORSConfig       middleware.CORSConfig
	CacheConfig      middleware.CacheConfig
}

// NewRouter builds the engine. metrics may be nil to disable /metrics and
// request instrumentation.
func NewRouter(health Handler, views []Handler, metrics *prometheus.Handler, config RouterConfig) *Router {
	engine := gin.New()

	r := &Router{
		engine:  engine,
		config:  config,
		health:  health,
		views:   views,
		metrics: metrics,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	if r.metrics != nil {
		r.engine.GET("/metrics", r.metrics.Handler())
	}

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.health.RegisterRoutes(api)

	views := api.Group("")
	views.Use(middleware.Cache(r.config.CacheConfig))
	for _, h := range r.views {
		h.RegisterRoutes(views)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
