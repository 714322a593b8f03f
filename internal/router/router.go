package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/handler/health"
	"github.com/jwalitptl/aesthiq-api/internal/handler/prometheus"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// GatedHandler mounts some routes behind the payment setup gate.
type GatedHandler interface {
	RegisterRoutes(*gin.RouterGroup, gin.HandlerFunc)
}

type Handlers struct {
	Auth          Handler
	Organization  Handler
	Plan          Handler
	Location      Handler
	Staff         Handler
	Navigation    Handler
	Catalog       GatedHandler
	Appointment   GatedHandler
	StripeConnect GatedHandler
	Booking       GatedHandler
	Health        *health.Handler
	Metrics       *prometheus.Handler
}

type RouterConfig struct {
	Mode           string
	CORSConfig     middleware.CORSConfig
	Security       middleware.SecurityConfig
	RateLimit      *middleware.RateLimiterConfig
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

type Router struct {
	engine      *gin.Engine
	auth        *middleware.AuthMiddleware
	paymentGate gin.HandlerFunc
	handlers    Handlers
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	paymentGate gin.HandlerFunc,
	handlers Handlers,
	config RouterConfig,
	logger zerolog.Logger,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORSConfig),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}
	if config.MaxBodyBytes > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodyBytes))
	}
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}
	if handlers.Metrics != nil {
		engine.Use(handlers.Metrics.Middleware())
	}

	return &Router{
		engine:      engine,
		auth:        auth,
		paymentGate: paymentGate,
		handlers:    handlers,
	}
}

func (r *Router) Setup() {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(r.engine)
	}
	if r.handlers.Metrics != nil {
		r.engine.GET("/metrics", r.handlers.Metrics.Handler())
	}

	api := r.engine.Group("/api")
	api.Use(r.auth.Authenticate())

	for _, h := range []Handler{
		r.handlers.Auth,
		r.handlers.Organization,
		r.handlers.Plan,
		r.handlers.Location,
		r.handlers.Staff,
		r.handlers.Navigation,
	} {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	for _, h := range []GatedHandler{
		r.handlers.Catalog,
		r.handlers.Appointment,
		r.handlers.StripeConnect,
		r.handlers.Booking,
	} {
		if h != nil {
			h.RegisterRoutes(api, r.paymentGate)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
