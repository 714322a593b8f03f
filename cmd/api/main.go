package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/aesthiq-api/internal/config"
	"github.com/jwalitptl/aesthiq-api/internal/email"
	"github.com/jwalitptl/aesthiq-api/internal/handler/appointment"
	"github.com/jwalitptl/aesthiq-api/internal/handler/auth"
	"github.com/jwalitptl/aesthiq-api/internal/handler/booking"
	"github.com/jwalitptl/aesthiq-api/internal/handler/catalog"
	"github.com/jwalitptl/aesthiq-api/internal/handler/health"
	"github.com/jwalitptl/aesthiq-api/internal/handler/location"
	"github.com/jwalitptl/aesthiq-api/internal/handler/navigation"
	"github.com/jwalitptl/aesthiq-api/internal/handler/organization"
	"github.com/jwalitptl/aesthiq-api/internal/handler/plan"
	promHandler "github.com/jwalitptl/aesthiq-api/internal/handler/prometheus"
	"github.com/jwalitptl/aesthiq-api/internal/handler/staff"
	"github.com/jwalitptl/aesthiq-api/internal/handler/stripeconnect"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/repository/postgres"
	sessionStore "github.com/jwalitptl/aesthiq-api/internal/repository/redis"
	"github.com/jwalitptl/aesthiq-api/internal/router"
	appointmentService "github.com/jwalitptl/aesthiq-api/internal/service/appointment"
	authService "github.com/jwalitptl/aesthiq-api/internal/service/auth"
	bookingService "github.com/jwalitptl/aesthiq-api/internal/service/booking"
	catalogService "github.com/jwalitptl/aesthiq-api/internal/service/catalog"
	eventService "github.com/jwalitptl/aesthiq-api/internal/service/event"
	locationService "github.com/jwalitptl/aesthiq-api/internal/service/location"
	orgService "github.com/jwalitptl/aesthiq-api/internal/service/organization"
	planService "github.com/jwalitptl/aesthiq-api/internal/service/plan"
	staffService "github.com/jwalitptl/aesthiq-api/internal/service/staff"
	stripeService "github.com/jwalitptl/aesthiq-api/internal/service/stripeconnect"
	"github.com/jwalitptl/aesthiq-api/internal/service/tenant"
	pkgauth "github.com/jwalitptl/aesthiq-api/pkg/auth"
	"github.com/jwalitptl/aesthiq-api/pkg/logger"
	"github.com/jwalitptl/aesthiq-api/pkg/messaging/redis"
	"github.com/jwalitptl/aesthiq-api/pkg/metrics"
	"github.com/jwalitptl/aesthiq-api/pkg/security"
	"github.com/jwalitptl/aesthiq-api/pkg/validator"
)

const metricsNamespace = "aesthiq"

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.Setup(cfg.Log.ToLoggerConfig())
	if err := validator.RegisterGin(); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to register validators")
	}

	ctx := context.Background()

	db, err := postgres.NewDB(ctx, postgres.DBConfig{
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(registry, metricsNamespace, "api")

	// Initialize repositories
	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(baseRepo)
	organizationRepo := postgres.NewOrganizationRepository(baseRepo)
	planRepo := postgres.NewPlanRepository(baseRepo)
	locationRepo := postgres.NewLocationRepository(baseRepo)
	serviceRepo := postgres.NewServiceRepository(baseRepo)
	tierRepo := postgres.NewMembershipTierRepository(baseRepo)
	appointmentRepo := postgres.NewAppointmentRepository(baseRepo)
	stripeAccountRepo := postgres.NewStripeAccountRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)
	sessions := sessionStore.NewSessionStore(redisClient)

	var mailer email.Service
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, appLogger)
	} else {
		mailer = email.NewNoopService(appLogger)
	}

	// Initialize services
	eventSvc := eventService.NewService(outboxRepo, appLogger)
	plans := tenant.Plans{Organizations: organizationRepo, Plans: planRepo}
	orgSvc := orgService.NewService(organizationRepo, planRepo, eventSvc, mailer, orgService.Config{
		TrialDays:    cfg.Organizations.TrialDays,
		PublicOrigin: cfg.Server.PublicOrigin,
	}, appLogger)
	planSvc := planService.NewService(planRepo, eventSvc, cfg.Stripe.Currency, appLogger)
	authSvc := authService.NewService(
		userRepo,
		organizationRepo,
		orgSvc,
		plans,
		sessions,
		pkgauth.NewTokenService(cfg.Session.Secret, cfg.Session.TTL),
		security.NewBcryptHasher(cfg.Session.BcryptCost),
		mailer,
		appMetrics,
		appLogger,
	)
	locationSvc := locationService.NewService(locationRepo, plans, eventSvc, appLogger)
	catalogSvc := catalogService.NewService(serviceRepo, tierRepo, eventSvc, appLogger)
	staffSvc := staffService.NewService(userRepo, plans, security.NewBcryptHasher(cfg.Session.BcryptCost), eventSvc, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, locationRepo, serviceRepo, userRepo, eventSvc, appLogger)

	if cfg.Stripe.SecretKey == "" {
		appLogger.Warn().Msg("stripe secret key is not set: Stripe Connect calls will fail")
	}
	stripeSvc := stripeService.NewService(
		stripeAccountRepo,
		organizationRepo,
		userRepo,
		serviceRepo,
		stripeService.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret),
		eventSvc,
		appMetrics,
		stripeService.Config{
			Country:         cfg.Stripe.Country,
			Currency:        cfg.Stripe.Currency,
			PlatformFeeBps:  cfg.Stripe.PlatformFeeBps,
			StatusCacheTTL:  cfg.Stripe.StatusCacheTTL,
			ReturnURL:       cfg.Stripe.ReturnURL,
			RefreshURL:      cfg.Stripe.RefreshURL,
			BypassSetupGate: cfg.Payments.BypassSetupGate,
		},
		appLogger,
	)
	bookingSvc := bookingService.NewService(organizationRepo, serviceRepo, locationRepo, cfg.Server.PublicOrigin, appLogger)

	// Initialize middleware
	corsConfig := middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins)
	authMiddleware := middleware.NewAuthMiddleware(authSvc, cfg.Session.CookieName)
	paymentGate := middleware.PaymentRequired(stripeSvc, appLogger)

	var rateLimit *middleware.RateLimiterConfig
	if cfg.RateLimit.Enabled {
		rateLimit = &middleware.RateLimiterConfig{
			Rate:    rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst:   cfg.RateLimit.Burst,
			IdleTTL: 10 * time.Minute,
		}
	}

	r := router.NewRouter(
		authMiddleware,
		paymentGate,
		router.Handlers{
			Auth: auth.NewHandler(authSvc, auth.CookieConfig{
				Name:   cfg.Session.CookieName,
				Domain: cfg.Session.Domain,
				Secure: cfg.Session.Secure,
			}, appLogger),
			Organization:  organization.NewHandler(orgSvc),
			Plan:          plan.NewHandler(planSvc),
			Location:      location.NewHandler(locationSvc),
			Staff:         staff.NewHandler(staffSvc),
			Navigation:    navigation.NewHandler(),
			Catalog:       catalog.NewHandler(catalogSvc),
			Appointment:   appointment.NewHandler(appointmentSvc),
			StripeConnect: stripeconnect.NewHandler(stripeSvc),
			Booking:       booking.NewHandler(bookingSvc, corsConfig),
			Health: health.NewHandler(map[string]health.Pinger{
				"postgres": db,
				"redis": health.PingerFunc(func(ctx context.Context) error {
					return redisClient.Ping(ctx).Err()
				}),
			}),
			Metrics: promHandler.New(registry, metricsNamespace),
		},
		router.RouterConfig{
			Mode:           cfg.Server.Mode,
			CORSConfig:     corsConfig,
			Security:       middleware.DefaultSecurityConfig(cfg.Session.Secure),
			RateLimit:      rateLimit,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		appLogger,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(srv, cfg.Server.ShutdownTimeout, appLogger)
}

func waitForShutdown(srv *http.Server, timeout time.Duration, logger zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server exited properly")
}
