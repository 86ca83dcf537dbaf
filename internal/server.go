package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/weeklyfit/internal/config"
	"github.com/2beens/weeklyfit/internal/middleware"
	"github.com/2beens/weeklyfit/internal/payments"
	"github.com/2beens/weeklyfit/internal/recommend"
	"github.com/2beens/weeklyfit/internal/telemetry/metrics"
	"github.com/2beens/weeklyfit/internal/telemetry/tracing"
	"github.com/2beens/weeklyfit/internal/weekly"
	"github.com/2beens/weeklyfit/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

const serviceName = "weeklyfit-backend"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config   *config.Config
	secrets  *config.Secrets
	storage  *Storage
	store    *weekly.Store
	provider payments.Provider

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func(context.Context) error
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     *config.Secrets
	VersionInfo string
	// PaymentsProvider overrides the Stripe provider built from the secrets.
	PaymentsProvider payments.Provider
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	secrets := params.Secrets
	if secrets == nil {
		secrets = &config.Secrets{}
	}

	otelShutdown, err := tracing.Setup(ctx, cfg.TracingEnabled, serviceName)
	if err != nil {
		return nil, err
	}

	storage, err := OpenStorage(ctx, cfg, secrets)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("open storage: %w", err), otelShutdown(ctx))
	}

	promRegistry := metrics.SetupPrometheus(storage.Collectors()...)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	provider := params.PaymentsProvider
	if provider == nil && secrets.StripeSecretKey != "" {
		stripeProvider, err := payments.NewStripeProvider(payments.StripeParams{
			SecretKey:       secrets.StripeSecretKey,
			WebhookSecret:   secrets.StripeWebhookSecret,
			Domain:          cfg.PaymentsDomain,
			TrialPeriodDays: cfg.TrialPeriodDays,
			TracingEnabled:  cfg.TracingEnabled,
		})
		if err != nil {
			return nil, multierr.Combine(fmt.Errorf("new stripe provider: %w", err), storage.Close(), otelShutdown(ctx))
		}
		provider = stripeProvider
	}
	if provider == nil {
		log.Warnln("stripe secret key not set, payment routes disabled")
	}

	return &Server{
		config:      cfg,
		secrets:     secrets,
		versionInfo: params.VersionInfo,
		storage:     storage,
		store:       weekly.NewStore(ctx, storage.KV, metricsManager),
		provider:    provider,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	}).Methods("GET")
	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET")

	weekly.NewHandler(s.store).RegisterRoutes(r)

	recommend.NewHandler(
		s.store,
		recommend.NewEngine(recommend.DefaultLibrary()),
		recommend.NewMealPlanner(recommend.DefaultMealDatabase()),
		s.metricsManager,
	).RegisterRoutes(r)

	if s.provider != nil {
		var limiter mux.MiddlewareFunc
		if redisClient := s.storage.RedisClient(); redisClient != nil {
			limiter = middleware.RateLimit(
				redis_rate.NewLimiter(redisClient),
				"payments",
				s.config.PaymentsRateLimitPerMinute,
				s.metricsManager,
			)
		} else {
			log.Warnln("redis not configured, payment routes are not rate limited")
		}
		payments.NewHandler(s.provider, s.metricsManager).RegisterRoutes(r, limiter)
	}

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.NewTokenAuth(s.secrets.APITokenHash).Check())
	r.Use(middleware.DrainAndCloseRequest())

	return middleware.Cors(s.config.AllowedOrigins)(r)
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown http server: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("shutdown metrics http server: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	// in-flight requests are done, storage can go
	if closeErr := s.storage.Close(); closeErr != nil {
		err = multierr.Append(err, fmt.Errorf("close storage: %w", closeErr))
	}

	if otelErr := s.otelShutdown(ctx); otelErr != nil {
		err = multierr.Append(err, fmt.Errorf("otel shutdown: %w", otelErr))
	}
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}
