package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/config"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/dashboard"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/db"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/measurements"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/middleware"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/nutrition"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/seriescache"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/metrics"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/telemetry/tracing"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"
	"github.com/Maladandanmian/nu-performance-nutrition-sub001/pkg"
)

// measurement uploads are single rows, anything bigger is rejected by the decoder
const maxRequestBodyBytes = 64 << 10

type measurementsStore interface {
	Add(ctx context.Context, clientID string, m trends.Measurement) (int64, error)
	List(ctx context.Context, params measurements.ListParams) ([]trends.Measurement, error)
}

type seriesCache interface {
	Get(ctx context.Context, key seriescache.Key) (s *trends.Series, generation int64, found bool, err error)
	SetAt(ctx context.Context, key seriescache.Key, generation int64, s trends.Series) error
	Invalidate(ctx context.Context, clientID, metricKey string) error
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config   *config.Config
	dbPool   *pgxpool.Pool
	sqliteDB *sql.DB
	store    measurementsStore
	cache    seriesCache
	resolver *trends.Resolver

	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config           *config.Config
	VersionInfo      string
	PostgresUser     string
	PostgresPassword string
	RedisPassword    string
	// Clock defaults to the system clock.
	Clock trends.Clock
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (_ *Server, err error) {
	cfg := params.Config
	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
		resolver:    trends.NewResolver(params.Clock, cfg.Location()),
	}
	defer func() {
		if err != nil {
			s.closeConnections()
		}
	}()

	var collectors []prometheus.Collector
	switch cfg.MeasurementSource {
	case config.SourcePostgres:
		s.dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         params.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: cfg.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := s.dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		psqlRepo := measurements.NewPsqlRepo(s.dbPool)
		if err := psqlRepo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure measurements schema: %w", err)
		}
		s.store = psqlRepo
		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			s.dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	case config.SourceSqlite:
		s.sqliteDB, err = db.OpenSqlite(ctx, cfg.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.store, err = measurements.NewSqliteRepo(ctx, s.sqliteDB)
		if err != nil {
			return nil, fmt.Errorf("new sqlite repo: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown measurement source: %s", cfg.MeasurementSource)
	}

	s.promRegistry = metrics.SetupPrometheus(collectors...)
	s.metricsManager = metrics.NewManager("nutrition", "trends", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	if cfg.RedisHost != "" {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0,
		})

		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	switch cfg.CacheBackend {
	case config.CacheBackendNone:
		s.cache = seriescache.Nop{}
	case config.CacheBackendMemory:
		s.cache = seriescache.NewFreeCache(cfg.CacheSizeBytes, cfg.CacheTTLDuration())
	case config.CacheBackendRedis:
		if s.redisClient == nil {
			return nil, errors.New("redis cache backend needs redis_host")
		}
		s.cache = seriescache.NewRedisCache(s.redisClient, cfg.CacheTTLDuration())
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.CacheBackend)
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	s.otelShutdown, err = tracing.HoneycombSetup(cfg.HoneycombTracingEnabled, "nutrition-trends-backend", s.redisClient)
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS").Name("health")

	nutritionHandler := nutrition.NewHandler(s.metricsManager)
	r.HandleFunc("/nutrition/scale", nutritionHandler.HandleScale).Methods("POST", "OPTIONS").Name("nutrition-scale")
	r.HandleFunc("/nutrition/aggregate", nutritionHandler.HandleAggregate).Methods("POST", "OPTIONS").Name("nutrition-aggregate")

	dashboardHandler := dashboard.NewHandler(
		dashboard.NewService(s.store, s.cache, s.resolver, s.metricsManager, dashboard.OverlayOptions{
			SpacingUnit: s.config.OverlaySpacingUnit,
			MetricOrder: s.config.OverlayMetricOrder,
		}),
	)
	r.HandleFunc("/clients/{client}/trends/{metric}", dashboardHandler.HandleTrend).Methods("GET", "OPTIONS").Name("get-trend")
	r.HandleFunc("/clients/{client}/overlay", dashboardHandler.HandleOverlay).Methods("GET", "OPTIONS").Name("get-overlay")

	measurementsRouter := r.PathPrefix("/clients/{client}/measurements").Subrouter()
	measurementsRouter.HandleFunc("", dashboardHandler.HandleAddMeasurement).Methods("POST", "OPTIONS").Name("new-measurement")
	if s.redisClient != nil {
		measurementsRouter.Use(middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			s.metricsManager,
			"measurements",
			s.config.MeasurementsRateLimit,
		))
	} else {
		log.Warnln("redis not configured, measurements are not rate limited")
	}

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.RequestID())
	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.LimitAndDrainRequest(maxRequestBodyBytes))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":  "ok",
		"version": s.versionInfo,
		"source":  s.config.MeasurementSource,
		"cache":   s.config.CacheBackend,
	}
	statusJson, err := json.Marshal(status)
	if err != nil {
		log.Errorf("failed to marshal health status: %s", err)
		http.Error(w, "failed to marshal health status", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statusJson)
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", metrics.Handler(s.promRegistry))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
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

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before the stores go away
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	s.closeConnections()

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) closeConnections() {
	var err error
	if s.redisClient != nil {
		err = multierr.Append(err, s.redisClient.Close())
		s.redisClient = nil
	}
	if s.sqliteDB != nil {
		err = multierr.Append(err, s.sqliteDB.Close())
		s.sqliteDB = nil
	}
	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		s.dbPool = nil
		log.Debugln("db pool closed")
	}
	for _, e := range multierr.Errors(err) {
		log.Errorf("close connection: %s", e)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
