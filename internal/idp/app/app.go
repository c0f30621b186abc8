package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/http"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/store/drivers/sqlite"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/jwtx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/slogx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/throttle"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application is the identity provider with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         *sqlite.Store
	keyManager *jwtx.KeyManager
	hasher     *cryptox.PasswordHasher
	throttle   throttle.Store
	registry   *prometheus.Registry

	// rateLimited counts requests refused by the route limiters.
	rateLimited *prometheus.CounterVec

	engine  *service.Engine
	sweeper *service.Sweeper

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized and the
// fixtures file, if any, applied.
func New(cfg Config) (*Application, error) {
	return newApplication(cfg, slogx.New(slogx.Config{
		Service: "idp",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

func newApplication(cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: logger}
	ctx := context.Background()

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	// Persistent keys live in the database, so it comes first
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keyManager, err := InitSigningKeys(ctx, cfg, app.db, logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initServices(); err != nil {
		app.close()
		return nil, err
	}

	if cfg.FixturesFile != "" {
		p := &Provisioner{Store: app.db, Engine: app.engine, Hasher: app.hasher}
		report, err := p.ProvisionFile(ctx, cfg.FixturesFile)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to provision fixtures: %w", err)
		}
		logger.Info("fixtures provisioned",
			"file", cfg.FixturesFile,
			"ous", report.OUs,
			"users", report.Users,
			"profiles", report.Profiles,
			"clients", report.Clients,
		)
	}

	app.initHTTP()
	return app, nil
}

// Handler returns the HTTP handler serving every route.
func (app *Application) Handler() http.Handler { return app.router }

// Engine returns the OIDC engine.
func (app *Application) Engine() *service.Engine { return app.engine }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.sweeper != nil {
		app.sweeper.Start()
	}

	app.logger.Info("identity provider starting",
		"port", app.cfg.Port,
		"issuer", app.cfg.Issuer,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity provider...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if err := app.close(); err != nil {
		return err
	}

	app.logger.Info("identity provider stopped")
	return nil
}

// close releases the throttle store and the database.
func (app *Application) close() error {
	if rs, ok := app.throttle.(*throttle.RedisStore); ok {
		if err := rs.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenDatabase opens the configured sqlite database and applies pending
// migrations.
func OpenDatabase(cfg Config) (*sqlite.Store, error) {
	dsn := cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.DatabaseFile)
	}
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// initDatabase opens the sqlite database and applies migrations
func (app *Application) initDatabase() error {
	db, err := OpenDatabase(app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices builds the engine and its collaborators.
func (app *Application) initServices() error {
	svcCfg, generated := app.cfg.ServiceConfig()
	if generated {
		app.logger.Warn("IDP_SECRET_KEY is not set, using a random secret: pairwise subjects change on restart")
	}

	limiter, err := app.initLimiter()
	if err != nil {
		return err
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := service.NewMetricsObserver(app.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	app.rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idp_http_rate_limited_total",
		Help: "Requests refused by a route rate limiter.",
	}, []string{"route"})
	if err := app.registry.Register(app.rateLimited); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	app.engine = service.NewEngine(svcCfg, app.db, app.keyManager,
		service.WithPasswordHasher(app.hasher),
		service.WithPasswordGrantLimiter(limiter),
		service.WithObserver(service.Observers{service.SlogObserver{}, metrics}),
	)

	if app.cfg.HousekeepingInterval > 0 {
		app.sweeper = service.NewSweeper(app.db, app.logger, app.cfg.HousekeepingInterval)
	}
	return nil
}

// initLimiter builds the password grant limiter over redis when configured,
// in memory otherwise.
func (app *Application) initLimiter() (*service.PasswordGrantLimiter, error) {
	rate, err := throttle.ParseRate(app.cfg.PasswordGrantRate)
	if err != nil {
		return nil, fmt.Errorf("invalid IDP_PASSWORD_GRANT_RATELIMIT: %w", err)
	}

	if app.cfg.RedisAddr != "" {
		rs := throttle.NewRedisStore(app.cfg.RedisAddr, 0)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.throttle = rs
		app.logger.Info("password grant throttling uses redis", "addr", app.cfg.RedisAddr)
	} else {
		app.throttle = throttle.NewMemoryStore(time.Minute)
		app.logger.Info("password grant throttling uses process memory")
	}

	return service.NewPasswordGrantLimiter(app.throttle, rate, throttle.BackoffOptions{
		Duration: app.cfg.BackoffDuration,
		Factor:   app.cfg.BackoffFactor,
		Max:      app.cfg.BackoffMax,
	}), nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.engine, app.keyManager, app.db, BuildVersion, app.logger)
	router.Metrics = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry})
	router.SecureCookies = app.cfg.SecureCookies
	router.Limits = app.cfg.RouteLimits
	router.RateLimited = func(route string) {
		app.rateLimited.WithLabelValues(route).Inc()
	}
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
