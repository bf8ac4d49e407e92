// Package server wires the identity service together: PostgreSQL with
// migrations, the token signer, the login throttle, Prometheus metrics,
// and the HTTP and gRPC endpoints with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskerid/internal/cryptox"
	"github.com/dmitrijs2005/taskerid/internal/logging"
	"github.com/dmitrijs2005/taskerid/internal/server/auth"
	"github.com/dmitrijs2005/taskerid/internal/server/config"
	"github.com/dmitrijs2005/taskerid/internal/server/metrics"
	"github.com/dmitrijs2005/taskerid/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskerid/internal/server/rest"
	"github.com/dmitrijs2005/taskerid/internal/server/services"
	"github.com/dmitrijs2005/taskerid/internal/server/throttle"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/taskerid/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	limiter  throttle.Limiter
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	identity *services.IdentityService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	limiter, rdb, err := newLimiter(c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("throttle init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	signer := auth.NewSigner([]byte(c.JWT.Secret), c.JWT.ValidIssuer, c.JWT.ValidAudience)
	identity := services.NewIdentityService(db, rm, cryptox.NewArgon2Hasher(), signer, c, logger.With("module", "identity"))

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		redis:    rdb,
		limiter:  limiter,
		registry: registry,
		metrics:  metrics.New(registry),
		identity: identity,
	}, nil
}

// newLimiter picks the attempt counter: none when the limit is zero, Redis
// when a URL is configured, otherwise process memory.
func newLimiter(c *config.Config) (throttle.Limiter, *redis.Client, error) {
	if c.LoginAttemptsLimit == 0 {
		return throttle.Unlimited{}, nil, nil
	}

	if c.RedisURL != "" {
		rdb, err := throttle.NewRedisClient(c.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return throttle.NewRedisLimiter(rdb, c.LoginAttemptsLimit, c.LoginAttemptsWindow, ""), rdb, nil
	}

	l, err := throttle.NewMemoryLimiter(c.LoginAttemptsLimit, c.LoginAttemptsWindow, throttle.DefaultMemoryKeys)
	if err != nil {
		return nil, nil, err
	}
	return l, nil, nil
}

func (app *App) readiness() map[string]rest.Pinger {
	deps := map[string]rest.Pinger{"postgres": app.db}
	if app.redis != nil {
		rdb := app.redis
		deps["redis"] = rest.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return deps
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.identity, gs.Options{
		Limiter: app.limiter,
		Metrics: app.metrics,
	}, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewServer(app.config.EndpointAddrHTTP, app.identity, rest.Options{
		Limiter:  app.limiter,
		Metrics:  app.metrics,
		Registry: app.registry,
		Ready:    app.readiness(),
	}, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(context.Background(), "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "db close error", "error", err)
	}
}
