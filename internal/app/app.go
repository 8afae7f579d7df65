package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/simp-lee/kontakt/internal/config"
	"github.com/simp-lee/kontakt/internal/domain"
	"github.com/simp-lee/kontakt/internal/metrics"
	"github.com/simp-lee/kontakt/internal/middleware"
	"github.com/simp-lee/kontakt/internal/module/contact"
)

// App holds the core application dependencies and the HTTP server.
// Exactly one of db and mongo is set, depending on database.driver.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	mongo  *mongo.Client
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

const shutdownTimeout = 5 * time.Second

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the contact store selected by database.driver, the
// contact repository, service and handler, middleware, and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	a := &App{logger: log, cfg: cfg}
	defer func() {
		if success {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.closeStore(ctx)
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Open the contact store.
	repo, err := a.openStore()
	if err != nil {
		return nil, err
	}

	// 3. Manual dependency injection: repository → service → handler.
	svc := contact.NewContactService(repo, log.Logger)
	handler := contact.NewContactHandler(svc)

	// 4. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	chain := []gin.HandlerFunc{
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.RequestID.TrustUpstream,
		}),
		middleware.Logger(log.Logger, quietPaths(metricsPath)...),
	}
	if metricsPath != "" {
		chain = append(chain, metrics.Middleware())
	}
	chain = append(chain,
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
		middleware.Timeout(cfg.Server.TimeoutDuration()),
	)
	engine.Use(chain...)

	// 5. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:     []Module{contact.NewModule(handler)},
		Store:       repo,
		MetricsPath: metricsPath,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	a.engine = engine
	success = true
	return a, nil
}

// openStore connects to the configured backend and returns the contact
// repository on top of it.
func (a *App) openStore() (domain.ContactRepository, error) {
	cfg := a.cfg
	log := a.logger.Logger

	if cfg.Database.Driver == config.DriverMongoDB {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.MongoDB.ConnectTimeoutDuration())
		defer cancel()

		client, err := config.SetupMongo(ctx, &cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}
		a.mongo = client

		coll := client.Database(cfg.Database.MongoDB.Database).Collection(cfg.Database.MongoDB.Collection)
		if err := contact.EnsureIndexes(ctx, coll); err != nil {
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return contact.NewMongoContactRepository(coll), nil
	}

	db, err := config.SetupDatabase(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	a.db = db

	// AutoMigrate in debug mode only.
	if cfg.Server.Mode == gin.DebugMode {
		if err := db.AutoMigrate(&domain.Contact{}); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}
	return contact.NewContactRepository(db), nil
}

// closeStore releases whichever store connection is open.
func (a *App) closeStore(ctx context.Context) {
	var err error
	switch {
	case a.db != nil:
		sqlDB, dbErr := a.db.DB()
		if dbErr != nil {
			return
		}
		err = sqlDB.Close()
	case a.mongo != nil:
		err = a.mongo.Disconnect(ctx)
	default:
		return
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}
	if err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

func quietPaths(metricsPath string) []string {
	paths := []string{"/health"}
	if metricsPath != "" {
		paths = append(paths, metricsPath)
	}
	return paths
}

// resolveCORSConfig overlays the configured CORS settings on the defaults.
// In release mode, when no allowlist is configured, cross-origin requests are denied.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()
	if cfg == nil {
		cfg = &config.CORSConfig{}
	}

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	if cfg.MaxAge != "" {
		if d, err := time.ParseDuration(cfg.MaxAge); err == nil {
			corsConfig.MaxAge = strconv.Itoa(int(d.Seconds()))
		}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the store
// connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if runErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	a.closeStore(shutdownCtx)

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
