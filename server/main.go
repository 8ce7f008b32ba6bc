package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/config"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/domain/services"
	memcache "github.com/devilmonastery/jobfinder/internal/infrastructure/cache/memory"
	"github.com/devilmonastery/jobfinder/internal/infrastructure/cache/redis"
	"github.com/devilmonastery/jobfinder/internal/infrastructure/database/memory"
	"github.com/devilmonastery/jobfinder/internal/infrastructure/database/postgres"
	"github.com/devilmonastery/jobfinder/internal/jsearch"
	"github.com/devilmonastery/jobfinder/internal/pkg/idgen"
	"github.com/devilmonastery/jobfinder/internal/pkg/logger"
	"github.com/devilmonastery/jobfinder/internal/upload"
	"github.com/devilmonastery/jobfinder/migrations"
	"github.com/devilmonastery/jobfinder/server/internal/cookies"
	"github.com/devilmonastery/jobfinder/server/internal/handlers"
	"github.com/devilmonastery/jobfinder/server/internal/middleware"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		forceVersion  int
		configPath    string
		logLevel      string
		logFile       string
		logToStderr   bool
		alsoLogStderr bool
		logFormat     string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Jobfinder API server",
		Long:  "The HTTP API server for Jobfinder: accounts, profiles, job search and bookmarks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, alsoLogStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), configPath, forceVersion)
		},
	}

	cmd.Flags().IntVar(&forceVersion, "force-migration", -1, "Force migration version (use to fix dirty migration state)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	// Add logging flags
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (text, json)")

	// Add subcommands
	cmd.AddCommand(newUserCommand(&configPath))
	cmd.AddCommand(newTokenCommand(&configPath))

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr, alsoLogStderr bool, logFormat string) error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger
	slog.SetDefault(globalLogger)

	return nil
}

// storage is the opened persistence layer plus whatever must be closed with it
type storage struct {
	repos    *repositories.Repositories
	checkers map[string]repositories.HealthChecker
	close    func()
}

// openStorage connects the configured database driver and, for postgres,
// brings the schema up to date. forceVersion >= 0 only forces the
// migration version and returns a nil storage.
func openStorage(ctx context.Context, cfg *config.Config, forceVersion int) (*storage, error) {
	log := slog.Default().With(slog.String("component", "server"))

	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return &storage{
			repos:    memory.New(),
			checkers: map[string]repositories.HealthChecker{},
			close:    func() {},
		}, nil
	}

	log.Info("Initializing PostgreSQL database",
		"user", cfg.Database.Postgres.User,
		"host", cfg.Database.Postgres.Host,
		"database", cfg.Database.Postgres.Database)

	connectCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	pgConn, err := postgres.ConnectWithRetry(connectCtx, cfg.Database.Postgres.ConnectionString(), 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	log.Info("Successfully connected to PostgreSQL")

	// Handle force migration if requested
	if forceVersion >= 0 {
		defer pgConn.Close()
		log.Info("Force setting migration version", "version", forceVersion)
		if err := pgConn.ForceMigrationVersion(migrations.FS, forceVersion); err != nil {
			return nil, fmt.Errorf("failed to force migration version: %w", err)
		}
		log.Info("Migration version forced, exiting", "version", forceVersion)
		return nil, nil
	}

	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		pgConn.Close()
		return nil, fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	return &storage{
		repos: &repositories.Repositories{
			Users:     postgres.NewUserRepository(pgConn.DB),
			Profiles:  postgres.NewProfileRepository(pgConn.DB),
			Bookmarks: postgres.NewBookmarkRepository(pgConn.DB),
		},
		checkers: map[string]repositories.HealthChecker{"postgres": pgConn},
		close:    func() { pgConn.Close() },
	}, nil
}

// openRevoker returns the token denylist: Redis when configured so that
// revocations are shared between replicas, otherwise process memory.
func openRevoker(rdb *redis.Client) services.TokenRevoker {
	if rdb != nil {
		return redis.NewTokenDenylist(rdb)
	}
	return memcache.NewTokenDenylist()
}

func openRedis(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled() {
		return nil, nil
	}
	rdb, err := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func runServer(ctx context.Context, configPath string, forceVersion int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default().With("component", "server")
	logger.Info("Starting server initialization")

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize Snowflake ID generator
	if err := idgen.Initialize(cfg.NodeID); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	store, err := openStorage(ctx, cfg, forceVersion)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	defer store.close()

	rdb, err := openRedis(cfg)
	if err != nil {
		return err
	}
	var jobCache services.JobCache
	if rdb != nil {
		defer rdb.Close()
		jobCache = redis.NewSearchCache(rdb, cfg.Redis.CacheTTL)
		store.checkers["redis"] = rdb
		logger.Info("Redis cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.Lifetime)
	searcher := jsearch.NewClient(jsearch.Config{
		BaseURL: cfg.JobSearch.BaseURL,
		Host:    cfg.JobSearch.Host,
		APIKey:  cfg.JobSearch.APIKey,
		Timeout: cfg.JobSearch.Timeout,
	})
	if cfg.JobSearch.APIKey == "" {
		logger.Warn("job search API key not configured, searches will fail")
	}
	uploader := upload.NewUploader(upload.Config{
		BaseURL:      cfg.Upload.BaseURL,
		CloudName:    cfg.Upload.CloudName,
		UploadPreset: cfg.Upload.UploadPreset,
		Folder:       cfg.Upload.Folder,
	})

	// Initialize services
	authService := services.NewAuthService(store.repos.Users, jwtManager, openRevoker(rdb))
	deps := handlers.Deps{
		Auth:      authService,
		Profiles:  services.NewProfileService(store.repos.Profiles, uploader),
		Jobs:      services.NewJobService(searcher, jobCache, store.repos.Profiles, cfg.JobSearch.Country),
		Bookmarks: services.NewBookmarkService(store.repos.Bookmarks),
	}
	var tokenCookies middleware.TokenCookies
	if cfg.Auth.Cookies.SessionKey != "" {
		deps.Cookies = cookies.NewManager([]byte(cfg.Auth.Cookies.SessionKey), cfg.Auth.Cookies.Secure, cfg.Auth.JWT.Lifetime)
		tokenCookies = deps.Cookies
	}

	router := handlers.NewRouter(
		handlers.New(deps, slog.Default()),
		middleware.NewAuthMiddleware(authService, tokenCookies),
		slog.Default(),
	)

	apiServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Create gRPC server with keepalive; it serves only the health protocol
	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Minute, // Close idle connections after 15 min
			MaxConnectionAge:      30 * time.Minute, // Close connections after 30 min
			MaxConnectionAgeGrace: 5 * time.Second,  // Grace period for active RPCs
			Time:                  5 * time.Second,  // Send keepalive ping every 5 seconds if idle
			Timeout:               1 * time.Second,  // Wait 1 second for ping ack
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second, // Minimum time between client pings
			PermitWithoutStream: true,            // Allow pings when no active streams
		}),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	grpcAddress := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	grpcListener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}

	var ready atomic.Bool
	go watchHealth(ctx, store.checkers, healthServer, &ready)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           adminMux(&ready),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 3)
	go func() {
		logger.Info("Starting metrics server", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("metrics server failed: %w", err)
		}
	}()
	go func() {
		logger.Info("Starting gRPC health server", "address", grpcListener.Addr().String())
		if err := grpcServer.Serve(grpcListener); err != nil {
			errs <- fmt.Errorf("failed to serve gRPC server: %w", err)
		}
	}()
	go func() {
		logger.Info("Starting API server",
			"address", apiServer.Addr,
			"database", cfg.Database.Driver,
			"environment", cfg.Environment)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("API server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errs:
		logger.Error("Server failed, shutting down", "error", err)
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if serr := apiServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("API server shutdown", "error", serr)
	}
	if serr := metricsServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("metrics server shutdown", "error", serr)
	}
	grpcServer.GracefulStop()
	return err
}

// adminMux serves metrics and liveness/readiness probes
func adminMux(ready *atomic.Bool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/readiness", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})
	return mux
}

// watchHealth probes every dependency on an interval and mirrors the result
// into the gRPC health service and the readiness channel.
func watchHealth(ctx context.Context, checkers map[string]repositories.HealthChecker, hs *health.Server, ready *atomic.Bool) {
	log := slog.Default().With(slog.String("component", "health"))
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	last := grpc_health_v1.HealthCheckResponse_UNKNOWN
	for {
		status := grpc_health_v1.HealthCheckResponse_SERVING
		for name, checker := range checkers {
			checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := checker.HealthCheck(checkCtx)
			cancel()
			if err != nil {
				log.Warn("dependency unhealthy", slog.String("dependency", name), slog.String("error", err.Error()))
				status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			}
		}
		if status != last {
			log.Info("serving status changed", slog.String("status", status.String()))
			hs.SetServingStatus("", status)
			last = status
		}
		ready.Store(status == grpc_health_v1.HealthCheckResponse_SERVING)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
