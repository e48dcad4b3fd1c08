package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/barangay/records/internal/config"
	"github.com/barangay/records/internal/domain/account"
	"github.com/barangay/records/internal/domain/death"
	"github.com/barangay/records/internal/domain/household"
	"github.com/barangay/records/internal/domain/immunization"
	"github.com/barangay/records/internal/domain/maternal"
	"github.com/barangay/records/internal/domain/resident"
	"github.com/barangay/records/internal/platform/apiresp"
	"github.com/barangay/records/internal/platform/auth"
	"github.com/barangay/records/internal/platform/blobstore"
	"github.com/barangay/records/internal/platform/db"
	"github.com/barangay/records/internal/platform/middleware"
	"github.com/barangay/records/internal/platform/reporting"
	"github.com/barangay/records/migrations"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "barangay-server",
		Short:         "Barangay records API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// migrationFiles returns the embedded migrations, or dir when one is given.
func migrationFiles(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	})
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the records API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	return cmd
}

func runServer(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if migrate {
		n, err := db.NewMigrator(pool, migrationFiles("")).Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Int("applied", n).Msg("migrations applied")
	}

	var revocations auth.RevocationStore
	if cfg.RedisURL != "" {
		client, err := auth.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		revocations = auth.NewRedisRevocationStore(client)
		logger.Info().Msg("token revocations stored in redis")
	} else {
		mem := auth.NewMemoryRevocationStore(time.Minute)
		defer mem.Close()
		revocations = mem
	}
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)

	photos, err := blobstore.NewFileSystemStore(cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		return err
	}

	catalog, err := reporting.LoadCatalog()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apiresp.ErrorHandler(logger, cfg.IsDev())

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{
			echo.HeaderContentDisposition, "X-Request-ID", "Retry-After",
		},
	}))
	e.Use(middleware.BodyLimit(1<<20, cfg.MaxUploadBytes()))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	jwtCfg := auth.JWTConfig{Issuer: issuer, Revocations: revocations, Skipper: auth.AuthSkipper}
	if cfg.IsDev() {
		logger.Warn().Msg("development mode: unauthenticated requests run as admin")
		e.Use(auth.DevAuthMiddleware(jwtCfg))
	} else {
		e.Use(auth.JWTMiddleware(jwtCfg))
	}
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return apiresp.OK(c, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.Static(blobstore.PublicPrefix, cfg.UploadDir)

	api := e.Group("/api/v1")

	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})
	accountSvc := account.NewService(account.NewRepoPG(pool), issuer, revocations, logger)
	account.NewHandler(accountSvc).RegisterRoutes(api, loginLimit)

	residentSvc := resident.NewService(resident.NewRepoPG(pool), photos)
	resident.NewHandler(residentSvc).RegisterRoutes(api)

	txn := db.Transactor(pool)

	householdSvc := household.NewService(household.NewRepoPG(pool), residentSvc)
	household.NewHandler(householdSvc).RegisterRoutes(api)

	deathSvc := death.NewService(death.NewRepoPG(pool), residentSvc)
	deathSvc.SetTransactor(txn)
	death.NewHandler(deathSvc).RegisterRoutes(api)

	maternalSvc := maternal.NewService(maternal.NewRepoPG(pool), residentSvc)
	maternalSvc.SetTransactor(txn)
	maternal.NewHandler(maternalSvc).RegisterRoutes(api)

	immunizationSvc := immunization.NewService(immunization.NewRepoPG(pool), residentSvc)
	immunizationSvc.SetTransactor(txn)
	immunization.NewHandler(immunizationSvc).RegisterRoutes(api)

	reporting.NewHandler(reporting.NewPGSource(pool), catalog, cfg.Jurisdiction()).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
