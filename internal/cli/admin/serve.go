package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/kraft-solutions/kraftchat/internal/api/handlers"
	"github.com/kraft-solutions/kraftchat/internal/config"
	"github.com/kraft-solutions/kraftchat/internal/jobs"
	"github.com/kraft-solutions/kraftchat/internal/ratelimit"
	"github.com/kraft-solutions/kraftchat/internal/repository"
	"github.com/kraft-solutions/kraftchat/internal/server"
	"github.com/kraft-solutions/kraftchat/internal/service"
	"github.com/kraft-solutions/kraftchat/internal/telemetry"
)

const retentionPollInterval = time.Hour

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the kraftchat API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	counterStore, err := ratelimit.NewBadgerStore(cfg.RateLimitPath)
	if err != nil {
		return fmt.Errorf("failed to open rate-limit store: %w", err)
	}
	defer counterStore.Close()

	window := time.Duration(cfg.RateLimitWindowS) * time.Second
	limiter := ratelimit.NewLimiter(counterStore, map[string]ratelimit.Rule{
		service.EndpointMemberSession: {Limit: cfg.SessionRateLimit, Window: window},
		service.EndpointMemberMessage: {Limit: cfg.MessageRateLimit, Window: window},
		service.EndpointFAQQuery:      {Limit: cfg.FAQRateLimit, Window: window},
	})

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	knowledgeSvc := service.NewKnowledgeService(knowledgeRepo)
	sessionSvc := service.NewSessionService(sessionRepo, limiter)
	chatSvc := service.NewChatService(knowledgeRepo, sessionRepo, analyticsRepo, limiter)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)

	retentionProcessor := jobs.NewRetentionProcessor(analyticsRepo, cfg.AnalyticsRetentionDays)
	retentionWorker := jobs.NewWorker(retentionProcessor, retentionPollInterval)
	go retentionWorker.Start(ctx)
	log.Println("analytics retention worker started")

	routerCfg := server.RouterConfig{
		JWTSecret:        cfg.JWTSecret,
		AnalyticsRole:    cfg.AnalyticsRole,
		ChatHandler:      handlers.NewChatHandler(chatSvc),
		SessionHandler:   handlers.NewSessionHandler(sessionSvc),
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	retentionWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
