package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/redmonkez12/authflow/docs" // Swagger docs
	"github.com/redmonkez12/authflow/internal/account"
	"github.com/redmonkez12/authflow/internal/auth"
	"github.com/redmonkez12/authflow/internal/config"
	"github.com/redmonkez12/authflow/internal/database"
	"github.com/redmonkez12/authflow/internal/email"
	httpServer "github.com/redmonkez12/authflow/internal/http"
	"github.com/redmonkez12/authflow/internal/logging"
	"github.com/redmonkez12/authflow/internal/mailqueue"
)

// @title           Authflow API
// @version         1.0
// @description     Email and password authentication with verification codes, password reset and cookie sessions.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	rootCmd := &cobra.Command{
		Use:           "authflow",
		Short:         "Authentication API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().Bool("migrate", false, "Apply pending database migrations before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE:  runMigrate,
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)

	// Allow running without subcommand (default to serve)
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewLogger(cfg.Server.IsDevelopment())

	sqlDB, err := database.Open(cmd.Context(), cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer sqlDB.Close()

	if err := database.Migrate(cmd.Context(), sqlDB); err != nil {
		return err
	}

	logger.Info("migrations applied")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Session.TokenFormat,
		"mail_async", cfg.Email.Async,
	)

	// Initialize database connection
	sqlDB, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer sqlDB.Close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := database.Migrate(ctx, sqlDB); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	db := database.NewBunDB(sqlDB)

	// Initialize Redis connection
	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	tokenService, err := newTokenService(cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.SenderEmail,
		cfg.Email.ClientURL,
	)

	var mailer auth.Mailer = emailService
	if cfg.Email.Async {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		dispatcher := mailqueue.NewDispatcher(redisOpt)
		defer dispatcher.Close()

		worker := mailqueue.NewWorker(redisOpt, cfg.Email.QueueConcurrency, emailService, logger)
		worker.Start()
		defer worker.Shutdown()

		mailer = dispatcher
	}

	authService := auth.NewService(
		account.NewRepository(db),
		auth.NewRedisSessionStore(redisClient),
		tokenService,
		mailer,
		logger,
		cfg.Session.Duration,
	)

	authHandler := auth.NewHandler(authService, auth.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: !cfg.Server.IsDevelopment(),
		MaxAge: cfg.Session.Duration,
	})
	authMiddleware := auth.NewMiddleware(authService, cfg.Session.CookieName)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		cfg.Server.Address(),
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func newTokenService(cfg config.SessionConfig) (auth.TokenService, error) {
	switch cfg.TokenFormat {
	case config.TokenFormatJWT:
		return auth.NewJWTService(cfg.Key)
	default:
		return auth.NewPasetoService(cfg.Key)
	}
}

// initRedis connects to Redis and verifies the connection
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
