package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-delivery/internal/app"
	"quiz-delivery/internal/config"
	"quiz-delivery/internal/infra/memory"
	pgloader "quiz-delivery/internal/infra/postgres"
	rediscache "quiz-delivery/internal/infra/redis"
	"quiz-delivery/internal/ledger"
	"quiz-delivery/internal/logger"
	"quiz-delivery/internal/report"
	transport "quiz-delivery/internal/transport/http"
)

var errRedisNotConfigured = errors.New("attempts backend is redis but no redis addr is configured")

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the delivery server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.DocumentLoader = memory.NewStaticDocumentLoader(nil)
	if pool != nil {
		loader = pgloader.NewDocumentLoader(pool)
	}

	docTTL := config.TTLDuration(cfg.Documents.TTL, 10*time.Minute)
	var documents app.DocumentRepository
	if redisClient != nil {
		documents = rediscache.NewDocumentRepository(redisClient, loader, docTTL)
	} else {
		documents = memory.NewDocumentRepository(loader, docTTL)
	}

	attempts, closeLedger, err := buildLedger(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeLedger()

	syncTimeout := config.TTLDuration(cfg.Sync.Timeout, 10*time.Second)
	reporter := report.NewReporter(report.NewSyncer(nil, syncTimeout), log)

	service := app.NewDeliveryService(documents, attempts, reporter, log)
	wsHandler := transport.NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", transport.Healthz)
	mux.HandleFunc("/session", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting quiz delivery server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildLedger selects the attempt counter backend. Redis is only valid when a
// client is configured; sqlite keeps counts across restarts without any
// external service.
func buildLedger(cfg config.Config, redisClient *redis.Client) (ledger.Ledger, func(), error) {
	switch cfg.Attempts.Backend {
	case "redis":
		if redisClient == nil {
			return nil, nil, errRedisNotConfigured
		}
		return ledger.NewRedisLedger(redisClient), func() {}, nil
	case "sqlite":
		path := cfg.Attempts.Path
		if path == "" {
			path = "attempts.db"
		}
		l, err := ledger.OpenSQLiteLedger(path)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = l.Close() }, nil
	default:
		return ledger.NewMemoryLedger(), func() {}, nil
	}
}
