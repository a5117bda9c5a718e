package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/events"
	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/repository/cache"
	"github.com/theleywin/friendlynk/src/routes"
	"github.com/theleywin/friendlynk/src/services"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *lib.Config) error {
	logger, err := lib.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := repo.Close(closeCtx); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	rdb, err := lib.ConnectRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		repo.Users = cache.NewUsers(repo.Users, rdb, cfg.CacheTTL, logger)
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	tokens := lib.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	svc := services.New(repo, tokens, publisher, logger)
	app := routes.NewApp(cfg, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", zap.String("port", cfg.Port), zap.String("driver", cfg.DBDriver))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

// newPublisher uses RabbitMQ when RABBITMQ_URL is set and the log otherwise.
func newPublisher(cfg *lib.Config, logger *zap.Logger) (events.Publisher, error) {
	conn, err := lib.ConnectRabbitMQ(cfg, logger)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return events.NewLogPublisher(logger), nil
	}

	publisher, err := events.NewRabbitMQ(conn, cfg.EventsExchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return publisher, nil
}
