package main

import (
	"CommentWall/internal/config"
	"CommentWall/internal/realtime"
	"CommentWall/internal/repository"
	"CommentWall/internal/router"
	"CommentWall/internal/router/handlers"
	"CommentWall/internal/service"
	"CommentWall/internal/storage"
	"CommentWall/pkg/logger"
	"context"
	"errors"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.Load("./config/config.yaml")
	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewRepository(cfg.MasterDSN, cfg.SlaveDSNs, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.ImagesDir, 0o755); err != nil {
		log.Fatal("Failed to create images directory", zap.String("dir", cfg.ImagesDir), zap.Error(err))
	}
	images := storage.NewImageStore(afero.NewBasePathFs(afero.NewOsFs(), cfg.ImagesDir), cfg.ImagesPublicURL, cfg.ImagesMaxBytes, log)

	hub := realtime.NewHub(log)
	go hub.Run(ctx)

	pub, closers := startRealtime(ctx, cfg, repo, hub, log)

	serviceComment := service.NewService(repo, images, pub, cfg.CommentsLimit, log)
	handlersComment := handlers.NewCommentHandler(serviceComment, images, cfg.ImagesMaxBytes)
	rout := router.NewRouter(cfg.GinMode, handlersComment, hub.ServeWS, log)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: rout.GetEngine(),
	}

	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr), zap.String("realtime", cfg.RealtimeDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to listen and server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var result error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result != nil {
		log.Error("Shutdown finished with errors", zap.Error(result))
		return
	}
	log.Info("Server stopped")
}

// startRealtime picks where insert events come from. With the local driver the service
// feeds the hub directly; the postgres driver relies on the insert trigger and kafka
// shares events between instances.
func startRealtime(ctx context.Context, cfg *config.Config, repo *repository.Repository, hub *realtime.Hub, log *zap.Logger) (service.Publisher, []io.Closer) {
	switch cfg.RealtimeDriver {
	case config.DriverPostgres:
		listener, err := realtime.NewPGListener(cfg.MasterDSN, repo, log)
		if err != nil {
			log.Fatal("Failed to listen for inserts", zap.Error(err))
		}
		go listener.Run(ctx, hub)
		return nil, []io.Closer{listener}

	case config.DriverKafka:
		if len(cfg.KafkaBrokers) == 0 {
			log.Fatal("Kafka driver needs kafka.brokers")
		}
		consumer, err := realtime.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Fatal("Failed to start kafka consumer", zap.Error(err))
		}
		go consumer.Run(ctx, hub)
		producer := realtime.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		return producer, []io.Closer{producer, consumer}

	case config.DriverLocal:
		return hub, nil
	}

	log.Fatal("Unknown realtime driver", zap.String("driver", cfg.RealtimeDriver))
	return nil, nil
}
