package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "SigPull/internal/domain/repository"
	mid "SigPull/internal/middleware"
	"SigPull/internal/usecase"
	"SigPull/pkg/config"
	xhttp "SigPull/pkg/http"
	pkgkafka "SigPull/pkg/kafka"
	applogger "SigPull/pkg/logger"
	pkgqueue "SigPull/pkg/queue"
)

// App encapsulates the application lifecycle: intake consumer, feed
// monitor, deferred-parse queue and HTTP API.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	consumer   *pkgkafka.Consumer
	handler    *usecase.ChatMessageHandler
	monitor    *usecase.FeedMonitor
	pipeline   *mid.PricePipeline
	queue      *pkgqueue.RedisQueue
	store      domrepo.SignalStore
	httpServer *xhttp.Server
}

// New creates an App with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	consumer *pkgkafka.Consumer,
	handler *usecase.ChatMessageHandler,
	monitor *usecase.FeedMonitor,
	pipeline *mid.PricePipeline,
	queue *pkgqueue.RedisQueue,
	store domrepo.SignalStore,
	httpHandler xhttp.Handler,
) *App {
	httpServer := xhttp.NewServer(httpHandler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{
		cfg:        cfg,
		log:        log,
		consumer:   consumer,
		handler:    handler,
		monitor:    monitor,
		pipeline:   pipeline,
		queue:      queue,
		store:      store,
		httpServer: httpServer,
	}
}

// Run starts everything and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.pipeline.Start(ctx)

	a.consumer.RegisterHandler(a.handler)
	go func() {
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer error", applogger.Error(err))
		}
	}()
	a.log.Info("intake consumer started", applogger.String("topic", a.handler.Topic()))

	go func() {
		if err := a.monitor.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("feed monitor error", applogger.Error(err))
		}
	}()

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.log.Error("deferred queue start failed", applogger.Error(err))
		} else {
			a.queue.StartRetryProcessor()
			a.log.Info("deferred queue started")
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start failed", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http server stop", applogger.Error(err))
	}
	if err := a.consumer.Stop(ctx); err != nil {
		a.log.Error("consumer stop", applogger.Error(err))
	}
	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.log.Error("queue stop", applogger.Error(err))
		}
	}
	a.pipeline.Stop()
	if err := a.store.Close(); err != nil {
		a.log.Error("store close", applogger.Error(err))
	}
	a.log.Info("shutdown complete")
	return nil
}
