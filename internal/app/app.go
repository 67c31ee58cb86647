package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/furniture-search/internal/cfg"
	v1Grpc "github.com/DRSN-tech/furniture-search/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/furniture-search/internal/delivery/v1/http"
	"github.com/DRSN-tech/furniture-search/internal/infrastructure/kafka"
	"github.com/DRSN-tech/furniture-search/internal/repository/redis"
	redisConv "github.com/DRSN-tech/furniture-search/internal/repository/redis/converter"
	"github.com/DRSN-tech/furniture-search/internal/search"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/clients"
	"github.com/DRSN-tech/furniture-search/pkg/closer"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	shutdownTimeout    = 10 * time.Second
	ensureTopicTimeout = 10 * time.Second
)

// App поднимает HTTP и gRPC серверы поиска поверх Core.
type App struct {
	core    *Core
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *kafka.OutboxWorker
}

func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	core, err := NewCore(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		core:   core,
		logger: log,
		closer: closer.NewCloser(0),
	}
	a.closer.Add("core", core.Close)
	defer func() {
		if err != nil {
			_ = a.closer.Close(context.Background())
		}
	}()

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.AddFunc("redis", redisClient.Client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := redisClient.Ping(ctx); err != nil {
		return nil, e.Wrap("failed to connect to redis", err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewItemConverter(), cfg.Redis, log)

	producer := kafka.NewProducer(log, cfg.Kafka)
	a.closer.AddFunc("kafka producer", producer.Close)
	if err := producer.EnsureTopic(ensureTopicTimeout); err != nil {
		log.Warnf("kafka topic check failed, events stay in outbox until it is available: %v", err)
	}
	a.worker = kafka.NewOutboxWorker(core.Outbox, log, producer, core.DB.Dsn)

	facets := search.NewFacetDictionary(core.Items, cfg.Search.FacetTTL, cfg.Search.FacetCap, log)
	ranker := search.NewRanker(search.RankerConfig{
		MinScore:            cfg.Search.MinScore,
		CandidateMultiplier: cfg.Search.CandidateMultiplier,
		MinCandidates:       cfg.Search.MinCandidates,
	})
	builder := search.NewBuilder(search.DefaultBuilderConfig())

	itemUC := usecase.NewItemUseCase(core.Catalog, core.Images, cacheRepo, log)
	searchUC := usecase.NewSearchUseCase(core.Catalog, facets, builder, ranker, core.Embedder, cfg.Search, log)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices(itemUC, searchUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(itemUC, searchUC)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return a, nil
}

// Run запускает серверы и воркер outbox и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	a.worker.Start(workerCtx)
	a.closer.AddFunc("outbox worker", func() error {
		stopWorker()
		a.worker.Stop()
		return nil
	})

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.core.Cfg.Grpc.NetworkMode, a.core.Cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server failed", err)
		}
	}()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.core.Cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server failed", err)
		}
	}()
	a.closer.Add("http server", a.httpSrv.Stop)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("received shutdown signal, stopping gracefully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	a.logger.Infof("application shutdown complete")
	return appErr
}
