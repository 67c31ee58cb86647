package app

import (
	"context"
	"time"

	config "github.com/DRSN-tech/furniture-search/internal/cfg"
	minioInfra "github.com/DRSN-tech/furniture-search/internal/infrastructure/minio"
	mlService "github.com/DRSN-tech/furniture-search/internal/infrastructure/ml-service"
	"github.com/DRSN-tech/furniture-search/internal/repository/catalog"
	s3Repo "github.com/DRSN-tech/furniture-search/internal/repository/minio"
	"github.com/DRSN-tech/furniture-search/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/furniture-search/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/furniture-search/internal/repository/qdrant"
	"github.com/DRSN-tech/furniture-search/pkg/clients"
	"github.com/DRSN-tech/furniture-search/pkg/closer"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/DRSN-tech/furniture-search/pkg/postgres"
	"github.com/DRSN-tech/furniture-search/pkg/tr"
	"github.com/jimlawless/whereami"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	initTimeout    = 10 * time.Second
	cleanupTimeout = 5 * time.Second
)

// Core — общая часть сервиса и импортёра: хранилища, векторный индекс, эмбеддер и фасад каталога.
type Core struct {
	Cfg      *config.Config
	Logger   logger.Logger
	DB       *postgres.PgDatabase
	Items    *pgdb.ItemRepo
	Outbox   *pgdb.OutboxEventRepo
	Catalog  *catalog.Catalog
	Images   *minioInfra.MinioInfrastructure
	Embedder *mlService.MLService

	closer       *closer.Closer
	cancelImages context.CancelFunc
}

// NewCore поднимает зависимости каталога. Всё открытое регистрируется в closer и закрывается в Close.
func NewCore(cfg *config.Config, log logger.Logger) (_ *Core, err error) {
	c := &Core{
		Cfg:    cfg,
		Logger: log,
		closer: closer.NewCloser(0),
	}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := initPGDB(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	c.DB = db
	c.closer.AddFunc("postgres", func() error {
		db.Close()
		return nil
	})

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.BucketName); err != nil {
		return nil, e.Wrap("failed to initialize MinIO bucket", err)
	}

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	c.closer.AddFunc("qdrant", qdrantClient.Close)

	if err := clients.EnsureCollection(ctx, qdrantClient, false); err != nil {
		return nil, e.Wrap("failed to initialize qdrant collection", err)
	}

	conn, err := grpc.NewClient(
		cfg.Ml.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()), // ML-сервис доступен только во внутренней сети, без TLS
	)
	if err != nil {
		return nil, e.Wrap("failed to initialize ml-service client", err)
	}
	c.closer.AddFunc("ml-service", conn.Close)

	imagesCtx, cancelImages := context.WithCancel(context.Background())
	c.cancelImages = cancelImages

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	c.Images = minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, imagesCtx)
	c.closer.Add("image cleanup", func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
		defer cancel()
		return c.Images.WaitForCleanup(waitCtx)
	})

	c.Embedder = mlService.NewMLService(conn, cfg.Ml, cfg.Search.VectorSize, log)

	c.Items = pgdb.NewItemRepo(db.Pool, pgdbConv.NewItemConverter())
	c.Outbox = pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverter())

	c.Catalog = catalog.NewCatalog(
		c.Items,
		qdrantRepo.NewVectorIndex(qdrantClient),
		imageRepo,
		c.Outbox,
		c.Embedder,
		tr.NewRunner(db.Pool),
		cfg.Ml.MaxConcurrent,
		log,
	)

	return c, nil
}

// Close освобождает ресурсы в обратном порядке открытия.
func (c *Core) Close(ctx context.Context) error {
	if c.cancelImages != nil {
		defer c.cancelImages()
	}

	return c.closer.Close(ctx)
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		return nil, e.Wrap("failed to connect to database", err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		return nil, e.Wrap("failed to run migrations", err)
	}

	return db, nil
}
