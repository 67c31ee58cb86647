package usecase

import (
	"context"

	"github.com/DRSN-tech/furniture-search/internal/domain"
)

// ItemRepository — документное хранилище товаров (текст, фасеты, подсказки).
type ItemRepository interface {
	Upsert(ctx context.Context, item *domain.Item) error
	BulkUpsert(ctx context.Context, items []*domain.Item) error
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	GetBySKUs(ctx context.Context, skus []string) (map[string]domain.Item, error)
	HybridSearch(ctx context.Context, q domain.HybridQuery) ([]domain.Hit, error)
	AggregateTerms(ctx context.Context, fields []domain.FacetField, limit int) (map[domain.FacetField][]string, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	ListWithEmbeddings(ctx context.Context, afterSKU string, limit int) ([]domain.Item, error)
	Truncate(ctx context.Context) error
}

// VectorIndex ищет ближайших соседей по именованным векторным полям.
type VectorIndex interface {
	Upsert(ctx context.Context, items []*domain.Item, wait bool) error
	Search(ctx context.Context, req *KnnSearchReq) ([]VectorHit, error)
	Reset(ctx context.Context) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type CacheRepository interface {
	GetItem(ctx context.Context, sku string) (*domain.Item, error)
	SetItem(ctx context.Context, item *domain.Item) error
	DeleteItems(ctx context.Context, skus []string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

// CatalogRepository — фасад хранилища: вставка с пересчётом эмбеддингов и поиск.
// Поисковые методы не возвращают ошибок хранилища: сбой деградирует до пустой выдачи.
type CatalogRepository interface {
	Insert(ctx context.Context, item *domain.Item) error
	BulkInsert(ctx context.Context, items []*domain.Item, refresh bool) error
	SearchByKnn(ctx context.Context, field domain.VectorField, vector domain.Vector, k int, sourceFields []string) []domain.Hit
	SearchHybrid(ctx context.Context, q domain.HybridQuery) []domain.Hit
	Suggest(ctx context.Context, prefix string, k int) []string
	GetBySKU(ctx context.Context, sku string) (*domain.Item, error)
	Reindex(ctx context.Context, batchSize int) (int, error)
	Reset(ctx context.Context) error
}
