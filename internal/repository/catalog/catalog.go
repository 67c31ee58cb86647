package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/jimlawless/whereami"
	"golang.org/x/sync/errgroup"
)

// Параметры KNN: ширина обхода графа не меньше minNumCandidates и k*candidatesPerHit.
const (
	minNumCandidates = 100
	candidatesPerHit = 10
)

// TxRunner выполняет функцию в транзакции документного хранилища.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Catalog объединяет хранилища каталога: документы и события в PostgreSQL,
// векторы в Qdrant, изображения в MinIO.
type Catalog struct {
	items    usecase.ItemRepository
	index    usecase.VectorIndex
	images   usecase.ImageRepository
	outbox   usecase.OutboxRepository
	embedder usecase.Embedder
	tx       TxRunner
	workers  int
	logger   logger.Logger
	now      func() time.Time
}

func NewCatalog(
	items usecase.ItemRepository,
	index usecase.VectorIndex,
	images usecase.ImageRepository,
	outbox usecase.OutboxRepository,
	embedder usecase.Embedder,
	tx TxRunner,
	workers int,
	logger logger.Logger,
) *Catalog {
	return &Catalog{
		items:    items,
		index:    index,
		images:   images,
		outbox:   outbox,
		embedder: embedder,
		tx:       tx,
		workers:  max(workers, 1),
		logger:   logger,
		now:      time.Now,
	}
}

// Insert индексирует один товар. Эмбеддинги всегда пересчитываются.
func (c *Catalog) Insert(ctx context.Context, item *domain.Item) error {
	return c.BulkInsert(ctx, []*domain.Item{item}, true)
}

// BulkInsert пересчитывает эмбеддинги всех товаров и записывает их одной транзакцией.
// При refresh запись в векторный индекс ждёт применения изменений.
func (c *Catalog) BulkInsert(ctx context.Context, items []*domain.Item, refresh bool) error {
	const op = "Catalog.BulkInsert"

	if len(items) == 0 {
		return nil
	}

	if err := c.embedAll(ctx, items); err != nil {
		return e.Wrap(op, err)
	}

	err := c.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := c.items.BulkUpsert(ctx, items); err != nil {
			return err
		}

		at := c.now()
		for _, item := range items {
			event, err := newUpsertEvent(item, at)
			if err != nil {
				return err
			}
			if _, err := c.outbox.Create(ctx, event); err != nil {
				return err
			}
		}

		// Индекс пишется до коммита: при его сбое документы откатываются.
		return c.index.Upsert(ctx, items, refresh)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.logger.Debugf("%s: %d items indexed", op, len(items))
	return nil
}

// embedAll параллельно считает эмбеддинги с ограничением на число одновременных запросов.
func (c *Catalog) embedAll(ctx context.Context, items []*domain.Item) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, item := range items {
		g.Go(func() error {
			return c.embed(gctx, item)
		})
	}

	return g.Wait()
}

// embed заполняет ImageEmbedding и TextEmbedding товара.
// Если изображение не удалось прочитать, эмбеддинг изображения остаётся пустым.
func (c *Catalog) embed(ctx context.Context, item *domain.Item) error {
	item.ImageEmbedding = nil
	item.TextEmbedding = nil

	if key := item.PrimaryImage(); key != "" {
		data, err := c.images.Get(ctx, key)
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Warnf("image %s for %s unavailable, indexing without image embedding: %v", key, item.SKU, err)
		default:
			v, err := c.embedder.EncodeImage(ctx, data, true)
			if err != nil {
				return e.Wrap(item.SKU, err)
			}
			item.ImageEmbedding = v
		}
	}

	if item.Description != "" {
		v, err := c.embedder.EncodeText(ctx, item.Description, true)
		if err != nil {
			return e.Wrap(item.SKU, err)
		}
		item.TextEmbedding = v
	}

	return nil
}

// SearchByKnn ищет k ближайших документов по векторному полю и возвращает их с проекцией sourceFields.
// Любой сбой хранилища даёт пустой результат.
func (c *Catalog) SearchByKnn(ctx context.Context, field domain.VectorField, vector domain.Vector, k int, sourceFields []string) []domain.Hit {
	const op = "Catalog.SearchByKnn"

	if k <= 0 || vector.Empty() {
		return []domain.Hit{}
	}

	vhits, err := c.index.Search(ctx, &usecase.KnnSearchReq{
		Field:         field,
		Vector:        vector,
		Limit:         k,
		NumCandidates: NumCandidates(k),
	})
	if err != nil {
		c.upstreamFailed(op, err)
		return []domain.Hit{}
	}
	if len(vhits) == 0 {
		return []domain.Hit{}
	}

	skus := make([]string, 0, len(vhits))
	for _, h := range vhits {
		skus = append(skus, h.SKU)
	}

	docs, err := c.items.GetBySKUs(ctx, skus)
	if err != nil {
		c.upstreamFailed(op, err)
		return []domain.Hit{}
	}

	hits := make([]domain.Hit, 0, len(vhits))
	for _, h := range vhits {
		doc, ok := docs[h.SKU]
		if !ok {
			c.logger.Debugf("%s: %s is in the vector index but not in the document store", op, h.SKU)
			continue
		}
		hits = append(hits, domain.Hit{Item: doc.Project(sourceFields), Score: h.Score})
	}

	return hits
}

// SearchHybrid выполняет гибридный запрос. Сбой хранилища даёт пустой результат.
func (c *Catalog) SearchHybrid(ctx context.Context, q domain.HybridQuery) []domain.Hit {
	hits, err := c.items.HybridSearch(ctx, q)
	if err != nil {
		c.upstreamFailed("Catalog.SearchHybrid", err)
		return []domain.Hit{}
	}

	return hits
}

// Suggest возвращает до k названий товаров по префиксу.
func (c *Catalog) Suggest(ctx context.Context, prefix string, k int) []string {
	names, err := c.items.Suggest(ctx, prefix, k)
	if err != nil {
		c.upstreamFailed("Catalog.Suggest", err)
		return []string{}
	}

	return names
}

func (c *Catalog) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	return c.items.GetBySKU(ctx, sku)
}

// Reindex переписывает векторный индекс из эмбеддингов, сохранённых вместе с документами.
func (c *Catalog) Reindex(ctx context.Context, batchSize int) (int, error) {
	const op = "Catalog.Reindex"

	if batchSize <= 0 {
		batchSize = 100
	}

	var (
		after string
		total int
	)
	for {
		page, err := c.items.ListWithEmbeddings(ctx, after, batchSize)
		if err != nil {
			return total, e.Wrap(op, err)
		}
		if len(page) == 0 {
			return total, nil
		}

		batch := make([]*domain.Item, len(page))
		for i := range page {
			batch[i] = &page[i]
		}

		if err := c.index.Upsert(ctx, batch, true); err != nil {
			return total, e.Wrap(op, err)
		}

		total += len(page)
		after = page[len(page)-1].SKU
		c.logger.Infof("%s: %d items reindexed", op, total)
	}
}

// Reset очищает каталог: пересоздаёт векторный индекс и удаляет документы.
func (c *Catalog) Reset(ctx context.Context) error {
	if err := c.index.Reset(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.items.Truncate(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	c.logger.Infof("catalog reset")
	return nil
}

// NumCandidates возвращает ширину обхода для KNN с итоговым k.
func NumCandidates(k int) int {
	return max(minNumCandidates, k*candidatesPerHit)
}

func (c *Catalog) upstreamFailed(op string, err error) {
	c.logger.Warnf("%v", e.Wrap(op, e.Upstream(err)))
}
