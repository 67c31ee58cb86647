package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeItems struct {
	mu      sync.Mutex
	docs    map[string]domain.Item
	err     error
	hybrid  []domain.Hit
	suggest []string
}

func newFakeItems() *fakeItems { return &fakeItems{docs: map[string]domain.Item{}} }

func (f *fakeItems) Upsert(ctx context.Context, item *domain.Item) error {
	return f.BulkUpsert(ctx, []*domain.Item{item})
}

func (f *fakeItems) BulkUpsert(_ context.Context, items []*domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, it := range items {
		f.docs[it.SKU] = *it
	}
	return nil
}

func (f *fakeItems) GetBySKU(_ context.Context, sku string) (*domain.Item, error) {
	it, ok := f.docs[sku]
	if !ok {
		return nil, e.ErrItemNotFound
	}
	return &it, nil
}

func (f *fakeItems) GetBySKUs(_ context.Context, skus []string) (map[string]domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]domain.Item{}
	for _, s := range skus {
		if it, ok := f.docs[s]; ok {
			out[s] = it
		}
	}
	return out, nil
}

func (f *fakeItems) HybridSearch(context.Context, domain.HybridQuery) ([]domain.Hit, error) {
	return f.hybrid, f.err
}

func (f *fakeItems) AggregateTerms(context.Context, []domain.FacetField, int) (map[domain.FacetField][]string, error) {
	return nil, f.err
}

func (f *fakeItems) Suggest(context.Context, string, int) ([]string, error) {
	return f.suggest, f.err
}

func (f *fakeItems) ListWithEmbeddings(_ context.Context, after string, limit int) ([]domain.Item, error) {
	skus := make([]string, 0, len(f.docs))
	for s := range f.docs {
		if s > after {
			skus = append(skus, s)
		}
	}
	sort.Strings(skus)
	if len(skus) > limit {
		skus = skus[:limit]
	}
	out := make([]domain.Item, 0, len(skus))
	for _, s := range skus {
		out = append(out, f.docs[s])
	}
	return out, nil
}

func (f *fakeItems) Truncate(context.Context) error {
	f.docs = map[string]domain.Item{}
	return nil
}

type fakeIndex struct {
	points    map[string]*domain.Item
	waits     []bool
	upsertErr error
	searchErr error
	hits      []usecase.VectorHit
	lastReq   *usecase.KnnSearchReq
	resets    int
}

func newFakeIndex() *fakeIndex { return &fakeIndex{points: map[string]*domain.Item{}} }

func (f *fakeIndex) Upsert(_ context.Context, items []*domain.Item, wait bool) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.waits = append(f.waits, wait)
	for _, it := range items {
		f.points[it.SKU] = it
	}
	return nil
}

func (f *fakeIndex) Search(_ context.Context, req *usecase.KnnSearchReq) ([]usecase.VectorHit, error) {
	f.lastReq = req
	return f.hits, f.searchErr
}

func (f *fakeIndex) Reset(context.Context) error {
	f.resets++
	return nil
}

type fakeImages struct {
	data map[string][]byte
}

func (f *fakeImages) Upload(context.Context, *domain.Image) (string, error) { return "", nil }
func (f *fakeImages) Delete(context.Context, string) error                 { return nil }
func (f *fakeImages) Get(_ context.Context, key string) ([]byte, error) {
	d, ok := f.data[key]
	if !ok {
		return nil, e.ErrImageNotFound
	}
	return d, nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []*usecase.OutboxEvent
}

func (f *fakeOutbox) Create(_ context.Context, ev *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeOutbox) GetAndMarkAsProcessing(context.Context, int) ([]*usecase.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkAsProcessed(context.Context, int64) error { return nil }
func (f *fakeOutbox) MarkAsPending(context.Context, int64) error   { return nil }

type fakeEmbedder struct {
	mu         sync.Mutex
	err        error
	normalized []bool
}

func (f *fakeEmbedder) EncodeImage(_ context.Context, data []byte, normalize bool) (domain.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.normalized = append(f.normalized, normalize)
	if f.err != nil {
		return nil, f.err
	}
	return domain.Vector{float32(len(data)), 0}, nil
}

func (f *fakeEmbedder) EncodeText(_ context.Context, text string, normalize bool) (domain.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.normalized = append(f.normalized, normalize)
	if f.err != nil {
		return nil, f.err
	}
	return domain.Vector{0, float32(len(text))}, nil
}

// fakeTx откатывает записи документов, если функция вернула ошибку.
type fakeTx struct {
	items     *fakeItems
	commits   int
	rollbacks int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	before := map[string]domain.Item{}
	for k, v := range f.items.docs {
		before[k] = v
	}

	if err := fn(ctx); err != nil {
		f.items.docs = before
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type fixture struct {
	catalog  *Catalog
	items    *fakeItems
	index    *fakeIndex
	images   *fakeImages
	outbox   *fakeOutbox
	embedder *fakeEmbedder
	tx       *fakeTx
}

func newFixture() *fixture {
	f := &fixture{
		items:    newFakeItems(),
		index:    newFakeIndex(),
		images:   &fakeImages{data: map[string][]byte{}},
		outbox:   &fakeOutbox{},
		embedder: &fakeEmbedder{},
	}
	f.tx = &fakeTx{items: f.items}
	f.catalog = NewCatalog(f.items, f.index, f.images, f.outbox, f.embedder, f.tx, 4, logger.NewNop())
	return f
}

func sofa(sku string) *domain.Item {
	return domain.NewItem(domain.ItemParams{
		SKU:           sku,
		Name:          "Red Sofa",
		MaterialValue: "Velvet",
		ItemType:      "sofa",
		Colors:        []string{"Red"},
		ImagePath:     sku + "/original.jpg",
	})
}

func TestInsert_RecomputesEmbeddings(t *testing.T) {
	f := newFixture()
	f.images.data["S1/original.jpg"] = []byte{1, 2, 3}

	item := sofa("S1")
	item.ImageEmbedding = domain.Vector{9, 9}
	item.TextEmbedding = domain.Vector{9, 9}

	require.NoError(t, f.catalog.Insert(context.Background(), item))

	doc := f.items.docs["S1"]
	assert.Equal(t, domain.Vector{3, 0}, doc.ImageEmbedding)
	assert.Equal(t, domain.Vector{0, float32(len("Velvet sofa"))}, doc.TextEmbedding)
	assert.Equal(t, []bool{true, true}, f.embedder.normalized)
	assert.Equal(t, []bool{true}, f.index.waits)
	assert.Contains(t, f.index.points, "S1")
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, "S1", f.outbox.events[0].SKU)
	assert.Equal(t, 1, f.tx.commits)
}

func TestInsert_MissingImageLeavesImageEmbeddingEmpty(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.catalog.Insert(context.Background(), sofa("S1")))

	doc := f.items.docs["S1"]
	assert.True(t, doc.ImageEmbedding.Empty())
	assert.False(t, doc.TextEmbedding.Empty())
}

func TestInsert_SameSKUOverwrites(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.catalog.Insert(context.Background(), sofa("S1")))
	second := sofa("S1")
	second.Name = "Crimson Sofa"
	require.NoError(t, f.catalog.Insert(context.Background(), second))

	assert.Len(t, f.items.docs, 1)
	assert.Equal(t, "Crimson Sofa", f.items.docs["S1"].Name)
	assert.Len(t, f.index.points, 1)
}

func TestBulkInsert_EmbedderFailureWritesNothing(t *testing.T) {
	f := newFixture()
	f.embedder.err = errors.New("ml down")

	err := f.catalog.BulkInsert(context.Background(), []*domain.Item{sofa("S1"), sofa("S2")}, false)
	require.Error(t, err)

	assert.Empty(t, f.items.docs)
	assert.Empty(t, f.index.points)
	assert.Zero(t, f.tx.commits)
}

func TestBulkInsert_IndexFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.index.upsertErr = errors.New("qdrant down")

	err := f.catalog.BulkInsert(context.Background(), []*domain.Item{sofa("S1")}, false)
	require.Error(t, err)

	assert.Empty(t, f.items.docs)
	assert.Equal(t, 1, f.tx.rollbacks)
}

func TestBulkInsert_RefreshFlagPassedToIndex(t *testing.T) {
	f := newFixture()

	items := []*domain.Item{sofa("S1"), sofa("S2"), sofa("S3")}
	require.NoError(t, f.catalog.BulkInsert(context.Background(), items, false))

	assert.Equal(t, []bool{false}, f.index.waits)
	assert.Len(t, f.items.docs, 3)
	assert.Len(t, f.outbox.events, 3)
}

func TestSearchByKnn(t *testing.T) {
	f := newFixture()
	a := *sofa("A")
	a.ImageEmbedding = domain.Vector{1, 0}
	f.items.docs["A"] = a
	f.items.docs["B"] = *sofa("B")
	f.index.hits = []usecase.VectorHit{{SKU: "B", Score: 0.9}, {SKU: "gone", Score: 0.85}, {SKU: "A", Score: 0.8}}

	hits := f.catalog.SearchByKnn(context.Background(), domain.ImageEmbeddingField, domain.Vector{1, 0}, 5,
		[]string{domain.FieldItemName})

	require.Len(t, hits, 2)
	assert.Equal(t, "B", hits[0].Item.SKU)
	assert.Equal(t, "A", hits[1].Item.SKU)
	assert.Equal(t, "Red Sofa", hits[1].Item.Name)
	assert.Empty(t, hits[1].Item.ItemType)
	assert.True(t, hits[1].Item.ImageEmbedding.Empty())

	require.NotNil(t, f.index.lastReq)
	assert.Equal(t, 5, f.index.lastReq.Limit)
	assert.Equal(t, 100, f.index.lastReq.NumCandidates)
	assert.Equal(t, domain.ImageEmbeddingField, f.index.lastReq.Field)
}

func TestSearchByKnn_FailureIsEmpty(t *testing.T) {
	f := newFixture()
	f.index.searchErr = errors.New("timeout")

	hits := f.catalog.SearchByKnn(context.Background(), domain.TextEmbeddingField, domain.Vector{1}, 3, nil)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	assert.Empty(t, f.catalog.SearchByKnn(context.Background(), domain.TextEmbeddingField, domain.Vector{1}, 0, nil))
}

func TestSearchHybrid_FailureIsEmpty(t *testing.T) {
	f := newFixture()
	f.items.err = errors.New("pg down")

	hits := f.catalog.SearchHybrid(context.Background(), domain.HybridQuery{Size: 1})
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
	assert.Empty(t, f.catalog.Suggest(context.Background(), "so", 3))
}

func TestNumCandidates(t *testing.T) {
	assert.Equal(t, 100, NumCandidates(1))
	assert.Equal(t, 100, NumCandidates(10))
	assert.Equal(t, 500, NumCandidates(50))
}

func TestReindex(t *testing.T) {
	f := newFixture()
	for _, s := range []string{"A", "B", "C", "D", "E"} {
		f.items.docs[s] = *sofa(s)
	}

	n, err := f.catalog.Reindex(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, f.index.points, 5)
	assert.Equal(t, []bool{true, true, true}, f.index.waits)
}

func TestUpsertEventPayload(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.catalog.Insert(context.Background(), sofa("S1")))

	ev := f.outbox.events[0]
	assert.Equal(t, usecase.EventItemUpserted, ev.EventType)
	assert.Equal(t, usecase.Pending, ev.Status)

	var payload structpb.Struct
	require.NoError(t, proto.Unmarshal(ev.Payload, &payload))

	fields := payload.GetFields()
	assert.Equal(t, "S1", fields["sku"].GetStringValue())
	assert.Equal(t, ev.EventID, fields["event_id"].GetStringValue())
	assert.Equal(t, "Red", fields["colors"].GetListValue().GetValues()[0].GetStringValue())
	assert.False(t, fields["has_image_embedding"].GetBoolValue())
	assert.NotContains(t, fields, "image_embedding")
}

func TestReset(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.catalog.Insert(context.Background(), sofa("S1")))

	require.NoError(t, f.catalog.Reset(context.Background()))
	assert.Equal(t, 1, f.index.resets)
	assert.Empty(t, f.items.docs)

	_, err := f.catalog.GetBySKU(context.Background(), "S1")
	assert.ErrorIs(t, err, e.ErrItemNotFound)
}
