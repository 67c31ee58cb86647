package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/stretchr/testify/require"
)

type knnCall struct {
	Field  domain.VectorField
	Vector domain.Vector
	K      int
}

type fakeCatalog struct {
	mu sync.Mutex

	items     map[string]*domain.Item
	insertErr error

	knnHits    []domain.Hit
	knnCalls   []knnCall
	hybridHits []domain.Hit
	hybridQ    []domain.HybridQuery
	suggest    []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: map[string]*domain.Item{}}
}

func (f *fakeCatalog) Insert(_ context.Context, item *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return f.insertErr
	}
	f.items[item.SKU] = item
	return nil
}

func (f *fakeCatalog) BulkInsert(ctx context.Context, items []*domain.Item, _ bool) error {
	for _, it := range items {
		if err := f.Insert(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCatalog) SearchByKnn(_ context.Context, field domain.VectorField, vector domain.Vector, k int, _ []string) []domain.Hit {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.knnCalls = append(f.knnCalls, knnCall{Field: field, Vector: vector, K: k})
	return f.knnHits
}

func (f *fakeCatalog) SearchHybrid(_ context.Context, q domain.HybridQuery) []domain.Hit {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hybridQ = append(f.hybridQ, q)
	return f.hybridHits
}

func (f *fakeCatalog) Suggest(_ context.Context, _ string, k int) []string {
	if len(f.suggest) > k {
		return f.suggest[:k]
	}
	return f.suggest
}

func (f *fakeCatalog) GetBySKU(_ context.Context, sku string) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, ok := f.items[sku]
	if !ok {
		return nil, e.ErrItemNotFound
	}
	return it, nil
}

func (f *fakeCatalog) Reindex(context.Context, int) (int, error) { return len(f.items), nil }
func (f *fakeCatalog) Reset(context.Context) error               { return nil }

type fakeFacets struct {
	facets domain.Facets
}

func (f *fakeFacets) Get(_ context.Context, fields ...domain.FacetField) domain.Facets {
	out := domain.Facets{}
	for _, field := range fields {
		out[field] = f.facets.Values(field)
	}
	return out
}

type fakeEmbedder struct {
	vector     domain.Vector
	err        error
	normalized []bool
}

func (f *fakeEmbedder) EncodeImage(_ context.Context, _ []byte, normalize bool) (domain.Vector, error) {
	f.normalized = append(f.normalized, normalize)
	return f.vector, f.err
}

func (f *fakeEmbedder) EncodeText(_ context.Context, _ string, normalize bool) (domain.Vector, error) {
	f.normalized = append(f.normalized, normalize)
	return f.vector, f.err
}

type fakeImages struct {
	uploaded []string
	cleaned  []string
	err      error
}

func (f *fakeImages) UploadImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := req.SKU + "/original.png"
	f.uploaded = append(f.uploaded, key)
	return &UploadImageRes{Key: key}, nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.cleaned = append(f.cleaned, keys...)
}

type fakeCache struct {
	items   map[string]*domain.Item
	deleted []string
	gets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]*domain.Item{}}
}

func (f *fakeCache) GetItem(_ context.Context, sku string) (*domain.Item, error) {
	f.gets++
	return f.items[sku], nil
}

func (f *fakeCache) SetItem(_ context.Context, item *domain.Item) error {
	f.items[item.SKU] = item
	return nil
}

func (f *fakeCache) DeleteItems(_ context.Context, skus []string) error {
	for _, s := range skus {
		delete(f.items, s)
	}
	f.deleted = append(f.deleted, skus...)
	return nil
}

func pngImage(t *testing.T) *ItemImage {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return NewItemImage(buf.Bytes(), "image/png", int64(buf.Len()), "red.png")
}

func unitVector(dim int) domain.Vector {
	v := make(domain.Vector, dim)
	v[0] = 1
	return v
}
