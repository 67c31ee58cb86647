package qdrant

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/clients"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

const payloadSKU = "sku"

// Идентификаторы точек выводятся из SKU в этом пространстве имён.
var pointNamespace = uuid.MustParse("9b2f0d4e-6a51-4c3b-8e7d-1f24c6a0b5e3")

// VectorIndex хранит эмбеддинги товаров в Qdrant: одна точка на SKU, два именованных вектора.
type VectorIndex struct {
	client *clients.QdrantClient
}

func NewVectorIndex(client *clients.QdrantClient) *VectorIndex {
	return &VectorIndex{client: client}
}

// Upsert записывает точки товаров. Повторная запись с тем же SKU перезаписывает точку целиком.
// Товары без эмбеддингов удаляются из индекса.
func (v *VectorIndex) Upsert(ctx context.Context, items []*domain.Item, wait bool) error {
	points := make([]*qdrant.PointStruct, 0, len(items))
	var stale []*qdrant.PointId

	for _, item := range items {
		p := newPoint(item)
		if p == nil {
			stale = append(stale, pointID(item.SKU))
			continue
		}
		points = append(points, p)
	}

	if len(points) > 0 {
		if _, err := v.client.Client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: v.client.CollectionName(),
			Wait:           qdrant.PtrOf(wait),
			Points:         points,
		}); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if len(stale) > 0 {
		if _, err := v.client.Client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: v.client.CollectionName(),
			Wait:           qdrant.PtrOf(wait),
			Points:         qdrant.NewPointsSelector(stale...),
		}); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// Search выполняет приближённый KNN по одному векторному полю.
// NumCandidates задаёт ширину обхода графа (hnsw_ef).
func (v *VectorIndex) Search(ctx context.Context, req *usecase.KnnSearchReq) ([]usecase.VectorHit, error) {
	name, err := vectorName(req.Field)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	points, err := v.client.Client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: v.client.CollectionName(),
		Query:          qdrant.NewQuery(req.Vector.Float32()...),
		Using:          qdrant.PtrOf(name),
		Limit:          qdrant.PtrOf(uint64(req.Limit)),
		Params: &qdrant.SearchParams{
			HnswEf: qdrant.PtrOf(uint64(max(req.NumCandidates, req.Limit))),
		},
		WithPayload: qdrant.NewWithPayloadInclude(payloadSKU),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return toVectorHits(points), nil
}

// Reset пересоздаёт коллекцию.
func (v *VectorIndex) Reset(ctx context.Context) error {
	if err := clients.EnsureCollection(ctx, v.client, true); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func pointID(sku string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(pointNamespace, []byte(sku)).String())
}

// newPoint возвращает nil, если у товара нет ни одного эмбеддинга.
func newPoint(item *domain.Item) *qdrant.PointStruct {
	vectors := make(map[string]*qdrant.Vector, 2)
	if !item.ImageEmbedding.Empty() {
		vectors[clients.ImageVectorName] = qdrant.NewVector(item.ImageEmbedding.Float32()...)
	}
	if !item.TextEmbedding.Empty() {
		vectors[clients.TextVectorName] = qdrant.NewVector(item.TextEmbedding.Float32()...)
	}
	if len(vectors) == 0 {
		return nil
	}

	return &qdrant.PointStruct{
		Id:      pointID(item.SKU),
		Vectors: qdrant.NewVectorsMap(vectors),
		Payload: qdrant.NewValueMap(map[string]any{payloadSKU: item.SKU}),
	}
}

func vectorName(field domain.VectorField) (string, error) {
	switch field {
	case domain.ImageEmbeddingField:
		return clients.ImageVectorName, nil
	case domain.TextEmbeddingField:
		return clients.TextVectorName, nil
	default:
		return "", fmt.Errorf("%w: %s", e.ErrUnsupportedVectorField, field)
	}
}

// unitScore переводит косинусную близость [-1, 1] в оценку [0, 1].
func unitScore(cosine float32) float64 {
	return (1 + float64(cosine)) / 2
}

func toVectorHits(points []*qdrant.ScoredPoint) []usecase.VectorHit {
	hits := make([]usecase.VectorHit, 0, len(points))
	for _, p := range points {
		sku := p.GetPayload()[payloadSKU].GetStringValue()
		if sku == "" {
			continue
		}
		hits = append(hits, usecase.VectorHit{SKU: sku, Score: unitScore(p.GetScore())})
	}

	return hits
}
