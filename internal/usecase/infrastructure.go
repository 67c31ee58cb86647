package usecase

import (
	"context"

	"github.com/DRSN-tech/furniture-search/internal/domain"
)

// Embedder отображает изображение или текст в плотный вектор фиксированной размерности.
type Embedder interface {
	EncodeImage(ctx context.Context, data []byte, normalize bool) (domain.Vector, error)
	EncodeText(ctx context.Context, text string, normalize bool) (domain.Vector, error)
}

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (*UploadImageRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// FacetProvider отдаёт снимок словаря фасетов.
type FacetProvider interface {
	Get(ctx context.Context, fields ...domain.FacetField) domain.Facets
}
