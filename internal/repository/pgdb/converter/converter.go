package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/pgvector/pgvector-go"
)

// ItemConverter преобразует Item между domain и моделью PostgreSQL.
type ItemConverter interface {
	ToModel(entity *domain.Item) (*ItemModel, error)
	ToEntity(model *ItemModel) (*domain.Item, error)
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ItemConverterImpl struct{}

func NewItemConverter() *ItemConverterImpl {
	return &ItemConverterImpl{}
}

func (ItemConverterImpl) ToModel(entity *domain.Item) (*ItemModel, error) {
	gallery := entity.MediaGallery
	if gallery == nil {
		gallery = []domain.MediaEntry{}
	}

	media, err := json.Marshal(gallery)
	if err != nil {
		return nil, err
	}

	colors := entity.Colors
	if colors == nil {
		colors = []string{}
	}

	return &ItemModel{
		SKU:            entity.SKU,
		ItemName:       entity.Name,
		MaterialValue:  entity.MaterialValue,
		ItemType:       entity.ItemType,
		Colors:         colors,
		Dimensions:     entity.Dimensions,
		Price:          entity.Price,
		SpecialPrice:   entity.SpecialPrice,
		FinalPrice:     entity.FinalPrice,
		Description:    entity.Description,
		ImagePath:      entity.ImagePath,
		MediaGallery:   media,
		ImageEmbedding: ConvertVector(entity.ImageEmbedding),
		TextEmbedding:  ConvertVector(entity.TextEmbedding),
	}, nil
}

func (ItemConverterImpl) ToEntity(model *ItemModel) (*domain.Item, error) {
	var gallery []domain.MediaEntry
	if len(model.MediaGallery) > 0 {
		if err := json.Unmarshal(model.MediaGallery, &gallery); err != nil {
			return nil, err
		}
	}

	return &domain.Item{
		SKU:            model.SKU,
		Name:           model.ItemName,
		MaterialValue:  model.MaterialValue,
		ItemType:       model.ItemType,
		Colors:         model.Colors,
		Dimensions:     model.Dimensions,
		Price:          model.Price,
		SpecialPrice:   model.SpecialPrice,
		FinalPrice:     model.FinalPrice,
		Description:    model.Description,
		ImagePath:      model.ImagePath,
		MediaGallery:   gallery,
		ImageEmbedding: ConvertPgVector(model.ImageEmbedding),
		TextEmbedding:  ConvertPgVector(model.TextEmbedding),
	}, nil
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverter() *OutboxEventConverterImpl {
	return &OutboxEventConverterImpl{}
}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   entity.EventType,
		SKU:         entity.SKU,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   model.EventType,
		SKU:         model.SKU,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		result = append(result, c.ToEntity(m))
	}

	return result
}

// ConvertVector: пустой эмбеддинг хранится как NULL.
func ConvertVector(v domain.Vector) *pgvector.Vector {
	if v.Empty() {
		return nil
	}

	pv := pgvector.NewVector(v.Float32())
	return &pv
}

func ConvertPgVector(v *pgvector.Vector) domain.Vector {
	if v == nil {
		return nil
	}

	return domain.Vector(v.Slice())
}
