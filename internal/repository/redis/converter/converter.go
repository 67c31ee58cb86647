package converter

import "github.com/DRSN-tech/furniture-search/internal/domain"

type ItemConverter interface {
	ToRedisModel(entity *domain.Item) *ItemRedisModel
	ToDomain(model *ItemRedisModel) *domain.Item
}

type ItemConverterImpl struct{}

func NewItemConverter() *ItemConverterImpl {
	return &ItemConverterImpl{}
}

func (ItemConverterImpl) ToRedisModel(entity *domain.Item) *ItemRedisModel {
	media := make([]MediaRedisModel, 0, len(entity.MediaGallery))
	for _, m := range entity.MediaGallery {
		media = append(media, MediaRedisModel(m))
	}

	return &ItemRedisModel{
		SKU:           entity.SKU,
		Name:          entity.Name,
		MaterialValue: entity.MaterialValue,
		ItemType:      entity.ItemType,
		Colors:        entity.Colors,
		Dimensions:    entity.Dimensions,
		Price:         entity.Price,
		SpecialPrice:  entity.SpecialPrice,
		FinalPrice:    entity.FinalPrice,
		Description:   entity.Description,
		ImagePath:     entity.ImagePath,
		MediaGallery:  media,
	}
}

func (ItemConverterImpl) ToDomain(model *ItemRedisModel) *domain.Item {
	var media []domain.MediaEntry
	for _, m := range model.MediaGallery {
		media = append(media, domain.MediaEntry(m))
	}

	return &domain.Item{
		SKU:           model.SKU,
		Name:          model.Name,
		MaterialValue: model.MaterialValue,
		ItemType:      model.ItemType,
		Colors:        model.Colors,
		Dimensions:    model.Dimensions,
		Price:         model.Price,
		SpecialPrice:  model.SpecialPrice,
		FinalPrice:    model.FinalPrice,
		Description:   model.Description,
		ImagePath:     model.ImagePath,
		MediaGallery:  media,
	}
}
