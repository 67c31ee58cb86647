package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/jimlawless/whereami"
)

// ItemUseCase — добавление товаров в каталог и чтение карточки товара.
type ItemUseCase struct {
	catalog     CatalogRepository
	imagesInfra ImagesInfra
	cache       CacheRepository
	logger      logger.Logger
}

func NewItemUseCase(catalog CatalogRepository, imagesInfra ImagesInfra, cache CacheRepository, logger logger.Logger) *ItemUseCase {
	return &ItemUseCase{
		catalog:     catalog,
		imagesInfra: imagesInfra,
		cache:       cache,
		logger:      logger,
	}
}

// AddItem загружает изображение, собирает товар и индексирует его.
// Повторная вставка с тем же SKU полностью заменяет документ.
func (u *ItemUseCase) AddItem(ctx context.Context, req *AddItemReq) (*AddItemRes, error) {
	if strings.TrimSpace(req.SKU) == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrSKURequired)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrItemNameRequired)
	}
	if err := validateImage(req.Image); err != nil {
		return nil, err
	}

	uploaded, err := u.imagesInfra.UploadImage(ctx, NewUploadImageReq(req.SKU, req.Image))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	item := domain.NewItem(domain.ItemParams{
		SKU:           req.SKU,
		Name:          req.Name,
		MaterialValue: req.MaterialValue,
		ItemType:      req.ItemType,
		Colors:        req.Colors,
		Dimensions:    req.Dimensions,
		Price:         req.Price,
		SpecialPrice:  req.SpecialPrice,
		FinalPrice:    req.FinalPrice,
		Description:   req.Description,
		ImagePath:     uploaded.Key,
		MediaGallery:  []domain.MediaEntry{domain.NewPrimaryMedia(uploaded.Key)},
	})

	if err := u.catalog.Insert(ctx, item); err != nil {
		u.imagesInfra.CleanupImages([]string{uploaded.Key})
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := u.cache.DeleteItems(ctx, []string{item.SKU}); err != nil {
		u.logger.Warnf("failed to invalidate cache for %s: %v", item.SKU, err)
	}

	u.logger.Infof("item %s indexed, image %s", item.SKU, uploaded.Key)

	return &AddItemRes{SKU: item.SKU, ImagePath: uploaded.Key}, nil
}

// GetItem возвращает карточку товара, сначала из кэша.
func (u *ItemUseCase) GetItem(ctx context.Context, sku string) (*ItemInfo, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrSKURequired)
	}

	cached, err := u.cache.GetItem(ctx, sku)
	if err != nil {
		u.logger.Warnf("cache lookup failed for %s: %v", sku, err)
	}
	if cached != nil {
		info := NewItemInfo(cached)
		return &info, nil
	}

	item, err := u.catalog.GetBySKU(ctx, sku)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := u.cache.SetItem(ctx, item); err != nil {
		u.logger.Warnf("failed to cache item %s: %v", sku, err)
	}

	info := NewItemInfo(item)
	return &info, nil
}
