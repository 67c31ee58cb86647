package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemUseCase_AddItem(t *testing.T) {
	catalog := newFakeCatalog()
	images := &fakeImages{}
	cache := newFakeCache()
	uc := NewItemUseCase(catalog, images, cache, logger.NewNop())

	res, err := uc.AddItem(context.Background(), &AddItemReq{
		SKU:           " SKU-1 ",
		Name:          "Lounge Chair",
		MaterialValue: "Oak",
		ItemType:      "chair",
		Colors:        []string{"Red", " Blue", "Red"},
		Image:         pngImage(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", res.SKU)

	stored := catalog.items["SKU-1"]
	require.NotNil(t, stored)
	assert.Equal(t, "Oak chair", stored.Description)
	assert.Equal(t, []string{"Red", "Blue"}, stored.Colors)
	assert.Equal(t, res.ImagePath, stored.ImagePath)
	require.Len(t, stored.MediaGallery, 1)
	assert.Equal(t, res.ImagePath, stored.MediaGallery[0].File)
	assert.Contains(t, cache.deleted, "SKU-1")
}

func TestItemUseCase_AddItem_Validation(t *testing.T) {
	uc := NewItemUseCase(newFakeCatalog(), &fakeImages{}, newFakeCache(), logger.NewNop())

	_, err := uc.AddItem(context.Background(), &AddItemReq{Name: "x", Image: pngImage(t)})
	assert.ErrorIs(t, err, e.ErrSKURequired)

	_, err = uc.AddItem(context.Background(), &AddItemReq{SKU: "s", Image: pngImage(t)})
	assert.ErrorIs(t, err, e.ErrItemNameRequired)

	_, err = uc.AddItem(context.Background(), &AddItemReq{SKU: "s", Name: "x"})
	assert.ErrorIs(t, err, e.ErrNoImages)
}

func TestItemUseCase_AddItem_CleansUpOnInsertFailure(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.insertErr = errors.New("qdrant down")
	images := &fakeImages{}
	uc := NewItemUseCase(catalog, images, newFakeCache(), logger.NewNop())

	_, err := uc.AddItem(context.Background(), &AddItemReq{SKU: "s", Name: "x", Image: pngImage(t)})
	require.Error(t, err)
	assert.Equal(t, images.uploaded, images.cleaned)
}

func TestItemUseCase_GetItem_UsesCache(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.items["S1"] = &domain.Item{SKU: "S1", Name: "Sofa"}
	cache := newFakeCache()
	uc := NewItemUseCase(catalog, &fakeImages{}, cache, logger.NewNop())

	info, err := uc.GetItem(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Sofa", info.Name)
	assert.Contains(t, cache.items, "S1")

	delete(catalog.items, "S1")
	info, err = uc.GetItem(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Sofa", info.Name)
}

func TestItemUseCase_GetItem_NotFound(t *testing.T) {
	uc := NewItemUseCase(newFakeCatalog(), &fakeImages{}, newFakeCache(), logger.NewNop())

	_, err := uc.GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, e.ErrItemNotFound)
}
