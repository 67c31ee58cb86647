package redis

import (
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/repository/redis/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemKey(t *testing.T) {
	assert.Equal(t, "item:SKU-1", itemKey("SKU-1"))
}

func TestCachedItemDropsEmbeddings(t *testing.T) {
	conv := converter.NewItemConverter()
	special := 99.5
	item := &domain.Item{
		SKU:            "S1",
		Name:           "Sofa",
		Colors:         []string{"Red", "Blue"},
		SpecialPrice:   &special,
		MediaGallery:   []domain.MediaEntry{domain.NewPrimaryMedia("S1/original.jpg")},
		ImageEmbedding: domain.Vector{1, 2, 3},
	}

	data, err := marshalItem(conv.ToRedisModel(item))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "embedding")

	model, err := unmarshalItem(data)
	require.NoError(t, err)

	got := conv.ToDomain(model)
	assert.Equal(t, item.Colors, got.Colors)
	assert.Equal(t, item.MediaGallery, got.MediaGallery)
	assert.Equal(t, special, *got.SpecialPrice)
	assert.True(t, got.ImageEmbedding.Empty())
}

func TestUnmarshalItem_Garbage(t *testing.T) {
	_, err := unmarshalItem([]byte("{not json"))
	assert.Error(t, err)
}
