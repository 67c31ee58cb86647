package converter

import (
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemConverter_EmptyEmbeddingsStoredAsNull(t *testing.T) {
	conv := NewItemConverter()

	model, err := conv.ToModel(&domain.Item{SKU: "S1", TextEmbedding: domain.Vector{0.5, 0.5}})
	require.NoError(t, err)

	assert.Nil(t, model.ImageEmbedding)
	require.NotNil(t, model.TextEmbedding)
	assert.Equal(t, []float32{0.5, 0.5}, model.TextEmbedding.Slice())
	assert.Equal(t, []string{}, model.Colors)
	assert.JSONEq(t, `[]`, string(model.MediaGallery))
}

func TestItemConverter_MediaGallery(t *testing.T) {
	conv := NewItemConverter()
	item := &domain.Item{
		SKU:          "S1",
		Colors:       []string{"Red", "Blue"},
		MediaGallery: []domain.MediaEntry{domain.NewPrimaryMedia("S1/original.jpg")},
	}

	model, err := conv.ToModel(item)
	require.NoError(t, err)

	back, err := conv.ToEntity(model)
	require.NoError(t, err)
	assert.Equal(t, item.MediaGallery, back.MediaGallery)
	assert.Equal(t, item.Colors, back.Colors)
	assert.True(t, back.ImageEmbedding.Empty())
}

func TestOutboxEventConverter(t *testing.T) {
	conv := NewOutboxEventConverter()
	ev := usecase.NewOutboxEvent("id-1", usecase.EventItemUpserted, "S1", []byte{1, 2})

	got := conv.ToEntity(conv.ToModel(ev))
	assert.Equal(t, ev, got)
	assert.Len(t, conv.ToArrEntity([]*OutboxEventModel{conv.ToModel(ev)}), 1)
}
