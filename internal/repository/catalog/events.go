package catalog

import (
	"time"

	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// newUpsertEvent собирает событие об изменении товара.
// Payload кодируется как google.protobuf.Struct, эмбеддинги в него не входят.
func newUpsertEvent(item *domain.Item, at time.Time) (*usecase.OutboxEvent, error) {
	eventID := uuid.NewString()

	colors := make([]any, 0, len(item.Colors))
	for _, c := range item.Colors {
		colors = append(colors, c)
	}

	payload, err := structpb.NewStruct(map[string]any{
		"event_id":            eventID,
		"event_type":          usecase.EventItemUpserted,
		"event_timestamp":     at.UnixNano(),
		"sku":                 item.SKU,
		"item_name":           item.Name,
		"item_type":           item.ItemType,
		"colors":              colors,
		"image_path":          item.ImagePath,
		"final_price":         item.FinalPrice,
		"has_image_embedding": !item.ImageEmbedding.Empty(),
		"has_text_embedding":  !item.TextEmbedding.Empty(),
	})
	if err != nil {
		return nil, err
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return usecase.NewOutboxEvent(eventID, usecase.EventItemUpserted, item.SKU, data), nil
}
