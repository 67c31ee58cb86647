package usecase

import (
	"time"

	"github.com/DRSN-tech/furniture-search/internal/domain"
)

// ITEM USECASE

type AddItemReq struct {
	SKU           string
	Name          string
	MaterialValue string
	ItemType      string
	Colors        []string
	Dimensions    string
	Price         float64
	SpecialPrice  *float64
	FinalPrice    float64
	Description   string
	Image         *ItemImage
}

// ItemImage представляет изображение, загруженное через multipart/form-data.
type ItemImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type (image/jpeg)
	Size     int64
	Name     string // оригинальное имя файла (для логов)
}

type AddItemRes struct {
	SKU       string
	ImagePath string
}

// ItemInfo — DTO с информацией о товаре для внешнего использования.
type ItemInfo struct {
	SKU           string
	Name          string
	MaterialValue string
	ItemType      string
	Colors        []string
	Dimensions    string
	Price         float64
	SpecialPrice  *float64
	FinalPrice    float64
	Description   string
	ImagePath     string
	MediaGallery  []domain.MediaEntry
}

// SEARCH USECASE

type TextSearchReq struct {
	Query string
	K     int
}

type ImageSearchReq struct {
	Image *ItemImage
	K     int
}

type EmbeddingSearchReq struct {
	Field  string
	Vector []float32
	K      int
}

type SuggestReq struct {
	Prefix string
	K      int
}

type ScoredItem struct {
	Item  ItemInfo
	Score float64
}

type SearchRes struct {
	Items              []ScoredItem
	NoConfidentMatches bool
}

type SuggestRes struct {
	Suggestions []string
}

// INFRASTRUCTURE

type UploadImageReq struct {
	SKU   string
	Image *ItemImage
}

type UploadImageRes struct {
	Key string
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// REPOSITORIES

type KnnSearchReq struct {
	Field         domain.VectorField
	Vector        domain.Vector
	Limit         int
	NumCandidates int
}

// VectorHit — ответ векторного индекса: ключ документа и оценка в [0, 1].
type VectorHit struct {
	SKU   string
	Score float64
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

const (
	EventItemUpserted = "item.upserted"
)

// OutboxEvent — событие об изменении товара, публикуемое воркером в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	SKU         string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewItemInfo(item *domain.Item) ItemInfo {
	return ItemInfo{
		SKU:           item.SKU,
		Name:          item.Name,
		MaterialValue: item.MaterialValue,
		ItemType:      item.ItemType,
		Colors:        item.Colors,
		Dimensions:    item.Dimensions,
		Price:         item.Price,
		SpecialPrice:  item.SpecialPrice,
		FinalPrice:    item.FinalPrice,
		Description:   item.Description,
		ImagePath:     item.ImagePath,
		MediaGallery:  item.MediaGallery,
	}
}

func NewSearchRes(result domain.SearchResult) *SearchRes {
	items := make([]ScoredItem, 0, len(result.Hits))
	for _, h := range result.Hits {
		items = append(items, ScoredItem{Item: NewItemInfo(&h.Item), Score: h.Score})
	}

	return &SearchRes{
		Items:              items,
		NoConfidentMatches: result.NoConfidentMatch,
	}
}

func NewItemImage(data []byte, mimeType string, size int64, name string) *ItemImage {
	return &ItemImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadImageReq(sku string, image *ItemImage) *UploadImageReq {
	return &UploadImageReq{
		SKU:   sku,
		Image: image,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID, eventType, sku string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		SKU:       sku,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	}
}
