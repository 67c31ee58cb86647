package converter

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ItemModel представляет запись таблицы items в PostgreSQL.
type ItemModel struct {
	SKU            string           `db:"sku"`
	ItemName       string           `db:"item_name"`
	MaterialValue  string           `db:"material_value"`
	ItemType       string           `db:"item_type"`
	Colors         []string         `db:"colors"`
	Dimensions     string           `db:"dimensions"`
	Price          float64          `db:"price"`
	SpecialPrice   *float64         `db:"special_price"`
	FinalPrice     float64          `db:"final_price"`
	Description    string           `db:"description"`
	ImagePath      string           `db:"image_path"`
	MediaGallery   []byte           `db:"media_gallery"`
	ImageEmbedding *pgvector.Vector `db:"image_embedding"`
	TextEmbedding  *pgvector.Vector `db:"text_embedding"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      *time.Time       `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	SKU         string     `db:"sku"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
