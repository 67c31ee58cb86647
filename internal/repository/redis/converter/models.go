package converter

// MediaRedisModel — элемент медиагалереи в кэше.
type MediaRedisModel struct {
	ID        int      `json:"id"`
	MediaType string   `json:"media_type"`
	File      string   `json:"file"`
	Position  int      `json:"position"`
	Disabled  bool     `json:"disabled"`
	Types     []string `json:"types"`
}

// ItemRedisModel — карточка товара в кэше. Эмбеддинги не кэшируются.
type ItemRedisModel struct {
	SKU           string            `json:"sku"`
	Name          string            `json:"item_name"`
	MaterialValue string            `json:"material_value"`
	ItemType      string            `json:"item_type"`
	Colors        []string          `json:"colors"`
	Dimensions    string            `json:"dimensions"`
	Price         float64           `json:"price"`
	SpecialPrice  *float64          `json:"special_price,omitempty"`
	FinalPrice    float64           `json:"final_price"`
	Description   string            `json:"description"`
	ImagePath     string            `json:"image_path"`
	MediaGallery  []MediaRedisModel `json:"media_gallery"`
}
