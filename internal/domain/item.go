package domain

import (
	"strings"
)

// MediaEntry описывает один элемент медиагалереи товара.
type MediaEntry struct {
	ID        int      `json:"id"`
	MediaType string   `json:"media_type"`
	File      string   `json:"file"`
	Position  int      `json:"position"`
	Disabled  bool     `json:"disabled"`
	Types     []string `json:"types"`
}

// NewPrimaryMedia создаёт запись галереи для основного изображения товара.
func NewPrimaryMedia(file string) MediaEntry {
	return MediaEntry{
		ID:        1,
		MediaType: "image",
		File:      file,
		Position:  0,
		Types:     []string{"image", "small_image", "thumbnail"},
	}
}

// Item описывает товар каталога. SKU является ключом документа в индексе.
type Item struct {
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
	ImagePath     string // ключ объекта в хранилище изображений
	MediaGallery  []MediaEntry

	// Производные поля, всегда пересчитываются перед записью.
	ImageEmbedding Vector
	TextEmbedding  Vector
}

// ItemParams — входные данные для создания товара на границе ingestion.
type ItemParams struct {
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
	MediaGallery  []MediaEntry
}

// NewItem собирает товар в каноническом виде: цвета нормализованы,
// описание не пустое, эмбеддинги отсутствуют.
func NewItem(p ItemParams) *Item {
	return &Item{
		SKU:           strings.TrimSpace(p.SKU),
		Name:          strings.TrimSpace(p.Name),
		MaterialValue: strings.TrimSpace(p.MaterialValue),
		ItemType:      strings.TrimSpace(p.ItemType),
		Colors:        NormalizeColors(p.Colors),
		Dimensions:    p.Dimensions,
		Price:         p.Price,
		SpecialPrice:  p.SpecialPrice,
		FinalPrice:    p.FinalPrice,
		Description:   DefaultDescription(p.Description, p.MaterialValue, p.ItemType, p.Name),
		ImagePath:     p.ImagePath,
		MediaGallery:  p.MediaGallery,
	}
}

// DefaultDescription возвращает описание или "{material} {type}", если описание не задано.
// Если и материал, и тип пусты, используется название товара.
func DefaultDescription(description, material, itemType, name string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}

	if d := strings.TrimSpace(strings.TrimSpace(material) + " " + strings.TrimSpace(itemType)); d != "" {
		return d
	}

	return strings.TrimSpace(name)
}

// PrimaryImage возвращает основное изображение: image_path либо первый файл галереи.
func (i *Item) PrimaryImage() string {
	if i.ImagePath != "" {
		return i.ImagePath
	}

	for _, m := range i.MediaGallery {
		if !m.Disabled && m.File != "" {
			return m.File
		}
	}

	return ""
}

// Source-поля документа, доступные для проекции в ответе.
const (
	FieldSKU           = "sku"
	FieldItemName      = "item_name"
	FieldMaterialValue = "material_value"
	FieldItemType      = "item_type"
	FieldColors        = "colors"
	FieldDimensions    = "dimensions"
	FieldPrice         = "price"
	FieldSpecialPrice  = "special_price"
	FieldFinalPrice    = "final_price"
	FieldImagePath     = "image_path"
	FieldDescription   = "description"
	FieldMediaGallery  = "media_gallery"
)

// Поля, которые возвращаются из поиска, если вызывающий не указал свои.
// Эмбеддинги в ответ не попадают никогда.
var DefaultSourceFields = []string{
	FieldSKU, FieldItemName, FieldMaterialValue, FieldItemType,
	FieldColors, FieldDimensions, FieldPrice, FieldSpecialPrice,
	FieldFinalPrice, FieldImagePath, FieldDescription, FieldMediaGallery,
}

// Project возвращает копию товара только с запрошенными полями.
// SKU сохраняется всегда, эмбеддинги всегда отбрасываются.
func (i Item) Project(fields []string) Item {
	if len(fields) == 0 {
		fields = DefaultSourceFields
	}

	keep := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		keep[f] = struct{}{}
	}
	has := func(f string) bool {
		_, ok := keep[f]
		return ok
	}

	out := Item{SKU: i.SKU}
	if has(FieldItemName) {
		out.Name = i.Name
	}
	if has(FieldMaterialValue) {
		out.MaterialValue = i.MaterialValue
	}
	if has(FieldItemType) {
		out.ItemType = i.ItemType
	}
	if has(FieldColors) {
		out.Colors = i.Colors
	}
	if has(FieldDimensions) {
		out.Dimensions = i.Dimensions
	}
	if has(FieldPrice) {
		out.Price = i.Price
	}
	if has(FieldSpecialPrice) {
		out.SpecialPrice = i.SpecialPrice
	}
	if has(FieldFinalPrice) {
		out.FinalPrice = i.FinalPrice
	}
	if has(FieldImagePath) {
		out.ImagePath = i.ImagePath
	}
	if has(FieldDescription) {
		out.Description = i.Description
	}
	if has(FieldMediaGallery) {
		out.MediaGallery = i.MediaGallery
	}

	return out
}
