package http

import (
	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
)

type MediaResponse struct {
	ID        int      `json:"id"`
	MediaType string   `json:"media_type"`
	File      string   `json:"file"`
	Position  int      `json:"position"`
	Disabled  bool     `json:"disabled"`
	Types     []string `json:"types"`
}

type ItemResponse struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"item_name,omitempty"`
	MaterialValue string          `json:"material_value,omitempty"`
	ItemType      string          `json:"item_type,omitempty"`
	Colors        []string        `json:"colors,omitempty"`
	Dimensions    string          `json:"dimensions,omitempty"`
	Price         float64         `json:"price,omitempty"`
	SpecialPrice  *float64        `json:"special_price,omitempty"`
	FinalPrice    float64         `json:"final_price,omitempty"`
	Description   string          `json:"description,omitempty"`
	ImagePath     string          `json:"image_path,omitempty"`
	MediaGallery  []MediaResponse `json:"media_gallery,omitempty"`
}

type ScoredItemResponse struct {
	ItemResponse
	Score float64 `json:"score"`
}

type SearchResponse struct {
	Items              []ScoredItemResponse `json:"items"`
	NoConfidentMatches bool                 `json:"no_confident_matches"`
}

type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

type AddItemResponse struct {
	SKU       string `json:"sku"`
	ImagePath string `json:"image_path"`
}

// EmbeddingSearchRequest — тело запроса поиска по готовому вектору.
type EmbeddingSearchRequest struct {
	Vector []float32 `json:"vector"`
}

func toItemResponse(info usecase.ItemInfo) ItemResponse {
	return ItemResponse{
		SKU:           info.SKU,
		Name:          info.Name,
		MaterialValue: info.MaterialValue,
		ItemType:      info.ItemType,
		Colors:        info.Colors,
		Dimensions:    info.Dimensions,
		Price:         info.Price,
		SpecialPrice:  info.SpecialPrice,
		FinalPrice:    info.FinalPrice,
		Description:   info.Description,
		ImagePath:     info.ImagePath,
		MediaGallery:  toMediaResponse(info.MediaGallery),
	}
}

func toMediaResponse(media []domain.MediaEntry) []MediaResponse {
	if len(media) == 0 {
		return nil
	}

	out := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		out = append(out, MediaResponse{
			ID:        m.ID,
			MediaType: m.MediaType,
			File:      m.File,
			Position:  m.Position,
			Disabled:  m.Disabled,
			Types:     m.Types,
		})
	}
	return out
}

func toSearchResponse(res *usecase.SearchRes) SearchResponse {
	items := make([]ScoredItemResponse, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, ScoredItemResponse{ItemResponse: toItemResponse(it.Item), Score: it.Score})
	}

	return SearchResponse{Items: items, NoConfidentMatches: res.NoConfidentMatches}
}
