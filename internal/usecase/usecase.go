package usecase

import "context"

type ItemUC interface {
	AddItem(ctx context.Context, req *AddItemReq) (*AddItemRes, error)
	GetItem(ctx context.Context, sku string) (*ItemInfo, error)
}

type SearchUC interface {
	TextSearch(ctx context.Context, req *TextSearchReq) (*SearchRes, error)
	SemanticSearch(ctx context.Context, req *TextSearchReq) (*SearchRes, error)
	ImageSearch(ctx context.Context, req *ImageSearchReq) (*SearchRes, error)
	EmbeddingSearch(ctx context.Context, req *EmbeddingSearchReq) (*SearchRes, error)
	Suggest(ctx context.Context, req *SuggestReq) (*SuggestRes, error)
}
