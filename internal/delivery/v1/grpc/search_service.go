package grpc

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

type SearchService struct {
	itemUC   usecase.ItemUC
	searchUC usecase.SearchUC
	logger   logger.Logger
}

func NewSearchService(itemUC usecase.ItemUC, searchUC usecase.SearchUC, logger logger.Logger) *SearchService {
	return &SearchService{itemUC: itemUC, searchUC: searchUC, logger: logger}
}

// GetItems возвращает товары по списку sku; отсутствующие перечисляются в items_not_found.
func (g *SearchService) GetItems(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.GetItems"

	skus := stringListField(in, "skus")
	if len(skus) == 0 {
		return nil, GRPCErrorResponse(e.Wrap(op, e.ErrSKURequired))
	}

	items := make([]any, 0, len(skus))
	notFound := make([]any, 0)
	for _, sku := range skus {
		info, err := g.itemUC.GetItem(ctx, sku)
		switch {
		case errors.Is(err, e.ErrItemNotFound):
			notFound = append(notFound, sku)
		case err != nil:
			g.logger.Errorf(e.Wrap(op, err), "%s", op)
			return nil, GRPCErrorResponse(e.Wrap(op, err))
		default:
			items = append(items, toGRPCItem(*info))
		}
	}

	return g.respond(op, map[string]any{
		"items":           items,
		"items_not_found": notFound,
	})
}

func (g *SearchService) TextSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return g.textSearch(ctx, "grpc.TextSearch", in, g.searchUC.TextSearch)
}

func (g *SearchService) SemanticSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return g.textSearch(ctx, "grpc.SemanticSearch", in, g.searchUC.SemanticSearch)
}

func (g *SearchService) textSearch(
	ctx context.Context,
	op string,
	in *structpb.Struct,
	search func(context.Context, *usecase.TextSearchReq) (*usecase.SearchRes, error),
) (*structpb.Struct, error) {
	k, err := intField(in, "k")
	if err != nil {
		return nil, GRPCErrorResponse(err)
	}

	res, err := search(ctx, &usecase.TextSearchReq{Query: stringField(in, "query"), K: k})
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.searchResponse(op, res)
}

// ImageSearch принимает изображение в поле image, закодированное в base64.
func (g *SearchService) ImageSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.ImageSearch"

	k, err := intField(in, "k")
	if err != nil {
		return nil, GRPCErrorResponse(err)
	}

	data, err := base64.StdEncoding.DecodeString(stringField(in, "image"))
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, e.ErrMalformedImage))
	}

	image := usecase.NewItemImage(data, http.DetectContentType(data[:min(len(data), 512)]), int64(len(data)), "grpc")
	res, err := g.searchUC.ImageSearch(ctx, &usecase.ImageSearchReq{Image: image, K: k})
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.searchResponse(op, res)
}

func (g *SearchService) EmbeddingSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.EmbeddingSearch"

	k, err := intField(in, "k")
	if err != nil {
		return nil, GRPCErrorResponse(err)
	}

	vector, err := floatListField(in, "vector")
	if err != nil {
		return nil, GRPCErrorResponse(err)
	}

	res, err := g.searchUC.EmbeddingSearch(ctx, &usecase.EmbeddingSearchReq{
		Field:  stringField(in, "field"),
		Vector: vector,
		K:      k,
	})
	if err != nil {
		return nil, g.fail(op, err)
	}

	return g.searchResponse(op, res)
}

func (g *SearchService) Suggest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.Suggest"

	k, err := intField(in, "k")
	if err != nil {
		return nil, GRPCErrorResponse(err)
	}

	res, err := g.searchUC.Suggest(ctx, &usecase.SuggestReq{Prefix: stringField(in, "prefix"), K: k})
	if err != nil {
		return nil, g.fail(op, err)
	}

	suggestions := make([]any, 0, len(res.Suggestions))
	for _, s := range res.Suggestions {
		suggestions = append(suggestions, s)
	}

	return g.respond(op, map[string]any{"suggestions": suggestions})
}

func (g *SearchService) searchResponse(op string, res *usecase.SearchRes) (*structpb.Struct, error) {
	out, err := toGRPCSearchResponse(res)
	if err != nil {
		return nil, g.fail(op, err)
	}
	return out, nil
}

func (g *SearchService) respond(op string, m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, g.fail(op, err)
	}
	return out, nil
}

func (g *SearchService) fail(op string, err error) error {
	g.logger.Warnf("%v", e.Wrap(op, err))
	return GRPCErrorResponse(e.Wrap(op, err))
}
