package grpc

import (
	"errors"
	"fmt"
	"math"

	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var invalidArgumentErrors = []error{
	e.ErrStatusBadRequest,
	e.ErrMissingFields,
	e.ErrSKURequired,
	e.ErrNoImages,
	e.ErrMalformedImage,
	e.ErrUnsupportedMediaType,
	e.ErrFileTooLarge,
	e.ErrEmptyQuery,
	e.ErrInvalidK,
	e.ErrUnsupportedVectorField,
	e.ErrVectorEmbeddingEmpty,
	e.ErrVectorDimMismatch,
}

func GRPCErrorResponse(err error) error {
	for _, target := range invalidArgumentErrors {
		if errors.Is(err, target) {
			return status.Error(codes.InvalidArgument, target.Error())
		}
	}

	switch {
	case errors.Is(err, e.ErrItemNotFound):
		return status.Error(codes.NotFound, e.ErrItemNotFound.Error())
	case errors.Is(err, e.ErrUpstreamUnavailable):
		return status.Error(codes.Unavailable, e.ErrUpstreamUnavailable.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

// intField читает целое число. Отсутствующее поле даёт 0.
func intField(in *structpb.Struct, name string) (int, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return 0, nil
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, e.Wrap(name, e.ErrInvalidK)
	}

	return int(n.NumberValue), nil
}

func floatListField(in *structpb.Struct, name string) ([]float32, error) {
	values := in.GetFields()[name].GetListValue().GetValues()

	out := make([]float32, 0, len(values))
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, e.Wrap(fmt.Sprintf("%s[%d] is not a number", name, i), e.ErrStatusBadRequest)
		}
		out = append(out, float32(n.NumberValue))
	}

	return out, nil
}

func stringListField(in *structpb.Struct, name string) []string {
	values := in.GetFields()[name].GetListValue().GetValues()

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := v.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}

	return out
}

func toGRPCItem(info usecase.ItemInfo) map[string]any {
	colors := make([]any, 0, len(info.Colors))
	for _, c := range info.Colors {
		colors = append(colors, c)
	}

	media := make([]any, 0, len(info.MediaGallery))
	for _, m := range info.MediaGallery {
		types := make([]any, 0, len(m.Types))
		for _, t := range m.Types {
			types = append(types, t)
		}
		media = append(media, map[string]any{
			"id":         m.ID,
			"media_type": m.MediaType,
			"file":       m.File,
			"position":   m.Position,
			"disabled":   m.Disabled,
			"types":      types,
		})
	}

	item := map[string]any{
		"sku":            info.SKU,
		"item_name":      info.Name,
		"material_value": info.MaterialValue,
		"item_type":      info.ItemType,
		"colors":         colors,
		"dimensions":     info.Dimensions,
		"price":          info.Price,
		"final_price":    info.FinalPrice,
		"description":    info.Description,
		"image_path":     info.ImagePath,
		"media_gallery":  media,
	}
	if info.SpecialPrice != nil {
		item["special_price"] = *info.SpecialPrice
	}

	return item
}

func toGRPCSearchResponse(res *usecase.SearchRes) (*structpb.Struct, error) {
	items := make([]any, 0, len(res.Items))
	for _, it := range res.Items {
		item := toGRPCItem(it.Item)
		item["score"] = it.Score
		items = append(items, item)
	}

	return structpb.NewStruct(map[string]any{
		"items":                items,
		"no_confident_matches": res.NoConfidentMatches,
	})
}
