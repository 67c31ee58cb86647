package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Сообщения сервиса имеют тип google.protobuf.Struct, описание собрано вручную.
const searchServiceName = "catalog.v1.SearchService"

type SearchServiceServer interface {
	GetItems(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	TextSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	SemanticSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ImageSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	EmbeddingSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Suggest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv SearchServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + searchServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SearchServiceServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SearchServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var SearchServiceDesc = grpc.ServiceDesc{
	ServiceName: searchServiceName,
	HandlerType: (*SearchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("GetItems", SearchServiceServer.GetItems),
		unaryHandler("TextSearch", SearchServiceServer.TextSearch),
		unaryHandler("SemanticSearch", SearchServiceServer.SemanticSearch),
		unaryHandler("ImageSearch", SearchServiceServer.ImageSearch),
		unaryHandler("EmbeddingSearch", SearchServiceServer.EmbeddingSearch),
		unaryHandler("Suggest", SearchServiceServer.Suggest),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/search.proto",
}

func RegisterSearchServiceServer(s grpc.ServiceRegistrar, srv SearchServiceServer) {
	s.RegisterService(&SearchServiceDesc, srv)
}
