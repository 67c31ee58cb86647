package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/internal/usecase"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeItemUC struct {
	items map[string]usecase.ItemInfo
}

func (f *fakeItemUC) AddItem(context.Context, *usecase.AddItemReq) (*usecase.AddItemRes, error) {
	return nil, nil
}

func (f *fakeItemUC) GetItem(_ context.Context, sku string) (*usecase.ItemInfo, error) {
	info, ok := f.items[sku]
	if !ok {
		return nil, e.Wrap(sku, e.ErrItemNotFound)
	}
	return &info, nil
}

type fakeSearchUC struct {
	err       error
	textReq   *usecase.TextSearchReq
	vectorReq *usecase.EmbeddingSearchReq
}

func (f *fakeSearchUC) result() (*usecase.SearchRes, error) {
	if f.err != nil {
		return nil, f.err
	}
	special := 450.0
	return &usecase.SearchRes{Items: []usecase.ScoredItem{{
		Item:  usecase.ItemInfo{SKU: "S1", Name: "Red Sofa", Colors: []string{"Red"}, SpecialPrice: &special},
		Score: 0.9,
	}}}, nil
}

func (f *fakeSearchUC) TextSearch(_ context.Context, req *usecase.TextSearchReq) (*usecase.SearchRes, error) {
	f.textReq = req
	return f.result()
}

func (f *fakeSearchUC) SemanticSearch(_ context.Context, req *usecase.TextSearchReq) (*usecase.SearchRes, error) {
	f.textReq = req
	return f.result()
}

func (f *fakeSearchUC) ImageSearch(context.Context, *usecase.ImageSearchReq) (*usecase.SearchRes, error) {
	return nil, e.ErrMalformedImage
}

func (f *fakeSearchUC) EmbeddingSearch(_ context.Context, req *usecase.EmbeddingSearchReq) (*usecase.SearchRes, error) {
	f.vectorReq = req
	return f.result()
}

func (f *fakeSearchUC) Suggest(context.Context, *usecase.SuggestReq) (*usecase.SuggestRes, error) {
	return &usecase.SuggestRes{Suggestions: []string{"Sofa"}}, nil
}

func dial(t *testing.T, items *fakeItemUC, search *fakeSearchUC) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(&cfg.GRPCConfig{}, logger.NewNop())
	srv.RegisterServices(items, search)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()

	req, err := structpb.NewStruct(in)
	require.NoError(t, err)

	out := new(structpb.Struct)
	err = conn.Invoke(context.Background(), "/"+searchServiceName+"/"+method, req, out)
	return out, err
}

func TestTextSearch(t *testing.T) {
	search := &fakeSearchUC{}
	conn := dial(t, &fakeItemUC{}, search)

	out, err := invoke(t, conn, "TextSearch", map[string]any{"query": "red sofa", "k": 3})
	require.NoError(t, err)

	assert.Equal(t, "red sofa", search.textReq.Query)
	assert.Equal(t, 3, search.textReq.K)

	items := out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	item := items[0].GetStructValue().GetFields()
	assert.Equal(t, "S1", item["sku"].GetStringValue())
	assert.Equal(t, 0.9, item["score"].GetNumberValue())
	assert.Equal(t, 450.0, item["special_price"].GetNumberValue())
	assert.False(t, out.GetFields()["no_confident_matches"].GetBoolValue())
}

func TestEmbeddingSearch(t *testing.T) {
	search := &fakeSearchUC{}
	conn := dial(t, &fakeItemUC{}, search)

	_, err := invoke(t, conn, "EmbeddingSearch", map[string]any{
		"field":  "image_embedding",
		"vector": []any{0.5, 0.25},
	})
	require.NoError(t, err)
	assert.Equal(t, "image_embedding", search.vectorReq.Field)
	assert.Equal(t, []float32{0.5, 0.25}, search.vectorReq.Vector)
	assert.Zero(t, search.vectorReq.K)

	_, err = invoke(t, conn, "EmbeddingSearch", map[string]any{"vector": []any{"x"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestErrorCodes(t *testing.T) {
	conn := dial(t, &fakeItemUC{}, &fakeSearchUC{err: e.Upstream(context.DeadlineExceeded)})

	_, err := invoke(t, conn, "SemanticSearch", map[string]any{"query": "sofa"})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	_, err = invoke(t, conn, "TextSearch", map[string]any{"query": "sofa", "k": 1.5})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = invoke(t, conn, "ImageSearch", map[string]any{"image": "not base64!"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetItems(t *testing.T) {
	conn := dial(t, &fakeItemUC{items: map[string]usecase.ItemInfo{"S1": {SKU: "S1", Name: "Red Sofa"}}}, &fakeSearchUC{})

	out, err := invoke(t, conn, "GetItems", map[string]any{"skus": []any{"S1", "S2"}})
	require.NoError(t, err)

	items := out.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	assert.Equal(t, "Red Sofa", items[0].GetStructValue().GetFields()["item_name"].GetStringValue())

	missing := out.GetFields()["items_not_found"].GetListValue().GetValues()
	require.Len(t, missing, 1)
	assert.Equal(t, "S2", missing[0].GetStringValue())

	_, err = invoke(t, conn, "GetItems", map[string]any{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSuggest(t *testing.T) {
	conn := dial(t, &fakeItemUC{}, &fakeSearchUC{})

	out, err := invoke(t, conn, "Suggest", map[string]any{"prefix": "so"})
	require.NoError(t, err)
	assert.Equal(t, "Sofa", out.GetFields()["suggestions"].GetListValue().GetValues()[0].GetStringValue())
}
