package ml_service

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeConn struct {
	vector   []any
	failures int32
	calls    atomic.Int32
	lastReq  *structpb.Struct
	method   string
}

func (f *fakeConn) Invoke(_ context.Context, method string, args any, reply any, _ ...grpc.CallOption) error {
	n := f.calls.Add(1)
	f.method = method
	f.lastReq = args.(*structpb.Struct)
	if n <= f.failures {
		return errors.New("unavailable")
	}

	res, err := structpb.NewStruct(map[string]any{"vector": f.vector})
	if err != nil {
		return err
	}
	proto.Merge(reply.(*structpb.Struct), res)
	return nil
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

func newService(conn *fakeConn, dim int) *MLService {
	return NewMLService(conn, &cfg.MLServiceCfg{MaxConcurrent: 2, MaxRetries: 1, Timeout: time.Second}, dim, logger.NewNop())
}

func TestEncodeImage_Normalized(t *testing.T) {
	conn := &fakeConn{vector: []any{3.0, 4.0}}
	svc := newService(conn, 2)

	v, err := svc.EncodeImage(context.Background(), []byte{0xff, 0xd8}, true)
	require.NoError(t, err)

	assert.Equal(t, encodeImageMethod, conn.method)
	assert.Equal(t, "/9g=", conn.lastReq.GetFields()["image"].GetStringValue())
	assert.True(t, conn.lastReq.GetFields()["normalize"].GetBoolValue())
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestEncodeText_RawWhenNotNormalized(t *testing.T) {
	conn := &fakeConn{vector: []any{3.0, 4.0}}
	svc := newService(conn, 2)

	v, err := svc.EncodeText(context.Background(), "oak chair", false)
	require.NoError(t, err)
	assert.Equal(t, encodeTextMethod, conn.method)
	assert.Equal(t, "oak chair", conn.lastReq.GetFields()["text"].GetStringValue())
	assert.InDelta(t, 3.0, v[0], 1e-6)
}

func TestEncode_DimensionMismatch(t *testing.T) {
	svc := newService(&fakeConn{vector: []any{1.0, 2.0, 3.0}}, 2)

	_, err := svc.EncodeText(context.Background(), "x", true)
	assert.ErrorIs(t, err, e.ErrVectorDimMismatch)
}

func TestEncode_EmptyVector(t *testing.T) {
	svc := newService(&fakeConn{vector: []any{}}, 2)

	_, err := svc.EncodeText(context.Background(), "x", true)
	assert.ErrorIs(t, err, e.ErrVectorEmbeddingEmpty)
}

func TestEncode_UpstreamFailure(t *testing.T) {
	conn := &fakeConn{vector: []any{1.0, 0.0}, failures: 10}
	svc := newService(conn, 2)

	_, err := svc.EncodeImage(context.Background(), []byte{1}, true)
	assert.ErrorIs(t, err, e.ErrUpstreamUnavailable)
	assert.EqualValues(t, 1, conn.calls.Load())
}

func TestVectorFromStruct_RejectsNonNumbers(t *testing.T) {
	res, err := structpb.NewStruct(map[string]any{"vector": []any{1.0, "x"}})
	require.NoError(t, err)

	_, err = vectorFromStruct(res)
	assert.Error(t, err)

	_, err = vectorFromStruct(&structpb.Struct{})
	assert.Error(t, err)
}
