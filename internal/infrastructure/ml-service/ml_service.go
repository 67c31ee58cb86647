package ml_service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/jitter"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Методы gRPC-сервиса эмбеддингов. Сообщения передаются как google.protobuf.Struct.
const (
	encodeImageMethod = "/ml.v1.EmbeddingService/EncodeImage"
	encodeTextMethod  = "/ml.v1.EmbeddingService/EncodeText"
)

// MLService клиент внешнего ML-сервиса, отображающего изображения и текст в общее векторное пространство.
type MLService struct {
	conn       grpc.ClientConnInterface
	dim        int
	maxRetries int
	timeout    time.Duration
	sem        chan struct{}
	logger     logger.Logger
}

func NewMLService(conn grpc.ClientConnInterface, cfg *cfg.MLServiceCfg, dim int, logger logger.Logger) *MLService {
	return &MLService{
		conn:       conn,
		dim:        dim,
		maxRetries: max(cfg.MaxRetries, 1),
		timeout:    cfg.Timeout,
		sem:        make(chan struct{}, max(cfg.MaxConcurrent, 1)),
		logger:     logger,
	}
}

// EncodeImage возвращает эмбеддинг изображения. При normalize вектор приводится к единичной норме.
func (m *MLService) EncodeImage(ctx context.Context, data []byte, normalize bool) (domain.Vector, error) {
	return m.encode(ctx, encodeImageMethod, map[string]any{
		"image":     base64.StdEncoding.EncodeToString(data),
		"normalize": normalize,
	}, normalize)
}

// EncodeText возвращает эмбеддинг текста.
func (m *MLService) EncodeText(ctx context.Context, text string, normalize bool) (domain.Vector, error) {
	return m.encode(ctx, encodeTextMethod, map[string]any{
		"text":      text,
		"normalize": normalize,
	}, normalize)
}

// encode выполняет запрос с retry-логикой и экспоненциальной задержкой.
func (m *MLService) encode(ctx context.Context, method string, fields map[string]any, normalize bool) (domain.Vector, error) {
	const (
		op         = "MLService.encode"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var vector domain.Vector
	err = jitter.Retry(ctx, m.maxRetries, baseJitter, maxJitter, func(attempt int) error {
		v, err := m.invoke(ctx, method, req)
		if err != nil {
			m.logger.Warnf("%s %s failed (attempt %d/%d): %v", op, method, attempt+1, m.maxRetries, err)
			return err
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, e.Upstream(err))
	}

	if err := vector.Validate(m.dim); err != nil {
		return nil, e.Wrap(op, err)
	}
	if vector.Empty() {
		return nil, e.Wrap(op, e.ErrVectorEmbeddingEmpty)
	}

	if normalize {
		vector = vector.Normalize()
	}

	return vector, nil
}

func (m *MLService) invoke(ctx context.Context, method string, req *structpb.Struct) (domain.Vector, error) {
	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	res := &structpb.Struct{}
	if err := m.conn.Invoke(ctx, method, req, res); err != nil {
		return nil, err
	}

	return vectorFromStruct(res)
}

func vectorFromStruct(res *structpb.Struct) (domain.Vector, error) {
	list := res.GetFields()["vector"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("response has no vector")
	}

	values := list.GetValues()
	vector := make(domain.Vector, len(values))
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("vector[%d] is not a number", i)
		}
		vector[i] = float32(n.NumberValue)
	}

	return vector, nil
}
