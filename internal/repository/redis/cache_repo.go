package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/internal/domain"
	"github.com/DRSN-tech/furniture-search/internal/repository/redis/converter"
	"github.com/DRSN-tech/furniture-search/pkg/clients"
	"github.com/DRSN-tech/furniture-search/pkg/e"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ItemConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ItemConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetItem возвращает товар из кэша; при промахе возвращает (nil, nil).
func (c *CacheRepo) GetItem(ctx context.Context, sku string) (*domain.Item, error) {
	key := itemKey(sku)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := unmarshalItem(data)
	if err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, nil
	}

	if model.SKU != sku {
		c.logger.Warnf("Cache SKU mismatch: key_sku: %s, model_sku: %s", sku, model.SKU)
		if err := c.client.Client.Del(context.Background(), key).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil
	}

	return c.conv.ToDomain(model), nil
}

// SetItem кэширует карточку товара с TTL из конфигурации.
func (c *CacheRepo) SetItem(ctx context.Context, item *domain.Item) error {
	data, err := marshalItem(c.conv.ToRedisModel(item))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, itemKey(item.SKU), data, c.cfg.ItemTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteItems удаляет товары из кэша. Ошибка Redis только логируется.
func (c *CacheRepo) DeleteItems(ctx context.Context, skus []string) error {
	if len(skus) == 0 {
		return nil
	}

	keys := make([]string, len(skus))
	for i, sku := range skus {
		keys[i] = itemKey(sku)
	}

	if err := c.client.Client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

func marshalItem(model *converter.ItemRedisModel) ([]byte, error) {
	return json.Marshal(model)
}

func unmarshalItem(data []byte) (*converter.ItemRedisModel, error) {
	var model converter.ItemRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// itemKey возвращает Redis-ключ товара.
func itemKey(sku string) string {
	return fmt.Sprintf("item:%s", sku)
}
