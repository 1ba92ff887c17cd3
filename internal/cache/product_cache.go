package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/stockroom/internal/config"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
)

// ProductCache holds rendered product responses for the read path.
//
// Every Invalidate bumps a per-product generation. Readers take the
// generation before loading from the database and hand it back to Set, which
// drops the write if an invalidation happened in between.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*productdomain.Response, bool, error)
	Generation(ctx context.Context, id int64) (int64, error)
	Set(ctx context.Context, id int64, generation int64, product *productdomain.Response) error
	Invalidate(ctx context.Context, ids ...int64) error
}

func ProductKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func generationKey(id int64) string {
	return fmt.Sprintf("product:%d:gen", id)
}

type memoryProductCache struct {
	mu          sync.Mutex
	generations map[int64]int64
	items       Cache[string, productdomain.Response]
	inventory   *config.InventoryConfigHolder
}

func NewMemoryProductCache(inventory *config.InventoryConfigHolder) ProductCache {
	return &memoryProductCache{
		generations: make(map[int64]int64),
		items:       NewTTLCache[string, productdomain.Response](),
		inventory:   inventory,
	}
}

func (c *memoryProductCache) Get(_ context.Context, id int64) (*productdomain.Response, bool, error) {
	resp, ok := c.items.Get(ProductKey(id))
	if !ok {
		return nil, false, nil
	}
	return &resp, true, nil
}

func (c *memoryProductCache) Generation(_ context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id], nil
}

func (c *memoryProductCache) Set(_ context.Context, id int64, generation int64, product *productdomain.Response) error {
	ttl := c.inventory.Get().ProductCacheTTL
	if product == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] != generation {
		return nil
	}
	c.items.Set(ProductKey(id), *product, ttl)
	return nil
}

func (c *memoryProductCache) Invalidate(_ context.Context, ids ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.generations[id]++
		c.items.Delete(ProductKey(id))
	}
	return nil
}

// setIfGeneration writes KEYS[1] only while KEYS[2] still holds ARGV[1].
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type redisProductCache struct {
	client    *redis.Client
	inventory *config.InventoryConfigHolder
}

func NewRedisProductCache(client *redis.Client, inventory *config.InventoryConfigHolder) ProductCache {
	return &redisProductCache{client: client, inventory: inventory}
}

func (c *redisProductCache) Get(ctx context.Context, id int64) (*productdomain.Response, bool, error) {
	raw, err := c.client.Get(ctx, ProductKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var resp productdomain.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		// A payload we cannot read is a miss; the next Set overwrites it.
		return nil, false, nil
	}
	return &resp, true, nil
}

func (c *redisProductCache) Generation(ctx context.Context, id int64) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisProductCache) Set(ctx context.Context, id int64, generation int64, product *productdomain.Response) error {
	ttl := c.inventory.Get().ProductCacheTTL
	if product == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return err
	}
	keys := []string{ProductKey(id), generationKey(id)}
	return setIfGeneration.Run(ctx, c.client, keys, strconv.FormatInt(generation, 10), raw, ttl.Milliseconds()).Err()
}

func (c *redisProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, generationKey(id))
			pipe.Del(ctx, ProductKey(id))
		}
		return nil
	})
	return err
}

