// Package redis caches the surcharge dictionary snapshot.
package redis

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    goredis "github.com/redis/go-redis/v9"

    "freightdesk/internal/domain"
)

const dictionaryKey = "freightdesk:surcharges:dictionary"

type DictionaryCache struct {
    client goredis.UniversalClient
    ttl    time.Duration
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string, ttl time.Duration) (*DictionaryCache, error) {
    opts, err := goredis.ParseURL(url)
    if err != nil {
        return nil, fmt.Errorf("redis url: %w", err)
    }
    client := goredis.NewClient(opts)
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    return New(client, ttl), nil
}

func New(client goredis.UniversalClient, ttl time.Duration) *DictionaryCache {
    return &DictionaryCache{client: client, ttl: ttl}
}

func (c *DictionaryCache) GetRefs(ctx context.Context) ([]domain.SurchargeRef, bool, error) {
    raw, err := c.client.Get(ctx, dictionaryKey).Bytes()
    if errors.Is(err, goredis.Nil) {
        return nil, false, nil
    }
    if err != nil { return nil, false, err }
    var refs []domain.SurchargeRef
    if err := json.Unmarshal(raw, &refs); err != nil {
        return nil, false, fmt.Errorf("decode cached dictionary: %w", err)
    }
    return refs, true, nil
}

func (c *DictionaryCache) SetRefs(ctx context.Context, refs []domain.SurchargeRef) error {
    if refs == nil {
        refs = []domain.SurchargeRef{}
    }
    raw, err := json.Marshal(refs)
    if err != nil { return err }
    return c.client.Set(ctx, dictionaryKey, raw, c.ttl).Err()
}

func (c *DictionaryCache) Invalidate(ctx context.Context) error {
    return c.client.Del(ctx, dictionaryKey).Err()
}

func (c *DictionaryCache) Close() error { return c.client.Close() }
