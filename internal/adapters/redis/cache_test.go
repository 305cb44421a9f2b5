package redis

import (
    "context"
    "os"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "freightdesk/internal/domain"
)

// Requires a running Redis; skipped otherwise.
func TestDictionaryCache_Integration(t *testing.T) {
    url := os.Getenv("REDIS_URL")
    if url == "" {
        url = "redis://localhost:6379/15"
    }
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    cache, err := Connect(ctx, url, time.Minute)
    if err != nil {
        t.Skipf("Skipping Redis integration test: %v", err)
    }
    defer func() { _ = cache.Close() }()
    require.NoError(t, cache.Invalidate(ctx))

    _, found, err := cache.GetRefs(ctx)
    require.NoError(t, err)
    assert.False(t, found)

    refs := []domain.SurchargeRef{{RawName: "BAF", NormalizedName: "Bunker Adjustment Factor", Category: "Fuel", Approved: true}}
    require.NoError(t, cache.SetRefs(ctx, refs))
    got, found, err := cache.GetRefs(ctx)
    require.NoError(t, err)
    assert.True(t, found)
    assert.Equal(t, refs, got)

    require.NoError(t, cache.SetRefs(ctx, nil))
    got, found, err = cache.GetRefs(ctx)
    require.NoError(t, err)
    assert.True(t, found, "an empty dictionary is still a cached answer")
    assert.Empty(t, got)

    require.NoError(t, cache.Invalidate(ctx))
    _, found, err = cache.GetRefs(ctx)
    require.NoError(t, err)
    assert.False(t, found)
}

func TestConnect_BadURL(t *testing.T) {
    _, err := Connect(context.Background(), "not a url", time.Minute)
    assert.Error(t, err)
}
