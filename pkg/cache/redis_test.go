package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to BELTFLOW_TEST_REDIS or skips.
func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("BELTFLOW_TEST_REDIS")
	if url == "" {
		t.Skip("BELTFLOW_TEST_REDIS not set")
	}
	c, err := NewRedisCache(context.Background(), url, "beltflow-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "svg")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "svg", []byte("<svg/>"), time.Minute))
	data, hit, err := c.Get(ctx, "svg")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "<svg/>", string(data))

	require.NoError(t, c.Delete(ctx, "svg"))
	_, hit, _ = c.Get(ctx, "svg")
	assert.False(t, hit)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "http://not-redis", "")
	assert.Error(t, err)
}
