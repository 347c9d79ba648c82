package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsAlwaysMiss(t *testing.T) {
	var c *Redis
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []int{1}, time.Minute))

	var out []int
	assert.False(t, c.Get(ctx, "k", &out))

	n, err := c.Incr(ctx, "gen")
	require.NoError(t, err)
	assert.Zero(t, n)

	v, err := c.Version(ctx, "gen")
	require.NoError(t, err)
	assert.Zero(t, v)

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestConnectFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	c, err := Connect(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestFamily(t *testing.T) {
	assert.Equal(t, "products:all", family("products:all:42"))
	assert.Equal(t, "products:gen", family("products:gen"))
	assert.Equal(t, "a:b:x1", family("a:b:x1"))
	assert.Equal(t, "plain", family("plain"))
}
