package cache_test

import (
	"context"
	"errors"
	"testing"

	sharedCache "github.com/davicafu/listingsearch/shared/platform/cache"
	"github.com/davicafu/listingsearch/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

type brokenCache struct{ sharedCache.Cache }

func (brokenCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, errors.New("redis caído")
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	c := mocks.NewDummyCache()
	require.NoError(t, c.Set(ctx, "k", item{Name: "Sunrise"}, 0))

	got, hit := sharedCache.Lookup[item](ctx, c, "k")
	require.True(t, hit)
	assert.Equal(t, "Sunrise", got.Name)

	_, hit = sharedCache.Lookup[item](ctx, c, "otra")
	assert.False(t, hit)

	_, hit = sharedCache.Lookup[item](ctx, nil, "k")
	assert.False(t, hit)

	_, hit = sharedCache.Lookup[item](ctx, brokenCache{}, "k")
	assert.False(t, hit)
}
