package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func newCachedStore(t *testing.T) (*CachedStorage, *MemStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mem := NewMemStorage()
	return NewCachedStorage(mem, rdb), mem, mr
}

func TestCachedStorage_Contract(t *testing.T) {
	runStorageContract(t, func(t *testing.T) Storage {
		s, _, _ := newCachedStore(t)
		return s
	})
}

func TestCachedStorage_ProductReadIsCached(t *testing.T) {
	ctx := context.Background()
	s, mem, mr := newCachedStore(t)

	p, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("5")})
	require.NoError(t, err)

	_, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(productKey(p.ID)))

	// a write that bypasses the decorator is not visible until the entry expires
	_, err = mem.UpdateProduct(ctx, p.ID, models.ProductPatch{Title: ptr("direct")})
	require.NoError(t, err)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)

	_, err = s.UpdateProduct(ctx, p.ID, models.ProductPatch{Description: ptr("D2")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(productKey(p.ID)))

	got, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "direct", got.Title)
	assert.Equal(t, "D2", got.Description)
}

func TestCachedStorage_NegativeEntryClearedOnCreate(t *testing.T) {
	ctx := context.Background()
	s, _, mr := newCachedStore(t)

	_, err := s.GetProduct(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)

	v, err := mr.Get(productKey(1))
	require.NoError(t, err)
	assert.Equal(t, notFoundMarker, v)

	p, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("5")})
	require.NoError(t, err)
	require.Equal(t, 1, p.ID)

	got, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
}

func TestCachedStorage_ListInvalidatedOnDelete(t *testing.T) {
	ctx := context.Background()
	s, _, mr := newCachedStore(t)

	p, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("5")})
	require.NoError(t, err)

	all, err := s.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, mr.Exists(productsAllKey))

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.False(t, mr.Exists(productsAllKey))

	all, err = s.GetProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCachedStorage_FallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	s, _, mr := newCachedStore(t)

	p, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("5")})
	require.NoError(t, err)

	mr.Close()

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}
