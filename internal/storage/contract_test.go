package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleOrder() models.InsertOrder {
	return models.InsertOrder{
		TotalAmount:     dec("42.50"),
		ShippingAddress: "12 rue de Carthage, Tunis",
		PhoneNumber:     "+21650000000",
	}
}

// runStorageContract exercises the behaviour every Storage implementation shares.
func runStorageContract(t *testing.T, newStore func(t *testing.T) Storage) {
	ctx := context.Background()

	t.Run("product round trip applies defaults", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("10.00")})
		require.NoError(t, err)
		require.Positive(t, created.ID)

		got, err := s.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "T", got.Title)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("10")))
		assert.True(t, got.InStock)
		assert.Nil(t, got.ShipperID)
		assert.Nil(t, got.WholesalePrice)
		assert.Nil(t, got.Images)
		assert.Nil(t, got.Metadata)
	})

	t.Run("explicit inStock false is kept", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("1"), InStock: ptr(false)})
		require.NoError(t, err)

		got, err := s.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, got.InStock)
	})

	t.Run("products listed in creation order", func(t *testing.T) {
		s := newStore(t)
		for _, title := range []string{"a", "b", "c"} {
			_, err := s.CreateProduct(ctx, models.InsertProduct{Title: title, Description: "d", Price: dec("1")})
			require.NoError(t, err)
		}
		all, err := s.GetProducts(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "a", all[0].Title)
		assert.Equal(t, "c", all[2].Title)
	})

	t.Run("product patch is idempotent and partial", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreateProduct(ctx, models.InsertProduct{
			Title: "T", Description: "D", Price: dec("10"),
			Images:   []string{"https://img/1.png"},
			Metadata: models.Metadata{"category": "audio"},
		})
		require.NoError(t, err)

		patch := models.ProductPatch{Title: ptr("T2"), Price: dec("12.5")}
		first, err := s.UpdateProduct(ctx, created.ID, patch)
		require.NoError(t, err)
		second, err := s.UpdateProduct(ctx, created.ID, patch)
		require.NoError(t, err)

		assert.Equal(t, first.Title, second.Title)
		assert.True(t, first.Price.Equal(second.Price.Decimal))
		assert.Equal(t, "D", second.Description)
		assert.Equal(t, []string{"https://img/1.png"}, second.Images)
		assert.Equal(t, "audio", second.Category())
	})

	t.Run("updating a missing product reports not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UpdateProduct(ctx, 999, models.ProductPatch{Title: ptr("x")})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is a no-op for unknown ids", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.DeleteProduct(ctx, 12345))

		created, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("1")})
		require.NoError(t, err)
		require.NoError(t, s.DeleteProduct(ctx, created.ID))
		require.NoError(t, s.DeleteProduct(ctx, created.ID))

		_, err = s.GetProduct(ctx, created.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("order defaults to pending and keeps createdAt", func(t *testing.T) {
		s := newStore(t)
		o, err := s.CreateOrder(ctx, sampleOrder())
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.False(t, o.CreatedAt.IsZero())

		updated, err := s.UpdateOrder(ctx, o.ID, models.OrderPatch{Status: ptr(models.OrderStatusConfirmed)})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
		assert.Equal(t, o.ID, updated.ID)
		assert.True(t, o.CreatedAt.Equal(updated.CreatedAt))
		assert.Equal(t, o.ShippingAddress, updated.ShippingAddress)
	})

	t.Run("updating a missing order reports not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UpdateOrder(ctx, 404, models.OrderPatch{Status: ptr(models.OrderStatusShipped)})
		require.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetOrder(ctx, 404)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("order items filtered by order", func(t *testing.T) {
		s := newStore(t)
		o1, err := s.CreateOrder(ctx, sampleOrder())
		require.NoError(t, err)
		o2, err := s.CreateOrder(ctx, sampleOrder())
		require.NoError(t, err)

		for _, oid := range []int{o1.ID, o1.ID, o2.ID} {
			_, err := s.CreateOrderItem(ctx, models.InsertOrderItem{
				OrderID: ptr(oid), ProductID: ptr(7), Quantity: ptr(2), Price: dec("3.10"),
			})
			require.NoError(t, err)
		}

		items, err := s.GetOrderItems(ctx, o1.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		for _, it := range items {
			assert.Equal(t, o1.ID, it.OrderID)
			assert.Equal(t, 2, it.Quantity)
		}

		none, err := s.GetOrderItems(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("order found by tracking code", func(t *testing.T) {
		s := newStore(t)
		in := sampleOrder()
		in.TrackingCode = ptr("TRK-1")
		o, err := s.CreateOrder(ctx, in)
		require.NoError(t, err)

		got, err := s.GetOrderByTrackingCode(ctx, "TRK-1")
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)

		_, err = s.GetOrderByTrackingCode(ctx, "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ids are not reused after deleting the newest row", func(t *testing.T) {
		s := newStore(t)
		a, err := s.CreateProduct(ctx, models.InsertProduct{Title: "a", Description: "d", Price: dec("1")})
		require.NoError(t, err)
		b, err := s.CreateProduct(ctx, models.InsertProduct{Title: "b", Description: "d", Price: dec("1")})
		require.NoError(t, err)
		require.Greater(t, b.ID, a.ID)

		require.NoError(t, s.DeleteProduct(ctx, b.ID))

		c, err := s.CreateProduct(ctx, models.InsertProduct{Title: "c", Description: "d", Price: dec("1")})
		require.NoError(t, err)
		assert.Greater(t, c.ID, b.ID)
	})

	t.Run("prices keep two fraction digits", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreateProduct(ctx, models.InsertProduct{
			Title: "T", Description: "D", Price: dec("10.00"), WholesalePrice: dec("7.5"),
		})
		require.NoError(t, err)

		got, err := s.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "10.00", got.Price.String())
		require.NotNil(t, got.WholesalePrice)
		assert.Equal(t, "7.50", got.WholesalePrice.String())
	})

	t.Run("patched metadata is copied", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreateProduct(ctx, models.InsertProduct{Title: "T", Description: "D", Price: dec("1")})
		require.NoError(t, err)

		meta := models.Metadata{"category": "audio"}
		_, err = s.UpdateProduct(ctx, created.ID, models.ProductPatch{Metadata: meta})
		require.NoError(t, err)
		meta["category"] = "video"

		got, err := s.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "audio", got.Category())
	})

	t.Run("conditional order update rejects a stale status", func(t *testing.T) {
		s := newStore(t)
		o, err := s.CreateOrder(ctx, sampleOrder())
		require.NoError(t, err)

		_, err = s.UpdateOrder(ctx, o.ID, models.OrderPatch{
			Status:         ptr(models.OrderStatusShipped),
			ExpectedStatus: ptr(models.OrderStatusConfirmed),
		})
		require.ErrorIs(t, err, ErrConflict)

		got, err := s.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, got.Status)

		updated, err := s.UpdateOrder(ctx, o.ID, models.OrderPatch{
			Status:         ptr(models.OrderStatusConfirmed),
			ExpectedStatus: ptr(models.OrderStatusPending),
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
	})

	t.Run("users get the default role and unique names", func(t *testing.T) {
		s := newStore(t)
		u, err := s.CreateUser(ctx, models.InsertUser{Username: "amira", Password: "hash"})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultRole, u.Role)

		byName, err := s.GetUserByUsername(ctx, "amira")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)

		_, err = s.CreateUser(ctx, models.InsertUser{Username: "amira", Password: "other"})
		require.ErrorIs(t, err, ErrConflict)

		_, err = s.GetUser(ctx, u.ID+100)
		require.ErrorIs(t, err, ErrNotFound)
	})
}
