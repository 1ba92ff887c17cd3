package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/cache"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	"github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/testkit"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	variantservice "github.com/smallbiznis/stockroom/internal/variant/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env      *testkit.Env
	svc      domain.Service
	variants variantdomain.Service
	cache    cache.ProductCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testkit.New(t)
	productCache := cache.NewMemoryProductCache(env.Inventory)

	return &fixture{
		env:   env,
		cache: productCache,
		svc: New(Params{
			DB:         env.DB,
			Log:        env.Log,
			GenID:      env.Node,
			Clock:      env.Clock,
			Repo:       env.Products,
			Categories: env.Categories,
			Variants:   env.Variants,
			Engine:     env.Engine,
			Inventory:  env.Inventory,
			Cache:      productCache,
		}),
		variants: variantservice.New(variantservice.Params{
			DB:        env.DB,
			Log:       env.Log,
			GenID:     env.Node,
			Clock:     env.Clock,
			Repo:      env.Variants,
			Products:  env.Products,
			Colors:    env.Colors,
			Sizes:     env.Sizes,
			Engine:    env.Engine,
			Inventory: env.Inventory,
			Cache:     productCache,
		}),
	}
}

func id(v int64) string { return snowflake.ID(v).String() }

// stock gives product a single variant with qty units.
func (f *fixture) stock(t *testing.T, productID string, qty int64) {
	t.Helper()
	color := f.env.CreateColor(t, "Color "+f.env.Node.Generate().String(), "#000000")
	size := f.env.CreateSize(t, "Size "+f.env.Node.Generate().String())
	_, err := f.variants.Create(context.Background(), variantdomain.CreateRequest{
		ProductID: productID, ColorID: id(color.ID), SizeID: id(size.ID), Quantity: qty,
	})
	require.NoError(t, err)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.env.CreateCategory(t, "Shirts")

	tee, err := f.svc.Create(ctx, domain.CreateRequest{
		Name: "Tee", Price: decimal.RequireFromString("12.499"), CategoryID: id(cat.ID),
	})
	require.NoError(t, err)
	assert.True(t, tee.Enable)
	assert.False(t, tee.InStock)
	assert.Zero(t, tee.Total)
	assert.True(t, decimal.RequireFromString("12.50").Equal(tee.Price))

	disabled := false
	hidden, err := f.svc.Create(ctx, domain.CreateRequest{
		Name: "Hidden", Price: decimal.NewFromInt(5), CategoryID: id(cat.ID), Enable: &disabled,
	})
	require.NoError(t, err)
	assert.False(t, hidden.Enable)

	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(1), CategoryID: id(cat.ID)})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.env.CreateCategory(t, "Shirts")

	tests := []struct {
		name string
		req  domain.CreateRequest
		want error
	}{
		{"blank name", domain.CreateRequest{Name: " ", CategoryID: id(cat.ID)}, domain.ErrInvalidName},
		{"negative price", domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(-1), CategoryID: id(cat.ID)}, domain.ErrInvalidPrice},
		{"malformed category", domain.CreateRequest{Name: "Tee", CategoryID: "abc"}, domain.ErrInvalidCategory},
		{"unknown category", domain.CreateRequest{Name: "Tee", CategoryID: f.env.Node.Generate().String()}, categorydomain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateMovesTotalBetweenCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirts := f.env.CreateCategory(t, "Shirts")
	sale := f.env.CreateCategory(t, "Sale")

	tee, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(10), CategoryID: id(shirts.ID)})
	require.NoError(t, err)
	f.stock(t, tee.ID, 12)
	assert.Equal(t, int64(12), f.env.Category(t, shirts.ID).Stock)

	target := id(sale.ID)
	moved, err := f.svc.Update(ctx, domain.UpdateRequest{ID: tee.ID, CategoryID: &target})
	require.NoError(t, err)
	assert.Equal(t, target, moved.CategoryID)
	assert.Equal(t, int64(12), moved.Total)

	assert.Zero(t, f.env.Category(t, shirts.ID).Stock)
	assert.Equal(t, int64(12), f.env.Category(t, sale.ID).Stock)
	f.env.AssertConsistent(t)

	missing := f.env.Node.Generate().String()
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: tee.ID, CategoryID: &missing})
	assert.ErrorIs(t, err, categorydomain.ErrNotFound)
	f.env.AssertConsistent(t)
}

func TestUpdateNameGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.env.CreateCategory(t, "Shirts")

	tee, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(10), CategoryID: id(cat.ID)})
	require.NoError(t, err)
	polo, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Polo", Price: decimal.NewFromInt(20), CategoryID: id(cat.ID)})
	require.NoError(t, err)

	taken := "Tee"
	_, err = f.svc.Update(ctx, domain.UpdateRequest{ID: polo.ID, Name: &taken})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	price := decimal.NewFromInt(15)
	updated, err := f.svc.Update(ctx, domain.UpdateRequest{ID: tee.ID, Name: &taken, Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
}

func TestDeleteRemovesVariantsAndCategoryStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.env.CreateCategory(t, "Shirts")

	tee, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(10), CategoryID: id(cat.ID)})
	require.NoError(t, err)
	polo, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Polo", Price: decimal.NewFromInt(20), CategoryID: id(cat.ID)})
	require.NoError(t, err)
	f.stock(t, tee.ID, 7)
	f.stock(t, tee.ID, 3)
	f.stock(t, polo.ID, 4)
	assert.Equal(t, int64(14), f.env.Category(t, cat.ID).Stock)

	require.NoError(t, f.svc.Delete(ctx, tee.ID))

	assert.Equal(t, int64(4), f.env.Category(t, cat.ID).Stock)
	remaining, err := f.variants.List(ctx, variantdomain.ListRequest{ProductID: tee.ID})
	require.NoError(t, err)
	assert.Zero(t, remaining.PageInfo.Total)
	f.env.AssertConsistent(t)

	_, err = f.svc.Get(ctx, tee.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, tee.ID), domain.ErrNotFound)
}

func TestGetReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.env.CreateCategory(t, "Shirts")

	tee, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(10), CategoryID: id(cat.ID)})
	require.NoError(t, err)

	first, err := f.svc.Get(ctx, tee.ID)
	require.NoError(t, err)
	assert.Zero(t, first.Total)

	productID, err := snowflake.ParseString(tee.ID)
	require.NoError(t, err)
	_, ok, err := f.cache.Get(ctx, productID.Int64())
	require.NoError(t, err)
	assert.True(t, ok)

	f.stock(t, tee.ID, 6)

	second, err := f.svc.Get(ctx, tee.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), second.Total)
	assert.True(t, second.InStock)
}

// interleavingCache runs hook once, right after the reader has taken its
// generation, to stand in for a mutation committing mid-read.
type interleavingCache struct {
	cache.ProductCache
	hook func()
}

func (c *interleavingCache) Generation(ctx context.Context, id int64) (int64, error) {
	gen, err := c.ProductCache.Generation(ctx, id)
	if c.hook != nil {
		hook := c.hook
		c.hook = nil
		hook()
	}
	return gen, err
}

func TestGetDoesNotCacheAcrossInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.env.CreateCategory(t, "Shirts")

	tee, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(10), CategoryID: id(cat.ID)})
	require.NoError(t, err)
	productID, err := snowflake.ParseString(tee.ID)
	require.NoError(t, err)

	racing := &interleavingCache{
		ProductCache: f.cache,
		hook: func() {
			require.NoError(t, f.cache.Invalidate(ctx, productID.Int64()))
		},
	}
	svc := New(Params{
		DB:         f.env.DB,
		Log:        f.env.Log,
		GenID:      f.env.Node,
		Clock:      f.env.Clock,
		Repo:       f.env.Products,
		Categories: f.env.Categories,
		Variants:   f.env.Variants,
		Engine:     f.env.Engine,
		Inventory:  f.env.Inventory,
		Cache:      racing,
	})

	_, err = svc.Get(ctx, tee.ID)
	require.NoError(t, err)

	_, ok, err := f.cache.Get(ctx, productID.Int64())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Get(ctx, tee.ID)
	require.NoError(t, err)
	_, ok, err = f.cache.Get(ctx, productID.Int64())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shirts := f.env.CreateCategory(t, "Shirts")
	pants := f.env.CreateCategory(t, "Pants")

	tee, err := f.svc.Create(ctx, domain.CreateRequest{Name: "Tee", Price: decimal.NewFromInt(10), CategoryID: id(shirts.ID)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "Polo", Price: decimal.NewFromInt(30), CategoryID: id(shirts.ID)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRequest{Name: "Chino", Price: decimal.NewFromInt(45), CategoryID: id(pants.ID)})
	require.NoError(t, err)
	f.stock(t, tee.ID, 2)

	byCategory, err := f.svc.List(ctx, domain.ListRequest{CategoryID: id(shirts.ID)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byCategory.PageInfo.Total)

	inStock := true
	stocked, err := f.svc.List(ctx, domain.ListRequest{InStock: &inStock})
	require.NoError(t, err)
	require.Len(t, stocked.Data, 1)
	assert.Equal(t, "Tee", stocked.Data[0].Name)

	minPrice := decimal.NewFromInt(20)
	pricey, err := f.svc.List(ctx, domain.ListRequest{MinPrice: &minPrice, SortBy: "price", OrderBy: "desc"})
	require.NoError(t, err)
	require.Len(t, pricey.Data, 2)
	assert.Equal(t, "Chino", pricey.Data[0].Name)

	_, err = f.svc.List(ctx, domain.ListRequest{CategoryID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}
