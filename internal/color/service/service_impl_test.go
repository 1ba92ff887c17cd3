package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/color/domain"
	"github.com/smallbiznis/stockroom/internal/testkit"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (domain.Service, *testkit.Env) {
	t.Helper()
	env := testkit.New(t)
	svc := New(Params{
		DB:        env.DB,
		Log:       env.Log,
		GenID:     env.Node,
		Clock:     env.Clock,
		Repo:      env.Colors,
		Variants:  env.Variants,
		Inventory: env.Inventory,
	})
	return svc, env
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	red, err := svc.Create(ctx, domain.CreateRequest{Name: "Red", Code: "#FF0000"})
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", red.Code)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Red", Code: "#FF0001"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestUpdateCodeKeepsName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	red, err := svc.Create(ctx, domain.CreateRequest{Name: "Red", Code: "#FF0000"})
	require.NoError(t, err)

	name, code := "Red", "#8B0000"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: red.ID, Name: &name, Code: &code})
	require.NoError(t, err)
	assert.Equal(t, "Red", updated.Name)
	assert.Equal(t, "#8B0000", updated.Code)

	got, err := svc.Get(ctx, red.ID)
	require.NoError(t, err)
	assert.Equal(t, "#8B0000", got.Code)
}

func TestUpdateRenameToTakenName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Red", Code: "#FF0000"})
	require.NoError(t, err)
	blue, err := svc.Create(ctx, domain.CreateRequest{Name: "Blue", Code: "#0000FF"})
	require.NoError(t, err)

	name := "Red"
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: blue.ID, Name: &name})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestBatchCreateIsAllOrNothing(t *testing.T) {
	cases := []struct {
		name  string
		seed  []string
		batch []string
	}{
		{name: "duplicate inside batch", batch: []string{"Red", "Green", "Red"}},
		{name: "duplicate of stored color", seed: []string{"Green"}, batch: []string{"Red", "Green", "Blue"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, env := newTestService(t)
			ctx := context.Background()
			for _, name := range tc.seed {
				env.CreateColor(t, name, "#000000")
			}

			reqs := make([]domain.CreateRequest, 0, len(tc.batch))
			for _, name := range tc.batch {
				reqs = append(reqs, domain.CreateRequest{Name: name, Code: "#123456"})
			}
			_, err := svc.BatchCreate(ctx, reqs)
			require.ErrorIs(t, err, domain.ErrAlreadyExists)

			list, err := svc.List(ctx, domain.ListRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.seed)), list.PageInfo.Total)
		})
	}
}

func TestBatchCreate(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.BatchCreate(context.Background(), []domain.CreateRequest{
		{Name: "Red", Code: "#FF0000"},
		{Name: "Green", Code: "#00FF00"},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	_, err = svc.BatchCreate(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestGetAndDeleteUnknown(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()
	missing := env.Node.Generate().String()

	_, err := svc.Get(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	name := "Red"
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: missing, Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, missing), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "not-a-number"), domain.ErrInvalidID)
}

func TestDeleteRejectsColorInUse(t *testing.T) {
	svc, env := newTestService(t)
	ctx := context.Background()

	cat := env.CreateCategory(t, "Shirts")
	product := env.CreateProduct(t, cat.ID, "Tee")
	color := env.CreateColor(t, "Red", "#FF0000")
	size := env.CreateSize(t, "M")
	now := env.Clock.Now()
	require.NoError(t, env.DB.Create(&variantdomain.Variant{
		ID: env.Node.Generate().Int64(), ProductID: product.ID, ColorID: color.ID, SizeID: size.ID,
		Quantity: 1, CreatedAt: now, UpdatedAt: now,
	}).Error)

	err := svc.Delete(ctx, snowflake.ID(color.ID).String())
	assert.True(t, errors.Is(err, domain.ErrInUse), "got %v", err)

	unused := env.CreateColor(t, "Blue", "#0000FF")
	require.NoError(t, svc.Delete(ctx, snowflake.ID(unused.ID).String()))
}

func TestListPaginates(t *testing.T) {
	svc, env := newTestService(t)
	for _, name := range []string{"Amber", "Beige", "Coral"} {
		env.CreateColor(t, name, "#000000")
	}

	list, err := svc.List(context.Background(), domain.ListRequest{
		SortBy:  "name",
		OrderBy: "asc",
		Page:    pagination.Page{Page: 2, PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Coral", list.Data[0].Name)
	assert.Equal(t, int64(3), list.PageInfo.Total)
	assert.False(t, list.PageInfo.HasMore)
}
