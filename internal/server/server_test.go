package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stockroom/internal/cache"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	categoryservice "github.com/smallbiznis/stockroom/internal/category/service"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	colorservice "github.com/smallbiznis/stockroom/internal/color/service"
	movementservice "github.com/smallbiznis/stockroom/internal/movement/service"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	productservice "github.com/smallbiznis/stockroom/internal/product/service"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	sizeservice "github.com/smallbiznis/stockroom/internal/size/service"
	"github.com/smallbiznis/stockroom/internal/testkit"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	variantservice "github.com/smallbiznis/stockroom/internal/variant/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *testkit.Env) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := testkit.New(t)
	productCache := cache.NewMemoryProductCache(env.Inventory)

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin: r,
		Log: env.Log,
		CategorySvc: categoryservice.New(categoryservice.Params{
			DB: env.DB, Log: env.Log, GenID: env.Node, Clock: env.Clock,
			Repo: env.Categories, Products: env.Products, Inventory: env.Inventory,
		}),
		ColorSvc: colorservice.New(colorservice.Params{
			DB: env.DB, Log: env.Log, GenID: env.Node, Clock: env.Clock,
			Repo: env.Colors, Variants: env.Variants, Inventory: env.Inventory,
		}),
		SizeSvc: sizeservice.New(sizeservice.Params{
			DB: env.DB, Log: env.Log, GenID: env.Node, Clock: env.Clock,
			Repo: env.Sizes, Variants: env.Variants, Inventory: env.Inventory,
		}),
		ProductSvc: productservice.New(productservice.Params{
			DB: env.DB, Log: env.Log, GenID: env.Node, Clock: env.Clock,
			Repo: env.Products, Categories: env.Categories, Variants: env.Variants,
			Engine: env.Engine, Inventory: env.Inventory, Cache: productCache,
		}),
		VariantSvc: variantservice.New(variantservice.Params{
			DB: env.DB, Log: env.Log, GenID: env.Node, Clock: env.Clock,
			Repo: env.Variants, Products: env.Products, Colors: env.Colors, Sizes: env.Sizes,
			Engine: env.Engine, Inventory: env.Inventory, Cache: productCache,
		}),
		MovementSvc: movementservice.New(movementservice.Params{
			DB: env.DB, Log: env.Log, Repo: env.Movements, Inventory: env.Inventory,
		}),
		Reconciler: env.Reconciler,
	})
	return srv, env
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func TestInventoryFlow(t *testing.T) {
	srv, env := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/categories", map[string]any{"name": "Shirts"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decodeData[categorydomain.Response](t, rec)

	rec = do(t, srv, http.MethodPost, "/api/products", map[string]any{
		"name": "Tee", "price": "19.90", "category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decodeData[productdomain.Response](t, rec)

	rec = do(t, srv, http.MethodPost, "/api/colors", map[string]any{"name": "Red", "code": "#FF0000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	red := decodeData[colordomain.Response](t, rec)

	rec = do(t, srv, http.MethodPost, "/api/sizes", map[string]any{
		"name": "M", "min_height": 160, "max_height": 175, "min_weight": 55, "max_weight": 70,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	medium := decodeData[sizedomain.Response](t, rec)

	rec = do(t, srv, http.MethodPost, "/api/variants", map[string]any{
		"product_id": product.ID, "color_id": red.ID, "size_id": medium.ID, "quantity": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	variant := decodeData[variantdomain.Response](t, rec)

	rec = do(t, srv, http.MethodPatch, "/api/variants/"+variant.ID, map[string]any{"quantity": 15})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[productdomain.Response](t, rec)
	assert.Equal(t, int64(15), got.Total)
	assert.True(t, got.InStock)

	rec = do(t, srv, http.MethodGet, "/api/categories/"+cat.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(15), decodeData[categorydomain.Response](t, rec).Stock)

	rec = do(t, srv, http.MethodDelete, "/api/colors/"+red.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, colordomain.ErrInUse.Error(), decodeError(t, rec).Message)

	rec = do(t, srv, http.MethodGet, "/api/products/"+product.ID+"/movements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movements struct {
		PageInfo struct {
			Total int64 `json:"total"`
		} `json:"page_info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	assert.Equal(t, int64(2), movements.PageInfo.Total)

	rec = do(t, srv, http.MethodDelete, "/api/variants/"+variant.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	env.AssertConsistent(t)
}

func TestErrorResponses(t *testing.T) {
	srv, env := newTestServer(t)
	cat := env.CreateCategory(t, "Shirts")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		typ    string
	}{
		{"duplicate category", http.MethodPost, "/api/categories", map[string]any{"name": "Shirts"}, http.StatusConflict, "conflict"},
		{"missing name", http.MethodPost, "/api/colors", map[string]any{"code": "#000"}, http.StatusBadRequest, "validation_error"},
		{"empty batch", http.MethodPost, "/api/colors/batch", map[string]any{"items": []any{}}, http.StatusBadRequest, "validation_error"},
		{"malformed id", http.MethodGet, "/api/variants/abc", nil, http.StatusBadRequest, "validation_error"},
		{"unknown variant", http.MethodGet, "/api/variants/" + env.Node.Generate().String(), nil, http.StatusNotFound, "not_found"},
		{"unknown category", http.MethodPost, "/api/products", map[string]any{"name": "Tee", "price": "1", "category_id": env.Node.Generate().String()}, http.StatusNotFound, "not_found"},
		{"negative price", http.MethodPost, "/api/products", map[string]any{"name": "Tee", "price": "-1", "category_id": fmt.Sprint(cat.ID)}, http.StatusBadRequest, "validation_error"},
		{"bad size range", http.MethodPost, "/api/sizes", map[string]any{"name": "XL", "min_height": 190, "max_height": 180}, http.StatusBadRequest, "validation_error"},
		{"bad bool filter", http.MethodGet, "/api/products?in_stock=maybe", nil, http.StatusBadRequest, "validation_error"},
		{"unknown route", http.MethodGet, "/api/unknown", nil, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.typ, decodeError(t, rec).Type)
		})
	}
}

func TestBatchCollisionRejectsWholeBatch(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/colors/batch", map[string]any{
		"items": []map[string]any{
			{"name": "Red", "code": "#FF0000"},
			{"name": "Blue", "code": "#0000FF"},
			{"name": "Red", "code": "#FF0001"},
		},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/colors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list colordomain.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Zero(t, list.PageInfo.Total)
}

func TestReconcileEndpoint(t *testing.T) {
	srv, env := newTestServer(t)
	cat := env.CreateCategory(t, "Shirts")
	require.NoError(t, env.Categories.SetStock(t.Context(), env.DB, cat.ID, 42, env.Clock.Now()))

	rec := do(t, srv, http.MethodPost, "/admin/stock/reconcile", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeData[struct {
		CategoriesFixed int `json:"categories_fixed"`
	}](t, rec)
	assert.Equal(t, 1, report.CategoriesFixed)
	assert.Zero(t, env.Category(t, cat.ID).Stock)
}

func TestMapErrorHidesInternalDetails(t *testing.T) {
	status, payload := mapError(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", payload.Message)

	status, payload = mapError(fmt.Errorf("item 2: %w", variantdomain.ErrInvalidQuantity))
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_quantity", payload.Errors[0].Code)
	assert.Equal(t, "quantity", payload.Errors[0].Field)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "product_id", toSnake("ProductID"))
	assert.Equal(t, "min_height", toSnake("MinHeight"))
	assert.Equal(t, "name", toSnake("Name"))
}
