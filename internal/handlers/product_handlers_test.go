package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-shop/vitrine/internal/activity"
	"github.com/vitrine-shop/vitrine/internal/models"
)

func TestCreateProduct_RequiredFields(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/products", map[string]any{"name": "Mug"})
	asTenant(c, tenant)
	require.NoError(t, env.Product.CreateProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/products", map[string]any{"priceOriginal": 10})
	asTenant(c, tenant)
	require.NoError(t, env.Product.CreateProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, c = env.doJSONRequest(http.MethodPost, "/api/products", map[string]any{"name": "Mug", "priceOriginal": -1})
	asTenant(c, tenant)
	require.NoError(t, env.Product.CreateProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct_SlugBurst(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")

	want := []string{"red-shirt", "red-shirt-1", "red-shirt-2", "red-shirt-3", "red-shirt-4"}
	for i := 0; i < 5; i++ {
		product := env.createProduct(tenant, map[string]any{"name": "Red Shirt", "priceOriginal": 20.0})
		assert.Equal(t, want[i], product.Slug)
	}
}

func TestCreateProduct_DefaultsAndStatus(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")

	product := env.createProduct(tenant, map[string]any{"name": "Mug", "priceOriginal": 10.0})
	assert.Equal(t, models.StatusActive, product.Status)
	assert.NotNil(t, product.ImageGallery)
	assert.Empty(t, product.ImageGallery)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/products", map[string]any{
		"name": "Mug 2", "priceOriginal": 10.0, "status": "SOLD",
	})
	asTenant(c, tenant)
	require.NoError(t, env.Product.CreateProduct(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct_ForeignCategorySlugResolvesToNoCategory(t *testing.T) {
	env := newTestEnv(t)
	tenantA, _ := env.register("a@example.com", "Shop A")
	tenantB, _ := env.register("b@example.com", "Shop B")
	foreign := env.createCategory(tenantB, "Shoes")

	product := env.createProduct(tenantA, map[string]any{
		"name":          "Runner",
		"priceOriginal": 49.0,
		"categorySlug":  foreign.Slug,
	})
	assert.Nil(t, product.CategoryID)
}

func TestUpdateProduct_PartialPatch(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")
	product := env.createProduct(tenant, map[string]any{
		"name":          "Mug",
		"priceOriginal": 10.0,
		"description":   "ceramic",
	})

	rec, c := env.doJSONRequest(http.MethodPut, "/api/products/"+product.ID, map[string]any{
		"priceDiscount":  8.0,
		"discountActive": true,
	})
	c.SetParamNames("id")
	c.SetParamValues(product.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Product.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	// untouched fields stay as they were
	assert.Equal(t, "Mug", updated.Name)
	assert.Equal(t, "mug", updated.Slug)
	assert.Equal(t, "ceramic", updated.Description)
	assert.Equal(t, 10.0, updated.PriceOriginal)
	require.NotNil(t, updated.PriceDiscount)
	assert.Equal(t, 8.0, *updated.PriceDiscount)
	assert.True(t, updated.DiscountActive)
}

func TestUpdateProduct_RenameReallocatesSlug(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")
	env.createProduct(tenant, map[string]any{"name": "Blue Shirt", "priceOriginal": 20.0})
	product := env.createProduct(tenant, map[string]any{"name": "Red Shirt", "priceOriginal": 20.0})

	rec, c := env.doJSONRequest(http.MethodPut, "/api/products/"+product.ID, map[string]any{"name": "Blue Shirt"})
	c.SetParamNames("id")
	c.SetParamValues(product.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Product.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "blue-shirt-1", updated.Slug)
}

func TestUpdateProduct_CrossTenantIsNotFoundAndUnmodified(t *testing.T) {
	env := newTestEnv(t)
	tenantA, _ := env.register("a@example.com", "Shop A")
	tenantB, _ := env.register("b@example.com", "Shop B")
	product := env.createProduct(tenantB, map[string]any{"name": "Mug", "priceOriginal": 10.0})

	rec, c := env.doJSONRequest(http.MethodPut, "/api/products/"+product.ID, map[string]any{
		"name":          "Hijacked",
		"priceOriginal": 1.0,
	})
	c.SetParamNames("id")
	c.SetParamValues(product.ID)
	asTenant(c, tenantA)
	require.NoError(t, env.Product.UpdateProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var unchanged models.Product
	require.NoError(t, env.DB.First(&unchanged, "id = ?", product.ID).Error)
	assert.Equal(t, "Mug", unchanged.Name)
	assert.Equal(t, 10.0, unchanged.PriceOriginal)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")
	product := env.createProduct(tenant, map[string]any{"name": "Mug", "priceOriginal": 10.0})

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/products/"+product.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(product.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Product.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var n int64
	require.NoError(t, env.DB.Model(&models.Product{}).Where("id = ?", product.ID).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestProductMutationsAppendActivity(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")

	product := env.createProduct(tenant, map[string]any{"name": "Mug", "priceOriginal": 10.0})

	rec, c := env.doJSONRequest(http.MethodPut, "/api/products/"+product.ID, map[string]any{"description": "ceramic"})
	c.SetParamNames("id")
	c.SetParamValues(product.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Product.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = env.doJSONRequest(http.MethodDelete, "/api/products/"+product.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(product.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Product.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var logs []models.ActivityLog
	require.NoError(t, env.DB.Where("store_id = ?", tenant.StoreID).Find(&logs).Error)
	require.Len(t, logs, 3)
	actions := []string{logs[0].Action, logs[1].Action, logs[2].Action}
	assert.ElementsMatch(t, actions,
		[]string{activity.ActionProductAdd, activity.ActionProductUpdate, activity.ActionProductDelete})
	for _, entry := range logs {
		assert.Equal(t, tenant.UserID, entry.UserID)
		assert.Equal(t, product.ID, entry.Details["productId"])
	}
}

func TestListProducts_OwnerSeesHidden(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")
	env.createProduct(tenant, map[string]any{"name": "Visible", "priceOriginal": 10.0})
	env.createProduct(tenant, map[string]any{"name": "Secret", "priceOriginal": 10.0, "status": "HIDDEN"})

	rec, c := env.doJSONRequest(http.MethodGet, "/api/products", nil)
	asTenant(c, tenant)
	require.NoError(t, env.Product.ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 2)
}
