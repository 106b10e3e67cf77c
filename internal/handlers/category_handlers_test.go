package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-shop/vitrine/internal/models"
)

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")

	category := env.createCategory(tenant, "Home & Garden")
	assert.Equal(t, "home-garden", category.Slug)
	assert.Equal(t, tenant.StoreID, category.StoreID)
}

func TestCreateCategory_NameRequired(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")

	rec, c := env.doJSONRequest(http.MethodPost, "/api/categories", map[string]string{})
	asTenant(c, tenant)
	require.NoError(t, env.Category.CreateCategory(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategorySlugUniquePerStoreNotGlobally(t *testing.T) {
	env := newTestEnv(t)
	tenantA, _ := env.register("a@example.com", "Shop A")
	tenantB, _ := env.register("b@example.com", "Shop B")

	// same name in the same store suffixes, in another store it does not
	first := env.createCategory(tenantA, "Shoes")
	second := env.createCategory(tenantA, "Shoes")
	other := env.createCategory(tenantB, "Shoes")

	assert.Equal(t, "shoes", first.Slug)
	assert.Equal(t, "shoes-1", second.Slug)
	assert.Equal(t, "shoes", other.Slug)
}

func TestUpdateCategory_RenameReallocatesSlug(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")
	category := env.createCategory(tenant, "Shoes")
	env.createCategory(tenant, "Boots")

	rec, c := env.doJSONRequest(http.MethodPut, "/api/categories/"+category.ID, map[string]string{"name": "Boots"})
	c.SetParamNames("id")
	c.SetParamValues(category.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Category.UpdateCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Boots", updated.Name)
	assert.Equal(t, "boots-1", updated.Slug) // "boots" is taken by the other row
}

func TestUpdateCategory_SameNameKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	tenant, _ := env.register("owner@example.com", "My Shop")
	category := env.createCategory(tenant, "Shoes")

	rec, c := env.doJSONRequest(http.MethodPut, "/api/categories/"+category.ID, map[string]string{"name": "Shoes"})
	c.SetParamNames("id")
	c.SetParamValues(category.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Category.UpdateCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "shoes", updated.Slug)
}

func TestUpdateCategory_CrossTenantIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	tenantA, _ := env.register("a@example.com", "Shop A")
	tenantB, _ := env.register("b@example.com", "Shop B")
	category := env.createCategory(tenantA, "Shoes")

	rec, c := env.doJSONRequest(http.MethodPut, "/api/categories/"+category.ID, map[string]string{"name": "Stolen"})
	c.SetParamNames("id")
	c.SetParamValues(category.ID)
	asTenant(c, tenantB)
	require.NoError(t, env.Category.UpdateCategory(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var unchanged models.Category
	require.NoError(t, env.DB.First(&unchanged, "id = ?", category.ID).Error)
	assert.Equal(t, "Shoes", unchanged.Name)
}

func TestDeleteCategory_LeavesProductsIntact(t *testing.T) {
	env := newTestEnv(t)
	tenant, store := env.register("owner@example.com", "My Shop")
	category := env.createCategory(tenant, "Shoes")

	product := env.createProduct(tenant, map[string]any{
		"name":          "Runner",
		"priceOriginal": 49.0,
		"categorySlug":  category.Slug,
	})
	require.NotNil(t, product.CategoryID)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/categories/"+category.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(category.ID)
	asTenant(c, tenant)
	require.NoError(t, env.Category.DeleteCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// the product survives and is still publicly queryable with no category
	var kept models.Product
	require.NoError(t, env.DB.First(&kept, "id = ?", product.ID).Error)

	recPub, cPub := env.doJSONRequest(http.MethodGet, "/api/public/store/"+store.Slug+"/product/"+product.Slug, nil)
	cPub.SetParamNames("slug", "productSlug")
	cPub.SetParamValues(store.Slug, product.Slug)
	require.NoError(t, env.Public.GetProduct(cPub))
	require.Equal(t, http.StatusOK, recPub.Code)

	var pub struct {
		Category *models.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(recPub.Body.Bytes(), &pub))
	assert.Nil(t, pub.Category)
}
