package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/activity"
	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
	"github.com/vitrine-shop/vitrine/internal/mykafka"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type productPatch struct {
	Name             *string   `json:"name"`
	ShortDescription *string   `json:"shortDescription"`
	Description      *string   `json:"description"`
	PriceOriginal    *float64  `json:"priceOriginal"`
	PriceDiscount    *float64  `json:"priceDiscount"`
	DiscountActive   *bool     `json:"discountActive"`
	Status           *string   `json:"status"`
	ImageMainURL     *string   `json:"imageMainUrl"`
	ImageGallery     *[]string `json:"imageGallery"`
	CategorySlug     *string   `json:"categorySlug"`
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_failed", "error", err)
	}
}

// resolveCategory maps a category slug to an id inside the tenant's own
// store. A slug that does not resolve there — including one belonging to a
// different store — yields no category, never a cross-tenant link.
func (h *ProductHandler) resolveCategory(ctx context.Context, storeID, categorySlug string) *string {
	if categorySlug == "" {
		return nil
	}
	var category models.Category
	err := h.DB.WithContext(ctx).
		Where("store_id = ? AND slug = ?", storeID, categorySlug).
		First(&category).Error
	if err != nil {
		return nil
	}
	return &category.ID
}

func (h *ProductHandler) productSlugTaken(storeID, excludeID string) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, candidate string) (bool, error) {
		q := h.DB.WithContext(ctx).Model(&models.Product{}).
			Where("store_id = ? AND slug = ?", storeID, candidate)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		err := q.Count(&n).Error
		return n > 0, err
	}
}

// fetchOwned loads a product by id and hides its existence from other
// tenants: a row owned by someone else looks exactly like a missing one.
func (h *ProductHandler) fetchOwned(ctx context.Context, tenant tenantauth.Tenant, id string) (*models.Product, error) {
	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if product.StoreID != tenant.StoreID {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, _ := tenantauth.TenantFromContext(c)

	q := h.DB.WithContext(ctx).Model(&models.Product{}).
		Where("store_id = ?", tenant.StoreID)

	if search := c.QueryParam("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(short_description) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if categorySlug := c.QueryParam("category"); categorySlug != "" {
		if id := h.resolveCategory(ctx, tenant.StoreID, categorySlug); id != nil {
			q = q.Where("category_id = ?", *id)
		}
	}

	var products []models.Product
	if err := q.Preload("Category").Order("created_at DESC").Find(&products).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to list products")
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")
	tenant, _ := tenantauth.TenantFromContext(c)

	var req struct {
		Name             string   `json:"name"`
		ShortDescription string   `json:"shortDescription"`
		Description      string   `json:"description"`
		PriceOriginal    *float64 `json:"priceOriginal"`
		PriceDiscount    *float64 `json:"priceDiscount"`
		DiscountActive   bool     `json:"discountActive"`
		Status           string   `json:"status"`
		ImageMainURL     string   `json:"imageMainUrl"`
		ImageGallery     []string `json:"imageGallery"`
		CategorySlug     string   `json:"categorySlug"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.PriceOriginal == nil {
		return errorJSON(c, http.StatusBadRequest, "name and priceOriginal required")
	}
	if *req.PriceOriginal < 0 {
		return errorJSON(c, http.StatusBadRequest, "priceOriginal must be >= 0")
	}
	status := models.StatusActive
	if req.Status != "" {
		status = models.ProductStatus(req.Status)
		if !status.Valid() {
			return errorJSON(c, http.StatusBadRequest, "invalid status")
		}
	}
	gallery := req.ImageGallery
	if gallery == nil {
		gallery = []string{}
	}

	product := models.Product{
		StoreID:          tenant.StoreID,
		CategoryID:       h.resolveCategory(ctx, tenant.StoreID, req.CategorySlug),
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		PriceOriginal:    *req.PriceOriginal,
		PriceDiscount:    req.PriceDiscount,
		DiscountActive:   req.DiscountActive,
		Status:           status,
		ImageMainURL:     req.ImageMainURL,
		ImageGallery:     gallery,
	}
	err := createWithSlug(ctx, h.DB, req.Name, "product",
		h.productSlugTaken(tenant.StoreID, ""),
		func(candidate string) error {
			product.Slug = candidate
			return h.DB.WithContext(ctx).Create(&product).Error
		},
	)
	if err != nil {
		if errors.Is(err, ErrSlugExhausted) {
			return errorJSON(c, http.StatusConflict, "Product exists")
		}
		l.Error("product_create_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to create product")
	}

	activity.Append(ctx, h.DB, tenant.StoreID, tenant.UserID, activity.ActionProductAdd,
		map[string]any{"productId": product.ID, "name": product.Name})

	h.publish(c, product.ID, map[string]any{
		"type":      "product_created",
		"productId": product.ID,
		"storeId":   product.StoreID,
		"name":      product.Name,
	})

	l.Info("product_create_success", "product_id", product.ID, "slug", product.Slug)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")
	tenant, _ := tenantauth.TenantFromContext(c)

	product, err := h.fetchOwned(ctx, tenant, c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	var patch productPatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if patch.PriceOriginal != nil && *patch.PriceOriginal < 0 {
		return errorJSON(c, http.StatusBadRequest, "priceOriginal must be >= 0")
	}
	if patch.Status != nil && !models.ProductStatus(*patch.Status).Valid() {
		return errorJSON(c, http.StatusBadRequest, "invalid status")
	}

	if patch.CategorySlug != nil {
		product.CategoryID = h.resolveCategory(ctx, tenant.StoreID, *patch.CategorySlug)
	}
	if patch.ShortDescription != nil {
		product.ShortDescription = *patch.ShortDescription
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.PriceOriginal != nil {
		product.PriceOriginal = *patch.PriceOriginal
	}
	if patch.PriceDiscount != nil {
		product.PriceDiscount = patch.PriceDiscount
	}
	if patch.DiscountActive != nil {
		product.DiscountActive = *patch.DiscountActive
	}
	if patch.Status != nil {
		product.Status = models.ProductStatus(*patch.Status)
	}
	if patch.ImageMainURL != nil {
		product.ImageMainURL = *patch.ImageMainURL
	}
	if patch.ImageGallery != nil {
		product.ImageGallery = *patch.ImageGallery
	}

	renamed := patch.Name != nil && *patch.Name != product.Name
	if renamed {
		product.Name = *patch.Name
	}

	save := func(candidate string) error {
		if candidate != "" {
			product.Slug = candidate
		}
		return h.DB.WithContext(ctx).Save(product).Error
	}

	if renamed {
		// only a real rename re-allocates the slug, excluding the row itself
		// from the collision check
		err = createWithSlug(ctx, h.DB, product.Name, "product",
			h.productSlugTaken(tenant.StoreID, product.ID), save)
	} else {
		err = save("")
	}
	if err != nil {
		if errors.Is(err, ErrSlugExhausted) {
			return errorJSON(c, http.StatusConflict, "Product exists")
		}
		l.Error("product_update_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to update product")
	}

	activity.Append(ctx, h.DB, tenant.StoreID, tenant.UserID, activity.ActionProductUpdate,
		map[string]any{"productId": product.ID})

	h.publish(c, product.ID, map[string]any{
		"type":      "product_updated",
		"productId": product.ID,
		"storeId":   product.StoreID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")
	tenant, _ := tenantauth.TenantFromContext(c)

	product, err := h.fetchOwned(ctx, tenant, c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	if err := h.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", product.ID).Error; err != nil {
		l.Error("product_delete_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete product")
	}

	activity.Append(ctx, h.DB, tenant.StoreID, tenant.UserID, activity.ActionProductDelete,
		map[string]any{"productId": product.ID})

	h.publish(c, product.ID, map[string]any{
		"type":      "product_deleted",
		"productId": product.ID,
		"storeId":   product.StoreID,
	})

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
