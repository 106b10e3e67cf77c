package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func (h *CategoryHandler) categorySlugTaken(storeID string, excludeID string) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, candidate string) (bool, error) {
		q := h.DB.WithContext(ctx).Model(&models.Category{}).
			Where("store_id = ? AND slug = ?", storeID, candidate)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		err := q.Count(&n).Error
		return n > 0, err
	}
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, _ := tenantauth.TenantFromContext(c)

	var categories []models.Category
	if err := h.DB.WithContext(ctx).
		Where("store_id = ?", tenant.StoreID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to list categories")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")
	tenant, _ := tenantauth.TenantFromContext(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "name required")
	}

	category := models.Category{StoreID: tenant.StoreID, Name: req.Name}
	err := createWithSlug(ctx, h.DB, req.Name, "category",
		h.categorySlugTaken(tenant.StoreID, ""),
		func(candidate string) error {
			category.Slug = candidate
			return h.DB.WithContext(ctx).Create(&category).Error
		},
	)
	if err != nil {
		if errors.Is(err, ErrSlugExhausted) {
			return errorJSON(c, http.StatusConflict, "Category exists")
		}
		l.Error("category_create_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to create category")
	}

	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")
	tenant, _ := tenantauth.TenantFromContext(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return errorJSON(c, http.StatusBadRequest, "name required")
	}

	var category models.Category
	if err := h.DB.WithContext(ctx).First(&category, "id = ?", c.Param("id")).Error; err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}
	if category.StoreID != tenant.StoreID {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	if req.Name == category.Name {
		return c.JSON(http.StatusOK, category)
	}

	// renaming re-allocates the slug; products keep their own slugs
	category.Name = req.Name
	err := createWithSlug(ctx, h.DB, req.Name, "category",
		h.categorySlugTaken(tenant.StoreID, category.ID),
		func(candidate string) error {
			category.Slug = candidate
			return h.DB.WithContext(ctx).Save(&category).Error
		},
	)
	if err != nil {
		if errors.Is(err, ErrSlugExhausted) {
			return errorJSON(c, http.StatusConflict, "Category exists")
		}
		l.Error("category_update_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to update category")
	}

	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")
	tenant, _ := tenantauth.TenantFromContext(c)

	var category models.Category
	if err := h.DB.WithContext(ctx).First(&category, "id = ?", c.Param("id")).Error; err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}
	if category.StoreID != tenant.StoreID {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	// products keep a weak reference; deleting the category must not touch
	// them, their category simply resolves to nothing from now on
	if err := h.DB.WithContext(ctx).Delete(&models.Category{}, "id = ?", category.ID).Error; err != nil {
		l.Error("category_delete_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete category")
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
