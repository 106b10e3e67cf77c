package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/counter"
	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
)

// PublicHandler serves the anonymous storefront; everything is scoped by
// store slug instead of a token.
type PublicHandler struct {
	DB *gorm.DB
}

const defaultPageSize = 24

type categoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type publicProduct struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Slug             string               `json:"slug"`
	ShortDescription string               `json:"shortDescription"`
	PriceOriginal    float64              `json:"priceOriginal"`
	PriceDiscount    *float64             `json:"priceDiscount"`
	DiscountActive   bool                 `json:"discountActive"`
	EffectivePrice   float64              `json:"effectivePrice"`
	OnSale           bool                 `json:"onSale"`
	Status           models.ProductStatus `json:"status"`
	ImageMainURL     string               `json:"imageMainUrl"`
	ViewsCount       int64                `json:"viewsCount"`
	WhatsappClicks   int64                `json:"whatsappClicks"`
	Category         *categoryRef         `json:"category"`
}

func toPublicProduct(p *models.Product) publicProduct {
	out := publicProduct{
		ID:               p.ID,
		Name:             p.Name,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		PriceOriginal:    p.PriceOriginal,
		PriceDiscount:    p.PriceDiscount,
		DiscountActive:   p.DiscountActive,
		EffectivePrice:   p.EffectivePrice(),
		OnSale:           p.OnSale(),
		Status:           p.Status,
		ImageMainURL:     p.ImageMainURL,
		ViewsCount:       p.ViewsCount,
		WhatsappClicks:   p.WhatsappClicks,
	}
	if p.Category != nil {
		out.Category = &categoryRef{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	return out
}

func (h *PublicHandler) storeBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := h.DB.WithContext(ctx).Where("slug = ?", slug).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (h *PublicHandler) GetStore(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.storeBySlug(ctx, c.Param("slug"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Store not found")
	}

	var banners []models.Banner
	if err := h.DB.WithContext(ctx).
		Where("store_id = ? AND active = ?", store.ID, true).
		Order("position ASC, created_at DESC").
		Find(&banners).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch store")
	}

	return c.JSON(http.StatusOK, struct {
		models.Store
		OwnerID string          `json:"ownerId,omitempty"`
		Banners []models.Banner `json:"banners"`
	}{Store: *store, Banners: banners})
}

func (h *PublicHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.storeBySlug(ctx, c.Param("slug"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Store not found")
	}

	categories := make([]categoryRef, 0)
	if err := h.DB.WithContext(ctx).Model(&models.Category{}).
		Select("id, name, slug").
		Where("store_id = ?", store.ID).
		Order("name ASC").
		Scan(&categories).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// ListProducts is the public catalog query: HIDDEN rows never appear,
// substring search spans name/description/shortDescription, an unresolvable
// category filter is dropped rather than erroring, and page size is clamped
// to [1,100].
func (h *PublicHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.storeBySlug(ctx, c.Param("slug"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Store not found")
	}

	q := h.DB.WithContext(ctx).Model(&models.Product{}).
		Where("store_id = ? AND status <> ?", store.ID, models.StatusHidden)

	if search := c.QueryParam("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(short_description) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if categorySlug := c.QueryParam("category"); categorySlug != "" {
		var category models.Category
		if err := h.DB.WithContext(ctx).
			Where("store_id = ? AND slug = ?", store.ID, categorySlug).
			First(&category).Error; err == nil {
			q = q.Where("category_id = ?", category.ID)
		}
	}

	// price sorts use the original price, not the effective one; the
	// storefront has always behaved this way
	switch c.QueryParam("sort") {
	case "popular":
		q = q.Order("views_count DESC")
	case "price-asc":
		q = q.Order("price_original ASC")
	case "price-desc":
		q = q.Order("price_original DESC")
	default:
		q = q.Order("created_at DESC")
	}

	limit := clampLimit(c.QueryParam("limit"), defaultPageSize)
	offset := parseOffset(c.QueryParam("offset"))

	var products []models.Product
	if err := q.Preload("Category").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch products")
	}

	out := make([]publicProduct, 0, len(products))
	for i := range products {
		out = append(out, toPublicProduct(&products[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PublicHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	store, err := h.storeBySlug(ctx, c.Param("slug"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Store not found")
	}

	var product models.Product
	err = h.DB.WithContext(ctx).Preload("Category").
		Where("store_id = ? AND slug = ?", store.ID, c.Param("productSlug")).
		First(&product).Error
	if err != nil || product.Status == models.StatusHidden {
		return errorJSON(c, http.StatusNotFound, "Product not found")
	}

	return c.JSON(http.StatusOK, struct {
		models.Product
		EffectivePrice float64 `json:"effectivePrice"`
		OnSale         bool    `json:"onSale"`
	}{Product: product, EffectivePrice: product.EffectivePrice(), OnSale: product.OnSale()})
}

func (h *PublicHandler) StoreVisit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "public.store_visit")

	store, err := h.storeBySlug(ctx, c.Param("slug"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Store not found")
	}
	if err := counter.StoreVisit(ctx, h.DB, store.ID); err != nil {
		l.Error("store_visit_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *PublicHandler) ProductView(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "public.product_view")

	store, err := h.storeBySlug(ctx, c.Param("slug"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Store not found")
	}
	if err := counter.ProductView(ctx, h.DB, store.ID, c.Param("productId")); err != nil {
		if errors.Is(err, counter.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Not found")
		}
		l.Error("product_view_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *PublicHandler) WhatsAppClick(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "public.whatsapp_click")

	store, err := h.storeBySlug(ctx, c.Param("slug"))
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "Store not found")
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.ProductID != "" {
		if err := counter.WhatsAppClick(ctx, h.DB, store.ID, req.ProductID); err != nil {
			if errors.Is(err, counter.ErrNotFound) {
				return errorJSON(c, http.StatusNotFound, "Not found")
			}
			l.Error("whatsapp_click_failed", "error", err)
			return errorJSON(c, http.StatusInternalServerError, "Failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
