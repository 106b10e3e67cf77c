package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

type BannerHandler struct {
	DB *gorm.DB
}

type bannerPatch struct {
	Type     *string `json:"type"`
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	CtaText  *string `json:"ctaText"`
	CtaLink  *string `json:"ctaLink"`
	ImageURL *string `json:"imageUrl"`
	Position *int    `json:"position"`
	Active   *bool   `json:"active"`
}

func (h *BannerHandler) ListBanners(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, _ := tenantauth.TenantFromContext(c)

	var banners []models.Banner
	if err := h.DB.WithContext(ctx).
		Where("store_id = ?", tenant.StoreID).
		Order("position ASC, created_at DESC").
		Find(&banners).Error; err != nil {
		return errorJSON(c, http.StatusInternalServerError, "Failed to list banners")
	}
	return c.JSON(http.StatusOK, banners)
}

func (h *BannerHandler) CreateBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.create")
	tenant, _ := tenantauth.TenantFromContext(c)

	var req struct {
		Type     string `json:"type"`
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		CtaText  string `json:"ctaText"`
		CtaLink  string `json:"ctaLink"`
		ImageURL string `json:"imageUrl"`
		Position *int   `json:"position"`
		Active   *bool  `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	bannerType := models.BannerType(strings.ToUpper(req.Type))
	if !bannerType.Valid() {
		return errorJSON(c, http.StatusBadRequest, "type required (HERO or SLIDER)")
	}

	banner := models.Banner{
		StoreID:  tenant.StoreID,
		Type:     bannerType,
		Title:    req.Title,
		Subtitle: req.Subtitle,
		CtaText:  req.CtaText,
		CtaLink:  req.CtaLink,
		ImageURL: req.ImageURL,
		Active:   true,
	}
	if req.Position != nil {
		banner.Position = *req.Position
	}
	if req.Active != nil {
		banner.Active = *req.Active
	}

	if err := h.DB.WithContext(ctx).Create(&banner).Error; err != nil {
		l.Error("banner_create_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to create banner")
	}
	return c.JSON(http.StatusOK, banner)
}

func (h *BannerHandler) UpdateBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.update")
	tenant, _ := tenantauth.TenantFromContext(c)

	var banner models.Banner
	if err := h.DB.WithContext(ctx).First(&banner, "id = ?", c.Param("id")).Error; err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}
	if banner.StoreID != tenant.StoreID {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	var patch bannerPatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if patch.Type != nil {
		bannerType := models.BannerType(strings.ToUpper(*patch.Type))
		if !bannerType.Valid() {
			return errorJSON(c, http.StatusBadRequest, "invalid type")
		}
		banner.Type = bannerType
	}
	if patch.Title != nil {
		banner.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		banner.Subtitle = *patch.Subtitle
	}
	if patch.CtaText != nil {
		banner.CtaText = *patch.CtaText
	}
	if patch.CtaLink != nil {
		banner.CtaLink = *patch.CtaLink
	}
	if patch.ImageURL != nil {
		banner.ImageURL = *patch.ImageURL
	}
	if patch.Position != nil {
		banner.Position = *patch.Position
	}
	if patch.Active != nil {
		banner.Active = *patch.Active
	}

	if err := h.DB.WithContext(ctx).Save(&banner).Error; err != nil {
		l.Error("banner_update_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to update banner")
	}
	return c.JSON(http.StatusOK, banner)
}

func (h *BannerHandler) DeleteBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "banner.delete")
	tenant, _ := tenantauth.TenantFromContext(c)

	var banner models.Banner
	if err := h.DB.WithContext(ctx).First(&banner, "id = ?", c.Param("id")).Error; err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}
	if banner.StoreID != tenant.StoreID {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	if err := h.DB.WithContext(ctx).Delete(&models.Banner{}, "id = ?", banner.ID).Error; err != nil {
		l.Error("banner_delete_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete banner")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
