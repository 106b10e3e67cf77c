package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/activity"
	"github.com/vitrine-shop/vitrine/internal/counter"
	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

type StoreHandler struct {
	DB *gorm.DB
}

// storePatch enumerates the updatable store fields; anything absent from
// this struct cannot be changed through the API (slug, owner and counters
// stay immutable).
type storePatch struct {
	Name           *string              `json:"name"`
	Description    *string              `json:"description"`
	LogoURL        *string              `json:"logoUrl"`
	CoverURL       *string              `json:"coverUrl"`
	PrimaryColor   *string              `json:"primaryColor"`
	SecondaryColor *string              `json:"secondaryColor"`
	BorderRadius   *string              `json:"borderRadius"`
	ShadowLevel    *int                 `json:"shadowLevel"`
	CardSize       *string              `json:"cardSize"`
	LayoutMode     *string              `json:"layoutMode"`
	Theme          *string              `json:"theme"`
	WhatsappNumber *string              `json:"whatsappNumber"`
	SocialLinks    *models.SocialLinks  `json:"socialLinks"`
	AddressText    *string              `json:"addressText"`
	GoogleMapsURL  *string              `json:"googleMapsUrl"`
	AboutPage      *string              `json:"aboutPage"`
	ContactPage    *string              `json:"contactPage"`
	ReturnPage     *string              `json:"returnPolicyPage"`
	TermsPage      *string              `json:"termsPage"`
}

func (p *storePatch) apply(s *models.Store) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.LogoURL != nil {
		s.LogoURL = *p.LogoURL
	}
	if p.CoverURL != nil {
		s.CoverURL = *p.CoverURL
	}
	if p.PrimaryColor != nil {
		s.PrimaryColor = *p.PrimaryColor
	}
	if p.SecondaryColor != nil {
		s.SecondaryColor = *p.SecondaryColor
	}
	if p.BorderRadius != nil {
		s.BorderRadius = *p.BorderRadius
	}
	if p.ShadowLevel != nil {
		s.ShadowLevel = *p.ShadowLevel
	}
	if p.CardSize != nil {
		s.CardSize = *p.CardSize
	}
	if p.LayoutMode != nil {
		s.LayoutMode = *p.LayoutMode
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.WhatsappNumber != nil {
		s.WhatsappNumber = *p.WhatsappNumber
	}
	if p.SocialLinks != nil {
		s.SocialLinks = p.SocialLinks
	}
	if p.AddressText != nil {
		s.AddressText = *p.AddressText
	}
	if p.GoogleMapsURL != nil {
		s.GoogleMapsURL = *p.GoogleMapsURL
	}
	if p.AboutPage != nil {
		s.AboutPage = *p.AboutPage
	}
	if p.ContactPage != nil {
		s.ContactPage = *p.ContactPage
	}
	if p.ReturnPage != nil {
		s.ReturnPage = *p.ReturnPage
	}
	if p.TermsPage != nil {
		s.TermsPage = *p.TermsPage
	}
}

func (h *StoreHandler) GetStore(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, _ := tenantauth.TenantFromContext(c)

	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, "id = ?", tenant.StoreID).Error; err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) UpdateStore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.update")
	tenant, _ := tenantauth.TenantFromContext(c)

	var patch storePatch
	if err := c.Bind(&patch); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, "id = ?", tenant.StoreID).Error; err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	patch.apply(&store)
	if err := h.DB.WithContext(ctx).Save(&store).Error; err != nil {
		l.Error("store_update_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to update store")
	}
	return c.JSON(http.StatusOK, store)
}

func (h *StoreHandler) Analytics(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.analytics")
	tenant, _ := tenantauth.TenantFromContext(c)

	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, "id = ?", tenant.StoreID).Error; err != nil {
		return errorJSON(c, http.StatusNotFound, "Not found")
	}

	top, err := counter.TopProducts(ctx, h.DB, tenant.StoreID, 10)
	if err != nil {
		l.Error("analytics_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch analytics")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"storeViews":  store.ViewsCount,
		"topProducts": top,
	})
}

func (h *StoreHandler) Activity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "store.activity")
	tenant, _ := tenantauth.TenantFromContext(c)

	logs, err := activity.Recent(ctx, h.DB, tenant.StoreID)
	if err != nil {
		l.Error("activity_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch activity")
	}
	return c.JSON(http.StatusOK, logs)
}
