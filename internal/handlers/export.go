package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

type ExportHandler struct {
	DB *gorm.DB
}

var csvHeader = []string{
	"id", "name", "slug", "category", "priceOriginal", "priceDiscount",
	"discountActive", "status", "imageMainUrl", "imageGallery",
}

func (h *ExportHandler) ProductsCSV(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "export.products_csv")
	tenant, _ := tenantauth.TenantFromContext(c)

	var products []models.Product
	if err := h.DB.WithContext(ctx).Preload("Category").
		Where("store_id = ?", tenant.StoreID).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		l.Error("export_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to export CSV")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		categoryName := ""
		if p.Category != nil {
			categoryName = p.Category.Name
		}
		discount := ""
		if p.PriceDiscount != nil {
			discount = strconv.FormatFloat(*p.PriceDiscount, 'f', -1, 64)
		}
		record := []string{
			p.ID,
			p.Name,
			p.Slug,
			categoryName,
			strconv.FormatFloat(p.PriceOriginal, 'f', -1, 64),
			discount,
			fmt.Sprintf("%t", p.DiscountActive),
			string(p.Status),
			p.ImageMainURL,
			strings.Join(p.ImageGallery, "|"),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
