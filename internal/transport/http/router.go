package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/handlers"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

type Deps struct {
	DB              *gorm.DB
	JWTSecret       []byte
	AuthHandler     *handlers.AuthHandler
	StoreHandler    *handlers.StoreHandler
	CategoryHandler *handlers.CategoryHandler
	ProductHandler  *handlers.ProductHandler
	BannerHandler   *handlers.BannerHandler
	PublicHandler   *handlers.PublicHandler
	ExportHandler   *handlers.ExportHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error { return c.JSON(200, echo.Map{"ok": true}) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	guard := tenantauth.Middleware(d.JWTSecret)

	auth.GET("/me", d.AuthHandler.Me, guard)

	store := api.Group("/store", guard)
	store.GET("", d.StoreHandler.GetStore)
	store.PUT("", d.StoreHandler.UpdateStore)
	store.GET("/analytics", d.StoreHandler.Analytics)
	store.GET("/activity", d.StoreHandler.Activity)

	categories := api.Group("/categories", guard)
	categories.GET("", d.CategoryHandler.ListCategories)
	categories.POST("", d.CategoryHandler.CreateCategory)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory)

	products := api.Group("/products", guard)
	products.GET("", d.ProductHandler.ListProducts)
	products.POST("", d.ProductHandler.CreateProduct)
	products.PUT("/:id", d.ProductHandler.UpdateProduct)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)

	banners := api.Group("/banners", guard)
	banners.GET("", d.BannerHandler.ListBanners)
	banners.POST("", d.BannerHandler.CreateBanner)
	banners.PUT("/:id", d.BannerHandler.UpdateBanner)
	banners.DELETE("/:id", d.BannerHandler.DeleteBanner)

	api.GET("/export/products.csv", d.ExportHandler.ProductsCSV, guard)

	public := api.Group("/public/store/:slug")
	public.GET("", d.PublicHandler.GetStore)
	public.GET("/categories", d.PublicHandler.ListCategories)
	public.GET("/products", d.PublicHandler.ListProducts)
	public.GET("/product/:productSlug", d.PublicHandler.GetProduct)
	public.POST("/analytics/store-visit", d.PublicHandler.StoreVisit)
	public.POST("/analytics/product-view/:productId", d.PublicHandler.ProductView)
	public.POST("/analytics/whatsapp-click", d.PublicHandler.WhatsAppClick)
}
