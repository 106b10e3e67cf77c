package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/hash"
	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
	"github.com/vitrine-shop/vitrine/internal/mykafka"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
}

type userPublic struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "store_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		StoreName string `json:"storeName"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" || req.StoreName == "" {
		return errorJSON(c, http.StatusBadRequest, "email, password, storeName required")
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return errorJSON(c, http.StatusConflict, "Email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}

	user := models.User{Email: req.Email, PasswordHash: pwHash}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// the unique index backstops the check above under concurrency
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorJSON(c, http.StatusConflict, "Email already registered")
		}
		l.Error("register_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}

	store := models.Store{
		OwnerID:      user.ID,
		Name:         req.StoreName,
		Theme:        "minimal",
		BorderRadius: "rounded",
		ShadowLevel:  1,
		CardSize:     "md",
		LayoutMode:   "grid",
	}
	err = createWithSlug(ctx, h.DB, req.StoreName, "store",
		func(ctx context.Context, candidate string) (bool, error) {
			var n int64
			err := h.DB.WithContext(ctx).Model(&models.Store{}).Where("slug = ?", candidate).Count(&n).Error
			return n > 0, err
		},
		func(candidate string) error {
			store.Slug = candidate
			return h.DB.WithContext(ctx).Create(&store).Error
		},
	)
	if err != nil {
		if errors.Is(err, ErrSlugExhausted) {
			return errorJSON(c, http.StatusConflict, "store name is taken")
		}
		l.Error("register_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}

	token, err := tenantauth.IssueToken(h.JWTSecret, user.ID, store.ID, tenantauth.TokenTTL)
	if err != nil {
		l.Error("register_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Registration failed")
	}

	h.publish(c, store.ID, map[string]any{
		"type":    "store_registered",
		"storeId": store.ID,
		"slug":    store.Slug,
	})

	l.Info("register_success", "store_id", store.ID, "slug", store.Slug)
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"store": store,
		"user":  userPublic{ID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "email and password required")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
	}

	// one store per user is enforced at registration; the schema still
	// allows more, so login pins the earliest one
	var store models.Store
	if err := h.DB.WithContext(ctx).Where("owner_id = ?", user.ID).Order("created_at ASC").First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, http.StatusBadRequest, "No store found for this user")
		}
		l.Error("login_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Login failed")
	}

	token, err := tenantauth.IssueToken(h.JWTSecret, user.ID, store.ID, tenantauth.TokenTTL)
	if err != nil {
		l.Error("login_failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Login failed")
	}

	l.Info("login_success", "store_id", store.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"store": store,
		"user":  userPublic{ID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	tenant, ok := tenantauth.TenantFromContext(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, "id = ?", tenant.UserID).Error; err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var store models.Store
	if err := h.DB.WithContext(ctx).First(&store, "id = ?", tenant.StoreID).Error; err != nil {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user, "store": store})
}
