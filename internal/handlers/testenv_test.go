package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/config"
	"github.com/vitrine-shop/vitrine/internal/models"
	"github.com/vitrine-shop/vitrine/internal/mykafka"
	"github.com/vitrine-shop/vitrine/internal/tenantauth"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Auth     *AuthHandler
	Store    *StoreHandler
	Category *CategoryHandler
	Product  *ProductHandler
	Banner   *BannerHandler
	Public   *PublicHandler
	Export   *ExportHandler
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serializes
	// writers so concurrent handler calls don't hit sqlite busy errors
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := initTestDB(t)
	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Auth:     &AuthHandler{DB: db, JWTSecret: testSecret, Producer: &mykafka.Producer{}},
		Store:    &StoreHandler{DB: db},
		Category: &CategoryHandler{DB: db},
		Product:  &ProductHandler{DB: db, Producer: &mykafka.Producer{}},
		Banner:   &BannerHandler{DB: db},
		Public:   &PublicHandler{DB: db},
		Export:   &ExportHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asTenant stamps the context the way the auth middleware would
func asTenant(c echo.Context, tenant tenantauth.Tenant) {
	c.Set(tenantauth.ContextKey, tenant)
}

// register creates a user+store through the real handler and returns the
// tenant pair for follow-up requests
func (env *testEnv) register(email, storeName string) (tenantauth.Tenant, models.Store) {
	env.T.Helper()

	payload := map[string]string{
		"email":     email,
		"password":  "password123",
		"storeName": storeName,
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/auth/register", payload)
	require.NoError(env.T, env.Auth.Register(c))
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string       `json:"token"`
		Store models.Store `json:"store"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return tenantauth.Tenant{UserID: resp.User.ID, StoreID: resp.Store.ID}, resp.Store
}

func (env *testEnv) createProduct(tenant tenantauth.Tenant, body map[string]any) models.Product {
	env.T.Helper()

	rec, c := env.doJSONRequest(http.MethodPost, "/api/products", body)
	asTenant(c, tenant)
	require.NoError(env.T, env.Product.CreateProduct(c))
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var product models.Product
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &product))
	return product
}

func (env *testEnv) createCategory(tenant tenantauth.Tenant, name string) models.Category {
	env.T.Helper()

	rec, c := env.doJSONRequest(http.MethodPost, "/api/categories", map[string]string{"name": name})
	asTenant(c, tenant)
	require.NoError(env.T, env.Category.CreateCategory(c))
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var category models.Category
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &category))
	return category
}

func floatPtr(v float64) *float64 { return &v }
