package tenantauth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKey is where the middleware stores the resolved Tenant on the
// echo context.
const ContextKey = "tenant"

// Middleware verifies the bearer credential and stamps the tenant into the
// echo context. Every failure mode gets the same body so callers cannot
// probe which check rejected them.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}
			claims, err := ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
			}
			c.Set(ContextKey, Tenant{UserID: claims.UserID, StoreID: claims.StoreID})
			return next(c)
		}
	}
}

func TenantFromContext(c echo.Context) (Tenant, bool) {
	t, ok := c.Get(ContextKey).(Tenant)
	return t, ok
}
