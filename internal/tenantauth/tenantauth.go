package tenantauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tenant is the (user, store) pair every authenticated operation is scoped
// to. The store reference in each row is compared against StoreID on every
// mutation; the token alone never grants access to a row.
type Tenant struct {
	UserID  string
	StoreID string
}

type StoreClaims struct {
	UserID  string `json:"userId"`
	StoreID string `json:"storeId"`
	jwt.RegisteredClaims
}

const TokenTTL = 7 * 24 * time.Hour

func IssueToken(secret []byte, userID, storeID string, ttl time.Duration) (string, error) {
	claims := StoreClaims{
		UserID:  userID,
		StoreID: storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(secret []byte, raw string) (*StoreClaims, error) {
	var claims StoreClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.StoreID == "" {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}
