package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/slug"
)

// ErrSlugExhausted means every probed candidate lost the insert race; the
// handler maps it to 409.
var ErrSlugExhausted = errors.New("no free slug candidate")

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// clampLimit keeps public page sizes inside [1,100].
func clampLimit(s string, def int) int {
	v := parseIntDefault(s, def)
	if v < 1 {
		return def
	}
	if v > 100 {
		return 100
	}
	return v
}

func parseOffset(s string) int {
	v := parseIntDefault(s, 0)
	if v < 0 {
		return 0
	}
	return v
}

// createWithSlug probes slug candidates and attempts the insert inside the
// same loop. A duplicate-key error means another writer won the race between
// the existence check and the insert, so the next candidate is tried; the
// unique index stays the source of truth.
func createWithSlug(ctx context.Context, db *gorm.DB, base, fallback string, taken func(context.Context, string) (bool, error), insert func(string) error) error {
	for i := 0; i < slug.MaxAttempts; i++ {
		candidate := slug.Candidate(base, fallback, i)
		exists, err := taken(ctx, candidate)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		err = insert(candidate)
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return err
	}
	return ErrSlugExhausted
}
