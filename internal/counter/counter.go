// Package counter owns the analytics counters. Every increment is a single
// atomic UPDATE at the storage layer; concurrent calls must all land, so no
// read-modify-write happens in application code.
package counter

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/models"
)

// ErrNotFound covers both a missing product and a product that belongs to a
// different store; callers map it to 404 without distinguishing.
var ErrNotFound = errors.New("counter: not found")

func StoreVisit(ctx context.Context, db *gorm.DB, storeID string) error {
	return db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ?", storeID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

func ProductView(ctx context.Context, db *gorm.DB, storeID, productID string) error {
	return bump(ctx, db, storeID, productID, "views_count")
}

func WhatsAppClick(ctx context.Context, db *gorm.DB, storeID, productID string) error {
	return bump(ctx, db, storeID, productID, "whatsapp_clicks")
}

func bump(ctx context.Context, db *gorm.DB, storeID, productID, column string) error {
	res := db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND store_id = ?", productID, storeID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TopProduct is one dashboard row; only identity and counters leave the DB.
type TopProduct struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ViewsCount     int64  `json:"viewsCount"`
	WhatsappClicks int64  `json:"whatsappClicks"`
}

func TopProducts(ctx context.Context, db *gorm.DB, storeID string, limit int) ([]TopProduct, error) {
	top := make([]TopProduct, 0, limit)
	err := db.WithContext(ctx).Model(&models.Product{}).
		Select("id, name, views_count, whatsapp_clicks").
		Where("store_id = ?", storeID).
		Order("views_count DESC, whatsapp_clicks DESC").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	return top, nil
}
