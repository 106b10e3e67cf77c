// Package activity is the append-only audit trail of owner-initiated
// catalog mutations.
package activity

import (
	"context"

	"gorm.io/gorm"

	"github.com/vitrine-shop/vitrine/internal/logging"
	"github.com/vitrine-shop/vitrine/internal/models"
)

const (
	ActionProductAdd    = "PRODUCT_ADD"
	ActionProductUpdate = "PRODUCT_UPDATE"
	ActionProductDelete = "PRODUCT_DELETE"
)

// RecentLimit caps reads; there is no pagination over the trail.
const RecentLimit = 50

// Append records a mutation best-effort. The catalog change has already
// happened when this runs, so a failed audit write is logged and swallowed
// rather than rolling the mutation back.
func Append(ctx context.Context, db *gorm.DB, storeID, userID, action string, details map[string]any) {
	entry := models.ActivityLog{
		StoreID: storeID,
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		logging.FromContext(ctx).Error("activity_append_failed",
			"store_id", storeID, "action", action, "error", err)
	}
}

func Recent(ctx context.Context, db *gorm.DB, storeID string) ([]models.ActivityLog, error) {
	logs := make([]models.ActivityLog, 0, RecentLimit)
	err := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Limit(RecentLimit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
