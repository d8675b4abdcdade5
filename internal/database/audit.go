package database

import (
	"context"
	"encoding/json"

	"github.com/ahmetk3436/medassist/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit records one entry in the audit trail.
func Audit(ctx context.Context, db *gorm.DB, actor, action, target string, details map[string]interface{}) error {
	var detailsJSON datatypes.JSON
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = datatypes.JSON(b)
		}
	}

	entry := models.AuditLog{
		Actor:   actor,
		Action:  action,
		Target:  target,
		Details: detailsJSON,
	}
	return db.WithContext(ctx).Create(&entry).Error
}
