package persistence

import (
	"context"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// saveVersioned writes an aggregate model with optimistic locking. The update only
// applies while the row still holds version-1; a row that is not stored yet is
// inserted. Losing the race surfaces as shared.ErrConcurrentUpdate.
func saveVersioned(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, version int) error {
	db = db.WithContext(ctx)
	if version > 1 {
		result := db.Model(model).
			Where("id = ? AND version = ?", id, version-1).
			Select("*").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrConcurrentUpdate
		}
	}
	return db.Create(model).Error
}
