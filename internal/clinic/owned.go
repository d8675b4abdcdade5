package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateOwned applies updates to the row of T identified by id and owned by
// userID, then returns the fresh row. Zero affected rows is a NotFoundError.
func UpdateOwned[T any](ctx context.Context, db *gorm.DB, entity string, id uint, userID uuid.UUID, updates map[string]interface{}) (*T, error) {
	res := db.WithContext(ctx).Model(new(T)).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update %s %d: %w", entity, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notOwned(entity)
	}
	return FindOwned[T](ctx, db, entity, id, userID)
}

func FindOwned[T any](ctx context.Context, db *gorm.DB, entity string, id uint, userID uuid.UUID) (*T, error) {
	row := new(T)
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notOwned(entity)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %d: %w", entity, id, err)
	}
	return row, nil
}

// ListOwned returns every row of T owned by userID in the given order.
func ListOwned[T any](ctx context.Context, db *gorm.DB, userID uuid.UUID, order string) ([]T, error) {
	var rows []T
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}
