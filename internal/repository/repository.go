// Package repository is the data-access layer. Every entity gets a Table
// with plain CRUD; entity specific queries live next to it.
package repository

import (
	"context"
	"errors"
	"fmt"

	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned for id based lookups, updates and deletes that
// match no row.
var ErrNotFound = errors.New("record not found")

// Table is the CRUD contract shared by all entities. order is the default
// ORDER BY clause of List.
type Table[T any] struct {
	order string
}

var (
	Users      = Table[models.User]{order: "username ASC"}
	Brands     = Table[models.Brand]{order: "sort_order ASC, created_at ASC, id ASC"}
	Categories = Table[models.Category]{order: "sort_order ASC, created_at ASC, id ASC"}
	Products   = Table[models.Product]{order: "created_at DESC, id ASC"}
	Banners    = Table[models.Banner]{order: "type ASC, sort_order ASC, created_at ASC, id ASC"}
	NewsItems  = Table[models.News]{order: "date DESC, created_at DESC"}
	Services   = Table[models.Service]{order: "sort_order ASC, created_at ASC, id ASC"}
	Orders     = Table[models.Order]{order: "created_at DESC, id ASC"}
	Uploads    = Table[models.Upload]{order: "created_at DESC, id ASC"}
)

func conn(ctx context.Context) *gorm.DB {
	return database.DB.WithContext(ctx)
}

func (t Table[T]) List(ctx context.Context) ([]T, error) {
	rows := make([]T, 0)
	if err := conn(ctx).Order(t.order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return rows, nil
}

func (t Table[T]) Get(ctx context.Context, id string) (*T, error) {
	row := new(T)
	err := conn(ctx).Where("id = ?", id).Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return row, nil
}

func (t Table[T]) Create(ctx context.Context, row *T) error {
	if err := conn(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

// Update applies the column -> value pairs in fields to row id and returns
// the row as stored afterwards. An empty fields map only reloads the row.
func (t Table[T]) Update(ctx context.Context, id string, fields map[string]any) (*T, error) {
	if _, err := t.Get(ctx, id); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := conn(ctx).Model(new(T)).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, fmt.Errorf("update %s: %w", id, err)
		}
	}
	return t.Get(ctx, id)
}

func (t Table[T]) Delete(ctx context.Context, id string) error {
	res := conn(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t Table[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx).Model(new(T)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// FindByIDs returns the rows whose id is in ids, in no particular order.
func (t Table[T]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	rows := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}
	if err := conn(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find by ids: %w", err)
	}
	return rows, nil
}
