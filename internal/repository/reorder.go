package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// Scope column per sortable entity. Rows are only ever swapped with a
// neighbor that shares the same value in this column.
const (
	ScopeGlobal   = ""
	ScopeType     = "type"
	ScopeParentID = "parent_id"
)

const sortedOrder = "sort_order ASC, created_at ASC, id ASC"

// SortItem is one entry of a bulk reorder.
type SortItem struct {
	ID        string `json:"id" validate:"required"`
	SortOrder int    `json:"sortOrder"`
}

type sortRow struct {
	ID         string
	SortOrder  int
	ScopeValue *string
}

func scoped(db *gorm.DB, scopeCol string, value *string) *gorm.DB {
	if scopeCol == ScopeGlobal {
		return db
	}
	if value == nil {
		return db.Where(scopeCol + " IS NULL")
	}
	return db.Where(scopeCol+" = ?", *value)
}

// Move swaps the sortOrder of row id with its neighbor in the scoped list
// ordered by sortOrder. Both writes happen in one transaction. Moving the
// first row up or the last row down changes nothing. The returned value is
// the scope the row belongs to, for re-querying the list.
func (t Table[T]) Move(ctx context.Context, id string, dir Direction, scopeCol string) (*string, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction %q", dir)
	}

	var scopeValue *string
	err := conn(ctx).Transaction(func(tx *gorm.DB) error {
		sel := "id, sort_order"
		if scopeCol != ScopeGlobal {
			sel += ", " + scopeCol + " AS scope_value"
		}

		var target sortRow
		res := tx.Model(new(T)).Select(sel).Where("id = ?", id).Limit(1).Scan(&target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		scopeValue = target.ScopeValue

		var rows []sortRow
		if err := scoped(tx.Model(new(T)), scopeCol, target.ScopeValue).
			Select("id, sort_order").Order(sortedOrder).Scan(&rows).Error; err != nil {
			return err
		}

		idx := -1
		for i, r := range rows {
			if r.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNotFound
		}

		other := idx - 1
		if dir == Down {
			other = idx + 1
		}
		if other < 0 || other >= len(rows) {
			return nil
		}

		a, b := rows[idx], rows[other]
		if err := tx.Model(new(T)).Where("id = ?", a.ID).Update("sort_order", b.SortOrder).Error; err != nil {
			return err
		}
		return tx.Model(new(T)).Where("id = ?", b.ID).Update("sort_order", a.SortOrder).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("move %s: %w", id, err)
	}
	return scopeValue, nil
}

// Reorder writes the given sortOrder values. The whole batch is rolled back
// when one id does not exist.
func (t Table[T]) Reorder(ctx context.Context, items []SortItem) error {
	err := conn(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			res := tx.Model(new(T)).Where("id = ?", it.ID).Update("sort_order", it.SortOrder)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%s: %w", it.ID, ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder: %w", err)
	}
	return nil
}

// ListScoped returns the rows of one reorder scope in display order.
func (t Table[T]) ListScoped(ctx context.Context, scopeCol string, value *string) ([]T, error) {
	rows := make([]T, 0)
	if err := scoped(conn(ctx), scopeCol, value).Order(sortedOrder).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list scoped: %w", err)
	}
	return rows, nil
}

// NextSortOrder is one past the largest sortOrder in the scope, 0 when empty.
func (t Table[T]) NextSortOrder(ctx context.Context, scopeCol string, value *string) (int, error) {
	var top sql.NullInt64
	if err := scoped(conn(ctx).Model(new(T)), scopeCol, value).
		Select("MAX(sort_order)").Row().Scan(&top); err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if !top.Valid {
		return 0, nil
	}
	return int(top.Int64) + 1, nil
}
