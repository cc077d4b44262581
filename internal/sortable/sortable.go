// Package sortable serves the manual ordering endpoints shared by brands,
// categories, banners and services.
package sortable

import (
	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type MoveRequest struct {
	Direction repository.Direction `json:"direction" validate:"required,oneof=up down"`
}

type ReorderRequest struct {
	Items []repository.SortItem `json:"items" validate:"required,min=1,dive"`
}

// Resource describes one sortable entity. ScopeOf returns the value of
// ScopeCol for a row and may be nil for globally ordered entities.
type Resource[T any, R any] struct {
	Table      repository.Table[T]
	ScopeCol   string
	ScopeOf    func(*T) *string
	EntityType string
	Render     func(T) R
}

func (r Resource[T, R]) scopeOf(row *T) *string {
	if r.ScopeOf == nil {
		return nil
	}
	return r.ScopeOf(row)
}

func (r Resource[T, R]) renderScope(c *fiber.Ctx, scope *string) error {
	rows, err := r.Table.ListScoped(c.UserContext(), r.ScopeCol, scope)
	if err != nil {
		return err
	}
	res := make([]R, 0, len(rows))
	for _, row := range rows {
		res = append(res, r.Render(row))
	}
	return c.JSON(res)
}

// POST /api/admin/<entity>/:id/move
func MoveHandler[T any, R any](r Resource[T, R]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MoveRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		id := c.Params("id")
		scope, err := r.Table.Move(c.UserContext(), id, body.Direction, r.ScopeCol)
		if err != nil {
			return err
		}

		audit.Record(c, r.EntityType, id, models.AuditActionMove, "moved "+string(body.Direction), nil, nil)
		return r.renderScope(c, scope)
	}
}

// PUT /api/admin/<entity>/reorder
//
// The response lists the scope of the first item.
func ReorderHandler[T any, R any](r Resource[T, R]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReorderRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		if err := r.Table.Reorder(ctx, body.Items); err != nil {
			return err
		}

		first, err := r.Table.Get(ctx, body.Items[0].ID)
		if err != nil {
			return err
		}

		audit.Record(c, r.EntityType, "", models.AuditActionMove, "bulk reorder", nil, body.Items)
		return r.renderScope(c, r.scopeOf(first))
	}
}
