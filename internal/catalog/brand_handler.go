package catalog

import (
	"strings"
	"time"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"
	"autocatalog-backend/internal/sortable"

	"github.com/gofiber/fiber/v2"
)

type BrandResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateBrandRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=150"`
	Image     string `json:"image" validate:"max=500"`
	SortOrder *int   `json:"sortOrder"`
}

type UpdateBrandRequest struct {
	Name      *string `json:"name" validate:"omitempty,notblank,max=150"`
	Image     *string `json:"image" validate:"omitempty,max=500"`
	SortOrder *int    `json:"sortOrder"`
}

func toBrandResponse(b models.Brand) BrandResponse {
	return BrandResponse{
		ID:        b.ID,
		Name:      b.Name,
		Image:     b.Image,
		SortOrder: b.SortOrder,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

var brandResource = sortable.Resource[models.Brand, BrandResponse]{
	Table:      repository.Brands,
	ScopeCol:   repository.ScopeGlobal,
	EntityType: "brand",
	Render:     toBrandResponse,
}

// GET /api/brands
func ListBrandsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		brands, err := repository.Brands.List(c.UserContext())
		if err != nil {
			return err
		}
		res := make([]BrandResponse, 0, len(brands))
		for _, b := range brands {
			res = append(res, toBrandResponse(b))
		}
		return c.JSON(res)
	}
}

// GET /api/brands/:id
func GetBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		b, err := repository.Brands.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(toBrandResponse(*b))
	}
}

// POST /api/admin/brands
func CreateBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBrandRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		brand := models.Brand{
			Name:  strings.TrimSpace(body.Name),
			Image: strings.TrimSpace(body.Image),
		}
		if body.SortOrder != nil {
			brand.SortOrder = *body.SortOrder
		} else {
			next, err := repository.Brands.NextSortOrder(ctx, repository.ScopeGlobal, nil)
			if err != nil {
				return err
			}
			brand.SortOrder = next
		}

		if err := repository.Brands.Create(ctx, &brand); err != nil {
			return err
		}

		res := toBrandResponse(brand)
		audit.Record(c, "brand", brand.ID, models.AuditActionCreate, "brand created: "+brand.Name, nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/admin/brands/:id
func UpdateBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateBrandRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Brands.Get(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if body.Name != nil {
			fields["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Image != nil {
			fields["image"] = strings.TrimSpace(*body.Image)
		}
		if body.SortOrder != nil {
			fields["sort_order"] = *body.SortOrder
		}

		after, err := repository.Brands.Update(ctx, id, fields)
		if err != nil {
			return err
		}

		res := toBrandResponse(*after)
		audit.Record(c, "brand", id, models.AuditActionUpdate, "brand updated: "+after.Name, toBrandResponse(*before), res)
		return c.JSON(res)
	}
}

// DELETE /api/admin/brands/:id
//
// Products keep their brandId.
func DeleteBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Brands.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.Brands.Delete(ctx, id); err != nil {
			return err
		}

		audit.Record(c, "brand", id, models.AuditActionDelete, "brand deleted: "+before.Name, toBrandResponse(*before), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/brands/:id/move
func MoveBrandHandler() fiber.Handler {
	return sortable.MoveHandler(brandResource)
}

// PUT /api/admin/brands/reorder
func ReorderBrandsHandler() fiber.Handler {
	return sortable.ReorderHandler(brandResource)
}
