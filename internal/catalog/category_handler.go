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

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	ParentID  *string   `json:"parentId"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryDetailResponse struct {
	CategoryResponse
	Children []CategoryResponse `json:"children"`
}

type CreateCategoryRequest struct {
	Name      string  `json:"name" validate:"required,notblank,max=150"`
	Image     string  `json:"image" validate:"max=500"`
	ParentID  *string `json:"parentId" validate:"omitempty,max=36"`
	SortOrder *int    `json:"sortOrder"`
}

// UpdateCategoryRequest: parentId "" moves the category to the root, null or
// absent leaves it where it is.
type UpdateCategoryRequest struct {
	Name      *string `json:"name" validate:"omitempty,notblank,max=150"`
	Image     *string `json:"image" validate:"omitempty,max=500"`
	ParentID  *string `json:"parentId" validate:"omitempty,max=36"`
	SortOrder *int    `json:"sortOrder"`
}

func toCategoryResponse(cat models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID,
		Name:      cat.Name,
		Image:     cat.Image,
		ParentID:  cat.ParentID,
		SortOrder: cat.SortOrder,
		CreatedAt: cat.CreatedAt,
		UpdatedAt: cat.UpdatedAt,
	}
}

func toCategoryResponses(cats []models.Category) []CategoryResponse {
	res := make([]CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		res = append(res, toCategoryResponse(cat))
	}
	return res
}

// normalizeParent maps a blank parent id to nil (root).
func normalizeParent(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

var categoryResource = sortable.Resource[models.Category, CategoryResponse]{
	Table:      repository.Categories,
	ScopeCol:   repository.ScopeParentID,
	ScopeOf:    func(cat *models.Category) *string { return cat.ParentID },
	EntityType: "category",
	Render:     toCategoryResponse,
}

// GET /api/categories?parentId=<id>|root
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var (
			cats []models.Category
			err  error
		)
		switch parent := c.Query("parentId"); parent {
		case "":
			cats, err = repository.Categories.List(ctx)
		case "root":
			cats, err = repository.CategoriesByParent(ctx, nil)
		default:
			cats, err = repository.CategoriesByParent(ctx, &parent)
		}
		if err != nil {
			return err
		}
		return c.JSON(toCategoryResponses(cats))
	}
}

// GET /api/categories/:id
func GetCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		cat, err := repository.Categories.Get(ctx, c.Params("id"))
		if err != nil {
			return err
		}
		children, err := repository.CategoriesByParent(ctx, &cat.ID)
		if err != nil {
			return err
		}
		return c.JSON(CategoryDetailResponse{
			CategoryResponse: toCategoryResponse(*cat),
			Children:         toCategoryResponses(children),
		})
	}
}

// POST /api/admin/categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		cat := models.Category{
			Name:     strings.TrimSpace(body.Name),
			Image:    strings.TrimSpace(body.Image),
			ParentID: normalizeParent(body.ParentID),
		}
		if body.SortOrder != nil {
			cat.SortOrder = *body.SortOrder
		} else {
			next, err := repository.Categories.NextSortOrder(ctx, repository.ScopeParentID, cat.ParentID)
			if err != nil {
				return err
			}
			cat.SortOrder = next
		}

		if err := repository.Categories.Create(ctx, &cat); err != nil {
			return err
		}

		res := toCategoryResponse(cat)
		audit.Record(c, "category", cat.ID, models.AuditActionCreate, "category created: "+cat.Name, nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/admin/categories/:id
func UpdateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateCategoryRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Categories.Get(ctx, id)
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
		if body.ParentID != nil {
			parent := normalizeParent(body.ParentID)
			if parent != nil && *parent == id {
				return httpx.Invalid("parentId", "category cannot be its own parent")
			}
			fields["parent_id"] = parent

			// a category joining another scope goes to the end of it
			if body.SortOrder == nil && !sameParent(before.ParentID, parent) {
				next, err := repository.Categories.NextSortOrder(ctx, repository.ScopeParentID, parent)
				if err != nil {
					return err
				}
				fields["sort_order"] = next
			}
		}
		if body.SortOrder != nil {
			fields["sort_order"] = *body.SortOrder
		}

		after, err := repository.Categories.Update(ctx, id, fields)
		if err != nil {
			return err
		}

		res := toCategoryResponse(*after)
		audit.Record(c, "category", id, models.AuditActionUpdate, "category updated: "+after.Name, toCategoryResponse(*before), res)
		return c.JSON(res)
	}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// DELETE /api/admin/categories/:id
//
// Children and products keep pointing at the deleted id.
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Categories.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.Categories.Delete(ctx, id); err != nil {
			return err
		}

		audit.Record(c, "category", id, models.AuditActionDelete, "category deleted: "+before.Name, toCategoryResponse(*before), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/categories/:id/move
func MoveCategoryHandler() fiber.Handler {
	return sortable.MoveHandler(categoryResource)
}

// PUT /api/admin/categories/reorder
func ReorderCategoriesHandler() fiber.Handler {
	return sortable.ReorderHandler(categoryResource)
}
