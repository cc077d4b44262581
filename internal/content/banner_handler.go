package content

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

type BannerResponse struct {
	ID          string            `json:"id"`
	Type        models.BannerType `json:"type"`
	Image       string            `json:"image"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ButtonText  string            `json:"buttonText"`
	ButtonLink  string            `json:"buttonLink"`
	SortOrder   int               `json:"sortOrder"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type CreateBannerRequest struct {
	Type        models.BannerType `json:"type" validate:"required,oneof=hero promo bottom"`
	Image       string            `json:"image" validate:"required,notblank,max=500"`
	Title       string            `json:"title" validate:"max=255"`
	Description string            `json:"description"`
	ButtonText  string            `json:"buttonText" validate:"max=100"`
	ButtonLink  string            `json:"buttonLink" validate:"max=500"`
	SortOrder   *int              `json:"sortOrder"`
	IsActive    *bool             `json:"isActive"`
}

type UpdateBannerRequest struct {
	Type        *models.BannerType `json:"type" validate:"omitempty,oneof=hero promo bottom"`
	Image       *string            `json:"image" validate:"omitempty,notblank,max=500"`
	Title       *string            `json:"title" validate:"omitempty,max=255"`
	Description *string            `json:"description"`
	ButtonText  *string            `json:"buttonText" validate:"omitempty,max=100"`
	ButtonLink  *string            `json:"buttonLink" validate:"omitempty,max=500"`
	SortOrder   *int               `json:"sortOrder"`
	IsActive    *bool              `json:"isActive"`
}

func toBannerResponse(b models.Banner) BannerResponse {
	return BannerResponse{
		ID:          b.ID,
		Type:        b.Type,
		Image:       b.Image,
		Title:       b.Title,
		Description: b.Description,
		ButtonText:  b.ButtonText,
		ButtonLink:  b.ButtonLink,
		SortOrder:   b.SortOrder,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBannerResponses(banners []models.Banner) []BannerResponse {
	res := make([]BannerResponse, 0, len(banners))
	for _, b := range banners {
		res = append(res, toBannerResponse(b))
	}
	return res
}

func typeScope(t models.BannerType) *string {
	s := string(t)
	return &s
}

var bannerResource = sortable.Resource[models.Banner, BannerResponse]{
	Table:      repository.Banners,
	ScopeCol:   repository.ScopeType,
	ScopeOf:    func(b *models.Banner) *string { return typeScope(b.Type) },
	EntityType: "banner",
	Render:     toBannerResponse,
}

// GET /api/banners/:type
//
// Only active banners, in sortOrder.
func ListBannersByTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t := models.BannerType(c.Params("type"))
		if !t.Valid() {
			return httpx.Invalid("type", "must be one of: hero promo bottom")
		}
		banners, err := repository.BannersByType(c.UserContext(), t)
		if err != nil {
			return err
		}
		return c.JSON(toBannerResponses(banners))
	}
}

// GET /api/admin/banners
func ListAllBannersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		banners, err := repository.Banners.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toBannerResponses(banners))
	}
}

// POST /api/admin/banners
func CreateBannerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBannerRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		banner := models.Banner{
			Type:        body.Type,
			Image:       strings.TrimSpace(body.Image),
			Title:       strings.TrimSpace(body.Title),
			Description: body.Description,
			ButtonText:  strings.TrimSpace(body.ButtonText),
			ButtonLink:  strings.TrimSpace(body.ButtonLink),
			IsActive:    true,
		}
		if body.IsActive != nil {
			banner.IsActive = *body.IsActive
		}
		if body.SortOrder != nil {
			banner.SortOrder = *body.SortOrder
		} else {
			next, err := repository.Banners.NextSortOrder(ctx, repository.ScopeType, typeScope(banner.Type))
			if err != nil {
				return err
			}
			banner.SortOrder = next
		}

		if err := repository.Banners.Create(ctx, &banner); err != nil {
			return err
		}

		res := toBannerResponse(banner)
		audit.Record(c, "banner", banner.ID, models.AuditActionCreate, "banner created: "+string(banner.Type), nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/admin/banners/:id
func UpdateBannerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateBannerRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Banners.Get(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if body.Type != nil && *body.Type != before.Type {
			fields["type"] = *body.Type
			if body.SortOrder == nil {
				next, err := repository.Banners.NextSortOrder(ctx, repository.ScopeType, typeScope(*body.Type))
				if err != nil {
					return err
				}
				fields["sort_order"] = next
			}
		}
		if body.Image != nil {
			fields["image"] = strings.TrimSpace(*body.Image)
		}
		if body.Title != nil {
			fields["title"] = strings.TrimSpace(*body.Title)
		}
		if body.Description != nil {
			fields["description"] = *body.Description
		}
		if body.ButtonText != nil {
			fields["button_text"] = strings.TrimSpace(*body.ButtonText)
		}
		if body.ButtonLink != nil {
			fields["button_link"] = strings.TrimSpace(*body.ButtonLink)
		}
		if body.SortOrder != nil {
			fields["sort_order"] = *body.SortOrder
		}
		if body.IsActive != nil {
			fields["is_active"] = *body.IsActive
		}

		after, err := repository.Banners.Update(ctx, id, fields)
		if err != nil {
			return err
		}

		res := toBannerResponse(*after)
		audit.Record(c, "banner", id, models.AuditActionUpdate, "banner updated", toBannerResponse(*before), res)
		return c.JSON(res)
	}
}

// DELETE /api/admin/banners/:id
func DeleteBannerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Banners.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.Banners.Delete(ctx, id); err != nil {
			return err
		}

		audit.Record(c, "banner", id, models.AuditActionDelete, "banner deleted", toBannerResponse(*before), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/banners/:id/move
func MoveBannerHandler() fiber.Handler {
	return sortable.MoveHandler(bannerResource)
}

// PUT /api/admin/banners/reorder
func ReorderBannersHandler() fiber.Handler {
	return sortable.ReorderHandler(bannerResource)
}
