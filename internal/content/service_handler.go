package content

import (
	"slices"
	"strings"
	"time"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"
	"autocatalog-backend/internal/sortable"

	"github.com/gofiber/fiber/v2"
)

type ServiceResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateServiceRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"required"`
	SortOrder   *int   `json:"sortOrder"`
}

type UpdateServiceRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	SortOrder   *int    `json:"sortOrder"`
}

func toServiceResponse(s models.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Icon:        s.Icon,
		SortOrder:   s.SortOrder,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func checkIcon(icon string) error {
	if !slices.Contains(models.ServiceIcons, icon) {
		return httpx.Invalid("icon", "must be one of: "+strings.Join(models.ServiceIcons, " "))
	}
	return nil
}

var serviceResource = sortable.Resource[models.Service, ServiceResponse]{
	Table:      repository.Services,
	ScopeCol:   repository.ScopeGlobal,
	EntityType: "service",
	Render:     toServiceResponse,
}

// GET /api/services
func ListServicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		services, err := repository.Services.List(c.UserContext())
		if err != nil {
			return err
		}
		res := make([]ServiceResponse, 0, len(services))
		for _, s := range services {
			res = append(res, toServiceResponse(s))
		}
		return c.JSON(res)
	}
}

// GET /api/services/icons
func ListServiceIconsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(models.ServiceIcons)
	}
}

// POST /api/admin/services
func CreateServiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateServiceRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}
		icon := strings.TrimSpace(body.Icon)
		if err := checkIcon(icon); err != nil {
			return err
		}

		ctx := c.UserContext()
		svc := models.Service{
			Title:       strings.TrimSpace(body.Title),
			Description: body.Description,
			Icon:        icon,
		}
		if body.SortOrder != nil {
			svc.SortOrder = *body.SortOrder
		} else {
			next, err := repository.Services.NextSortOrder(ctx, repository.ScopeGlobal, nil)
			if err != nil {
				return err
			}
			svc.SortOrder = next
		}

		if err := repository.Services.Create(ctx, &svc); err != nil {
			return err
		}

		res := toServiceResponse(svc)
		audit.Record(c, "service", svc.ID, models.AuditActionCreate, "service created: "+svc.Title, nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/admin/services/:id
func UpdateServiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateServiceRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Services.Get(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if body.Title != nil {
			fields["title"] = strings.TrimSpace(*body.Title)
		}
		if body.Description != nil {
			fields["description"] = *body.Description
		}
		if body.Icon != nil {
			icon := strings.TrimSpace(*body.Icon)
			if err := checkIcon(icon); err != nil {
				return err
			}
			fields["icon"] = icon
		}
		if body.SortOrder != nil {
			fields["sort_order"] = *body.SortOrder
		}

		after, err := repository.Services.Update(ctx, id, fields)
		if err != nil {
			return err
		}

		res := toServiceResponse(*after)
		audit.Record(c, "service", id, models.AuditActionUpdate, "service updated: "+after.Title, toServiceResponse(*before), res)
		return c.JSON(res)
	}
}

// DELETE /api/admin/services/:id
func DeleteServiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Services.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.Services.Delete(ctx, id); err != nil {
			return err
		}

		audit.Record(c, "service", id, models.AuditActionDelete, "service deleted: "+before.Title, toServiceResponse(*before), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/services/:id/move
func MoveServiceHandler() fiber.Handler {
	return sortable.MoveHandler(serviceResource)
}

// PUT /api/admin/services/reorder
func ReorderServicesHandler() fiber.Handler {
	return sortable.ReorderHandler(serviceResource)
}
