package orders

import (
	"context"
	"strings"
	"time"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type CreateOrderRequest struct {
	Phone      string   `json:"phone" validate:"required,notblank,max=32"`
	Comment    string   `json:"comment" validate:"max=2000"`
	ProductIDs []string `json:"productIds" validate:"max=200,dive,max=36"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=new processing completed cancelled"`
}

// OrderResponse is what the customer gets back after submitting a lead.
type OrderResponse struct {
	ID         string             `json:"id"`
	Phone      string             `json:"phone"`
	Comment    string             `json:"comment"`
	ProductIDs []string           `json:"productIds"`
	Status     models.OrderStatus `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// OrderProduct is one resolved entry of an order's product list. Found is
// false when the product was deleted after the order was placed.
type OrderProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Found bool    `json:"found"`
}

type AdminOrderResponse struct {
	OrderResponse
	AdminComment string         `json:"adminComment"`
	Products     []OrderProduct `json:"products"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func toOrderResponse(o models.Order) OrderResponse {
	ids := []string(o.ProductIDs)
	if ids == nil {
		ids = []string{}
	}
	return OrderResponse{
		ID:         o.ID,
		Phone:      o.Phone,
		Comment:    o.Comment,
		ProductIDs: ids,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
}

// resolveProducts loads every product referenced by orders in one query.
func resolveProducts(ctx context.Context, orders []models.Order) (map[string]models.Product, error) {
	seen := map[string]bool{}
	var ids []string
	for _, o := range orders {
		for _, id := range o.ProductIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	products, err := repository.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func toAdminOrderResponse(o models.Order, products map[string]models.Product) AdminOrderResponse {
	items := make([]OrderProduct, 0, len(o.ProductIDs))
	for _, id := range o.ProductIDs {
		p, ok := products[id]
		items = append(items, OrderProduct{ID: id, Name: p.Name, Price: p.Price, Found: ok})
	}
	return AdminOrderResponse{
		OrderResponse: toOrderResponse(o),
		AdminComment:  o.AdminComment,
		Products:      items,
		UpdatedAt:     o.UpdatedAt,
	}
}

func parseStatusFilter(raw string) (models.OrderStatus, error) {
	status := models.OrderStatus(strings.TrimSpace(raw))
	if status != "" && !status.Valid() {
		return "", httpx.Invalid("status", "must be one of: new processing completed cancelled")
	}
	return status, nil
}

// POST /api/orders
//
// The only anonymous write. The order always starts as new.
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ids := make(models.StringList, 0, len(body.ProductIDs))
		for _, id := range body.ProductIDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}

		order := models.Order{
			Phone:      strings.TrimSpace(body.Phone),
			Comment:    strings.TrimSpace(body.Comment),
			ProductIDs: ids,
			Status:     models.OrderStatusNew,
		}
		if err := repository.Orders.Create(c.UserContext(), &order); err != nil {
			return err
		}
		return c.JSON(toOrderResponse(order))
	}
}

// GET /api/admin/orders?status=
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := parseStatusFilter(c.Query("status"))
		if err != nil {
			return err
		}

		ctx := c.UserContext()
		orders, err := repository.OrdersByStatus(ctx, status)
		if err != nil {
			return err
		}
		products, err := resolveProducts(ctx, orders)
		if err != nil {
			return err
		}

		res := make([]AdminOrderResponse, 0, len(orders))
		for _, o := range orders {
			res = append(res, toAdminOrderResponse(o, products))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		order, err := repository.Orders.Get(ctx, c.Params("id"))
		if err != nil {
			return err
		}
		products, err := resolveProducts(ctx, []models.Order{*order})
		if err != nil {
			return err
		}
		return c.JSON(toAdminOrderResponse(*order, products))
	}
}

// PATCH /api/admin/orders/:id/status
//
// Any status can be set from any other.
func UpdateOrderStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateStatusRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Orders.Get(ctx, id)
		if err != nil {
			return err
		}

		after, err := repository.SetOrderStatus(ctx, id, body.Status)
		if err != nil {
			return err
		}
		products, err := resolveProducts(ctx, []models.Order{*after})
		if err != nil {
			return err
		}

		audit.Record(c, "order", id, models.AuditActionStatus,
			"order status "+string(before.Status)+" -> "+string(after.Status),
			before.Status, after.Status)
		return c.JSON(toAdminOrderResponse(*after, products))
	}
}

// DELETE /api/admin/orders/:id
func DeleteOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.Orders.Delete(ctx, id); err != nil {
			return err
		}

		audit.Record(c, "order", id, models.AuditActionDelete, "order deleted: "+before.Phone, toOrderResponse(*before), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
