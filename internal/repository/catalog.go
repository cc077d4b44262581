package repository

import (
	"context"
	"fmt"

	"autocatalog-backend/internal/models"
)

// BannersByType returns the active banners of one slot ordered by sortOrder.
func BannersByType(ctx context.Context, t models.BannerType) ([]models.Banner, error) {
	rows := make([]models.Banner, 0)
	err := conn(ctx).
		Where("type = ? AND is_active = ?", t, true).
		Order(sortedOrder).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("banners by type: %w", err)
	}
	return rows, nil
}

// CategoriesByParent lists children of parentID, or root categories when
// parentID is nil.
func CategoriesByParent(ctx context.Context, parentID *string) ([]models.Category, error) {
	return Categories.ListScoped(ctx, ScopeParentID, parentID)
}

// CategoryWithChildren returns id itself followed by the ids of its direct
// children. Only one nesting level exists in practice.
func CategoryWithChildren(ctx context.Context, id string) ([]string, error) {
	var children []string
	if err := conn(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Pluck("id", &children).Error; err != nil {
		return nil, fmt.Errorf("category children: %w", err)
	}
	return append([]string{id}, children...), nil
}

func UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	res := conn(ctx).Where("username = ?", username).Limit(1).Find(&u)
	if res.Error != nil {
		return nil, fmt.Errorf("user by username: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &u, nil
}

func OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	rows := make([]models.Order, 0)
	dbq := conn(ctx).Order(Orders.order)
	if status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if err := dbq.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	return rows, nil
}

// SetOrderStatus moves an order to any valid status. No transition is
// forbidden.
func SetOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid order status %q", status)
	}
	return Orders.Update(ctx, id, map[string]any{"status": status})
}

func UploadByName(ctx context.Context, name string) (*models.Upload, error) {
	var u models.Upload
	res := conn(ctx).Where("name = ?", name).Limit(1).Find(&u)
	if res.Error != nil {
		return nil, fmt.Errorf("upload by name: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &u, nil
}
