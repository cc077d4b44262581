package repository

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"autocatalog-backend/internal/models"

	"gorm.io/gorm"
)

// MinSearchLength is the shortest query that reaches the database.
const MinSearchLength = 2

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	CategoryIDs []string
	BrandID     string
	Query       string
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func matchText(db *gorm.DB, q string) *gorm.DB {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	return db.Where(
		`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(short_specs) LIKE ? ESCAPE '\'`,
		pattern, pattern, pattern,
	)
}

// SearchProducts matches q case-insensitively against name, description and
// short specs. q is matched as given, surrounding spaces included. Queries
// shorter than MinSearchLength return an empty list.
func SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	rows := make([]models.Product, 0)
	if utf8.RuneCountInString(q) < MinSearchLength {
		return rows, nil
	}
	if err := matchText(conn(ctx), q).Order(Products.order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return rows, nil
}

func ListBestsellers(ctx context.Context) ([]models.Product, error) {
	rows := make([]models.Product, 0)
	if err := conn(ctx).Where("is_bestseller = ?", true).Order(Products.order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bestsellers: %w", err)
	}
	return rows, nil
}

func ListDiscounted(ctx context.Context) ([]models.Product, error) {
	rows := make([]models.Product, 0)
	if err := conn(ctx).Where("discount_percent > ?", 0).Order(Products.order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list discounted: %w", err)
	}
	return rows, nil
}

func ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	rows := make([]models.Product, 0)
	q := f.Query
	if q != "" && utf8.RuneCountInString(q) < MinSearchLength {
		return rows, nil
	}

	dbq := conn(ctx).Model(&models.Product{})
	if len(f.CategoryIDs) > 0 {
		dbq = dbq.Where("category_id IN ?", f.CategoryIDs)
	}
	if f.BrandID != "" {
		dbq = dbq.Where("brand_id = ?", f.BrandID)
	}
	if q != "" {
		// gorm parenthesizes the OR chain when other conditions are present
		dbq = matchText(dbq, q)
	}
	if err := dbq.Order(Products.order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return rows, nil
}
