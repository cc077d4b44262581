package catalog

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ShortSpecs      string    `json:"shortSpecs"`
	Price           float64   `json:"price"`
	EffectivePrice  float64   `json:"effectivePrice"`
	HasDiscount     bool      `json:"hasDiscount"`
	Image           string    `json:"image"`
	BrandID         string    `json:"brandId"`
	CategoryID      string    `json:"categoryId"`
	IsBestseller    bool      `json:"isBestseller"`
	DiscountPercent int       `json:"discountPercent"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ProductDetailResponse resolves the soft references. Brand and Category
// are null when the row no longer exists.
type ProductDetailResponse struct {
	ProductResponse
	Brand    *BrandResponse    `json:"brand"`
	Category *CategoryResponse `json:"category"`
}

type ProductsByIDsResponse struct {
	Products []ProductResponse `json:"products"`
	Missing  []string          `json:"missing"`
}

type CreateProductRequest struct {
	Name            string  `json:"name" validate:"required,notblank,max=255"`
	Description     string  `json:"description"`
	ShortSpecs      string  `json:"shortSpecs"`
	Price           float64 `json:"price" validate:"gte=0"`
	Image           string  `json:"image" validate:"max=500"`
	BrandID         string  `json:"brandId" validate:"max=36"`
	CategoryID      string  `json:"categoryId" validate:"max=36"`
	IsBestseller    bool    `json:"isBestseller"`
	DiscountPercent int     `json:"discountPercent" validate:"gte=0,lte=100"`
}

type UpdateProductRequest struct {
	Name            *string  `json:"name" validate:"omitempty,notblank,max=255"`
	Description     *string  `json:"description"`
	ShortSpecs      *string  `json:"shortSpecs"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	Image           *string  `json:"image" validate:"omitempty,max=500"`
	BrandID         *string  `json:"brandId" validate:"omitempty,max=36"`
	CategoryID      *string  `json:"categoryId" validate:"omitempty,max=36"`
	IsBestseller    *bool    `json:"isBestseller"`
	DiscountPercent *int     `json:"discountPercent" validate:"omitempty,gte=0,lte=100"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		ShortSpecs:      p.ShortSpecs,
		Price:           p.Price,
		EffectivePrice:  EffectivePrice(p.Price, p.DiscountPercent),
		HasDiscount:     HasDiscount(p.DiscountPercent),
		Image:           p.Image,
		BrandID:         p.BrandID,
		CategoryID:      p.CategoryID,
		IsBestseller:    p.IsBestseller,
		DiscountPercent: p.DiscountPercent,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProductResponses(products []models.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res
}

func parsePriceBound(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, httpx.Invalid(key, "must be a non-negative number")
	}
	return &v, nil
}

// GET /api/products?categoryId=&brandId=&minPrice=&maxPrice=&q=
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		minPrice, err := parsePriceBound(c, "minPrice")
		if err != nil {
			return err
		}
		maxPrice, err := parsePriceBound(c, "maxPrice")
		if err != nil {
			return err
		}

		filter := repository.ProductFilter{
			BrandID: strings.TrimSpace(c.Query("brandId")),
			Query:   c.Query("q"),
		}
		if catID := strings.TrimSpace(c.Query("categoryId")); catID != "" {
			ids, err := repository.CategoryWithChildren(ctx, catID)
			if err != nil {
				return err
			}
			filter.CategoryIDs = ids
		}

		products, err := repository.ListProducts(ctx, filter)
		if err != nil {
			return err
		}

		// bounds apply to the discounted price, which is not stored
		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			pr := toProductResponse(p)
			if minPrice != nil && pr.EffectivePrice < *minPrice {
				continue
			}
			if maxPrice != nil && pr.EffectivePrice > *maxPrice {
				continue
			}
			res = append(res, pr)
		}
		return c.JSON(res)
	}
}

// GET /api/products/search?q=
func SearchProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := repository.SearchProducts(c.UserContext(), c.Query("q"))
		if err != nil {
			return err
		}
		return c.JSON(toProductResponses(products))
	}
}

// GET /api/products/bestsellers
func ListBestsellersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := repository.ListBestsellers(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toProductResponses(products))
	}
}

// GET /api/products/discounted
func ListDiscountedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := repository.ListDiscounted(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toProductResponses(products))
	}
}

// GET /api/products/by-ids?ids=a,b,c
//
// Products come back in the requested order; ids without a row are listed
// in missing.
func ProductsByIDsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ids []string
		seen := map[string]bool{}
		for _, id := range strings.Split(c.Query("ids"), ",") {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}

		products, err := repository.Products.FindByIDs(c.UserContext(), ids)
		if err != nil {
			return err
		}
		byID := make(map[string]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		res := ProductsByIDsResponse{
			Products: make([]ProductResponse, 0, len(ids)),
			Missing:  make([]string, 0),
		}
		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				res.Missing = append(res.Missing, id)
				continue
			}
			res.Products = append(res.Products, toProductResponse(p))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		p, err := repository.Products.Get(ctx, c.Params("id"))
		if err != nil {
			return err
		}

		res := ProductDetailResponse{ProductResponse: toProductResponse(*p)}

		if p.BrandID != "" {
			b, err := repository.Brands.Get(ctx, p.BrandID)
			switch {
			case err == nil:
				br := toBrandResponse(*b)
				res.Brand = &br
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}
		}
		if p.CategoryID != "" {
			cat, err := repository.Categories.Get(ctx, p.CategoryID)
			switch {
			case err == nil:
				cr := toCategoryResponse(*cat)
				res.Category = &cr
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}
		}
		return c.JSON(res)
	}
}

// POST /api/admin/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		p := models.Product{
			Name:            strings.TrimSpace(body.Name),
			Description:     body.Description,
			ShortSpecs:      body.ShortSpecs,
			Price:           body.Price,
			Image:           strings.TrimSpace(body.Image),
			BrandID:         strings.TrimSpace(body.BrandID),
			CategoryID:      strings.TrimSpace(body.CategoryID),
			IsBestseller:    body.IsBestseller,
			DiscountPercent: body.DiscountPercent,
		}
		if err := repository.Products.Create(c.UserContext(), &p); err != nil {
			return err
		}

		res := toProductResponse(p)
		audit.Record(c, "product", p.ID, models.AuditActionCreate, "product created: "+p.Name, nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateProductRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Products.Get(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if body.Name != nil {
			fields["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Description != nil {
			fields["description"] = *body.Description
		}
		if body.ShortSpecs != nil {
			fields["short_specs"] = *body.ShortSpecs
		}
		if body.Price != nil {
			fields["price"] = *body.Price
		}
		if body.Image != nil {
			fields["image"] = strings.TrimSpace(*body.Image)
		}
		if body.BrandID != nil {
			fields["brand_id"] = strings.TrimSpace(*body.BrandID)
		}
		if body.CategoryID != nil {
			fields["category_id"] = strings.TrimSpace(*body.CategoryID)
		}
		if body.IsBestseller != nil {
			fields["is_bestseller"] = *body.IsBestseller
		}
		if body.DiscountPercent != nil {
			fields["discount_percent"] = *body.DiscountPercent
		}

		after, err := repository.Products.Update(ctx, id, fields)
		if err != nil {
			return err
		}

		res := toProductResponse(*after)
		audit.Record(c, "product", id, models.AuditActionUpdate, "product updated: "+after.Name, toProductResponse(*before), res)
		return c.JSON(res)
	}
}

// DELETE /api/admin/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.Products.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.Products.Delete(ctx, id); err != nil {
			return err
		}

		audit.Record(c, "product", id, models.AuditActionDelete, "product deleted: "+before.Name, toProductResponse(*before), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
