package catalog

import (
	"context"
	"testing"

	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"
	"autocatalog-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogApp(t *testing.T) *fiber.App {
	t.Helper()
	testutil.OpenDB(t)

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})

	app.Get("/api/brands", ListBrandsHandler())
	app.Get("/api/brands/:id", GetBrandHandler())
	app.Get("/api/categories", ListCategoriesHandler())
	app.Get("/api/categories/:id", GetCategoryHandler())
	app.Get("/api/products", ListProductsHandler())
	app.Get("/api/products/search", SearchProductsHandler())
	app.Get("/api/products/bestsellers", ListBestsellersHandler())
	app.Get("/api/products/discounted", ListDiscountedHandler())
	app.Get("/api/products/by-ids", ProductsByIDsHandler())
	app.Get("/api/products/:id", GetProductHandler())

	admin := app.Group("/api/admin")
	admin.Post("/brands", CreateBrandHandler())
	admin.Put("/brands/reorder", ReorderBrandsHandler())
	admin.Put("/brands/:id", UpdateBrandHandler())
	admin.Delete("/brands/:id", DeleteBrandHandler())
	admin.Post("/brands/:id/move", MoveBrandHandler())

	admin.Post("/categories", CreateCategoryHandler())
	admin.Put("/categories/reorder", ReorderCategoriesHandler())
	admin.Put("/categories/:id", UpdateCategoryHandler())
	admin.Delete("/categories/:id", DeleteCategoryHandler())
	admin.Post("/categories/:id/move", MoveCategoryHandler())

	admin.Post("/products", CreateProductHandler())
	admin.Put("/products/:id", UpdateProductHandler())
	admin.Delete("/products/:id", DeleteProductHandler())
	return app
}

func createBrand(t *testing.T, app *fiber.App, name string) BrandResponse {
	t.Helper()
	resp := testutil.Request(t, app, "POST", "/api/admin/brands", map[string]any{"name": name})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var b BrandResponse
	testutil.Decode(t, resp, &b)
	return b
}

func brandNames(brands []BrandResponse) []string {
	names := make([]string, 0, len(brands))
	for _, b := range brands {
		names = append(names, b.Name)
	}
	return names
}

func TestBrands_CRUD(t *testing.T) {
	app := newCatalogApp(t)

	a := createBrand(t, app, "  Bosch ")
	b := createBrand(t, app, "Hella")
	assert.Equal(t, "Bosch", a.Name)
	assert.Equal(t, 0, a.SortOrder)
	assert.Equal(t, 1, b.SortOrder)

	resp := testutil.Request(t, app, "PUT", "/api/admin/brands/"+a.ID, map[string]any{"image": "/uploads/bosch.png"})
	require.Equal(t, 200, resp.StatusCode)
	var updated BrandResponse
	testutil.Decode(t, resp, &updated)
	assert.Equal(t, "Bosch", updated.Name)
	assert.Equal(t, "/uploads/bosch.png", updated.Image)

	resp = testutil.Request(t, app, "DELETE", "/api/admin/brands/"+a.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = testutil.Request(t, app, "GET", "/api/brands/"+a.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = testutil.Request(t, app, "DELETE", "/api/admin/brands/"+a.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = testutil.Request(t, app, "PUT", "/api/admin/brands/missing", map[string]any{"name": "X"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var list []BrandResponse
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/brands", nil), &list)
	assert.Equal(t, []string{"Hella"}, brandNames(list))
}

func TestBrands_Validation(t *testing.T) {
	app := newCatalogApp(t)

	resp := testutil.Request(t, app, "POST", "/api/admin/brands", map[string]any{"name": "   "})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	testutil.Decode(t, resp, &body)
	assert.Contains(t, body.Fields, "name")

	resp = testutil.Request(t, app, "POST", "/api/admin/brands", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	n, err := repository.Brands.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBrands_MoveAndReorder(t *testing.T) {
	app := newCatalogApp(t)
	a := createBrand(t, app, "A")
	b := createBrand(t, app, "B")
	c := createBrand(t, app, "C")

	resp := testutil.Request(t, app, "POST", "/api/admin/brands/"+b.ID+"/move", map[string]any{"direction": "up"})
	require.Equal(t, 200, resp.StatusCode)
	var list []BrandResponse
	testutil.Decode(t, resp, &list)
	assert.Equal(t, []string{"B", "A", "C"}, brandNames(list))

	resp = testutil.Request(t, app, "POST", "/api/admin/brands/"+b.ID+"/move", map[string]any{"direction": "sideways"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Request(t, app, "PUT", "/api/admin/brands/reorder", map[string]any{
		"items": []map[string]any{
			{"id": a.ID, "sortOrder": 30},
			{"id": b.ID, "sortOrder": 20},
			{"id": c.ID, "sortOrder": 10},
		},
	})
	require.Equal(t, 200, resp.StatusCode)
	list = nil
	testutil.Decode(t, resp, &list)
	assert.Equal(t, []string{"C", "B", "A"}, brandNames(list))

	resp = testutil.Request(t, app, "PUT", "/api/admin/brands/reorder", map[string]any{
		"items": []map[string]any{{"id": a.ID, "sortOrder": 0}, {"id": "nope", "sortOrder": 1}},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var logs int64
	require.NoError(t, database.DB.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionMove).Count(&logs).Error)
	assert.Equal(t, int64(2), logs)
}

func TestCategories_ParentScopes(t *testing.T) {
	app := newCatalogApp(t)

	var root, other, child1, child2 CategoryResponse
	resp := testutil.Request(t, app, "POST", "/api/admin/categories", map[string]any{"name": "Diagnostics"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	testutil.Decode(t, resp, &root)
	testutil.Decode(t, testutil.Request(t, app, "POST", "/api/admin/categories", map[string]any{"name": "Lifts", "parentId": ""}), &other)
	testutil.Decode(t, testutil.Request(t, app, "POST", "/api/admin/categories", map[string]any{"name": "Scanners", "parentId": root.ID}), &child1)
	testutil.Decode(t, testutil.Request(t, app, "POST", "/api/admin/categories", map[string]any{"name": "Testers", "parentId": root.ID}), &child2)

	assert.Nil(t, other.ParentID)
	assert.Equal(t, 1, other.SortOrder)
	require.NotNil(t, child1.ParentID)
	assert.Equal(t, 0, child1.SortOrder)
	assert.Equal(t, 1, child2.SortOrder)

	var roots []CategoryResponse
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/categories?parentId=root", nil), &roots)
	assert.Len(t, roots, 2)

	var detail CategoryDetailResponse
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/categories/"+root.ID, nil), &detail)
	assert.Equal(t, "Diagnostics", detail.Name)
	require.Len(t, detail.Children, 2)
	assert.Equal(t, "Scanners", detail.Children[0].Name)

	// moving inside the children scope never touches root categories
	var moved []CategoryResponse
	resp = testutil.Request(t, app, "POST", "/api/admin/categories/"+child1.ID+"/move", map[string]any{"direction": "down"})
	require.Equal(t, 200, resp.StatusCode)
	testutil.Decode(t, resp, &moved)
	require.Len(t, moved, 2)
	assert.Equal(t, "Testers", moved[0].Name)
	assert.Equal(t, "Scanners", moved[1].Name)

	resp = testutil.Request(t, app, "PUT", "/api/admin/categories/"+root.ID, map[string]any{"parentId": root.ID})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var updated CategoryResponse
	resp = testutil.Request(t, app, "PUT", "/api/admin/categories/"+child2.ID, map[string]any{"parentId": ""})
	require.Equal(t, 200, resp.StatusCode)
	testutil.Decode(t, resp, &updated)
	assert.Nil(t, updated.ParentID)
	assert.Equal(t, 2, updated.SortOrder)
}

func TestProducts_PricingAndValidation(t *testing.T) {
	app := newCatalogApp(t)

	resp := testutil.Request(t, app, "POST", "/api/admin/products", map[string]any{
		"name": "Scanner X1", "price": 100, "discountPercent": 15,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var p ProductResponse
	testutil.Decode(t, resp, &p)
	assert.Equal(t, 85.0, p.EffectivePrice)
	assert.True(t, p.HasDiscount)

	stored, err := repository.Products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.Price)

	for _, bad := range []map[string]any{
		{"name": "X", "price": 10, "discountPercent": 101},
		{"name": "X", "price": 10, "discountPercent": -1},
		{"name": "X", "price": -1},
		{"price": 10},
	} {
		resp := testutil.Request(t, app, "POST", "/api/admin/products", bad)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "%v", bad)
	}

	resp = testutil.Request(t, app, "PUT", "/api/admin/products/"+p.ID, map[string]any{"discountPercent": 0})
	require.Equal(t, 200, resp.StatusCode)
	testutil.Decode(t, resp, &p)
	assert.Equal(t, 100.0, p.EffectivePrice)
	assert.False(t, p.HasDiscount)
	assert.Equal(t, "Scanner X1", p.Name)
}

func TestProducts_DetailWithDeletedBrand(t *testing.T) {
	app := newCatalogApp(t)
	brand := createBrand(t, app, "Launch")

	var p ProductResponse
	testutil.Decode(t, testutil.Request(t, app, "POST", "/api/admin/products", map[string]any{
		"name": "Tester", "price": 50, "brandId": brand.ID, "categoryId": "gone",
	}), &p)

	var detail ProductDetailResponse
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/products/"+p.ID, nil), &detail)
	require.NotNil(t, detail.Brand)
	assert.Equal(t, "Launch", detail.Brand.Name)
	assert.Nil(t, detail.Category)

	resp := testutil.Request(t, app, "DELETE", "/api/admin/brands/"+brand.ID, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	detail = ProductDetailResponse{}
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/products/"+p.ID, nil), &detail)
	assert.Equal(t, brand.ID, detail.BrandID)
	assert.Nil(t, detail.Brand)
}

func TestProducts_ListsAndFilters(t *testing.T) {
	app := newCatalogApp(t)
	ctx := context.Background()

	parent := models.Category{Name: "Equipment"}
	require.NoError(t, repository.Categories.Create(ctx, &parent))
	child := models.Category{Name: "Lifts", ParentID: &parent.ID}
	require.NoError(t, repository.Categories.Create(ctx, &child))

	seed := []models.Product{
		{Name: "Two-post lift", Price: 1000, CategoryID: child.ID, BrandID: "b1", IsBestseller: true},
		{Name: "Tyre changer", Price: 500, CategoryID: parent.ID, BrandID: "b2", DiscountPercent: 50},
		{Name: "Oil drain", Price: 80, CategoryID: "other", BrandID: "b1", ShortSpecs: "80L LIFT tank"},
	}
	for i := range seed {
		require.NoError(t, repository.Products.Create(ctx, &seed[i]))
	}

	names := func(path string) []string {
		var list []ProductResponse
		resp := testutil.Request(t, app, "GET", path, nil)
		require.Equal(t, 200, resp.StatusCode, path)
		testutil.Decode(t, resp, &list)
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Name)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Two-post lift", "Tyre changer"}, names("/api/products?categoryId="+parent.ID))
	assert.ElementsMatch(t, []string{"Two-post lift", "Oil drain"}, names("/api/products?brandId=b1"))
	assert.ElementsMatch(t, []string{"Tyre changer", "Oil drain"}, names("/api/products?maxPrice=250"))
	assert.ElementsMatch(t, []string{"Two-post lift"}, names("/api/products?minPrice=251"))
	assert.ElementsMatch(t, []string{"Two-post lift", "Oil drain"}, names("/api/products/search?q=lift"))
	assert.Empty(t, names("/api/products/search?q=l"))
	assert.Equal(t, []string{"Two-post lift"}, names("/api/products/bestsellers"))
	assert.Equal(t, []string{"Tyre changer"}, names("/api/products/discounted"))

	resp := testutil.Request(t, app, "GET", "/api/products?minPrice=abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var byIDs ProductsByIDsResponse
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/products/by-ids?ids="+seed[2].ID+",ghost,"+seed[0].ID, nil), &byIDs)
	require.Len(t, byIDs.Products, 2)
	assert.Equal(t, "Oil drain", byIDs.Products[0].Name)
	assert.Equal(t, "Two-post lift", byIDs.Products[1].Name)
	assert.Equal(t, []string{"ghost"}, byIDs.Missing)
}
