package content

import (
	"strings"
	"time"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
)

// News bodies are authored as HTML in the admin editor and rendered as-is by
// the storefront.
var newsPolicy = bluemonday.UGCPolicy()

type NewsResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateNewsRequest struct {
	Title   string  `json:"title" validate:"required,notblank,max=255"`
	Content string  `json:"content" validate:"required,notblank"`
	Image   string  `json:"image" validate:"max=500"`
	Date    *string `json:"date"`
}

type UpdateNewsRequest struct {
	Title   *string `json:"title" validate:"omitempty,notblank,max=255"`
	Content *string `json:"content" validate:"omitempty,notblank"`
	Image   *string `json:"image" validate:"omitempty,max=500"`
	Date    *string `json:"date"`
}

func toNewsResponse(n models.News) NewsResponse {
	return NewsResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Image:     n.Image,
		Date:      n.Date,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// parseNewsDate accepts RFC 3339 timestamps and plain dates.
func parseNewsDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, httpx.Invalid("date", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	return t, nil
}

func sanitizeContent(html string) (string, error) {
	clean := strings.TrimSpace(newsPolicy.Sanitize(html))
	if clean == "" {
		return "", httpx.Invalid("content", "must not be blank")
	}
	return clean, nil
}

// GET /api/news
func ListNewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := repository.NewsItems.List(c.UserContext())
		if err != nil {
			return err
		}
		res := make([]NewsResponse, 0, len(items))
		for _, n := range items {
			res = append(res, toNewsResponse(n))
		}
		return c.JSON(res)
	}
}

// GET /api/news/:id
func GetNewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := repository.NewsItems.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(toNewsResponse(*n))
	}
}

// POST /api/admin/news
func CreateNewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateNewsRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		content, err := sanitizeContent(body.Content)
		if err != nil {
			return err
		}

		item := models.News{
			Title:   strings.TrimSpace(body.Title),
			Content: content,
			Image:   strings.TrimSpace(body.Image),
			Date:    time.Now().UTC(),
		}
		if body.Date != nil && strings.TrimSpace(*body.Date) != "" {
			d, err := parseNewsDate(*body.Date)
			if err != nil {
				return err
			}
			item.Date = d
		}

		if err := repository.NewsItems.Create(c.UserContext(), &item); err != nil {
			return err
		}

		res := toNewsResponse(item)
		audit.Record(c, "news", item.ID, models.AuditActionCreate, "news created: "+item.Title, nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/admin/news/:id
func UpdateNewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateNewsRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.NewsItems.Get(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if body.Title != nil {
			fields["title"] = strings.TrimSpace(*body.Title)
		}
		if body.Content != nil {
			content, err := sanitizeContent(*body.Content)
			if err != nil {
				return err
			}
			fields["content"] = content
		}
		if body.Image != nil {
			fields["image"] = strings.TrimSpace(*body.Image)
		}
		if body.Date != nil {
			d, err := parseNewsDate(*body.Date)
			if err != nil {
				return err
			}
			fields["date"] = d
		}

		after, err := repository.NewsItems.Update(ctx, id, fields)
		if err != nil {
			return err
		}

		res := toNewsResponse(*after)
		audit.Record(c, "news", id, models.AuditActionUpdate, "news updated: "+after.Title, toNewsResponse(*before), res)
		return c.JSON(res)
	}
}

// DELETE /api/admin/news/:id
func DeleteNewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		before, err := repository.NewsItems.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repository.NewsItems.Delete(ctx, id); err != nil {
			return err
		}

		audit.Record(c, "news", id, models.AuditActionDelete, "news deleted: "+before.Title, toNewsResponse(*before), nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
