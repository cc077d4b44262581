package media

import (
	"errors"

	"autocatalog-backend/internal/audit"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type UploadResponse struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
}

type RemoteUploadRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

func (s *Store) toUploadResponse(u *models.Upload) UploadResponse {
	return UploadResponse{
		URL:          s.URL(u.Name),
		Name:         u.Name,
		OriginalName: u.OriginalName,
		Size:         u.Size,
		ContentType:  u.ContentType,
	}
}

// httpError maps store failures to client errors.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, ErrTooLarge.Error())
	case errors.Is(err, ErrUnsupportedType):
		return httpx.Invalid("file", "allowed types: jpg, jpeg, png, gif, webp, svg, avif")
	case errors.Is(err, ErrInvalidName):
		return fiber.NewError(fiber.StatusBadRequest, ErrInvalidName.Error())
	case errors.Is(err, ErrInvalidURL):
		return httpx.Invalid("url", ErrInvalidURL.Error())
	case errors.Is(err, ErrBlockedHost):
		return httpx.Invalid("url", ErrBlockedHost.Error())
	case errors.Is(err, ErrRemoteFetch):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return err
}

// POST /api/upload (multipart, field "file")
func UploadHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return httpx.Invalid("file", "is required")
		}
		if fh.Size > MaxUploadSize {
			return httpError(ErrTooLarge)
		}
		if _, err := Extension(fh.Filename); err != nil {
			return httpError(err)
		}

		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()

		rec, err := store.Save(c.UserContext(), f, fh.Filename)
		if err != nil {
			return httpError(err)
		}

		res := store.toUploadResponse(rec)
		audit.Record(c, "upload", rec.Name, models.AuditActionCreate, "file uploaded: "+rec.OriginalName, nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// POST /api/upload/remote
func RemoteUploadHandler(store *Store, dl *Downloader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RemoteUploadRequest
		if err := httpx.Parse(c, &body); err != nil {
			return err
		}

		ctx := c.UserContext()
		remote, err := dl.Fetch(ctx, body.URL)
		if err != nil {
			return httpError(err)
		}
		defer remote.Body.Close()

		rec, err := store.Save(ctx, remote.Body, remote.Name)
		if err != nil {
			return httpError(err)
		}

		res := store.toUploadResponse(rec)
		audit.Record(c, "upload", rec.Name, models.AuditActionCreate, "file imported: "+body.URL, nil, res)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GET /api/uploads
func ListUploadsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := store.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// DELETE /api/uploads/:name
func DeleteUploadHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if err := store.Delete(c.UserContext(), name); err != nil {
			return httpError(err)
		}
		audit.Record(c, "upload", name, models.AuditActionDelete, "file deleted: "+name, nil, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/upload/presets
func PresetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"presets":           CropPresets,
			"allowedExtensions": AllowedExtensions(),
			"maxSize":           MaxUploadSize,
		})
	}
}
