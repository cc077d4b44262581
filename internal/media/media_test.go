package media

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/httpx"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"
	"autocatalog-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func newMediaApp(t *testing.T) (*fiber.App, *Store) {
	t.Helper()
	testutil.OpenDB(t)

	store := NewStore(t.TempDir(), "/uploads/")
	// remote import tests fetch from an httptest server on loopback
	dl := NewDownloader(5 * time.Second)
	dl.AllowPrivate = true

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler, BodyLimit: 12 << 20})
	app.Post("/api/upload", UploadHandler(store))
	app.Post("/api/upload/remote", RemoteUploadHandler(store, dl))
	app.Get("/api/upload/presets", PresetsHandler())
	app.Get("/api/uploads", ListUploadsHandler(store))
	app.Delete("/api/uploads/:name", DeleteUploadHandler(store))
	return app, store
}

func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func upload(t *testing.T, app *fiber.App, filename string, content []byte) *http.Response {
	t.Helper()
	resp, err := app.Test(multipartRequest(t, filename, content), -1)
	require.NoError(t, err)
	return resp
}

func TestUpload_StoresUnderRandomName(t *testing.T) {
	app, store := newMediaApp(t)

	resp := upload(t, app, "../../Logo Final.PNG", pngBytes)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var res UploadResponse
	testutil.Decode(t, resp, &res)
	assert.True(t, strings.HasSuffix(res.Name, ".png"))
	assert.NotContains(t, res.Name, "Logo")
	assert.Equal(t, "/uploads/"+res.Name, res.URL)
	assert.Equal(t, "Logo Final.PNG", res.OriginalName)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, int64(len(pngBytes)), res.Size)

	_, err := os.Stat(filepath.Join(store.Dir, res.Name))
	require.NoError(t, err)

	var list []Entry
	testutil.Decode(t, testutil.Request(t, app, "GET", "/api/uploads", nil), &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Logo Final.PNG", list[0].OriginalName)
}

func TestUpload_Rejections(t *testing.T) {
	app, store := newMediaApp(t)

	resp := upload(t, app, "notes.txt", []byte("hello"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = upload(t, app, "noext", pngBytes)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = upload(t, app, "huge.jpg", bytes.Repeat([]byte{1}, MaxUploadSize+1))
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = testutil.Request(t, app, "POST", "/api/upload", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_SaveTooLarge(t *testing.T) {
	testutil.OpenDB(t)
	store := NewStore(t.TempDir(), "/uploads")

	_, err := store.Save(context.Background(), bytes.NewReader(make([]byte, MaxUploadSize+10)), "big.jpg")
	assert.ErrorIs(t, err, ErrTooLarge)

	n, err := repository.Uploads.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteUpload(t *testing.T) {
	app, store := newMediaApp(t)

	var res UploadResponse
	testutil.Decode(t, upload(t, app, "a.png", pngBytes), &res)

	// a file copied in by hand has no record but is still deletable
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "manual.jpg"), []byte("x"), 0o644))

	resp := testutil.Request(t, app, "DELETE", "/api/uploads/..hidden", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Request(t, app, "DELETE", "/api/uploads/"+res.Name, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	_, err := os.Stat(filepath.Join(store.Dir, res.Name))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = repository.UploadByName(context.Background(), res.Name)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	resp = testutil.Request(t, app, "DELETE", "/api/uploads/"+res.Name, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = testutil.Request(t, app, "DELETE", "/api/uploads/manual.jpg", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestUpload_AuditEntries(t *testing.T) {
	app, _ := newMediaApp(t)

	var res UploadResponse
	testutil.Decode(t, upload(t, app, "photo.jpeg", pngBytes), &res)
	assert.Greater(t, len(res.Name), 36)

	resp := testutil.Request(t, app, "DELETE", "/api/uploads/"+res.Name, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var entries []models.AuditLog
	require.NoError(t, database.DB.Where("entity_type = ?", "upload").Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, res.Name, e.EntityID)
		assert.LessOrEqual(t, len(e.EntityID), models.AuditEntityIDSize)
	}
	assert.Equal(t, models.AuditActionCreate, entries[0].Action)
	assert.Equal(t, models.AuditActionDelete, entries[1].Action)
}

func TestValidName(t *testing.T) {
	for name, want := range map[string]bool{
		"0b7e.png":     true,
		"":             false,
		".env":         false,
		"../etc.png":   false,
		`a\b.png`:      false,
		"a/b.png":      false,
		"x..y.png":     false,
		"plain-name.a": true,
	} {
		assert.Equal(t, want, validName(name), name)
	}
}

func TestRemoteUpload(t *testing.T) {
	app, _ := newMediaApp(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photo":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngBytes)
		case "/images/brand.webp":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "))
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		case "/big.jpg":
			w.Header().Set("Content-Length", fmt.Sprint(MaxUploadSize+1))
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	resp := testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": srv.URL + "/photo"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var res UploadResponse
	testutil.Decode(t, resp, &res)
	assert.True(t, strings.HasSuffix(res.Name, ".png"))
	assert.Equal(t, "photo.png", res.OriginalName)

	resp = testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": srv.URL + "/images/brand.webp"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": srv.URL + "/page"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": srv.URL + "/missing.png"})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	resp = testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": srv.URL + "/big.jpg"})
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": "ftp://example.com/a.png"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": "not a url"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDownloader_BlocksInternalHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	dl := NewDownloader(5 * time.Second)
	ctx := context.Background()

	for _, u := range []string{
		srv.URL + "/a.png",
		"http://10.0.0.5/a.png",
		"http://192.168.1.1/a.png",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/a.png",
		"http://[::ffff:127.0.0.1]/a.png",
		"http://0.0.0.0/a.png",
		"http://100.64.0.1/a.png",
	} {
		_, err := dl.Fetch(ctx, u)
		assert.ErrorIs(t, err, ErrBlockedHost, u)
	}

	// names are checked after resolution
	_, err := dl.Fetch(ctx, strings.Replace(srv.URL, "127.0.0.1", "localhost", 1)+"/a.png")
	assert.ErrorIs(t, err, ErrBlockedHost)

	dl.AllowPrivate = true
	remote, err := dl.Fetch(ctx, srv.URL+"/a.png")
	require.NoError(t, err)
	remote.Body.Close()
}

func TestRemoteUpload_InternalHostRejected(t *testing.T) {
	testutil.OpenDB(t)
	store := NewStore(t.TempDir(), "/uploads/")
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Post("/api/upload/remote", RemoteUploadHandler(store, NewDownloader(5*time.Second)))

	resp := testutil.Request(t, app, "POST", "/api/upload/remote", map[string]string{"url": "http://127.0.0.1:9/a.png"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPresets(t *testing.T) {
	shapes := map[string]bool{}
	for _, p := range CropPresets {
		shapes[p.Shape] = true
		assert.InDelta(t, float64(p.Width)/float64(p.Height), p.AspectRatio, 1e-9)
	}
	for _, s := range []string{"brand", "product", "category", "hero", "promo", "bottom", "news"} {
		assert.True(t, shapes[s], s)
	}
}
