// Package media stores uploaded images on disk and records them in the
// uploads table for the admin gallery.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxUploadSize caps a single stored file.
const MaxUploadSize = 10 << 20

var (
	ErrTooLarge        = errors.New("file exceeds the 10 MiB limit")
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrInvalidName     = errors.New("invalid file name")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
	".avif": true,
}

// AllowedExtensions lists the accepted extensions in a stable order.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedExt))
	for ext := range allowedExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extension returns the lowercase extension of name when it is allowed.
func Extension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// Store writes files under Dir and builds their public URLs from URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
}

func NewStore(dir, urlPrefix string) *Store {
	return &Store{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *Store) URL(name string) string {
	return s.URLPrefix + "/" + name
}

// Save streams r to a new randomly named file with the extension of
// originalName. originalName is kept as display metadata only.
func (s *Store) Save(ctx context.Context, r io.Reader, originalName string) (*models.Upload, error) {
	ext, err := Extension(originalName)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	n, err := io.Copy(tmp, io.LimitReader(r, MaxUploadSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}
	if n > MaxUploadSize {
		return nil, ErrTooLarge
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(tmpPath); err == nil {
		contentType = mt.String()
	}

	name := uuid.NewString() + ext
	if err := os.Rename(tmpPath, filepath.Join(s.Dir, name)); err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	rec := models.Upload{
		Name:         name,
		OriginalName: filepath.Base(strings.TrimSpace(originalName)),
		Size:         n,
		ContentType:  contentType,
	}
	if err := repository.Uploads.Create(ctx, &rec); err != nil {
		_ = os.Remove(filepath.Join(s.Dir, name))
		return nil, err
	}
	return &rec, nil
}

// Entry is one gallery item. Files placed in Dir by other means have no
// record and show up with their stored name only.
type Entry struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// List returns the stored images newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	records, err := repository.Uploads.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.Upload, len(records))
	for _, r := range records {
		byName[r.Name] = r
	}

	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading upload dir: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, err := Extension(name); err != nil {
			continue
		}

		e := Entry{Name: name, URL: s.URL(name)}
		if rec, ok := byName[name]; ok {
			e.OriginalName = rec.OriginalName
			e.Size = rec.Size
			e.ContentType = rec.ContentType
			e.CreatedAt = rec.CreatedAt
		} else if info, err := de.Info(); err == nil {
			e.OriginalName = name
			e.Size = info.Size()
			e.CreatedAt = info.ModTime()
		}
		entries = append(entries, e)
	}

	for name := range byName {
		if _, err := os.Stat(filepath.Join(s.Dir, name)); errors.Is(err, os.ErrNotExist) {
			zap.L().Warn("upload record without file", zap.String("name", name))
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// validName accepts only a bare file name inside Dir.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}

// Delete removes the file and its record. It returns
// repository.ErrNotFound when neither exists.
func (s *Store) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}

	fileErr := os.Remove(filepath.Join(s.Dir, name))
	if fileErr != nil && !errors.Is(fileErr, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", name, fileErr)
	}

	rec, err := repository.UploadByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if fileErr != nil {
			return repository.ErrNotFound
		}
		return nil
	case err != nil:
		return err
	}
	return repository.Uploads.Delete(ctx, rec.ID)
}
