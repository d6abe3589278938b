// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"contractdesk/internal/docx"
	"contractdesk/internal/kv"
	"contractdesk/internal/models"
	"contractdesk/internal/placeholder"
	"contractdesk/internal/slug"
	"contractdesk/internal/storage"
)

// ObjectStorage keeps a copy of uploaded template binaries outside the kv
// store. *storage.Client satisfies it.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// TemplateUpload is the payload for uploading a new template.
type TemplateUpload struct {
	Name        string    `label:"Template name" validate:"required,max=200"`
	Description string    `label:"Description" validate:"max=2000"`
	CategoryID  uuid.UUID `label:"Category" validate:"required"`
	UploadedBy  string    `label:"Uploaded by" validate:"max=200"`
	FileName    string    `label:"File" validate:"required"`
	Data        []byte    `label:"File" validate:"required,min=1"`
}

// TemplateFilter narrows List results. Zero values match everything.
type TemplateFilter struct {
	CategoryID uuid.UUID
	Query      string
}

// TemplateStore manages uploaded contract templates.
type TemplateStore struct {
	backend
	mu         sync.Mutex
	categories *CategoryStore
	objects    ObjectStorage
}

// NewTemplateStore returns a new TemplateStore. objects may be nil, in which
// case template binaries live only in the kv store.
func NewTemplateStore(store kv.Store, latency time.Duration, categories *CategoryStore, objects ObjectStorage) *TemplateStore {
	return &TemplateStore{
		backend:    newBackend(store, latency),
		categories: categories,
		objects:    objects,
	}
}

// List returns templates newest first, optionally filtered by category and
// a case-insensitive search over name, description and category.
func (s *TemplateStore) List(ctx context.Context, f TemplateFilter) ([]models.Template, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	items, _, err := loadList[models.Template](ctx, s.kv, KeyTemplates)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := items[:0]
	for _, t := range items {
		if f.CategoryID != uuid.Nil && t.CategoryID != f.CategoryID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(strings.ToLower(t.Category), q) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FindByID retrieves a template by ID. Returns nil if not found.
func (s *TemplateStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	items, _, err := loadList[models.Template](ctx, s.kv, KeyTemplates)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// Upload validates and stores a new template. The binary is kept base64
// encoded with a data URL for previews, and its placeholders become the
// template's fields.
func (s *TemplateStore) Upload(ctx context.Context, in TemplateUpload) (models.Result[*models.Template], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Template]{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return models.Fail[*models.Template](validationMessage(err)), nil
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	format := models.FileFormat(strings.TrimPrefix(ext, "."))
	if !format.Valid() {
		return models.Fail[*models.Template]("Unsupported file type. Upload a PDF, DOCX, DOC or TXT file."), nil
	}

	fields := []models.TemplateField{}
	text, err := docx.TextFromFile(format, in.Data)
	switch {
	case errors.Is(err, docx.ErrInvalidDocument):
		return models.Fail[*models.Template](fmt.Sprintf("The uploaded file is not a readable %s document.", strings.ToUpper(string(format)))), nil
	case errors.Is(err, docx.ErrUnsupportedFormat):
		// Stored as-is without fields.
	case err != nil:
		return models.Result[*models.Template]{}, fmt.Errorf("extract template text: %w", err)
	default:
		fields = placeholder.ExtractFields(text)
	}

	// Holding the category lock until the template is saved keeps a
	// concurrent category Delete from passing its in-use check in between.
	// Lock order: categories, then templates.
	s.categories.mu.Lock()
	defer s.categories.mu.Unlock()

	category, err := s.categories.lookupLocked(ctx, in.CategoryID)
	if err != nil {
		return models.Result[*models.Template]{}, err
	}
	if category == nil {
		return models.Fail[*models.Template]("Category not found."), nil
	}

	now := s.now()
	encoded := base64.StdEncoding.EncodeToString(in.Data)
	t := models.Template{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  category.ID,
		Category:    category.Name,
		File: models.TemplateFile{
			Name:    filepath.Base(in.FileName),
			Content: encoded,
			DataURL: "data:" + format.MIMEType() + ";base64," + encoded,
			Format:  format,
			Size:    int64(len(in.Data)),
		},
		UploadedBy:    in.UploadedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
		Fields:        fields,
		HasFormFields: len(fields) > 0,
	}
	t.File.URL = t.File.DataURL

	if s.objects != nil {
		key := storage.TemplateKey(now, t.ID.String(), slug.Generate(t.Name), ext)
		url, err := s.objects.Upload(ctx, key, format.MIMEType(), in.Data)
		if err != nil {
			return models.Result[*models.Template]{}, fmt.Errorf("upload template object: %w", err)
		}
		t.File.URL = url
		t.File.ObjectKey = key
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := loadList[models.Template](ctx, s.kv, KeyTemplates)
	if err != nil {
		s.discardObject(ctx, t.File.ObjectKey)
		return models.Result[*models.Template]{}, err
	}
	items = append(items, t)
	if err := saveList(ctx, s.kv, KeyTemplates, items); err != nil {
		s.discardObject(ctx, t.File.ObjectKey)
		return models.Result[*models.Template]{}, fmt.Errorf("create template: %w", err)
	}
	return models.OK("Template uploaded successfully.", &t), nil
}

// RecordUsage increments the usage counter and stamps the last-used time.
func (s *TemplateStore) RecordUsage(ctx context.Context, id uuid.UUID) (models.Result[*models.Template], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Template]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := loadList[models.Template](ctx, s.kv, KeyTemplates)
	if err != nil {
		return models.Result[*models.Template]{}, err
	}
	idx := indexTemplate(items, id)
	if idx < 0 {
		return models.Fail[*models.Template]("Template not found."), nil
	}

	now := s.now()
	items[idx].UsageCount++
	items[idx].LastUsedAt = &now
	if err := saveList(ctx, s.kv, KeyTemplates, items); err != nil {
		return models.Result[*models.Template]{}, fmt.Errorf("record template usage: %w", err)
	}
	t := items[idx]
	return models.OK("Template usage recorded.", &t), nil
}

// Delete removes a template. Contracts keep their own copy of the binary
// and are not affected. A stored object is removed on a best-effort basis.
func (s *TemplateStore) Delete(ctx context.Context, id uuid.UUID) (models.Result[*models.Template], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Template]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := loadList[models.Template](ctx, s.kv, KeyTemplates)
	if err != nil {
		return models.Result[*models.Template]{}, err
	}
	idx := indexTemplate(items, id)
	if idx < 0 {
		return models.Fail[*models.Template]("Template not found."), nil
	}
	t := items[idx]
	items = append(items[:idx], items[idx+1:]...)
	if err := saveList(ctx, s.kv, KeyTemplates, items); err != nil {
		return models.Result[*models.Template]{}, fmt.Errorf("delete template: %w", err)
	}

	s.discardObject(ctx, t.File.ObjectKey)
	return models.OK("Template deleted successfully.", &t), nil
}

// discardObject removes a stored template object on a best-effort basis.
func (s *TemplateStore) discardObject(ctx context.Context, key string) {
	if s.objects == nil || key == "" {
		return
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		slog.Warn("delete template object failed", "key", key, "error", err)
	}
}

// Count returns the number of templates.
func (s *TemplateStore) Count(ctx context.Context) (int, error) {
	items, err := s.List(ctx, TemplateFilter{})
	return len(items), err
}

// FileBytes decodes the base64 content of a template file.
func FileBytes(f models.TemplateFile) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(f.Content)
	if err != nil {
		return nil, fmt.Errorf("decode template file %q: %w", f.Name, err)
	}
	return data, nil
}

// FileText returns the flat text of a stored template file. Formats without
// extractable text yield an empty string.
func FileText(f models.TemplateFile) (string, error) {
	data, err := FileBytes(f)
	if err != nil {
		return "", err
	}
	text, err := docx.TextFromFile(f.Format, data)
	if errors.Is(err, docx.ErrUnsupportedFormat) {
		return "", nil
	}
	return text, err
}

func indexTemplate(items []models.Template, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
