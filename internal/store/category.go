// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"contractdesk/internal/kv"
	"contractdesk/internal/models"
)

// DefaultCategories are seeded as system categories the first time the
// category collection is read.
var DefaultCategories = []string{
	"General",
	"Employment",
	"Non-Disclosure Agreement",
	"Sales",
	"Service Agreement",
}

// CategoryInput is the payload for creating or renaming a category.
type CategoryInput struct {
	Name        string `json:"name" label:"Category name" validate:"required,max=100"`
	Description string `json:"description" label:"Description" validate:"max=500"`
	CreatedBy   string `json:"created_by" label:"Created by" validate:"max=200"`
}

// CategoryStore manages template categories.
type CategoryStore struct {
	backend
	mu sync.Mutex
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(store kv.Store, latency time.Duration) *CategoryStore {
	return &CategoryStore{backend: newBackend(store, latency)}
}

// load reads all categories, seeding the defaults when the collection has
// never been written.
func (s *CategoryStore) load(ctx context.Context) ([]models.Category, error) {
	items, ok, err := loadList[models.Category](ctx, s.kv, KeyCategories)
	if err != nil || ok {
		return items, err
	}

	now := s.now()
	items = make([]models.Category, 0, len(DefaultCategories))
	for _, name := range DefaultCategories {
		items = append(items, models.Category{
			ID:        uuid.New(),
			Name:      name,
			System:    true,
			CreatedBy: "system",
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := saveList(ctx, s.kv, KeyCategories, items); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return items, nil
}

// EnsureDefaults seeds the system categories if the collection is empty.
func (s *CategoryStore) EnsureDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load(ctx)
	return err
}

// List returns all categories, system categories first, then by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	items, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].System != items[j].System {
			return items[i].System
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.lookup(ctx, id)
}

// lookup finds a category without the simulated latency.
func (s *CategoryStore) lookup(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(ctx, id)
}

// lookupLocked is lookup for callers that already hold s.mu.
func (s *CategoryStore) lookupLocked(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if idx := indexCategory(items, id); idx >= 0 {
		return &items[idx], nil
	}
	return nil, nil
}

// Create adds a category. Names are unique regardless of case.
func (s *CategoryStore) Create(ctx context.Context, in CategoryInput) (models.Result[*models.Category], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Category]{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return models.Fail[*models.Category](validationMessage(err)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return models.Result[*models.Category]{}, err
	}
	if dup := findByName(items, in.Name, uuid.Nil); dup != nil {
		return models.Fail[*models.Category](fmt.Sprintf("A category named %q already exists.", dup.Name)), nil
	}

	now := s.now()
	c := models.Category{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items = append(items, c)
	if err := saveList(ctx, s.kv, KeyCategories, items); err != nil {
		return models.Result[*models.Category]{}, fmt.Errorf("create category: %w", err)
	}
	return models.OK("Category created successfully.", &c), nil
}

// Update renames a category. System categories cannot be changed.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, in CategoryInput) (models.Result[*models.Category], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Category]{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return models.Fail[*models.Category](validationMessage(err)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return models.Result[*models.Category]{}, err
	}
	idx := indexCategory(items, id)
	if idx < 0 {
		return models.Fail[*models.Category]("Category not found."), nil
	}
	if items[idx].System {
		return models.Fail[*models.Category]("System categories cannot be modified."), nil
	}
	if dup := findByName(items, in.Name, id); dup != nil {
		return models.Fail[*models.Category](fmt.Sprintf("A category named %q already exists.", dup.Name)), nil
	}

	items[idx].Name = in.Name
	items[idx].Description = in.Description
	items[idx].UpdatedAt = s.now()
	if err := saveList(ctx, s.kv, KeyCategories, items); err != nil {
		return models.Result[*models.Category]{}, fmt.Errorf("update category: %w", err)
	}
	c := items[idx]
	return models.OK("Category updated successfully.", &c), nil
}

// Delete removes a category. System categories and categories still
// referenced by templates are kept.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (models.Result[*models.Category], error) {
	if err := s.delay(ctx); err != nil {
		return models.Result[*models.Category]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return models.Result[*models.Category]{}, err
	}
	idx := indexCategory(items, id)
	if idx < 0 {
		return models.Fail[*models.Category]("Category not found."), nil
	}
	c := items[idx]
	if c.System {
		return models.Fail[*models.Category](fmt.Sprintf("%q is a system category and cannot be deleted.", c.Name)), nil
	}

	templates, _, err := loadList[models.Template](ctx, s.kv, KeyTemplates)
	if err != nil {
		return models.Result[*models.Category]{}, err
	}
	inUse := 0
	for _, t := range templates {
		if t.CategoryID == id {
			inUse++
		}
	}
	if inUse > 0 {
		return models.Fail[*models.Category](fmt.Sprintf("%q is used by %d template(s) and cannot be deleted.", c.Name, inUse)), nil
	}

	items = append(items[:idx], items[idx+1:]...)
	if err := saveList(ctx, s.kv, KeyCategories, items); err != nil {
		return models.Result[*models.Category]{}, fmt.Errorf("delete category: %w", err)
	}
	return models.OK("Category deleted successfully.", &c), nil
}

// Count returns the number of categories.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	items, err := s.List(ctx)
	return len(items), err
}

func indexCategory(items []models.Category, id uuid.UUID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// findByName returns the category whose name matches case-insensitively,
// ignoring the category with ID except.
func findByName(items []models.Category, name string, except uuid.UUID) *models.Category {
	for i := range items {
		if items[i].ID != except && items[i].SameName(name) {
			return &items[i]
		}
	}
	return nil
}
