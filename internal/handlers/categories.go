// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"contractdesk/internal/store"
)

// ListCategories returns every category, system categories first.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := a.categories.List(r.Context())
	if err != nil {
		writeInternal(w, r, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "", "categories": items})
}

// CreateCategory adds a category from a JSON body.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in store.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := a.categories.Create(r.Context(), in)
	if err != nil {
		writeInternal(w, r, "create category", err)
		return
	}
	writeResult(w, "category", http.StatusCreated, res)
}

// UpdateCategory renames a category.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "category")
	if !ok {
		return
	}
	var in store.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := a.categories.Update(r.Context(), id, in)
	if err != nil {
		writeInternal(w, r, "update category", err)
		return
	}
	writeResult(w, "category", http.StatusOK, res)
}

// DeleteCategory removes a category.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "category")
	if !ok {
		return
	}
	res, err := a.categories.Delete(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "delete category", err)
		return
	}
	writeResult(w, "category", http.StatusOK, res)
}
