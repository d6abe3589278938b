// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"contractdesk/internal/store"
)

// ListTemplates returns templates, optionally filtered with ?category=<id>
// and searched with ?q=.
func (a *API) ListTemplates(w http.ResponseWriter, r *http.Request) {
	f := store.TemplateFilter{Query: r.URL.Query().Get("q")}
	if c := r.URL.Query().Get("category"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			writeFail(w, http.StatusBadRequest, "Invalid category ID.")
			return
		}
		f.CategoryID = id
	}

	items, err := a.templates.List(r.Context(), f)
	if err != nil {
		writeInternal(w, r, "list templates", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "", "templates": items})
}

// GetTemplate returns a single template.
func (a *API) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "template")
	if !ok {
		return
	}
	t, err := a.templates.FindByID(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "find template", err)
		return
	}
	if t == nil {
		writeFail(w, http.StatusNotFound, "Template not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "", "template": t})
}

// UploadTemplate stores a template from a multipart form with the fields
// name, description, category_id, uploaded_by and file.
func (a *API) UploadTemplate(w http.ResponseWriter, r *http.Request) {
	// Room for the form fields on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload+64<<10)
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File is too large (max %d MB).", a.maxUpload>>20))
			return
		}
		writeFail(w, http.StatusBadRequest, "Invalid upload form.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := store.TemplateUpload{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		UploadedBy:  r.FormValue("uploaded_by"),
	}
	if id, err := uuid.Parse(r.FormValue("category_id")); err == nil {
		in.CategoryID = id
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Reported by the store as a validation failure.
	case err != nil:
		writeFail(w, http.StatusBadRequest, "Invalid upload form.")
		return
	default:
		defer file.Close()
		if header.Size > a.maxUpload {
			writeFail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File is too large (max %d MB).", a.maxUpload>>20))
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeInternal(w, r, "read upload", err)
			return
		}
		in.FileName = header.Filename
		in.Data = data
	}

	res, err := a.templates.Upload(r.Context(), in)
	if err != nil {
		writeInternal(w, r, "upload template", err)
		return
	}
	writeResult(w, "template", http.StatusCreated, res)
}

// DeleteTemplate removes a template and drops its cached text.
func (a *API) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "template")
	if !ok {
		return
	}
	res, err := a.templates.Delete(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "delete template", err)
		return
	}
	if res.Success {
		a.engine.InvalidateTemplate(id)
	}
	writeResult(w, "template", http.StatusOK, res)
}

// TemplateFields returns the form fields extracted from a template.
func (a *API) TemplateFields(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "template")
	if !ok {
		return
	}
	t, err := a.templates.FindByID(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "find template", err)
		return
	}
	if t == nil {
		writeFail(w, http.StatusNotFound, "Template not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "",
		"fields":          t.Fields,
		"has_form_fields": t.HasFormFields,
	})
}

// PreviewTemplate populates a template with the posted values without
// creating a contract.
func (a *API) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "template")
	if !ok {
		return
	}
	var req valuesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !checkBody(w, req) {
		return
	}

	p, err := a.engine.Preview(r.Context(), id, req.Values)
	if err != nil {
		writeInternal(w, r, "preview template", err)
		return
	}
	if p == nil {
		writeFail(w, http.StatusNotFound, "Template not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "", "preview": p})
}
