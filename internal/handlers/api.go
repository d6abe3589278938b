// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for contractdesk.
// Handlers are grouped by resource (categories, templates, contracts) and
// receive their dependencies through the API struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contractdesk/internal/engine"
	"contractdesk/internal/models"
	"contractdesk/internal/store"
)

// DefaultUploadMaxBytes caps template uploads when no limit is configured.
const DefaultUploadMaxBytes = 10 << 20

// API groups all HTTP handlers and their dependencies.
type API struct {
	categories *store.CategoryStore
	templates  *store.TemplateStore
	contracts  *store.ContractStore
	engine     *engine.Engine
	maxUpload  int64
}

// NewAPI creates a new API handler group. maxUpload limits the size of a
// template upload in bytes.
func NewAPI(categories *store.CategoryStore, templates *store.TemplateStore, contracts *store.ContractStore, eng *engine.Engine, maxUpload int64) *API {
	if maxUpload <= 0 {
		maxUpload = DefaultUploadMaxBytes
	}
	return &API{
		categories: categories,
		templates:  templates,
		contracts:  contracts,
		engine:     eng,
		maxUpload:  maxUpload,
	}
}

// Dashboard returns contract counts per status, collection sizes, the
// most recently updated contracts and the most used templates.
func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := a.contracts.Stats(ctx)
	if err != nil {
		writeInternal(w, r, "contract stats", err)
		return
	}
	templates, err := a.templates.List(ctx, store.TemplateFilter{})
	if err != nil {
		writeInternal(w, r, "list templates", err)
		return
	}
	categories, err := a.categories.Count(ctx)
	if err != nil {
		writeInternal(w, r, "count categories", err)
		return
	}
	recent, err := a.contracts.List(ctx, "")
	if err != nil {
		writeInternal(w, r, "list contracts", err)
		return
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	popular := make([]models.Template, 0, len(templates))
	for _, t := range templates {
		if t.UsageCount > 0 {
			popular = append(popular, t)
		}
	}
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].UsageCount > popular[j].UsageCount
	})
	if len(popular) > 5 {
		popular = popular[:5]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          "",
		"contracts":        stats,
		"template_count":   len(templates),
		"category_count":   categories,
		"recent_contracts": summarize(recent),
		"popular":          popular,
	})
}

// contractSummary is the dashboard view of a contract.
type contractSummary struct {
	ID           uuid.UUID             `json:"id"`
	Title        string                `json:"title"`
	TemplateName string                `json:"template_name"`
	Status       models.ContractStatus `json:"status"`
	Version      int                   `json:"version"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func summarize(cs []models.Contract) []contractSummary {
	out := make([]contractSummary, 0, len(cs))
	for _, c := range cs {
		out = append(out, contractSummary{
			ID:           c.ID,
			Title:        c.Title,
			TemplateName: c.TemplateName,
			Status:       c.Status,
			Version:      c.Version,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return out
}

// --- response helpers ---

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeResult writes a result envelope with the payload under entity.
// Failed results map to 404 when the entity is missing and 422 otherwise.
func writeResult[T any](w http.ResponseWriter, entity string, okStatus int, res models.Result[T]) {
	if !res.Success {
		writeFail(w, failureStatus(res.Message), res.Message)
		return
	}
	writeJSON(w, okStatus, map[string]any{
		"success": true,
		"message": res.Message,
		entity:    res.Data,
	})
}

// failureStatus maps a validation message to an HTTP status.
func failureStatus(msg string) int {
	if strings.HasSuffix(msg, "not found.") {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

// writeFail writes a failed envelope.
func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

// writeInternal logs a storage or rendering error and writes a generic
// failure. Error details never reach the client.
func writeInternal(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op+" failed", "error", err, "method", r.Method, "path", r.URL.Path)
	writeFail(w, http.StatusInternalServerError, "Internal error.")
}

// pathID parses the {id} URL parameter. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid "+entity+" ID.")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a size-limited JSON body into v. On failure it writes a
// 400 (413 when the body is too large) and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFail(w, http.StatusRequestEntityTooLarge, "Request body is too large.")
			return false
		}
		writeFail(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}
