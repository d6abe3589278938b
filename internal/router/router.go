// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// contractdesk API. Read-only routes are open; mutating routes sit behind
// the per-IP rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"contractdesk/internal/handlers"
	"contractdesk/internal/middleware"
)

// New creates and returns the configured Chi router. A nil limiter
// disables rate limiting.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", api.Dashboard)

		r.Get("/categories", api.ListCategories)
		r.Get("/templates", api.ListTemplates)
		r.Get("/templates/{id}", api.GetTemplate)
		r.Get("/templates/{id}/fields", api.TemplateFields)
		r.Get("/contracts", api.ListContracts)
		r.Get("/contracts/{id}", api.GetContract)
		r.Get("/contracts/{id}/export", api.ExportContract)

		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}

			r.Post("/categories", api.CreateCategory)
			r.Put("/categories/{id}", api.UpdateCategory)
			r.Delete("/categories/{id}", api.DeleteCategory)

			r.Post("/templates", api.UploadTemplate)
			r.Delete("/templates/{id}", api.DeleteTemplate)
			r.Post("/templates/{id}/preview", api.PreviewTemplate)

			r.Post("/contracts", api.CreateContract)
			r.Delete("/contracts/{id}", api.DeleteContract)
			r.Put("/contracts/{id}/values", api.UpdateContractValues)
			r.Post("/contracts/{id}/transition", api.TransitionContract)
			r.Post("/contracts/{id}/reviews", api.ReviewContract)

			r.Post("/render", api.Render)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
