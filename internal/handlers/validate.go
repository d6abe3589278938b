// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"contractdesk/internal/store"
)

// maxJSONBody caps every JSON request body.
const maxJSONBody = 1 << 20

// renderRequest is the body of a stateless render.
type renderRequest struct {
	Title   string            `json:"title" label:"Title" validate:"notblank,max=300"`
	Content string            `json:"content" label:"Content" validate:"notblank,max=500000"`
	Values  map[string]string `json:"values" label:"Field values" validate:"max=500,dive,max=10000"`
	Format  string            `json:"format"`
}

// valuesRequest carries field values for a contract update or a template
// preview.
type valuesRequest struct {
	Values map[string]string `json:"values" label:"Field values" validate:"max=500,dive,max=10000"`
}

// checkBody validates a decoded request with the store's rules and writes
// a 422 envelope on failure.
func checkBody(w http.ResponseWriter, v any) bool {
	if msg := store.Check(v); msg != "" {
		writeFail(w, http.StatusUnprocessableEntity, msg)
		return false
	}
	return true
}
