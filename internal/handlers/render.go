// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"contractdesk/internal/engine"
)

// Render populates and renders posted content without storing anything.
func (a *API) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !checkBody(w, req) {
		return
	}
	format, err := engine.ParseFormat(req.Format)
	if err != nil || format == engine.FormatOriginal {
		writeFail(w, http.StatusBadRequest, "Unknown render format. Use html or docx.")
		return
	}

	doc, err := a.engine.Render(req.Title, req.Content, req.Values, format)
	if err != nil {
		writeInternal(w, r, "render document", err)
		return
	}
	writeDocument(w, doc)
}
