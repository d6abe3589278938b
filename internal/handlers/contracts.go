// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"contractdesk/internal/engine"
	"contractdesk/internal/models"
	"contractdesk/internal/store"
)

// ListContracts returns contracts, optionally filtered with ?status=.
func (a *API) ListContracts(w http.ResponseWriter, r *http.Request) {
	status := models.ContractStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeFail(w, http.StatusBadRequest, "Unknown contract status.")
		return
	}
	items, err := a.contracts.List(r.Context(), status)
	if err != nil {
		writeInternal(w, r, "list contracts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "", "contracts": items})
}

// GetContract returns a single contract.
func (a *API) GetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "contract")
	if !ok {
		return
	}
	c, err := a.contracts.FindByID(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "find contract", err)
		return
	}
	if c == nil {
		writeFail(w, http.StatusNotFound, "Contract not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "", "contract": c})
}

// CreateContract generates a contract from a template.
func (a *API) CreateContract(w http.ResponseWriter, r *http.Request) {
	var in store.NewContract
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := a.engine.Generate(r.Context(), in)
	if err != nil {
		writeInternal(w, r, "create contract", err)
		return
	}
	writeResult(w, "contract", http.StatusCreated, res)
}

// UpdateContractValues merges field values into an editable contract.
func (a *API) UpdateContractValues(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "contract")
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
	res, err := a.contracts.UpdateValues(r.Context(), id, req.Values)
	if err != nil {
		writeInternal(w, r, "update contract values", err)
		return
	}
	writeResult(w, "contract", http.StatusOK, res)
}

// transitionRequest is the body of a lifecycle transition.
type transitionRequest struct {
	Status models.ContractStatus `json:"status"`
}

// TransitionContract moves a contract to a new lifecycle status.
func (a *API) TransitionContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "contract")
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := a.contracts.Transition(r.Context(), id, req.Status)
	if err != nil {
		writeInternal(w, r, "transition contract", err)
		return
	}
	writeResult(w, "contract", http.StatusOK, res)
}

// ReviewContract records a reviewer's or approver's decision.
func (a *API) ReviewContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "contract")
	if !ok {
		return
	}
	var in store.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := a.contracts.Review(r.Context(), id, in)
	if err != nil {
		writeInternal(w, r, "review contract", err)
		return
	}
	writeResult(w, "contract", http.StatusOK, res)
}

// DeleteContract removes a contract and its cached exports.
func (a *API) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "contract")
	if !ok {
		return
	}
	res, err := a.contracts.Delete(r.Context(), id)
	if err != nil {
		writeInternal(w, r, "delete contract", err)
		return
	}
	if res.Success {
		a.engine.InvalidateContract(r.Context(), id)
	}
	writeResult(w, "contract", http.StatusOK, res)
}

// ExportContract downloads a contract as ?format=html|docx|original.
func (a *API) ExportContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "contract")
	if !ok {
		return
	}
	format, err := engine.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Unknown export format. Use html, docx or original.")
		return
	}

	doc, err := a.engine.Export(r.Context(), id, format)
	if err != nil {
		writeInternal(w, r, "export contract", err)
		return
	}
	if doc == nil {
		writeFail(w, http.StatusNotFound, "Contract not found.")
		return
	}
	writeDocument(w, doc)
}

// writeDocument sends a rendered file as a download.
func writeDocument(w http.ResponseWriter, doc *engine.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}
