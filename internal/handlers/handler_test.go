// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory kv store with no simulated latency.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contractdesk/internal/engine"
	"contractdesk/internal/kv"
	"contractdesk/internal/render"
	"contractdesk/internal/store"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	KV         kv.Store
	Categories *store.CategoryStore
	Templates  *store.TemplateStore
	Contracts  *store.ContractStore
	Engine     *engine.Engine
	API        *API
}

// newTestEnv creates a complete test environment over a fresh memory store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, kv.NewMemory())
}

func newTestEnvWith(t *testing.T, backend kv.Store) *testEnv {
	t.Helper()

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	categories := store.NewCategoryStore(backend, 0)
	templates := store.NewTemplateStore(backend, 0, categories, nil)
	contracts := store.NewContractStore(backend, 0)
	eng := engine.New(templates, contracts, renderer)

	return &testEnv{
		KV:         backend,
		Categories: categories,
		Templates:  templates,
		Contracts:  contracts,
		Engine:     eng,
		API:        NewAPI(categories, templates, contracts, eng, 1<<20),
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with a JSON body and an optional {id} param.
func jsonRequest(t *testing.T, method, target, id string, body any) *http.Request {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if id != "" {
		req = withChiURLParam(req, "id", id)
	}
	return req
}

// envelope is a decoded JSON response.
type envelope map[string]json.RawMessage

func (e envelope) success(t *testing.T) bool {
	t.Helper()
	var ok bool
	if err := json.Unmarshal(e["success"], &ok); err != nil {
		t.Fatalf("decode success: %v", err)
	}
	return ok
}

func (e envelope) message(t *testing.T) string {
	t.Helper()
	var msg string
	json.Unmarshal(e["message"], &msg)
	return msg
}

// decode unmarshals the value stored under key into v.
func (e envelope) decode(t *testing.T, key string, v any) {
	t.Helper()
	raw, ok := e[key]
	if !ok {
		t.Fatalf("response has no %q key: %v", key, e)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", key, err)
	}
}

// serve runs a handler and decodes its JSON response, checking the status.
func serve(t *testing.T, h http.HandlerFunc, req *http.Request, wantStatus int) envelope {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, wantStatus, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rec.Body.String())
	}
	return env
}

// uploadRequest builds a multipart template upload.
func uploadRequest(t *testing.T, fields map[string]string, fileName string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/templates", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// categoryID returns the ID of a seeded category.
func (env *testEnv) categoryID(t *testing.T, name string) uuid.UUID {
	t.Helper()
	items, err := env.Categories.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range items {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %q not found", name)
	return uuid.Nil
}

// uploadTemplate uploads a text template through the handler.
func (env *testEnv) uploadTemplate(t *testing.T, name, text string) uuid.UUID {
	t.Helper()
	req := uploadRequest(t, map[string]string{
		"name":        name,
		"category_id": env.categoryID(t, "General").String(),
		"uploaded_by": "tester",
	}, "template.txt", []byte(text))
	res := serve(t, env.API.UploadTemplate, req, http.StatusCreated)
	var tmpl struct {
		ID uuid.UUID `json:"id"`
	}
	res.decode(t, "template", &tmpl)
	return tmpl.ID
}
