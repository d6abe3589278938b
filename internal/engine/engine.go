// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine ties the template pipeline together: it reads template
// text, populates it with field values, creates contracts through the
// service layer and renders them as HTML, DOCX or a filled copy of the
// original template file.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contractdesk/internal/cache"
	"contractdesk/internal/docx"
	"contractdesk/internal/models"
	"contractdesk/internal/placeholder"
	"contractdesk/internal/render"
	"contractdesk/internal/slug"
	"contractdesk/internal/store"
)

// Format is an export format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
	FormatOriginal Format = "original"
)

// ErrUnknownFormat is returned for an export format the engine cannot produce.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates an export format name. Empty means HTML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatDOCX, FormatOriginal:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Document is a rendered file ready to be downloaded.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Preview is the result of populating a template without saving it.
type Preview struct {
	Content    string                 `json:"content"`
	Fields     []models.TemplateField `json:"fields"`
	Unresolved []string               `json:"unresolved"`
}

// ExportCache stores rendered exports between requests. *cache.ExportCache
// satisfies it.
type ExportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
	InvalidateContract(ctx context.Context, contractID string)
}

// Engine renders templates and contracts. It keeps an in-memory cache (L1)
// of template text and, when configured, an export cache (L2) of rendered
// contract files.
type Engine struct {
	templates *store.TemplateStore
	contracts *store.ContractStore
	renderer  *render.Renderer
	texts     *textCache

	// Nil when Valkey is not configured; exports are then rendered on
	// every request.
	exports ExportCache
}

// New creates an engine with an empty L1 cache.
func New(templates *store.TemplateStore, contracts *store.ContractStore, renderer *render.Renderer) *Engine {
	return &Engine{
		templates: templates,
		contracts: contracts,
		renderer:  renderer,
		texts:     newTextCache(),
	}
}

// SetExportCache configures the optional export cache.
func (e *Engine) SetExportCache(c ExportCache) {
	e.exports = c
}

// InvalidateTemplate drops a template's cached text. Called after a
// template is deleted.
func (e *Engine) InvalidateTemplate(id uuid.UUID) {
	e.texts.invalidate(id.String())
}

// InvalidateContract drops every cached export of a contract. Called after
// a contract is deleted.
func (e *Engine) InvalidateContract(ctx context.Context, id uuid.UUID) {
	if e.exports != nil {
		e.exports.InvalidateContract(ctx, id.String())
	}
}

// TemplateText returns a template and its flat text. Both are nil/empty
// when the template does not exist.
func (e *Engine) TemplateText(ctx context.Context, id uuid.UUID) (*models.Template, string, error) {
	tmpl, err := e.templates.FindByID(ctx, id)
	if err != nil || tmpl == nil {
		return nil, "", err
	}
	if text, ok := e.texts.get(id.String()); ok {
		return tmpl, text, nil
	}

	text, err := store.FileText(tmpl.File)
	if err != nil {
		return nil, "", fmt.Errorf("template %s text: %w", id, err)
	}
	e.texts.put(id.String(), text)
	return tmpl, text, nil
}

// Preview populates a template with values without creating a contract.
// Returns nil when the template does not exist.
func (e *Engine) Preview(ctx context.Context, templateID uuid.UUID, values map[string]string) (*Preview, error) {
	tmpl, text, err := e.TemplateText(ctx, templateID)
	if err != nil || tmpl == nil {
		return nil, err
	}
	content := placeholder.Populate(text, values)
	unresolved := placeholder.Unresolved(content)
	if unresolved == nil {
		unresolved = []string{}
	}
	return &Preview{Content: content, Fields: tmpl.Fields, Unresolved: unresolved}, nil
}

// Generate creates a contract from a template and records the template as
// used. Usage bookkeeping is best-effort.
func (e *Engine) Generate(ctx context.Context, in store.NewContract) (models.Result[*models.Contract], error) {
	res, err := e.contracts.Create(ctx, in)
	if err != nil || !res.Success {
		return res, err
	}

	if usage, err := e.templates.RecordUsage(ctx, in.TemplateID); err != nil {
		slog.Warn("record template usage failed", "template_id", in.TemplateID, "error", err)
	} else if !usage.Success {
		slog.Warn("record template usage failed", "template_id", in.TemplateID, "reason", usage.Message)
	}
	return res, nil
}

// Export renders a contract in the given format. Returns nil when the
// contract does not exist.
func (e *Engine) Export(ctx context.Context, id uuid.UUID, format Format) (*Document, error) {
	c, err := e.contracts.FindByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}

	doc := &Document{}
	switch format {
	case FormatHTML:
		doc.ContentType = render.ContentType
		doc.Filename = slug.Filename(c.Title, "contract", ".html")
	case FormatDOCX:
		doc.ContentType = docx.ContentType
		doc.Filename = slug.Filename(c.Title, "contract", ".docx")
	case FormatOriginal:
		doc.ContentType = c.TemplateFormat.MIMEType()
		doc.Filename = slug.Filename(c.Title, "contract", "."+string(c.TemplateFormat))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	key := cache.ExportKey(c.ID.String(), c.Version, string(format))
	if e.exports != nil {
		if data, ok := e.exports.Get(ctx, key); ok {
			doc.Data = data
			return doc, nil
		}
	}

	switch format {
	case FormatHTML:
		doc.Data, err = e.renderer.HTML(c.Title, c.Content)
	case FormatDOCX:
		doc.Data, err = docx.Render(c.Title, c.Content)
	case FormatOriginal:
		doc.Data, err = fillOriginal(c)
	}
	if err != nil {
		return nil, fmt.Errorf("export contract %s as %s: %w", c.ID, format, err)
	}

	if e.exports != nil {
		e.exports.Set(ctx, key, doc.Data)
	}
	return doc, nil
}

// Render populates content with values and renders it without touching
// any store.
func (e *Engine) Render(title, content string, values map[string]string, format Format) (*Document, error) {
	content = placeholder.Populate(content, values)
	switch format {
	case FormatHTML, "":
		data, err := e.renderer.HTML(title, content)
		if err != nil {
			return nil, err
		}
		return &Document{Data: data, ContentType: render.ContentType, Filename: slug.Filename(title, "document", ".html")}, nil
	case FormatDOCX:
		data, err := docx.Render(title, content)
		if err != nil {
			return nil, err
		}
		return &Document{Data: data, ContentType: docx.ContentType, Filename: slug.Filename(title, "document", ".docx")}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// CacheSize returns the number of templates in the L1 text cache.
func (e *Engine) CacheSize() int {
	return e.texts.len()
}

// fillOriginal substitutes the contract's values into its copy of the
// template binary. Formats without editable text are returned unchanged.
func fillOriginal(c *models.Contract) ([]byte, error) {
	data, err := store.FileBytes(models.TemplateFile{
		Name:    c.TemplateName,
		Content: c.TemplateContent,
		Format:  c.TemplateFormat,
	})
	if err != nil {
		return nil, err
	}
	switch c.TemplateFormat {
	case models.FormatDOCX:
		return docx.Fill(data, c.FieldValues)
	case models.FormatTXT:
		return []byte(placeholder.Populate(string(data), c.FieldValues)), nil
	default:
		return data, nil
	}
}
