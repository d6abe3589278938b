// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns finalized contract text into a standalone HTML
// document. Content is treated as plain text: it is escaped, split into
// paragraphs on blank lines, and single newlines become <br> tags.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// ContentType is the MIME type of rendered documents.
const ContentType = "text/html; charset=utf-8"

// blankLine splits content into paragraphs.
var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// escaper replaces the five HTML-unsafe characters.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// documentData is the data passed to templates/document.html.
type documentData struct {
	Title      string
	Paragraphs []template.HTML
}

// Renderer holds the parsed document layout.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded document layout.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/document.html")
	if err != nil {
		return nil, fmt.Errorf("parse document template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// HTML renders content as a complete HTML page, using title both as the
// page <title> and as the top heading. The output is deterministic.
func (rn *Renderer) HTML(title, content string) ([]byte, error) {
	var buf bytes.Buffer
	data := documentData{Title: title, Paragraphs: Paragraphs(content)}
	if err := rn.tmpl.ExecuteTemplate(&buf, "document.html", data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Paragraphs escapes content and splits it into paragraph fragments that are
// safe to embed in a <p> element.
func Paragraphs(content string) []template.HTML {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []template.HTML
	for _, p := range blankLine.Split(content, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.ReplaceAll(Escape(p), "\n", "<br>")
		out = append(out, template.HTML(p))
	}
	return out
}

// Escape replaces &, <, >, " and ' with their HTML entities.
func Escape(s string) string {
	return escaper.Replace(s)
}
