// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package docx is the word-processor adapter of the template pipeline. It
// renders contract text into a DOCX (Office Open XML) package, extracts
// flat paragraph text from uploaded DOCX templates, and regenerates a
// template binary with placeholder values filled in. Styles, tables and
// images are not interpreted.
package docx

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"contractdesk/internal/models"
)

// ContentType is the MIME type of generated documents.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	// wordNS is the WordprocessingML main namespace.
	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	// documentPart is the zip entry holding the main document body.
	documentPart = "word/document.xml"
)

var (
	// ErrInvalidDocument is returned when the input is not a readable DOCX package.
	ErrInvalidDocument = errors.New("invalid docx document")

	// ErrUnsupportedFormat is returned when text cannot be extracted from a format.
	ErrUnsupportedFormat = errors.New("unsupported template format")
)

// TextFromFile returns the flat text of a template file so placeholders can
// be scanned. Only DOCX and plain text carry extractable text; PDF and legacy
// DOC return ErrUnsupportedFormat.
func TextFromFile(format models.FileFormat, data []byte) (string, error) {
	switch format {
	case models.FormatDOCX:
		return ExtractText(data)
	case models.FormatTXT:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("plain text template is not valid UTF-8: %w", ErrInvalidDocument)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
