// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// escapedPlaceholder matches a placeholder as it appears inside XML text,
// where "<" is always escaped and ">" may or may not be.
var escapedPlaceholder = regexp.MustCompile(`&lt;([A-Za-z_][A-Za-z0-9_]*)(?:&gt;|>)`)

// fillableParts reports whether a zip entry carries document text that may
// contain placeholders.
func fillableParts(name string) bool {
	if name == documentPart {
		return true
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

// Fill returns a copy of a DOCX template with placeholder values
// substituted in the body, headers and footers. The same empty-value policy
// as the text populator applies. Only placeholders that sit inside a single
// text run are found; a token split by formatting is left as-is.
func Fill(data []byte, values map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidDocument, f.Name, err)
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidDocument, f.Name, err)
		}

		if fillableParts(f.Name) {
			content = fillXML(content, values)
		}

		hdr := f.FileHeader
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     hdr.Name,
			Method:   hdr.Method,
			Modified: hdr.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("fill docx: create %s: %w", f.Name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("fill docx: write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("fill docx: close: %w", err)
	}
	return buf.Bytes(), nil
}

// fillXML replaces escaped placeholders in raw XML with escaped values.
func fillXML(content []byte, values map[string]string) []byte {
	return escapedPlaceholder.ReplaceAllFunc(content, func(token []byte) []byte {
		name := escapedPlaceholder.FindSubmatch(token)[1]
		v := values[string(name)]
		if v == "" {
			return token
		}
		var esc bytes.Buffer
		xml.EscapeText(&esc, []byte(v))
		return esc.Bytes()
	})
}
