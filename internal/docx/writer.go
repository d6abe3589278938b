// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Layout constants. Measurements are in twentieths of a point (twips)
// and font sizes in half-points, as WordprocessingML expects.
const (
	bodyFont      = "Times New Roman"
	bodySize      = 24   // 12pt
	lineSpacing   = 360  // 1.5 lines (240 = single)
	pageMargin    = 1440 // 1 inch
	pageWidth     = 12240
	pageHeight    = 15840
	maxHeadingLen = 100
)

// zipTime is stamped on every entry so identical input yields identical bytes.
var zipTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// IsHeading reports whether a line is treated as a section heading: it must
// contain a letter, be entirely upper-case and be shorter than 100 characters.
func IsHeading(line string) bool {
	if len([]rune(line)) >= maxHeadingLen {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// Render builds a DOCX package from contract text. The title becomes a
// level-one heading followed by a horizontal rule; every non-blank line of
// content becomes either a heading or a justified body paragraph.
func Render(title, content string) ([]byte, error) {
	var body strings.Builder
	body.WriteString(xml.Header)
	body.WriteString(`<w:document xmlns:w="` + wordNS + `"><w:body>`)

	writeParagraph(&body, `<w:pStyle w:val="Heading1"/><w:jc w:val="center"/>`, 0, title)
	// Horizontal rule: an empty paragraph with a bottom border.
	body.WriteString(`<w:p><w:pPr><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr></w:pPr></w:p>`)

	content = strings.ReplaceAll(content, "\r\n", "\n")
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsHeading(line) {
			writeParagraph(&body, `<w:pStyle w:val="Heading2"/>`, 0, line)
			continue
		}
		writeParagraph(&body, fmt.Sprintf(`<w:jc w:val="both"/><w:spacing w:line="%d" w:lineRule="auto"/>`, lineSpacing), bodySize, line)
	}

	fmt.Fprintf(&body, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`,
		pageWidth, pageHeight, pageMargin, pageMargin, pageMargin, pageMargin)
	body.WriteString(`</w:body></w:document>`)

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{documentPart, body.String()},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: zipTime})
		if err != nil {
			return nil, fmt.Errorf("render docx: create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			return nil, fmt.Errorf("render docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("render docx: close: %w", err)
	}
	return buf.Bytes(), nil
}

// writeParagraph appends one paragraph with the given paragraph properties
// and a single run in the body font. A zero size inherits the style's size.
func writeParagraph(b *strings.Builder, pPr string, size int, text string) {
	b.WriteString(`<w:p><w:pPr>`)
	b.WriteString(pPr)
	b.WriteString(`</w:pPr><w:r><w:rPr><w:rFonts w:ascii="` + bodyFont + `" w:hAnsi="` + bodyFont + `" w:cs="` + bodyFont + `"/>`)
	if size > 0 {
		fmt.Fprintf(b, `<w:sz w:val="%d"/>`, size)
	}
	b.WriteString(`</w:rPr><w:t xml:space="preserve">`)
	xml.EscapeText(b, []byte(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const rootRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const stylesXML = xml.Header + `<w:styles xmlns:w="` + wordNS + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman" w:cs="Times New Roman"/><w:sz w:val="24"/></w:rPr></w:rPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>` +
	`</w:styles>`
