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
	"strings"
)

// maxPartSize caps how much of a single zip entry is read.
const maxPartSize = 32 << 20

// ExtractText returns the flat text of a DOCX document. Non-empty paragraphs
// are separated by a blank line; tabs and manual line breaks inside a paragraph
// become "\t" and "\n". Text split across formatting runs is joined.
func ExtractText(data []byte) (string, error) {
	part, err := readPart(data, documentPart)
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(part))
	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parse %s: %v", ErrInvalidDocument, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if strings.TrimSpace(current.String()) != "" {
					paragraphs = append(paragraphs, current.String())
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		paragraphs = append(paragraphs, current.String())
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// readPart returns the contents of one entry of a DOCX zip package.
func readPart(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidDocument, name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidDocument, name, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, name)
}
