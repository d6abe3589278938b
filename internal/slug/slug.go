// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives filename-safe slugs from template and contract
// titles, used for object storage keys and download filenames.
package slug

import (
	"regexp"
	"strings"
)

// MaxLen caps the length of a generated slug.
const MaxLen = 80

// separators matches every run of characters that is not a lowercase
// ASCII letter or digit.
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a lowercase, hyphen-separated slug of at most MaxLen
// characters. Truncation happens on a hyphen boundary when one is available.
// Example: "Employment Agreement (v2.1)" → "employment-agreement-v2-1"
func Generate(s string) string {
	result := separators.ReplaceAllString(strings.ToLower(s), "-")
	result = strings.Trim(result, "-")
	if len(result) <= MaxLen {
		return result
	}
	result = result[:MaxLen]
	if i := strings.LastIndexByte(result, '-'); i > 0 {
		result = result[:i]
	}
	return strings.Trim(result, "-")
}

// Filename returns a download filename built from title and ext, falling
// back to fallback when the title has no usable characters.
func Filename(title, fallback, ext string) string {
	s := Generate(title)
	if s == "" {
		s = fallback
	}
	return s + ext
}
