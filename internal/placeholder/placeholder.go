// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package placeholder implements the text layer of the template pipeline:
// discovering <name> placeholders in template text and substituting
// user-supplied values for them. It knows nothing about document formats;
// binary formats are turned into flat text by the docx package first.
package placeholder

import (
	"regexp"
	"strings"

	"contractdesk/internal/models"
)

// Pattern matches a single placeholder token such as <start_date>.
// The angle-bracket syntax is the wire format shared with existing templates.
var Pattern = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9_]*)>`)

// Names returns the distinct placeholder names in text, in first-seen order.
func Names(text string) []string {
	if text == "" {
		return nil
	}

	matches := Pattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

// ExtractFields scans template text and returns one field definition per
// distinct placeholder, in the order the placeholders first appear.
// Empty input yields an empty (non-nil) slice.
func ExtractFields(text string) []models.TemplateField {
	names := Names(text)
	fields := make([]models.TemplateField, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field(name))
	}
	return fields
}

// Field derives the full field definition for a single placeholder name.
func Field(name string) models.TemplateField {
	label := FormatLabel(name)
	typ := DetectType(name)
	return models.TemplateField{
		Name:        name,
		Label:       label,
		Type:        typ,
		Placeholder: Hint(name, label, typ),
		Required:    true,
	}
}

// FormatLabel turns a placeholder name into a human-readable label by
// title-casing each underscore-separated segment.
// Example: "start_date" → "Start Date"
func FormatLabel(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// DetectType infers the input type of a field from keywords in its name.
// Rules are checked in order and the first match wins, so "value_date"
// is a date rather than a number.
func DetectType(name string) models.FieldType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "date"):
		return models.FieldTypeDate
	case strings.Contains(lower, "email"):
		return models.FieldTypeEmail
	case strings.Contains(lower, "amount"),
		strings.Contains(lower, "salary"),
		strings.Contains(lower, "value"):
		return models.FieldTypeNumber
	default:
		return models.FieldTypeText
	}
}

// Hint returns the UI placeholder text for a field.
func Hint(name, label string, typ models.FieldType) string {
	lower := strings.ToLower(name)
	switch {
	case typ == models.FieldTypeDate:
		return "Select date"
	case typ == models.FieldTypeEmail:
		return "e.g., user@example.com"
	case strings.Contains(lower, "name"):
		return "Enter " + strings.ToLower(label)
	case strings.Contains(lower, "address"):
		return "Enter full address"
	default:
		return "Enter " + strings.ToLower(label)
	}
}

// Populate substitutes every occurrence of <name> in text with values[name].
// An empty value leaves its placeholder intact so missing data stays visible.
// Placeholders without an entry in values are not touched.
func Populate(text string, values map[string]string) string {
	if text == "" || len(values) == 0 {
		return text
	}

	return Pattern.ReplaceAllStringFunc(text, func(token string) string {
		v, ok := values[token[1:len(token)-1]]
		if !ok || v == "" {
			return token
		}
		return v
	})
}

// Unresolved returns the distinct placeholder names still present in text.
func Unresolved(text string) []string {
	return Names(text)
}

// Missing returns the names from fields that have no non-empty value.
func Missing(fields []models.TemplateField, values map[string]string) []string {
	var missing []string
	for _, f := range fields {
		if values[f.Name] == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
