// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType is the input type inferred for a template field.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeDate   FieldType = "date"
	FieldTypeNumber FieldType = "number"
	FieldTypeEmail  FieldType = "email"
)

// TemplateField describes one placeholder discovered in a template.
// Name is unique within a template.
type TemplateField struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder"`
	Required    bool      `json:"required"`
}

// FileFormat is the format of an uploaded template file.
type FileFormat string

const (
	FormatPDF  FileFormat = "pdf"
	FormatDOCX FileFormat = "docx"
	FormatDOC  FileFormat = "doc"
	FormatTXT  FileFormat = "txt"
)

// Valid reports whether f is one of the accepted upload formats.
func (f FileFormat) Valid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatDOC, FormatTXT:
		return true
	}
	return false
}

// MIMEType returns the content type used for data URLs and downloads.
func (f FileFormat) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatDOC:
		return "application/msword"
	case FormatTXT:
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

// TemplateFile is the stored binary of a template. Content holds the raw
// bytes as base64; DataURL carries the same bytes prefixed for inline preview.
// ObjectKey is set when the file was also uploaded to object storage.
type TemplateFile struct {
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Content   string     `json:"content"`
	DataURL   string     `json:"data_url"`
	Format    FileFormat `json:"format"`
	Size      int64      `json:"size"`
	ObjectKey string     `json:"object_key,omitempty"`
}

// Template is an uploaded contract pattern. Templates are immutable after
// upload apart from usage bookkeeping.
type Template struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Category      string          `json:"category"`
	File          TemplateFile    `json:"file"`
	UsageCount    int             `json:"usage_count"`
	LastUsedAt    *time.Time      `json:"last_used_at,omitempty"`
	UploadedBy    string          `json:"uploaded_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Fields        []TemplateField `json:"fields,omitempty"`
	HasFormFields bool            `json:"has_form_fields"`
}
