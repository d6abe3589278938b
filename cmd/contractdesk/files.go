// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"contractdesk/internal/docx"
	"contractdesk/internal/engine"
	"contractdesk/internal/models"
	"contractdesk/internal/placeholder"
	"contractdesk/internal/render"
)

var (
	renderTitle  string
	renderFormat string
	renderOutput string
	renderSet    []string
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <file>",
	Short: "List the placeholder fields of a DOCX or TXT template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTemplateText(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(placeholder.ExtractFields(text))
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Populate a template and render it as HTML or DOCX",
	Long: `Populate a DOCX or TXT template with --set name=value pairs and render
the result. Unfilled placeholders stay visible in the output.`,
	Example: `  contractdesk render offer.docx --set first_name=Ada --set start_date=2026-11-01 -f docx -o offer-ada.docx`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderTitle, "title", "t", "", "document title (default: file name)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "output format: html or docx")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default: stdout)")
	renderCmd.Flags().StringArrayVar(&renderSet, "set", nil, "placeholder value as name=value (repeatable)")
}

// readTemplateText loads a template file and returns its flat text.
func readTemplateText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	format := models.FileFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	text, err := docx.TextFromFile(format, data)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return text, nil
}

// parseAssignments turns name=value pairs into a value map. Only the first
// '=' separates name from value.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --set %q, want name=value", p)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	format, err := engine.ParseFormat(renderFormat)
	if err != nil || format == engine.FormatOriginal {
		return fmt.Errorf("unknown format %q, use html or docx", renderFormat)
	}
	values, err := parseAssignments(renderSet)
	if err != nil {
		return err
	}
	text, err := readTemplateText(args[0])
	if err != nil {
		return err
	}

	title := renderTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	doc, err := engine.New(nil, nil, renderer).Render(title, text, values, format)
	if err != nil {
		return err
	}

	if rest := placeholder.Unresolved(placeholder.Populate(text, values)); len(rest) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "unfilled placeholders: %s\n", strings.Join(rest, ", "))
	}

	var out io.Writer = cmd.OutOrStdout()
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err = out.Write(doc.Data)
	return err
}
