package placeholder

import (
	"reflect"
	"strings"
	"testing"

	"contractdesk/internal/models"
)

func TestExtractFieldsDeduplicates(t *testing.T) {
	fields := ExtractFields("<x> <x> <y>")
	if len(fields) != 2 {
		t.Fatalf("len: got %d, want 2", len(fields))
	}
	if fields[0].Name != "x" || fields[1].Name != "y" {
		t.Errorf("order: got %q, %q; want x, y", fields[0].Name, fields[1].Name)
	}
}

func TestExtractFieldsEmpty(t *testing.T) {
	for _, in := range []string{"", "no placeholders here", "<1abc> < spaced > <>"} {
		fields := ExtractFields(in)
		if fields == nil {
			t.Errorf("ExtractFields(%q) returned nil, want empty slice", in)
		}
		if len(fields) != 0 {
			t.Errorf("ExtractFields(%q) = %v, want empty", in, fields)
		}
	}
}

func TestExtractFieldsDefinition(t *testing.T) {
	fields := ExtractFields("This agreement starts on <start_date> between <company_name> and <employee_email>.")
	want := []models.TemplateField{
		{Name: "start_date", Label: "Start Date", Type: models.FieldTypeDate, Placeholder: "Select date", Required: true},
		{Name: "company_name", Label: "Company Name", Type: models.FieldTypeText, Placeholder: "Enter company name", Required: true},
		{Name: "employee_email", Label: "Employee Email", Type: models.FieldTypeEmail, Placeholder: "e.g., user@example.com", Required: true},
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("fields:\n got %+v\nwant %+v", fields, want)
	}
}

func TestNamesAcceptsUnderscoreAndDigits(t *testing.T) {
	got := Names("<_private> <party2> <Party_Name_3> <9lives>")
	want := []string{"_private", "party2", "Party_Name_3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names: got %v, want %v", got, want)
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name string
		want models.FieldType
	}{
		{"start_date", models.FieldTypeDate},
		{"email_address", models.FieldTypeEmail},
		{"total_amount", models.FieldTypeNumber},
		{"company_name", models.FieldTypeText},
		{"base_salary", models.FieldTypeNumber},
		{"contract_value", models.FieldTypeNumber},
		{"START_DATE", models.FieldTypeDate},
		// date wins over value, email wins over amount.
		{"value_date", models.FieldTypeDate},
		{"email_amount", models.FieldTypeEmail},
		// Substring, not word: "updated" contains "date".
		{"updated", models.FieldTypeDate},
		{"candidate_name", models.FieldTypeDate},
		{"notes", models.FieldTypeText},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectType(tc.name); got != tc.want {
				t.Errorf("DetectType(%q) = %q, want %q", tc.name, got, tc.want)
			}
		})
	}
}

func TestFormatLabel(t *testing.T) {
	tests := map[string]string{
		"company_name":    "Company Name",
		"start_date":      "Start Date",
		"x":               "X",
		"already_Caps":    "Already Caps",
		"party2_address":  "Party2 Address",
		"_leading":        " Leading",
		"double__under":   "Double  Under",
		"employee_e_mail": "Employee E Mail",
	}
	for in, want := range tests {
		if got := FormatLabel(in); got != want {
			t.Errorf("FormatLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"start_date", "Select date"},
		{"contact_email", "e.g., user@example.com"},
		{"company_name", "Enter company name"},
		{"billing_address", "Enter full address"},
		{"total_amount", "Enter total amount"},
		{"notes", "Enter notes"},
	}
	for _, tc := range tests {
		f := Field(tc.name)
		if f.Placeholder != tc.want {
			t.Errorf("hint for %q: got %q, want %q", tc.name, f.Placeholder, tc.want)
		}
	}
}

func TestPopulateMissingKeyLeavesPlaceholder(t *testing.T) {
	got := Populate("<x> and <y>", map[string]string{"x": "A"})
	if got != "A and <y>" {
		t.Errorf("got %q, want %q", got, "A and <y>")
	}
}

func TestPopulateEmptyValueLeavesPlaceholder(t *testing.T) {
	got := Populate("<x> and <y>", map[string]string{"x": "", "y": "B"})
	if got != "<x> and B" {
		t.Errorf("got %q, want %q", got, "<x> and B")
	}
}

func TestPopulateReplacesEveryOccurrence(t *testing.T) {
	got := Populate("<name>, <name>, <name>!", map[string]string{"name": "Ada"})
	if got != "Ada, Ada, Ada!" {
		t.Errorf("got %q", got)
	}
}

func TestPopulateDoesNotChainSubstitutions(t *testing.T) {
	got := Populate("<a> <b>", map[string]string{"a": "<b>", "b": "B"})
	if got != "<b> B" {
		t.Errorf("got %q, want %q", got, "<b> B")
	}
}

func TestPopulateDoesNotMutateInputs(t *testing.T) {
	values := map[string]string{"x": "1"}
	text := "<x>"
	_ = Populate(text, values)
	if text != "<x>" || len(values) != 1 || values["x"] != "1" {
		t.Error("inputs were mutated")
	}
}

// TestExtractThenPopulateRoundTrip fills every extracted field and checks
// that no placeholder token survives.
func TestExtractThenPopulateRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"plain text",
		"<a>",
		"Dear <first_name> <last_name>,\n\nYour salary of <base_salary> starts <start_date>.\n<first_name>",
		"<a><b><a>",
		"Some <html> like <p>tags</p> and <br_2>",
	}
	for _, text := range texts {
		values := make(map[string]string)
		for _, f := range ExtractFields(text) {
			values[f.Name] = "v"
		}
		out := Populate(text, values)
		if rest := Unresolved(out); len(rest) != 0 {
			t.Errorf("Populate(%q) left %v unresolved: %q", text, rest, out)
		}
		if strings.Contains(out, "<a>") {
			t.Errorf("token <a> survived in %q", out)
		}
	}
}

func TestMissing(t *testing.T) {
	fields := ExtractFields("<a> <b> <c>")
	got := Missing(fields, map[string]string{"a": "1", "b": ""})
	want := []string{"b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Missing: got %v, want %v", got, want)
	}
}
