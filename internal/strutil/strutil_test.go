package strutil

import (
	"testing"
)

// -----------------------------------------------------------------------------
// ToSnakeCase Tests
// -----------------------------------------------------------------------------

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"user", "user"},
		{"User", "user"},
		{"userName", "user_name"},
		{"UserName", "user_name"},
		{"HTTPServer", "http_server"},
		{"userID", "user_id"},
		{"APIKey", "api_key"},
		{"already_snake", "already_snake"},
		{"user_Name", "user_name"},
		{"User2Name", "user2_name"},
		{"user-name", "user_name"},
		{"line item", "line_item"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToSnakeCase(tt.input); got != tt.want {
				t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Pluralize Tests
// -----------------------------------------------------------------------------

func TestPluralize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"user", "users"},
		{"post", "posts"},
		{"comment", "comments"},
		{"category", "categories"},
		{"day", "days"},
		{"box", "boxes"},
		{"address", "addresses"},
		{"branch", "branches"},
		{"wish", "wishes"},
		{"quiz", "quizes"},
		{"person", "people"},
		{"child", "children"},
		{"sheep", "sheep"},
		{"line_item", "line_items"},
		{"sales_person", "sales_people"},
		{"user_category", "user_categories"},
		{"trailing_", "trailing_"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Pluralize(tt.input); got != tt.want {
				t.Errorf("Pluralize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// SQL Naming Tests
// -----------------------------------------------------------------------------

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		input      string
		wantSchema string
		wantTable  string
	}{
		{"users", "", "users"},
		{"audit.events", "audit", "events"},
		{"a.b.c", "a.b", "c"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			schema, table := SplitQualified(tt.input)
			if schema != tt.wantSchema || table != tt.wantTable {
				t.Errorf("SplitQualified(%q) = (%q, %q), want (%q, %q)",
					tt.input, schema, table, tt.wantSchema, tt.wantTable)
			}
		})
	}
}

func TestFlattenQualified(t *testing.T) {
	tests := map[string]string{
		"users":   "users",
		"a.b":     "a_b",
		"x.y.z":   "x_y_z",
		"already": "already",
	}
	for input, want := range tests {
		if got := FlattenQualified(input); got != want {
			t.Errorf("FlattenQualified(%q) = %q, want %q", input, got, want)
		}
	}
}
