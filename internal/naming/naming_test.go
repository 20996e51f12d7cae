package naming

import (
	"strings"
	"testing"
)

func TestIndexName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns []string
		want    string
	}{
		{"single column", "comments", []string{"user_id"}, "fk__comments_user_id"},
		{"schema qualified", "a.b", []string{"x"}, "fk__a_b_x"},
		{"polymorphic pair", "comments", []string{"post_id", "post_type"}, "fk__comments_post_id_and_post_type"},
		{"nested schema", "x.y.z", []string{"c"}, "fk__x_y_z_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IndexName(tt.table, tt.columns...); got != tt.want {
				t.Errorf("IndexName(%q, %v) = %q, want %q", tt.table, tt.columns, got, tt.want)
			}
		})
	}
}

func TestIndexNameDeterministic(t *testing.T) {
	a := IndexName("comments", "user_id")
	b := IndexName("comments", "user_id")
	if a != b {
		t.Errorf("IndexName not deterministic: %q != %q", a, b)
	}
}

func TestIsReferenceColumn(t *testing.T) {
	tests := map[string]bool{
		"user_id":      true,
		"a_id":         true,
		"line_item_id": true,
		"_id":          false,
		"id":           false,
		"":             false,
		"user_ids":     false,
		"userid":       false,
	}
	for column, want := range tests {
		if got := IsReferenceColumn(column); got != want {
			t.Errorf("IsReferenceColumn(%q) = %v, want %v", column, got, want)
		}
	}
}

func TestInferredTargetTable(t *testing.T) {
	tests := []struct {
		column string
		want   string
		ok     bool
	}{
		{"user_id", "users", true},
		{"post_id", "posts", true},
		{"category_id", "categories", true},
		{"line_item_id", "line_items", true},
		{"person_id", "people", true},
		{"views_count", "", false},
		{"state", "", false},
		{"_id", "", false},
		{"id", "", false},
		{"user_ids", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := InferredTargetTable(tt.column)
			if got != tt.want || ok != tt.ok {
				t.Errorf("InferredTargetTable(%q) = (%q, %v), want (%q, %v)",
					tt.column, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestReferenceColumns(t *testing.T) {
	if got := ReferenceColumn("post"); got != "post_id" {
		t.Errorf("ReferenceColumn = %q", got)
	}
	cols := PolymorphicColumns("commentable")
	if len(cols) != 2 || cols[0] != "commentable_id" || cols[1] != "commentable_type" {
		t.Errorf("PolymorphicColumns = %v", cols)
	}
}

func TestConstraintName(t *testing.T) {
	if got := ConstraintName("audit.events", "user_id"); got != "fk_audit_events_user_id" {
		t.Errorf("ConstraintName = %q", got)
	}
}

func TestColumnIndexName(t *testing.T) {
	if got := ColumnIndexName("comments", "post_id", "post_type"); got != "index_comments_on_post_id_and_post_type" {
		t.Errorf("ColumnIndexName = %q", got)
	}
	if got := ColumnIndexName("comments", "user_id"); got == IndexName("comments", "user_id") {
		t.Errorf("ColumnIndexName collides with IndexName: %q", got)
	}
}

func TestPolicyFit(t *testing.T) {
	table := strings.Repeat("ta", 15) + "_id"
	column := strings.Repeat("co", 15) + "_id"
	full := IndexName(table, column)

	t.Run("zero policy leaves names unbounded", func(t *testing.T) {
		if got := (Policy{}).IndexName(table, column); got != full {
			t.Errorf("got %q, want %q", got, full)
		}
	})

	t.Run("short names untouched", func(t *testing.T) {
		p := Policy{MaxLength: 63}
		if got := p.IndexName("comments", "user_id"); got != "fk__comments_user_id" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("long names truncated with digest", func(t *testing.T) {
		p := Policy{MaxLength: 63}
		got := p.IndexName(table, column)
		if len(got) != 63 {
			t.Fatalf("len = %d, want 63 (%q)", len(got), got)
		}
		if !strings.HasPrefix(got, full[:46]) {
			t.Errorf("truncated name should keep the leading characters: %q", got)
		}
		if got != p.IndexName(table, column) {
			t.Error("truncation must be deterministic")
		}
	})

	t.Run("distinct long names stay distinct", func(t *testing.T) {
		p := Policy{MaxLength: 40}
		a := p.IndexName(table, column+"_a")
		b := p.IndexName(table, column+"_b")
		if a == b {
			t.Errorf("collision: %q", a)
		}
	})

	t.Run("tiny limit", func(t *testing.T) {
		p := Policy{MaxLength: 8}
		if got := p.Fit(full); len(got) != 8 {
			t.Errorf("len = %d (%q)", len(got), got)
		}
	})
}

func TestExceeds(t *testing.T) {
	if Exceeds("abc", 0) {
		t.Error("zero limit never exceeds")
	}
	if !Exceeds("abcd", 3) {
		t.Error("expected exceed")
	}
	if Exceeds("abc", 3) {
		t.Error("equal length does not exceed")
	}
}
