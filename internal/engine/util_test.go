package engine

import (
	"testing"
)

func TestKeyBy(t *testing.T) {
	t.Run("keyed_by_revision", func(t *testing.T) {
		migrations := []Migration{
			{Revision: "001", Name: "create_users"},
			{Revision: "002", Name: "add_comments"},
		}
		result := keyBy(migrations, func(m Migration) string { return m.Revision })

		if len(result) != 2 {
			t.Fatalf("keyBy() = %d items, want 2", len(result))
		}
		if result["002"].Name != "add_comments" {
			t.Errorf("result[002].Name = %q, want add_comments", result["002"].Name)
		}
	})

	t.Run("empty_slice", func(t *testing.T) {
		result := keyBy([]Migration(nil), func(m Migration) string { return m.Revision })
		if len(result) != 0 {
			t.Errorf("keyBy() = %d items, want 0", len(result))
		}
	})

	t.Run("last_duplicate_wins", func(t *testing.T) {
		applied := []AppliedMigration{
			{Revision: "001", Checksum: "a"},
			{Revision: "001", Checksum: "b"},
		}
		result := keyBy(applied, func(a AppliedMigration) string { return a.Revision })
		if result["001"].Checksum != "b" {
			t.Errorf("result[001].Checksum = %q, want b", result["001"].Checksum)
		}
	})
}

func TestSetOf(t *testing.T) {
	result := setOf([]string{"001", "002", "001"})

	if len(result) != 2 {
		t.Errorf("setOf() = %d items, want 2 (deduplicated)", len(result))
	}
	if _, ok := result["002"]; !ok {
		t.Error("result should contain 002")
	}
	if _, ok := result["003"]; ok {
		t.Error("result should not contain 003")
	}
}
