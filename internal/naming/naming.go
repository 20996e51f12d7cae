// Package naming derives the names autofk relies on: the table a column
// refers to by convention, and the deterministic name of an auto-created
// foreign-key index.
//
// Every function is pure. Identical inputs always yield identical names.
package naming

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/hlop3z/autofk/internal/strutil"
)

const (
	// IndexPrefix starts every auto-created foreign-key index name.
	IndexPrefix = "fk__"

	// ReferenceSuffix marks a column as a reference by convention.
	ReferenceSuffix = "_id"

	// TypeSuffix names the discriminator column of a polymorphic reference.
	TypeSuffix = "_type"

	// hashLen is the number of hex digits appended to a truncated name.
	hashLen = 16
)

// IsReferenceColumn reports whether column follows the "<name>_id" convention.
// The name must be non-empty: a bare "_id" names no table.
func IsReferenceColumn(column string) bool {
	return len(column) > len(ReferenceSuffix) && strings.HasSuffix(column, ReferenceSuffix)
}

// InferredTargetTable maps a reference column to the table it points at:
// "user_id" -> "users", "line_item_id" -> "line_items".
// Returns false if the column does not end in "_id".
func InferredTargetTable(column string) (string, bool) {
	if !IsReferenceColumn(column) {
		return "", false
	}
	stem := strings.TrimSuffix(column, ReferenceSuffix)
	return strutil.Pluralize(strutil.ToSnakeCase(stem)), true
}

// ReferenceColumn returns the id column for a reference declaration: "post" -> "post_id".
func ReferenceColumn(name string) string {
	return name + ReferenceSuffix
}

// PolymorphicColumns returns the id and type columns of a polymorphic
// reference: "commentable" -> ["commentable_id", "commentable_type"].
func PolymorphicColumns(name string) []string {
	return []string{name + ReferenceSuffix, name + TypeSuffix}
}

// IndexName builds the auto-index name for a foreign key:
//
//	IndexName("comments", "user_id")               -> "fk__comments_user_id"
//	IndexName("a.b", "x")                          -> "fk__a_b_x"
//	IndexName("comments", "post_id", "post_type")  -> "fk__comments_post_id_and_post_type"
//
// The name is not length-limited. Use Policy to bound it.
func IndexName(table string, columns ...string) string {
	return IndexPrefix + strutil.FlattenQualified(table) + "_" + strings.Join(columns, "_and_")
}

// ConstraintName is the name given to a foreign-key constraint the caller did
// not name: "fk_comments_user_id".
func ConstraintName(table string, columns ...string) string {
	return "fk_" + strutil.FlattenQualified(table) + "_" + strings.Join(columns, "_")
}

// ColumnIndexName is the name given to an index the caller asked for without
// naming it: "index_comments_on_user_id". It never collides with IndexName,
// so removing an auto-created index leaves it alone.
func ColumnIndexName(table string, columns ...string) string {
	return "index_" + strutil.FlattenQualified(table) + "_on_" + strings.Join(columns, "_and_")
}

// Policy applies an optional length limit to generated names.
// The zero value leaves names unbounded.
type Policy struct {
	// MaxLength is the longest name the backend accepts. 0 disables truncation.
	MaxLength int
}

// IndexName returns IndexName(table, columns...) shortened to MaxLength.
// Names over the limit keep their leading characters and end in "_" plus a
// 16 hex digit xxh3 digest of the full name, so distinct long names stay
// distinct and the result is stable across runs.
func (p Policy) IndexName(table string, columns ...string) string {
	return p.Fit(IndexName(table, columns...))
}

// Fit shortens name to the policy limit, leaving short names untouched.
func (p Policy) Fit(name string) string {
	if p.MaxLength <= 0 || len(name) <= p.MaxLength {
		return name
	}
	digest := fmt.Sprintf("%0*x", hashLen, xxh3.HashString(name))
	keep := p.MaxLength - hashLen - 1
	if keep <= 0 {
		return digest[:min(p.MaxLength, len(digest))]
	}
	return name[:keep] + "_" + digest
}

// Exceeds reports whether name is longer than limit. A limit of 0 never exceeds.
func Exceeds(name string, limit int) bool {
	return limit > 0 && len(name) > limit
}
