// Package schema generates the DDL and DML text for dynamic tables.
// Dynamic tables hold text columns only; the trailing Common Fields carry
// the typed metadata every row needs.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/value"
)

// Common field names, in table order.
const (
	FieldID        = "id"
	FieldCode      = "code"
	FieldLon       = "lon"
	FieldLat       = "lat"
	FieldStatus    = "status"
	FieldUserID    = "user_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldDeletedAt = "deleted_at"
)

// CommonFields lists the metadata columns appended to every dynamic table.
var CommonFields = []string{
	FieldID,
	FieldCode,
	FieldLon,
	FieldLat,
	FieldStatus,
	FieldUserID,
	FieldCreatedAt,
	FieldUpdatedAt,
	FieldDeletedAt,
}

// commonFieldDefs are the column definitions for CommonFields[1:].
var commonFieldDefs = []string{
	"code TEXT",
	"lon TEXT",
	"lat TEXT",
	"status INTEGER",
	"user_id TEXT",
	"created_at TIMESTAMP NOT NULL",
	"updated_at TIMESTAMP",
	"deleted_at TIMESTAMP",
}

// IsCommonField reports whether name is one of CommonFields. Unquoted SQL
// identifiers are case-insensitive, so the match is too.
func IsCommonField(name string) bool {
	for _, f := range CommonFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// TableKind selects which of a project's two tables is addressed.
type TableKind string

const (
	KindData TableKind = "data"
	KindTask TableKind = "task"
)

// ParseTableKind validates a kind from user input.
func ParseTableKind(s string) (TableKind, error) {
	switch TableKind(s) {
	case KindData, KindTask:
		return TableKind(s), nil
	}
	return "", errs.Validation("kind", "table kind must be %q or %q, got %q", KindData, KindTask, s)
}

// TableName returns the physical name for a project table: data_<id> or task_<id>.
func TableName(kind TableKind, tableID string) string {
	return string(kind) + "_" + tableID
}

// NewTableID returns a fresh dash-less UUID used as the shared suffix of a
// project's data and task tables.
func NewTableID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidIdentifier reports whether name can be used unquoted as a column or
// table identifier: letters, digits and underscores, not starting with a digit.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// BuildCreateTable emits CREATE TABLE text for a dynamic table. The id
// primary key always leads; every listed column is TEXT. With includeCommon
// the eight metadata columns follow; without it the trailing comma is dropped.
func BuildCreateTable(table string, columns []string, includeCommon bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (", table)
	b.WriteString("id TEXT NOT NULL PRIMARY KEY,")
	for _, c := range columns {
		fmt.Fprintf(&b, " %s TEXT,", c)
	}
	sql := b.String()
	if includeCommon {
		sql += " " + strings.Join(commonFieldDefs, ", ")
	} else {
		sql = strings.TrimSuffix(sql, ",")
	}
	return sql + ");"
}

// BuildDropTable emits DROP TABLE text for a dynamic table.
func BuildDropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
}

// BuildInsert emits an INSERT statement. columns and values must align.
func BuildInsert(table string, columns []string, values []value.Value) (string, error) {
	if len(columns) == 0 {
		return "", errs.Validation("columns", "insert into %s has no columns", table)
	}
	if len(columns) != len(values) {
		return "", errs.Validation("values", "insert into %s has %d columns but %d values", table, len(columns), len(values))
	}

	literals := make([]string, len(values))
	for i, v := range values {
		literals[i] = v.Literal()
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(literals, ", ")), nil
}

// ErrEmptyUpdate is returned when an update has nothing to assign.
var ErrEmptyUpdate = errs.Validation("data", "update has no columns to set")

// BuildUpdate emits an UPDATE ... WHERE id = '<id>' statement. Assignments
// are written in column order so the text is stable; their order carries no
// meaning.
func BuildUpdate(table, id string, assignments map[string]value.Value) (string, error) {
	if len(assignments) == 0 {
		return "", ErrEmptyUpdate
	}

	cols := make([]string, 0, len(assignments))
	for c := range assignments {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = " + assignments[c].Literal()
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		table, strings.Join(sets, ", "), value.NewText(id).Literal()), nil
}
