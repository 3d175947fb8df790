// Package query builds SELECT and mutation statements against dynamic tables
// whose name and columns are only known at call time.
//
// A Builder accumulates projection, filters and ordering, then finalizes into
// exactly one statement. Reads finalize to Select, writes to Mutation; only
// those two types can be executed, so running an unfinished builder does not
// compile.
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/cts/internal/core/form"
	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/core/value"
)

// Row is an untyped row document keyed by column name.
type Row map[string]any

// ErrNotFinalized is returned when a zero Select or Mutation reaches a runner.
var ErrNotFinalized = errors.New("no SQL prepared yet")

// SoftDeleteFilter excludes soft-deleted rows.
const SoftDeleteFilter = "deleted_at IS NULL"

// Select is a finalized read statement.
type Select struct {
	sql string
}

// SQL returns the statement text, or "" for the zero value.
func (s Select) SQL() string { return s.sql }

// Ready reports whether s came from a finalizer.
func (s Select) Ready() bool { return s.sql != "" }

// Mutation is a finalized write statement (INSERT, UPDATE or DELETE).
type Mutation struct {
	sql string
}

// SQL returns the statement text, or "" for the zero value.
func (m Mutation) SQL() string { return m.sql }

// Ready reports whether m came from a finalizer.
func (m Mutation) Ready() bool { return m.sql != "" }

// Statement wraps DDL or DML text produced by package schema so it can be
// executed like any other mutation.
func Statement(sql string) Mutation {
	return Mutation{sql: strings.TrimSpace(sql)}
}

// Builder accumulates clauses for one table.
type Builder struct {
	table   string
	columns []string
	filters []string
	orders  []string
	now     func() time.Time
	newID   func() string
}

// Table starts a builder for the named table.
func Table(name string) *Builder {
	return &Builder{
		table: name,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Columns sets the projected columns. Without it every column is selected.
func (b *Builder) Columns(cols ...string) *Builder {
	b.columns = append(b.columns, cols...)
	return b
}

// Filter ANDs expr onto the WHERE clause. expr is parenthesized so an OR
// inside it cannot escape the other filters. Empty expressions are ignored.
func (b *Builder) Filter(expr string) *Builder {
	if expr = strings.TrimSpace(expr); expr != "" {
		b.filters = append(b.filters, "("+expr+")")
	}
	return b
}

// DefaultFilter excludes soft-deleted rows.
func (b *Builder) DefaultFilter() *Builder {
	b.filters = append(b.filters, SoftDeleteFilter)
	return b
}

// OrderBy appends an ORDER BY term.
func (b *Builder) OrderBy(expr string) *Builder {
	if expr = strings.TrimSpace(expr); expr != "" {
		b.orders = append(b.orders, expr)
	}
	return b
}

// WithClock replaces the clock used for created_at, updated_at and deleted_at.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithIDSource replaces the generator used for missing row ids.
func (b *Builder) WithIDSource(newID func() string) *Builder {
	b.newID = newID
	return b
}

// Find finalizes SELECT <cols> FROM <table> [WHERE ...] [ORDER BY ...].
func (b *Builder) Find() Select {
	sql := b.selectFrom() + b.where() + b.orderBy()
	return Select{sql: sql}
}

// FindByID finalizes a lookup of one row. The accumulated filters are kept;
// without any the clause starts from WHERE 1=1.
func (b *Builder) FindByID(id string) Select {
	where := b.where()
	if where == "" {
		where = " WHERE 1=1"
	}
	return Select{sql: b.selectFrom() + where + " AND id = " + value.NewText(id).Literal()}
}

// Count finalizes SELECT COUNT(*) AS total over the accumulated filters.
func (b *Builder) Count() Select {
	return Select{sql: "SELECT COUNT(*) AS total FROM " + b.table + b.where()}
}

// Page finalizes Find limited to one page. Page numbers start at 1; values
// below 1 are clamped to 1.
func (b *Builder) Page(no, size int) Select {
	if no < 1 {
		no = 1
	}
	if size < 1 {
		size = 1
	}
	sql := b.Find().sql + fmt.Sprintf(" LIMIT %d OFFSET %d", size, (no-1)*size)
	return Select{sql: sql}
}

// FindTableSchema finalizes a Postgres catalog query listing the table's
// columns as id (attnum), name and type.
func (b *Builder) FindTableSchema() Select {
	return Select{sql: fmt.Sprintf(tableSchemaSQL, value.NewText(b.table).Literal())}
}

const tableSchemaSQL = `SELECT a.attnum AS "id", a.attname AS "name", ` +
	`concat_ws('', t.typname, SUBSTRING(format_type(a.atttypid, a.atttypmod) FROM '\(.*\)')) AS "type" ` +
	`FROM pg_attribute a ` +
	`LEFT JOIN pg_description d ON d.objoid = a.attrelid AND d.objsubid = a.attnum ` +
	`LEFT JOIN pg_class c ON a.attrelid = c.oid ` +
	`LEFT JOIN pg_type t ON a.atttypid = t.oid ` +
	`WHERE a.attnum >= 0 AND c.relname = %s ` +
	`ORDER BY c.relname DESC, a.attnum ASC`

// DeleteByID finalizes a hard DELETE or a soft delete that stamps deleted_at.
func (b *Builder) DeleteByID(id string, hard bool) Mutation {
	target := " WHERE id = " + value.NewText(id).Literal()
	if hard {
		return Mutation{sql: "DELETE FROM " + b.table + target}
	}
	stamp := value.NewTimestamp(b.now()).Literal()
	return Mutation{sql: "UPDATE " + b.table + " SET " + schema.FieldDeletedAt + " = " + stamp + target}
}

// Add parses a JSON object payload and finalizes an INSERT. A missing or
// null id is generated; a missing status defaults to 0; created_at is always
// set to now. onID, when non-nil, receives the resolved id before the
// statement is returned.
func (b *Builder) Add(payload []byte, onID func(id string)) (Mutation, error) {
	sub, err := form.ParseSubmission(payload)
	if err != nil {
		return Mutation{}, err
	}

	id := b.newID()
	if v, ok := sub[schema.FieldID]; ok && !v.IsNull() && v.Source() != "" {
		id = v.Source()
	}
	sub[schema.FieldID] = value.NewText(id)
	if _, ok := sub[schema.FieldStatus]; !ok {
		sub[schema.FieldStatus] = value.NewInt(0)
	}
	sub[schema.FieldCreatedAt] = value.NewTimestamp(b.now())

	cols := sub.Columns()
	sql, err := schema.BuildInsert(b.table, cols, sub.Values(cols))
	if err != nil {
		return Mutation{}, err
	}
	if onID != nil {
		onID(id)
	}
	return Mutation{sql: sql}, nil
}

// Update parses a JSON object payload and finalizes an UPDATE of row id that
// also stamps updated_at. An id key in the payload is ignored; an empty
// payload is a validation error.
func (b *Builder) Update(id string, payload []byte) (Mutation, error) {
	sub, err := form.ParseSubmission(payload)
	if err != nil {
		return Mutation{}, err
	}
	delete(sub, schema.FieldID)
	if len(sub) == 0 {
		return Mutation{}, schema.ErrEmptyUpdate
	}
	sub[schema.FieldUpdatedAt] = value.NewTimestamp(b.now())

	sql, err := schema.BuildUpdate(b.table, id, sub)
	if err != nil {
		return Mutation{}, err
	}
	return Mutation{sql: sql}, nil
}

// Set finalizes an UPDATE of row id from already typed values, stamping
// updated_at.
func (b *Builder) Set(id string, assignments map[string]value.Value) (Mutation, error) {
	if len(assignments) == 0 {
		return Mutation{}, schema.ErrEmptyUpdate
	}
	sets := make(map[string]value.Value, len(assignments)+1)
	for k, v := range assignments {
		sets[k] = v
	}
	sets[schema.FieldUpdatedAt] = value.NewTimestamp(b.now())

	sql, err := schema.BuildUpdate(b.table, id, sets)
	if err != nil {
		return Mutation{}, err
	}
	return Mutation{sql: sql}, nil
}

func (b *Builder) selectFrom() string {
	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}
	return "SELECT " + cols + " FROM " + b.table
}

func (b *Builder) where() string {
	if len(b.filters) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.filters, " AND ")
}

func (b *Builder) orderBy() string {
	if len(b.orders) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(b.orders, ", ")
}
