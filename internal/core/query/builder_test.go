package query

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/value"
)

var fixedNow = time.Date(2024, 6, 7, 13, 8, 40, 0, time.Local)

func table(name string) *Builder {
	return Table(name).
		WithClock(func() time.Time { return fixedNow }).
		WithIDSource(func() string { return "gen-1" })
}

func TestSelectText(t *testing.T) {
	tests := []struct {
		name string
		sel  Select
		want string
	}{
		{
			name: "bare find",
			sel:  table("task_x").Find(),
			want: "SELECT * FROM task_x",
		},
		{
			name: "columns filters and orders",
			sel: table("task_x").
				Columns("id", "name").
				DefaultFilter().
				Filter("code = 'A'").
				OrderBy("updated_at DESC NULLS LAST").
				OrderBy("created_at DESC").
				Find(),
			want: "SELECT id, name FROM task_x WHERE deleted_at IS NULL AND (code = 'A') ORDER BY updated_at DESC NULLS LAST, created_at DESC",
		},
		{
			name: "find by id without filters",
			sel:  table("data_x").FindByID("abc"),
			want: "SELECT * FROM data_x WHERE 1=1 AND id = 'abc'",
		},
		{
			name: "find by id keeps default filter",
			sel:  table("data_x").DefaultFilter().FindByID("abc"),
			want: "SELECT * FROM data_x WHERE deleted_at IS NULL AND id = 'abc'",
		},
		{
			name: "find by id quotes the id",
			sel:  table("data_x").FindByID("a'b"),
			want: "SELECT * FROM data_x WHERE 1=1 AND id = 'a''b'",
		},
		{
			name: "count ignores order",
			sel:  table("t").DefaultFilter().OrderBy("created_at").Count(),
			want: "SELECT COUNT(*) AS total FROM t WHERE deleted_at IS NULL",
		},
		{
			name: "page",
			sel:  table("t").DefaultFilter().OrderBy("created_at DESC").Page(3, 20),
			want: "SELECT * FROM t WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT 20 OFFSET 40",
		},
		{
			name: "page clamps",
			sel:  table("t").Page(0, 0),
			want: "SELECT * FROM t LIMIT 1 OFFSET 0",
		},
		{
			name: "or inside a filter stays grouped",
			sel:  table("t").DefaultFilter().Filter("name = 'a' OR name = 'b'").Count(),
			want: "SELECT COUNT(*) AS total FROM t WHERE deleted_at IS NULL AND (name = 'a' OR name = 'b')",
		},
		{
			name: "blank filter ignored",
			sel:  table("t").Filter("  ").Find(),
			want: "SELECT * FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sel.SQL(); got != tt.want {
				t.Errorf("SQL =\n%s\nwant\n%s", got, tt.want)
			}
			if !tt.sel.Ready() {
				t.Error("finalized select should be ready")
			}
		})
	}
}

func TestFindTableSchema(t *testing.T) {
	sql := table("task_abc").FindTableSchema().SQL()
	for _, want := range []string{"pg_attribute a", "pg_class c", "pg_type t", "c.relname = 'task_abc'", "a.attnum ASC"} {
		if !strings.Contains(sql, want) {
			t.Errorf("schema query missing %q:\n%s", want, sql)
		}
	}
}

func TestDeleteByID(t *testing.T) {
	soft := table("task_x").DeleteByID("r1", false).SQL()
	if want := "UPDATE task_x SET deleted_at = '2024-06-07 13:08:40' WHERE id = 'r1'"; soft != want {
		t.Errorf("soft delete =\n%s\nwant\n%s", soft, want)
	}
	if strings.Contains(soft, "DELETE") {
		t.Errorf("soft delete must not issue DELETE: %s", soft)
	}

	hard := table("task_x").DeleteByID("r1", true).SQL()
	if want := "DELETE FROM task_x WHERE id = 'r1'"; hard != want {
		t.Errorf("hard delete =\n%s\nwant\n%s", hard, want)
	}
}

func TestAdd(t *testing.T) {
	var captured string
	m, err := table("data_x").Add([]byte(`{"name": "O'Brien", "age": 42}`), func(id string) { captured = id })
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if captured != "gen-1" {
		t.Errorf("onID received %q, want gen-1", captured)
	}
	want := "INSERT INTO data_x (id, age, created_at, name, status) VALUES ('gen-1', 42, '2024-06-07 13:08:40', 'O''Brien', 0)"
	if m.SQL() != want {
		t.Errorf("SQL =\n%s\nwant\n%s", m.SQL(), want)
	}
}

func TestAdd_KeepsSuppliedIDAndStatus(t *testing.T) {
	var captured string
	m, err := table("data_x").Add([]byte(`{"id": "task-9", "status": 1}`), func(id string) { captured = id })
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if captured != "task-9" {
		t.Errorf("onID received %q, want task-9", captured)
	}
	want := "INSERT INTO data_x (id, created_at, status) VALUES ('task-9', '2024-06-07 13:08:40', 1)"
	if m.SQL() != want {
		t.Errorf("SQL =\n%s\nwant\n%s", m.SQL(), want)
	}
}

func TestAdd_NilCallback(t *testing.T) {
	if _, err := table("t").Add([]byte(`{"a": 1}`), nil); err != nil {
		t.Fatalf("Add with nil callback failed: %v", err)
	}
}

func TestAdd_InvalidPayload(t *testing.T) {
	called := false
	_, err := table("t").Add([]byte(`[1, 2]`), func(string) { called = true })
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if called {
		t.Error("onID must not run for a rejected payload")
	}
}

func TestUpdate(t *testing.T) {
	m, err := table("task_x").Update("r1", []byte(`{"name": "x", "id": "ignored", "ok": true}`))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	want := "UPDATE task_x SET name = 'x', ok = true, updated_at = '2024-06-07 13:08:40' WHERE id = 'r1'"
	if m.SQL() != want {
		t.Errorf("SQL =\n%s\nwant\n%s", m.SQL(), want)
	}
}

func TestUpdate_Empty(t *testing.T) {
	for _, payload := range []string{`{}`, `{"id": "x"}`, `{"list": [1]}`} {
		if _, err := table("t").Update("r1", []byte(payload)); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Update(%s) = %v, want validation error", payload, err)
		}
	}
}

func TestSet(t *testing.T) {
	m, err := table("task_x").Set("r1", map[string]value.Value{"status": value.NewInt(1)})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	want := "UPDATE task_x SET status = 1, updated_at = '2024-06-07 13:08:40' WHERE id = 'r1'"
	if m.SQL() != want {
		t.Errorf("SQL =\n%s\nwant\n%s", m.SQL(), want)
	}
	if _, err := table("t").Set("r1", nil); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("empty Set = %v, want validation error", err)
	}
}

func TestZeroValuesNotReady(t *testing.T) {
	if (Select{}).Ready() || (Mutation{}).Ready() {
		t.Error("zero statements must not be ready")
	}
	if Statement("   ").Ready() {
		t.Error("blank statement must not be ready")
	}
	if m := Statement("CREATE TABLE t (id TEXT);"); !m.Ready() || m.SQL() != "CREATE TABLE t (id TEXT);" {
		t.Errorf("Statement = %q", m.SQL())
	}
}
