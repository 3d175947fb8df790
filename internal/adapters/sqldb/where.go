package sqldb

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/cts/internal/core/errs"
)

// where collects bound predicates for the static-table searches.
type where struct {
	clauses []string
	args    []any
}

func newWhere(base ...string) *where {
	return &where{clauses: append([]string(nil), base...)}
}

func (w *where) like(col, v string) {
	if v == "" {
		return
	}
	w.clauses = append(w.clauses, col+" LIKE ?")
	w.args = append(w.args, "%"+v+"%")
}

func (w *where) eq(col string, v any) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return
		}
	case *int:
		if x == nil {
			return
		}
		v = *x
	}
	w.clauses = append(w.clauses, col+" = ?")
	w.args = append(w.args, v)
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// limit renders LIMIT/OFFSET for a 1-based page. A zero size means no limit.
func limit(pageNo, pageSize int) string {
	if pageSize <= 0 {
		return ""
	}
	if pageNo < 1 {
		pageNo = 1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (pageNo-1)*pageSize)
}

func expectRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return errs.NotFound(entity, id)
	}
	return nil
}
