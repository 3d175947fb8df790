package form

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/cts/internal/core/value"
)

// RowAssembler builds task-table rows aligned with ReconcileHeaders output.
type RowAssembler struct {
	NewID func() string
	Now   func() time.Time
}

// DefaultAssembler uses random UUIDs and the local clock.
var DefaultAssembler = RowAssembler{
	NewID: uuid.NewString,
	Now:   time.Now,
}

// AssembleRow assembles one row with DefaultAssembler.
func AssembleRow(raw []string, common []int) []value.Value {
	return DefaultAssembler.Assemble(raw, common)
}

// Assemble wraps raw cells as Text, prepends a fresh id, copies the cells at
// the common indices (code, lon, lat) to the tail, then appends status=0,
// user_id, created_at, updated_at and deleted_at.
//
// For headers of length N from ReconcileHeaders(h) with len(raw) == len(h)
// and three common indices, the result has length N.
func (a RowAssembler) Assemble(raw []string, common []int) []value.Value {
	row := make([]value.Value, 0, len(raw)+1+len(common)+5)
	row = append(row, value.NewText(a.NewID()))
	for _, cell := range raw {
		row = append(row, value.NewText(cell))
	}

	head := len(row)
	for _, idx := range common {
		if idx < 0 || idx >= head {
			row = append(row, value.NullValue())
			continue
		}
		row = append(row, value.NewText(row[idx].Source()))
	}

	row = append(row,
		value.NewInt(0),
		value.NullValue(),
		value.NewTimestamp(a.Now()),
		value.NullValue(),
		value.NullValue(),
	)
	return row
}
