package form

import (
	"fmt"
	"strings"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/schema"
)

// trailingFields are the Common Fields appended after the user columns.
var trailingFields = schema.CommonFields[1:]

// ReconcileHeaders turns raw CSV headers into the authoritative column order
// of a task table: id, the user columns (collisions renamed), then the eight
// remaining Common Fields.
//
// A header is renamed to name_N (first free N from 0) when it collides with a
// Common Field or with a name already emitted in this batch, so duplicate raw
// headers never produce duplicate columns. Names are compared ignoring case,
// as the database compares unquoted identifiers.
func ReconcileHeaders(raw []string) []string {
	final := make([]string, 0, len(raw)+len(schema.CommonFields))
	final = append(final, schema.FieldID)
	final = append(final, renameCollisions(raw)...)
	final = append(final, trailingFields...)
	return final
}

// UserColumns returns the user segment of reconciled headers: everything
// between the leading id and the trailing Common Fields.
func UserColumns(final []string) []string {
	if len(final) < len(schema.CommonFields) {
		return nil
	}
	return final[1 : len(final)-len(trailingFields)]
}

// RenamedHeader maps a raw header name to its reconciled name. Names that are
// not raw headers are returned unchanged.
func RenamedHeader(raw, final []string, name string) string {
	users := UserColumns(final)
	for i, h := range raw {
		if h == name && i < len(users) {
			return users[i]
		}
	}
	return name
}

// LocateCommonIndices returns the positions within final of the columns
// nominated as the code, lon and lat sources, in candidate order. Only the
// user segment is searched; a candidate that is not a user column is a
// validation error naming it.
func LocateCommonIndices(final []string, candidates []string) ([]int, error) {
	users := UserColumns(final)
	indices := make([]int, 0, len(candidates))
	for _, c := range candidates {
		idx := -1
		for i, h := range users {
			if h == c {
				idx = i + 1 // offset of the leading id
				break
			}
		}
		if idx < 0 {
			return nil, errs.Validation(c, "field %q not found in dataset headers", c)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func renameCollisions(raw []string) []string {
	taken := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, h := range raw {
		name := h
		if schema.IsCommonField(h) || taken[strings.ToLower(h)] {
			name = suffixed(h, 0, taken)
		}
		taken[strings.ToLower(name)] = true
		out = append(out, name)
	}
	return out
}

func suffixed(name string, n int, taken map[string]bool) string {
	candidate := fmt.Sprintf("%s_%d", name, n)
	if schema.IsCommonField(candidate) || taken[strings.ToLower(candidate)] {
		return suffixed(name, n+1, taken)
	}
	return candidate
}
