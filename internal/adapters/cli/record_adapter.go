package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/cts/internal/core/query"
	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/ports/primary"
)

// RecordAdapter translates CLI operations to RecordService calls.
type RecordAdapter struct {
	service primary.RecordService
	out     io.Writer
}

// NewRecordAdapter creates a new RecordAdapter with the given service.
func NewRecordAdapter(service primary.RecordService, out io.Writer) *RecordAdapter {
	return &RecordAdapter{
		service: service,
		out:     out,
	}
}

// List prints one page of rows. Columns follow req.Fields, or the row's
// own columns with id first.
func (a *RecordAdapter) List(ctx context.Context, kind schema.TableKind, tableID string, req primary.SearchRecordsRequest) (*primary.Page[query.Row], error) {
	page, err := a.service.SearchRecords(ctx, kind, tableID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	if len(page.Data) == 0 {
		fmt.Fprintf(a.out, "No rows in %s.\n", schema.TableName(kind, tableID))
		return page, nil
	}

	cols := req.Fields
	if len(cols) == 0 {
		cols = columnsOf(page.Data[0])
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	header := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
		rule[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	fmt.Fprintln(w, strings.Join(rule, "\t"))
	for _, row := range page.Data {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = a.cell(kind, c, row[c])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	printPageFooter(a.out, page.PageNo, page.Pages, page.Total)

	return page, nil
}

// Show prints one row as name/value pairs.
func (a *RecordAdapter) Show(ctx context.Context, kind schema.TableKind, tableID, id string) (query.Row, error) {
	row, err := a.service.GetRecord(ctx, kind, tableID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	fmt.Fprintf(a.out, "\n%s: %s\n", schema.TableName(kind, tableID), id)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, c := range columnsOf(row) {
		fmt.Fprintf(w, "%s:\t%s\n", c, a.cell(kind, c, row[c]))
	}
	w.Flush()
	fmt.Fprintln(a.out)

	return row, nil
}

// Delete soft-deletes a row, or removes it when force is set.
func (a *RecordAdapter) Delete(ctx context.Context, kind schema.TableKind, tableID, id string, force bool) error {
	if err := a.service.DeleteRecord(ctx, kind, tableID, id, force); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted %s row %s\n", schema.TableName(kind, tableID), id)
	return nil
}

// Schema prints the column catalog of a dynamic table.
func (a *RecordAdapter) Schema(ctx context.Context, kind schema.TableKind, tableID string) ([]query.Row, error) {
	cols, err := a.service.TableSchema(ctx, kind, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to read table schema: %w", err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tTYPE\tNULLABLE")
	fmt.Fprintln(w, "------\t----\t--------")
	for _, c := range cols {
		fmt.Fprintf(w, "%s\t%s\t%s\n", format(c["column_name"]), format(c["data_type"]), format(c["is_nullable"]))
	}
	w.Flush()

	return cols, nil
}

func (a *RecordAdapter) cell(kind schema.TableKind, col string, v any) string {
	if kind == schema.KindTask && col == schema.FieldStatus {
		return taskStatus(v)
	}
	return format(v)
}

// columnsOf returns the row's columns, id first and the rest sorted.
func columnsOf(row query.Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		if c != schema.FieldID {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	if _, ok := row[schema.FieldID]; ok {
		cols = append([]string{schema.FieldID}, cols...)
	}
	return cols
}

func format(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02 15:04")
	default:
		return fmt.Sprint(v)
	}
}

func taskStatus(v any) string {
	switch format(v) {
	case "1":
		return color.New(color.FgHiGreen).Sprint("done")
	case "0":
		return color.New(color.FgYellow).Sprint("pending")
	default:
		return format(v)
	}
}
