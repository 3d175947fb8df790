package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/cts/internal/core/errs"
	coreproject "github.com/example/cts/internal/core/project"
	"github.com/example/cts/internal/core/query"
	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/core/value"
	"github.com/example/cts/internal/ctxutil"
	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/ports/secondary"
)

// Default ordering for record searches: recently touched rows first.
var defaultRecordOrder = []string{"updated_at DESC NULLS LAST", "created_at DESC"}

// TaskStatusDone marks a task whose form has been submitted.
const TaskStatusDone = 1

// RecordServiceImpl implements the RecordService interface.
type RecordServiceImpl struct {
	runner     secondary.StatementRunner
	transactor secondary.Transactor

	now func() time.Time
}

// NewRecordService creates a new RecordService with injected dependencies.
func NewRecordService(runner secondary.StatementRunner, transactor secondary.Transactor) *RecordServiceImpl {
	return &RecordServiceImpl{
		runner:     runner,
		transactor: transactor,
		now:        time.Now,
	}
}

// GetRecord retrieves a non-deleted row by ID.
func (s *RecordServiceImpl) GetRecord(ctx context.Context, kind schema.TableKind, tableID, id string) (query.Row, error) {
	table, err := tableName(kind, tableID)
	if err != nil {
		return nil, err
	}
	row, err := s.runner.One(ctx, query.Table(table).DefaultFilter().FindByID(id))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errs.NotFound(table, id)
	}
	return row, nil
}

// GetRecordByCode retrieves the first non-deleted row with the given code.
func (s *RecordServiceImpl) GetRecordByCode(ctx context.Context, kind schema.TableKind, tableID, code string) (query.Row, error) {
	table, err := tableName(kind, tableID)
	if err != nil {
		return nil, err
	}
	sel := query.Table(table).
		DefaultFilter().
		Filter(schema.FieldCode + " = " + value.NewText(code).Literal()).
		OrderBy(schema.FieldCreatedAt + " ASC").
		Page(1, 1)
	row, err := s.runner.One(ctx, sel)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errs.NotFound(table, code)
	}
	return row, nil
}

// AddRecord inserts a row from a JSON object and returns its ID.
func (s *RecordServiceImpl) AddRecord(ctx context.Context, kind schema.TableKind, tableID string, data json.RawMessage) (string, error) {
	table, err := tableName(kind, tableID)
	if err != nil {
		return "", err
	}
	return s.add(ctx, s.runner, table, data)
}

// UpdateRecord updates a non-deleted row from a JSON object.
func (s *RecordServiceImpl) UpdateRecord(ctx context.Context, kind schema.TableKind, tableID, id string, data json.RawMessage) error {
	table, err := tableName(kind, tableID)
	if err != nil {
		return err
	}
	return s.update(ctx, s.runner, table, id, data)
}

// DeleteRecord soft-deletes a row, or removes it when force is set. A row
// that is already soft-deleted can only be removed.
func (s *RecordServiceImpl) DeleteRecord(ctx context.Context, kind schema.TableKind, tableID, id string, force bool) error {
	table, err := tableName(kind, tableID)
	if err != nil {
		return err
	}

	deleted, err := s.lookup(ctx, s.runner, table, id)
	if err != nil {
		return err
	}
	if deleted && !force {
		return errs.Conflict("%s row %s is already deleted", table, id)
	}

	if _, err := s.runner.Exec(ctx, query.Table(table).WithClock(s.now).DeleteByID(id, force)); err != nil {
		return err
	}
	slog.DebugContext(ctx, "record deleted", "table", table, "id", id, "hard", force)
	return nil
}

// SearchRecords returns one page of non-deleted rows. Wheres and Orders are
// appended to the statement as given.
func (s *RecordServiceImpl) SearchRecords(ctx context.Context, kind schema.TableKind, tableID string, req primary.SearchRecordsRequest) (*primary.Page[query.Row], error) {
	table, err := tableName(kind, tableID)
	if err != nil {
		return nil, err
	}
	for _, f := range req.Fields {
		if !schema.ValidIdentifier(f) {
			return nil, errs.Validation("fields", "%q is not a valid column name", f)
		}
	}
	pageNo, pageSize := coreproject.NormalizePage(req.Page.PageNo, req.Page.PageSize)

	filtered := func() *query.Builder {
		b := query.Table(table).DefaultFilter()
		for _, w := range req.Wheres {
			b.Filter(w)
		}
		return b
	}

	countRow, err := s.runner.One(ctx, filtered().Count())
	if err != nil {
		return nil, err
	}
	total, err := rowCount(countRow)
	if err != nil {
		return nil, err
	}

	b := filtered().Columns(req.Fields...)
	orders := req.Orders
	if len(orders) == 0 {
		orders = defaultRecordOrder
	}
	for _, o := range orders {
		b.OrderBy(o)
	}
	rows, err := s.runner.All(ctx, b.Page(pageNo, pageSize))
	if err != nil {
		return nil, err
	}
	return primary.NewPage(rows, total, pageNo, pageSize), nil
}

// TableSchema lists the columns of a dynamic table. The catalog query is
// Postgres-specific.
func (s *RecordServiceImpl) TableSchema(ctx context.Context, kind schema.TableKind, tableID string) ([]query.Row, error) {
	table, err := tableName(kind, tableID)
	if err != nil {
		return nil, err
	}
	return s.runner.All(ctx, query.Table(table).FindTableSchema())
}

// SubmitForm stores a submission in the data table under the task's ID and
// marks the task done, in one transaction.
func (s *RecordServiceImpl) SubmitForm(ctx context.Context, req primary.FormSubmission) (string, error) {
	if strings.TrimSpace(req.TaskID) == "" {
		return "", errs.Required("taskId")
	}
	dataTable, err := tableName(schema.KindData, req.TableID)
	if err != nil {
		return "", err
	}
	taskTable := schema.TableName(schema.KindTask, req.TableID)
	payload, err := setField(req.Data, schema.FieldID, req.TaskID, true)
	if err != nil {
		return "", err
	}

	err = s.transactor.InTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		runner := tx.Statements()

		task, err := runner.One(ctx, query.Table(taskTable).DefaultFilter().FindByID(req.TaskID))
		if err != nil {
			return err
		}
		if task == nil {
			return errs.NotFound(taskTable, req.TaskID)
		}

		if _, err := s.add(ctx, runner, dataTable, payload); err != nil {
			return err
		}

		done, err := query.Table(taskTable).WithClock(s.now).Set(req.TaskID, map[string]value.Value{
			schema.FieldStatus: value.NewInt(TaskStatusDone),
		})
		if err != nil {
			return err
		}
		_, err = runner.Exec(ctx, done)
		return err
	})
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "form submitted", "table_id", req.TableID, "task_id", req.TaskID)
	return req.TaskID, nil
}

// UpdateForm replaces fields of an existing submission.
func (s *RecordServiceImpl) UpdateForm(ctx context.Context, req primary.FormSubmission) (string, error) {
	if strings.TrimSpace(req.TaskID) == "" {
		return "", errs.Required("taskId")
	}
	dataTable, err := tableName(schema.KindData, req.TableID)
	if err != nil {
		return "", err
	}
	if err := s.update(ctx, s.runner, dataTable, req.TaskID, req.Data); err != nil {
		return "", err
	}
	return req.TaskID, nil
}

// Helper methods

// add inserts data into table. The authenticated user's id fills user_id
// unless the payload sets it.
func (s *RecordServiceImpl) add(ctx context.Context, runner secondary.StatementRunner, table string, data json.RawMessage) (string, error) {
	if userID := ctxutil.UserIDFromContext(ctx); userID != "" {
		var err error
		if data, err = setField(data, schema.FieldUserID, userID, false); err != nil {
			return "", err
		}
	}

	var id string
	m, err := query.Table(table).WithClock(s.now).Add(data, func(got string) { id = got })
	if err != nil {
		return "", err
	}
	if _, err := runner.Exec(ctx, m); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RecordServiceImpl) update(ctx context.Context, runner secondary.StatementRunner, table, id string, data json.RawMessage) error {
	deleted, err := s.lookup(ctx, runner, table, id)
	if err != nil {
		return err
	}
	if deleted {
		return errs.Conflict("%s row %s is deleted", table, id)
	}

	m, err := query.Table(table).WithClock(s.now).Update(id, data)
	if err != nil {
		return err
	}
	_, err = runner.Exec(ctx, m)
	return err
}

// lookup reports whether row id is soft-deleted, or NotFound when it does
// not exist at all.
func (s *RecordServiceImpl) lookup(ctx context.Context, runner secondary.StatementRunner, table, id string) (bool, error) {
	row, err := runner.One(ctx, query.Table(table).FindByID(id))
	if err != nil {
		return false, err
	}
	if row == nil {
		return false, errs.NotFound(table, id)
	}
	return row[schema.FieldDeletedAt] != nil, nil
}

func tableName(kind schema.TableKind, tableID string) (string, error) {
	if _, err := schema.ParseTableKind(string(kind)); err != nil {
		return "", err
	}
	if tableID == "" {
		return "", errs.Required("tableId")
	}
	table := schema.TableName(kind, tableID)
	if !schema.ValidIdentifier(table) {
		return "", errs.Validation("tableId", "%q is not a valid table id", tableID)
	}
	return table, nil
}

// setField returns data with key set to v. An existing key is kept unless
// overwrite is set.
func setField(data json.RawMessage, key, v string, overwrite bool) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, errs.Validation("data", "payload must be a JSON object")
	}
	if _, ok := obj[key]; ok && !overwrite {
		return data, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	obj[key] = raw
	return json.Marshal(obj)
}

// rowCount reads the total column of a COUNT(*) row. Drivers disagree on
// the Go type.
func rowCount(row query.Row) (int64, error) {
	switch v := row["total"].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}

// Ensure RecordServiceImpl implements the interface
var _ primary.RecordService = (*RecordServiceImpl)(nil)
