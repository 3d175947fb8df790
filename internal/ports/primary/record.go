package primary

import (
	"context"
	"encoding/json"

	"github.com/example/cts/internal/core/query"
	"github.com/example/cts/internal/core/schema"
)

// RecordService defines the primary port for rows of a project's dynamic
// tables. kind selects the data or task table; tableID is the shared suffix
// stored as the project's data table name.
type RecordService interface {
	// GetRecord retrieves a non-deleted row by ID.
	GetRecord(ctx context.Context, kind schema.TableKind, tableID, id string) (query.Row, error)

	// GetRecordByCode retrieves the first non-deleted row with the given code.
	GetRecordByCode(ctx context.Context, kind schema.TableKind, tableID, code string) (query.Row, error)

	// AddRecord inserts a row from a JSON object and returns its ID.
	AddRecord(ctx context.Context, kind schema.TableKind, tableID string, data json.RawMessage) (string, error)

	// UpdateRecord updates a non-deleted row from a JSON object.
	UpdateRecord(ctx context.Context, kind schema.TableKind, tableID, id string, data json.RawMessage) error

	// DeleteRecord soft-deletes a row, or removes it when force is set.
	DeleteRecord(ctx context.Context, kind schema.TableKind, tableID, id string, force bool) error

	// SearchRecords returns one page of non-deleted rows.
	SearchRecords(ctx context.Context, kind schema.TableKind, tableID string, req SearchRecordsRequest) (*Page[query.Row], error)

	// TableSchema lists the columns of a dynamic table (Postgres only).
	TableSchema(ctx context.Context, kind schema.TableKind, tableID string) ([]query.Row, error)

	// SubmitForm stores a form submission for a task and marks the task done.
	SubmitForm(ctx context.Context, req FormSubmission) (string, error)

	// UpdateForm replaces fields of an existing form submission.
	UpdateForm(ctx context.Context, req FormSubmission) (string, error)
}

// SearchRecordsRequest contains search parameters. Wheres and Orders are SQL
// fragments appended to the generated statement as given.
type SearchRecordsRequest struct {
	Fields []string    `json:"fields,omitempty"`
	Wheres []string    `json:"wheres,omitempty"`
	Orders []string    `json:"orders,omitempty"`
	Page   PageRequest `json:"page"`
}

// FormSubmission is the data collected for one task. TableID names the
// project tables; the data row shares the task's ID.
type FormSubmission struct {
	TaskID  string          `json:"taskId"`
	TableID string          `json:"name"`
	Data    json.RawMessage `json:"data"`
}
