// Package project contains the pure business logic for project provisioning.
// Guards are pure functions that evaluate preconditions without side effects.
package project

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/schema"
)

// Metadata field names as they arrive from a multipart form or CLI flags.
const (
	FieldName           = "name"
	FieldCode           = "code"
	FieldType           = "type"
	FieldStatus         = "status"
	FieldFormTemplateID = "formTemplateId"
	FieldTaskCode       = "taskCode"
	FieldTaskLon        = "taskLon"
	FieldTaskLat        = "taskLat"
	FieldDescription    = "description"
	FieldRemark         = "remark"
)

// RequiredFields lists the metadata fields a create request must carry, in
// the order they are checked.
var RequiredFields = []string{
	FieldName,
	FieldCode,
	FieldType,
	FieldFormTemplateID,
	FieldTaskCode,
	FieldTaskLon,
	FieldTaskLat,
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Field   string
	Reason  string
}

// Error converts the guard result to a validation error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return errs.Validation(r.Field, "%s", r.Reason)
}

func deny(field, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Metadata is a validated create request.
type Metadata struct {
	Name           string
	Code           string
	Type           int
	Status         int
	FormTemplateID string
	TaskCode       string
	TaskLon        string
	TaskLat        string
	Description    *string
	Remark         *string
}

// Nominated returns the code, lon and lat source column names, in that order.
func (m Metadata) Nominated() []string {
	return []string{m.TaskCode, m.TaskLon, m.TaskLat}
}

// CanCreateProject evaluates the metadata fields of a create request.
// Rules:
// - Every required field is present and not blank
// - type (and status, when given) are integers
func CanCreateProject(fields map[string]string) GuardResult {
	for _, f := range RequiredFields {
		if strings.TrimSpace(fields[f]) == "" {
			return deny(f, "%s is required", f)
		}
	}
	if _, err := strconv.Atoi(strings.TrimSpace(fields[FieldType])); err != nil {
		return deny(FieldType, "type must be an integer, got %q", fields[FieldType])
	}
	if s, ok := fields[FieldStatus]; ok && strings.TrimSpace(s) != "" {
		if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
			return deny(FieldStatus, "status must be an integer, got %q", s)
		}
	}
	return GuardResult{Allowed: true}
}

// ParseMetadata runs CanCreateProject and converts the fields.
func ParseMetadata(fields map[string]string) (Metadata, error) {
	if err := CanCreateProject(fields).Error(); err != nil {
		return Metadata{}, err
	}

	get := func(f string) string { return strings.TrimSpace(fields[f]) }
	m := Metadata{
		Name:           get(FieldName),
		Code:           get(FieldCode),
		FormTemplateID: get(FieldFormTemplateID),
		TaskCode:       get(FieldTaskCode),
		TaskLon:        get(FieldTaskLon),
		TaskLat:        get(FieldTaskLat),
	}
	m.Type, _ = strconv.Atoi(get(FieldType))
	if s := get(FieldStatus); s != "" {
		m.Status, _ = strconv.Atoi(s)
	}
	if v, ok := fields[FieldDescription]; ok {
		m.Description = &v
	}
	if v, ok := fields[FieldRemark]; ok {
		m.Remark = &v
	}
	return m, nil
}

// DatasetContext provides context for dataset guards.
type DatasetContext struct {
	Headers   []string
	Rows      [][]string
	Nominated []string // raw header names for code, lon, lat
}

// CanLoadDataset evaluates whether a CSV dataset can seed a task table.
// Rules:
// - There is a header row
// - Every header is a usable column name
// - Every nominated column is one of the headers
// - Every data row has one cell per header
func CanLoadDataset(ctx DatasetContext) GuardResult {
	if len(ctx.Headers) == 0 {
		return deny("file", "dataset has no header row")
	}
	for _, h := range ctx.Headers {
		if !schema.ValidIdentifier(h) {
			return deny("file", "header %q is not a valid column name", h)
		}
	}

	fields := []string{FieldTaskCode, FieldTaskLon, FieldTaskLat}
	for i, name := range ctx.Nominated {
		if !contains(ctx.Headers, name) {
			field := "file"
			if i < len(fields) {
				field = fields[i]
			}
			return deny(field, "field %q not found in dataset headers", name)
		}
	}

	for i, row := range ctx.Rows {
		if len(row) != len(ctx.Headers) {
			// +2: one for the header row, one for 1-based line numbers
			return deny("file", "line %d has %d cells, expected %d", i+2, len(row), len(ctx.Headers))
		}
	}
	return GuardResult{Allowed: true}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Default paging values.
const (
	DefaultPageNo   = 1
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// NormalizePage applies paging defaults: page numbers start at 1, sizes
// default to 10 and are capped at MaxPageSize.
func NormalizePage(no, size int) (int, int) {
	if no < 1 {
		no = DefaultPageNo
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return no, size
}
