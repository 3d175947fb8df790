// Package form models form templates and turns submitted data and CSV
// headers into the column and value lists of dynamic tables.
package form

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/schema"
)

// SectionType marks layout-only questions that never become columns.
const SectionType = "SectionType"

// Template is the stored JSON document: {"form": {...}}.
type Template struct {
	Form Form `json:"form"`
}

type Form struct {
	Name        string       `json:"name"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Version     string       `json:"version"`
	Questions   []Question   `json:"questions"`
	Validations *Validations `json:"validations,omitempty"`
}

type Question struct {
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Unit         *string `json:"unit,omitempty"`
	Cached       *bool   `json:"cached,omitempty"`
	Required     *bool   `json:"required,omitempty"`
	Description  *string `json:"description,omitempty"`
	Error        *string `json:"error,omitempty"`
	DefaultValue *string `json:"defaultValue,omitempty"`
	Items        []Item  `json:"items,omitempty"`
}

type Item struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type Validations struct {
	ExpressionValidations []ExpressionValidation `json:"expressionValidations"`
}

type ExpressionValidation struct {
	Expression string `json:"expression"`
	Message    string `json:"message"`
}

// ParseTemplate decodes template content.
func ParseTemplate(content string) (*Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.Required("content")
	}
	var t Template
	if err := json.Unmarshal([]byte(content), &t); err != nil {
		return nil, errs.Validation("content", "invalid form template: %v", err)
	}
	return &t, nil
}

// Columns returns the question names that back data-table columns, in
// question order. Section pseudo-questions are skipped.
func (t *Template) Columns() []string {
	cols := make([]string, 0, len(t.Form.Questions))
	for _, q := range t.Form.Questions {
		if q.Type == SectionType {
			continue
		}
		cols = append(cols, q.Name)
	}
	return cols
}

// DataColumns returns Columns with Common Field collisions renamed, ready
// for CREATE TABLE.
func (t *Template) DataColumns() []string {
	return renameCollisions(t.Columns())
}

// Validate checks that every column question has a usable name.
func (t *Template) Validate() error {
	for i, q := range t.Form.Questions {
		if q.Type == SectionType {
			continue
		}
		if q.Name == "" {
			return errs.Validation("questions", "question %d has no name", i)
		}
		if !schema.ValidIdentifier(q.Name) {
			return errs.Validation("questions", "question name %q is not a valid column name", q.Name)
		}
	}
	return nil
}

func (q Question) String() string {
	return fmt.Sprintf("%s(%s)", q.Name, q.Type)
}
