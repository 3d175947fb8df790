// Package csvfile reads CSV datasets: one header row, comma delimited, every
// cell kept as text.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/ports/primary"
)

const bom = "\uFEFF"

// Read parses a dataset from r. Rows keep their own width so that ragged
// lines reach the dataset guard, which reports them by line number.
func Read(r io.Reader) (primary.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return primary.Dataset{}, errs.Validation("file", "invalid CSV at line %d: %v", parseErr.Line, parseErr.Err)
		}
		return primary.Dataset{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return primary.Dataset{}, errs.Validation("file", "dataset has no header row")
	}

	headers := records[0]
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		headers[i] = strings.TrimSpace(h)
	}
	return primary.Dataset{Headers: headers, Rows: records[1:]}, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) (primary.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return primary.Dataset{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}
