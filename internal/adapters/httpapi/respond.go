package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/cts/internal/core/errs"
)

const maxBodyBytes = 8 << 20

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errs.Validation("body", "invalid request body: %v", err)
	}
	return nil
}

func readRaw(r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.Validation("body", "failed to read request body: %v", err)
	}
	return json.RawMessage(body), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail writes err with the status its kind maps to. Unclassified errors
// are logged and reported as 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errs.Validation(name, "%s must be an integer, got %q", name, s)
	}
	return &n, nil
}

// queryPage reads pageNo and pageSize; zero values take the service defaults.
func queryPage(r *http.Request) (int, int, error) {
	no, err := queryInt(r, "pageNo")
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(r, "pageSize")
	if err != nil {
		return 0, 0, err
	}
	var pageNo, pageSize int
	if no != nil {
		pageNo = *no
	}
	if size != nil {
		pageSize = *size
	}
	return pageNo, pageSize, nil
}

func queryForce(r *http.Request) (bool, error) {
	s := r.URL.Query().Get("force")
	if s == "" {
		return false, nil
	}
	force, err := strconv.ParseBool(s)
	if err != nil {
		return false, errs.Validation("force", "force must be a boolean, got %q", s)
	}
	return force, nil
}
