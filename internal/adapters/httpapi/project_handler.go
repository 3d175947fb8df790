package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/cts/internal/adapters/csvfile"
	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/ports/primary"
)

// uploadMemoryBytes is how much of an upload is held in memory; the rest
// spills to temp files that Create removes before returning.
var uploadMemoryBytes int64 = 32 << 20

type ProjectHandler struct {
	svc primary.ProjectService
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	pageNo, pageSize, err := queryPage(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	projectType, err := queryInt(r, "type")
	if err != nil {
		fail(w, r, err)
		return
	}
	status, err := queryInt(r, "status")
	if err != nil {
		fail(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := h.svc.SearchProjects(r.Context(), primary.SearchProjectsRequest{
		Name:        q.Get("name"),
		Code:        q.Get("code"),
		Type:        projectType,
		Status:      status,
		Description: q.Get("description"),
		Remark:      q.Get("remark"),
		Page:        primary.PageRequest{PageNo: pageNo, PageSize: pageSize},
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create takes a multipart form: the metadata fields plus the CSV dataset
// under "file".
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryBytes); err != nil {
		fail(w, r, errs.Validation("file", "invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields := make(map[string]string, len(r.MultipartForm.Value))
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}

	file, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		fail(w, r, errs.Required("file"))
		return
	}
	if err != nil {
		fail(w, r, errs.Validation("file", "failed to read upload: %v", err))
		return
	}
	defer file.Close()

	dataset, err := csvfile.Read(file)
	if err != nil {
		fail(w, r, err)
		return
	}

	resp, err := h.svc.CreateProject(r.Context(), primary.CreateProjectRequest{Fields: fields, Dataset: dataset})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req primary.UpdateProjectRequest
	if err := readJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	p, err := h.svc.UpdateProject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	force, err := queryForce(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.DeleteProject(r.Context(), id, force); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
