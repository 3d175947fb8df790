package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/cts/internal/ports/primary"
)

type TemplateHandler struct {
	svc primary.FormTemplateService
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	pageNo, pageSize, err := queryPage(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	q := r.URL.Query()
	page, err := h.svc.SearchTemplates(r.Context(), primary.SearchTemplatesRequest{
		Name:        q.Get("name"),
		Title:       q.Get("title"),
		Version:     q.Get("version"),
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

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req primary.CreateTemplateRequest
	if err := readJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	resp, err := h.svc.CreateTemplate(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req primary.UpdateTemplateRequest
	if err := readJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	t, err := h.svc.UpdateTemplate(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	force, err := queryForce(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.DeleteTemplate(r.Context(), id, force); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
