package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/ports/primary"
)

type RecordHandler struct {
	svc primary.RecordService
}

// table reads the {kind} and {tableID} path parameters. The service
// validates both.
func table(r *http.Request) (schema.TableKind, string) {
	return schema.TableKind(chi.URLParam(r, "kind")), chi.URLParam(r, "tableID")
}

func (h *RecordHandler) Schema(w http.ResponseWriter, r *http.Request) {
	kind, tableID := table(r)
	cols, err := h.svc.TableSchema(r.Context(), kind, tableID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (h *RecordHandler) Search(w http.ResponseWriter, r *http.Request) {
	kind, tableID := table(r)
	var req primary.SearchRecordsRequest
	if r.ContentLength != 0 {
		if err := readJSON(r, &req); err != nil {
			fail(w, r, err)
			return
		}
	}
	page, err := h.svc.SearchRecords(r.Context(), kind, tableID, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *RecordHandler) Add(w http.ResponseWriter, r *http.Request) {
	kind, tableID := table(r)
	data, err := readRaw(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	id, err := h.svc.AddRecord(r.Context(), kind, tableID, data)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, tableID := table(r)
	row, err := h.svc.GetRecord(r.Context(), kind, tableID, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *RecordHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	kind, tableID := table(r)
	row, err := h.svc.GetRecordByCode(r.Context(), kind, tableID, chi.URLParam(r, "code"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, tableID := table(r)
	id := chi.URLParam(r, "id")
	data, err := readRaw(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.UpdateRecord(r.Context(), kind, tableID, id, data); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, tableID := table(r)
	id := chi.URLParam(r, "id")
	force, err := queryForce(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.svc.DeleteRecord(r.Context(), kind, tableID, id, force); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *RecordHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req primary.FormSubmission
	if err := readJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	id, err := h.svc.SubmitForm(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *RecordHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	var req primary.FormSubmission
	if err := readJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	id, err := h.svc.UpdateForm(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
