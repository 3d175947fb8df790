package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/query"
	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/ctxutil"
	"github.com/example/cts/internal/ports/primary"
)

const testToken = "good-token"

type mockAuth struct{}

func (mockAuth) Login(_ context.Context, req primary.LoginRequest) (*primary.LoginResponse, error) {
	if req.Password != "pw" {
		return nil, errs.Unauthorized("invalid credentials")
	}
	return &primary.LoginResponse{Token: testToken, User: &primary.User{ID: "U1", Username: req.Username}}, nil
}

func (mockAuth) CreateUser(context.Context, primary.CreateUserRequest) (*primary.User, error) {
	return nil, errors.New("not used")
}

func (mockAuth) ValidateToken(token string) (*primary.Identity, error) {
	if token != testToken {
		return nil, errs.Unauthorized("invalid token")
	}
	return &primary.Identity{UserID: "U1", Username: "admin"}, nil
}

type mockTemplates struct {
	lastSearch primary.SearchTemplatesRequest
	lastForce  bool
}

func (m *mockTemplates) CreateTemplate(_ context.Context, req primary.CreateTemplateRequest) (*primary.CreateTemplateResponse, error) {
	if req.Name == "" {
		return nil, errs.Required("name")
	}
	return &primary.CreateTemplateResponse{TemplateID: "T1", Template: &primary.FormTemplate{ID: "T1", Name: req.Name}}, nil
}

func (m *mockTemplates) GetTemplate(_ context.Context, id string) (*primary.FormTemplate, error) {
	if id != "T1" {
		return nil, errs.NotFound("form template", id)
	}
	return &primary.FormTemplate{ID: "T1", Name: "survey"}, nil
}

func (m *mockTemplates) UpdateTemplate(_ context.Context, id string, req primary.UpdateTemplateRequest) (*primary.FormTemplate, error) {
	return &primary.FormTemplate{ID: id, Name: *req.Name}, nil
}

func (m *mockTemplates) DeleteTemplate(_ context.Context, id string, force bool) error {
	m.lastForce = force
	if force {
		return errs.Conflict("form template %s is used by 1 project", id)
	}
	return nil
}

func (m *mockTemplates) SearchTemplates(_ context.Context, req primary.SearchTemplatesRequest) (*primary.Page[*primary.FormTemplate], error) {
	m.lastSearch = req
	return primary.NewPage([]*primary.FormTemplate{{ID: "T1"}}, 1, 1, 10), nil
}

type mockProjects struct {
	lastCreate primary.CreateProjectRequest
	lastSearch primary.SearchProjectsRequest
}

func (m *mockProjects) CreateProject(_ context.Context, req primary.CreateProjectRequest) (*primary.CreateProjectResponse, error) {
	m.lastCreate = req
	return &primary.CreateProjectResponse{ProjectID: "P1", TableID: "ab12", Rows: len(req.Dataset.Rows)}, nil
}

func (m *mockProjects) GetProject(_ context.Context, id string) (*primary.Project, error) {
	return &primary.Project{ID: id}, nil
}

func (m *mockProjects) UpdateProject(_ context.Context, id string, _ primary.UpdateProjectRequest) (*primary.Project, error) {
	return &primary.Project{ID: id}, nil
}

func (m *mockProjects) DeleteProject(context.Context, string, bool) error { return nil }

func (m *mockProjects) SearchProjects(_ context.Context, req primary.SearchProjectsRequest) (*primary.Page[*primary.Project], error) {
	m.lastSearch = req
	return primary.NewPage[*primary.Project](nil, 0, 1, 10), nil
}

type mockRecords struct {
	actor      string
	lastKind   schema.TableKind
	lastTable  string
	lastData   json.RawMessage
	lastSearch primary.SearchRecordsRequest
	lastSubmit primary.FormSubmission
}

func (m *mockRecords) GetRecord(_ context.Context, kind schema.TableKind, tableID, id string) (query.Row, error) {
	m.lastKind, m.lastTable = kind, tableID
	if id == "missing" {
		return nil, errs.NotFound("data_ab12", id)
	}
	return query.Row{"id": id}, nil
}

func (m *mockRecords) GetRecordByCode(_ context.Context, _ schema.TableKind, _, code string) (query.Row, error) {
	return query.Row{"code": code}, nil
}

func (m *mockRecords) AddRecord(ctx context.Context, kind schema.TableKind, tableID string, data json.RawMessage) (string, error) {
	m.actor = ctxutil.UserIDFromContext(ctx)
	m.lastKind, m.lastTable, m.lastData = kind, tableID, data
	return "R1", nil
}

func (m *mockRecords) UpdateRecord(context.Context, schema.TableKind, string, string, json.RawMessage) error {
	return nil
}

func (m *mockRecords) DeleteRecord(context.Context, schema.TableKind, string, string, bool) error {
	return errors.New("connection reset")
}

func (m *mockRecords) SearchRecords(_ context.Context, _ schema.TableKind, _ string, req primary.SearchRecordsRequest) (*primary.Page[query.Row], error) {
	m.lastSearch = req
	return primary.NewPage([]query.Row{{"id": "R1"}}, 1, 1, 10), nil
}

func (m *mockRecords) TableSchema(context.Context, schema.TableKind, string) ([]query.Row, error) {
	return []query.Row{{"column_name": "id"}}, nil
}

func (m *mockRecords) SubmitForm(_ context.Context, req primary.FormSubmission) (string, error) {
	m.lastSubmit = req
	return req.TaskID, nil
}

func (m *mockRecords) UpdateForm(_ context.Context, req primary.FormSubmission) (string, error) {
	return req.TaskID, nil
}

type testServer struct {
	handler   http.Handler
	templates *mockTemplates
	projects  *mockProjects
	records   *mockRecords
}

func newTestServer() *testServer {
	ts := &testServer{
		templates: &mockTemplates{},
		projects:  &mockProjects{},
		records:   &mockRecords{},
	}
	ts.handler = NewRouter(Services{
		Auth:      mockAuth{},
		Templates: ts.templates,
		Projects:  ts.projects,
		Records:   ts.records,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLogin(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"admin","password":"pw"}`))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testToken, decode(t, rec)["token"])

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"admin","password":"no"}`))
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode(t, rec)["error"])
}

func TestAuthenticate(t *testing.T) {
	ts := newTestServer()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "missing header", header: "", want: "unauthorized"},
		{name: "not bearer", header: "Basic abc", want: "unauthorized"},
		{name: "bad token", header: "Bearer nope", want: "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.want, decode(t, rec)["error"])
		})
	}
}

func TestTemplateRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/templates?name=sur&pageNo=2&pageSize=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sur", ts.templates.lastSearch.Name)
	assert.Equal(t, primary.PageRequest{PageNo: 2, PageSize: 5}, ts.templates.lastSearch.Page)

	rec = ts.do(t, http.MethodGet, "/api/v1/templates?pageNo=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/templates", `{"name":"survey","content":"{}"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "T1", decode(t, rec)["templateId"])

	rec = ts.do(t, http.MethodPost, "/api/v1/templates", `{"content":"{}"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/templates", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/templates/T1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/templates/T9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/v1/templates/T1", `{"name":"renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "renamed", decode(t, rec)["name"])

	rec = ts.do(t, http.MethodDelete, "/api/v1/templates/T1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ts.templates.lastForce)

	rec = ts.do(t, http.MethodDelete, "/api/v1/templates/T1?force=true", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, ts.templates.lastForce)
}

func TestProjectRoutes_Create(t *testing.T) {
	ts := newTestServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Survey 2024"))
	require.NoError(t, mw.WriteField("code", "S-24"))
	fw, err := mw.CreateFormFile("file", "tasks.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("code,lon,lat\nA1,1.5,2.5\nA2,3,4\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", &body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), decode(t, rec)["rows"])
	assert.Equal(t, "S-24", ts.projects.lastCreate.Fields["code"])
	assert.Equal(t, []string{"code", "lon", "lat"}, ts.projects.lastCreate.Dataset.Headers)
}

func TestProjectRoutes_CreateRemovesSpilledUpload(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	old := uploadMemoryBytes
	uploadMemoryBytes = 1
	t.Cleanup(func() { uploadMemoryBytes = old })

	ts := newTestServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("code", "S-25"))
	fw, err := mw.CreateFormFile("file", "tasks.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("code,lon,lat\nA1,1.5,2.5\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", &body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left, "spilled upload files should be removed")
}

func TestProjectRoutes_CreateWithoutFile(t *testing.T) {
	ts := newTestServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Survey 2024"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", &body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectRoutes_List(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodGet, "/api/v1/projects?code=S-24&status=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "S-24", ts.projects.lastSearch.Code)
	require.NotNil(t, ts.projects.lastSearch.Status)
	assert.Equal(t, 1, *ts.projects.lastSearch.Status)
	assert.Nil(t, ts.projects.lastSearch.Type)

	rec = ts.do(t, http.MethodGet, "/api/v1/projects?type=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/tables/data/ab12/records", `{"owner":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "R1", decode(t, rec)["id"])
	assert.Equal(t, schema.KindData, ts.records.lastKind)
	assert.Equal(t, "ab12", ts.records.lastTable)
	assert.JSONEq(t, `{"owner":"Ann"}`, string(ts.records.lastData))
	assert.Equal(t, "U1", ts.records.actor)

	rec = ts.do(t, http.MethodGet, "/api/v1/tables/task/ab12/records/R1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schema.KindTask, ts.records.lastKind)

	rec = ts.do(t, http.MethodGet, "/api/v1/tables/task/ab12/records/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/tables/task/ab12/codes/A1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A1", decode(t, rec)["code"])

	rec = ts.do(t, http.MethodPost, "/api/v1/tables/task/ab12/search", `{"wheres":["status = 0"],"page":{"pageNo":1,"pageSize":20}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"status = 0"}, ts.records.lastSearch.Wheres)
	assert.Equal(t, 20, ts.records.lastSearch.Page.PageSize)

	rec = ts.do(t, http.MethodGet, "/api/v1/tables/data/ab12/schema", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/tables/data/ab12/records/R1?force=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unclassified service errors surface as 500
	rec = ts.do(t, http.MethodDelete, "/api/v1/tables/data/ab12/records/R1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFormSubmissionRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(t, http.MethodPost, "/api/v1/forms/submissions", `{"taskId":"K1","name":"ab12","data":{"owner":"Ann"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "K1", decode(t, rec)["id"])
	assert.Equal(t, "ab12", ts.records.lastSubmit.TableID)
	assert.JSONEq(t, `{"owner":"Ann"}`, string(ts.records.lastSubmit.Data))

	rec = ts.do(t, http.MethodPut, "/api/v1/forms/submissions", `{"taskId":"K1","name":"ab12","data":{}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.Required("name"), http.StatusBadRequest},
		{errs.Unauthorized("nope"), http.StatusUnauthorized},
		{errs.NotFound("project", "P1"), http.StatusNotFound},
		{errs.Conflict("taken"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}
