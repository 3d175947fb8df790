package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/query"
	"github.com/example/cts/internal/ports/secondary"
)

var fixedNow = time.Date(2024, 6, 7, 13, 8, 40, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// sequence returns an ID source yielding prefix-1, prefix-2, ...
func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + string(rune('0'+n))
	}
}

// ============================================================================
// Form template repository
// ============================================================================

// Ensure mockFormTemplateRepository implements the interface
var _ secondary.FormTemplateRepository = (*mockFormTemplateRepository)(nil)

type mockFormTemplateRepository struct {
	templates map[string]*secondary.FormTemplateRecord
	createErr error
	searchErr error
	lastQuery secondary.FormTemplateFilters
}

func newMockFormTemplateRepository() *mockFormTemplateRepository {
	return &mockFormTemplateRepository{templates: make(map[string]*secondary.FormTemplateRecord)}
}

func (m *mockFormTemplateRepository) Create(ctx context.Context, t *secondary.FormTemplateRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.templates {
		if existing.Name == t.Name {
			return errs.Conflict("form template name %q exists", t.Name)
		}
	}
	m.templates[t.ID] = t
	return nil
}

func (m *mockFormTemplateRepository) GetByID(ctx context.Context, id string) (*secondary.FormTemplateRecord, error) {
	if t, ok := m.templates[id]; ok && t.DeletedAt == nil {
		copied := *t
		return &copied, nil
	}
	return nil, errs.NotFound("form template", id)
}

func (m *mockFormTemplateRepository) GetAnyByID(ctx context.Context, id string) (*secondary.FormTemplateRecord, error) {
	if t, ok := m.templates[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, errs.NotFound("form template", id)
}

func (m *mockFormTemplateRepository) Update(ctx context.Context, t *secondary.FormTemplateRecord) error {
	if existing, ok := m.templates[t.ID]; !ok || existing.DeletedAt != nil {
		return errs.NotFound("form template", t.ID)
	}
	m.templates[t.ID] = t
	return nil
}

func (m *mockFormTemplateRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	t, ok := m.templates[id]
	if !ok || t.DeletedAt != nil {
		return errs.NotFound("form template", id)
	}
	t.DeletedAt = &at
	return nil
}

func (m *mockFormTemplateRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return errs.NotFound("form template", id)
	}
	delete(m.templates, id)
	return nil
}

func (m *mockFormTemplateRepository) Search(ctx context.Context, f secondary.FormTemplateFilters) ([]*secondary.FormTemplateRecord, int64, error) {
	m.lastQuery = f
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	var result []*secondary.FormTemplateRecord
	for _, t := range m.templates {
		if t.DeletedAt == nil && strings.Contains(t.Name, f.Name) {
			result = append(result, t)
		}
	}
	return result, int64(len(result)), nil
}

// ============================================================================
// Project repository
// ============================================================================

// Ensure mockProjectRepository implements the interface
var _ secondary.ProjectRepository = (*mockProjectRepository)(nil)

type mockProjectRepository struct {
	projects  map[string]*secondary.ProjectRecord
	createErr error
	lastQuery secondary.ProjectFilters
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[string]*secondary.ProjectRecord)}
}

func (m *mockProjectRepository) Create(ctx context.Context, p *secondary.ProjectRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.projects {
		if existing.Code == p.Code {
			return errs.Conflict("project code %q exists", p.Code)
		}
	}
	m.projects[p.ID] = p
	return nil
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	if p, ok := m.projects[id]; ok && p.DeletedAt == nil {
		copied := *p
		return &copied, nil
	}
	return nil, errs.NotFound("project", id)
}

func (m *mockProjectRepository) GetAnyByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	if p, ok := m.projects[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, errs.NotFound("project", id)
}

func (m *mockProjectRepository) Update(ctx context.Context, p *secondary.ProjectRecord) error {
	if existing, ok := m.projects[p.ID]; !ok || existing.DeletedAt != nil {
		return errs.NotFound("project", p.ID)
	}
	m.projects[p.ID] = p
	return nil
}

func (m *mockProjectRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	p, ok := m.projects[id]
	if !ok || p.DeletedAt != nil {
		return errs.NotFound("project", id)
	}
	p.DeletedAt = &at
	return nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return errs.NotFound("project", id)
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepository) Search(ctx context.Context, f secondary.ProjectFilters) ([]*secondary.ProjectRecord, int64, error) {
	m.lastQuery = f
	var result []*secondary.ProjectRecord
	for _, p := range m.projects {
		if p.DeletedAt == nil && strings.Contains(p.Name, f.Name) {
			result = append(result, p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockProjectRepository) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	var n int64
	for _, p := range m.projects {
		if p.FormTemplateID == templateID && p.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// User repository
// ============================================================================

// Ensure mockUserRepository implements the interface
var _ secondary.UserRepository = (*mockUserRepository)(nil)

type mockUserRepository struct {
	users map[string]*secondary.UserRecord
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*secondary.UserRecord)}
}

func (m *mockUserRepository) Create(ctx context.Context, u *secondary.UserRecord) error {
	if _, ok := m.users[u.Username]; ok {
		return errs.Conflict("username %q exists", u.Username)
	}
	m.users[u.Username] = u
	return nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*secondary.UserRecord, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, errs.NotFound("user", username)
}

// ============================================================================
// Statement runner and transactor
// ============================================================================

// Ensure mockStatementRunner implements the interface
var _ secondary.StatementRunner = (*mockStatementRunner)(nil)

// mockStatementRunner records executed SQL. oneFn and allFn script query
// results; failOn makes Exec fail for statements containing it.
type mockStatementRunner struct {
	executed []string
	queried  []string
	oneFn    func(sql string) query.Row
	allFn    func(sql string) []query.Row
	failOn   string
}

func (m *mockStatementRunner) One(ctx context.Context, s query.Select) (query.Row, error) {
	if !s.Ready() {
		return nil, query.ErrNotFinalized
	}
	m.queried = append(m.queried, s.SQL())
	if m.oneFn == nil {
		return nil, nil
	}
	return m.oneFn(s.SQL()), nil
}

func (m *mockStatementRunner) All(ctx context.Context, s query.Select) ([]query.Row, error) {
	if !s.Ready() {
		return nil, query.ErrNotFinalized
	}
	m.queried = append(m.queried, s.SQL())
	if m.allFn == nil {
		return []query.Row{}, nil
	}
	return m.allFn(s.SQL()), nil
}

func (m *mockStatementRunner) Exec(ctx context.Context, mu query.Mutation) (int64, error) {
	if !mu.Ready() {
		return 0, query.ErrNotFinalized
	}
	if m.failOn != "" && strings.Contains(mu.SQL(), m.failOn) {
		return 0, errors.New("statement failed")
	}
	m.executed = append(m.executed, mu.SQL())
	return 1, nil
}

// Ensure mockTransactor implements the interface
var _ secondary.Transactor = (*mockTransactor)(nil)

// mockTransactor stages statements and project rows per unit of work and
// publishes them to committed and projects only when fn succeeds.
type mockTransactor struct {
	committed  []string
	projects   *mockProjectRepository
	oneFn      func(sql string) query.Row
	failOn     string
	rollbacks  int
	inTxCalled bool
}

func newMockTransactor(projects *mockProjectRepository) *mockTransactor {
	return &mockTransactor{projects: projects}
}

type mockTx struct {
	runner   *mockStatementRunner
	projects *mockProjectRepository
}

func (t *mockTx) Statements() secondary.StatementRunner { return t.runner }

func (t *mockTx) Projects() secondary.ProjectRepository { return t.projects }

func (m *mockTransactor) InTx(ctx context.Context, fn func(ctx context.Context, tx secondary.Tx) error) error {
	m.inTxCalled = true

	staged := newMockProjectRepository()
	staged.createErr = m.projects.createErr
	for id, p := range m.projects.projects {
		staged.projects[id] = p
	}
	tx := &mockTx{
		runner:   &mockStatementRunner{failOn: m.failOn, oneFn: m.oneFn},
		projects: staged,
	}

	if err := fn(ctx, tx); err != nil {
		m.rollbacks++
		return err
	}
	m.committed = append(m.committed, tx.runner.executed...)
	m.projects.projects = staged.projects
	return nil
}
