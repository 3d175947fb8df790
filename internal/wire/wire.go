// Package wire assembles the CTS application from its configuration.
package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	cliadapter "github.com/example/cts/internal/adapters/cli"
	"github.com/example/cts/internal/adapters/httpapi"
	"github.com/example/cts/internal/adapters/sqldb"
	"github.com/example/cts/internal/app"
	"github.com/example/cts/internal/config"
	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/db"
	"github.com/example/cts/internal/ports/primary"
)

// App holds the open pool and the services built on it.
type App struct {
	DB *sqlx.DB

	Auth      primary.AuthService
	Templates primary.FormTemplateService
	Projects  primary.ProjectService
	Records   primary.RecordService
}

// New opens the database, applies migrations and builds the services.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(ctx, db.OptionsFrom(cfg.Database))
	if err != nil {
		return nil, err
	}
	return FromDB(database, cfg), nil
}

// FromDB builds the services over an already migrated pool.
func FromDB(database *sqlx.DB, cfg *config.Config) *App {
	// Create repository adapters (secondary ports)
	templateRepo := sqldb.NewFormTemplateRepository(database)
	projectRepo := sqldb.NewProjectRepository(database)
	userRepo := sqldb.NewUserRepository(database)
	runner := sqldb.NewRunner(database)
	transactor := sqldb.NewTransactor(database)

	// Create services (primary ports implementation)
	return &App{
		DB:        database,
		Auth:      app.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Templates: app.NewFormTemplateService(templateRepo, projectRepo),
		Projects:  app.NewProjectService(templateRepo, projectRepo, transactor),
		Records:   app.NewRecordService(runner, transactor),
	}
}

// Close releases the pool.
func (a *App) Close() error {
	return a.DB.Close()
}

// Router returns the HTTP API handler.
func (a *App) Router() http.Handler {
	return httpapi.NewRouter(httpapi.Services{
		Auth:      a.Auth,
		Templates: a.Templates,
		Projects:  a.Projects,
		Records:   a.Records,
	})
}

// SeedAdmin creates the configured admin account. An existing account is
// left alone.
func (a *App) SeedAdmin(ctx context.Context, admin config.AdminConfig) (bool, error) {
	if admin.Username == "" || admin.Password == "" {
		return false, fmt.Errorf("admin username and password are required")
	}
	_, err := a.Auth.CreateUser(ctx, primary.CreateUserRequest{
		Username: admin.Username,
		Password: admin.Password,
		Nickname: "Administrator",
	})
	if errors.Is(err, errs.ErrConflict) {
		slog.InfoContext(ctx, "admin account exists", "username", admin.Username)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	slog.InfoContext(ctx, "admin account created", "username", admin.Username)
	return true, nil
}

// TemplateAdapter returns a TemplateAdapter writing to out.
func (a *App) TemplateAdapter(out io.Writer) *cliadapter.TemplateAdapter {
	return cliadapter.NewTemplateAdapter(a.Templates, out)
}

// ProjectAdapter returns a ProjectAdapter writing to out.
func (a *App) ProjectAdapter(out io.Writer) *cliadapter.ProjectAdapter {
	return cliadapter.NewProjectAdapter(a.Projects, out)
}

// RecordAdapter returns a RecordAdapter writing to out.
func (a *App) RecordAdapter(out io.Writer) *cliadapter.RecordAdapter {
	return cliadapter.NewRecordAdapter(a.Records, out)
}
