package db

import "strings"

// SchemaSQL is the static schema: form templates, projects and login
// accounts. Dynamic data_/task_ tables are created at runtime and are not
// part of it.
//
// The SQL is portable between SQLite and Postgres. Tests build their
// databases from GetSchemaSQL() rather than hardcoding CREATE TABLE text.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS form_template (
	id TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	version TEXT NOT NULL DEFAULT '',
	description TEXT,
	remark TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP,
	deleted_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS project (
	id TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL,
	code TEXT NOT NULL UNIQUE,
	form_template_id TEXT NOT NULL REFERENCES form_template(id),
	data_table_name TEXT NOT NULL,
	total INTEGER NOT NULL DEFAULT 0,
	type INTEGER NOT NULL DEFAULT 0,
	status INTEGER NOT NULL DEFAULT 0,
	description TEXT,
	remark TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP,
	deleted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_project_form_template ON project(form_template_id);
CREATE INDEX IF NOT EXISTS idx_project_status ON project(status);

CREATE TABLE IF NOT EXISTS sys_user (
	id TEXT NOT NULL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	nickname TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP,
	deleted_at TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}

// Statements splits SchemaSQL into single statements, since not every
// driver accepts several statements in one Exec.
func Statements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
