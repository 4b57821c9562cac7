package database

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// mockDatabase adapts a sqlmock *sql.DB to the DB interface used by the
// repositories.
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) sqlx() *sqlx.DB {
	return sqlx.NewDb(m.db, "sqlmock")
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.sqlx().Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.sqlx().Select(dest, query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) Ping() error { return m.db.Ping() }

func (m *mockDatabase) Close() error { return m.db.Close() }
