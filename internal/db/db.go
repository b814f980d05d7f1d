package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

// Sentinel errors surfaced by the repositories.
var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("username or email already taken")
	ErrTagExists  = errors.New("tag already exists")
)

// DB wraps the database connection. The app runs on sqlite locally and on
// Postgres in production; queries are written with ? placeholders and
// rebound for Postgres.
type DB struct {
	*sql.DB
	driver string
}

// Open creates a database connection for the given driver ("sqlite3" or
// "postgres") and initializes the schema.
func Open(driver, dsn string) (*DB, error) {
	if driver == "sqlite3" && !strings.Contains(dsn, "?") {
		// Cascading deletes depend on foreign keys being enforced.
		dsn += "?_foreign_keys=on"
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	db := &DB{DB: conn, driver: driver}

	schema := schemaSQLite
	if driver == "postgres" {
		schema = schemaPostgres
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// rebind converts ? placeholders to $N for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.rebind(query), args...)
}

func (db *DB) query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.rebind(query), args...)
}

func (db *DB) queryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.rebind(query), args...)
}

// insertID runs an INSERT and returns the new row id. Postgres has no
// LastInsertId, so the query gets a RETURNING clause there.
func (db *DB) insertID(query string, args ...interface{}) (int64, error) {
	if db.driver == "postgres" {
		var id int64
		err := db.queryRow(query+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	result, err := db.exec(query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// isUniqueViolation reports whether err is a unique-constraint failure from
// either driver. Callers treat these as "already exists", not as fatal
// errors.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
