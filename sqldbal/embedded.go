package sqldbal

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// busyRetryInterval and busyMaxRetries bound the embedded engine's
// retry loop on SQLITE_BUSY: a writer already holds the file lock, so
// the caller waits briefly and tries again rather than failing
// immediately.
const (
	busyRetryInterval = 10 * time.Millisecond
	busyMaxRetries    = 10
)

func init() {
	// Registered once per process; harmless if the driver package is
	// imported elsewhere too, since database/sql ignores duplicate
	// registration of the same name only if done through this helper.
	// mattn/go-sqlite3 self-registers under "sqlite3" in its own
	// init(), so nothing further is required here. This init exists
	// to document that dependency rather than to perform work.
}

// openEmbedded opens exactly one connection against a single database
// file, applying the busy-retry discipline to every statement.
func openEmbedded(path string, flags Flags, p parsedOptions) (driverHandle, Status, string) {
	if path == "" {
		return nil, StatusInvalidParameter, "missing database file path"
	}

	mode := "rwc"
	switch {
	case flags&FlagEmbeddedOpenReadOnly != 0:
		mode = "ro"
	case flags&FlagEmbeddedOpenReadWrite != 0:
		mode = "rw"
	case flags&FlagEmbeddedOpenCreate != 0:
		mode = "rwc"
	}

	dsn := fmt.Sprintf("file:%s?mode=%s&_busy_timeout=0", path, mode)
	if p.vfs != "" {
		dsn += "&vfs=" + p.vfs
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, StatusOpenFailed, err.Error()
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, StatusOpenFailed, err.Error()
	}

	return &embeddedAdapter{db: db}, StatusOK, ""
}

type embeddedAdapter struct {
	db *sql.DB
	tx *sql.Tx
}

// withBusyRetry runs op, retrying while the file is locked by another
// process.
func withBusyRetry(op func() error) error {
	var err error
	for attempt := 0; attempt <= busyMaxRetries; attempt++ {
		err = op()
		if err == nil || !isBusyErr(err) {
			return err
		}
		time.Sleep(busyRetryInterval)
	}
	return err
}

func isBusyErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return strings.Contains(err.Error(), "database is locked")
}

func (a *embeddedAdapter) close() Status {
	if err := a.db.Close(); err != nil {
		return StatusCloseFailed
	}
	return StatusOK
}

func (a *embeddedAdapter) begin() Status {
	if a.tx != nil {
		return StatusInvalidParameter
	}
	err := withBusyRetry(func() error {
		tx, err := a.db.Begin()
		if err != nil {
			return err
		}
		a.tx = tx
		return nil
	})
	if err != nil {
		return StatusExecFailed
	}
	return StatusOK
}

func (a *embeddedAdapter) commit() Status {
	if a.tx == nil {
		return StatusInvalidParameter
	}
	err := a.tx.Commit()
	a.tx = nil
	if err != nil {
		return StatusExecFailed
	}
	return StatusOK
}

func (a *embeddedAdapter) rollback() Status {
	if a.tx == nil {
		return StatusInvalidParameter
	}
	err := a.tx.Rollback()
	a.tx = nil
	if err != nil {
		return StatusExecFailed
	}
	return StatusOK
}

func (a *embeddedAdapter) querier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
} {
	if a.tx != nil {
		return a.tx
	}
	return a.db
}

func (a *embeddedAdapter) exec(query string, cb RowCallback, userCtx any) Status {
	var rows *sql.Rows
	err := withBusyRetry(func() error {
		var qerr error
		rows, qerr = a.querier().Query(query)
		return qerr
	})
	if err != nil {
		return StatusExecFailed
	}
	defer rows.Close()

	if cb == nil {
		return StatusOK
	}

	cols, err := rows.Columns()
	if err != nil {
		return StatusExecFailed
	}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return StatusFetchFailed
		}
		if cb(userCtx, toNullableRow(vals)) != 0 {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return StatusFetchFailed
	}
	return StatusOK
}

func (a *embeddedAdapter) lastInsertID(seqName *string) (Status, uint64) {
	var id int64
	err := withBusyRetry(func() error {
		var qerr error
		r := a.db.QueryRow("SELECT last_insert_rowid()")
		qerr = r.Scan(&id)
		return qerr
	})
	if err != nil {
		return StatusExecFailed, 0
	}
	if id < 0 {
		return StatusOverflow, 0
	}
	return StatusOK, uint64(id)
}

func (a *embeddedAdapter) prepare(query string) (Status, driverStmt) {
	var stmt *sql.Stmt
	err := withBusyRetry(func() error {
		var perr error
		if a.tx != nil {
			stmt, perr = a.tx.Prepare(query)
		} else {
			stmt, perr = a.db.Prepare(query)
		}
		return perr
	})
	if err != nil {
		return StatusPrepareFailed, nil
	}
	nParams := strings.Count(query, "?")
	return StatusOK, &embeddedStmt{stmt: stmt, nParams: nParams}
}

type embeddedStmt struct {
	stmt    *sql.Stmt
	nParams int
	args    []any
	rows    *sql.Rows
	cols    []string
	decl    []string
	cur     []any
}

func toNullableRow(vals []any) []NullableString {
	out := make([]NullableString, len(vals))
	for i, v := range vals {
		out[i] = toNullableString(v)
	}
	return out
}

func toNullableString(v any) NullableString {
	switch t := v.(type) {
	case nil:
		return NullableString{Valid: false}
	case []byte:
		return NullableString{Valid: true, Value: string(t)}
	case string:
		return NullableString{Valid: true, Value: t}
	case int64:
		return NullableString{Valid: true, Value: fmt.Sprintf("%d", t)}
	case float64:
		return NullableString{Valid: true, Value: fmt.Sprintf("%v", t)}
	case time.Time:
		return NullableString{Valid: true, Value: t.Format(time.RFC3339Nano)}
	case bool:
		if t {
			return NullableString{Valid: true, Value: "1"}
		}
		return NullableString{Valid: true, Value: "0"}
	default:
		return NullableString{Valid: true, Value: fmt.Sprintf("%v", t)}
	}
}

func (s *embeddedStmt) paramCount() int { return s.nParams }
func (s *embeddedStmt) columnCount() int {
	return len(s.cols)
}

func (s *embeddedStmt) ensureArgs() {
	if s.args == nil {
		s.args = make([]any, s.nParams)
	}
}

func (s *embeddedStmt) bindBlob(i int, b []byte) Status {
	s.ensureArgs()
	cp := make([]byte, len(b))
	copy(cp, b)
	s.args[i] = cp
	return StatusOK
}

func (s *embeddedStmt) bindInt64(i int, v int64) Status {
	s.ensureArgs()
	s.args[i] = v
	return StatusOK
}

func (s *embeddedStmt) bindText(i int, v string) Status {
	s.ensureArgs()
	s.args[i] = v
	return StatusOK
}

func (s *embeddedStmt) bindNull(i int) Status {
	s.ensureArgs()
	s.args[i] = nil
	return StatusOK
}

func (s *embeddedStmt) execute() Status {
	s.ensureArgs()
	var rows *sql.Rows
	err := withBusyRetry(func() error {
		var qerr error
		rows, qerr = s.stmt.Query(s.args...)
		return qerr
	})
	if err != nil {
		return StatusExecFailed
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return StatusExecFailed
	}
	types, _ := rows.ColumnTypes()
	decl := make([]string, len(cols))
	for i, t := range types {
		decl[i] = strings.ToUpper(t.DatabaseTypeName())
	}
	s.rows = rows
	s.cols = cols
	s.decl = decl
	return StatusOK
}

func (s *embeddedStmt) fetch() FetchResult {
	if s.rows == nil {
		return FetchError
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return FetchError
		}
		return FetchDone
	}
	vals := make([]any, len(s.cols))
	ptrs := make([]any, len(s.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return FetchError
	}
	s.cur = vals
	return FetchRow
}

func (s *embeddedStmt) columnBlob(i int) (Status, []byte) {
	switch t := s.cur[i].(type) {
	case nil:
		return StatusOK, nil
	case []byte:
		return StatusOK, t
	case string:
		return StatusOK, []byte(t)
	default:
		ns := toNullableString(t)
		return StatusOK, []byte(ns.Value)
	}
}

func (s *embeddedStmt) columnInt64(i int) (Status, int64) {
	switch t := s.cur[i].(type) {
	case nil:
		return StatusOK, 0
	case int64:
		return StatusOK, t
	case float64:
		return StatusOK, int64(t)
	case []byte:
		v, err := strconv.ParseInt(string(t), 10, 64)
		if err != nil {
			return StatusCoerceFailed, 0
		}
		return StatusOK, v
	case string:
		v, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return StatusCoerceFailed, 0
		}
		return StatusOK, v
	default:
		return StatusCoerceFailed, 0
	}
}

func (s *embeddedStmt) columnText(i int) (Status, string) {
	return StatusOK, toNullableString(s.cur[i]).Value
}

func (s *embeddedStmt) columnType(i int) ColumnType {
	if s.cur[i] == nil {
		return ColumnNull
	}
	decl := ""
	if i < len(s.decl) {
		decl = s.decl[i]
	}
	switch {
	case strings.Contains(decl, "INT"):
		return ColumnInt
	case strings.Contains(decl, "BLOB"):
		return ColumnBlob
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "TEXT"), strings.Contains(decl, "CLOB"):
		return ColumnText
	default:
		switch s.cur[i].(type) {
		case int64:
			return ColumnInt
		case []byte:
			return ColumnBlob
		case string:
			return ColumnText
		default:
			return ColumnOther
		}
	}
}

func (s *embeddedStmt) close() Status {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	if err := s.stmt.Close(); err != nil {
		return StatusCloseFailed
	}
	return StatusOK
}
