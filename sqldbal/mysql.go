package sqldbal

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// openMySQL opens exactly one connection to a MySQL or MariaDB
// server. The pool is pinned to size 1 so the adapter behaves like a
// single blocking session, matching the Non-goal that rules out
// connection pooling.
func openMySQL(host, port, user, pwd, db string, p parsedOptions) (driverHandle, Status, string) {
	if host == "" || user == "" || db == "" {
		return nil, StatusInvalidParameter, "missing host, user, or database name"
	}
	if port != "" {
		if _, _, st := parsePort(port); st != StatusOK {
			return nil, st, "invalid port"
		}
	}

	dsn := buildMySQLDSN(host, port, user, pwd, db, "", p)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, StatusOpenFailed, err.Error()
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	ctx := context.Background()
	if p.haveConnectTimeout && p.connectTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.connectTimeoutSeconds)*time.Second)
		defer cancel()
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, StatusOpenFailed, err.Error()
	}

	return &mysqlAdapter{db: conn}, StatusOK, ""
}

type mysqlAdapter struct {
	db       *sql.DB
	rawConn  *sql.Conn
	inTx     bool
}

func (a *mysqlAdapter) rawConnection() (*sql.Conn, error) {
	if a.rawConn != nil {
		return a.rawConn, nil
	}
	conn, err := a.db.Conn(context.Background())
	if err != nil {
		return nil, err
	}
	a.rawConn = conn
	return conn, nil
}

func (a *mysqlAdapter) close() Status {
	if a.rawConn != nil {
		a.rawConn.Close()
		a.rawConn = nil
	}
	if err := a.db.Close(); err != nil {
		return StatusCloseFailed
	}
	return StatusOK
}

// begin toggles autocommit off directly on the underlying driver
// connection rather than issuing database/sql's own BeginTx (which
// would send "START TRANSACTION"), matching the literal
// autocommit-toggle semantics this family of backends is specified
// to use, distinct from the literal BEGIN/COMMIT/ROLLBACK path the
// other two backends take.
func (a *mysqlAdapter) begin() Status {
	if a.inTx {
		return StatusInvalidParameter
	}
	conn, err := a.rawConnection()
	if err != nil {
		return StatusExecFailed
	}
	if err := setAutocommit(conn, false); err != nil {
		return StatusExecFailed
	}
	a.inTx = true
	return StatusOK
}

func (a *mysqlAdapter) commit() Status {
	if !a.inTx {
		return StatusInvalidParameter
	}
	conn, err := a.rawConnection()
	if err != nil {
		return StatusExecFailed
	}
	if _, err := conn.ExecContext(context.Background(), "COMMIT"); err != nil {
		return StatusExecFailed
	}
	if err := setAutocommit(conn, true); err != nil {
		return StatusExecFailed
	}
	a.inTx = false
	return StatusOK
}

func (a *mysqlAdapter) rollback() Status {
	if !a.inTx {
		return StatusInvalidParameter
	}
	conn, err := a.rawConnection()
	if err != nil {
		return StatusExecFailed
	}
	if _, err := conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
		return StatusExecFailed
	}
	if err := setAutocommit(conn, true); err != nil {
		return StatusExecFailed
	}
	a.inTx = false
	return StatusOK
}

func setAutocommit(conn *sql.Conn, on bool) error {
	val := "0"
	if on {
		val = "1"
	}
	_, err := conn.ExecContext(context.Background(), "SET autocommit="+val)
	return err
}

func (a *mysqlAdapter) querier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
} {
	if a.rawConn != nil {
		return a.rawConn
	}
	return a.db
}

func (a *mysqlAdapter) exec(query string, cb RowCallback, userCtx any) Status {
	rows, err := a.querier().QueryContext(context.Background(), query)
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

func (a *mysqlAdapter) lastInsertID(seqName *string) (Status, uint64) {
	conn, err := a.rawConnection()
	if err != nil {
		return StatusExecFailed, 0
	}
	row := conn.QueryRowContext(context.Background(), "SELECT LAST_INSERT_ID()")
	var id int64
	if err := row.Scan(&id); err != nil {
		return StatusExecFailed, 0
	}
	if id < 0 {
		return StatusOverflow, 0
	}
	return StatusOK, uint64(id)
}

func (a *mysqlAdapter) prepare(query string) (Status, driverStmt) {
	conn, err := a.rawConnection()
	if err != nil {
		return StatusPrepareFailed, nil
	}
	stmt, err := conn.PrepareContext(context.Background(), query)
	if err != nil {
		return StatusPrepareFailed, nil
	}
	return StatusOK, &mysqlStmt{stmt: stmt, nParams: strings.Count(query, "?")}
}

type mysqlStmt struct {
	stmt    *sql.Stmt
	nParams int
	args    []any
	rows    *sql.Rows
	cols    []string
	cur     []any
}

func (s *mysqlStmt) paramCount() int  { return s.nParams }
func (s *mysqlStmt) columnCount() int { return len(s.cols) }

func (s *mysqlStmt) ensureArgs() {
	if s.args == nil {
		s.args = make([]any, s.nParams)
	}
}

func (s *mysqlStmt) bindBlob(i int, b []byte) Status {
	s.ensureArgs()
	cp := make([]byte, len(b))
	copy(cp, b)
	s.args[i] = cp
	return StatusOK
}

func (s *mysqlStmt) bindInt64(i int, v int64) Status {
	s.ensureArgs()
	s.args[i] = v
	return StatusOK
}

func (s *mysqlStmt) bindText(i int, v string) Status {
	s.ensureArgs()
	s.args[i] = v
	return StatusOK
}

func (s *mysqlStmt) bindNull(i int) Status {
	s.ensureArgs()
	s.args[i] = driver.Value(nil)
	return StatusOK
}

func (s *mysqlStmt) execute() Status {
	s.ensureArgs()
	rows, err := s.stmt.QueryContext(context.Background(), s.args...)
	if err != nil {
		return StatusExecFailed
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return StatusExecFailed
	}
	s.rows = rows
	s.cols = cols
	return StatusOK
}

func (s *mysqlStmt) fetch() FetchResult {
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

func (s *mysqlStmt) columnBlob(i int) (Status, []byte) {
	switch t := s.cur[i].(type) {
	case nil:
		return StatusOK, nil
	case []byte:
		return StatusOK, t
	default:
		return StatusOK, []byte(toNullableString(t).Value)
	}
}

func (s *mysqlStmt) columnInt64(i int) (Status, int64) {
	switch t := s.cur[i].(type) {
	case nil:
		return StatusOK, 0
	case int64:
		return StatusOK, t
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

func (s *mysqlStmt) columnText(i int) (Status, string) {
	return StatusOK, toNullableString(s.cur[i]).Value
}

// columnType reports ColumnNull for a SQL NULL and ColumnBlob for
// everything else. The driver does expose each column's declared
// type, but this adapter does not consult it: the richer
// classification is left to the embedded engine, which reads
// SQLite's own column affinity.
func (s *mysqlStmt) columnType(i int) ColumnType {
	if s.cur[i] == nil {
		return ColumnNull
	}
	return ColumnBlob
}

func (s *mysqlStmt) close() Status {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	if err := s.stmt.Close(); err != nil {
		return StatusCloseFailed
	}
	return StatusOK
}
