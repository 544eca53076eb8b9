package sqldbal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// oidEntry associates a PostgreSQL type OID with its type name, so a
// bytea column can be recognized (and its hex text decoded) without a
// second round trip per row.
type oidEntry struct {
	oid     uint32
	typname string
}

// openPostgres opens a single PostgreSQL connection (never a pool,
// per the no-pooling Non-goal) and populates the OID→typename cache
// used to recognize bytea result columns.
func openPostgres(host, port, user, pwd, db string, p parsedOptions) (driverHandle, Status, string) {
	if host == "" || user == "" || db == "" {
		return nil, StatusInvalidParameter, "missing host, user, or database name"
	}

	values := map[string]string{
		"host":     host,
		"port":     port,
		"user":     user,
		"password": pwd,
		"dbname":   db,
	}
	if p.haveConnectTimeout {
		values["connect_timeout"] = strconv.Itoa(p.connectTimeoutSeconds)
	}
	if p.tlsMode != "" {
		values["sslmode"] = p.tlsMode
	}
	if p.tlsCert != "" {
		values["sslcert"] = p.tlsCert
	}
	if p.tlsKey != "" {
		values["sslkey"] = p.tlsKey
	}
	if p.tlsCA != "" {
		values["sslrootcert"] = p.tlsCA
	}

	connString, st := buildPostgresConnString(values)
	if st != StatusOK {
		return nil, st, "connection string assembly overflowed"
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, StatusOpenFailed, err.Error()
	}

	a := &postgresAdapter{conn: conn}
	if err := a.loadOIDCache(ctx); err != nil {
		conn.Close(ctx)
		return nil, StatusOpenFailed, err.Error()
	}
	return a, StatusOK, ""
}

type postgresAdapter struct {
	conn        *pgx.Conn
	inTx        bool
	stmtCounter uint64
	oidCache    []oidEntry
}

func (a *postgresAdapter) loadOIDCache(ctx context.Context) error {
	rows, err := a.conn.PgConn().Exec(ctx, "SELECT oid, typname FROM pg_type ORDER BY oid ASC").ReadAll()
	if err != nil {
		return err
	}
	for _, res := range rows {
		for _, row := range res.Rows {
			oid, err := strconv.ParseUint(string(row[0]), 10, 32)
			if err != nil {
				continue
			}
			a.oidCache = append(a.oidCache, oidEntry{oid: uint32(oid), typname: string(row[1])})
		}
	}
	return nil
}

// typeNameForOID does a linear scan over the OID cache; the cache is
// populated once per connection and never grows large enough to
// justify a map.
func (a *postgresAdapter) typeNameForOID(oid uint32) string {
	for _, e := range a.oidCache {
		if e.oid == oid {
			return e.typname
		}
	}
	return ""
}

func (a *postgresAdapter) close() Status {
	if err := a.conn.Close(context.Background()); err != nil {
		return StatusCloseFailed
	}
	return StatusOK
}

func (a *postgresAdapter) begin() Status {
	if a.inTx {
		return StatusInvalidParameter
	}
	if _, err := a.conn.PgConn().Exec(context.Background(), "BEGIN").ReadAll(); err != nil {
		return StatusExecFailed
	}
	a.inTx = true
	return StatusOK
}

func (a *postgresAdapter) commit() Status {
	if !a.inTx {
		return StatusInvalidParameter
	}
	if _, err := a.conn.PgConn().Exec(context.Background(), "COMMIT").ReadAll(); err != nil {
		return StatusExecFailed
	}
	a.inTx = false
	return StatusOK
}

func (a *postgresAdapter) rollback() Status {
	if !a.inTx {
		return StatusInvalidParameter
	}
	if _, err := a.conn.PgConn().Exec(context.Background(), "ROLLBACK").ReadAll(); err != nil {
		return StatusExecFailed
	}
	a.inTx = false
	return StatusOK
}

func (a *postgresAdapter) exec(sql string, cb RowCallback, userCtx any) Status {
	results, err := a.conn.PgConn().Exec(context.Background(), sql).ReadAll()
	if err != nil {
		return StatusExecFailed
	}
	if cb == nil {
		return StatusOK
	}
	for _, res := range results {
		fields := res.FieldDescriptions
		for _, row := range res.Rows {
			cols := make([]NullableString, len(row))
			for i, raw := range row {
				cols[i] = a.decodeField(fields[i].DataTypeOID, raw)
			}
			if cb(userCtx, cols) != 0 {
				return StatusOK
			}
		}
	}
	return StatusOK
}

func (a *postgresAdapter) decodeField(oid uint32, raw []byte) NullableString {
	if raw == nil {
		return NullableString{Valid: false}
	}
	if a.typeNameForOID(oid) == "bytea" {
		b, st := decodeByteaHex(string(raw))
		if st != StatusOK {
			return NullableString{Valid: true, Value: string(raw)}
		}
		return NullableString{Valid: true, Value: string(b)}
	}
	return NullableString{Valid: true, Value: string(raw)}
}

func (a *postgresAdapter) lastInsertID(seqName *string) (Status, uint64) {
	ctx := context.Background()
	var query string
	if seqName != nil && *seqName != "" {
		query = fmt.Sprintf("SELECT currval('%s')", strings.ReplaceAll(*seqName, "'", "''"))
	} else {
		query = "SELECT lastval()"
	}
	results, err := a.conn.PgConn().Exec(ctx, query).ReadAll()
	if err != nil || len(results) == 0 || len(results[0].Rows) == 0 {
		return StatusExecFailed, 0
	}
	id, err := strconv.ParseInt(string(results[0].Rows[0][0]), 10, 64)
	if err != nil {
		return StatusExecFailed, 0
	}
	if id < 0 {
		return StatusOverflow, 0
	}
	return StatusOK, uint64(id)
}

// prepare names the statement pqs<N>, a per-connection monotonically
// increasing counter; no atomics are needed since a Connection is
// documented single-threaded.
func (a *postgresAdapter) prepare(sql string) (Status, driverStmt) {
	a.stmtCounter++
	name := fmt.Sprintf("pqs%d", a.stmtCounter)
	desc, err := a.conn.PgConn().Prepare(context.Background(), name, sql, nil)
	if err != nil {
		return StatusPrepareFailed, nil
	}
	return StatusOK, &postgresStmt{
		adapter: a,
		name:    name,
		desc:    desc,
		args:    make([][]byte, len(desc.ParamOIDs)),
	}
}

type postgresStmt struct {
	adapter *postgresAdapter
	name    string
	desc    *pgconn.StatementDescription
	args    [][]byte
	result  *pgconn.ResultReader
	cur     [][]byte
}

func (s *postgresStmt) paramCount() int  { return len(s.desc.ParamOIDs) }
func (s *postgresStmt) columnCount() int { return len(s.desc.Fields) }

func (s *postgresStmt) bindBlob(i int, b []byte) Status {
	s.args[i] = []byte(encodeByteaHex(b))
	return StatusOK
}

func (s *postgresStmt) bindInt64(i int, v int64) Status {
	s.args[i] = []byte(strconv.FormatInt(v, 10))
	return StatusOK
}

func (s *postgresStmt) bindText(i int, v string) Status {
	s.args[i] = []byte(v)
	return StatusOK
}

func (s *postgresStmt) bindNull(i int) Status {
	s.args[i] = nil
	return StatusOK
}

func (s *postgresStmt) execute() Status {
	formats := make([]int16, len(s.args))
	resultFormats := make([]int16, len(s.desc.Fields))
	rr := s.adapter.conn.PgConn().ExecPrepared(context.Background(), s.name, s.args, formats, resultFormats)
	s.result = rr
	if len(s.desc.Fields) == 0 {
		// No result rows to fetch: finish the command now so the
		// connection is free for the next call.
		if _, err := rr.Close(); err != nil {
			return StatusExecFailed
		}
	}
	return StatusOK
}

func (s *postgresStmt) fetch() FetchResult {
	if s.result == nil {
		return FetchError
	}
	if !s.result.NextRow() {
		if _, err := s.result.Close(); err != nil {
			return FetchError
		}
		return FetchDone
	}
	row := s.result.Values()
	cp := make([][]byte, len(row))
	for i, v := range row {
		if v != nil {
			b := make([]byte, len(v))
			copy(b, v)
			cp[i] = b
		}
	}
	s.cur = cp
	return FetchRow
}

func (s *postgresStmt) columnBlob(i int) (Status, []byte) {
	raw := s.cur[i]
	if raw == nil {
		return StatusOK, nil
	}
	if s.adapter.typeNameForOID(s.desc.Fields[i].DataTypeOID) == "bytea" {
		b, st := decodeByteaHex(string(raw))
		return st, b
	}
	return StatusOK, raw
}

func (s *postgresStmt) columnInt64(i int) (Status, int64) {
	raw := s.cur[i]
	if raw == nil {
		return StatusOK, 0
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return StatusCoerceFailed, 0
	}
	return StatusOK, v
}

func (s *postgresStmt) columnText(i int) (Status, string) {
	raw := s.cur[i]
	if raw == nil {
		return StatusOK, ""
	}
	if s.adapter.typeNameForOID(s.desc.Fields[i].DataTypeOID) == "bytea" {
		b, st := decodeByteaHex(string(raw))
		return st, string(b)
	}
	return StatusOK, string(raw)
}

// columnType reports ColumnNull for a SQL NULL and ColumnBlob for
// everything else. The wire protocol this adapter speaks carries the
// column's OID, but SQLDBAL leaves the richer native classification
// to the embedded engine and only collapses here.
func (s *postgresStmt) columnType(i int) ColumnType {
	if s.cur[i] == nil {
		return ColumnNull
	}
	return ColumnBlob
}

func (s *postgresStmt) close() Status {
	if err := s.adapter.conn.PgConn().Deallocate(context.Background(), s.name); err != nil {
		return StatusCloseFailed
	}
	return StatusOK
}
