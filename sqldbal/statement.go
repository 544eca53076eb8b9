package sqldbal

// Statement is a compiled query bound to the Connection that prepared
// it. A Statement must be closed before its Connection is closed.
type Statement struct {
	conn    *Connection
	ctx     driverStmt
	nParams int
	nCols   int
}

// sentinelStatement is returned alongside a non-OK status from
// StmtPrepare so callers that chain Bind/Execute calls without
// checking the status first do not crash. Its Bind, Execute and Column
// methods report StatusInvalidParameter, Fetch reports FetchError,
// ColumnType reports ColumnError, and Close is a no-op returning
// StatusOK.
var sentinelStatement = &Statement{}

func (s *Statement) fail(st Status, msg string) Status {
	if s.conn != nil {
		return s.conn.setStatus(st, msg)
	}
	return st
}

func (s *Statement) checkParamIndex(i int) Status {
	if s.ctx == nil || i < 0 || i >= s.nParams {
		return s.fail(StatusInvalidParameter, "parameter index out of range")
	}
	return StatusOK
}

func (s *Statement) checkColumnIndex(i int) Status {
	if s.ctx == nil || i < 0 || i >= s.nCols {
		return s.fail(StatusInvalidParameter, "column index out of range")
	}
	return StatusOK
}

// BindBlob binds a raw byte value to the i'th (0-origin) parameter.
func (s *Statement) BindBlob(i int, b []byte) Status {
	if st := s.checkParamIndex(i); st != StatusOK {
		return st
	}
	return s.fail(s.ctx.bindBlob(i, b), "")
}

// BindInt64 binds a signed 64-bit value to the i'th parameter.
func (s *Statement) BindInt64(i int, v int64) Status {
	if st := s.checkParamIndex(i); st != StatusOK {
		return st
	}
	return s.fail(s.ctx.bindInt64(i, v), "")
}

// BindText binds a UTF-8 text value to the i'th parameter.
func (s *Statement) BindText(i int, v string) Status {
	if st := s.checkParamIndex(i); st != StatusOK {
		return st
	}
	return s.fail(s.ctx.bindText(i, v), "")
}

// BindNull binds SQL NULL to the i'th parameter.
func (s *Statement) BindNull(i int) Status {
	if st := s.checkParamIndex(i); st != StatusOK {
		return st
	}
	return s.fail(s.ctx.bindNull(i), "")
}

// Execute runs the statement with its currently bound parameters.
// Call Fetch afterward to iterate any result rows.
//
// Result column count is fixed at prepare time for PostgreSQL, but the
// embedded and MySQL-family adapters (both built on database/sql) can't
// learn it until the query actually runs, so Execute refreshes nCols
// from the driver on every successful call.
func (s *Statement) Execute() Status {
	if s.ctx == nil {
		return s.fail(StatusInvalidParameter, "statement not prepared")
	}
	st := s.ctx.execute()
	if st == StatusOK {
		s.nCols = s.ctx.columnCount()
	}
	return s.fail(st, "")
}

// Fetch advances to the next result row. FetchDone means iteration
// completed successfully with no error.
func (s *Statement) Fetch() FetchResult {
	if s.ctx == nil {
		s.fail(StatusInvalidParameter, "statement not prepared")
		return FetchError
	}
	r := s.ctx.fetch()
	if r == FetchError {
		s.fail(StatusFetchFailed, "")
	}
	return r
}

// ColumnBlob reads the i'th (0-origin) column of the current row as
// raw bytes.
func (s *Statement) ColumnBlob(i int) (Status, []byte) {
	if st := s.checkColumnIndex(i); st != StatusOK {
		return st, nil
	}
	st, v := s.ctx.columnBlob(i)
	return s.fail(st, ""), v
}

// ColumnInt64 reads the i'th column of the current row as a signed
// 64-bit integer.
func (s *Statement) ColumnInt64(i int) (Status, int64) {
	if st := s.checkColumnIndex(i); st != StatusOK {
		return st, 0
	}
	st, v := s.ctx.columnInt64(i)
	return s.fail(st, ""), v
}

// ColumnText reads the i'th column of the current row as text.
func (s *Statement) ColumnText(i int) (Status, string) {
	if st := s.checkColumnIndex(i); st != StatusOK {
		return st, ""
	}
	st, v := s.ctx.columnText(i)
	return s.fail(st, ""), v
}

// ColumnType reports the logical type of the i'th column of the
// current row.
func (s *Statement) ColumnType(i int) ColumnType {
	if s.ctx == nil || i < 0 || i >= s.nCols {
		s.fail(StatusInvalidParameter, "column index out of range")
		return ColumnError
	}
	return s.ctx.columnType(i)
}

// Close releases the prepared statement's backend resources.
func (s *Statement) Close() Status {
	if s.ctx == nil {
		return StatusOK
	}
	st := s.ctx.close()
	s.ctx = nil
	return s.fail(st, "")
}
