package sqldbal

// fakeHandle is a minimal in-memory driverHandle used to exercise
// Connection's dispatch and status-monotonicity behavior without a
// real backend, the same role a fault-injection shim plays against
// the capability interface described for this package.
type fakeHandle struct {
	closeStatus  Status
	execStatus   Status
	beginStatus  Status
	lastID       uint64
	execRows     [][]NullableString
	prepareErr   Status
	preparedStmt *fakeStmt
	inTx         bool
}

func (f *fakeHandle) close() Status { return f.closeStatus }

func (f *fakeHandle) begin() Status {
	if f.inTx {
		return StatusInvalidParameter
	}
	f.inTx = true
	return f.beginStatus
}

func (f *fakeHandle) commit() Status {
	if !f.inTx {
		return StatusInvalidParameter
	}
	f.inTx = false
	return StatusOK
}

func (f *fakeHandle) rollback() Status {
	if !f.inTx {
		return StatusInvalidParameter
	}
	f.inTx = false
	return StatusOK
}

func (f *fakeHandle) exec(sql string, cb RowCallback, userCtx any) Status {
	if f.execStatus != StatusOK {
		return f.execStatus
	}
	if cb != nil {
		for _, row := range f.execRows {
			if cb(userCtx, row) != 0 {
				break
			}
		}
	}
	return StatusOK
}

func (f *fakeHandle) lastInsertID(seqName *string) (Status, uint64) {
	return StatusOK, f.lastID
}

func (f *fakeHandle) prepare(sql string) (Status, driverStmt) {
	if f.prepareErr != StatusOK {
		return f.prepareErr, nil
	}
	return StatusOK, f.preparedStmt
}

// fakeStmt is a minimal in-memory driverStmt backing fakeHandle.prepare.
type fakeStmt struct {
	nParams int
	rows    [][]NullableString
	cursor  int
	binds   []any
}

func (s *fakeStmt) paramCount() int  { return s.nParams }
func (s *fakeStmt) columnCount() int {
	if len(s.rows) == 0 {
		return 0
	}
	return len(s.rows[0])
}
func (s *fakeStmt) bindBlob(i int, b []byte) Status {
	s.binds[i] = b
	return StatusOK
}
func (s *fakeStmt) bindInt64(i int, v int64) Status {
	s.binds[i] = v
	return StatusOK
}
func (s *fakeStmt) bindText(i int, v string) Status {
	s.binds[i] = v
	return StatusOK
}
func (s *fakeStmt) bindNull(i int) Status {
	s.binds[i] = nil
	return StatusOK
}
func (s *fakeStmt) execute() Status {
	s.cursor = 0
	return StatusOK
}
func (s *fakeStmt) fetch() FetchResult {
	if s.cursor >= len(s.rows) {
		return FetchDone
	}
	s.cursor++
	return FetchRow
}
func (s *fakeStmt) columnBlob(i int) (Status, []byte) {
	return StatusOK, []byte(s.rows[s.cursor-1][i].Value)
}
func (s *fakeStmt) columnInt64(i int) (Status, int64) {
	return StatusOK, int64(len(s.rows[s.cursor-1][i].Value))
}
func (s *fakeStmt) columnText(i int) (Status, string) {
	return StatusOK, s.rows[s.cursor-1][i].Value
}
func (s *fakeStmt) columnType(i int) ColumnType {
	if !s.rows[s.cursor-1][i].Valid {
		return ColumnNull
	}
	return ColumnText
}
func (s *fakeStmt) close() Status { return StatusOK }
