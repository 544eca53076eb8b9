package sqldbal

// NullableString carries one column value from a row callback or a
// fetched result row. Valid is false for SQL NULL, in which case
// Value is the empty string. This replaces the two-parallel-array
// (values + lengths) convention of the original C row callback with a
// single slice: callers get column count via len(cols) and per-column
// nullability/length from each element.
type NullableString struct {
	Valid bool
	Value string
}

// RowCallback receives one row per invocation during Connection.Exec.
// Returning a non-zero value aborts iteration; the final Exec status
// is still StatusOK unless the backend itself failed.
type RowCallback func(userCtx any, cols []NullableString) int

// driverHandle is the capability set every backend adapter must
// implement: open is performed by the package-level constructor for
// each adapter, not through this interface, since it needs
// backend-specific arguments; everything reachable after a
// successful open is captured here.
type driverHandle interface {
	close() Status
	begin() Status
	commit() Status
	rollback() Status
	exec(sql string, cb RowCallback, userCtx any) Status
	lastInsertID(seqName *string) (Status, uint64)
	prepare(sql string) (Status, driverStmt)
}

// driverStmt is the capability set of a prepared statement, bound to
// exactly one driverHandle. Parameter and column indexes are 0-origin
// at this interface. The embedded and MySQL-family adapters pass their
// arguments to database/sql as a 0-origin slice, and the driver beneath
// it performs any 1-origin translation the backend needs.
type driverStmt interface {
	paramCount() int
	columnCount() int
	bindBlob(i int, b []byte) Status
	bindInt64(i int, v int64) Status
	bindText(i int, v string) Status
	bindNull(i int) Status
	execute() Status
	fetch() FetchResult
	columnBlob(i int) (Status, []byte)
	columnInt64(i int) (Status, int64)
	columnText(i int) (Status, string)
	columnType(i int) ColumnType
	close() Status
}
