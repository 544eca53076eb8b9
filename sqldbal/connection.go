package sqldbal

// Connection is an opaque handle onto exactly one live backend
// session. The zero value is not usable; obtain one from Open.
//
// Connection is not safe for concurrent use. Every method call must
// complete before the next one begins, and Statement values obtained
// from a Connection must not outlive it. This mirrors the
// single-threaded, fully synchronous contract the three wrapped
// client libraries themselves assume when used without external
// locking.
type Connection struct {
	tag       DriverTag
	flags     Flags
	handle    driverHandle
	status    Status
	errString string
}

// sentinelConnection is returned by Open when flags contains
// FlagInvalidMemory, the stand-in for a failed allocation. An invalid
// driver tag or a failed adapter open yields an ordinary Connection
// carrying the failure status instead. Every method on the sentinel is
// safe to call and returns StatusOutOfMemory / StatusInvalidParameter
// as appropriate, so callers that chain calls without checking Open's
// return value do not crash.
var sentinelConnection = &Connection{
	status:    StatusOutOfMemory,
	flags:     FlagInvalidMemory,
	errString: defaultMessage(StatusOutOfMemory),
}

// Open establishes exactly one backend session for the given driver
// tag and returns a handle to it. On failure the returned Connection
// still reports its status via StatusGet/ErrStr rather than returning
// nil, so callers can Close() it unconditionally.
func Open(tag DriverTag, location, port, user, pwd, db string, flags Flags, opts []Option) *Connection {
	if flags&FlagInvalidMemory != 0 {
		return sentinelConnection
	}

	c := &Connection{tag: tag, flags: flags}
	parsed := parseOptions(tag, opts)

	// unrecognizedKeyMsg holds this one Open call's own pending finding
	// until the open attempt below completes; a later step of the same
	// call is not allowed to erase it with StatusOK, but that is this
	// function's own bookkeeping, not a property of setStatus, so it
	// does not bleed into any later, independent call on the Connection.
	var unrecognizedKeyMsg string
	if len(parsed.unknown) > 0 {
		unrecognizedKeyMsg = "unrecognized option key: " + parsed.unknown[0]
	}

	var st Status
	var msg string
	switch tag {
	case DriverEmbedded:
		var h driverHandle
		h, st, msg = openEmbedded(location, flags, parsed)
		c.handle = h
	case DriverMySQL, DriverMariaDB:
		var h driverHandle
		h, st, msg = openMySQL(location, port, user, pwd, db, parsed)
		c.handle = h
	case DriverPostgreSQL:
		var h driverHandle
		h, st, msg = openPostgres(location, port, user, pwd, db, parsed)
		c.handle = h
	default:
		st, msg = StatusDriverNotSupported, "unrecognized driver tag"
	}

	if st == StatusOK && unrecognizedKeyMsg != "" {
		st, msg = StatusInvalidParameter, unrecognizedKeyMsg
	}
	c.setStatus(st, msg)

	return c
}

// StatusGet returns the status of the most recently completed
// operation on this Connection.
func (c *Connection) StatusGet() Status {
	return c.status
}

// StatusClear resets the recorded status to StatusOK and returns the
// status that was cleared.
func (c *Connection) StatusClear() Status {
	prev := c.status
	c.status = StatusOK
	c.errString = ""
	return prev
}

// DriverType reports the driver tag this Connection was opened with.
func (c *Connection) DriverType() DriverTag {
	return c.tag
}

// ErrStr returns the current status along with a human-readable
// message, the backend's own error text when one is available.
func (c *Connection) ErrStr() (Status, string) {
	return c.status, c.errString
}

// Close releases the underlying backend session. Close is safe to
// call on a Connection returned by a failed Open and on the sentinel
// connection; in both cases it is a no-op that reports the
// Connection's existing status.
func (c *Connection) Close() Status {
	if c.handle == nil {
		return c.status
	}
	st := c.handle.close()
	c.handle = nil
	return c.setStatus(st, "")
}

// Begin starts a transaction on the underlying session.
func (c *Connection) Begin() Status {
	if c.handle == nil {
		return c.setStatus(StatusInvalidParameter, "connection not open")
	}
	return c.setStatus(c.handle.begin(), "")
}

// Commit commits the current transaction.
func (c *Connection) Commit() Status {
	if c.handle == nil {
		return c.setStatus(StatusInvalidParameter, "connection not open")
	}
	return c.setStatus(c.handle.commit(), "")
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback() Status {
	if c.handle == nil {
		return c.setStatus(StatusInvalidParameter, "connection not open")
	}
	return c.setStatus(c.handle.rollback(), "")
}

// Exec runs sql directly (no placeholders) and invokes cb once per
// result row, if any. cb may be nil when the caller does not need
// results.
func (c *Connection) Exec(sql string, cb RowCallback, userCtx any) Status {
	if c.handle == nil {
		return c.setStatus(StatusInvalidParameter, "connection not open")
	}
	if sql == "" {
		return c.setStatus(StatusInvalidParameter, "empty statement")
	}
	st := c.setStatus(c.handle.exec(sql, cb, userCtx), "")
	c.trace("exec", sql, st)
	return st
}

// LastInsertID reports the row ID generated by the most recent insert
// on this session. seqName selects the sequence to read for backends
// that address generated identifiers by name (PostgreSQL); it is
// ignored by the others.
func (c *Connection) LastInsertID(seqName *string) (Status, uint64) {
	if c.handle == nil {
		return c.setStatus(StatusInvalidParameter, "connection not open"), 0
	}
	st, id := c.handle.lastInsertID(seqName)
	return c.setStatus(st, ""), id
}

// StmtPrepare compiles sql into a reusable Statement bound to this
// Connection. The SQL is passed through unchanged, so placeholders must
// use the backend's own syntax: '?' for the embedded engine and the
// MySQL family, '$1', '$2', ... for PostgreSQL.
func (c *Connection) StmtPrepare(sql string) (Status, *Statement) {
	if c.handle == nil {
		st := c.setStatus(StatusInvalidParameter, "connection not open")
		return st, sentinelStatement
	}
	if sql == "" {
		return c.setStatus(StatusInvalidParameter, "empty statement"), sentinelStatement
	}
	st, ds := c.handle.prepare(sql)
	c.setStatus(st, "")
	c.trace("prepare", sql, st)
	if st != StatusOK {
		return st, sentinelStatement
	}
	return StatusOK, &Statement{
		conn:    c,
		ctx:     ds,
		nParams: ds.paramCount(),
		nCols:   ds.columnCount(),
	}
}
