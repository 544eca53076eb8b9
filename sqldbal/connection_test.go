package sqldbal

import "testing"

func newFakeConnection(h *fakeHandle) *Connection {
	return &Connection{tag: DriverEmbedded, handle: h}
}

func TestSentinelConnectionIsSafeToChain(t *testing.T) {
	c := Open(DriverPostgreSQL, "", "", "", "", "", FlagInvalidMemory, nil)
	if c != sentinelConnection {
		t.Fatalf("expected sentinelConnection")
	}
	if st := c.StatusGet(); st != StatusOutOfMemory {
		t.Fatalf("status = %v, want StatusOutOfMemory", st)
	}
	if st := c.Close(); st != StatusOutOfMemory {
		t.Fatalf("Close on sentinel = %v, want StatusOutOfMemory", st)
	}
	if st := c.Begin(); st == StatusOK {
		t.Fatalf("Begin on sentinel should not report OK")
	}
}

func TestOpenUnrecognizedDriverTag(t *testing.T) {
	c := Open(DriverTag(99), "host", "", "user", "pwd", "db", 0, nil)
	if st := c.StatusGet(); st != StatusDriverNotSupported {
		t.Fatalf("status = %v, want StatusDriverNotSupported", st)
	}
}

func TestConnectionExecDispatchesToHandle(t *testing.T) {
	h := &fakeHandle{
		execRows: [][]NullableString{
			{{Valid: true, Value: "1"}},
			{{Valid: true, Value: "2"}},
		},
	}
	c := newFakeConnection(h)

	var seen []string
	st := c.Exec("SELECT 1", func(_ any, cols []NullableString) int {
		seen = append(seen, cols[0].Value)
		return 0
	}, nil)
	if st != StatusOK {
		t.Fatalf("status = %v", st)
	}
	if len(seen) != 2 || seen[0] != "1" || seen[1] != "2" {
		t.Fatalf("seen = %v", seen)
	}
}

func TestConnectionExecStopsOnNonZeroCallback(t *testing.T) {
	h := &fakeHandle{
		execRows: [][]NullableString{
			{{Valid: true, Value: "1"}},
			{{Valid: true, Value: "2"}},
		},
	}
	c := newFakeConnection(h)

	var seen int
	c.Exec("SELECT 1", func(_ any, cols []NullableString) int {
		seen++
		return 1
	}, nil)
	if seen != 1 {
		t.Fatalf("callback invoked %d times, want 1", seen)
	}
}

func TestConnectionRejectsEmptyStatement(t *testing.T) {
	c := newFakeConnection(&fakeHandle{})
	if st := c.Exec("", nil, nil); st != StatusInvalidParameter {
		t.Fatalf("status = %v, want StatusInvalidParameter", st)
	}
}

func TestConnectionBeginCommitRollback(t *testing.T) {
	c := newFakeConnection(&fakeHandle{})

	if st := c.Commit(); st != StatusInvalidParameter {
		t.Fatalf("commit without begin = %v", st)
	}
	if st := c.Begin(); st != StatusOK {
		t.Fatalf("begin = %v", st)
	}
	if st := c.Begin(); st != StatusInvalidParameter {
		t.Fatalf("nested begin should fail: %v", st)
	}
	if st := c.Commit(); st != StatusOK {
		t.Fatalf("commit = %v", st)
	}
}

func TestConnectionLastInsertID(t *testing.T) {
	c := newFakeConnection(&fakeHandle{lastID: 42})
	st, id := c.LastInsertID(nil)
	if st != StatusOK || id != 42 {
		t.Fatalf("got (%v, %d), want (StatusOK, 42)", st, id)
	}
}

func TestStatusClearResetsAndReturnsPrevious(t *testing.T) {
	c := newFakeConnection(&fakeHandle{})
	c.setStatus(StatusBindFailed, "x")
	prev := c.StatusClear()
	if prev != StatusBindFailed {
		t.Fatalf("prev = %v, want StatusBindFailed", prev)
	}
	if c.StatusGet() != StatusOK {
		t.Fatalf("status after clear = %v, want StatusOK", c.StatusGet())
	}
}
