package sqldbal

import (
	"os"
	"testing"
)

// openTestPostgres opens a connection against SQLDBAL_TEST_PG_DSN,
// expressed as host,port,user,pwd,db separated by '|'.
func openTestPostgres(t *testing.T) *Connection {
	t.Helper()
	dsn := os.Getenv("SQLDBAL_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SQLDBAL_TEST_PG_DSN not set")
	}
	parts := splitDSN(dsn)
	c := Open(DriverPostgreSQL, parts[0], parts[1], parts[2], parts[3], parts[4], 0, nil)
	if st := c.StatusGet(); st != StatusOK {
		_, msg := c.ErrStr()
		t.Fatalf("open failed: %v: %s", st, msg)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPostgresInsertSelectRoundTrip(t *testing.T) {
	c := openTestPostgres(t)

	c.Exec("DROP TABLE IF EXISTS sqldbal_test", nil, nil)
	if st := c.Exec("CREATE TABLE sqldbal_test (id BIGSERIAL PRIMARY KEY, val TEXT)", nil, nil); st != StatusOK {
		t.Fatalf("create table: %v", st)
	}

	st, ins := c.StmtPrepare("INSERT INTO sqldbal_test (val) VALUES ($1)")
	if st != StatusOK {
		t.Fatalf("prepare: %v", st)
	}
	ins.BindText(0, "hello")
	if st := ins.Execute(); st != StatusOK {
		t.Fatalf("execute: %v", st)
	}
	ins.Close()

	seq := "sqldbal_test_id_seq"
	st, id := c.LastInsertID(&seq)
	if st != StatusOK || id == 0 {
		t.Fatalf("last insert id: %v %d", st, id)
	}

	st, sel := c.StmtPrepare("SELECT val FROM sqldbal_test WHERE id = $1")
	if st != StatusOK {
		t.Fatalf("prepare select: %v", st)
	}
	defer sel.Close()
	sel.BindInt64(0, int64(id))
	sel.Execute()
	if r := sel.Fetch(); r != FetchRow {
		t.Fatalf("fetch = %v", r)
	}
	if st, v := sel.ColumnText(0); st != StatusOK || v != "hello" {
		t.Fatalf("val = %q, status = %v", v, st)
	}
	if ct := sel.ColumnType(0); ct != ColumnBlob {
		t.Fatalf("ColumnType = %v, want ColumnBlob (network backends collapse non-null columns)", ct)
	}
}

func TestPostgresBlobRoundTrip(t *testing.T) {
	c := openTestPostgres(t)
	c.Exec("DROP TABLE IF EXISTS sqldbal_bytea_test", nil, nil)
	if st := c.Exec("CREATE TABLE sqldbal_bytea_test (id BIGSERIAL PRIMARY KEY, data BYTEA)", nil, nil); st != StatusOK {
		t.Fatalf("create table: %v", st)
	}
	payload := []byte{0x00, 0x01, 0xff, 0xfe}

	st, ins := c.StmtPrepare("INSERT INTO sqldbal_bytea_test (data) VALUES ($1)")
	if st != StatusOK {
		t.Fatalf("prepare: %v", st)
	}
	ins.BindBlob(0, payload)
	if st := ins.Execute(); st != StatusOK {
		t.Fatalf("execute: %v", st)
	}
	ins.Close()

	st, sel := c.StmtPrepare("SELECT data FROM sqldbal_bytea_test")
	if st != StatusOK {
		t.Fatalf("prepare select: %v", st)
	}
	defer sel.Close()
	sel.Execute()
	if r := sel.Fetch(); r != FetchRow {
		t.Fatalf("fetch = %v", r)
	}
	st, got := sel.ColumnBlob(0)
	if st != StatusOK {
		t.Fatalf("column blob: %v", st)
	}
	if string(got) != string(payload) {
		t.Fatalf("blob mismatch: got %v want %v", got, payload)
	}
}

func TestPostgresOpenRejectsMissingHost(t *testing.T) {
	c := Open(DriverPostgreSQL, "", "", "", "", "", 0, nil)
	if st := c.StatusGet(); st != StatusInvalidParameter {
		t.Fatalf("status = %v, want StatusInvalidParameter", st)
	}
}
