package sqldbal

import (
	"math"
	"testing"
)

func TestCheckedAddInt(t *testing.T) {
	if !checkedAddInt(1, 2) {
		t.Fatal("1+2 should not overflow")
	}
	if checkedAddInt(math.MaxInt, 1) {
		t.Fatal("MaxInt+1 should overflow")
	}
	if checkedAddInt(math.MinInt, -1) {
		t.Fatal("MinInt-1 should overflow")
	}
}

func TestCheckedMulInt(t *testing.T) {
	if !checkedMulInt(3, 4) {
		t.Fatal("3*4 should not overflow")
	}
	if !checkedMulInt(0, math.MaxInt) {
		t.Fatal("0*anything should never overflow")
	}
	if checkedMulInt(math.MaxInt, 2) {
		t.Fatal("MaxInt*2 should overflow")
	}
}

func TestFitsUint16(t *testing.T) {
	if !fitsUint16(5432) {
		t.Fatal("5432 should fit in a port")
	}
	if fitsUint16(-1) {
		t.Fatal("-1 should not fit in a port")
	}
	if fitsUint16(70000) {
		t.Fatal("70000 should not fit in a port")
	}
}

func TestParsePort(t *testing.T) {
	cases := []struct {
		in        string
		wantPort  int
		wantHave  bool
		wantOK    bool
	}{
		{"", 0, false, true},
		{"5432", 5432, true, true},
		{"0", 0, true, true},
		{"99999", 0, false, false},
		{"abc", 0, false, false},
		{"-1", 0, false, false},
	}
	for _, tc := range cases {
		port, have, st := parsePort(tc.in)
		if have != tc.wantHave {
			t.Errorf("parsePort(%q) have = %v, want %v", tc.in, have, tc.wantHave)
		}
		ok := st == StatusOK
		if ok != tc.wantOK {
			t.Errorf("parsePort(%q) status ok = %v, want %v", tc.in, ok, tc.wantOK)
		}
		if ok && have && port != tc.wantPort {
			t.Errorf("parsePort(%q) = %d, want %d", tc.in, port, tc.wantPort)
		}
	}
}
