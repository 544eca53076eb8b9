package sqldbal

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		name string
		in   Status
		want Status
	}{
		{"ok", StatusOK, StatusOK},
		{"last defined", StatusCloseFailed, StatusCloseFailed},
		{"negative", Status(-1), StatusExecFailed},
		{"past upper bound", statusUpperBound, StatusExecFailed},
		{"far past upper bound", Status(9999), StatusExecFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeStatus(tc.in); got != tc.want {
				t.Fatalf("normalizeStatus(%d) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSetStatusRecordsEachCall(t *testing.T) {
	c := &Connection{}

	c.setStatus(StatusExecFailed, "boom")
	if c.status != StatusExecFailed {
		t.Fatalf("status = %v, want StatusExecFailed", c.status)
	}

	c.setStatus(StatusOK, "")
	if c.status != StatusOK {
		t.Fatalf("a later OK did not replace an earlier call's failure: status = %v", c.status)
	}

	c.setStatus(StatusBindFailed, "bind")
	if c.status != StatusBindFailed {
		t.Fatalf("status = %v, want StatusBindFailed", c.status)
	}
}

func TestSetStatusDefaultMessage(t *testing.T) {
	c := &Connection{}
	c.setStatus(StatusOverflow, "")
	if c.errString != defaultMessage(StatusOverflow) {
		t.Fatalf("errString = %q, want default message", c.errString)
	}
}
