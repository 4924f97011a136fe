package envexec

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		long   string
		short  string
	}{
		{StatusPending, "Pending", "WJ"},
		{StatusAccepted, "Accepted", "AC"},
		{StatusWrongAnswer, "Wrong Answer", "WA"},
		{StatusRuntimeError, "Runtime Error", "RE"},
		{StatusTimeLimitExceeded, "Time Limit Exceeded", "TLE"},
		{StatusCompileError, "Compile Error", "CE"},
	}
	for _, tc := range tests {
		if got := tc.status.String(); got != tc.long {
			t.Errorf("String(%d) = %q, want %q", tc.status, got, tc.long)
		}
		if got := tc.status.Short(); got != tc.short {
			t.Errorf("Short(%d) = %q, want %q", tc.status, got, tc.short)
		}
		for _, s := range []string{tc.long, tc.short} {
			st, err := StringToStatus(s)
			if err != nil || st != tc.status {
				t.Errorf("StringToStatus(%q) = %v, %v", s, st, err)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	for _, s := range []Status{StatusAccepted, StatusWrongAnswer, StatusRuntimeError, StatusTimeLimitExceeded, StatusCompileError} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
	if _, err := StringToStatus("Memory Limit Exceeded"); err == nil {
		t.Error("expected error for unknown status")
	}
}
