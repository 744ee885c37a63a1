package mesi

import "testing"

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		StatusInvalid:   "Invalid",
		StatusShared:    "Shared",
		StatusExclusive: "Exclusive",
		StatusModified:  "Modified",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestStatus_String_panicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unrecognised Status value")
		}
	}()
	_ = Status(99).String()
}

func TestStatus_zeroValueIsInvalid(t *testing.T) {
	var s Status
	if s != StatusInvalid {
		t.Fatalf("zero value Status = %v, want StatusInvalid", s)
	}
}
