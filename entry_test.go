package mesi

import "testing"

func TestEntry_handle_transitionTable(t *testing.T) {
	cases := []struct {
		name        string
		start       Status
		kind        EventKind
		wantStatus  Status
		wantEvict   bool
		wantFlushed bool
	}{
		{"Modified+RemoteRead", StatusModified, RemoteRead, StatusShared, false, true},
		{"Modified+RemoteWrite", StatusModified, RemoteWrite, StatusInvalid, true, true},
		{"Exclusive+RemoteRead", StatusExclusive, RemoteRead, StatusShared, false, false},
		{"Exclusive+RemoteWrite", StatusExclusive, RemoteWrite, StatusInvalid, true, false},
		{"Shared+RemoteRead", StatusShared, RemoteRead, StatusShared, false, false},
		{"Shared+RemoteWrite", StatusShared, RemoteWrite, StatusInvalid, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &entry{value: "v", status: tc.start}
			evict, wasModified := e.handle(tc.kind)
			if evict != tc.wantEvict {
				t.Errorf("evict = %v, want %v", evict, tc.wantEvict)
			}
			if wasModified != tc.wantFlushed {
				t.Errorf("wasModified = %v, want %v", wasModified, tc.wantFlushed)
			}
			if tc.wantEvict {
				// the listener removes the entry; handle itself still
				// records the Invalid transition for the caller to see.
				if e.status != StatusInvalid {
					t.Errorf("status = %v, want StatusInvalid", e.status)
				}
			} else if e.status != tc.wantStatus {
				t.Errorf("status = %v, want %v", e.status, tc.wantStatus)
			}
		})
	}
}

func TestEntry_handle_panicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when handling an event against an Invalid entry")
		}
	}()
	e := &entry{status: StatusInvalid}
	e.handle(RemoteRead)
}
