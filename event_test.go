package mesi

import "testing"

func TestEventKind_String(t *testing.T) {
	if RemoteRead.String() != "RemoteRead" {
		t.Errorf("RemoteRead.String() = %q", RemoteRead.String())
	}
	if RemoteWrite.String() != "RemoteWrite" {
		t.Errorf("RemoteWrite.String() = %q", RemoteWrite.String())
	}
}

func TestEventKind_String_panicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unrecognised EventKind value")
		}
	}()
	_ = EventKind(99).String()
}

func TestMsg_isClosedSumType(t *testing.T) {
	var msgs = []Msg{
		EventMsg{Kind: RemoteRead, Key: "k"},
		AckMsg{WorkerID: 1, Invalidated: true},
	}
	for _, m := range msgs {
		switch m.(type) {
		case EventMsg, AckMsg:
		default:
			t.Fatalf("unexpected dynamic type %T", m)
		}
	}
}
