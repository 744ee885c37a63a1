package store

import (
	"path/filepath"
	"testing"
)

func TestBolt_clearedAtConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesi.db")

	b, err := NewBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b2, err := NewBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b2.Close()

	v, err := b2.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Fatalf("Get(k) = %q after reopen, want empty (bucket must be cleared)", v)
	}
}

func TestBolt_setThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesi.db")
	b, err := NewBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := b.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	v, err := b.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if v != "v" {
		t.Fatalf("Get(k) = %q, want %q", v, "v")
	}
}

func TestBolt_missReturnsEmptyString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesi.db")
	b, err := NewBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	v, err := b.Get("missing")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Fatalf("Get(missing) = %q, want empty string", v)
	}
}

func TestBolt_setBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesi.db")
	b, err := NewBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	var s BatchSetter = b
	if err := s.SetBatch(map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := b.Get(k)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("Get(%q) = %q, want %q", k, got, want)
		}
	}
}
