package killring

import "testing"

func TestKillAndYank(t *testing.T) {
	r := New(0)

	if r.Yank() != "" {
		t.Error("empty ring should yank nothing")
	}

	r.Kill("first")
	r.Kill("second")

	if got := r.Yank(); got != "second" {
		t.Errorf("Yank = %q", got)
	}
	// Yank does not move the position.
	if got := r.Yank(); got != "second" {
		t.Errorf("repeated Yank = %q", got)
	}
}

func TestYankPopCycles(t *testing.T) {
	r := New(0)
	r.Kill("a")
	r.Kill("b")
	r.Kill("c")

	want := []string{"b", "a", "c", "b"}
	for i, w := range want {
		if got := r.YankPop(); got != w {
			t.Errorf("YankPop #%d = %q, want %q", i, got, w)
		}
	}
}

func TestAppendPrepend(t *testing.T) {
	r := New(0)
	r.Kill("mid")
	r.Append("-end")
	r.Prepend("start-")

	if got := r.Yank(); got != "start-mid-end" {
		t.Errorf("Yank = %q", got)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, accumulation should not add entries", r.Len())
	}
}

func TestAppendToEmptyRing(t *testing.T) {
	r := New(0)
	r.Append("x")
	if got := r.Yank(); got != "x" {
		t.Errorf("Yank = %q", got)
	}
}

func TestCapacityEviction(t *testing.T) {
	r := New(2)
	r.Kill("a")
	r.Kill("b")
	r.Kill("c")

	if r.Len() != 2 {
		t.Fatalf("Len = %d", r.Len())
	}
	if got := r.Yank(); got != "c" {
		t.Errorf("Yank = %q", got)
	}
	if got := r.YankPop(); got != "b" {
		t.Errorf("YankPop = %q, oldest entry should be evicted", got)
	}
}

func TestEmptyKillIgnored(t *testing.T) {
	r := New(0)
	r.Kill("")
	if r.Len() != 0 {
		t.Error("empty kill should not be stored")
	}
}
