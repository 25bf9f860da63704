package linehistory

import "testing"

func TestAddAndAt(t *testing.T) {
	m := NewManager(0, DupsKeepAll)

	if !m.Add("one") || !m.Add("two") {
		t.Fatal("Add rejected valid lines")
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d", m.Len())
	}
	if m.At(0) != "one" || m.At(1) != "two" {
		t.Errorf("entries = %q, %q", m.At(0), m.At(1))
	}
	if m.At(-1) != "" || m.At(2) != "" {
		t.Error("out-of-range At should return empty")
	}
}

func TestAddRejectsBlank(t *testing.T) {
	m := NewManager(0, DupsKeepAll)
	if m.Add("") || m.Add("   ") {
		t.Error("blank lines should not be stored")
	}
}

func TestDuplicatePolicies(t *testing.T) {
	keep := NewManager(0, DupsKeepAll)
	keep.Add("x")
	keep.Add("x")
	if keep.Len() != 2 {
		t.Errorf("DupsKeepAll stored %d", keep.Len())
	}

	drop := NewManager(0, DupsIgnoreConsecutive)
	drop.Add("x")
	if drop.Add("x") {
		t.Error("consecutive duplicate should be rejected")
	}
	drop.Add("y")
	if !drop.Add("x") {
		t.Error("non-consecutive duplicate should be stored")
	}
}

func TestCapacityEviction(t *testing.T) {
	m := NewManager(2, DupsKeepAll)
	m.Add("a")
	m.Add("b")
	m.Add("c")

	if m.Len() != 2 {
		t.Fatalf("Len = %d", m.Len())
	}
	if m.At(0) != "b" || m.At(1) != "c" {
		t.Errorf("entries = %q, %q, oldest should be evicted", m.At(0), m.At(1))
	}
}

func TestSearch(t *testing.T) {
	m := NewManager(0, DupsKeepAll)
	for _, line := range []string{"git status", "ls", "git log", "make"} {
		m.Add(line)
	}

	if got := m.SearchBackward("git", m.Len()); got != 2 {
		t.Errorf("SearchBackward from end = %d", got)
	}
	if got := m.SearchBackward("git", 2); got != 0 {
		t.Errorf("SearchBackward from 2 = %d", got)
	}
	if got := m.SearchBackward("git", 0); got != -1 {
		t.Errorf("SearchBackward exhausted = %d", got)
	}
	if got := m.SearchForward("git", 0); got != 2 {
		t.Errorf("SearchForward from 0 = %d", got)
	}
	if got := m.SearchForward("git", 2); got != -1 {
		t.Errorf("SearchForward exhausted = %d", got)
	}
	if got := m.SearchBackward("nope", m.Len()); got != -1 {
		t.Errorf("no match = %d", got)
	}
}

func TestPending(t *testing.T) {
	m := NewManager(0, DupsKeepAll)

	if _, ok := m.TakePending(); ok {
		t.Error("fresh manager should have no pending line")
	}

	m.SetPending("half typed")
	line, ok := m.TakePending()
	if !ok || line != "half typed" {
		t.Fatalf("TakePending = %q, %v", line, ok)
	}
	if _, ok := m.TakePending(); ok {
		t.Error("pending line should be consumed")
	}
}

func TestReplaceTruncatesToCapacity(t *testing.T) {
	m := NewManager(2, DupsKeepAll)
	m.Replace([]string{"a", "b", "c", "d"})
	if m.Len() != 2 || m.At(0) != "c" {
		t.Errorf("Replace kept %d entries starting %q", m.Len(), m.At(0))
	}
}
