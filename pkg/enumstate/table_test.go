package enumstate

import (
	"sync"
	"testing"
)

func TestOpenYieldsFirstEntry(t *testing.T) {
	tbl := New()
	entries := []Entry{{Name: "Mods"}, {Name: "LogicMods"}, {Name: "Config"}}

	handle, first, ok := tbl.Open(entries)
	if !ok {
		t.Fatal("expected first entry to be available")
	}
	if first.Name != "Mods" {
		t.Fatalf("got first entry %q, want %q", first.Name, "Mods")
	}
	if !tbl.IsSynthetic(handle) {
		t.Fatal("expected newly opened handle to be synthetic")
	}
}

func TestOpenEmptyEntries(t *testing.T) {
	tbl := New()
	handle, _, ok := tbl.Open(nil)
	if ok {
		t.Fatal("expected ok=false when there are no entries to yield")
	}
	if !tbl.IsSynthetic(handle) {
		t.Fatal("handle should still be tracked even with zero entries")
	}
}

func TestNextAdvancesAndExhausts(t *testing.T) {
	tbl := New()
	entries := []Entry{{Name: "Mods"}, {Name: "LogicMods"}}
	handle, _, _ := tbl.Open(entries)

	second, ok := tbl.Next(handle)
	if !ok || second.Name != "LogicMods" {
		t.Fatalf("got (%+v, %v), want (LogicMods, true)", second, ok)
	}

	_, ok = tbl.Next(handle)
	if ok {
		t.Fatal("expected exhaustion after the last entry")
	}
}

func TestNextOnUnknownHandle(t *testing.T) {
	tbl := New()
	if _, ok := tbl.Next(0xDEAD); ok {
		t.Fatal("Next on an unknown handle must report ok=false")
	}
}

func TestCloseRemovesHandle(t *testing.T) {
	tbl := New()
	handle, _, _ := tbl.Open([]Entry{{Name: "Mods"}})

	if !tbl.Close(handle) {
		t.Fatal("expected Close to report true for an open handle")
	}
	if tbl.IsSynthetic(handle) {
		t.Fatal("handle must no longer be synthetic after Close")
	}
	if tbl.Close(handle) {
		t.Fatal("expected a second Close on the same handle to report false")
	}
}

func TestHandlesDoNotCollideUnderConcurrentOpen(t *testing.T) {
	tbl := New()
	const n = 200

	handles := make([]uintptr, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, _, _ := tbl.Open([]Entry{{Name: "Mods"}})
			handles[i] = h
		}(i)
	}
	wg.Wait()

	seen := make(map[uintptr]bool, n)
	for _, h := range handles {
		if seen[h] {
			t.Fatalf("duplicate synthetic handle allocated: %#x", h)
		}
		seen[h] = true
	}
}
