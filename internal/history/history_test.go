package history

import (
	"strings"
	"testing"
)

func TestCommitUndoRedoRoundTrip(t *testing.T) {
	h := New("D0")
	if !h.Commit("D1", false) {
		t.Fatal("expected commit to change history")
	}
	if h.Current() != "D1" || !h.CanUndo() || h.CanRedo() {
		t.Fatalf("after commit: current=%q undo=%v redo=%v", h.Current(), h.CanUndo(), h.CanRedo())
	}
	if !h.Undo() || h.Current() != "D0" {
		t.Fatalf("after undo: current=%q", h.Current())
	}
	if !h.CanRedo() || h.CanUndo() {
		t.Fatalf("after undo: undo=%v redo=%v", h.CanUndo(), h.CanRedo())
	}
	if !h.Redo() || h.Current() != "D1" {
		t.Fatalf("after redo: current=%q", h.Current())
	}
}

func TestCommitEqualIsNoop(t *testing.T) {
	h := New("D0")
	if h.Commit("D0", false) {
		t.Fatal("expected equal commit to be ignored")
	}
	if h.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", h.Len())
	}
}

func TestCommitTruncatesRedoBranch(t *testing.T) {
	h := New("D0")
	h.Commit("D1", false)
	h.Undo()
	h.Commit("D2", false)

	if h.Len() != 2 || h.Cursor() != 1 {
		t.Fatalf("expected [D0 D2] at 1, got len=%d cursor=%d", h.Len(), h.Cursor())
	}
	if h.CanRedo() {
		t.Fatal("expected no redo after branching commit")
	}
	h.Undo()
	if h.Current() != "D0" {
		t.Fatalf("expected D0, got %q", h.Current())
	}
}

func TestOverwriteResets(t *testing.T) {
	h := New("D0")
	h.Commit("D1", false)
	h.Commit("D2", false)
	h.Undo()

	if !h.Commit("X", true) {
		t.Fatal("expected overwrite to report change")
	}
	if h.Len() != 1 || h.Current() != "X" || h.CanUndo() || h.CanRedo() {
		t.Fatalf("after overwrite: len=%d current=%q undo=%v redo=%v",
			h.Len(), h.Current(), h.CanUndo(), h.CanRedo())
	}
}

func TestUndoRedoAtEdges(t *testing.T) {
	h := New(0)
	if h.Undo() {
		t.Error("expected undo at start to fail")
	}
	if h.Redo() {
		t.Error("expected redo at end to fail")
	}
	if h.Current() != 0 {
		t.Errorf("expected 0, got %d", h.Current())
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	h := New(0, WithCapacity[int](3))
	for i := 1; i <= 5; i++ {
		h.Commit(i, false)
	}
	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}
	if h.Current() != 5 || h.Cursor() != 2 {
		t.Fatalf("expected current=5 cursor=2, got %d %d", h.Current(), h.Cursor())
	}
	h.Undo()
	h.Undo()
	if h.Current() != 3 || h.CanUndo() {
		t.Fatalf("expected oldest kept entry 3, got %d undo=%v", h.Current(), h.CanUndo())
	}
}

func TestCustomEqual(t *testing.T) {
	h := New("abc", WithEqual(func(a, b string) bool {
		return strings.EqualFold(a, b)
	}))
	if h.Commit("ABC", false) {
		t.Fatal("expected case-insensitive equality to coalesce")
	}
	if !h.Commit("abd", false) {
		t.Fatal("expected different value to commit")
	}
}

func TestPointerSnapshots(t *testing.T) {
	type doc struct{ Title string }
	a := &doc{Title: "a"}
	h := New(a)
	if h.Commit(&doc{Title: "a"}, false) {
		t.Fatal("expected deep-equal pointer snapshot to coalesce")
	}
	b := &doc{Title: "b"}
	h.Commit(b, false)
	h.Undo()
	if h.Current() != a {
		t.Fatal("expected undo to restore the original snapshot")
	}
}
