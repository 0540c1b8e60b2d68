package refcount_test

import (
	"testing"

	"github.com/noxlang/nox/internal/refcount"
	"github.com/noxlang/nox/internal/table"
	"github.com/noxlang/nox/internal/value"
)

func TestNonHeapValuesAreNoOps(t *testing.T) {
	m := refcount.NewManager()
	m.AddReference(value.Int(1))
	m.AddReference(value.Str("x"))
	if m.Live() != 0 {
		t.Fatalf("got %d live objects, want 0", m.Live())
	}
}

func TestDestructorFiresAtZero(t *testing.T) {
	m := refcount.NewManager()
	var destroyed []uint64
	m.SetDestructorCallback(func(obj value.HeapObject) error {
		destroyed = append(destroyed, obj.HeapID())
		return nil
	})

	tb := table.New()
	m.AddReference(tb)
	m.AddReference(tb)
	if m.Count(tb) != 2 {
		t.Fatalf("got count %d, want 2", m.Count(tb))
	}

	if err := m.RemoveReference(tb); err != nil {
		t.Fatal(err)
	}
	if len(destroyed) != 0 {
		t.Fatal("destructor should not fire until count reaches zero")
	}

	if err := m.RemoveReference(tb); err != nil {
		t.Fatal(err)
	}
	if len(destroyed) != 1 || destroyed[0] != tb.HeapID() {
		t.Fatalf("got %v, want destructor fired once for %d", destroyed, tb.HeapID())
	}
	if m.Live() != 0 {
		t.Fatalf("got %d live objects after destruction, want 0", m.Live())
	}
}

func TestRemoveReferenceOnUntrackedIsNoOp(t *testing.T) {
	m := refcount.NewManager()
	tb := table.New()
	if err := m.RemoveReference(tb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
